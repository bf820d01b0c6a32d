package driven

import (
	"context"

	"github.com/GAM-team/gam/internal/core/domain"
)

// JournalStore persists batch request journals.
type JournalStore interface {
	// Save stores or replaces a journal.
	Save(ctx context.Context, journal domain.Journal) error

	// Get retrieves a journal by ID.
	// Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, id string) (*domain.Journal, error)

	// Delete removes a journal.
	Delete(ctx context.Context, id string) error

	// List returns all journals, newest first.
	List(ctx context.Context) ([]domain.Journal, error)
}
