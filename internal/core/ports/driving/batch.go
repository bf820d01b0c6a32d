package driving

import (
	"context"

	"github.com/GAM-team/gam/internal/core/domain"
)

// BatchService builds batch request feeds and interprets batch responses.
type BatchService interface {
	// NewFeed starts an empty request feed.
	NewFeed() *domain.BatchFeed

	// AddEntry appends an entry with the given operation. An empty id is
	// assigned from the entry's position.
	AddEntry(feed *domain.BatchFeed, op domain.Operation, entry *domain.Object, id string) (*domain.BatchEntry, error)

	// AddByID appends a payload holding only an atom id, for delete and query.
	AddByID(feed *domain.BatchFeed, op domain.Operation, entryID, id string) (*domain.BatchEntry, error)

	// EncodeFeed seals the feed and encodes it.
	EncodeFeed(feed *domain.BatchFeed) (*domain.Element, error)

	// DecodeFeed decodes a batch document.
	DecodeFeed(el *domain.Element) (*domain.BatchFeed, error)

	// Interpret matches response entries to request entries by id.
	Interpret(request, response *domain.BatchFeed) *domain.BatchReport

	// Record seals and encodes a request feed and stores it as a journal.
	Record(ctx context.Context, feed *domain.BatchFeed) (*domain.Journal, error)

	// Replay reloads a journalled request feed.
	Replay(ctx context.Context, journalID string) (*domain.BatchFeed, error)

	// Journals lists recorded request feeds, newest first.
	Journals(ctx context.Context) ([]domain.Journal, error)

	// Forget removes a recorded request feed.
	Forget(ctx context.Context, journalID string) error

	// Send posts a journalled request and interprets the response.
	Send(ctx context.Context, journalID, url string) (*domain.BatchReport, error)
}
