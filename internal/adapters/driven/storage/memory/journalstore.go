package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
)

// Ensure JournalStore implements the interface.
var _ driven.JournalStore = (*JournalStore)(nil)

// JournalStore is an in-memory implementation of driven.JournalStore.
// Journals live only as long as the process.
type JournalStore struct {
	mu       sync.RWMutex
	journals map[string]domain.Journal
}

// NewJournalStore creates a new in-memory journal store.
func NewJournalStore() *JournalStore {
	return &JournalStore{
		journals: make(map[string]domain.Journal),
	}
}

// Save stores or replaces a journal.
func (s *JournalStore) Save(_ context.Context, journal domain.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journals[journal.ID] = copyJournal(journal)
	return nil
}

// Get retrieves a journal by ID.
func (s *JournalStore) Get(_ context.Context, id string) (*domain.Journal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	journal, ok := s.journals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	j := copyJournal(journal)
	return &j, nil
}

// Delete removes a journal.
func (s *JournalStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.journals, id)
	return nil
}

// List returns all journals, newest first.
func (s *JournalStore) List(_ context.Context) ([]domain.Journal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Journal, 0, len(s.journals))
	for _, journal := range s.journals {
		result = append(result, copyJournal(journal))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// copyJournal detaches the stored value from caller-owned slices.
func copyJournal(j domain.Journal) domain.Journal {
	j.Feed = append([]byte(nil), j.Feed...)
	j.Entries = append([]domain.JournalEntry(nil), j.Entries...)
	return j
}
