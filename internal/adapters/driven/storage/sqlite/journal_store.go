package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
)

// journalStore implements driven.JournalStore.
type journalStore struct {
	store *Store
}

var _ driven.JournalStore = (*journalStore)(nil)

// Save stores or replaces a journal and its entries in one transaction.
func (s *journalStore) Save(ctx context.Context, journal domain.Journal) error {
	if journal.CreatedAt.IsZero() {
		journal.CreatedAt = time.Now().UTC()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO journals (id, created_at, feed)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			feed = excluded.feed
	`, journal.ID, journal.CreatedAt.UnixNano(), journal.Feed)
	if err != nil {
		return fmt.Errorf("saving journal: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM journal_entries WHERE journal_id = ?", journal.ID); err != nil {
		return fmt.Errorf("clearing journal entries: %w", err)
	}

	for i, entry := range journal.Entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO journal_entries (journal_id, position, correlation_id, operation, entry_id)
			VALUES (?, ?, ?, ?, ?)
		`, journal.ID, i, entry.ID, entry.Operation.String(), entry.EntryID)
		if err != nil {
			return fmt.Errorf("saving journal entry %q: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing journal: %w", err)
	}
	return nil
}

// Get retrieves a journal by ID.
func (s *journalStore) Get(ctx context.Context, id string) (*domain.Journal, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, created_at, feed FROM journals WHERE id = ?
	`, id)

	journal, err := scanJournal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning journal: %w", err)
	}

	entries, err := s.entries(ctx, id)
	if err != nil {
		return nil, err
	}
	journal.Entries = entries
	return journal, nil
}

// Delete removes a journal. Its entries go with it.
func (s *journalStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM journals WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting journal: %w", err)
	}
	return nil
}

// List returns all journals, newest first.
func (s *journalStore) List(ctx context.Context) ([]domain.Journal, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, created_at, feed FROM journals ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying journals: %w", err)
	}
	defer rows.Close()

	var journals []domain.Journal
	for rows.Next() {
		journal, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning journal: %w", err)
		}
		journals = append(journals, *journal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journals: %w", err)
	}

	for i := range journals {
		entries, err := s.entries(ctx, journals[i].ID)
		if err != nil {
			return nil, err
		}
		journals[i].Entries = entries
	}
	return journals, nil
}

func (s *journalStore) entries(ctx context.Context, journalID string) ([]domain.JournalEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT correlation_id, operation, entry_id
		FROM journal_entries WHERE journal_id = ? ORDER BY position
	`, journalID)
	if err != nil {
		return nil, fmt.Errorf("querying journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var entry domain.JournalEntry
		var op string
		if err := rows.Scan(&entry.ID, &op, &entry.EntryID); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		entry.Operation = domain.Operation(op)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}
	return entries, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournal(row rowScanner) (*domain.Journal, error) {
	var journal domain.Journal
	var createdAt int64
	if err := row.Scan(&journal.ID, &createdAt, &journal.Feed); err != nil {
		return nil, err
	}
	journal.CreatedAt = time.Unix(0, createdAt).UTC()
	return &journal, nil
}
