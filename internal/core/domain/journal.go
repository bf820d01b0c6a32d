package domain

import "time"

// JournalEntry records what one request entry asked for.
type JournalEntry struct {
	// ID is the batch correlation id.
	ID string
	// Operation is the requested action.
	Operation Operation
	// EntryID is the atom:id of the payload, when it has one.
	EntryID string
}

// Journal remembers a built batch request so a later response can be
// matched back to it by correlation id.
type Journal struct {
	// ID uniquely identifies the journal.
	ID string
	// CreatedAt is when the request feed was built.
	CreatedAt time.Time
	// Feed is the encoded request document.
	Feed []byte
	// Entries are the request entries in addition order.
	Entries []JournalEntry
}
