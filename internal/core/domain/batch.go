package domain

import (
	"fmt"
	"strconv"
)

// Operation is the action a batch entry asks the server to perform.
type Operation string

// Batch operations.
const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpQuery  Operation = "query"
)

// IsValid returns true if the operation is recognised.
func (op Operation) IsValid() bool {
	switch op {
	case OpInsert, OpUpdate, OpDelete, OpQuery:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (op Operation) String() string {
	return string(op)
}

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !op.IsValid() {
		return "", fmt.Errorf("%w: unknown batch operation %q", ErrInvalidInput, s)
	}
	return op, nil
}

// BatchStatus is the server's per-entry result.
type BatchStatus struct {
	Code        int
	Reason      string
	ContentType string
}

// Succeeded returns true for 2xx codes.
func (s BatchStatus) Succeeded() bool {
	return s.Code >= 200 && s.Code < 300
}

// BatchInterrupted is present only when the server stopped before completing every entry.
type BatchInterrupted struct {
	Reason   string
	Success  int
	Failures int
	// Parsed is how many entries the server read. Entries at index Parsed
	// and beyond were not executed.
	Parsed int
}

// BatchEntry is one correlated unit of work inside a batch feed.
type BatchEntry struct {
	// Entry is the payload object.
	Entry *Object
	// Operation is the requested action. Response entries may omit it.
	Operation Operation
	// ID is the correlation id echoed back by the server.
	ID string
	// Status is set on response entries.
	Status *BatchStatus
}

// BatchFeed groups entries into one request or response document.
//
// A request feed is built by appending entries and then sealed when it is
// handed to transport; a sealed feed rejects further entries.
type BatchFeed struct {
	// Feed holds feed-level data (title, links, extensions).
	Feed *Object
	// Interrupted is set on responses the server did not finish.
	Interrupted *BatchInterrupted

	entries []*BatchEntry
	sealed  bool
	limit   int
}

// NewBatchFeed wraps a feed object. limit caps the entry count; zero means unlimited.
func NewBatchFeed(feed *Object, limit int) *BatchFeed {
	return &BatchFeed{Feed: feed, limit: limit}
}

// Add appends an entry. An empty ID is replaced by the entry's position at
// the time of addition, so ids must be assigned before any reordering.
func (f *BatchFeed) Add(e *BatchEntry) error {
	if f.sealed {
		return ErrBatchSealed
	}
	if e == nil || e.Entry == nil {
		return fmt.Errorf("%w: batch entry has no payload", ErrInvalidInput)
	}
	if e.Operation != "" && !e.Operation.IsValid() {
		return fmt.Errorf("%w: unknown batch operation %q", ErrInvalidInput, e.Operation)
	}
	if f.limit > 0 && len(f.entries) >= f.limit {
		return fmt.Errorf("%w: limit is %d entries", ErrBatchTooLarge, f.limit)
	}
	if e.ID == "" {
		e.ID = strconv.Itoa(len(f.entries))
	}
	f.entries = append(f.entries, e)
	return nil
}

// Entries returns the entries in addition order.
func (f *BatchFeed) Entries() []*BatchEntry {
	return append([]*BatchEntry(nil), f.entries...)
}

// Len returns the number of entries.
func (f *BatchFeed) Len() int { return len(f.entries) }

// Entry finds an entry by correlation id.
func (f *BatchFeed) Entry(id string) (*BatchEntry, bool) {
	for _, e := range f.entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Seal freezes the entry list.
func (f *BatchFeed) Seal() { f.sealed = true }

// Sealed reports whether the feed has been handed to transport.
func (f *BatchFeed) Sealed() bool { return f.sealed }

// BatchOutcome classifies one entry after interpreting a response.
type BatchOutcome string

// Batch outcomes.
const (
	OutcomeSucceeded   BatchOutcome = "succeeded"
	OutcomeFailed      BatchOutcome = "failed"
	OutcomeNotExecuted BatchOutcome = "not_executed"
	// OutcomeUnmatched marks a response entry whose id matches no request.
	OutcomeUnmatched BatchOutcome = "unmatched"
)

// BatchResult pairs a request entry with its response.
type BatchResult struct {
	ID        string
	Operation Operation
	Outcome   BatchOutcome
	Status    *BatchStatus
	Request   *BatchEntry
	Response  *BatchEntry
}

// BatchReport is the interpretation of one batch response.
type BatchReport struct {
	// Results are in request order, followed by unmatched response entries.
	Results     []BatchResult
	Interrupted *BatchInterrupted
}

// Count returns how many results have the given outcome.
func (r *BatchReport) Count(outcome BatchOutcome) int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Outcome == outcome {
			n++
		}
	}
	return n
}

// Result finds a result by correlation id.
func (r *BatchReport) Result(id string) (BatchResult, bool) {
	for _, res := range r.Results {
		if res.ID == id {
			return res, true
		}
	}
	return BatchResult{}, false
}

// Err returns the dominant failure for the batch as a whole: the interrupted
// reason when the server gave up early, nil otherwise. Per-entry failures are
// reported through Results only.
func (r *BatchReport) Err() error {
	if r.Interrupted == nil {
		return nil
	}
	return fmt.Errorf("%w: %s (parsed %d, succeeded %d, failed %d)", ErrBatchInterrupted,
		r.Interrupted.Reason, r.Interrupted.Parsed, r.Interrupted.Success, r.Interrupted.Failures)
}
