package domain

import "fmt"

// Field names the batch layer reads from and writes to its metadata descriptors.
const (
	BatchFieldOperationType = "type"

	BatchFieldStatusCode        = "code"
	BatchFieldStatusReason      = "reason"
	BatchFieldStatusContentType = "content_type"

	BatchFieldInterruptedReason   = "reason"
	BatchFieldInterruptedSuccess  = "success"
	BatchFieldInterruptedFailures = "failures"
	BatchFieldInterruptedParsed   = "parsed"
)

// BatchSchema names the descriptors the batch protocol is built from.
// Entry is the fallback payload type; a registry entry for the same name
// takes precedence when decoding.
type BatchSchema struct {
	Feed  *Descriptor
	Entry *Descriptor
	// EntryIDName is the payload child holding the entry's own identity
	// (atom:id). Entries built from an id alone carry just this child.
	EntryIDName QName

	Operation   *Descriptor
	ID          *Descriptor
	Status      *Descriptor
	Interrupted *Descriptor
}

// Validate checks that every descriptor is present and declares the batch fields.
func (s BatchSchema) Validate() error {
	for label, d := range map[string]*Descriptor{
		"feed": s.Feed, "entry": s.Entry, "operation": s.Operation,
		"id": s.ID, "status": s.Status, "interrupted": s.Interrupted,
	} {
		if d == nil {
			return fmt.Errorf("%w: batch schema has no %s descriptor", ErrInvalidInput, label)
		}
	}
	if s.EntryIDName.IsZero() {
		return fmt.Errorf("%w: batch schema has no entry id element", ErrInvalidInput)
	}
	required := []struct {
		d      *Descriptor
		fields []string
	}{
		{s.Operation, []string{BatchFieldOperationType}},
		{s.Status, []string{BatchFieldStatusCode, BatchFieldStatusReason, BatchFieldStatusContentType}},
		{s.Interrupted, []string{
			BatchFieldInterruptedReason, BatchFieldInterruptedSuccess,
			BatchFieldInterruptedFailures, BatchFieldInterruptedParsed,
		}},
	}
	for _, r := range required {
		for _, f := range r.fields {
			if _, ok := r.d.AttrField(f); !ok {
				return &FieldError{Type: r.d.Name(), Field: f, Err: ErrUnknownField}
			}
		}
	}
	return nil
}
