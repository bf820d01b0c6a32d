package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent data-binding and batch protocol failures.
// These are distinct from transport errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Data binding errors.

	// ErrMalformedDocument indicates the input is not well-formed XML.
	// It is fatal to the whole decode.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrSchemaMismatch indicates an element's qualified name does not match
	// the descriptor it was bound to.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnknownEnumValue indicates an attribute value outside its declared vocabulary.
	// It is scoped to a single field.
	ErrUnknownEnumValue = errors.New("unknown enum value")

	// ErrUnknownSymbol indicates a symbolic value with no URI in its vocabulary.
	ErrUnknownSymbol = errors.New("unknown enum symbol")

	// ErrUnknownField indicates a field name the descriptor does not declare.
	ErrUnknownField = errors.New("unknown field")

	// ErrRegistryFrozen indicates a registration attempted after start-up completed.
	ErrRegistryFrozen = errors.New("descriptor registry is frozen")

	// Batch errors.

	// ErrBatchSealed indicates a structural change to a feed already handed to transport.
	ErrBatchSealed = errors.New("batch feed is sealed")

	// ErrBatchTooLarge indicates the feed reached its configured entry limit.
	ErrBatchTooLarge = errors.New("batch feed is full")

	// ErrBatchInterrupted indicates the server stopped processing a batch early.
	ErrBatchInterrupted = errors.New("batch interrupted")
)

// FieldError reports a failure scoped to one field of one type.
type FieldError struct {
	Type  QName
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s.%s: %v", e.Type, e.Field, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v %q", e.Type, e.Field, e.Err, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
