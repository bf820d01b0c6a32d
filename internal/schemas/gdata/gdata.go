// Package gdata declares the GData batch metadata elements and a subset of
// the common gd: kinds.
package gdata

import (
	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
	"github.com/GAM-team/gam/internal/schemas/atom"
)

// Namespaces and their conventional prefixes.
const (
	Namespace           = "http://schemas.google.com/g/2005"
	BatchNamespace      = "http://schemas.google.com/gdata/batch"
	OpenSearchNamespace = "http://a9.com/-/spec/opensearch/1.1/"

	Prefix           = "gd"
	BatchPrefix      = "batch"
	OpenSearchPrefix = "openSearch"
)

// N returns the gd-qualified name for local.
func N(local string) domain.QName {
	return domain.Name(Namespace, local)
}

// B returns the batch-qualified name for local.
func B(local string) domain.QName {
	return domain.Name(BatchNamespace, local)
}

func a(local string) domain.QName {
	return domain.Name("", local)
}

// Batch metadata elements.
var (
	Operation = domain.NewDescriptor(B("operation"), "batch:operation").
		Attr(domain.BatchFieldOperationType, a("type")).
		MustBuild()

	// ID carries the correlation id as text.
	ID = domain.NewDescriptor(B("id"), "batch:id").MustBuild()

	Status = domain.NewDescriptor(B("status"), "batch:status").
		Attr(domain.BatchFieldStatusCode, a("code")).
		Attr(domain.BatchFieldStatusReason, a("reason")).
		Attr(domain.BatchFieldStatusContentType, a("content-type")).
		MustBuild()

	Interrupted = domain.NewDescriptor(B("interrupted"), "batch:interrupted").
		Attr(domain.BatchFieldInterruptedReason, a("reason")).
		Attr(domain.BatchFieldInterruptedSuccess, a("success")).
		Attr(domain.BatchFieldInterruptedFailures, a("failures")).
		Attr(domain.BatchFieldInterruptedParsed, a("parsed")).
		MustBuild()
)

// BatchSchema returns the batch protocol bound to Atom feeds and entries.
func BatchSchema() domain.BatchSchema {
	return domain.BatchSchema{
		Feed:        atom.Feed,
		Entry:       atom.Entry,
		EntryIDName: atom.N("id"),
		Operation:   Operation,
		ID:          ID,
		Status:      Status,
		Interrupted: Interrupted,
	}
}

// Controlled vocabularies.
var (
	AttendeeStatusValues = domain.PrefixedEnum(Namespace+"#event.",
		[2]string{"accepted", "ACCEPTED"},
		[2]string{"declined", "DECLINED"},
		[2]string{"invited", "INVITED"},
		[2]string{"tentative", "TENTATIVE"},
	)

	AttendeeTypeValues = domain.PrefixedEnum(Namespace+"#event.",
		[2]string{"optional", "OPTIONAL"},
		[2]string{"required", "REQUIRED"},
	)

	EventStatusValues = domain.PrefixedEnum(Namespace+"#event.",
		[2]string{"canceled", "CANCELED"},
		[2]string{"confirmed", "CONFIRMED"},
		[2]string{"tentative", "TENTATIVE"},
	)

	// WhoRelValues are the roles a gd:who plays in an event or message.
	WhoRelValues = domain.PrefixedEnum(Namespace+"#",
		[2]string{"event.attendee", "ATTENDEE"},
		[2]string{"event.organizer", "ORGANIZER"},
		[2]string{"event.performer", "PERFORMER"},
		[2]string{"event.speaker", "SPEAKER"},
		[2]string{"message.bcc", "BCC"},
		[2]string{"message.cc", "CC"},
		[2]string{"message.from", "FROM"},
		[2]string{"message.reply-to", "REPLY_TO"},
		[2]string{"message.to", "TO"},
	)
)

// Field names of the gd kinds.
const (
	FieldValue          = "value"
	FieldRel            = "rel"
	FieldLabel          = "label"
	FieldEmail          = "email"
	FieldValueString    = "value_string"
	FieldAddress        = "address"
	FieldPrimary        = "primary"
	FieldAttendeeStatus = "attendee_status"
	FieldAttendeeType   = "attendee_type"
	FieldWho            = "who"
	FieldWhere          = "where"
	FieldEventStatus    = "event_status"
)

// gd kinds.
var (
	AttendeeStatus = domain.NewDescriptor(N("attendeeStatus"), "gd:attendeeStatus").
		Enum(FieldValue, a("value"), AttendeeStatusValues).
		MustBuild()

	AttendeeType = domain.NewDescriptor(N("attendeeType"), "gd:attendeeType").
		Enum(FieldValue, a("value"), AttendeeTypeValues).
		MustBuild()

	EventStatus = domain.NewDescriptor(N("eventStatus"), "gd:eventStatus").
		Enum(FieldValue, a("value"), EventStatusValues).
		MustBuild()

	Who = domain.NewDescriptor(N("who"), "gd:who").
		Attr(FieldEmail, a("email")).
		Enum(FieldRel, a("rel"), WhoRelValues).
		Attr(FieldValueString, a("valueString")).
		One(FieldAttendeeStatus, N("attendeeStatus"), AttendeeStatus).
		One(FieldAttendeeType, N("attendeeType"), AttendeeType).
		MustBuild()

	Where = domain.NewDescriptor(N("where"), "gd:where").
		Attr(FieldLabel, a("label")).
		Attr(FieldRel, a("rel")).
		Attr(FieldValueString, a("valueString")).
		MustBuild()

	Email = domain.NewDescriptor(N("email"), "gd:email").
		Attr(FieldAddress, a("address")).
		Attr(FieldLabel, a("label")).
		Attr(FieldRel, a("rel")).
		Attr(FieldPrimary, a("primary")).
		MustBuild()

	// EventEntry is an Atom entry carrying event kinds. It shares the
	// atom:entry element name, so registering it replaces the plain entry
	// for every later decode.
	EventEntry = domain.NewDescriptor(atom.N("entry"), "gd:EventEntry").
		Extends(atom.Entry).
		Many(FieldWho, N("who"), Who).
		Many(FieldWhere, N("where"), Where).
		One(FieldEventStatus, N("eventStatus"), EventStatus).
		MustBuild()
)

// Descriptors returns the batch and kind descriptors in registration order.
// EventEntry is not included; see RegisterEventKind.
func Descriptors() []*domain.Descriptor {
	return []*domain.Descriptor{
		Operation, ID, Status, Interrupted,
		AttendeeStatus, AttendeeType, EventStatus, Who, Where, Email,
	}
}

// Register installs the batch and kind descriptors.
func Register(reg driven.SchemaRegistrar) error {
	for _, d := range Descriptors() {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEventKind makes atom:entry decode as EventEntry.
func RegisterEventKind(reg driven.SchemaRegistrar) error {
	return reg.Register(EventEntry)
}
