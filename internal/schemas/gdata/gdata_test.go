package gdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/services"
	"github.com/GAM-team/gam/internal/schemas/atom"
)

func TestBatchSchema_Valid(t *testing.T) {
	schema := BatchSchema()

	require.NoError(t, schema.Validate())
	assert.Equal(t, atom.N("feed"), schema.Feed.Name())
	assert.Equal(t, atom.N("entry"), schema.Entry.Name())
	assert.Equal(t, atom.N("id"), schema.EntryIDName)
	assert.Equal(t, B("status"), schema.Status.Name())
}

func TestVocabularies(t *testing.T) {
	tests := []struct {
		name   string
		table  *domain.EnumTable
		uri    string
		symbol string
	}{
		{name: "attendee status", table: AttendeeStatusValues, uri: Namespace + "#event.accepted", symbol: "ACCEPTED"},
		{name: "attendee type", table: AttendeeTypeValues, uri: Namespace + "#event.optional", symbol: "OPTIONAL"},
		{name: "event status", table: EventStatusValues, uri: Namespace + "#event.canceled", symbol: "CANCELED"},
		{name: "who rel", table: WhoRelValues, uri: Namespace + "#message.reply-to", symbol: "REPLY_TO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbol, err := tt.table.ToSymbol(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.symbol, symbol)

			uri, err := tt.table.ToURI(tt.symbol)
			require.NoError(t, err)
			assert.Equal(t, tt.uri, uri)
		})
	}
	assert.Equal(t, 9, WhoRelValues.Len())
}

func TestRegisterEventKind(t *testing.T) {
	reg := services.NewRegistry()
	require.NoError(t, atom.Register(reg))
	require.NoError(t, Register(reg))

	require.NoError(t, RegisterEventKind(reg))

	entry, ok := reg.Resolve(atom.N("entry"))
	require.True(t, ok)
	assert.Same(t, EventEntry, entry)
	assert.True(t, entry.IsA(atom.Entry))
	_, ok = entry.ChildRule(atom.N("title"))
	assert.True(t, ok, "inherits the atom entry fields")
}

func TestEventEntryDecode(t *testing.T) {
	reg := services.NewRegistry()
	require.NoError(t, atom.Register(reg))
	require.NoError(t, Register(reg))
	require.NoError(t, RegisterEventKind(reg))

	source := domain.NewElement(atom.N("entry"))
	source.AddChild(domain.NewElement(atom.N("title"))).Text = "Standup"
	who := source.AddChild(domain.NewElement(N("who")))
	who.SetAttr(domain.Name("", "email"), "ada@example.com")
	who.SetAttr(domain.Name("", "rel"), Namespace+"#event.organizer")
	who.AddChild(domain.NewElement(N("attendeeStatus"))).SetAttr(domain.Name("", "value"), Namespace+"#event.accepted")

	obj, err := services.NewDecoder(reg).Decode(source, EventEntry)
	require.NoError(t, err)

	assert.Equal(t, "Standup", obj.ChildText(atom.FieldTitle))
	whos := obj.Children(FieldWho)
	require.Len(t, whos, 1)
	rel, _ := whos[0].Attr(FieldRel)
	assert.Equal(t, "ORGANIZER", rel)
	status, _ := whos[0].Child(FieldAttendeeStatus).Attr(FieldValue)
	assert.Equal(t, "ACCEPTED", status)
}
