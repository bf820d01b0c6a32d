package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAM-team/gam/internal/adapters/driven/storage/memory"
	"github.com/GAM-team/gam/internal/adapters/driven/xmltree"
	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/schemas"
	"github.com/GAM-team/gam/internal/schemas/atom"
	"github.com/GAM-team/gam/internal/schemas/gdata"
)

type fakeTransport struct {
	response string
	err      error
	url      string
	body     []byte
}

func (f *fakeTransport) Post(_ context.Context, url string, body []byte) ([]byte, error) {
	f.url = url
	f.body = body
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.response), nil
}

type batchFixture struct {
	svc       *BatchService
	codec     *CodecService
	journal   *memory.JournalStore
	transport *fakeTransport
}

func newBatchFixture(t *testing.T, maxEntries int) *batchFixture {
	t.Helper()
	registry := NewRegistry()
	require.NoError(t, schemas.RegisterBuiltins(registry))
	registry.Freeze()

	codec := NewCodecService(registry, xmltree.NewReader(), xmltree.NewWriter("  ", schemas.Prefixes()))
	f := &batchFixture{
		codec:     codec,
		journal:   memory.NewJournalStore(),
		transport: &fakeTransport{},
	}
	svc, err := NewBatchService(gdata.BatchSchema(), registry, codec, f.journal, f.transport, maxEntries)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func atomEntry(t *testing.T, id, title string) *domain.Object {
	t.Helper()
	entry := domain.NewObject(atom.Entry)
	if id != "" {
		require.NoError(t, entry.SetChildText(atom.FieldID, id))
	}
	if title != "" {
		require.NoError(t, entry.SetChildText(atom.FieldTitle, title))
	}
	return entry
}

func (f *batchFixture) fourOps(t *testing.T) *domain.BatchFeed {
	t.Helper()
	feed := f.svc.NewFeed()
	_, err := f.svc.AddInsert(feed, atomEntry(t, "", "new"))
	require.NoError(t, err)
	_, err = f.svc.AddUpdate(feed, atomEntry(t, "e1", "changed"))
	require.NoError(t, err)
	_, err = f.svc.AddDelete(feed, "e2")
	require.NoError(t, err)
	_, err = f.svc.AddQuery(feed, "e3")
	require.NoError(t, err)
	return feed
}

func (f *batchFixture) readFeed(t *testing.T, doc string) *domain.BatchFeed {
	t.Helper()
	el, err := f.codec.ReadElement(strings.NewReader(doc))
	require.NoError(t, err)
	feed, err := f.svc.DecodeFeed(el)
	require.NoError(t, err)
	return feed
}

// responseFeed wraps entries in a batch response feed; each entry is
// {id, code}.
func responseFeed(interrupted string, entries ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom" xmlns:batch="http://schemas.google.com/gdata/batch">`)
	b.WriteString(`<title>Batch response</title>`)
	for _, e := range entries {
		fmt.Fprintf(&b, `<entry><id>urn:entry:%s</id><batch:id>%s</batch:id>`+
			`<batch:status code="%s" reason="r%s"/></entry>`, e[0], e[0], e[1], e[1])
	}
	b.WriteString(interrupted)
	b.WriteString(`</feed>`)
	return b.String()
}

func TestNewBatchService_Errors(t *testing.T) {
	codec := newTestCodec()

	_, err := NewBatchService(domain.BatchSchema{}, nil, codec, nil, nil, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewBatchService(gdata.BatchSchema(), nil, nil, nil, nil, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBatchService_PositionalIDs(t *testing.T) {
	f := newBatchFixture(t, 0)
	feed := f.fourOps(t)

	entries := feed.Entries()
	require.Len(t, entries, 4)
	ops := []domain.Operation{domain.OpInsert, domain.OpUpdate, domain.OpDelete, domain.OpQuery}
	for i, e := range entries {
		assert.Equal(t, fmt.Sprint(i), e.ID)
		assert.Equal(t, ops[i], e.Operation)
	}
	assert.Equal(t, "e2", entries[2].Entry.ChildText(atom.FieldID))
}

func TestBatchService_AddEntryErrors(t *testing.T) {
	f := newBatchFixture(t, 1)
	feed := f.svc.NewFeed()

	tests := []struct {
		name  string
		op    domain.Operation
		entry *domain.Object
		want  error
	}{
		{name: "unknown op", op: "merge", entry: atomEntry(t, "", ""), want: domain.ErrInvalidInput},
		{name: "nil payload", op: domain.OpInsert, entry: nil, want: domain.ErrInvalidInput},
		{name: "wrong payload", op: domain.OpInsert, entry: domain.NewObject(atom.Link), want: domain.ErrSchemaMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddEntry(feed, tt.op, tt.entry, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.svc.AddDelete(feed, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.AddInsert(feed, atomEntry(t, "", ""))
	require.NoError(t, err)
	_, err = f.svc.AddInsert(feed, atomEntry(t, "", ""))
	assert.ErrorIs(t, err, domain.ErrBatchTooLarge)
	assert.Equal(t, 1, feed.Len())
}

func TestBatchService_StandaloneEntry(t *testing.T) {
	f := newBatchFixture(t, 0)

	be, err := f.svc.AddEntry(nil, domain.OpUpdate, atomEntry(t, "e1", ""), "mine")

	require.NoError(t, err)
	assert.Equal(t, "mine", be.ID)
	assert.Equal(t, domain.OpUpdate, be.Operation)
}

func TestBatchService_AddEntryDropsCopiedMetadata(t *testing.T) {
	f := newBatchFixture(t, 0)
	doc := `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:batch="http://schemas.google.com/gdata/batch"
    xmlns:x="urn:ext">
  <title>copied</title>
  <batch:id>old-7</batch:id>
  <batch:operation type="update"/>
  <batch:status code="200" reason="OK"/>
  <x:keep>yes</x:keep>
</entry>`
	entry, err := f.codec.Parse(strings.NewReader(doc), nil)
	require.NoError(t, err)
	require.Len(t, entry.Extensions, 4)

	feed := f.svc.NewFeed()
	_, err = f.svc.AddInsert(feed, entry)
	require.NoError(t, err)
	require.Len(t, entry.Extensions, 1)
	assert.Equal(t, domain.Name("urn:ext", "keep"), entry.Extensions[0].Name)

	el, err := f.svc.EncodeFeed(feed)
	require.NoError(t, err)
	require.Len(t, el.Children, 1)

	counts := map[domain.QName]int{}
	for _, c := range el.Children[0].Children {
		counts[c.Name]++
	}
	assert.Equal(t, 1, counts[gdata.B("id")])
	assert.Equal(t, 1, counts[gdata.B("operation")])
	assert.Zero(t, counts[gdata.B("status")])

	id := el.Children[0].Child(gdata.B("id"))
	require.NotNil(t, id)
	assert.Equal(t, "0", id.Text)
	op := el.Children[0].Child(gdata.B("operation"))
	require.NotNil(t, op)
	typ, _ := op.Attr(domain.Name("", "type"))
	assert.Equal(t, "insert", typ)
}

func TestBatchService_EncodeFeed(t *testing.T) {
	f := newBatchFixture(t, 0)
	feed := f.fourOps(t)

	el, err := f.svc.EncodeFeed(feed)
	require.NoError(t, err)

	assert.Equal(t, atom.N("feed"), el.Name)
	require.Len(t, el.Children, 4)
	for i, entryEl := range el.Children {
		assert.Equal(t, atom.N("entry"), entryEl.Name)
		n := len(entryEl.Children)
		require.GreaterOrEqual(t, n, 2)

		op := entryEl.Children[n-2]
		assert.Equal(t, gdata.B("operation"), op.Name)
		typ, _ := op.Attr(domain.Name("", "type"))
		assert.Equal(t, feed.Entries()[i].Operation.String(), typ)

		id := entryEl.Children[n-1]
		assert.Equal(t, gdata.B("id"), id.Name)
		assert.Equal(t, fmt.Sprint(i), id.Text)
	}

	// encoding seals the feed
	assert.True(t, feed.Sealed())
	_, err = f.svc.AddQuery(feed, "late")
	assert.ErrorIs(t, err, domain.ErrBatchSealed)
}

func TestBatchService_EncodeDecodeRoundTrip(t *testing.T) {
	f := newBatchFixture(t, 0)
	request := f.fourOps(t)
	request.Interrupted = &domain.BatchInterrupted{Reason: "quota", Success: 1, Failures: 1, Parsed: 2}

	el, err := f.svc.EncodeFeed(request)
	require.NoError(t, err)
	decoded, err := f.svc.DecodeFeed(el)
	require.NoError(t, err)

	assert.True(t, decoded.Sealed())
	assert.Equal(t, request.Interrupted, decoded.Interrupted)
	require.Equal(t, request.Len(), decoded.Len())
	for _, want := range request.Entries() {
		got, ok := decoded.Entry(want.ID)
		require.True(t, ok, want.ID)
		assert.Equal(t, want.Operation, got.Operation)
		assert.True(t, want.Entry.Equal(got.Entry), "entry %s payload", want.ID)
		assert.Nil(t, got.Status)
	}
}

func TestBatchService_DecodeFeedErrors(t *testing.T) {
	f := newBatchFixture(t, 0)

	_, err := f.svc.DecodeFeed(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.DecodeFeed(domain.NewElement(atom.N("entry")))
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "bad interrupted count",
			doc:  responseFeed(`<batch:interrupted reason="x" success="1" failures="0" parsed="many"/>`),
		},
		{
			name: "bad status code",
			doc: `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:batch="http://schemas.google.com/gdata/batch">` +
				`<entry><batch:id>0</batch:id><batch:status code="ok"/></entry></feed>`,
		},
		{
			name: "bad operation",
			doc: `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:batch="http://schemas.google.com/gdata/batch">` +
				`<entry><batch:operation type="merge"/></entry></feed>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, err := f.codec.ReadElement(strings.NewReader(tt.doc))
			require.NoError(t, err)
			_, err = f.svc.DecodeFeed(el)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestBatchService_DecodeStatus(t *testing.T) {
	f := newBatchFixture(t, 0)
	doc := `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:batch="http://schemas.google.com/gdata/batch">` +
		`<entry><batch:id>7</batch:id>` +
		`<batch:status code="409" reason="Conflict" content-type="text/plain"/></entry></feed>`

	feed := f.readFeed(t, doc)

	be, ok := feed.Entry("7")
	require.True(t, ok)
	assert.Equal(t, &domain.BatchStatus{Code: 409, Reason: "Conflict", ContentType: "text/plain"}, be.Status)
	assert.Empty(t, be.Operation)
	assert.Empty(t, be.Entry.Extensions, "batch metadata is not left in the payload")
}

func TestBatchService_Interpret(t *testing.T) {
	f := newBatchFixture(t, 0)
	request := f.fourOps(t)
	response := f.readFeed(t, responseFeed("", [2]string{"1", "404"}, [2]string{"0", "201"}, [2]string{"zz", "200"}))

	report := f.svc.Interpret(request, response)

	require.Len(t, report.Results, 5)
	want := map[string]domain.BatchOutcome{
		"0":  domain.OutcomeSucceeded,
		"1":  domain.OutcomeFailed,
		"2":  domain.OutcomeNotExecuted,
		"3":  domain.OutcomeNotExecuted,
		"zz": domain.OutcomeUnmatched,
	}
	for id, outcome := range want {
		res, ok := report.Result(id)
		require.True(t, ok, id)
		assert.Equal(t, outcome, res.Outcome, id)
	}

	res, _ := report.Result("1")
	assert.Equal(t, domain.OpUpdate, res.Operation, "operation comes from the request")
	assert.Equal(t, 404, res.Status.Code)
	assert.NoError(t, report.Err())
}

func TestBatchService_InterpretInterrupted(t *testing.T) {
	f := newBatchFixture(t, 0)
	request := f.svc.NewFeed()
	for i := 0; i < 5; i++ {
		_, err := f.svc.AddInsert(request, atomEntry(t, "", fmt.Sprint("entry ", i)))
		require.NoError(t, err)
	}
	doc := responseFeed(`<batch:interrupted reason="quota" success="3" failures="0" parsed="3"/>`,
		[2]string{"0", "200"}, [2]string{"1", "200"}, [2]string{"2", "200"},
		[2]string{"3", "200"}, [2]string{"4", "200"})
	response := f.readFeed(t, doc)

	report := f.svc.Interpret(request, response)

	for i, res := range report.Results {
		if i < 3 {
			assert.Equal(t, domain.OutcomeSucceeded, res.Outcome, res.ID)
		} else {
			assert.Equal(t, domain.OutcomeNotExecuted, res.Outcome, "entry %s is past the parsed count", res.ID)
		}
	}
	assert.Equal(t, 3, report.Count(domain.OutcomeSucceeded))
	assert.Equal(t, 2, report.Count(domain.OutcomeNotExecuted))
	require.NotNil(t, report.Interrupted)
	assert.Equal(t, 3, report.Interrupted.Parsed)
	assert.ErrorIs(t, report.Err(), domain.ErrBatchInterrupted)
}

func TestBatchService_InterpretNilFeeds(t *testing.T) {
	f := newBatchFixture(t, 0)
	request := f.fourOps(t)

	report := f.svc.Interpret(request, nil)
	assert.Equal(t, 4, report.Count(domain.OutcomeNotExecuted))

	response := f.readFeed(t, responseFeed("", [2]string{"a", "200"}, [2]string{"b", "500"}))
	report = f.svc.Interpret(nil, response)
	require.Len(t, report.Results, 2)
	assert.Equal(t, domain.OutcomeSucceeded, report.Results[0].Outcome)
	assert.Equal(t, domain.OutcomeFailed, report.Results[1].Outcome)

	assert.Empty(t, f.svc.Interpret(nil, nil).Results)
}

func TestBatchService_RecordAndReplay(t *testing.T) {
	f := newBatchFixture(t, 0)
	ctx := context.Background()
	request := f.fourOps(t)

	journal, err := f.svc.Record(ctx, request)
	require.NoError(t, err)

	assert.NotEmpty(t, journal.ID)
	assert.False(t, journal.CreatedAt.IsZero())
	assert.Contains(t, string(journal.Feed), `batch:operation type="delete"`)
	assert.Equal(t, []domain.JournalEntry{
		{ID: "0", Operation: domain.OpInsert},
		{ID: "1", Operation: domain.OpUpdate, EntryID: "e1"},
		{ID: "2", Operation: domain.OpDelete, EntryID: "e2"},
		{ID: "3", Operation: domain.OpQuery, EntryID: "e3"},
	}, journal.Entries)

	replayed, err := f.svc.Replay(ctx, journal.ID)
	require.NoError(t, err)
	require.Equal(t, 4, replayed.Len())
	for _, want := range request.Entries() {
		got, ok := replayed.Entry(want.ID)
		require.True(t, ok)
		assert.Equal(t, want.Operation, got.Operation)
	}

	_, err = f.svc.Replay(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBatchService_Send(t *testing.T) {
	f := newBatchFixture(t, 0)
	ctx := context.Background()
	journal, err := f.svc.Record(ctx, f.fourOps(t))
	require.NoError(t, err)

	f.transport.response = responseFeed("",
		[2]string{"0", "201"}, [2]string{"1", "200"}, [2]string{"2", "200"}, [2]string{"3", "404"})

	report, err := f.svc.Send(ctx, journal.ID, "https://example.com/batch")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/batch", f.transport.url)
	assert.Equal(t, journal.Feed, f.transport.body)
	assert.Equal(t, 3, report.Count(domain.OutcomeSucceeded))
	assert.Equal(t, 1, report.Count(domain.OutcomeFailed))
}

func TestBatchService_SendErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("transport failure", func(t *testing.T) {
		f := newBatchFixture(t, 0)
		journal, err := f.svc.Record(ctx, f.fourOps(t))
		require.NoError(t, err)
		boom := errors.New("connection refused")
		f.transport.err = boom

		_, err = f.svc.Send(ctx, journal.ID, "https://example.com/batch")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("malformed response", func(t *testing.T) {
		f := newBatchFixture(t, 0)
		journal, err := f.svc.Record(ctx, f.fourOps(t))
		require.NoError(t, err)
		f.transport.response = "<feed"

		_, err = f.svc.Send(ctx, journal.ID, "https://example.com/batch")
		assert.ErrorIs(t, err, domain.ErrMalformedDocument)
	})

	t.Run("unknown journal", func(t *testing.T) {
		f := newBatchFixture(t, 0)

		_, err := f.svc.Send(ctx, "missing", "https://example.com/batch")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, f.transport.url, "nothing is posted")
	})
}

func TestBatchService_JournalsAndForget(t *testing.T) {
	f := newBatchFixture(t, 0)
	ctx := context.Background()

	first, err := f.svc.Record(ctx, f.fourOps(t))
	require.NoError(t, err)
	second, err := f.svc.Record(ctx, f.fourOps(t))
	require.NoError(t, err)

	journals, err := f.svc.Journals(ctx)
	require.NoError(t, err)
	var ids []string
	for _, j := range journals {
		ids = append(ids, j.ID)
	}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	require.NoError(t, f.svc.Forget(ctx, first.ID))
	_, err = f.svc.Replay(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.svc.Forget(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	journals, err = f.svc.Journals(ctx)
	require.NoError(t, err)
	assert.Len(t, journals, 1)
}

func TestBatchService_Unavailable(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec()
	svc, err := NewBatchService(gdata.BatchSchema(), nil, codec, nil, nil, 0)
	require.NoError(t, err)

	_, err = svc.Record(ctx, svc.NewFeed())
	assert.ErrorIs(t, err, ErrJournalUnavailable)
	_, err = svc.Replay(ctx, "x")
	assert.ErrorIs(t, err, ErrJournalUnavailable)
	_, err = svc.Journals(ctx)
	assert.ErrorIs(t, err, ErrJournalUnavailable)
	assert.ErrorIs(t, svc.Forget(ctx, "x"), ErrJournalUnavailable)
	_, err = svc.Send(ctx, "x", "https://example.com")
	assert.ErrorIs(t, err, ErrTransportUnavailable)
}
