package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
	"github.com/GAM-team/gam/internal/core/ports/driving"
	"github.com/GAM-team/gam/internal/logger"
)

// Ensure BatchService implements the interface.
var _ driving.BatchService = (*BatchService)(nil)

// ErrJournalUnavailable indicates no journal store is configured.
var ErrJournalUnavailable = errors.New("batch journal unavailable")

// ErrTransportUnavailable indicates no feed transport is configured.
var ErrTransportUnavailable = errors.New("feed transport unavailable")

// BatchService builds request feeds and interprets responses. Batch metadata
// (operation, id, status, interrupted) travels as extra children beside the
// payload; the payload itself goes through the plain decoder and encoder.
type BatchService struct {
	schema     domain.BatchSchema
	registry   Resolver
	codec      *CodecService
	journal    driven.JournalStore
	transport  driven.FeedTransport
	maxEntries int
}

// NewBatchService creates a batch service. journal and transport may be nil;
// Record, Replay and Send then fail.
func NewBatchService(
	schema domain.BatchSchema,
	registry Resolver,
	codec *CodecService,
	journal driven.JournalStore,
	transport driven.FeedTransport,
	maxEntries int,
) (*BatchService, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("batch schema: %w", err)
	}
	if codec == nil {
		return nil, fmt.Errorf("%w: batch service needs a codec", domain.ErrInvalidInput)
	}
	return &BatchService{
		schema:     schema,
		registry:   registry,
		codec:      codec,
		journal:    journal,
		transport:  transport,
		maxEntries: maxEntries,
	}, nil
}

// NewFeed starts an empty request feed.
func (s *BatchService) NewFeed() *domain.BatchFeed {
	return domain.NewBatchFeed(domain.NewObject(s.schema.Feed), s.maxEntries)
}

// AddEntry appends entry to feed under op. With a nil feed it only builds
// the entry, leaving id as given. Batch metadata already present in the
// payload, such as an entry copied from an earlier response, is dropped from
// entry's extensions; the feed writes its own.
func (s *BatchService) AddEntry(
	feed *domain.BatchFeed,
	op domain.Operation,
	entry *domain.Object,
	id string,
) (*domain.BatchEntry, error) {
	if !op.IsValid() {
		return nil, fmt.Errorf("%w: unknown batch operation %q", domain.ErrInvalidInput, op)
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: batch entry has no payload", domain.ErrInvalidInput)
	}
	if entry.Name() != s.schema.Entry.Name() {
		return nil, fmt.Errorf("%w: batch payload must be %s, got %s",
			domain.ErrSchemaMismatch, s.schema.Entry.Name(), entry.Name())
	}

	s.dropMeta(entry)

	be := &domain.BatchEntry{Entry: entry, Operation: op, ID: id}
	if feed == nil {
		// standalone entry; the caller owns the correlation id
		return be, nil
	}
	if err := feed.Add(be); err != nil {
		return nil, err
	}
	logger.Debug("Batch: added %s entry %q", op, be.ID)
	return be, nil
}

// AddByID appends a payload holding only entryID, for delete and query.
func (s *BatchService) AddByID(
	feed *domain.BatchFeed,
	op domain.Operation,
	entryID, id string,
) (*domain.BatchEntry, error) {
	if entryID == "" {
		return nil, fmt.Errorf("%w: empty entry id", domain.ErrInvalidInput)
	}
	entry := domain.NewObject(s.entryDescriptor())
	if rule, ok := entry.Descriptor().ChildRule(s.schema.EntryIDName); ok && rule.Cardinality == domain.One {
		if err := entry.SetChildText(rule.Field, entryID); err != nil {
			return nil, err
		}
	} else {
		idEl := domain.NewElement(s.schema.EntryIDName)
		idEl.Text = entryID
		entry.Extensions = append(entry.Extensions, idEl)
	}
	return s.AddEntry(feed, op, entry, id)
}

// AddInsert appends an insert entry with a positional id.
func (s *BatchService) AddInsert(feed *domain.BatchFeed, entry *domain.Object) (*domain.BatchEntry, error) {
	return s.AddEntry(feed, domain.OpInsert, entry, "")
}

// AddUpdate appends an update entry with a positional id.
func (s *BatchService) AddUpdate(feed *domain.BatchFeed, entry *domain.Object) (*domain.BatchEntry, error) {
	return s.AddEntry(feed, domain.OpUpdate, entry, "")
}

// AddDelete appends a delete entry for entryID with a positional id.
func (s *BatchService) AddDelete(feed *domain.BatchFeed, entryID string) (*domain.BatchEntry, error) {
	return s.AddByID(feed, domain.OpDelete, entryID, "")
}

// AddQuery appends a query entry for entryID with a positional id.
func (s *BatchService) AddQuery(feed *domain.BatchFeed, entryID string) (*domain.BatchEntry, error) {
	return s.AddByID(feed, domain.OpQuery, entryID, "")
}

// EncodeFeed seals feed and encodes it: feed-level data first, then the
// entries in order, then the interrupted marker if any.
func (s *BatchService) EncodeFeed(feed *domain.BatchFeed) (*domain.Element, error) {
	if feed == nil || feed.Feed == nil {
		return nil, fmt.Errorf("%w: encode needs a feed", domain.ErrInvalidInput)
	}
	feed.Seal()

	enc := s.codec.encoder
	root, err := enc.Encode(feed.Feed)
	if err != nil {
		return nil, err
	}

	for _, be := range feed.Entries() {
		el, err := enc.Encode(be.Entry)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", be.ID, err)
		}
		meta, err := s.encodeMeta(be)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", be.ID, err)
		}
		el.Children = append(el.Children, meta...)
		root.Children = append(root.Children, el)
	}

	if feed.Interrupted != nil {
		el, err := s.encodeInterrupted(feed.Interrupted)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, el)
	}

	logger.Debug("Batch: encoded %d entries", feed.Len())
	return root, nil
}

// DecodeFeed decodes a batch document. The result is sealed.
func (s *BatchService) DecodeFeed(el *domain.Element) (*domain.BatchFeed, error) {
	if el == nil {
		return nil, fmt.Errorf("%w: decode needs an element", domain.ErrInvalidInput)
	}
	if el.Name != s.schema.Feed.Name() {
		return nil, fmt.Errorf("%w: expected %s, got %s", domain.ErrSchemaMismatch, s.schema.Feed.Name(), el.Name)
	}

	feedEl := &domain.Element{Name: el.Name, Attrs: el.Attrs, Text: el.Text}
	var entryEls []*domain.Element
	var interrupted *domain.BatchInterrupted
	for _, child := range el.Children {
		switch child.Name {
		case s.schema.Entry.Name():
			entryEls = append(entryEls, child)
		case s.schema.Interrupted.Name():
			in, err := s.decodeInterrupted(child)
			if err != nil {
				return nil, err
			}
			interrupted = in
		default:
			feedEl.Children = append(feedEl.Children, child)
		}
	}

	feedObj, err := s.codec.decoder.Decode(feedEl, s.schema.Feed)
	if err != nil {
		return nil, err
	}

	feed := domain.NewBatchFeed(feedObj, 0)
	feed.Interrupted = interrupted
	for i, entryEl := range entryEls {
		be, err := s.decodeEntry(entryEl)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := feed.Add(be); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	feed.Seal()

	logger.Debug("Batch: decoded %d entries (interrupted=%t)", feed.Len(), interrupted != nil)
	return feed, nil
}

// Interpret classifies every request entry against the response. Entries
// are independent: one failure never affects its siblings. When the
// response is interrupted, response entries at or beyond the parsed count
// are not executed whatever status they carry. A nil request interprets
// the response on its own.
func (s *BatchService) Interpret(request, response *domain.BatchFeed) *domain.BatchReport {
	report := &domain.BatchReport{}
	if response == nil {
		if request != nil {
			for _, req := range request.Entries() {
				report.Results = append(report.Results, domain.BatchResult{
					ID: req.ID, Operation: req.Operation, Outcome: domain.OutcomeNotExecuted, Request: req,
				})
			}
		}
		return report
	}
	report.Interrupted = response.Interrupted

	type indexed struct {
		entry *domain.BatchEntry
		index int
	}
	responses := response.Entries()
	byID := make(map[string]indexed, len(responses))
	for i, e := range responses {
		if _, dup := byID[e.ID]; !dup {
			byID[e.ID] = indexed{entry: e, index: i}
		}
	}

	classify := func(resp *domain.BatchEntry, index int) domain.BatchOutcome {
		if in := response.Interrupted; in != nil && index >= in.Parsed {
			return domain.OutcomeNotExecuted
		}
		if resp.Status == nil || !resp.Status.Succeeded() {
			return domain.OutcomeFailed
		}
		return domain.OutcomeSucceeded
	}

	matched := make(map[int]bool, len(responses))
	if request != nil {
		for _, req := range request.Entries() {
			res := domain.BatchResult{ID: req.ID, Operation: req.Operation, Request: req}
			hit, ok := byID[req.ID]
			if !ok {
				res.Outcome = domain.OutcomeNotExecuted
				report.Results = append(report.Results, res)
				continue
			}
			matched[hit.index] = true
			res.Response = hit.entry
			res.Status = hit.entry.Status
			res.Outcome = classify(hit.entry, hit.index)
			report.Results = append(report.Results, res)
		}
	}

	for i, resp := range responses {
		if matched[i] {
			continue
		}
		res := domain.BatchResult{
			ID:        resp.ID,
			Operation: resp.Operation,
			Status:    resp.Status,
			Response:  resp,
		}
		if request != nil {
			res.Outcome = domain.OutcomeUnmatched
		} else {
			res.Outcome = classify(resp, i)
		}
		report.Results = append(report.Results, res)
	}

	logger.Debug("Batch: %d succeeded, %d failed, %d not executed, %d unmatched",
		report.Count(domain.OutcomeSucceeded), report.Count(domain.OutcomeFailed),
		report.Count(domain.OutcomeNotExecuted), report.Count(domain.OutcomeUnmatched))
	return report
}

// Record seals and encodes feed and stores it as a new journal.
func (s *BatchService) Record(ctx context.Context, feed *domain.BatchFeed) (*domain.Journal, error) {
	if s.journal == nil {
		return nil, ErrJournalUnavailable
	}
	el, err := s.EncodeFeed(feed)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.codec.WriteElement(&buf, el); err != nil {
		return nil, fmt.Errorf("writing batch feed: %w", err)
	}

	journal := domain.Journal{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Feed:      buf.Bytes(),
	}
	for _, be := range feed.Entries() {
		journal.Entries = append(journal.Entries, domain.JournalEntry{
			ID:        be.ID,
			Operation: be.Operation,
			EntryID:   s.entryID(be.Entry),
		})
	}

	if err := s.journal.Save(ctx, journal); err != nil {
		return nil, fmt.Errorf("saving journal: %w", err)
	}
	logger.Info("Batch: journal %s recorded with %d entries", journal.ID, len(journal.Entries))
	return &journal, nil
}

// Replay reloads the request feed recorded under journalID.
func (s *BatchService) Replay(ctx context.Context, journalID string) (*domain.BatchFeed, error) {
	_, feed, err := s.replay(ctx, journalID)
	return feed, err
}

// Journals lists recorded request feeds, newest first.
func (s *BatchService) Journals(ctx context.Context) ([]domain.Journal, error) {
	if s.journal == nil {
		return nil, ErrJournalUnavailable
	}
	return s.journal.List(ctx)
}

// Forget removes the journal recorded under journalID.
func (s *BatchService) Forget(ctx context.Context, journalID string) error {
	if s.journal == nil {
		return ErrJournalUnavailable
	}
	if _, err := s.journal.Get(ctx, journalID); err != nil {
		return fmt.Errorf("journal %s: %w", journalID, err)
	}
	if err := s.journal.Delete(ctx, journalID); err != nil {
		return fmt.Errorf("journal %s: %w", journalID, err)
	}
	logger.Info("Batch: journal %s removed", journalID)
	return nil
}

// Send posts the journalled request to url and interprets the response.
// Nothing is retried; an interrupted batch is reported through the report's Err.
func (s *BatchService) Send(ctx context.Context, journalID, url string) (*domain.BatchReport, error) {
	if s.transport == nil {
		return nil, ErrTransportUnavailable
	}
	journal, request, err := s.replay(ctx, journalID)
	if err != nil {
		return nil, err
	}

	logger.Section("Batch Send")
	logger.Debug("POST %s (%d entries)", url, request.Len())
	body, err := s.transport.Post(ctx, url, journal.Feed)
	if err != nil {
		return nil, fmt.Errorf("posting batch: %w", err)
	}

	el, err := s.codec.ReadElement(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("reading batch response: %w", err)
	}
	response, err := s.DecodeFeed(el)
	if err != nil {
		return nil, fmt.Errorf("decoding batch response: %w", err)
	}
	return s.Interpret(request, response), nil
}

func (s *BatchService) replay(ctx context.Context, journalID string) (*domain.Journal, *domain.BatchFeed, error) {
	if s.journal == nil {
		return nil, nil, ErrJournalUnavailable
	}
	journal, err := s.journal.Get(ctx, journalID)
	if err != nil {
		return nil, nil, fmt.Errorf("journal %s: %w", journalID, err)
	}
	el, err := s.codec.ReadElement(bytes.NewReader(journal.Feed))
	if err != nil {
		return nil, nil, fmt.Errorf("journal %s: %w", journalID, err)
	}
	feed, err := s.DecodeFeed(el)
	if err != nil {
		return nil, nil, fmt.Errorf("journal %s: %w", journalID, err)
	}
	return journal, feed, nil
}

func (s *BatchService) entryDescriptor() *domain.Descriptor {
	if s.registry != nil {
		if d, ok := s.registry.Resolve(s.schema.Entry.Name()); ok {
			return d
		}
	}
	return s.schema.Entry
}

func (s *BatchService) entryID(entry *domain.Object) string {
	if rule, ok := entry.Descriptor().ChildRule(s.schema.EntryIDName); ok && rule.Cardinality == domain.One {
		return strings.TrimSpace(entry.ChildText(rule.Field))
	}
	for _, ext := range entry.Extensions {
		if ext.Name == s.schema.EntryIDName {
			return strings.TrimSpace(ext.Text)
		}
	}
	return ""
}

// isMeta reports whether name is one of the batch metadata elements.
func (s *BatchService) isMeta(name domain.QName) bool {
	switch name {
	case s.schema.Operation.Name(), s.schema.ID.Name(), s.schema.Status.Name(), s.schema.Interrupted.Name():
		return true
	}
	return false
}

func (s *BatchService) dropMeta(entry *domain.Object) {
	kept := make([]*domain.Element, 0, len(entry.Extensions))
	for _, ext := range entry.Extensions {
		if s.isMeta(ext.Name) {
			logger.Debug("Batch: dropping %s from payload", ext.Name)
			continue
		}
		kept = append(kept, ext)
	}
	if len(kept) != len(entry.Extensions) {
		entry.Extensions = kept
	}
}

func (s *BatchService) decodeEntry(el *domain.Element) (*domain.BatchEntry, error) {
	payload := &domain.Element{Name: el.Name, Attrs: el.Attrs, Text: el.Text}
	be := &domain.BatchEntry{}
	dec := s.codec.decoder

	for _, child := range el.Children {
		switch child.Name {
		case s.schema.Operation.Name():
			obj, err := dec.Decode(child, s.schema.Operation)
			if err != nil {
				return nil, err
			}
			raw, _ := obj.Attr(domain.BatchFieldOperationType)
			op, err := domain.ParseOperation(raw)
			if err != nil {
				return nil, err
			}
			be.Operation = op
		case s.schema.ID.Name():
			obj, err := dec.Decode(child, s.schema.ID)
			if err != nil {
				return nil, err
			}
			be.ID = strings.TrimSpace(obj.Text)
		case s.schema.Status.Name():
			obj, err := dec.Decode(child, s.schema.Status)
			if err != nil {
				return nil, err
			}
			status, err := statusFromObject(obj)
			if err != nil {
				return nil, err
			}
			be.Status = status
		default:
			payload.Children = append(payload.Children, child)
		}
	}

	entry, err := dec.Decode(payload, s.entryDescriptor())
	if err != nil {
		return nil, err
	}
	be.Entry = entry
	return be, nil
}

func (s *BatchService) encodeMeta(be *domain.BatchEntry) ([]*domain.Element, error) {
	enc := s.codec.encoder
	var out []*domain.Element

	if be.Operation != "" {
		op := domain.NewObject(s.schema.Operation)
		if err := op.SetAttr(domain.BatchFieldOperationType, be.Operation.String()); err != nil {
			return nil, err
		}
		el, err := enc.Encode(op)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}

	id := domain.NewObject(s.schema.ID)
	id.Text = be.ID
	el, err := enc.Encode(id)
	if err != nil {
		return nil, err
	}
	out = append(out, el)

	if be.Status != nil {
		st := domain.NewObject(s.schema.Status)
		fields := [][2]string{
			{domain.BatchFieldStatusCode, strconv.Itoa(be.Status.Code)},
			{domain.BatchFieldStatusReason, be.Status.Reason},
		}
		if be.Status.ContentType != "" {
			fields = append(fields, [2]string{domain.BatchFieldStatusContentType, be.Status.ContentType})
		}
		for _, f := range fields {
			if err := st.SetAttr(f[0], f[1]); err != nil {
				return nil, err
			}
		}
		el, err := enc.Encode(st)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

func (s *BatchService) encodeInterrupted(in *domain.BatchInterrupted) (*domain.Element, error) {
	obj := domain.NewObject(s.schema.Interrupted)
	for _, f := range [][2]string{
		{domain.BatchFieldInterruptedReason, in.Reason},
		{domain.BatchFieldInterruptedSuccess, strconv.Itoa(in.Success)},
		{domain.BatchFieldInterruptedFailures, strconv.Itoa(in.Failures)},
		{domain.BatchFieldInterruptedParsed, strconv.Itoa(in.Parsed)},
	} {
		if err := obj.SetAttr(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	return s.codec.encoder.Encode(obj)
}

func (s *BatchService) decodeInterrupted(el *domain.Element) (*domain.BatchInterrupted, error) {
	obj, err := s.codec.decoder.Decode(el, s.schema.Interrupted)
	if err != nil {
		return nil, err
	}
	in := &domain.BatchInterrupted{}
	in.Reason, _ = obj.Attr(domain.BatchFieldInterruptedReason)
	counts := []struct {
		field string
		dst   *int
	}{
		{domain.BatchFieldInterruptedSuccess, &in.Success},
		{domain.BatchFieldInterruptedFailures, &in.Failures},
		{domain.BatchFieldInterruptedParsed, &in.Parsed},
	}
	for _, c := range counts {
		n, err := intAttr(obj, c.field)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return in, nil
}

func statusFromObject(obj *domain.Object) (*domain.BatchStatus, error) {
	code, err := intAttr(obj, domain.BatchFieldStatusCode)
	if err != nil {
		return nil, err
	}
	status := &domain.BatchStatus{Code: code}
	status.Reason, _ = obj.Attr(domain.BatchFieldStatusReason)
	status.ContentType, _ = obj.Attr(domain.BatchFieldStatusContentType)
	return status, nil
}

func intAttr(obj *domain.Object, field string) (int, error) {
	raw, ok := obj.Attr(field)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &domain.FieldError{Type: obj.Name(), Field: field, Value: raw, Err: domain.ErrInvalidInput}
	}
	return n, nil
}
