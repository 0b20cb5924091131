// Package session owns one edit lifecycle of a single list item: load,
// tracked edits, and a save that sends only what changed.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-listsync/pkg/mapper"
	"github.com/goliatone/go-listsync/pkg/reconcile"
	"github.com/goliatone/go-listsync/pkg/store"
)

// ErrNotLoaded is returned when an existing record is saved before Load.
var ErrNotLoaded = errors.New("session: record not loaded")

const defaultAttachmentField = "Attachments"

// Option customises a Session.
type Option func(*Session)

// WithMapper injects a configured value mapper. Sessions default to an
// identity mapping when none is supplied.
func WithMapper(m *mapper.Mapper) Option {
	return func(s *Session) {
		s.mapper = m
	}
}

// WithExecutor injects the attachment executor, letting callers tune pacing.
func WithExecutor(e *reconcile.Executor) Option {
	return func(s *Session) {
		s.exec = e
	}
}

// WithAttachmentField overrides the form field name that holds the item's
// attachment set.
func WithAttachmentField(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.attachmentField = name
		}
	}
}

// Session is a single-editor edit session over one list item. It owns its
// form values, baseline snapshot, and dirty set; nothing is shared across
// concurrent sessions.
type Session struct {
	store           store.Store
	mapper          *mapper.Mapper
	exec            *reconcile.Executor
	list            string
	itemID          int
	attachmentField string

	values       map[string]any
	tracker      *tracker
	baselineAtts []store.Attachment
	loaded       bool
}

// New opens a session for the given list item. itemID 0 starts a new record:
// the session is immediately editable against an empty baseline. For an
// existing record call Load before editing.
func New(s store.Store, list string, itemID int, opts ...Option) (*Session, error) {
	if s == nil {
		return nil, errors.New("session: store is required")
	}
	if list == "" {
		return nil, errors.New("session: list name is required")
	}
	if itemID < 0 {
		return nil, fmt.Errorf("session: invalid item id %d", itemID)
	}

	sess := &Session{
		store:           s,
		list:            list,
		itemID:          itemID,
		attachmentField: defaultAttachmentField,
		values:          make(map[string]any),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(sess)
	}

	if sess.mapper == nil {
		m, err := mapper.New(nil)
		if err != nil {
			return nil, err
		}
		sess.mapper = m
	}
	if sess.exec == nil {
		exec, err := reconcile.NewExecutor(s)
		if err != nil {
			return nil, err
		}
		sess.exec = exec
	}

	sess.tracker = newTracker(sess.values)
	sess.loaded = itemID == 0
	return sess, nil
}

// List returns the list this session edits.
func (s *Session) List() string { return s.list }

// ItemID returns the remote item id, 0 until a new record has been created.
func (s *Session) ItemID() int { return s.itemID }

// Load fetches the remote record, maps it into form values, and snapshots the
// baseline the dirty set is computed against.
func (s *Session) Load(ctx context.Context) error {
	if ctx == nil {
		return errors.New("session: context is required")
	}
	if s.itemID == 0 {
		return errors.New("session: nothing to load for a new record")
	}

	record, err := s.store.FetchItem(ctx, s.list, s.itemID)
	if err != nil {
		return fmt.Errorf("session: load item %s/%d: %w", s.list, s.itemID, err)
	}

	s.values = s.mapper.ToFormValues(record)
	if raw, ok := s.values[s.attachmentField]; ok {
		atts := decodeAttachments(raw)
		s.values[s.attachmentField] = atts
		s.baselineAtts = append([]store.Attachment(nil), atts...)
	} else {
		s.baselineAtts = nil
	}

	s.tracker.rebase(s.values)
	s.loaded = true
	return nil
}

// SetValue records an edit and recomputes the field's dirty membership.
func (s *Session) SetValue(field string, value any) {
	s.values[field] = value
	s.tracker.mark(field, value)
}

// Value returns the current value of a form field.
func (s *Session) Value(field string) (any, bool) {
	v, ok := s.values[field]
	return v, ok
}

// Values returns a shallow copy of the current form value set.
func (s *Session) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for name, value := range s.values {
		out[name] = value
	}
	return out
}

// Dirty returns the sorted names of fields that differ from the baseline.
func (s *Session) Dirty() []string {
	return s.tracker.names()
}

// ResetBaseline re-snapshots the current values as the new baseline and
// clears the dirty set.
func (s *Session) ResetBaseline() {
	s.tracker.rebase(s.values)
}

// SaveResult reports the outcome of a save: the primary record outcome plus
// the settled per-attachment results. A successful primary save with failed
// attachment operations means the session is partially applied; the failed
// pending uploads stay dirty so a later save retries them.
type SaveResult struct {
	ItemID      int
	Created     bool
	Payload     map[string]any
	Attachments []reconcile.Result
}

// PartiallyApplied reports whether any attachment operation failed after the
// primary record was saved.
func (r SaveResult) PartiallyApplied() bool {
	return len(reconcile.Failed(r.Attachments)) > 0
}

// Save persists the session. New records send the full value set through
// CreateItem; existing records send only dirty fields through UpdateItem. A
// primary-save failure is fatal and aborts before any attachment work runs.
// Attachment failures are isolated per item and surface in the result.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	if ctx == nil {
		return SaveResult{}, errors.New("session: context is required")
	}
	if !s.loaded {
		return SaveResult{}, ErrNotLoaded
	}

	var (
		payload mapper.Payload
		result  SaveResult
	)

	if s.itemID == 0 {
		payload = s.mapper.ToRemotePayload(s.values, nil, nil)
		record, err := s.store.CreateItem(ctx, s.list, payload.Fields)
		if err != nil {
			return SaveResult{}, fmt.Errorf("session: create item in %s: %w", s.list, err)
		}
		id, err := itemIDFromRecord(record)
		if err != nil {
			return SaveResult{}, err
		}
		s.itemID = id
		result.Created = true
	} else {
		payload = s.mapper.ToRemotePayload(s.values, s.tracker.names(), s.baselineAtts)
		if len(payload.Fields) > 0 {
			if err := s.store.UpdateItem(ctx, s.list, s.itemID, payload.Fields); err != nil {
				return SaveResult{}, fmt.Errorf("session: update item %s/%d: %w", s.list, s.itemID, err)
			}
		}
	}
	result.ItemID = s.itemID
	result.Payload = payload.Fields

	plan := reconcile.Plan{Uploads: payload.ToUpload, Deletes: payload.ToDelete}
	if !plan.Empty() {
		settled, err := s.exec.Run(ctx, s.list, s.itemID, plan)
		result.Attachments = settled
		if err != nil {
			return result, fmt.Errorf("session: reconcile attachments %s/%d: %w", s.list, s.itemID, err)
		}
	}

	s.foldAttachments(result.Attachments)
	return result, nil
}

// foldAttachments settles the attachment field after a save and resets the
// baseline to what is now persisted remotely. Successful uploads replace
// their pending entries; failed pending uploads and failed deletes are kept
// out of / in the baseline respectively, so the field stays dirty and the
// next save retries exactly the failed operations.
func (s *Session) foldAttachments(settled []reconcile.Result) {
	uploaded := make(map[string]store.Attachment)
	deleteFailed := make(map[string]struct{})
	for _, res := range settled {
		switch {
		case res.Op == reconcile.OpUpload && res.OK():
			uploaded[res.Name] = res.Attachment
		case res.Op == reconcile.OpDelete && !res.OK():
			deleteFailed[res.Name] = struct{}{}
		}
	}

	current, hasField := attachmentValues(s.values[s.attachmentField])
	if !hasField {
		s.tracker.rebase(s.values)
		return
	}

	var persisted, retry []store.Attachment
	for _, att := range current {
		if att.PendingFile != nil && att.ID == "" {
			if stored, ok := uploaded[att.Name]; ok {
				persisted = append(persisted, stored)
			} else {
				retry = append(retry, att)
			}
			continue
		}
		persisted = append(persisted, att)
	}

	// Remote truth: everything persisted plus whatever a failed delete left
	// behind.
	remote := append([]store.Attachment(nil), persisted...)
	for _, att := range s.baselineAtts {
		if _, failed := deleteFailed[att.Key()]; failed {
			remote = append(remote, att)
		}
	}
	s.baselineAtts = remote

	settledSet := append(append([]store.Attachment(nil), persisted...), retry...)
	s.values[s.attachmentField] = remote
	s.tracker.rebase(s.values)
	s.values[s.attachmentField] = settledSet
	s.tracker.mark(s.attachmentField, settledSet)
}

func itemIDFromRecord(record store.ItemRecord) (int, error) {
	switch id := record["Id"].(type) {
	case int:
		return id, nil
	case int64:
		return int(id), nil
	case float64:
		return int(id), nil
	default:
		return 0, fmt.Errorf("session: created record carries no usable Id: %#v", record["Id"])
	}
}
