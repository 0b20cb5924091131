package store

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used by tests, examples, and the CLI's
// fixture mode. It records every call in order and supports injecting a
// failure for the next invocation of a given operation, which keeps
// partial-failure scenarios deterministic.
type MemoryStore struct {
	mu          sync.Mutex
	items       map[string]map[int]ItemRecord
	fields      map[string]map[string]RawField
	attachments map[string]map[int][]Attachment
	nextID      map[string]int
	calls       []string
	failures    map[string]error
}

// NewMemoryStore constructs an empty fixture store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:       make(map[string]map[int]ItemRecord),
		fields:      make(map[string]map[string]RawField),
		attachments: make(map[string]map[int][]Attachment),
		nextID:      make(map[string]int),
		failures:    make(map[string]error),
	}
}

// SeedItem installs an item record under the given list and id.
func (m *MemoryStore) SeedItem(list string, itemID int, record ItemRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items[list] == nil {
		m.items[list] = make(map[int]ItemRecord)
	}
	m.items[list][itemID] = record
	if itemID >= m.nextID[list] {
		m.nextID[list] = itemID + 1
	}
}

// SeedField installs field metadata for a list.
func (m *MemoryStore) SeedField(list string, field RawField) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fields[list] == nil {
		m.fields[list] = make(map[string]RawField)
	}
	m.fields[list][field.InternalName] = field
}

// SeedAttachment installs a persisted attachment for an item.
func (m *MemoryStore) SeedAttachment(list string, itemID int, att Attachment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attachments[list] == nil {
		m.attachments[list] = make(map[int][]Attachment)
	}
	m.attachments[list][itemID] = append(m.attachments[list][itemID], att)
}

// FailNext arranges for the next call of the named operation ("UpdateItem",
// "DeleteAttachment", ...) to return err. The failure is consumed by that
// call.
func (m *MemoryStore) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = err
}

// Calls returns the operations performed so far, in order, formatted as
// "Op list/id[/detail]".
func (m *MemoryStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Attachments returns the persisted attachments of an item sorted by name.
func (m *MemoryStore) Attachments(list string, itemID int) []Attachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	atts := append([]Attachment(nil), m.attachments[list][itemID]...)
	sort.Slice(atts, func(i, j int) bool { return atts[i].Name < atts[j].Name })
	return atts
}

// Item returns the stored record for inspection after a save.
func (m *MemoryStore) Item(list string, itemID int) (ItemRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.items[list][itemID]
	return record, ok
}

func (m *MemoryStore) begin(ctx context.Context, op, detail string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op+" "+detail)
	if err, ok := m.failures[op]; ok {
		delete(m.failures, op)
		return err
	}
	return nil
}

// FetchItem implements Store.
func (m *MemoryStore) FetchItem(ctx context.Context, list string, itemID int) (ItemRecord, error) {
	if err := m.begin(ctx, "FetchItem", fmt.Sprintf("%s/%d", list, itemID)); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.items[list][itemID]
	if !ok {
		return nil, &StatusError{Code: 404, Message: fmt.Sprintf("item %d not found in %s", itemID, list)}
	}
	return record, nil
}

// FetchFieldMetadata implements Store.
func (m *MemoryStore) FetchFieldMetadata(ctx context.Context, list, field string) (RawField, error) {
	if err := m.begin(ctx, "FetchFieldMetadata", list+"/"+field); err != nil {
		return RawField{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.fields[list][field]
	if !ok {
		return RawField{}, &StatusError{Code: 404, Message: fmt.Sprintf("field %s not found in %s", field, list)}
	}
	return raw, nil
}

// CreateItem implements Store. The record echoes the payload plus the
// assigned Id, matching how list backends respond to item creation.
func (m *MemoryStore) CreateItem(ctx context.Context, list string, payload map[string]any) (ItemRecord, error) {
	if err := m.begin(ctx, "CreateItem", list); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items[list] == nil {
		m.items[list] = make(map[int]ItemRecord)
	}
	id := m.nextID[list]
	if id == 0 {
		id = 1
	}
	m.nextID[list] = id + 1

	record := make(ItemRecord, len(payload)+1)
	for key, value := range payload {
		record[key] = value
	}
	record["Id"] = id
	m.items[list][id] = record
	return record, nil
}

// UpdateItem implements Store, merging the payload into the stored record.
func (m *MemoryStore) UpdateItem(ctx context.Context, list string, itemID int, payload map[string]any) error {
	if err := m.begin(ctx, "UpdateItem", fmt.Sprintf("%s/%d", list, itemID)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.items[list][itemID]
	if !ok {
		return &StatusError{Code: 404, Message: fmt.Sprintf("item %d not found in %s", itemID, list)}
	}
	for key, value := range payload {
		record[key] = value
	}
	return nil
}

// UploadAttachment implements Store, draining the reader and returning the
// persisted descriptor.
func (m *MemoryStore) UploadAttachment(ctx context.Context, list string, itemID int, file io.Reader, name string) (Attachment, error) {
	if err := m.begin(ctx, "UploadAttachment", fmt.Sprintf("%s/%d/%s", list, itemID, name)); err != nil {
		return Attachment{}, err
	}
	var size int64
	if file != nil {
		n, err := io.Copy(io.Discard, file)
		if err != nil {
			return Attachment{}, fmt.Errorf("store: read attachment %s: %w", name, err)
		}
		size = n
	}
	att := Attachment{ID: name, Name: name, Size: size}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attachments[list] == nil {
		m.attachments[list] = make(map[int][]Attachment)
	}
	m.attachments[list][itemID] = append(m.attachments[list][itemID], att)
	return att, nil
}

// DeleteAttachment implements Store.
func (m *MemoryStore) DeleteAttachment(ctx context.Context, list string, itemID int, name string) error {
	if err := m.begin(ctx, "DeleteAttachment", fmt.Sprintf("%s/%d/%s", list, itemID, name)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	atts := m.attachments[list][itemID]
	for i, att := range atts {
		if att.Key() == name || att.Name == name {
			m.attachments[list][itemID] = append(atts[:i:i], atts[i+1:]...)
			return nil
		}
	}
	return &StatusError{Code: 404, Message: fmt.Sprintf("attachment %s not found on %s/%d", name, list, itemID)}
}

var _ Store = (*MemoryStore)(nil)
