package session

import (
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-listsync/pkg/store"
)

// attachmentComparer keeps deep equality total over form values that carry
// attachment descriptors: the pending file handle is opaque, so only its
// presence participates in equality.
var attachmentComparer = cmp.Comparer(func(a, b store.Attachment) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.Size == b.Size &&
		a.ContentType == b.ContentType &&
		a.URL == b.URL &&
		(a.PendingFile == nil) == (b.PendingFile == nil)
})

func equalValues(a, b any) bool {
	return cmp.Equal(a, b, attachmentComparer)
}

func snapshot(values map[string]any) map[string]any {
	if values == nil {
		return map[string]any{}
	}
	return deepcopy.Copy(values).(map[string]any)
}

// tracker maintains the set of form fields whose current value differs from
// the session baseline, using order-sensitive deep structural equality.
type tracker struct {
	baseline map[string]any
	dirty    map[string]struct{}
}

func newTracker(values map[string]any) *tracker {
	return &tracker{
		baseline: snapshot(values),
		dirty:    make(map[string]struct{}),
	}
}

// mark recomputes membership for one field after a value change: in when the
// value differs from baseline, out when it reverted.
func (t *tracker) mark(field string, value any) {
	if equalValues(value, t.baseline[field]) {
		delete(t.dirty, field)
		return
	}
	t.dirty[field] = struct{}{}
}

// names returns the dirty field names in sorted order.
func (t *tracker) names() []string {
	out := make([]string, 0, len(t.dirty))
	for name := range t.dirty {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// rebase resets the baseline to the given values and empties the dirty set.
func (t *tracker) rebase(values map[string]any) {
	t.baseline = snapshot(values)
	t.dirty = make(map[string]struct{})
}
