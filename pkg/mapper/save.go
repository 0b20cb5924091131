package mapper

import (
	"sort"

	"github.com/goliatone/go-listsync/pkg/reconcile"
	"github.com/goliatone/go-listsync/pkg/store"
)

// Payload is the remote-shaped output of the save path: the field payload for
// the create/update call plus the attachment work split out of it.
type Payload struct {
	Fields   map[string]any
	ToUpload []store.Attachment
	ToDelete []string
}

// ToRemotePayload converts edited form values back into the remote shape.
// When dirtyOnly is non-nil, only those form fields are considered (update of
// an existing record); nil means every field (new record). Attachment-shaped
// fields are diffed against baseline and routed into ToUpload/ToDelete
// instead of the field payload. Reference values are rewritten to the
// "<name>Id" convention with digit-string ids coerced to numbers.
func (m *Mapper) ToRemotePayload(values map[string]any, dirtyOnly []string, baseline []store.Attachment) Payload {
	payload := Payload{Fields: make(map[string]any)}

	names := make([]string, 0, len(values))
	if dirtyOnly != nil {
		names = append(names, dirtyOnly...)
	} else {
		for name := range values {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, form := range names {
		value, ok := values[form]
		if !ok {
			continue
		}
		remote := m.remoteName(form)

		if atts, isAtts := attachmentSlice(value); isAtts && m.isAttachmentField(form, remote) {
			plan := reconcile.BuildPlan(atts, baseline)
			payload.ToUpload = append(payload.ToUpload, plan.Uploads...)
			payload.ToDelete = append(payload.ToDelete, plan.Deletes...)
			continue
		}

		m.saveValue(&payload, remote, value)
	}

	return payload
}

func (m *Mapper) saveValue(payload *Payload, remote string, value any) {
	// Pending files can hide in arrays that never matched the attachment
	// field routing; pull them out before shape dispatch.
	if rest, pending, found := splitPending(value); found {
		payload.ToUpload = append(payload.ToUpload, pending...)
		if rest == nil {
			return
		}
		value = rest
	}

	decoded := DecodeValue(value)
	switch decoded.Kind {
	case KindSingleRef:
		payload.Fields[remote+"Id"] = CoerceID(decoded.Ref.ID)
	case KindMultiRef:
		payload.Fields[remote+"Id"] = resultsEnvelope(decoded.Refs)
	case KindPaginated:
		inner := DecodeValue(decoded.Items)
		if inner.Kind == KindMultiRef {
			payload.Fields[remote+"Id"] = resultsEnvelope(inner.Refs)
			return
		}
		payload.Fields[remote] = decoded.Items
	default:
		payload.Fields[remote] = decoded.Raw
	}
}

func resultsEnvelope(refs []Ref) map[string]any {
	ids := make([]any, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, CoerceID(ref.ID))
	}
	return map[string]any{"results": ids}
}

// attachmentSlice recognizes the two ways an attachment set shows up in form
// values: a typed slice, or a generic slice holding Attachment elements.
func attachmentSlice(value any) ([]store.Attachment, bool) {
	switch v := value.(type) {
	case []store.Attachment:
		return v, true
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		atts := make([]store.Attachment, 0, len(v))
		for _, elem := range v {
			att, ok := elem.(store.Attachment)
			if !ok {
				return nil, false
			}
			atts = append(atts, att)
		}
		return atts, true
	default:
		return nil, false
	}
}

// splitPending removes unpersisted attachment entries from a generic array,
// returning the remainder (nil when nothing else is left) and the pending
// uploads. found is false when the value held no pending entries.
func splitPending(value any) (any, []store.Attachment, bool) {
	elems, ok := value.([]any)
	if !ok {
		return nil, nil, false
	}

	var pending []store.Attachment
	rest := make([]any, 0, len(elems))
	for _, elem := range elems {
		if att, ok := elem.(store.Attachment); ok && att.PendingFile != nil && att.ID == "" {
			pending = append(pending, att)
			continue
		}
		rest = append(rest, elem)
	}
	if len(pending) == 0 {
		return nil, nil, false
	}
	if len(rest) == 0 {
		return nil, pending, true
	}
	return rest, pending, true
}
