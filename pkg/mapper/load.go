package mapper

import (
	"github.com/goliatone/go-listsync/pkg/fieldmeta"
	"github.com/goliatone/go-listsync/pkg/store"
)

// ToFormValues flattens a raw remote record into the canonical form value
// shape: scalars pass through, single references become {Id, Title[, Name]}
// maps, reference arrays become arrays of the same shape, and paginated
// wrappers are unwrapped. Envelope keys are dropped. No defaults are
// synthesised here; that is the editing surface's job.
func (m *Mapper) ToFormValues(remote store.ItemRecord) map[string]any {
	out := make(map[string]any, len(remote))
	for name, raw := range remote {
		if isEnvelopeKey(name) {
			continue
		}
		form := m.mapping.FormName(name)
		out[form] = m.loadValue(form, raw)
	}
	return out
}

func (m *Mapper) loadValue(form string, raw any) any {
	if raw == nil {
		return nil
	}

	decoded := DecodeValue(raw)
	switch decoded.Kind {
	case KindSingleRef:
		return decoded.Ref.formValue()
	case KindMultiRef:
		return refsToFormValues(decoded.Refs)
	case KindPaginated:
		// Unwrap and re-decode the inner array; non-reference results pass
		// through as a plain slice.
		inner := DecodeValue(decoded.Items)
		if inner.Kind == KindMultiRef {
			return refsToFormValues(inner.Refs)
		}
		return decoded.Items
	default:
		return m.sanitizeScalar(form, decoded.Raw)
	}
}

func refsToFormValues(refs []Ref) []any {
	out := make([]any, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.formValue())
	}
	return out
}

func (m *Mapper) sanitizeScalar(form string, raw any) any {
	if m.notePolicy == nil {
		return raw
	}
	if m.FieldType(form) != fieldmeta.TypeNote {
		return raw
	}
	if s, ok := raw.(string); ok {
		return m.notePolicy.Sanitize(s)
	}
	return raw
}
