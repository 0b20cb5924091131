package mapper

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-listsync/pkg/fieldmeta"
)

// Option customises a Mapper.
type Option func(*Mapper)

// WithFieldTypes supplies normalized types keyed by form field name. When
// present, attachment routing on the save path uses the type tag instead of
// the name heuristic.
func WithFieldTypes(types map[string]fieldmeta.NormalizedType) Option {
	return func(m *Mapper) {
		if len(types) == 0 {
			return
		}
		if m.types == nil {
			m.types = make(map[string]fieldmeta.NormalizedType, len(types))
		}
		for name, t := range types {
			m.types[name] = t
		}
	}
}

// WithNoteSanitizer enables HTML sanitizing of Note field values on the load
// path. Pass nil to use the UGC policy. Requires WithFieldTypes to know which
// fields are notes.
func WithNoteSanitizer(policy *bluemonday.Policy) Option {
	return func(m *Mapper) {
		if policy == nil {
			policy = bluemonday.UGCPolicy()
		}
		m.notePolicy = policy
	}
}

// Mapper converts between the remote item shape and the flat form value
// shape. It is safe for concurrent use once constructed.
type Mapper struct {
	mapping    NameMapping
	reverse    map[string]string
	types      map[string]fieldmeta.NormalizedType
	notePolicy *bluemonday.Policy
}

// New builds a Mapper, validating the name mapping up front.
func New(mapping NameMapping, opts ...Option) (*Mapper, error) {
	reverse, err := mapping.invert()
	if err != nil {
		return nil, err
	}
	m := &Mapper{mapping: mapping, reverse: reverse}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m, nil
}

// FieldType returns the normalized type registered for a form field, with
// TypeText as the best-effort fallback for unregistered names.
func (m *Mapper) FieldType(form string) fieldmeta.NormalizedType {
	if t, ok := m.types[form]; ok {
		return t
	}
	return fieldmeta.TypeText
}

func (m *Mapper) remoteName(form string) string {
	if remote, ok := m.reverse[form]; ok && remote != "" {
		return remote
	}
	return form
}

// isAttachmentField routes a field to attachment reconciliation. The type tag
// wins when metadata was registered; the substring check covers callers that
// map values without metadata.
func (m *Mapper) isAttachmentField(form, remote string) bool {
	if t, ok := m.types[form]; ok {
		return t == fieldmeta.TypeAttachment
	}
	return nameLooksAttachment(form) || nameLooksAttachment(remote)
}

func nameLooksAttachment(name string) bool {
	return strings.Contains(strings.ToLower(name), "attachment")
}

// envelope keys are transport metadata, not item fields.
func isEnvelopeKey(name string) bool {
	return strings.HasPrefix(name, "__") ||
		strings.HasPrefix(name, "@") ||
		strings.HasPrefix(name, "odata.")
}

func (m *Mapper) String() string {
	return fmt.Sprintf("mapper(%d mapped names)", len(m.mapping))
}
