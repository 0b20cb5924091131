package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-listsync/pkg/fieldmeta"
	"github.com/goliatone/go-listsync/pkg/store"
)

// Extension keys recognized on property schemas. They carry the list-backend
// signals OpenAPI has no native vocabulary for.
const (
	lookupListExtension   = "x-listsync-lookup-list"
	lookupListIDExtension = "x-listsync-lookup-list-id"
	lookupFieldExtension  = "x-listsync-lookup-field"
	principalExtension    = "x-listsync-principal"
	multiExtension        = "x-listsync-multi"
)

// FieldSource exposes raw field metadata derived from an OpenAPI document's
// component schemas: each named schema is treated as one remote list, each
// property as one field.
type FieldSource struct {
	lists map[string]map[string]store.RawField
}

// NewFieldSource parses the document and derives metadata for every component
// schema.
func NewFieldSource(ctx context.Context, doc Document) (*FieldSource, error) {
	if ctx == nil {
		return nil, errors.New("openapi: context is required")
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: parse document: %w", err)
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, errors.New("openapi: document defines no component schemas")
	}

	src := &FieldSource{lists: make(map[string]map[string]store.RawField)}
	for name, ref := range spec.Components.Schemas {
		if ref == nil || ref.Value == nil {
			continue
		}
		fields := deriveFields(ref.Value)
		if len(fields) == 0 {
			continue
		}
		src.lists[name] = fields
	}
	if len(src.lists) == 0 {
		return nil, errors.New("openapi: no usable object schemas found")
	}
	return src, nil
}

// Lists returns the sorted schema names the source describes.
func (s *FieldSource) Lists() []string {
	names := make([]string, 0, len(s.lists))
	for name := range s.lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns the raw metadata of one list, sorted by internal name.
func (s *FieldSource) Fields(list string) []store.RawField {
	byName := s.lists[list]
	out := make([]store.RawField, 0, len(byName))
	for _, raw := range byName {
		out = append(out, raw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InternalName < out[j].InternalName })
	return out
}

// Field looks up a single field's raw metadata.
func (s *FieldSource) Field(list, field string) (store.RawField, bool) {
	raw, ok := s.lists[list][field]
	return raw, ok
}

// FieldTypes classifies every field of a list, keyed by internal name. The
// result plugs straight into mapper.WithFieldTypes.
func (s *FieldSource) FieldTypes(list string) map[string]fieldmeta.NormalizedType {
	byName := s.lists[list]
	if len(byName) == 0 {
		return nil
	}
	out := make(map[string]fieldmeta.NormalizedType, len(byName))
	for name, raw := range byName {
		out[name] = fieldmeta.Classify(raw)
	}
	return out
}

func deriveFields(schema *openapi3.Schema) map[string]store.RawField {
	if len(schema.Properties) == 0 {
		return nil
	}

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	fields := make(map[string]store.RawField, len(schema.Properties))
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		raw := deriveField(name, ref.Value)
		_, raw.Required = required[name]
		fields[name] = raw
	}
	return fields
}

func deriveField(name string, prop *openapi3.Schema) store.RawField {
	raw := store.RawField{
		InternalName: name,
		DisplayName:  prop.Title,
		Description:  prop.Description,
		ReadOnly:     prop.ReadOnly,
		Min:          prop.Min,
		Max:          prop.Max,
	}
	if prop.MaxLength != nil {
		raw.MaxLength = int(*prop.MaxLength)
	}
	if s, ok := prop.Default.(string); ok {
		raw.DefaultValue = s
	}

	applyExtensions(&raw, prop.Extensions)
	raw.TypeName = typeNameFor(prop, &raw)
	return raw
}

func applyExtensions(raw *store.RawField, ext map[string]any) {
	if len(ext) == 0 {
		return
	}
	if s, ok := ext[lookupListExtension].(string); ok {
		raw.LookupList = s
	}
	if s, ok := ext[lookupListIDExtension].(string); ok {
		raw.LookupListID = s
	}
	if s, ok := ext[lookupFieldExtension].(string); ok {
		raw.LookupField = s
	}
	if b, ok := ext[multiExtension].(bool); ok {
		raw.AllowMultiple = b
	}
	switch v := ext[principalExtension].(type) {
	case bool:
		if v {
			raw.PrincipalType = 1
		}
	case float64:
		raw.PrincipalType = int(v)
	}
}

// typeNameFor translates OpenAPI type/format into the raw type vocabulary the
// classifier understands. Array schemas describe their element and set the
// multiplicity flag.
func typeNameFor(prop *openapi3.Schema, raw *store.RawField) string {
	switch schemaType(prop) {
	case "boolean":
		return "Boolean"
	case "integer", "number":
		return "Number"
	case "array":
		raw.AllowMultiple = true
		if prop.Items != nil && prop.Items.Value != nil {
			item := prop.Items.Value
			if len(item.Enum) > 0 {
				raw.Choices = enumStrings(item.Enum)
				return "MultiChoice"
			}
			if raw.LookupList != "" || raw.LookupListID != "" || raw.PrincipalType != 0 {
				return "LookupMulti"
			}
		}
		return "MultiChoice"
	case "string":
		if len(prop.Enum) > 0 {
			raw.Choices = enumStrings(prop.Enum)
			return "Choice"
		}
		switch prop.Format {
		case "date-time", "date":
			return "DateTime"
		case "uri", "url":
			return "Url"
		case "textarea", "html", "markdown":
			return "Note"
		}
		if raw.MaxLength > 255 {
			return "Note"
		}
		return "Text"
	default:
		return "Text"
	}
}

func schemaType(prop *openapi3.Schema) string {
	if prop.Type == nil {
		return ""
	}
	values := prop.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return strings.ToLower(values[0])
}

func enumStrings(enum []any) []string {
	out := make([]string, 0, len(enum))
	for _, v := range enum {
		out = append(out, fmt.Sprint(v))
	}
	return out
}
