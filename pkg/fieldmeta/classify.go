package fieldmeta

import (
	"strings"

	"github.com/goliatone/go-listsync/pkg/store"
)

const attachmentsFieldName = "Attachments"

// Classify resolves a raw metadata record into exactly one NormalizedType.
// Sources disagree on where "this is a person field" lives (type string vs
// principal-type attribute) and on where multiplicity lives (flag vs type
// string), so the checks run in a fixed priority: attachment, then user, then
// lookup, then the verbatim type string. Unknown type strings fall back to
// TypeText. The function is pure and never fails.
func Classify(raw store.RawField) NormalizedType {
	if raw.TypeName == attachmentsFieldName || raw.InternalName == attachmentsFieldName {
		return TypeAttachment
	}

	lowered := strings.ToLower(raw.TypeName)
	if raw.PrincipalType != 0 || strings.Contains(lowered, "user") || strings.Contains(lowered, "person") {
		if IsMultiValued(raw) {
			return TypeUserMulti
		}
		return TypeUser
	}

	if raw.LookupListID != "" || raw.LookupList != "" {
		if IsMultiValued(raw) {
			return TypeLookupMulti
		}
		return TypeLookup
	}

	if t := NormalizedType(raw.TypeName); t.IsValid() {
		return t
	}
	return TypeText
}

// IsMultiValued applies the shared multiplicity test: either the explicit
// flag or a type string containing "multi".
func IsMultiValued(raw store.RawField) bool {
	return raw.AllowMultiple || strings.Contains(strings.ToLower(raw.TypeName), "multi")
}

// Normalize classifies raw and carries its constraints into a FieldMetadata
// record.
func Normalize(raw store.RawField) FieldMetadata {
	meta := FieldMetadata{
		InternalName: raw.InternalName,
		DisplayName:  raw.DisplayName,
		Type:         Classify(raw),
		Required:     raw.Required,
		ReadOnly:     raw.ReadOnly,
		LookupListID: raw.LookupListID,
		LookupList:   raw.LookupList,
		LookupField:  raw.LookupField,
		DefaultValue: raw.DefaultValue,
		Description:  raw.Description,
		MaxLength:    raw.MaxLength,
		Min:          raw.Min,
		Max:          raw.Max,
	}
	if len(raw.Choices) > 0 {
		meta.Choices = append([]string(nil), raw.Choices...)
	}
	return meta
}
