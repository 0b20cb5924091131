package fieldmeta

// NormalizedType is the closed set of semantic field kinds the engine maps
// remote values through. Classification is total: any raw type string outside
// this set falls back to TypeText.
type NormalizedType string

const (
	TypeText        NormalizedType = "Text"
	TypeNote        NormalizedType = "Note"
	TypeNumber      NormalizedType = "Number"
	TypeCurrency    NormalizedType = "Currency"
	TypeDateTime    NormalizedType = "DateTime"
	TypeChoice      NormalizedType = "Choice"
	TypeMultiChoice NormalizedType = "MultiChoice"
	TypeBoolean     NormalizedType = "Boolean"
	TypeLookup      NormalizedType = "Lookup"
	TypeLookupMulti NormalizedType = "LookupMulti"
	TypeUser        NormalizedType = "User"
	TypeUserMulti   NormalizedType = "UserMulti"
	TypeAttachment  NormalizedType = "Attachment"
	TypeURL         NormalizedType = "Url"
	TypeCalculated  NormalizedType = "Calculated"
)

// IsValid reports whether t is one of the known normalized types.
func (t NormalizedType) IsValid() bool {
	switch t {
	case TypeText, TypeNote, TypeNumber, TypeCurrency, TypeDateTime,
		TypeChoice, TypeMultiChoice, TypeBoolean, TypeLookup, TypeLookupMulti,
		TypeUser, TypeUserMulti, TypeAttachment, TypeURL, TypeCalculated:
		return true
	default:
		return false
	}
}

// IsReference reports whether values of this type point at other records.
func (t NormalizedType) IsReference() bool {
	switch t {
	case TypeLookup, TypeLookupMulti, TypeUser, TypeUserMulti:
		return true
	default:
		return false
	}
}

// IsMulti reports whether the type carries multiple values.
func (t NormalizedType) IsMulti() bool {
	switch t {
	case TypeMultiChoice, TypeLookupMulti, TypeUserMulti:
		return true
	default:
		return false
	}
}

// FieldMetadata is the normalized description of one remote field, built once
// per (list, field) and immutable for the lifetime of an edit session.
type FieldMetadata struct {
	InternalName string         `json:"internalName"`
	DisplayName  string         `json:"displayName,omitempty"`
	Type         NormalizedType `json:"type"`
	Required     bool           `json:"required"`
	ReadOnly     bool           `json:"readOnly"`
	Choices      []string       `json:"choices,omitempty"`
	LookupListID string         `json:"lookupListId,omitempty"`
	LookupList   string         `json:"lookupList,omitempty"`
	LookupField  string         `json:"lookupField,omitempty"`
	DefaultValue string         `json:"defaultValue,omitempty"`
	Description  string         `json:"description,omitempty"`
	MaxLength    int            `json:"maxLength,omitempty"`
	Min          *float64       `json:"min,omitempty"`
	Max          *float64       `json:"max,omitempty"`
}
