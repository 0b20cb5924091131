package mapper

import (
	"strconv"
)

// Kind tags the wire shape of a raw remote value. Downstream code switches on
// the tag instead of re-inspecting maps and slices at every call site.
type Kind int

const (
	// KindScalar covers nil, strings, numbers, booleans, and anything the
	// decoder does not recognize as a reference shape.
	KindScalar Kind = iota
	// KindSingleRef is a lone reference object carrying an Id.
	KindSingleRef
	// KindMultiRef is an array whose elements are reference objects.
	KindMultiRef
	// KindPaginated is a {"results": [...]} wrapper around an array value.
	KindPaginated
)

// Ref is a decoded reference object. Name is only set for user-shaped
// references; lookup-shaped references carry Id and Title alone.
type Ref struct {
	ID    any
	Title string
	Name  string
}

// UserShaped reports whether the reference carries the Name attribute that
// distinguishes user references from plain lookups.
func (r Ref) UserShaped() bool {
	return r.Name != ""
}

func (r Ref) formValue() map[string]any {
	out := map[string]any{"Id": r.ID}
	if r.Title != "" {
		out["Title"] = r.Title
	}
	if r.Name != "" {
		out["Name"] = r.Name
	}
	return out
}

// Value is the tagged decode of one raw remote value.
type Value struct {
	Kind  Kind
	Raw   any
	Ref   Ref
	Refs  []Ref
	Items []any
}

// DecodeValue classifies a raw value into Scalar, SingleRef, MultiRef, or
// Paginated. It never fails: anything that does not match a reference shape
// stays a scalar with the original value in Raw.
func DecodeValue(raw any) Value {
	switch v := raw.(type) {
	case map[string]any:
		if results, ok := v["results"].([]any); ok {
			return Value{Kind: KindPaginated, Raw: raw, Items: results}
		}
		if ref, ok := decodeRef(v); ok {
			return Value{Kind: KindSingleRef, Raw: raw, Ref: ref}
		}
	case []any:
		if len(v) > 0 {
			if first, ok := v[0].(map[string]any); ok {
				if _, hasID := first["Id"]; hasID {
					refs := make([]Ref, 0, len(v))
					for _, elem := range v {
						obj, ok := elem.(map[string]any)
						if !ok {
							continue
						}
						if ref, ok := decodeRef(obj); ok {
							refs = append(refs, ref)
						}
					}
					return Value{Kind: KindMultiRef, Raw: raw, Refs: refs}
				}
			}
		}
	}
	return Value{Kind: KindScalar, Raw: raw}
}

func decodeRef(obj map[string]any) (Ref, bool) {
	id, ok := obj["Id"]
	if !ok {
		return Ref{}, false
	}
	ref := Ref{ID: id}
	if title, ok := obj["Title"].(string); ok {
		ref.Title = title
	}
	if name, ok := obj["Name"].(string); ok {
		ref.Name = name
	}
	return ref, true
}

// CoerceID converts an id given as a digit-only string into a number,
// supporting backends that hand out numeric ids as strings. Opaque ids pass
// through unchanged.
func CoerceID(id any) any {
	s, ok := id.(string)
	if !ok || s == "" {
		return id
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return id
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return id
	}
	return n
}
