package mapper_test

import (
	"testing"

	"github.com/goliatone/go-listsync/pkg/mapper"
)

func TestDecodeValue(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want mapper.Kind
	}{
		{"nil", nil, mapper.KindScalar},
		{"string", "hello", mapper.KindScalar},
		{"number", float64(3), mapper.KindScalar},
		{"bool", true, mapper.KindScalar},
		{"single ref", map[string]any{"Id": float64(1), "Title": "x"}, mapper.KindSingleRef},
		{"map without id", map[string]any{"Title": "x"}, mapper.KindScalar},
		{"multi ref", []any{map[string]any{"Id": float64(1)}}, mapper.KindMultiRef},
		{"array of scalars", []any{"a", "b"}, mapper.KindScalar},
		{"array with non-ref first", []any{map[string]any{"Title": "x"}}, mapper.KindScalar},
		{"empty array", []any{}, mapper.KindScalar},
		{"paginated", map[string]any{"results": []any{"a"}}, mapper.KindPaginated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapper.DecodeValue(tc.raw)
			if got.Kind != tc.want {
				t.Fatalf("DecodeValue(%#v).Kind = %v, want %v", tc.raw, got.Kind, tc.want)
			}
		})
	}
}

func TestDecodeValueRefShapes(t *testing.T) {
	v := mapper.DecodeValue(map[string]any{"Id": float64(12), "Title": "Ada", "Name": "i:0#.f|ada"})
	if v.Kind != mapper.KindSingleRef {
		t.Fatalf("kind = %v", v.Kind)
	}
	if !v.Ref.UserShaped() {
		t.Fatalf("ref with Name should be user shaped: %+v", v.Ref)
	}

	v = mapper.DecodeValue(map[string]any{"Id": float64(3), "Title": "Apollo"})
	if v.Ref.UserShaped() {
		t.Fatalf("lookup ref misreported as user shaped: %+v", v.Ref)
	}
}

func TestCoerceID(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{"3", int64(3)},
		{"0042", int64(42)},
		{"JIRA-9", "JIRA-9"},
		{"", ""},
		{float64(7), float64(7)},
		{nil, nil},
	}
	for _, tc := range cases {
		if got := mapper.CoerceID(tc.in); got != tc.want {
			t.Fatalf("CoerceID(%#v) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
