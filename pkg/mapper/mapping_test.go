package mapper_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-listsync/pkg/mapper"
)

func TestNameMappingCollisionDetected(t *testing.T) {
	mapping := mapper.NameMapping{
		"Title":       "name",
		"DisplayName": "name",
	}
	if err := mapping.Validate(); !errors.Is(err, mapper.ErrMappingCollision) {
		t.Fatalf("expected collision error, got %v", err)
	}
	if _, err := mapper.New(mapping); !errors.Is(err, mapper.ErrMappingCollision) {
		t.Fatalf("constructor accepted colliding mapping: %v", err)
	}
}

func TestNameMappingIdentityFallback(t *testing.T) {
	mapping := mapper.NameMapping{"Title": "title"}
	if got := mapping.FormName("Unmapped"); got != "Unmapped" {
		t.Fatalf("identity fallback = %q", got)
	}
	if got := mapping.FormName("Title"); got != "title" {
		t.Fatalf("mapped name = %q", got)
	}
}

func TestLoadNameMappingYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"mapping.yaml": &fstest.MapFile{Data: []byte("fields:\n  Title: title\n  AssignedTo: assignedTo\n")},
	}

	mapping, err := mapper.LoadNameMapping(fsys, "mapping.yaml")
	if err != nil {
		t.Fatalf("load mapping: %v", err)
	}
	want := mapper.NameMapping{"Title": "title", "AssignedTo": "assignedTo"}
	if diff := cmp.Diff(want, mapping); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadNameMappingJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"mapping.json": &fstest.MapFile{Data: []byte(`{"fields": {"Title": "title"}}`)},
	}

	mapping, err := mapper.LoadNameMapping(fsys, "mapping.json")
	if err != nil {
		t.Fatalf("load mapping: %v", err)
	}
	if mapping["Title"] != "title" {
		t.Fatalf("mapping = %#v", mapping)
	}
}

func TestLoadNameMappingRejectsCollision(t *testing.T) {
	fsys := fstest.MapFS{
		"mapping.yaml": &fstest.MapFile{Data: []byte("fields:\n  A: same\n  B: same\n")},
	}
	if _, err := mapper.LoadNameMapping(fsys, "mapping.yaml"); !errors.Is(err, mapper.ErrMappingCollision) {
		t.Fatalf("expected collision error, got %v", err)
	}
}

func TestLoadNameMappingRejectsEmpty(t *testing.T) {
	fsys := fstest.MapFS{
		"mapping.yaml": &fstest.MapFile{Data: []byte("fields: {}\n")},
	}
	if _, err := mapper.LoadNameMapping(fsys, "mapping.yaml"); err == nil {
		t.Fatalf("expected error for empty mapping")
	}
}
