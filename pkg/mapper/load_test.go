package mapper_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-listsync/pkg/fieldmeta"
	"github.com/goliatone/go-listsync/pkg/mapper"
	"github.com/goliatone/go-listsync/pkg/store"
)

func mustMapper(t *testing.T, mapping mapper.NameMapping, opts ...mapper.Option) *mapper.Mapper {
	t.Helper()
	m, err := mapper.New(mapping, opts...)
	if err != nil {
		t.Fatalf("new mapper: %v", err)
	}
	return m
}

func TestToFormValues(t *testing.T) {
	m := mustMapper(t, mapper.NameMapping{
		"Title":      "title",
		"AssignedTo": "assignedTo",
		"Project":    "project",
	})

	remote := store.ItemRecord{
		"__metadata":  map[string]any{"type": "SP.Data.TasksListItem"},
		"odata.etag":  `"3"`,
		"Id":          float64(7),
		"Title":       "Quarterly report",
		"Done":        false,
		"DueDate":     "2026-09-01T00:00:00Z",
		"Notes":       nil,
		"AssignedTo":  map[string]any{"Id": float64(12), "Title": "Ada Lovelace", "Name": "i:0#.f|ada"},
		"Project":     map[string]any{"Id": float64(3), "Title": "Apollo"},
		"Reviewers":   []any{map[string]any{"Id": float64(4), "Title": "Brin"}, map[string]any{"Id": float64(9), "Title": "Cox", "Name": "i:0#.f|cox"}},
		"Tags":        map[string]any{"results": []any{"red", "blue"}},
		"Subscribers": map[string]any{"results": []any{map[string]any{"Id": float64(2), "Title": "Day"}}},
	}

	got := m.ToFormValues(remote)

	want := map[string]any{
		"Id":         float64(7),
		"title":      "Quarterly report",
		"Done":       false,
		"DueDate":    "2026-09-01T00:00:00Z",
		"Notes":      nil,
		"assignedTo": map[string]any{"Id": float64(12), "Title": "Ada Lovelace", "Name": "i:0#.f|ada"},
		"project":    map[string]any{"Id": float64(3), "Title": "Apollo"},
		"Reviewers": []any{
			map[string]any{"Id": float64(4), "Title": "Brin"},
			map[string]any{"Id": float64(9), "Title": "Cox", "Name": "i:0#.f|cox"},
		},
		"Tags":        []any{"red", "blue"},
		"Subscribers": []any{map[string]any{"Id": float64(2), "Title": "Day"}},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("form values mismatch (-want +got):\n%s", diff)
	}
}

func TestToFormValuesSanitizesNotes(t *testing.T) {
	m := mustMapper(t, mapper.NameMapping{"Body": "body"},
		mapper.WithFieldTypes(map[string]fieldmeta.NormalizedType{"body": fieldmeta.TypeNote}),
		mapper.WithNoteSanitizer(nil),
	)

	got := m.ToFormValues(store.ItemRecord{
		"Body":  `<p>hello</p><script>alert(1)</script>`,
		"Title": `<script>kept verbatim, not a note</script>`,
	})

	if got["body"] != "<p>hello</p>" {
		t.Fatalf("note not sanitized: %q", got["body"])
	}
	if got["Title"] != `<script>kept verbatim, not a note</script>` {
		t.Fatalf("non-note field was sanitized: %q", got["Title"])
	}
}

func TestRoundTripScalarAndSingleRef(t *testing.T) {
	mapping := mapper.NameMapping{"Title": "title", "Project": "project"}
	m := mustMapper(t, mapping)

	remote := store.ItemRecord{
		"Title":   "Report",
		"Count":   float64(4),
		"Project": map[string]any{"Id": float64(3), "Title": "Apollo"},
	}

	payload := m.ToRemotePayload(m.ToFormValues(remote), nil, nil)

	want := map[string]any{
		"Title":     "Report",
		"Count":     float64(4),
		"ProjectId": float64(3),
	}
	if diff := cmp.Diff(want, payload.Fields); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
