package mapper_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-listsync/pkg/fieldmeta"
	"github.com/goliatone/go-listsync/pkg/mapper"
	"github.com/goliatone/go-listsync/pkg/store"
)

func TestToRemotePayloadShapes(t *testing.T) {
	m := mustMapper(t, mapper.NameMapping{
		"AssignedTo": "assignedTo",
		"Title":      "title",
	})

	values := map[string]any{
		"title":      "Report",
		"Done":       true,
		"assignedTo": map[string]any{"Id": float64(12), "Title": "Ada"},
		"Reviewers": []any{
			map[string]any{"Id": float64(4)},
			map[string]any{"Id": float64(9)},
		},
		"Labels": []any{"red", "blue"},
	}

	payload := m.ToRemotePayload(values, nil, nil)

	want := map[string]any{
		"Title":        "Report",
		"Done":         true,
		"AssignedToId": float64(12),
		"ReviewersId":  map[string]any{"results": []any{float64(4), float64(9)}},
		"Labels":       []any{"red", "blue"},
	}
	if diff := cmp.Diff(want, payload.Fields); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if len(payload.ToUpload) != 0 || len(payload.ToDelete) != 0 {
		t.Fatalf("unexpected attachment work: %+v", payload)
	}
}

func TestToRemotePayloadCoercesDigitStringIDs(t *testing.T) {
	m := mustMapper(t, nil)

	payload := m.ToRemotePayload(map[string]any{
		"Reviewers": []any{
			map[string]any{"Id": "3"},
			map[string]any{"Id": "7"},
		},
		"Owner": map[string]any{"Id": "0042"},
		"Ticket": map[string]any{
			"Id": "JIRA-9",
		},
	}, nil, nil)

	want := map[string]any{
		"ReviewersId": map[string]any{"results": []any{int64(3), int64(7)}},
		"OwnerId":     int64(42),
		"TicketId":    "JIRA-9",
	}
	if diff := cmp.Diff(want, payload.Fields); diff != "" {
		t.Fatalf("coercion mismatch (-want +got):\n%s", diff)
	}
}

func TestToRemotePayloadDirtyOnlyScoping(t *testing.T) {
	m := mustMapper(t, nil)

	values := map[string]any{
		"Title":    "Edited",
		"Done":     false,
		"Priority": "High",
	}

	payload := m.ToRemotePayload(values, []string{"Title"}, nil)

	if len(payload.Fields) != 1 {
		t.Fatalf("payload carries %d fields, want 1: %#v", len(payload.Fields), payload.Fields)
	}
	if payload.Fields["Title"] != "Edited" {
		t.Fatalf("Title missing from payload: %#v", payload.Fields)
	}

	// Dirty names that were removed from the value set are skipped, not
	// emitted as nil.
	payload = m.ToRemotePayload(values, []string{"Title", "Ghost"}, nil)
	if _, ok := payload.Fields["Ghost"]; ok {
		t.Fatalf("ghost field emitted: %#v", payload.Fields)
	}
}

func TestToRemotePayloadRoutesAttachmentField(t *testing.T) {
	m := mustMapper(t, nil, mapper.WithFieldTypes(map[string]fieldmeta.NormalizedType{
		"files": fieldmeta.TypeAttachment,
	}))

	baseline := []store.Attachment{
		{ID: "a.pdf", Name: "a.pdf"},
		{ID: "b.pdf", Name: "b.pdf"},
	}
	current := []store.Attachment{
		{ID: "a.pdf", Name: "a.pdf"},
		{Name: "c.pdf", PendingFile: strings.NewReader("payload")},
	}

	payload := m.ToRemotePayload(map[string]any{"files": current}, nil, baseline)

	if _, ok := payload.Fields["files"]; ok {
		t.Fatalf("attachment field leaked into payload: %#v", payload.Fields)
	}
	if diff := cmp.Diff([]string{"b.pdf"}, payload.ToDelete); diff != "" {
		t.Fatalf("deletes mismatch (-want +got):\n%s", diff)
	}
	if len(payload.ToUpload) != 1 || payload.ToUpload[0].Name != "c.pdf" {
		t.Fatalf("uploads mismatch: %+v", payload.ToUpload)
	}
}

func TestToRemotePayloadHeuristicAttachmentName(t *testing.T) {
	// No metadata registered: the substring fallback still routes the field.
	m := mustMapper(t, nil)

	current := []store.Attachment{{Name: "new.docx", PendingFile: strings.NewReader("x")}}
	payload := m.ToRemotePayload(map[string]any{"Attachments": current}, nil, nil)

	if _, ok := payload.Fields["Attachments"]; ok {
		t.Fatalf("attachment field leaked into payload")
	}
	if len(payload.ToUpload) != 1 || payload.ToUpload[0].Name != "new.docx" {
		t.Fatalf("uploads mismatch: %+v", payload.ToUpload)
	}
}

func TestToRemotePayloadExtractsPendingFromMixedArray(t *testing.T) {
	m := mustMapper(t, nil)

	values := map[string]any{
		"Evidence": []any{
			map[string]any{"Id": float64(5)},
			store.Attachment{Name: "scan.png", PendingFile: strings.NewReader("img")},
		},
	}

	payload := m.ToRemotePayload(values, nil, nil)

	if len(payload.ToUpload) != 1 || payload.ToUpload[0].Name != "scan.png" {
		t.Fatalf("pending entry not routed to uploads: %+v", payload.ToUpload)
	}
	want := map[string]any{"EvidenceId": map[string]any{"results": []any{float64(5)}}}
	if diff := cmp.Diff(want, payload.Fields); diff != "" {
		t.Fatalf("remainder mismatch (-want +got):\n%s", diff)
	}
}
