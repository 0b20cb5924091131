package openapi_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-listsync/pkg/fieldmeta"
	"github.com/goliatone/go-listsync/pkg/openapi"
)

const taskSpec = `
openapi: 3.0.3
info:
  title: Tasks
  version: "1.0"
paths: {}
components:
  schemas:
    Task:
      type: object
      required: [Title]
      properties:
        Title:
          type: string
          maxLength: 120
        Body:
          type: string
          format: html
        DueDate:
          type: string
          format: date-time
        Done:
          type: boolean
        Effort:
          type: number
          minimum: 0
          maximum: 40
        Priority:
          type: string
          enum: [Low, Medium, High]
        Labels:
          type: array
          items:
            type: string
            enum: [red, blue]
        AssignedTo:
          type: string
          x-listsync-principal: true
        Reviewers:
          type: array
          x-listsync-principal: true
          items:
            type: string
        Project:
          type: string
          x-listsync-lookup-list: Projects
          x-listsync-lookup-field: Title
`

func loadFieldSource(t *testing.T) *openapi.FieldSource {
	t.Helper()

	fsys := fstest.MapFS{"tasks.yaml": &fstest.MapFile{Data: []byte(taskSpec)}}
	loader := openapi.NewLoader(openapi.WithFS(fsys))
	doc, err := loader.Load(context.Background(), openapi.SourceFromFS("tasks.yaml"))
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	src, err := openapi.NewFieldSource(context.Background(), doc)
	if err != nil {
		t.Fatalf("new field source: %v", err)
	}
	return src
}

func TestFieldSourceDerivesMetadata(t *testing.T) {
	src := loadFieldSource(t)

	if diff := cmp.Diff([]string{"Task"}, src.Lists()); diff != "" {
		t.Fatalf("lists mismatch (-want +got):\n%s", diff)
	}

	title, ok := src.Field("Task", "Title")
	if !ok {
		t.Fatalf("Title missing")
	}
	if title.TypeName != "Text" || !title.Required || title.MaxLength != 120 {
		t.Fatalf("Title metadata wrong: %+v", title)
	}

	effort, _ := src.Field("Task", "Effort")
	if effort.TypeName != "Number" || effort.Min == nil || *effort.Max != 40 {
		t.Fatalf("Effort metadata wrong: %+v", effort)
	}

	priority, _ := src.Field("Task", "Priority")
	if priority.TypeName != "Choice" {
		t.Fatalf("Priority type = %q", priority.TypeName)
	}
	if diff := cmp.Diff([]string{"Low", "Medium", "High"}, priority.Choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}

	project, _ := src.Field("Task", "Project")
	if project.LookupList != "Projects" || project.LookupField != "Title" {
		t.Fatalf("Project lookup metadata wrong: %+v", project)
	}
}

func TestFieldSourceClassification(t *testing.T) {
	src := loadFieldSource(t)

	types := src.FieldTypes("Task")
	want := map[string]fieldmeta.NormalizedType{
		"Title":      fieldmeta.TypeText,
		"Body":       fieldmeta.TypeNote,
		"DueDate":    fieldmeta.TypeDateTime,
		"Done":       fieldmeta.TypeBoolean,
		"Effort":     fieldmeta.TypeNumber,
		"Priority":   fieldmeta.TypeChoice,
		"Labels":     fieldmeta.TypeMultiChoice,
		"AssignedTo": fieldmeta.TypeUser,
		"Reviewers":  fieldmeta.TypeUserMulti,
		"Project":    fieldmeta.TypeLookup,
	}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Fatalf("classification mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFieldSourceRejectsEmptyDocument(t *testing.T) {
	doc, err := openapi.NewDocument(openapi.SourceFromFS("x.yaml"), []byte("openapi: 3.0.3\ninfo: {title: x, version: \"1\"}\npaths: {}\n"))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	if _, err := openapi.NewFieldSource(context.Background(), doc); err == nil {
		t.Fatalf("expected error for schema-less document")
	}
}
