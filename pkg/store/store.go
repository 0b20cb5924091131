package store

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ItemRecord is the raw remote shape of a single list item: field name to
// value, where values may be scalars, reference objects, arrays of references,
// or paginated {"results": [...]} wrappers. The engine reads it, never
// mutates it.
type ItemRecord map[string]any

// Attachment describes one attachment of a list item. A descriptor with
// PendingFile set and an empty ID is a local addition that has not been
// persisted yet; one with an ID and no PendingFile is already stored
// remotely.
type Attachment struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Size        int64     `json:"size,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	URL         string    `json:"url,omitempty"`
	PendingFile io.Reader `json:"-"`
}

// Persisted reports whether the attachment already exists remotely.
func (a Attachment) Persisted() bool {
	return a.ID != "" && a.PendingFile == nil
}

// Key returns the identity used for reconciliation diffing: the remote ID
// when present, the file name otherwise.
func (a Attachment) Key() string {
	if a.ID != "" {
		return a.ID
	}
	return a.Name
}

// RawField is the unnormalized field metadata as delivered by the remote
// schema endpoint. Sources are inconsistent: a person field may be signalled
// by TypeName, by PrincipalType, or both, and multiplicity may live in
// AllowMultiple or in the type string. fieldmeta.Classify resolves the
// overlap.
type RawField struct {
	InternalName  string   `json:"internalName"`
	DisplayName   string   `json:"displayName,omitempty"`
	TypeName      string   `json:"typeName,omitempty"`
	PrincipalType int      `json:"principalType,omitempty"`
	AllowMultiple bool     `json:"allowMultiple,omitempty"`
	LookupListID  string   `json:"lookupListId,omitempty"`
	LookupList    string   `json:"lookupList,omitempty"`
	LookupField   string   `json:"lookupField,omitempty"`
	Choices       []string `json:"choices,omitempty"`
	Required      bool     `json:"required,omitempty"`
	ReadOnly      bool     `json:"readOnly,omitempty"`
	DefaultValue  string   `json:"defaultValue,omitempty"`
	Description   string   `json:"description,omitempty"`
	MaxLength     int      `json:"maxLength,omitempty"`
	Min           *float64 `json:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"`
}

// Store is the transport boundary of the engine. Implementations perform the
// actual remote calls; the engine stays agnostic to authentication, batching,
// and wire protocol. Failures must be returned as errors (ideally wrapping
// *StatusError), never panic across this boundary.
type Store interface {
	FetchItem(ctx context.Context, list string, itemID int) (ItemRecord, error)
	FetchFieldMetadata(ctx context.Context, list, field string) (RawField, error)
	CreateItem(ctx context.Context, list string, payload map[string]any) (ItemRecord, error)
	UpdateItem(ctx context.Context, list string, itemID int, payload map[string]any) error
	UploadAttachment(ctx context.Context, list string, itemID int, file io.Reader, name string) (Attachment, error)
	DeleteAttachment(ctx context.Context, list string, itemID int, name string) error
}

// StatusError carries the remote status code and message across the engine
// boundary as a tagged failure.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store: remote status %d", e.Code)
	}
	return fmt.Sprintf("store: remote status %d: %s", e.Code, e.Message)
}

// StatusCode extracts the remote status from err, returning 0 when err does
// not wrap a StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
