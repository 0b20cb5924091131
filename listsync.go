// Package listsync synchronizes form-shaped values with remote list items:
// field metadata normalization, bidirectional value mapping, dirty-field
// tracking, and attachment reconciliation.
package listsync

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-listsync/pkg/fieldmeta"
	"github.com/goliatone/go-listsync/pkg/mapper"
	"github.com/goliatone/go-listsync/pkg/openapi"
	"github.com/goliatone/go-listsync/pkg/reconcile"
	"github.com/goliatone/go-listsync/pkg/session"
	"github.com/goliatone/go-listsync/pkg/store"
)

// Store is the remote list backend contract sessions operate against.
type Store = store.Store

// ItemRecord is the raw field map a store returns for one item.
type ItemRecord = store.ItemRecord

// Attachment describes one file bound to a list item.
type Attachment = store.Attachment

// FieldMetadata is the normalized descriptor for a single list field.
type FieldMetadata = fieldmeta.FieldMetadata

// NormalizedType is the closed set of field types the engine understands.
type NormalizedType = fieldmeta.NormalizedType

// NameMapping maps remote field names to form field names.
type NameMapping = mapper.NameMapping

// SaveResult reports the outcome of a session save.
type SaveResult = session.SaveResult

// Session is a single-item edit lifecycle: load, edit, save.
type Session = session.Session

// Option configures a session opened through this package.
type Option = session.Option

// WithMapper injects a configured value mapper.
func WithMapper(m *mapper.Mapper) Option {
	return session.WithMapper(m)
}

// WithExecutor injects the attachment executor, letting callers tune pacing.
func WithExecutor(e *reconcile.Executor) Option {
	return session.WithExecutor(e)
}

// WithAttachmentField overrides the form field carrying the attachment set.
func WithAttachmentField(name string) Option {
	return session.WithAttachmentField(name)
}

// Open starts an edit session for a list item. itemID 0 opens a new record;
// any other id loads the existing record before returning.
func Open(ctx context.Context, s Store, list string, itemID int, opts ...Option) (*Session, error) {
	sess, err := session.New(s, list, itemID, opts...)
	if err != nil {
		return nil, err
	}
	if itemID != 0 {
		if err := sess.Load(ctx); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// NewMapper builds a value mapper from an optional name mapping plus the
// field types resolved live from the store's metadata endpoint.
func NewMapper(ctx context.Context, s Store, list string, mapping NameMapping, fields []string) (*mapper.Mapper, error) {
	if len(fields) == 0 {
		return mapper.New(mapping)
	}
	resolver, err := fieldmeta.NewResolver(s, nil)
	if err != nil {
		return nil, err
	}
	types := make(map[string]fieldmeta.NormalizedType, len(fields))
	for _, name := range fields {
		meta, err := resolver.Resolve(ctx, list, name)
		if err != nil {
			return nil, err
		}
		types[name] = meta.Type
	}
	return mapper.New(mapping, mapper.WithFieldTypes(types))
}

// MapperFromSpec builds a value mapper whose field types come from an OpenAPI
// document instead of the live store. The schema name selects which component
// schema describes the list.
func MapperFromSpec(ctx context.Context, fsys fs.FS, specPath, schemaName string, mapping NameMapping) (*mapper.Mapper, error) {
	loader := openapi.NewLoader(openapi.WithFS(fsys))
	doc, err := loader.Load(ctx, openapi.SourceFromFS(specPath))
	if err != nil {
		return nil, err
	}
	fieldSource, err := openapi.NewFieldSource(ctx, doc)
	if err != nil {
		return nil, err
	}
	return mapper.New(mapping, mapper.WithFieldTypes(fieldSource.FieldTypes(schemaName)))
}

// LoadNameMapping reads a remote-to-form name mapping file (YAML or JSON).
func LoadNameMapping(fsys fs.FS, path string) (NameMapping, error) {
	return mapper.LoadNameMapping(fsys, path)
}
