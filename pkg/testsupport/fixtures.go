// Package testsupport carries fixture loaders and golden-file helpers shared
// across package tests.
package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-listsync/pkg/store"
)

// MustLoadItem loads a JSON fixture into an item record.
func MustLoadItem(t *testing.T, path string) store.ItemRecord {
	t.Helper()

	record, err := LoadItem(path)
	if err != nil {
		t.Fatalf("load item: %v", err)
	}
	return record
}

// LoadItem reads a JSON fixture into an ItemRecord, returning an error for
// callers managing setup outside of *testing.T.
func LoadItem(path string) (store.ItemRecord, error) {
	if path == "" {
		return nil, errors.New("testsupport: item path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read item: %w", err)
	}
	var out store.ItemRecord
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal item: %w", err)
	}
	return out, nil
}

// MustLoadFields loads a JSON fixture holding raw field descriptors keyed by
// internal name.
func MustLoadFields(t *testing.T, path string) map[string]store.RawField {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load fields: %v", err)
	}
	var out map[string]store.RawField
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal fields: %v", err)
	}
	return out
}

// SeedStore builds a memory store pre-loaded with an item and its field
// descriptors so session tests start from one line.
func SeedStore(t *testing.T, list string, itemID int, record store.ItemRecord, fields map[string]store.RawField) *store.MemoryStore {
	t.Helper()

	mem := store.NewMemoryStore()
	if record != nil {
		mem.SeedItem(list, itemID, record)
	}
	for name, raw := range fields {
		if raw.InternalName == "" {
			raw.InternalName = name
		}
		mem.SeedField(list, raw)
	}
	return mem
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
