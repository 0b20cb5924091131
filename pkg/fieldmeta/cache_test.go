package fieldmeta_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-listsync/pkg/fieldmeta"
	"github.com/goliatone/go-listsync/pkg/store"
)

func TestResolverMemoizesByListAndField(t *testing.T) {
	fixture := store.NewMemoryStore()
	fixture.SeedField("Tasks", store.RawField{InternalName: "Owner", TypeName: "User"})
	fixture.SeedField("Projects", store.RawField{InternalName: "Owner", TypeName: "Lookup", LookupListID: "lst-9"})

	resolver, err := fieldmeta.NewResolver(fixture, nil)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	ctx := context.Background()
	meta, err := resolver.Resolve(ctx, "Tasks", "Owner")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if meta.Type != fieldmeta.TypeUser {
		t.Fatalf("Tasks/Owner = %q, want User", meta.Type)
	}

	// Same field name on another list is a distinct cache entry.
	meta, err = resolver.Resolve(ctx, "Projects", "Owner")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if meta.Type != fieldmeta.TypeLookup {
		t.Fatalf("Projects/Owner = %q, want Lookup", meta.Type)
	}

	if _, err := resolver.Resolve(ctx, "Tasks", "Owner"); err != nil {
		t.Fatalf("resolve cached: %v", err)
	}

	fetches := 0
	for _, call := range fixture.Calls() {
		if call == "FetchFieldMetadata Tasks/Owner" {
			fetches++
		}
	}
	if fetches != 1 {
		t.Fatalf("Tasks/Owner fetched %d times, want 1", fetches)
	}
}

func TestCacheInvalidation(t *testing.T) {
	cache := fieldmeta.NewCache()
	cache.Put("Tasks", "Owner", fieldmeta.FieldMetadata{InternalName: "Owner"})
	cache.Put("Tasks", "Title", fieldmeta.FieldMetadata{InternalName: "Title"})
	cache.Put("Projects", "Title", fieldmeta.FieldMetadata{InternalName: "Title"})

	cache.Invalidate("Tasks", "Owner")
	if _, ok := cache.Get("Tasks", "Owner"); ok {
		t.Fatalf("entry survived Invalidate")
	}

	cache.InvalidateList("Tasks")
	if cache.Len() != 1 {
		t.Fatalf("len = %d after InvalidateList, want 1", cache.Len())
	}
	if _, ok := cache.Get("Projects", "Title"); !ok {
		t.Fatalf("unrelated list was invalidated")
	}
}

func TestResolverPropagatesStoreFailure(t *testing.T) {
	fixture := store.NewMemoryStore()
	resolver, err := fieldmeta.NewResolver(fixture, nil)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	_, err = resolver.Resolve(context.Background(), "Tasks", "Missing")
	if err == nil {
		t.Fatalf("expected failure for unknown field")
	}
	if store.StatusCode(err) != 404 {
		t.Fatalf("status = %d, want 404", store.StatusCode(err))
	}
}
