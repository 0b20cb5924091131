package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	listsync "github.com/goliatone/go-listsync"
	"github.com/goliatone/go-listsync/pkg/editor"
	"github.com/goliatone/go-listsync/pkg/fieldmeta"
	"github.com/goliatone/go-listsync/pkg/store"
)

// seedFile is the JSON shape the -store flag accepts: one item plus its field
// descriptors and attachment set.
type seedFile struct {
	Item        store.ItemRecord          `json:"item"`
	Fields      map[string]store.RawField `json:"fields"`
	Attachments []store.Attachment        `json:"attachments"`
}

func main() {
	list := flag.String("list", "Tasks", "remote list name")
	item := flag.Int("item", 0, "item id (0 creates a new record)")
	mapping := flag.String("mapping", "", "remote-to-form name mapping file (YAML or JSON)")
	seed := flag.String("store", "", "seed JSON for the in-memory store")
	spec := flag.String("spec", "", "OpenAPI document used to derive field types")
	schema := flag.String("schema", "", "component schema name (defaults to the list name)")
	edit := flag.Bool("edit", false, "prompt for field values interactively")
	output := flag.String("output", "", "output file for the save result (stdout if empty)")
	flag.Parse()

	ctx := context.Background()

	mem := store.NewMemoryStore()
	var seeded seedFile
	if *seed != "" {
		data, err := os.ReadFile(*seed)
		if err != nil {
			log.Fatalf("read seed: %v", err)
		}
		if err := json.Unmarshal(data, &seeded); err != nil {
			log.Fatalf("parse seed: %v", err)
		}
		if seeded.Item != nil {
			mem.SeedItem(*list, *item, seeded.Item)
		}
		for name, raw := range seeded.Fields {
			if raw.InternalName == "" {
				raw.InternalName = name
			}
			mem.SeedField(*list, raw)
		}
		for _, att := range seeded.Attachments {
			mem.SeedAttachment(*list, *item, att)
		}
	}

	var names listsync.NameMapping
	if *mapping != "" {
		m, err := listsync.LoadNameMapping(os.DirFS(filepath.Dir(*mapping)), filepath.Base(*mapping))
		if err != nil {
			log.Fatalf("load mapping: %v", err)
		}
		names = m
	}

	opts := []listsync.Option{}
	if *spec != "" {
		schemaName := *schema
		if schemaName == "" {
			schemaName = *list
		}
		m, err := listsync.MapperFromSpec(ctx, os.DirFS(filepath.Dir(*spec)), filepath.Base(*spec), schemaName, names)
		if err != nil {
			log.Fatalf("build mapper: %v", err)
		}
		opts = append(opts, listsync.WithMapper(m))
	} else if names != nil {
		fields := make([]string, 0, len(seeded.Fields))
		for name := range seeded.Fields {
			fields = append(fields, name)
		}
		m, err := listsync.NewMapper(ctx, mem, *list, names, fields)
		if err != nil {
			log.Fatalf("build mapper: %v", err)
		}
		opts = append(opts, listsync.WithMapper(m))
	}

	sess, err := listsync.Open(ctx, mem, *list, *item, opts...)
	if err != nil {
		log.Fatalf("open session: %v", err)
	}

	if *edit {
		metas := make([]fieldmeta.FieldMetadata, 0, len(seeded.Fields))
		for _, raw := range seeded.Fields {
			metas = append(metas, fieldmeta.Normalize(raw))
		}
		if err := editor.New().Edit(ctx, sess, metas); err != nil {
			log.Fatalf("edit: %v", err)
		}
	}

	result, err := sess.Save(ctx)
	if err != nil {
		log.Fatalf("save: %v", err)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encode result: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			log.Fatalf("write output: %v", err)
		}
		fmt.Printf("Save result written to %s\n", *output)
	} else {
		fmt.Println(string(payload))
	}
}
