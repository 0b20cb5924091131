package mapper

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMappingCollision reports a NameMapping whose inversion is ambiguous.
var ErrMappingCollision = errors.New("mapper: name mapping is not injective")

// NameMapping maps remote field names to form field names. It must be a
// partial bijection: names absent from the table map to themselves, and no
// two remote names may target the same form name. The collision case is a
// detected configuration error rather than silent data loss.
type NameMapping map[string]string

// Validate checks that the mapping can be inverted without collisions.
func (m NameMapping) Validate() error {
	_, err := m.invert()
	return err
}

// FormName returns the form-side name for a remote field.
func (m NameMapping) FormName(remote string) string {
	if form, ok := m[remote]; ok && form != "" {
		return form
	}
	return remote
}

func (m NameMapping) invert() (map[string]string, error) {
	reverse := make(map[string]string, len(m))
	for remote, form := range m {
		if form == "" {
			continue
		}
		if prior, ok := reverse[form]; ok {
			first, second := prior, remote
			if second < first {
				first, second = second, first
			}
			return nil, fmt.Errorf("%w: %q and %q both map to %q", ErrMappingCollision, first, second, form)
		}
		reverse[form] = remote
	}
	return reverse, nil
}

// FormNames returns the sorted form-side names of the mapping, mostly useful
// for diagnostics.
func (m NameMapping) FormNames() []string {
	names := make([]string, 0, len(m))
	for _, form := range m {
		names = append(names, form)
	}
	sort.Strings(names)
	return names
}

type mappingDocument struct {
	Fields map[string]string `yaml:"fields" json:"fields"`
}

// LoadNameMapping reads a mapping document (YAML or JSON, `fields:` table of
// remote name to form name) from the provided filesystem and validates it.
func LoadNameMapping(fsys fs.FS, path string) (NameMapping, error) {
	if fsys == nil {
		return nil, errors.New("mapper: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("mapper: read mapping %s: %w", path, err)
	}

	var doc mappingDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("mapper: parse mapping %s: %w", path, err)
	}
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("mapper: mapping %s defines no fields", path)
	}

	mapping := make(NameMapping, len(doc.Fields))
	for remote, form := range doc.Fields {
		remote = strings.TrimSpace(remote)
		form = strings.TrimSpace(form)
		if remote == "" {
			return nil, fmt.Errorf("mapper: mapping %s contains an empty remote name", path)
		}
		mapping[remote] = form
	}
	if err := mapping.Validate(); err != nil {
		return nil, fmt.Errorf("mapper: mapping %s: %w", path, err)
	}
	return mapping, nil
}
