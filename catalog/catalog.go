// Package catalog provides the default website template catalog seeded into
// the templates table on startup.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultCatalog []byte

// Entry is one catalog template.
type Entry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	PreviewURL  string `yaml:"preview_url"`
	Description string `yaml:"description"`
}

type file struct {
	Templates []Entry `yaml:"templates"`
}

// Default returns the embedded catalog.
func Default() ([]Entry, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalog document and rejects entries without an id, name
// or category, and duplicate ids.
func Parse(data []byte) ([]Entry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Templates))
	for i, e := range f.Templates {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Category) == "" {
			return nil, fmt.Errorf("catalog: entry %d: id, name and category are required", i)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate template id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return f.Templates, nil
}

// Categories returns the distinct categories in catalog order.
func Categories(entries []Entry) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}
