package snapshot

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JakeFAU/showcrawl/internal/show"
)

// Overrides maps a show key (venue|date|title) to a replacement image URL.
type Overrides map[string]string

// LoadOverrides reads an override table from a YAML or JSON mapping. An empty
// path yields an empty table.
func LoadOverrides(path string) (Overrides, error) {
	if strings.TrimSpace(path) == "" {
		return Overrides{}, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator config.
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes an override table. Keys are re-folded so the file may
// use any casing or padding.
func ParseOverrides(data []byte) (Overrides, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}
	out := make(Overrides, len(raw))
	for key, image := range raw {
		parts := strings.Split(key, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("override key %q: want venue|date|title", key)
		}
		image = strings.TrimSpace(image)
		if image == "" {
			continue
		}
		out[show.NewKey(parts[0], parts[1], parts[2]).String()] = image
	}
	return out, nil
}

// Lookup returns the replacement image for a record.
func (o Overrides) Lookup(r show.ShowRecord) (string, bool) {
	image, ok := o[r.Key().String()]
	return image, ok
}
