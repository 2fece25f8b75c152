package coverage

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/quantpath-backend/internal/domain/learning"
)

//go:embed fallback_resources.yaml
var defaultFallbackYAML []byte

type fallbackEntry struct {
	Match     string                      `yaml:"match"`
	Resources []learning.FallbackResource `yaml:"resources"`
}

// FallbackTable maps topic substrings to external resources.
type FallbackTable struct {
	entries []fallbackEntry
}

func ParseFallbackTable(raw []byte) (*FallbackTable, error) {
	var entries []fallbackEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse fallback resources: %w", err)
	}
	out := &FallbackTable{}
	for i, e := range entries {
		e.Match = learning.NormalizeName(e.Match)
		if e.Match == "" {
			return nil, fmt.Errorf("fallback resources entry %d: empty match", i)
		}
		out.entries = append(out.entries, e)
	}
	return out, nil
}

func DefaultFallbackTable() (*FallbackTable, error) {
	return ParseFallbackTable(defaultFallbackYAML)
}

// Lookup returns the resources of every entry whose match string occurs in the
// topic, in table order, without repeating a URL.
func (t *FallbackTable) Lookup(topic string) []learning.FallbackResource {
	if t == nil {
		return nil
	}
	norm := learning.NormalizeName(topic)
	if norm == "" {
		return nil
	}
	var out []learning.FallbackResource
	seen := map[string]bool{}
	for _, e := range t.entries {
		if !strings.Contains(norm, e.Match) {
			continue
		}
		for _, r := range e.Resources {
			key := strings.TrimSpace(r.URL)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, r)
		}
	}
	return out
}
