package reference

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadCodeFromYAML reads a YAML mapping from the data directory.
func (r *Registry) LoadCodeFromYAML(name string) (map[string]any, error) {
	path := filepath.Join(r.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not existed", ErrMisconfigured, path)
		}
		return nil, fmt.Errorf("reference: read %s: %w", path, err)
	}

	out := make(map[string]any)
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("reference: parse %s: %w", path, err)
	}
	return out, nil
}

// CodeEntry is one product code listed in a code book group.
type CodeEntry struct {
	Code  string
	Label string
}

// Codebook groups product codes of interest under names such as "wind" or "solar".
//
// Each group is either a mapping of code to label or a plain list of codes:
//
//	wind:
//	  850231: wind-powered generating sets
//	solar:
//	  - 854140
type Codebook struct {
	groups map[string][]CodeEntry
	order  []string
}

// LoadCodebook reads and parses a code book file.
func LoadCodebook(path string) (*Codebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: code book %s not existed", ErrMisconfigured, path)
		}
		return nil, fmt.Errorf("codebook: read %s: %w", path, err)
	}
	cb, err := ParseCodebook(data)
	if err != nil {
		return nil, fmt.Errorf("codebook %s: %w", path, err)
	}
	return cb, nil
}

// ParseCodebook parses code book YAML. Codes are normalized to 6 digits.
func ParseCodebook(data []byte) (*Codebook, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("empty code book")
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: code book must be a mapping of groups", top.Line)
	}

	cb := &Codebook{groups: make(map[string][]CodeEntry)}
	for i := 0; i+1 < len(top.Content); i += 2 {
		name := top.Content[i].Value
		entries, err := parseGroup(top.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		if _, dup := cb.groups[name]; !dup {
			cb.order = append(cb.order, name)
		}
		cb.groups[name] = entries
	}
	return cb, nil
}

func parseGroup(n *yaml.Node) ([]CodeEntry, error) {
	var entries []CodeEntry
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			code, err := MakeProductCode(k.Value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", k.Line, err)
			}
			label := ""
			if v.Kind == yaml.ScalarNode && v.ShortTag() != "!!null" {
				label = v.Value
			}
			entries = append(entries, CodeEntry{Code: code, Label: label})
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: expected a product code", item.Line)
			}
			code, err := MakeProductCode(item.Value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", item.Line, err)
			}
			entries = append(entries, CodeEntry{Code: code})
		}
	case yaml.ScalarNode:
		if n.ShortTag() != "!!null" && strings.TrimSpace(n.Value) != "" {
			return nil, fmt.Errorf("line %d: expected a mapping or a list", n.Line)
		}
	default:
		return nil, fmt.Errorf("line %d: expected a mapping or a list", n.Line)
	}
	return entries, nil
}

// GroupNames returns group names in file order.
func (c *Codebook) GroupNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Group returns the entries of one group.
func (c *Codebook) Group(name string) ([]CodeEntry, bool) {
	entries, ok := c.groups[name]
	return entries, ok
}

// Codes returns the unique codes of the named groups, or of every group when
// none are named, keeping first-seen order.
func (c *Codebook) Codes(groups ...string) ([]string, error) {
	if len(groups) == 0 {
		groups = c.order
	}
	seen := make(map[string]struct{})
	var out []string
	for _, g := range groups {
		entries, ok := c.groups[g]
		if !ok {
			return nil, fmt.Errorf("codebook: unknown group %q", g)
		}
		for _, e := range entries {
			if _, dup := seen[e.Code]; dup {
				continue
			}
			seen[e.Code] = struct{}{}
			out = append(out, e.Code)
		}
	}
	return out, nil
}
