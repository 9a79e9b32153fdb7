// Package catalog loads the tool catalog and the comparison registry from
// YAML documents. Embedded defaults are used when no path is configured.
package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/okian/toolboard/internal/domain/compare"
	"github.com/okian/toolboard/internal/domain/model"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var defaultsFS embed.FS

const (
	defaultToolsFile       = "data/tools.yaml"
	defaultComparisonsFile = "data/comparisons.yaml"
)

// Catalog is an immutable set of tools indexed by slug.
type Catalog struct {
	tools      []model.Tool
	bySlug     map[string]int
	categories []string
}

type toolsDocument struct {
	Tools []model.Tool `yaml:"tools"`
}

type comparisonsDocument struct {
	Comparisons []compare.Entry `yaml:"comparisons"`
}

// LoadTools reads the catalog at path, or the embedded default when path
// is empty.
func LoadTools(path string) (*Catalog, error) {
	data, err := read(path, defaultToolsFile)
	if err != nil {
		return nil, err
	}
	return ParseTools(data)
}

// ParseTools decodes a tools document. Slugs are trimmed and must be
// present and unique.
func ParseTools(data []byte) (*Catalog, error) {
	var doc toolsDocument
	if err := decode(data, &doc); err != nil {
		return nil, err
	}

	c := &Catalog{
		tools:  make([]model.Tool, 0, len(doc.Tools)),
		bySlug: make(map[string]int, len(doc.Tools)),
	}
	seen := make(map[string]struct{})
	for i, t := range doc.Tools {
		t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
		if t.Slug == "" {
			return nil, fmt.Errorf("%w: tool #%d (%q)", ErrMissingSlug, i, t.Name)
		}
		if _, dup := c.bySlug[t.Slug]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSlug, t.Slug)
		}
		if t.Name == "" {
			t.Name = t.Slug
		}
		c.bySlug[t.Slug] = len(c.tools)
		c.tools = append(c.tools, t)

		category := t.CategoryOf()
		if _, ok := seen[category]; !ok {
			seen[category] = struct{}{}
			c.categories = append(c.categories, category)
		}
	}
	slices.Sort(c.categories)
	return c, nil
}

// Tools returns the catalog records in document order.
func (c *Catalog) Tools() []model.Tool {
	return slices.Clone(c.tools)
}

// Get returns the tool with the given slug.
func (c *Catalog) Get(slug string) (model.Tool, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return model.Tool{}, false
	}
	return c.tools[i], true
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	return slices.Clone(c.categories)
}

// HasCategory reports whether any tool belongs to category.
func (c *Catalog) HasCategory(category string) bool {
	_, found := slices.BinarySearch(c.categories, category)
	return found
}

// Len returns the number of tools.
func (c *Catalog) Len() int { return len(c.tools) }

// LoadComparisons reads the comparison registry entries at path, or the
// embedded default when path is empty.
func LoadComparisons(path string) ([]compare.Entry, error) {
	data, err := read(path, defaultComparisonsFile)
	if err != nil {
		return nil, err
	}
	return ParseComparisons(data)
}

// ParseComparisons decodes a comparisons document, preserving order.
func ParseComparisons(data []byte) ([]compare.Entry, error) {
	var doc comparisonsDocument
	if err := decode(data, &doc); err != nil {
		return nil, err
	}
	return doc.Comparisons, nil
}

func read(path, fallback string) ([]byte, error) {
	if path == "" {
		data, err := defaultsFS.ReadFile(fallback)
		if err != nil {
			return nil, fmt.Errorf("read embedded %s: %w", fallback, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func decode(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}
