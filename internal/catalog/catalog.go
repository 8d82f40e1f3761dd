// Package catalog maps art-type slugs submitted by clients to display names.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// OtherSlug is the bucket for anything not in the catalogue.
const OtherSlug = "other"

//go:embed arttypes.yaml
var artTypesYAML []byte

type ArtType struct {
	Slug string `yaml:"slug" json:"slug"`
	Name string `yaml:"name" json:"name"`
}

type Catalog struct {
	types  []ArtType
	bySlug map[string]ArtType
	byName map[string]string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalogue. The file ships with the binary so a
// parse failure is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(artTypesYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func Parse(data []byte) (*Catalog, error) {
	var types []ArtType
	if err := yaml.Unmarshal(data, &types); err != nil {
		return nil, fmt.Errorf("parse art types: %w", err)
	}

	c := &Catalog{
		types:  make([]ArtType, 0, len(types)),
		bySlug: make(map[string]ArtType, len(types)),
		byName: make(map[string]string, len(types)),
	}
	for _, t := range types {
		t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
		if t.Slug == "" || t.Name == "" {
			return nil, fmt.Errorf("art type entry missing slug or name: %+v", t)
		}
		if _, dup := c.bySlug[t.Slug]; dup {
			return nil, fmt.Errorf("duplicate art type slug %q", t.Slug)
		}
		name := foldName(t.Name)
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("duplicate art type name %q", t.Name)
		}
		c.bySlug[t.Slug] = t
		c.byName[name] = t.Slug
		c.types = append(c.types, t)
	}
	return c, nil
}

func (c *Catalog) All() []ArtType {
	out := make([]ArtType, len(c.types))
	copy(out, c.types)
	return out
}

func (c *Catalog) Has(slug string) bool {
	_, ok := c.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	return ok
}

// Name returns the display name for slug. Free text that is not a known slug
// is returned unchanged.
func (c *Catalog) Name(slug string) string {
	if t, ok := c.bySlug[strings.ToLower(strings.TrimSpace(slug))]; ok {
		return t.Name
	}
	return slug
}

// Normalize maps a slug or a display name to a known slug, or OtherSlug.
// Used for metric labels.
func (c *Catalog) Normalize(slug string) string {
	s := strings.ToLower(strings.TrimSpace(slug))
	if _, ok := c.bySlug[s]; ok {
		return s
	}
	if known, ok := c.byName[foldName(slug)]; ok {
		return known
	}
	return OtherSlug
}

func foldName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
