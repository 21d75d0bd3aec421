// Package catalog renders feature catalogs. It is an extension type: callers
// add it to a registry with Register rather than getting it as a built-in.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/generator"
	"github.com/goliatone/go-xmlgen/pkg/payload"
)

const (
	// TypeCatalog is the registry name of the catalog generator.
	TypeCatalog = "catalog"
	// FeatureTag names one catalog entry.
	FeatureTag = "feature"
)

// FeatureEntry is one row of the feature catalog.
type FeatureEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Enabled  bool   `json:"enabled"`
}

// Register adds the catalog type to reg.
func Register(reg *generator.Registry) error {
	return reg.Register(TypeCatalog, NewGenerator)
}

// Generator writes one feature element per entry, carrying every field as an
// attribute. Duplicate ids are left for the validator's integrity check.
type Generator struct{}

// NewGenerator is the registry constructor for TypeCatalog.
func NewGenerator(config.Config) (generator.ContentGenerator, error) {
	return Generator{}, nil
}

// GenerateContent implements generator.ContentGenerator. The payload is a
// []FeatureEntry or a sequence of mappings with the same keys.
func (Generator) GenerateContent(data any, root *document.Node) error {
	entries, err := Entries(data)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		node := root.AddChild(FeatureTag)
		node.SetAttr("id", entry.ID)
		node.SetAttr("name", entry.Name)
		node.SetAttr("category", entry.Category)
		node.SetAttr("enabled", strconv.FormatBool(entry.Enabled))
	}
	return nil
}

// Entries converts a payload into feature entries.
func Entries(data any) ([]FeatureEntry, error) {
	if entries, ok := data.([]FeatureEntry); ok {
		return entries, nil
	}
	items, ok := payload.Items(data)
	if !ok {
		return nil, &generator.ShapeError{Generator: TypeCatalog, Reason: "payload must be a sequence of features"}
	}

	entries := make([]FeatureEntry, 0, len(items))
	for idx, item := range items {
		path := fmt.Sprintf("[%d]", idx)
		if _, ok := payload.Fields(item); !ok {
			return nil, &generator.ShapeError{Generator: TypeCatalog, Path: path, Reason: "feature must be a mapping"}
		}
		entry := FeatureEntry{}
		var err error
		if entry.ID, err = text(item, "id", path); err != nil {
			return nil, err
		}
		if entry.ID == "" {
			return nil, &generator.ShapeError{Generator: TypeCatalog, Path: path, Reason: `feature requires "id"`}
		}
		if entry.Name, err = text(item, "name", path); err != nil {
			return nil, err
		}
		if entry.Category, err = text(item, "category", path); err != nil {
			return nil, err
		}
		if entry.Enabled, err = flag(item, "enabled", path); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func text(item any, key, path string) (string, error) {
	value, ok := payload.Lookup(item, key)
	if !ok || value == nil {
		return "", nil
	}
	out, ok := config.ScalarText(value)
	if !ok {
		return "", &generator.ShapeError{Generator: TypeCatalog, Path: path + "." + key, Reason: "must be a scalar"}
	}
	return strings.TrimSpace(out), nil
}

func flag(item any, key, path string) (bool, error) {
	value, ok := payload.Lookup(item, key)
	if !ok || value == nil {
		return false, nil
	}
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return parsed, nil
		}
	}
	if n, ok := payload.Int(value); ok && (n == 0 || n == 1) {
		return n == 1, nil
	}
	return false, &generator.ShapeError{Generator: TypeCatalog, Path: path + "." + key, Reason: fmt.Sprintf("must be a boolean, got %v", value)}
}

// Rows converts entries into a table payload so a catalog can also be written
// by the table generator.
func Rows(entries []FeatureEntry) []any {
	rows := make([]any, len(entries))
	for idx, entry := range entries {
		rows[idx] = payload.Object{
			{Key: "id", Value: entry.ID},
			{Key: "name", Value: entry.Name},
			{Key: "category", Value: entry.Category},
			{Key: "enabled", Value: entry.Enabled},
		}
	}
	return rows
}

// CategoryCount summarises one category.
type CategoryCount struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
	Enabled  int    `json:"enabled"`
}

// Summarize counts entries per category, sorted by category name.
func Summarize(entries []FeatureEntry) []CategoryCount {
	counts := make(map[string]*CategoryCount)
	for _, entry := range entries {
		count, ok := counts[entry.Category]
		if !ok {
			count = &CategoryCount{Category: entry.Category}
			counts[entry.Category] = count
		}
		count.Total++
		if entry.Enabled {
			count.Enabled++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for _, count := range counts {
		out = append(out, *count)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
