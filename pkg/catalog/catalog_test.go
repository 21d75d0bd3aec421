package catalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/generator"
	"github.com/goliatone/go-xmlgen/pkg/payload"
	"github.com/goliatone/go-xmlgen/pkg/validation"
)

var sample = []FeatureEntry{
	{ID: "f1", Name: "login", Category: "auth", Enabled: true},
	{ID: "f2", Name: "search", Category: "ui", Enabled: false},
	{ID: "f3", Name: "sso", Category: "auth", Enabled: false},
}

func newCatalogGenerator(t *testing.T) *generator.Generator {
	t.Helper()
	reg := generator.NewDefaultRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	cfg, err := config.New(config.WithRootElement("catalog"), config.WithMetadata(nil))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	gen, err := reg.Create(TypeCatalog, cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return gen
}

func TestCatalogGenerator(t *testing.T) {
	root, err := newCatalogGenerator(t).Generate(sample)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	features := root.ChildrenNamed(FeatureTag)
	if len(features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(features))
	}
	want := []document.Attr{
		{Name: "id", Value: "f2"},
		{Name: "name", Value: "search"},
		{Name: "category", Value: "ui"},
		{Name: "enabled", Value: "false"},
	}
	if diff := cmp.Diff(want, features[1].Attrs); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogFromDecodedPayload(t *testing.T) {
	data, err := payload.DecodeJSON([]byte(`[{"id": 7, "name": "export", "category": "data", "enabled": "true"}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	entries, err := Entries(data)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if diff := cmp.Diff([]FeatureEntry{{ID: "7", Name: "export", Category: "data", Enabled: true}}, entries); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogShapeErrors(t *testing.T) {
	cases := map[string]string{
		"not a sequence": `{"id": "x"}`,
		"missing id":     `[{"name": "x"}]`,
		"bad enabled":    `[{"id": "x", "enabled": "maybe"}]`,
		"scalar entry":   `["x"]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := payload.DecodeJSON([]byte(raw))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			_, err = newCatalogGenerator(t).Generate(data)
			var shapeErr *generator.ShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("expected ShapeError, got %v", err)
			}
		})
	}
}

func TestDuplicateIDsSurfaceInValidation(t *testing.T) {
	gen := newCatalogGenerator(t)
	root, err := gen.Generate(append(sample, FeatureEntry{ID: "f1", Name: "again"}))
	if err != nil {
		t.Fatalf("generation must not reject duplicates: %v", err)
	}
	report, err := validation.New().Validate(root, gen.Config())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.IsValid || !report.HasCode(validation.CodeDuplicateID) {
		t.Fatalf("expected duplicate id error, got %+v", report)
	}
}

func TestRowsFeedTableGenerator(t *testing.T) {
	cfg, err := config.New(config.WithRootElement("features"), config.WithMetadata(nil))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	gen, err := generator.Default().Create(generator.TypeTable, cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	root, err := gen.Generate(Rows(sample))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	rows := root.ChildrenNamed(generator.RowTag)
	if len(rows) != 3 || rows[0].Child("enabled").Text != "true" || rows[2].Child("name").Text != "sso" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestSummarize(t *testing.T) {
	want := []CategoryCount{
		{Category: "auth", Total: 2, Enabled: 1},
		{Category: "ui", Total: 1, Enabled: 0},
	}
	if diff := cmp.Diff(want, Summarize(sample)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}
