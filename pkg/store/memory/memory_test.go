package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/goliatone/go-xmlgen/pkg/catalog"
	"github.com/goliatone/go-xmlgen/pkg/store"
	"github.com/goliatone/go-xmlgen/pkg/validation"
)

func TestSaveAndHistory(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"data", "table", "report"} {
		id, err := s.SaveGenerationRecord(ctx, store.GenerationRecord{
			TypeName: name,
			Report:   validation.Report{IsValid: true},
		})
		if err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("expected uuid id, got %q", id)
		}
		ids = append(ids, id)
	}

	history, err := s.History(ctx, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].TypeName != "report" || history[1].ID != ids[1] {
		t.Fatalf("unexpected history %+v", history)
	}
	if !history[0].CreatedAt.Equal(now) {
		t.Fatalf("unexpected timestamp %v", history[0].CreatedAt)
	}

	all, _ := s.History(ctx, 0)
	if len(all) != 3 {
		t.Fatalf("expected full history, got %d", len(all))
	}
}

func TestSaveRejectsEmptyType(t *testing.T) {
	_, err := New().SaveGenerationRecord(context.Background(), store.GenerationRecord{})
	if !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestFeatureCatalog(t *testing.T) {
	s := New(WithFeatures(catalog.FeatureEntry{ID: "b", Name: "beta", Category: "x", Enabled: true}))
	ctx := context.Background()
	if err := s.SaveFeatures(ctx, []catalog.FeatureEntry{
		{ID: "a", Name: "alpha", Category: "x"},
		{ID: "b", Name: "beta v2", Category: "y", Enabled: true},
	}); err != nil {
		t.Fatalf("save features: %v", err)
	}

	entries, err := s.LoadFeatureCatalog(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []catalog.FeatureEntry{
		{ID: "a", Name: "alpha", Category: "x"},
		{ID: "b", Name: "beta v2", Category: "y", Enabled: true},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}

	summary, err := s.CatalogSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary) != 2 || summary[1].Enabled != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().LoadFeatureCatalog(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
