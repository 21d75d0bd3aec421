package generator

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
)

func TestDefaultRegistryBuiltins(t *testing.T) {
	if diff := cmp.Diff([]string{TypeData, TypeReport, TypeTable}, Default().List()); diff != "" {
		t.Fatalf("built-in types mismatch (-want +got):\n%s", diff)
	}
	if Default() != Default() {
		t.Fatalf("default registry must be process-wide")
	}
}

func TestRegisterDuplicateKeepsExisting(t *testing.T) {
	reg := NewDefaultRegistry()
	marker := ContentGeneratorFunc(func(any, *document.Node) error { return errors.New("replacement ran") })

	err := reg.Register(TypeData, func(config.Config) (ContentGenerator, error) { return marker, nil })
	var dup *DuplicateTypeError
	if !errors.As(err, &dup) || dup.Name != TypeData {
		t.Fatalf("expected DuplicateTypeError, got %v", err)
	}

	gen, err := reg.Create(TypeData, config.Default())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := gen.Generate(map[string]any{"a": 1}); err != nil {
		t.Fatalf("original data generator should still be registered: %v", err)
	}
}

func TestCreateUnknownType(t *testing.T) {
	_, err := NewDefaultRegistry().Create("spreadsheet", config.Default())
	var unknown *UnknownTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTypeError, got %v", err)
	}
	if unknown.Code() != "UNKNOWN_TYPE" || len(unknown.Known) != 3 {
		t.Fatalf("unexpected error %+v", unknown)
	}
}

func TestCreateRejectsInvalidConfig(t *testing.T) {
	var cfg config.Config
	_, err := NewDefaultRegistry().Create(TypeData, cfg)
	var cfgErr *config.Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestRegisterCustomType(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register("greeting", func(cfg config.Config) (ContentGenerator, error) {
		return ContentGeneratorFunc(func(data any, root *document.Node) error {
			root.AddChild("hello").SetText(fmt.Sprint(data))
			return nil
		}), nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.Has("greeting") || reg.Has(TypeData) {
		t.Fatalf("unexpected registry contents %v", reg.List())
	}

	gen, err := reg.Create("greeting", config.Default())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	root, err := gen.Generate("world")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if root.Child("hello") == nil || root.Child("hello").Text != "world" {
		t.Fatalf("custom content missing: %+v", root.Children)
	}
	if gen.TypeName() != "greeting" {
		t.Fatalf("unexpected type name %q", gen.TypeName())
	}
}

func TestRegisterRejectsEmptyInput(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("  ", NewDataGenerator); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
	if err := reg.Register("x", nil); err == nil {
		t.Fatalf("expected nil constructor to be rejected")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewDefaultRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = reg.Register(fmt.Sprintf("custom-%d", i%4), NewDataGenerator)
		}(i)
		go func() {
			defer wg.Done()
			if _, err := reg.Create(TypeTable, config.Default()); err != nil {
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(reg.List()); got != 7 {
		t.Fatalf("expected 7 types, got %d (%v)", got, reg.List())
	}
}
