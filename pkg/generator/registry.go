package generator

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-xmlgen/pkg/config"
)

// Constructor builds a content step for one generation request.
type Constructor func(cfg config.Config) (ContentGenerator, error)

// Registry maps type names to constructors. It is append-only: entries are
// never replaced or removed. Safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// NewDefaultRegistry returns a registry holding the built-in types.
func NewDefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.MustRegister(TypeData, NewDataGenerator)
	reg.MustRegister(TypeTable, NewTableGenerator)
	reg.MustRegister(TypeReport, NewReportGenerator)
	return reg
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, created with the built-in types
// on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewDefaultRegistry()
	})
	return defaultRegistry
}

// Register adds a constructor. A name that is already taken returns
// DuplicateTypeError and the existing entry is kept.
func (r *Registry) Register(name string, ctor Constructor) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("generator: type name is required")
	}
	if ctor == nil {
		return fmt.Errorf("generator: constructor for %q is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return &DuplicateTypeError{Name: name}
	}
	r.constructors[name] = ctor
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, ctor Constructor) {
	if err := r.Register(name, ctor); err != nil {
		panic(err)
	}
}

// Create resolves name and config into a ready Generator.
func (r *Registry) Create(name string, cfg config.Config) (*Generator, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownTypeError{Name: name, Known: r.List()}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	content, err := ctor(cfg)
	if err != nil {
		return nil, fmt.Errorf("generator: construct %q: %w", name, err)
	}
	return New(name, cfg, content)
}

// List returns a sorted list of type names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a type is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.constructors[name]
	return ok
}
