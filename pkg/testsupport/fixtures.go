// Package testsupport holds fixture and golden helpers shared by package tests.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/payload"
)

// UpdateEnv enables golden rewrites when set.
const UpdateEnv = "UPDATE_GOLDENS"

// LoadPayload decodes a JSON or YAML fixture into an ordered payload value.
func LoadPayload(t *testing.T, path string) any {
	t.Helper()

	value, err := LoadPayloadFromPath(path)
	if err != nil {
		t.Fatalf("load payload: %v", err)
	}
	return value
}

// LoadPayloadFromPath returns the payload without requiring testing.T, so
// callers can load fixtures in setup functions.
func LoadPayloadFromPath(path string) (any, error) {
	if path == "" {
		return nil, errors.New("testsupport: payload path is required")
	}
	value, err := payload.LoadFile(context.Background(), path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: load payload: %w", err)
	}
	return value, nil
}

// MustConfig builds a validated configuration from options.
func MustConfig(t *testing.T, options ...config.Option) config.Config {
	t.Helper()

	cfg, err := config.New(options...)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

// CompactConfig is MustConfig with pretty printing and metadata turned off,
// which keeps expected documents on one line.
func CompactConfig(t *testing.T, options ...config.Option) config.Config {
	t.Helper()

	base := []config.Option{config.WithPrettyPrint(false), config.WithMetadata(nil)}
	return MustConfig(t, append(base, options...)...)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv(UpdateEnv) == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertGolden compares got with the golden file at path, rewriting it first
// when UPDATE_GOLDENS is set.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}
	want := MustReadGolden(t, path)
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}
