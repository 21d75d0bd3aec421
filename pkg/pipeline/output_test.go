package pipeline

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func TestWriteFileAtomicPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := t.TempDir()

	fresh := filepath.Join(dir, "fresh.xml")
	if _, err := writeFileAtomic(fresh, writeString("<a/>")); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, err := os.Stat(fresh)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if got := info.Mode().Perm(); got != outputFileMode {
		t.Fatalf("expected mode %v, got %v", outputFileMode, got)
	}

	existing := filepath.Join(dir, "existing.xml")
	if err := os.WriteFile(existing, []byte("old"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := os.Chmod(existing, 0o640); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	n, err := writeFileAtomic(existing, writeString("<b/>"))
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	info, err = os.Stat(existing)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o640 {
		t.Fatalf("expected the existing mode to be kept, got %v", got)
	}
	if data, _ := os.ReadFile(existing); string(data) != "<b/>" || n != 4 {
		t.Fatalf("unexpected content %q (%d bytes)", data, n)
	}
}

func TestWriteFileAtomicLeavesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xml")
	boom := errors.New("boom")

	_, err := writeFileAtomic(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "<partial"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the write error, got %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected an empty directory, got %d entries", len(entries))
	}
}
