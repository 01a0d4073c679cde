package content

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content.md")
	if err := os.WriteFile(path, []byte("# Members\nJane Doe, 12-05-1990\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := NewLoader(path, nil)
	got := l.Load()
	if got != "# Members\nJane Doe, 12-05-1990" {
		t.Fatalf("Load() = %q", got)
	}
	if !l.Available() {
		t.Fatalf("Available() = false, want true")
	}
}

func TestLoaderMissingFileReturnsPlaceholder(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "nope.md"), nil)
	if got := l.Load(); got != Placeholder {
		t.Fatalf("Load() = %q, want placeholder", got)
	}
	if l.Available() {
		t.Fatalf("Available() = true, want false")
	}
}

func TestLoaderEmptyFileReturnsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content.md")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := NewLoader(path, nil)
	if got := l.Load(); got != Placeholder {
		t.Fatalf("Load() = %q, want placeholder", got)
	}
}
