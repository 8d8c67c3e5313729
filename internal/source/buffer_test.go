package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sourcelang/plc/internal/source"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSplitsLines(t *testing.T) {
	path := writeTemp(t, "p.src", "int x;\nbody\nfinish program")

	buf, err := source.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if buf.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", buf.LineCount())
	}
	if got := buf.Line(1); got != "int x;" {
		t.Errorf("Line(1) = %q", got)
	}
	if got := buf.Line(3); got != "finish program" {
		t.Errorf("Line(3) = %q", got)
	}
}

func TestCharReturnsNewlineAtLineEnd(t *testing.T) {
	path := writeTemp(t, "p.src", "ab\ncd")
	buf, err := source.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := buf.Char(1, 2); !ok || c != '\n' {
		t.Errorf("Char(1,2) = %q, %v; want '\\n', true", c, ok)
	}
	if c, ok := buf.Char(2, 0); !ok || c != 'c' {
		t.Errorf("Char(2,0) = %q, %v; want 'c', true", c, ok)
	}
	if _, ok := buf.Char(2, 10); ok {
		t.Error("Char past end of line should return false")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := source.Load(filepath.Join(t.TempDir(), "nope.src")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRejectsDirectory(t *testing.T) {
	if _, err := source.Load(t.TempDir()); err == nil {
		t.Fatal("expected error loading a directory as source")
	}
}
