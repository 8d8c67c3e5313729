package diag_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sourcelang/plc/internal/diag"
	"github.com/sourcelang/plc/internal/source"
)

func testBuffer(t *testing.T) *source.Buffer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "p.src")
	if err := os.WriteFile(path, []byte("int x;\nx = 3;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	buf, err := source.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestWarnDoesNotSetHadErrors(t *testing.T) {
	var out bytes.Buffer
	sink := diag.New("p.src", testBuffer(t), &out)

	sink.Warn("no closing quotation in string", 2)

	if sink.HadErrors() {
		t.Fatal("Warn must not set HadErrors")
	}
	want := "Warning: \"p.src\", line 2\n    no closing quotation in string\n    x = 3;\n"
	if out.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestErrorCategoriesSetHadErrors(t *testing.T) {
	cases := []struct {
		name string
		call func(*diag.Sink)
	}{
		{"syntax", func(s *diag.Sink) { s.SyntaxError("expected \";\"", 1) }},
		{"name", func(s *diag.Sink) { s.NameError("y: not declared in this scope", 1) }},
		{"type", func(s *diag.Sink) { s.TypeError("expected int type, encountered str", 1) }},
		{"runtime", func(s *diag.Sink) { s.RuntimeError("array requires index", 1) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sink := diag.New("p.src", testBuffer(t), &bytes.Buffer{})
			c.call(sink)
			if !sink.HadErrors() {
				t.Errorf("%s category must set HadErrors", c.name)
			}
		})
	}
}
