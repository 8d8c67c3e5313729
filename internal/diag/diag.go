// Package diag implements the diagnostic sink: component A. It formats
// warnings and errors as a three-line message (header, text, source line)
// and tracks a process-wide "had errors" flag that gates the final commit.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/sourcelang/plc/internal/source"
)

// Category classifies a non-scan diagnostic.
type Category string

// The closed set of diagnostic categories, per spec §7.
const (
	CategorySyntax  Category = "syntax"
	CategoryName    Category = "name"
	CategoryType    Category = "type"
	CategoryRuntime Category = "runtime"
)

// Sink collects warnings and errors with file and line context and
// tracks whether any error-level diagnostic has been raised.
type Sink struct {
	path      string
	src       *source.Buffer
	out       io.Writer
	hadErrors bool
}

// New creates a diagnostic sink for the named source file. If out is nil,
// messages are printed to os.Stderr.
func New(path string, src *source.Buffer, out io.Writer) *Sink {
	if out == nil {
		out = os.Stderr
	}
	return &Sink{path: path, src: src, out: out}
}

// HadErrors reports whether any error-level diagnostic has been raised.
// Warnings never set this.
func (s *Sink) HadErrors() bool { return s.hadErrors }

func (s *Sink) emit(prefix, msg string, line int) {
	fmt.Fprintf(s.out, "%s: %q, line %d\n", prefix, s.path, line)
	fmt.Fprintf(s.out, "    %s\n", msg)
	fmt.Fprintf(s.out, "    %s\n", s.src.Line(line))
}

// Warn records a warning. Warnings never set HadErrors and never block the
// commit of already-generated code.
func (s *Sink) Warn(msg string, line int) {
	s.emit("Warning", msg, line)
}

// SyntaxError records a parser match-failure diagnostic.
func (s *Sink) SyntaxError(msg string, line int) {
	s.emit("Error", msg, line)
	s.hadErrors = true
}

// NameError records an identifier-table add/find failure.
func (s *Sink) NameError(msg string, line int) {
	s.emit("Error", msg, line)
	s.hadErrors = true
}

// TypeError records an expression/assignment/parameter type mismatch.
func (s *Sink) TypeError(msg string, line int) {
	s.emit("Error", msg, line)
	s.hadErrors = true
}

// RuntimeError records an argument-count mismatch or an array used as a
// scalar.
func (s *Sink) RuntimeError(msg string, line int) {
	s.emit("Error", msg, line)
	s.hadErrors = true
}
