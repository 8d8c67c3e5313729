// Package source loads a file into a line-indexed buffer and serves both
// whole lines (for diagnostics) and individual characters (for the
// scanner's cursor).
package source

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Buffer is a line-indexed view of a source file. Lines are stored with
// their original line ending intact so that Char can report '\n' at a
// logical line end, matching the original scanner's splitlines(keepends=True)
// behavior.
type Buffer struct {
	path  string
	lines []string
}

// Load reads path and splits it into lines. It fails if path is not a
// regular, readable file.
func Load(path string) (*Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "source %q", path)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Errorf("source %q: not a regular file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "source %q: read failed", path)
	}
	return &Buffer{path: path, lines: splitKeepEnds(string(data))}, nil
}

// splitKeepEnds splits s into lines, each one retaining its trailing '\n'
// (the last line keeps none if the file didn't end with one).
func splitKeepEnds(s string) []string {
	if s == "" {
		return []string{""}
	}
	var lines []string
	for len(s) > 0 {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			lines = append(lines, s[:i+1])
			s = s[i+1:]
		} else {
			lines = append(lines, s)
			s = ""
		}
	}
	return lines
}

// Path returns the file path this buffer was loaded from.
func (b *Buffer) Path() string { return b.path }

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns the 1-based line n with its line ending stripped. Returns
// "" for an out-of-range line.
func (b *Buffer) Line(n int) string {
	if n < 1 || n > len(b.lines) {
		return ""
	}
	return strings.TrimRight(b.lines[n-1], "\n")
}

// RawLine returns the 1-based line n including its line ending, if any.
func (b *Buffer) RawLine(n int) string {
	if n < 1 || n > len(b.lines) {
		return ""
	}
	return b.lines[n-1]
}

// Char returns the byte at 1-based line and 0-based column col. It returns
// ('\n', true) at a logical line end, and (0, false) past the end of the
// buffer.
func (b *Buffer) Char(line, col int) (byte, bool) {
	if line < 1 || line > len(b.lines) {
		return 0, false
	}
	raw := b.lines[line-1]
	if col < 0 || col >= len(raw) {
		return 0, false
	}
	return raw[col], true
}
