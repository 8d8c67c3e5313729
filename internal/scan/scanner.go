// Package scan implements the scanner: component C. It produces a lazy
// sequence of tokens from a source buffer, warning (but never halting) on
// malformed literals and stray characters.
package scan

import (
	"fmt"
	"strings"

	"github.com/sourcelang/plc/internal/diag"
	"github.com/sourcelang/plc/internal/source"
	"github.com/sourcelang/plc/lang/token"
)

// Scanner produces tokens from a source buffer. It is restartable after any
// warning; only reaching the end of the buffer stops it, by way of an EOF
// token.
type Scanner struct {
	buf  *source.Buffer
	sink *diag.Sink
	line int // 1-based
	col  int // 0-based byte offset into the current raw line
}

// New creates a scanner positioned at the start of buf.
func New(buf *source.Buffer, sink *diag.Sink) *Scanner {
	return &Scanner{buf: buf, sink: sink, line: 1, col: 0}
}

// Next returns the next token in the stream. Once the buffer is exhausted
// it returns an EOF token forever after.
func (s *Scanner) Next() token.Token {
	for {
		ch, ok := s.nextWord()
		if !ok {
			return token.Token{Kind: token.EOF, Value: "", Line: s.buf.LineCount()}
		}

		switch {
		case ch == '"':
			value, kind := s.scanString()
			return token.Token{Kind: kind, Value: value, Line: s.line}
		case isDigit(ch):
			value, kind := s.scanNumber(ch)
			return token.Token{Kind: kind, Value: value, Line: s.line}
		case isAlpha(ch):
			value, kind := s.scanIdent(ch)
			return token.Token{Kind: kind, Value: value, Line: s.line}
		case token.IsSymbol(string(ch)):
			value, kind, isComment := s.scanSymbol(ch)
			if isComment {
				s.advanceLine()
				continue
			}
			return token.Token{Kind: kind, Value: value, Line: s.line}
		default:
			s.sink.Warn(fmt.Sprintf("invalid character %q encountered", string(ch)), s.line)
			continue
		}
	}
}

func (s *Scanner) rawLine() string { return s.buf.RawLine(s.line) }

// advanceLine moves the cursor to the start of the next line. It returns
// false if that line doesn't exist (end of buffer reached).
func (s *Scanner) advanceLine() bool {
	s.line++
	s.col = 0
	return s.line <= s.buf.LineCount()
}

// nextWord skips whitespace and newlines and consumes the next significant
// character, or reports end of input.
func (s *Scanner) nextWord() (byte, bool) {
	for {
		raw := s.rawLine()
		if s.col >= len(raw) {
			if !s.advanceLine() {
				return 0, false
			}
			continue
		}
		ch := raw[s.col]
		switch {
		case ch == '\n':
			if !s.advanceLine() {
				return 0, false
			}
			continue
		case ch == ' ' || ch == '\t':
			s.col++
			continue
		}
		break
	}
	raw := s.rawLine()
	ch := raw[s.col]
	s.col++
	return ch, true
}

// nextChar peeks or consumes the character at the cursor without crossing a
// line boundary; it reports false at a newline or past the end of the line.
func (s *Scanner) nextChar(peek bool) (byte, bool) {
	raw := s.rawLine()
	if s.col >= len(raw) {
		return 0, false
	}
	ch := raw[s.col]
	if ch == '\n' {
		return 0, false
	}
	if !peek {
		s.col++
	}
	return ch, true
}

// scanString consumes a double-quoted string literal up to the closing
// quote on the same line, or to end-of-line with a warning if unterminated.
// Characters that aren't alphanumeric, space, or one of _,;:.' are replaced
// with a space and individually warned about.
func (s *Scanner) scanString() (string, token.Kind) {
	raw := s.rawLine()
	start := s.col
	hanging := false
	var stringEnd int

	if rel := strings.IndexByte(raw[start:], '"'); rel >= 0 {
		stringEnd = start + rel
	} else {
		hanging = true
		stringEnd = len(raw)
		if stringEnd > start && raw[stringEnd-1] == '\n' {
			stringEnd--
		}
		s.sink.Warn("no closing quotation in string", s.line)
	}

	value := []byte(raw[start:stringEnd])
	for i, ch := range value {
		if !isValidStringChar(ch) {
			value[i] = ' '
			s.sink.Warn(fmt.Sprintf("invalid character %q in string", string(ch)), s.line)
		}
	}

	s.col = stringEnd
	if !hanging {
		s.col++ // consume the closing quote
	}

	return string(value), token.Str
}

// scanNumber consumes digits and underscores, switching from int to float
// on the first '.'. Underscores are stripped; a trailing '.' becomes ".0".
func (s *Scanner) scanNumber(first byte) (string, token.Kind) {
	var sb strings.Builder
	sb.WriteByte(first)
	kind := token.Int
	isFloat := false

	for {
		ch, ok := s.nextChar(true)
		if !ok {
			break
		}
		if ch == '.' && !isFloat {
			isFloat = true
			kind = token.Float
		} else if !isDigit(ch) && ch != '_' {
			break
		}
		sb.WriteByte(ch)
		s.col++
	}

	value := strings.ReplaceAll(sb.String(), "_", "")
	if isFloat {
		parts := strings.Split(value, ".")
		if parts[len(parts)-1] == "" {
			value += "0"
		}
	}
	return value, kind
}

// scanIdent consumes letters, digits and underscores, reclassifying the
// lexeme as a keyword if it matches the closed keyword set.
func (s *Scanner) scanIdent(first byte) (string, token.Kind) {
	var sb strings.Builder
	sb.WriteByte(first)

	for {
		ch, ok := s.nextChar(true)
		if !ok {
			break
		}
		if !isAlnum(ch) && ch != '_' {
			break
		}
		sb.WriteByte(ch)
		s.col++
	}

	value := sb.String()
	if token.Keywords[value] {
		return value, token.Keyword
	}
	return value, token.Ident
}

// scanSymbol greedily matches the longest lexeme in the closed symbol set.
// "//" is not itself a symbol: it opens a line comment, reported via the
// isComment return.
func (s *Scanner) scanSymbol(first byte) (value string, kind token.Kind, isComment bool) {
	value = string(first)
	for {
		ch, ok := s.nextChar(true)
		if !ok {
			break
		}
		candidate := value + string(ch)
		if candidate == "//" {
			return "", token.Comment, true
		}
		if !token.IsSymbol(candidate) {
			break
		}
		value = candidate
		s.col++
	}
	return value, token.Symbol, false
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlnum(ch byte) bool { return isAlpha(ch) || isDigit(ch) }

func isValidStringChar(ch byte) bool {
	if isAlnum(ch) || ch == ' ' {
		return true
	}
	switch ch {
	case '_', ',', ';', ':', '.', '\'':
		return true
	}
	return false
}
