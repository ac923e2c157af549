// Package lexer splits template source into chunks (text, output, tags and
// comments) and tokenizes the body of output and tag chunks.
package lexer

import (
	"fmt"
	"strings"
)

// ChunkKind is the kind of a top-level piece of template source.
type ChunkKind int

const (
	TEXT ChunkKind = iota
	OUTPUT
	TAG
	COMMENT
)

// Chunk is a top-level piece of template source. Body holds the text between
// the delimiters without whitespace-control markers; for TEXT chunks it is
// the literal text.
type Chunk struct {
	Kind ChunkKind
	Body string
	Line int
}

type delims struct {
	open, close string
	kind        ChunkKind
}

var allDelims = []delims{
	{"{{", "}}", OUTPUT},
	{"{%", "%}", TAG},
	{"{#", "#}", COMMENT},
}

// Error is a lexing error at a 1-based source line.
type Error struct {
	Filename string
	Line     int
	Msg      string
}

func (e *Error) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Filename, e.Line, e.Msg)
}

// Lexer holds the state of a scan over one template.
type Lexer struct {
	filename string
	input    string
	ofs      int
	line     int

	// set after a "-%}" style close; the next text chunk loses its leading
	// whitespace.
	stripNext bool
}

// NewLexer is a helper ctor useful for tests.
func NewLexer(input string) *Lexer {
	l := &Lexer{}
	l.Start("input", input)
	return l
}

// Start parsing some input.
func (l *Lexer) Start(filename, input string) {
	l.filename = filename
	l.input = input
	l.ofs = 0
	l.line = 1
	l.stripNext = false
}

// Filename returns the name passed to Start.
func (l *Lexer) Filename() string {
	return l.filename
}

// ReadChunk returns the next chunk. ok is false once the input is exhausted.
func (l *Lexer) ReadChunk() (chunk Chunk, ok bool, err error) {
	for l.ofs < len(l.input) {
		rest := l.input[l.ofs:]
		next, d := nextOpen(rest)

		if next != 0 {
			raw := rest
			if next > 0 {
				raw = rest[:next]
			}
			text := raw
			if l.stripNext {
				text = strings.TrimLeft(text, " \t\r\n")
			}
			if next > 0 && strings.HasPrefix(rest[next+len(d.open):], "-") {
				text = strings.TrimRight(text, " \t\r\n")
			}
			line := l.line + leadingLines(raw, text, l.stripNext)
			l.advance(len(raw))
			l.stripNext = false
			if text == "" {
				continue
			}
			return Chunk{Kind: TEXT, Body: text, Line: line}, true, nil
		}

		start := l.line
		end := strings.Index(rest[len(d.open):], d.close)
		if end < 0 {
			return Chunk{}, false, l.Error(start, fmt.Sprintf("unclosed %q", d.open))
		}
		body := rest[len(d.open) : len(d.open)+end]
		l.advance(len(d.open) + end + len(d.close))

		body = strings.TrimPrefix(body, "-")
		l.stripNext = strings.HasSuffix(body, "-")
		body = strings.TrimSuffix(body, "-")

		// the body keeps its leading newlines out of Line; Tokenize counts
		// from the opening delimiter.
		return Chunk{Kind: d.kind, Body: body, Line: start}, true, nil
	}
	return Chunk{}, false, nil
}

// Error builds a positional error for the current file.
func (l *Lexer) Error(line int, msg string) error {
	return &Error{Filename: l.filename, Line: line, Msg: msg}
}

func (l *Lexer) advance(n int) {
	l.line += strings.Count(l.input[l.ofs:l.ofs+n], "\n")
	l.ofs += n
}

// nextOpen finds the first opening delimiter in s. It returns -1 when there
// is none.
func nextOpen(s string) (int, delims) {
	best := -1
	var found delims
	for _, d := range allDelims {
		i := strings.Index(s, d.open)
		if i >= 0 && (best < 0 || i < best) {
			best = i
			found = d
		}
	}
	return best, found
}

// leadingLines counts the newlines stripped from the front of raw.
func leadingLines(raw, text string, stripped bool) int {
	if !stripped || text == "" {
		return 0
	}
	cut := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
	return strings.Count(raw[:cut], "\n")
}
