package lexer

import (
	"errors"
	"testing"

	"github.com/shoenig/test/must"
)

func readAll(t *testing.T, l *Lexer) []Chunk {
	t.Helper()
	var chunks []Chunk
	for {
		c, ok, err := l.ReadChunk()
		must.NoError(t, err)
		if !ok {
			return chunks
		}
		chunks = append(chunks, c)
	}
}

func TestLexer_Chunks(t *testing.T) {
	l := NewLexer("hello {{ name }}\n{% import \"a.html\" as a %}{# note #}\nbye")
	chunks := readAll(t, l)

	must.Eq(t, []Chunk{
		{Kind: TEXT, Body: "hello ", Line: 1},
		{Kind: OUTPUT, Body: " name ", Line: 1},
		{Kind: TEXT, Body: "\n", Line: 1},
		{Kind: TAG, Body: " import \"a.html\" as a ", Line: 2},
		{Kind: COMMENT, Body: " note ", Line: 2},
		{Kind: TEXT, Body: "\nbye", Line: 2},
	}, chunks)
}

func TestLexer_WhitespaceControl(t *testing.T) {
	l := NewLexer("a  \n{%- macro x -%}\n\n  b")
	chunks := readAll(t, l)

	must.Eq(t, []Chunk{
		{Kind: TEXT, Body: "a", Line: 1},
		{Kind: TAG, Body: " macro x ", Line: 2},
		{Kind: TEXT, Body: "b", Line: 4},
	}, chunks)
}

func TestLexer_Unclosed(t *testing.T) {
	l := NewLexer("one\ntwo {% import")
	_, _, err := l.ReadChunk()
	must.NoError(t, err)

	_, _, err = l.ReadChunk()
	var lexErr *Error
	must.True(t, errors.As(err, &lexErr))
	must.Eq(t, 2, lexErr.Line)
	must.Eq(t, "input:2: unclosed \"{%\"", err.Error())
}

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize(` import "./forms.html" as forms `, 3)
	must.NoError(t, err)
	must.Eq(t, []Token{
		{Kind: VAR, Match: "import", Line: 3},
		{Kind: STRING, Match: `"./forms.html"`, Line: 3},
		{Kind: VAR, Match: "as", Line: 3},
		{Kind: VAR, Match: "forms", Line: 3},
	}, tokens)
}

func TestTokenize_Expression(t *testing.T) {
	tokens, err := Tokenize("forms.input('text', 2.5) == x and not\n y | upper", 1)
	must.NoError(t, err)

	var kinds []Kind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	must.Eq(t, []Kind{
		VAR, PARENOPEN, STRING, COMMA, NUMBER, PARENCLOSE,
		COMPARATOR, VAR, LOGIC, NOT, VAR, FILTER, VAR,
	}, kinds)
	must.Eq(t, "forms.input", tokens[0].Match)
	must.Eq(t, 2, tokens[10].Line)
}

func TestTokenize_UnterminatedString(t *testing.T) {
	_, err := Tokenize(`import "oops`, 7)
	var lexErr *Error
	must.True(t, errors.As(err, &lexErr))
	must.Eq(t, 7, lexErr.Line)
}

func TestLexer_Filename(t *testing.T) {
	must.Eq(t, "input", NewLexer("x").Filename())

	var l Lexer
	l.Start("a.html", "x")
	must.Eq(t, "a.html", l.Filename())
}

func TestUnquote(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{`"a.html"`, "a.html"},
		{`'a.html'`, "a.html"},
		{`""`, ""},
		{`"it\"s.html"`, `it"s.html`},
		{`'it\'s.html'`, "it's.html"},
		{`'dir\\a.html'`, `dir\a.html`},
		{`"a\nb\tc\rd"`, "a\nb\tc\rd"},
		{`"\x"`, "x"},
	}
	for _, tc := range cases {
		got, err := Unquote(tc.in)
		must.NoError(t, err, must.Sprintf("input %s", tc.in))
		must.Eq(t, tc.out, got, must.Sprintf("input %s", tc.in))
	}

	for _, in := range []string{`a`, `"a'`, `"`, `"a\"`} {
		_, err := Unquote(in)
		must.Error(t, err, must.Sprintf("input %s", in))
	}
}
