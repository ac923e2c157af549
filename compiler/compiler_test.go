package compiler

import (
	"errors"
	"testing"

	"github.com/shoenig/test/must"

	"github.com/xgrommx/swig/lexer"
	"github.com/xgrommx/swig/parser"
)

func parse(t *testing.T, src string) *parser.Template {
	t.Helper()
	tpl, err := parser.New(parser.Options{}).Parse("/t.html", src)
	must.NoError(t, err)
	return tpl
}

func TestCompileTemplate(t *testing.T) {
	tpl := parse(t, "Hello, {{ user.name }}!\n")
	out, err := New(nil).CompileTemplate(tpl)
	must.NoError(t, err)
	must.Eq(t, `var _output = "";
_output += "Hello, ";
_output += _ext._e(_ctx.user.name);
_output += "!\n";
return _output;
`, out)
}

func TestCompile_Expressions(t *testing.T) {
	cases := []struct {
		src  string
		expr string
	}{
		{`{{ a + 1 }}`, `_output += _ext._e(_ctx.a + 1);`},
		{`{{ a and not b }}`, `_output += _ext._e(_ctx.a && !_ctx.b);`},
		{`{{ a || b }}`, `_output += _ext._e(_ctx.a || _ctx.b);`},
		{`{{ a === "x" }}`, `_output += _ext._e(_ctx.a === "x");`},
		{`{{ list[0] }}`, `_output += _ext._e(_ctx.list[0]);`},
		{`{{ f(1, true) }}`, `_output += _ext._e(_ctx.f(1, true));`},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			tpl := parse(t, tc.src)
			out, err := New(nil).Compile(tpl.Nodes, parser.NewScope(tpl.Symbols))
			must.NoError(t, err)
			must.Eq(t, tc.expr+"\n", out)
		})
	}
}

func TestCompile_LocalsAndMacros(t *testing.T) {
	symbols := parser.NewSymbolTable()
	symbols.Declare("ns.m")
	scope := parser.NewScope(symbols)
	scope.Declare("ns")
	scope.Declare("x")

	tpl := parse(t, `{{ x }}{{ ns.m(x) }}{{ ns.m }}{{ y }}`)
	out, err := New(nil).Compile(tpl.Nodes, scope)
	must.NoError(t, err)
	must.Eq(t, "_output += _ext._e(x);\n"+
		"_output += ns.m(x);\n"+
		"_output += _ext._e(ns.m);\n"+
		"_output += _ext._e(_ctx.y);\n", out)
}

func TestCompile_FilterRejected(t *testing.T) {
	tpl := parse(t, "\n{{ a | upper }}")
	_, err := New(nil).CompileTemplate(tpl)

	var perr *parser.Error
	must.True(t, errors.As(err, &perr))
	must.Eq(t, "/t.html", perr.Filename)
	must.Eq(t, 2, perr.Line)
	must.Eq(t, "filters are not supported", perr.Msg)
}

func TestCompile_UnknownToken(t *testing.T) {
	out := &parser.OutputNode{Tokens: []lexer.Token{{Kind: lexer.UNKNOWN, Match: "@", Line: 4}}}
	_, err := New(nil).Compile([]parser.Node{out}, parser.NewScope(nil))
	must.EqError(t, err, `line 4: unexpected token "@"`)
}

func TestQuote(t *testing.T) {
	must.Eq(t, `"plain"`, Quote("plain"))
	must.Eq(t, `"<a href=\"x\">&amp;</a>"`, Quote(`<a href="x">&amp;</a>`))
	must.Eq(t, `"line\nbreak\ttab\\"`, Quote("line\nbreak\ttab\\"))
	must.Eq(t, `"\u2028"`, Quote("\u2028"))
}

func TestIndent(t *testing.T) {
	must.Eq(t, "  a\n\n  b\n", Indent("a\n\nb\n", "  "))
	must.Eq(t, "  a", Indent("a", "  "))
	must.Eq(t, "", Indent("", "  "))
}
