package parser

import (
	"errors"
	"testing"

	"github.com/shoenig/test/must"

	"github.com/xgrommx/swig/lexer"
	"github.com/xgrommx/swig/loader"
)

// pullTag reads the file named by its string argument and declares its
// argument as a symbol.
type pullTag struct{}

func (pullTag) Block() bool { return false }

func (pullTag) Parse(ctx *Context, args []lexer.Token) (Directive, error) {
	if len(args) != 1 || args[0].Kind != lexer.STRING {
		return nil, ctx.Errorf(ctx.Line, "pull takes one path")
	}
	path := args[0].Match[1 : len(args[0].Match)-1]
	if _, err := ctx.ParseFile(path); err != nil {
		return nil, err
	}
	ctx.Symbols.Declare("pulled." + path)
	return nopDirective{}, nil
}

type blockTag struct{}

func (blockTag) Block() bool { return true }

func (blockTag) Parse(*Context, []lexer.Token) (Directive, error) { return nopDirective{}, nil }

type nopDirective struct{}

func (nopDirective) Compile(Compiler, *Scope, []Node) (string, error) { return "", nil }

func newTestParser(files map[string]string) *Parser {
	return New(Options{
		Loader: loader.NewMemory(files, ""),
		Tags: map[string]Tag{
			"pull":  pullTag{},
			"block": blockTag{},
		},
	})
}

func asError(t *testing.T, err error) *Error {
	t.Helper()
	var perr *Error
	must.True(t, errors.As(err, &perr), must.Sprintf("expected *Error, got %v", err))
	return perr
}

func TestParser_Nodes(t *testing.T) {
	p := newTestParser(nil)
	tpl, err := p.Parse("/t.html", "hi {{ name }}{# note\n #}{% block %}in{% endblock %}")
	must.NoError(t, err)
	must.SliceLen(t, 3, tpl.Nodes)

	text, ok := tpl.Nodes[0].(*TextNode)
	must.True(t, ok)
	must.Eq(t, "hi ", text.Text)

	out, ok := tpl.Nodes[1].(*OutputNode)
	must.True(t, ok)
	must.Eq(t, "name", out.Tokens[0].Match)

	// the comment is dropped but its lines still count
	tag, ok := tpl.Nodes[2].(*TagNode)
	must.True(t, ok)
	must.Eq(t, "block", tag.Name)
	must.Eq(t, 2, tag.Line())
	must.SliceLen(t, 1, tag.Content)
}

func TestParser_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"unknown tag", "\n{% blok %}", 2, `unexpected tag "blok", did you mean "block"?`},
		{"unknown tag far", "{% zzzzzzzz %}", 1, `unexpected tag "zzzzzzzz"`},
		{"stray end", "{% endblock %}", 1, `unexpected end of tag "block"`},
		{"mismatched end", "{% block %}{% endpull %}", 1, `unexpected end of tag "pull"`},
		{"missing end", "\n\n{% block %}text", 3, `missing end tag for "block"`},
		{"empty output", "{{ }}", 1, "empty variable"},
		{"no tag name", `{% "x" %}`, 1, "expected a tag name"},
		{"unclosed", "a\n{{ name", 2, `unclosed "{{"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestParser(nil).Parse("/t.html", tc.src)
			perr := asError(t, err)
			must.Eq(t, "/t.html", perr.Filename)
			must.Eq(t, tc.line, perr.Line)
			must.Eq(t, tc.msg, perr.Msg)
		})
	}
}

func TestParser_ParseFileTracksDeps(t *testing.T) {
	p := newTestParser(map[string]string{
		"index.html":     `{% pull "a.html" %}{% pull "dir/b.html" %}`,
		"a.html":         "a",
		"dir/b.html":     `{% pull "c.html" %}`,
		"dir/c.html":     "c",
		"unrelated.html": "",
	})
	tpl, err := p.ParseFile("index.html", "")
	must.NoError(t, err)
	must.Eq(t, "/index.html", tpl.Filename)
	must.NotNil(t, tpl.Source)

	var deps []string
	for _, d := range tpl.Deps {
		deps = append(deps, d.Path)
	}
	must.Eq(t, []string{"/a.html", "/dir/b.html", "/dir/c.html"}, deps)

	// symbols declared while reading other files stay with their template
	must.Eq(t, []string{"pulled.a.html", "pulled.dir/b.html"}, tpl.Symbols.Names())
}

func TestParser_CircularImport(t *testing.T) {
	p := newTestParser(map[string]string{
		"a.html": `{% pull "b.html" %}`,
		"b.html": "\n\n" + `{% pull "a.html" %}`,
	})
	_, err := p.ParseFile("a.html", "")
	perr := asError(t, err)
	must.Eq(t, "/b.html", perr.Filename)
	must.Eq(t, 3, perr.Line)
	must.Eq(t, `circular import of "/a.html"`, perr.Msg)
	must.ErrorIs(t, err, ErrCircularImport)

	// the stack unwinds on error, so the parser is reusable
	_, err = p.ParseFile("b.html", "")
	must.ErrorContains(t, err, "circular import")
	must.Eq(t, 0, p.stack.Len())
}

func TestParser_SelfImport(t *testing.T) {
	p := newTestParser(map[string]string{
		"self.html": `{% pull "self.html" %}`,
	})
	_, err := p.ParseFile("self.html", "")
	perr := asError(t, err)
	must.Eq(t, "/self.html", perr.Filename)
	must.Eq(t, `circular import of "/self.html"`, perr.Msg)
	must.ErrorIs(t, err, ErrCircularImport)
}

func TestParser_LoaderErrorUnchanged(t *testing.T) {
	p := newTestParser(map[string]string{
		"index.html": `{% pull "nope.html" %}`,
	})
	_, err := p.ParseFile("index.html", "")
	must.True(t, errors.Is(err, loader.ErrNotFound))

	var perr *Error
	must.False(t, errors.As(err, &perr))
}

func TestParser_NoLoader(t *testing.T) {
	p := New(Options{})
	_, err := p.ParseFile("x.html", "")
	must.ErrorContains(t, err, "no loader")
}

func TestSymbolTable(t *testing.T) {
	st := NewSymbolTable()
	must.True(t, st.Declare("forms.input"))
	must.True(t, st.Declare("forms.label"))
	must.False(t, st.Declare("forms.input"))
	must.Eq(t, 2, st.Len())
	must.True(t, st.Has("forms.label"))
	must.False(t, st.Has("forms"))

	names := st.Names()
	names[0] = "changed"
	must.Eq(t, []string{"forms.input", "forms.label"}, st.Names())
}

func TestSymbolTable_DeclareNamespace(t *testing.T) {
	st := NewSymbolTable()
	must.True(t, st.DeclareNamespace("forms"))
	must.True(t, st.DeclareNamespace("empty"))
	must.False(t, st.DeclareNamespace("forms"))
	must.False(t, st.DeclareNamespace("empty"))

	// namespaces are tracked apart from macro names
	must.Eq(t, 0, st.Len())
}

func TestScope(t *testing.T) {
	st := NewSymbolTable()
	st.Declare("ns.m")

	root := NewScope(st)
	root.Declare("ns")
	child := root.Child()
	child.Declare("arg")

	must.True(t, child.IsLocal("ns.anything"))
	must.True(t, child.IsLocal("arg"))
	must.False(t, root.IsLocal("arg"))
	must.False(t, child.IsLocal("nsx"))
	must.True(t, child.IsMacro("ns.m"))
	must.False(t, child.IsMacro("ns"))
	must.True(t, child.Symbols() == st)
}

func TestError_String(t *testing.T) {
	must.Eq(t, "a.html:3: boom", (&Error{Filename: "a.html", Line: 3, Msg: "boom"}).Error())
	must.Eq(t, "line 3: boom", (&Error{Line: 3, Msg: "boom"}).Error())

	err := WithFilename(&Error{Line: 1, Msg: "x"}, "b.html")
	must.EqError(t, err, "b.html:1: x")

	err = WithFilename(&Error{Filename: "a.html", Line: 1, Msg: "x"}, "b.html")
	must.EqError(t, err, "a.html:1: x")
}

func TestError_Unwrap(t *testing.T) {
	err := error(&Error{Filename: "a.html", Line: 2, Msg: "not found", Err: loader.ErrNotFound})
	must.ErrorIs(t, err, loader.ErrNotFound)
	must.EqError(t, err, "a.html:2: not found")
	must.Nil(t, (&Error{Line: 1, Msg: "x"}).Unwrap())
}
