package tags

import (
	"fmt"
	"strings"

	"github.com/xgrommx/swig/compiler"
	"github.com/xgrommx/swig/lexer"
	"github.com/xgrommx/swig/parser"
)

// Macro is the {% macro name(a, b) %}…{% endmacro %} tag.
type Macro struct{}

func (Macro) Block() bool { return true }

func (Macro) Parse(ctx *parser.Context, args []lexer.Token) (parser.Directive, error) {
	if len(args) == 0 {
		return nil, ctx.Errorf(ctx.Line, "expected a macro name")
	}
	name := args[0]
	if name.Kind != lexer.VAR || strings.Contains(name.Match, ".") {
		return nil, ctx.Errorf(name.Line, "invalid macro name %q", name.Match)
	}

	m := &macroDirective{name: name.Match}
	rest := args[1:]
	if len(rest) == 0 {
		return m, nil
	}

	if rest[0].Kind != lexer.PARENOPEN {
		return nil, ctx.Errorf(rest[0].Line, "unexpected %s %q", lexer.KindName(rest[0].Kind), rest[0].Match)
	}
	expectParam := true
	for i, tok := range rest[1:] {
		switch {
		case tok.Kind == lexer.PARENCLOSE && (!expectParam || len(m.params) == 0):
			if extra := rest[i+2:]; len(extra) > 0 {
				return nil, ctx.Errorf(extra[0].Line, "unexpected %s %q", lexer.KindName(extra[0].Kind), extra[0].Match)
			}
			return m, nil
		case tok.Kind == lexer.VAR && expectParam && !strings.Contains(tok.Match, "."):
			m.params = append(m.params, tok.Match)
			expectParam = false
		case tok.Kind == lexer.COMMA && !expectParam:
			expectParam = true
		default:
			return nil, ctx.Errorf(tok.Line, "unexpected %s %q", lexer.KindName(tok.Kind), tok.Match)
		}
	}
	return nil, ctx.Errorf(rest[len(rest)-1].Line, "missing ')' after parameters of macro %q", m.name)
}

type macroDirective struct {
	name   string
	params []string
}

var _ parser.MacroDefinition = (*macroDirective)(nil)

func (m *macroDirective) MacroName() string { return m.name }

func (m *macroDirective) MacroParams() []string { return m.params }

// CompileMacro compiles the body with the parameters bound as locals. Macro
// output is always marked safe.
func (m *macroDirective) CompileMacro(c parser.Compiler, scope *parser.Scope, content []parser.Node) (parser.MacroCode, error) {
	inner := scope.Child()
	for _, p := range m.params {
		inner.Declare(p)
	}
	body, err := c.Compile(content, inner)
	if err != nil {
		return parser.MacroCode{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "function (%s) {\n", strings.Join(m.params, ", "))
	b.WriteString("  var _output = \"\";\n")
	b.WriteString(compiler.Indent(body, "  "))
	b.WriteString("  return _output;\n}")
	return parser.MacroCode{Func: b.String(), Safe: true}, nil
}

// Compile defines the macro on the template context of its own template.
func (m *macroDirective) Compile(c parser.Compiler, scope *parser.Scope, content []parser.Node) (string, error) {
	code, err := m.CompileMacro(c, scope, content)
	if err != nil {
		return "", err
	}
	out := fmt.Sprintf("_ctx.%s = %s;\n", m.name, code.Func)
	if code.Safe {
		out += fmt.Sprintf("_ctx.%s.safe = true;\n", m.name)
	}
	return out, nil
}
