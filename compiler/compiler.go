// Package compiler generates JavaScript source for parsed templates. The
// generated code expects _ctx (template context), _ext (runtime helpers) and
// _output (the output buffer) in scope.
package compiler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/xgrommx/swig/lexer"
	"github.com/xgrommx/swig/parser"
)

// Compiler implements parser.Compiler.
type Compiler struct {
	logger hclog.Logger
}

var _ parser.Compiler = (*Compiler)(nil)

func New(logger hclog.Logger) *Compiler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Compiler{logger: logger.Named("compiler")}
}

// CompileTemplate returns the body of the render function for tpl.
func (c *Compiler) CompileTemplate(tpl *parser.Template) (string, error) {
	body, err := c.Compile(tpl.Nodes, parser.NewScope(tpl.Symbols))
	if err != nil {
		return "", parser.WithFilename(err, tpl.Filename)
	}
	c.logger.Trace("compiled template", "filename", tpl.Filename, "bytes", len(body))
	return "var _output = \"\";\n" + body + "return _output;\n", nil
}

func (c *Compiler) Compile(nodes []parser.Node, scope *parser.Scope) (string, error) {
	var b strings.Builder
	for _, node := range nodes {
		switch n := node.(type) {
		case *parser.TextNode:
			b.WriteString("_output += ")
			b.WriteString(Quote(n.Text))
			b.WriteString(";\n")

		case *parser.OutputNode:
			expr, safe, err := c.expression(n, scope)
			if err != nil {
				return "", err
			}
			if safe {
				fmt.Fprintf(&b, "_output += %s;\n", expr)
			} else {
				fmt.Fprintf(&b, "_output += _ext._e(%s);\n", expr)
			}

		case *parser.TagNode:
			out, err := n.Directive.Compile(c, scope, n.Content)
			if err != nil {
				return "", err
			}
			b.WriteString(out)

		default:
			return "", &parser.Error{Line: node.Line(), Msg: fmt.Sprintf("cannot compile %T", node)}
		}
	}
	return b.String(), nil
}

// expression compiles the tokens of an output node. safe is true when the
// expression is a call of a registered macro, whose output is not escaped.
func (c *Compiler) expression(n *parser.OutputNode, scope *parser.Scope) (string, bool, error) {
	tokens := n.Tokens
	safe := len(tokens) > 1 &&
		tokens[0].Kind == lexer.VAR && scope.IsMacro(tokens[0].Match) &&
		tokens[1].Kind == lexer.PARENOPEN

	var b strings.Builder
	for _, tok := range tokens {
		switch tok.Kind {
		case lexer.VAR:
			b.WriteString(resolveVar(tok.Match, scope))
		case lexer.STRING, lexer.NUMBER, lexer.BOOL,
			lexer.PARENOPEN, lexer.PARENCLOSE, lexer.BRACKETOPEN, lexer.BRACKETCLOSE:
			b.WriteString(tok.Match)
		case lexer.COMMA:
			b.WriteString(", ")
		case lexer.COLON:
			b.WriteString(": ")
		case lexer.OPERATOR, lexer.COMPARATOR:
			fmt.Fprintf(&b, " %s ", tok.Match)
		case lexer.LOGIC:
			fmt.Fprintf(&b, " %s ", logicOps[tok.Match])
		case lexer.NOT:
			b.WriteString("!")
		case lexer.FILTER:
			return "", false, &parser.Error{Line: tok.Line, Msg: "filters are not supported"}
		default:
			return "", false, &parser.Error{Line: tok.Line,
				Msg: fmt.Sprintf("unexpected %s %q", lexer.KindName(tok.Kind), tok.Match)}
		}
	}
	return b.String(), safe, nil
}

var logicOps = map[string]string{
	"and": "&&",
	"or":  "||",
	"&&":  "&&",
	"||":  "||",
}

// resolveVar maps a template variable to the JavaScript expression reading
// it: registered macros and locals as written, everything else from _ctx.
func resolveVar(name string, scope *parser.Scope) string {
	if scope.IsMacro(name) || scope.IsLocal(name) {
		return name
	}
	return "_ctx." + name
}

// Quote returns s as a JavaScript string literal.
func Quote(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		// strings always encode
		panic(err)
	}
	// encoding/json also escapes U+2028 and U+2029, which end lines in
	// older JavaScript engines.
	return strings.TrimSuffix(b.String(), "\n")
}

// Indent prefixes every non-empty line of s with prefix.
func Indent(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line != "" && line != "\n" {
			b.WriteString(prefix)
		}
		b.WriteString(line)
	}
	return b.String()
}
