package tags

import (
	"strings"

	"github.com/xgrommx/swig/compiler"
	"github.com/xgrommx/swig/lexer"
	"github.com/xgrommx/swig/parser"
)

// Import is the {% import "file" as name %} tag. It exposes the top-level
// macros of another template under a local namespace instead of the
// template context.
type Import struct{}

func (Import) Block() bool { return false }

type importState int

const (
	importInit importState = iota
	importGotPath
	importGotAs
	importGotAlias
)

// names an alias must not take: the ones the generated code relies on and
// JavaScript reserved words, which cannot be declared with var.
var reservedNames = map[string]bool{
	"_ctx":    true,
	"_ext":    true,
	"_output": true,

	"arguments": true, "await": true, "break": true, "case": true,
	"catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "eval": true, "export": true,
	"extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true,
	"in": true, "instanceof": true, "interface": true, "let": true,
	"new": true, "null": true, "package": true, "private": true,
	"protected": true, "public": true, "return": true, "static": true,
	"super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true,
	"void": true, "while": true, "with": true, "yield": true,
}

func (Import) Parse(ctx *parser.Context, args []lexer.Token) (parser.Directive, error) {
	ip := &importParser{ctx: ctx}
	for _, tok := range args {
		if err := ip.next(tok); err != nil {
			return nil, err
		}
	}

	switch ip.state {
	case importInit:
		return nil, ctx.Errorf(ctx.Line, "expected a template path after \"import\"")
	case importGotPath:
		return nil, ctx.Errorf(ip.last.Line, "expected \"as\" after import path %s", ip.last.Match)
	case importGotAs:
		return nil, ctx.Errorf(ip.last.Line, "expected a namespace name after \"as\"")
	}

	ctx.Logger().Named("import").Debug("imported macros",
		"file", ctx.Filename, "path", ip.plan.Path, "alias", ip.plan.Alias(), "macros", len(ip.plan.Macros()))

	return &importDirective{
		plan:     ip.plan,
		filename: ctx.Filename,
		line:     ctx.Line,
	}, nil
}

// importParser is the state machine over the directive's arguments:
// STRING, then the variable "as", then the alias variable.
type importParser struct {
	ctx   *parser.Context
	state importState
	plan  *ImportPlan
	last  lexer.Token
}

func (ip *importParser) next(tok lexer.Token) error {
	ip.last = tok
	switch tok.Kind {
	case lexer.STRING:
		if ip.state != importInit {
			return ip.ctx.Errorf(tok.Line, "unexpected string %s", tok.Match)
		}
		path, err := lexer.Unquote(tok.Match)
		if err != nil {
			return ip.ctx.Errorf(tok.Line, "%v", err)
		}
		plan, err := ip.load(path)
		if err != nil {
			return err
		}
		ip.plan = plan
		ip.state = importGotPath
		return nil

	case lexer.VAR:
		switch ip.state {
		case importGotPath:
			if tok.Match != "as" {
				return ip.ctx.Errorf(tok.Line, "unexpected variable %q", tok.Match)
			}
			ip.state = importGotAs
			return nil

		case importGotAs:
			alias := tok.Match
			if strings.Contains(alias, ".") || reservedNames[alias] {
				return ip.ctx.Errorf(tok.Line, "invalid namespace %q", alias)
			}
			if !ip.ctx.Symbols.DeclareNamespace(alias) {
				return ip.ctx.Errorf(tok.Line, "namespace %q is already imported", alias)
			}
			ip.plan.Resolve(alias)
			for _, name := range ip.plan.Macros() {
				ip.ctx.Symbols.Declare(alias + "." + name)
			}
			ip.state = importGotAlias
			return nil
		}
		return ip.ctx.Errorf(tok.Line, "unexpected variable %q", tok.Match)
	}

	return ip.ctx.Errorf(tok.Line, "unexpected %s %q", lexer.KindName(tok.Kind), tok.Match)
}

// load parses the imported file and collects bindings for its top-level
// macros. Nothing else in the file contributes, including its own imports.
func (ip *importParser) load(path string) (*ImportPlan, error) {
	tpl, err := ip.ctx.ParseFile(path)
	if err != nil {
		return nil, err
	}

	plan := &ImportPlan{Path: path}
	scope := parser.NewScope(tpl.Symbols)
	for _, node := range tpl.Nodes {
		tn, ok := node.(*parser.TagNode)
		if !ok {
			continue
		}
		def, ok := tn.Directive.(parser.MacroDefinition)
		if !ok {
			continue
		}
		code, err := def.CompileMacro(ip.ctx.Compiler(), scope, tn.Content)
		if err != nil {
			return nil, parser.WithFilename(err, tpl.Filename)
		}
		plan.addMacro(def.MacroName(), code.Func, code.Safe)
	}
	return plan, nil
}

type importDirective struct {
	plan     *ImportPlan
	filename string
	line     int
}

// Compile declares the namespace and assigns every binding inside an
// immediately invoked function, so the _output it uses stays local.
func (d *importDirective) Compile(_ parser.Compiler, scope *parser.Scope, content []parser.Node) (string, error) {
	if len(content) > 0 {
		return "", &parser.Error{Filename: d.filename, Line: d.line, Msg: "import does not take content"}
	}

	alias := d.plan.Alias()
	scope.Declare(alias)

	var b strings.Builder
	b.WriteString("var " + alias + " = {};\n")
	b.WriteString("(function () {\n")
	b.WriteString("  var _output = \"\";\n")
	for _, stmt := range d.plan.Statements() {
		b.WriteString(compiler.Indent(stmt+"\n", "  "))
	}
	b.WriteString("}());\n")
	return b.String(), nil
}

// Plan returns the binding plan of the directive.
func (d *importDirective) Plan() *ImportPlan {
	return d.plan
}
