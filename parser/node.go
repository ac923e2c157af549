package parser

import "github.com/xgrommx/swig/lexer"

// Node is an element of a parsed template.
type Node interface {
	Line() int
}

// TextNode is literal template text.
type TextNode struct {
	Text string
	line int
}

func (n *TextNode) Line() int { return n.line }

// OutputNode is a {{ … }} expression.
type OutputNode struct {
	Tokens []lexer.Token
	line   int
}

func (n *OutputNode) Line() int { return n.line }

// TagNode is a {% … %} directive. Content is only filled for block tags.
type TagNode struct {
	Name      string
	Directive Directive
	Content   []Node
	line      int
}

func (n *TagNode) Line() int { return n.line }

// Tag parses the arguments of one kind of directive.
type Tag interface {
	// Block reports whether the tag collects content up to a matching
	// {% end<name> %}.
	Block() bool

	Parse(ctx *Context, args []lexer.Token) (Directive, error)
}

// Directive is the parsed form of a tag, able to generate its own code.
type Directive interface {
	Compile(c Compiler, scope *Scope, content []Node) (string, error)
}

// MacroCode is the generated code of a macro: Func is a function expression
// and Safe reports whether its output bypasses auto-escaping.
type MacroCode struct {
	Func string
	Safe bool
}

// MacroDefinition is a directive that defines a named, parameterized macro.
type MacroDefinition interface {
	Directive

	MacroName() string
	MacroParams() []string
	CompileMacro(c Compiler, scope *Scope, content []Node) (MacroCode, error)
}

// Compiler generates code for a list of nodes.
type Compiler interface {
	Compile(nodes []Node, scope *Scope) (string, error)
}
