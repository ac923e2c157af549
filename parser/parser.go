// Package parser turns template source into a tree of nodes. Directives are
// pluggable through the Tag interface; tags may re-enter the parser to read
// other files through their Context.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edwingeng/deque"
	"github.com/hashicorp/go-hclog"

	"github.com/xgrommx/swig/lexer"
	"github.com/xgrommx/swig/loader"
)

// ErrCircularImport is returned when a file is parsed again while it is
// still being parsed further up the stack.
var ErrCircularImport = errors.New("circular import")

// Template is a parsed template file.
type Template struct {
	Filename string
	Nodes    []Node

	// Symbols holds the macro names tags registered while parsing this
	// template. It belongs to this template only.
	Symbols *SymbolTable

	// Source is the file the template was read from, nil for templates
	// parsed from a string.
	Source *loader.Source

	// Deps lists the files read on behalf of this template, depth first.
	Deps []*loader.Source
}

type Options struct {
	Loader   loader.Loader
	Tags     map[string]Tag
	Compiler Compiler
	Logger   hclog.Logger
}

// Parser parses one compilation: a top-level template and every file its
// directives pull in. It is not safe for concurrent use.
type Parser struct {
	loader   loader.Loader
	tags     map[string]Tag
	compiler Compiler
	logger   hclog.Logger

	// files currently being parsed, outermost first.
	stack deque.Deque
}

func New(opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	tags := opts.Tags
	if tags == nil {
		tags = map[string]Tag{}
	}
	return &Parser{
		loader:   opts.Loader,
		tags:     tags,
		compiler: opts.Compiler,
		logger:   logger.Named("parser"),
		stack:    deque.NewDeque(),
	}
}

// ParseFile resolves path relative to from, loads and parses it. Loader
// errors are returned unchanged.
func (p *Parser) ParseFile(path, from string) (*Template, error) {
	if p.loader == nil {
		return nil, fmt.Errorf("no loader configured to read %q", path)
	}
	resolved := p.loader.Resolve(path, from)
	src, err := p.loader.Load(resolved)
	if err != nil {
		return nil, err
	}

	tpl, err := p.parse(resolved, src.Text)
	if err != nil {
		return nil, err
	}
	tpl.Source = src
	return tpl, nil
}

// Parse parses a template given its contents as a string.
func (p *Parser) Parse(filename, input string) (*Template, error) {
	return p.parse(filename, input)
}

func (p *Parser) parse(filename, input string) (*Template, error) {
	if p.active(filename) {
		return nil, fmt.Errorf("%w of %q", ErrCircularImport, filename)
	}
	p.stack.PushBack(filename)
	defer p.stack.PopBack()

	p.logger.Debug("parsing template", "filename", filename, "depth", p.stack.Len())

	tpl := &Template{
		Filename: filename,
		Symbols:  NewSymbolTable(),
	}

	var lex lexer.Lexer
	lex.Start(filename, input)

	var open []*TagNode
	add := func(n Node) {
		if len(open) > 0 {
			top := open[len(open)-1]
			top.Content = append(top.Content, n)
			return
		}
		tpl.Nodes = append(tpl.Nodes, n)
	}

	for {
		chunk, ok, err := lex.ReadChunk()
		if err != nil {
			return nil, fromLexer(err, lex.Filename())
		}
		if !ok {
			break
		}

		switch chunk.Kind {
		case lexer.TEXT:
			add(&TextNode{Text: chunk.Body, line: chunk.Line})

		case lexer.COMMENT:

		case lexer.OUTPUT:
			tokens, err := lexer.Tokenize(chunk.Body, chunk.Line)
			if err != nil {
				return nil, fromLexer(err, lex.Filename())
			}
			if len(tokens) == 0 {
				return nil, &Error{Filename: filename, Line: chunk.Line, Msg: "empty variable"}
			}
			add(&OutputNode{Tokens: tokens, line: chunk.Line})

		case lexer.TAG:
			tokens, err := lexer.Tokenize(chunk.Body, chunk.Line)
			if err != nil {
				return nil, fromLexer(err, lex.Filename())
			}
			if len(tokens) == 0 || tokens[0].Kind != lexer.VAR {
				return nil, &Error{Filename: filename, Line: chunk.Line, Msg: "expected a tag name"}
			}
			name := tokens[0].Match

			if strings.HasPrefix(name, "end") {
				if len(open) == 0 || "end"+open[len(open)-1].Name != name {
					return nil, &Error{Filename: filename, Line: chunk.Line,
						Msg: fmt.Sprintf("unexpected end of tag %q", strings.TrimPrefix(name, "end"))}
				}
				open = open[:len(open)-1]
				continue
			}

			tag, ok := p.tags[name]
			if !ok {
				msg := fmt.Sprintf("unexpected tag %q", name)
				if hint := p.suggestTag(name); hint != "" {
					msg += fmt.Sprintf(", did you mean %q?", hint)
				}
				return nil, &Error{Filename: filename, Line: chunk.Line, Msg: msg}
			}

			ctx := &Context{
				Filename: filename,
				Line:     chunk.Line,
				Symbols:  tpl.Symbols,
				parser:   p,
				template: tpl,
			}
			dir, err := tag.Parse(ctx, tokens[1:])
			if err != nil {
				return nil, err
			}

			node := &TagNode{Name: name, Directive: dir, line: chunk.Line}
			add(node)
			if tag.Block() {
				open = append(open, node)
			}
		}
	}

	if len(open) > 0 {
		top := open[len(open)-1]
		return nil, &Error{Filename: filename, Line: top.line,
			Msg: fmt.Sprintf("missing end tag for %q", top.Name)}
	}
	return tpl, nil
}

// active reports whether filename is on the stack of files being parsed.
func (p *Parser) active(filename string) bool {
	if filename == "" {
		return false
	}
	found := false
	p.stack.Range(func(_ int, v deque.Elem) bool {
		if v.(string) == filename {
			found = true
			return false
		}
		return true
	})
	return found
}
