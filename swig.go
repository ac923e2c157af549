// Package swig compiles templates into JavaScript render functions. It wires
// the lexer, parser, built-in tags and code generator together and reports
// which files every template depends on.
package swig

import (
	"time"

	"github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
	"github.com/zeebo/blake3"

	"github.com/xgrommx/swig/compiler"
	"github.com/xgrommx/swig/loader"
	"github.com/xgrommx/swig/parser"
	"github.com/xgrommx/swig/tags"
)

type Options struct {
	// Loader reads template files. Defaults to the file system relative to
	// the working directory.
	Loader loader.Loader

	Logger hclog.Logger

	// Tags are registered in addition to the built-in tags, replacing
	// built-ins of the same name.
	Tags map[string]parser.Tag
}

// Dependency is a file read while compiling a template.
type Dependency struct {
	Path string
	Hash [32]byte
}

// Result is a compiled template.
type Result struct {
	Filename string

	// Code is the body of the render function.
	Code string

	// Hash is the blake3 sum of Code.
	Hash [32]byte

	// Source is the hash of the template itself; zero for string templates.
	Source [32]byte

	// Deps are the files imported while compiling, depth first.
	Deps []Dependency

	// Symbols are the namespaced macro names registered by the template,
	// such as "forms.input".
	Symbols []string
}

// Engine compiles templates. Each compilation gets its own parser and
// symbol table; only file text is shared through the loader.
type Engine struct {
	loader   loader.Loader
	logger   hclog.Logger
	tags     map[string]parser.Tag
	compiler *compiler.Compiler
}

func New(opts *Options) (*Engine, error) {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	l := opts.Loader
	if l == nil {
		fs, err := loader.NewFileSystem(".", 0, logger)
		if err != nil {
			return nil, err
		}
		l = fs
	}

	t := tags.Defaults()
	for name, tag := range opts.Tags {
		t[name] = tag
	}

	return &Engine{
		loader:   l,
		logger:   logger,
		tags:     t,
		compiler: compiler.New(logger),
	}, nil
}

func (e *Engine) newParser() *parser.Parser {
	return parser.New(parser.Options{
		Loader:   e.loader,
		Tags:     e.tags,
		Compiler: e.compiler,
		Logger:   e.logger,
	})
}

// CompileFile compiles the template at path.
func (e *Engine) CompileFile(path string) (*Result, error) {
	defer metrics.MeasureSince([]string{"swig", "compile_file"}, time.Now())

	tpl, err := e.newParser().ParseFile(path, "")
	if err != nil {
		metrics.IncrCounter([]string{"swig", "errors"}, 1)
		return nil, err
	}
	return e.finish(tpl)
}

// CompileString compiles src. name is used in error messages and as the
// base for relative imports.
func (e *Engine) CompileString(name, src string) (*Result, error) {
	defer metrics.MeasureSince([]string{"swig", "compile_string"}, time.Now())

	tpl, err := e.newParser().Parse(name, src)
	if err != nil {
		metrics.IncrCounter([]string{"swig", "errors"}, 1)
		return nil, err
	}
	return e.finish(tpl)
}

func (e *Engine) finish(tpl *parser.Template) (*Result, error) {
	start := time.Now()
	code, err := e.compiler.CompileTemplate(tpl)
	if err != nil {
		metrics.IncrCounter([]string{"swig", "errors"}, 1)
		return nil, err
	}
	metrics.MeasureSince([]string{"swig", "codegen"}, start)
	metrics.IncrCounter([]string{"swig", "imports"}, float32(len(tpl.Deps)))

	res := &Result{
		Filename: tpl.Filename,
		Code:     code,
		Hash:     blake3.Sum256([]byte(code)),
		Symbols:  tpl.Symbols.Names(),
	}
	if tpl.Source != nil {
		res.Source = tpl.Source.Hash
	}
	for _, dep := range tpl.Deps {
		res.Deps = append(res.Deps, Dependency{Path: dep.Path, Hash: dep.Hash})
	}

	e.logger.Debug("compiled template", "filename", tpl.Filename,
		"deps", len(res.Deps), "symbols", len(res.Symbols))
	return res, nil
}
