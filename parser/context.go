package parser

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Context is handed to Tag.Parse. It exposes the template being parsed and
// lets the tag re-enter the parser for other files.
type Context struct {
	Filename string
	Line     int
	Symbols  *SymbolTable

	parser   *Parser
	template *Template
}

// ParseFile parses the file at path, resolved relative to the current file.
// The result has its own symbol table; the files it read are recorded as
// dependencies of the current template.
func (c *Context) ParseFile(path string) (*Template, error) {
	tpl, err := c.parser.ParseFile(path, c.Filename)
	var perr *Error
	if errors.Is(err, ErrCircularImport) && !errors.As(err, &perr) {
		return nil, &Error{Filename: c.Filename, Line: c.Line, Msg: err.Error(), Err: err}
	} else if err != nil {
		return nil, err
	}

	c.template.Deps = append(c.template.Deps, tpl.Source)
	c.template.Deps = append(c.template.Deps, tpl.Deps...)
	return tpl, nil
}

// Compiler returns the code generator of the compilation, for tags that
// generate code at parse time.
func (c *Context) Compiler() Compiler {
	return c.parser.compiler
}

func (c *Context) Logger() hclog.Logger {
	return c.parser.logger
}

// Errorf returns a positional error in the current file.
func (c *Context) Errorf(line int, format string, args ...interface{}) error {
	return &Error{Filename: c.Filename, Line: line, Msg: fmt.Sprintf(format, args...)}
}
