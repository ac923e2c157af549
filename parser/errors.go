package parser

import (
	"errors"
	"fmt"

	"github.com/xgrommx/swig/lexer"
)

// Error is the single error type reported to template authors: a message
// and the 1-based line of the offending token. Err, when set, is the
// underlying cause and is reachable through errors.Is.
type Error struct {
	Filename string
	Line     int
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Filename, e.Line, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithFilename fills in the file name of a positional error that was raised
// without one. Other errors are returned as is.
func WithFilename(err error, filename string) error {
	var perr *Error
	if errors.As(err, &perr) && perr.Filename == "" {
		perr.Filename = filename
	}
	return err
}

func fromLexer(err error, filename string) error {
	var lerr *lexer.Error
	if !errors.As(err, &lerr) {
		return err
	}
	if lerr.Filename != "" {
		filename = lerr.Filename
	}
	return &Error{Filename: filename, Line: lerr.Line, Msg: lerr.Msg}
}
