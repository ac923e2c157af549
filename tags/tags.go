// Package tags holds the built-in directives: macro definitions and the
// import directive that exposes another file's macros under a namespace.
package tags

import "github.com/xgrommx/swig/parser"

// Defaults returns a fresh registry of the built-in tags.
func Defaults() map[string]parser.Tag {
	return map[string]parser.Tag{
		"import": Import{},
		"macro":  Macro{},
	}
}
