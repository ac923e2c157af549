// Package loader resolves and reads template files.
package loader

import (
	"errors"

	"github.com/zeebo/blake3"
)

// ErrNotFound is returned (wrapped) when a template cannot be located.
var ErrNotFound = errors.New("template not found")

// Source is the text of one template file.
type Source struct {
	Path string
	Text string

	// Hash is the blake3 sum of Text.
	Hash [32]byte
}

func NewSource(path, text string) *Source {
	return &Source{
		Path: path,
		Text: text,
		Hash: blake3.Sum256([]byte(text)),
	}
}

// Loader locates template files. Resolve turns a path written in a template
// into a loadable identifier, relative to the file doing the import (from is
// empty for top-level templates).
type Loader interface {
	Resolve(to, from string) string
	Load(path string) (*Source, error)
}
