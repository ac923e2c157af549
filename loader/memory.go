package loader

import (
	"fmt"
	"path"
)

// Memory serves templates from a map keyed by slash-separated path.
type Memory struct {
	basepath  string
	templates map[string]string
}

func NewMemory(templates map[string]string, basepath string) *Memory {
	if basepath == "" {
		basepath = "/"
	}
	m := &Memory{
		basepath:  basepath,
		templates: make(map[string]string, len(templates)),
	}
	for name, text := range templates {
		m.templates[m.Resolve(name, "")] = text
	}
	return m
}

func (m *Memory) Resolve(to, from string) string {
	if path.IsAbs(to) {
		return path.Clean(to)
	}
	base := m.basepath
	if from != "" {
		base = path.Dir(from)
	}
	return path.Join(base, to)
}

func (m *Memory) Load(p string) (*Source, error) {
	text, ok := m.templates[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return NewSource(p, text), nil
}
