package parser

import "github.com/ahrtr/gocontainer/set"

// SymbolTable is the set of callable macro names known to one compilation,
// such as "forms.input", and of the namespaces they live under. It is
// append-only: names are never removed or replaced, and declaring a name
// twice keeps the first declaration.
type SymbolTable struct {
	names      []string
	seen       set.Interface
	namespaces set.Interface
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{seen: set.New(), namespaces: set.New()}
}

// Declare adds name to the table and reports whether it was new.
func (t *SymbolTable) Declare(name string) bool {
	if t.seen.Contains(name) {
		return false
	}
	t.seen.Add(name)
	t.names = append(t.names, name)
	return true
}

func (t *SymbolTable) Has(name string) bool {
	return t.seen.Contains(name)
}

// Names returns the declared names in declaration order.
func (t *SymbolTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t *SymbolTable) Len() int {
	return len(t.names)
}

// DeclareNamespace claims ns for one import and reports whether it was
// still free. A namespace is claimed even when it holds no macros.
func (t *SymbolTable) DeclareNamespace(ns string) bool {
	if t.namespaces.Contains(ns) {
		return false
	}
	t.namespaces.Add(ns)
	return true
}
