package parser

import "strings"

// Scope is a compile-time lexical scope. Lookups go to the parent when a name
// is not bound locally; the symbol table is shared along the chain.
type Scope struct {
	locals  map[string]struct{}
	parent  *Scope
	symbols *SymbolTable
}

// NewScope returns a root scope resolving macro calls against symbols.
func NewScope(symbols *SymbolTable) *Scope {
	if symbols == nil {
		symbols = NewSymbolTable()
	}
	return &Scope{
		locals:  map[string]struct{}{},
		symbols: symbols,
	}
}

// Child returns a nested scope. Names declared in it are not visible to s.
func (s *Scope) Child() *Scope {
	return &Scope{
		locals:  map[string]struct{}{},
		parent:  s,
		symbols: s.symbols,
	}
}

// Declare binds name in this scope.
func (s *Scope) Declare(name string) {
	s.locals[name] = struct{}{}
}

// IsLocal reports whether the first segment of a dotted name is bound in
// this scope or any enclosing one.
func (s *Scope) IsLocal(name string) bool {
	root, _, _ := strings.Cut(name, ".")
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.locals[root]; ok {
			return true
		}
	}
	return false
}

// IsMacro reports whether name was registered as a callable macro.
func (s *Scope) IsMacro(name string) bool {
	return s.symbols.Has(name)
}

func (s *Scope) Symbols() *SymbolTable {
	return s.symbols
}
