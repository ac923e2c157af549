package tags

import "fmt"

// SafeAccessor is the property that marks a macro's output as exempt from
// auto-escaping.
const SafeAccessor = "safe"

// AliasBinding is one pending assignment of an import: Value is assigned to
// <alias>.<Macro>, or to <alias>.<Macro>.<Accessor> when Accessor is set.
// The alias is not part of the binding; it is filled in when the plan is
// serialized.
type AliasBinding struct {
	Macro    string
	Accessor string
	Value    string
}

// Target returns the assigned path under alias.
func (b AliasBinding) Target(alias string) string {
	if b.Accessor == "" {
		return alias + "." + b.Macro
	}
	return alias + "." + b.Macro + "." + b.Accessor
}

// ImportPlan is the ordered list of bindings produced by one import
// directive, in the declaration order of the imported macros.
type ImportPlan struct {
	Path     string
	Bindings []AliasBinding

	macros []string
	alias  string
}

// addMacro appends the bindings for one macro. A safe macro gets a second
// binding for its safe accessor under the same namespaced path.
func (p *ImportPlan) addMacro(name, fn string, safe bool) {
	p.macros = append(p.macros, name)
	p.Bindings = append(p.Bindings, AliasBinding{Macro: name, Value: fn})
	if safe {
		p.Bindings = append(p.Bindings, AliasBinding{Macro: name, Accessor: SafeAccessor, Value: "true"})
	}
}

// Macros returns the imported macro names in declaration order.
func (p *ImportPlan) Macros() []string {
	out := make([]string, len(p.macros))
	copy(out, p.macros)
	return out
}

// Resolve sets the alias. It must be called exactly once.
func (p *ImportPlan) Resolve(alias string) {
	if p.alias != "" {
		panic(fmt.Sprintf("import plan for %q already resolved to %q", p.Path, p.alias))
	}
	p.alias = alias
}

func (p *ImportPlan) Alias() string { return p.alias }

func (p *ImportPlan) Resolved() bool { return p.alias != "" }

// Statements serializes the bindings under the resolved alias.
func (p *ImportPlan) Statements() []string {
	if !p.Resolved() {
		panic(fmt.Sprintf("import plan for %q has no alias", p.Path))
	}
	out := make([]string, 0, len(p.Bindings))
	for _, b := range p.Bindings {
		out = append(out, b.Target(p.alias)+" = "+b.Value+";")
	}
	return out
}
