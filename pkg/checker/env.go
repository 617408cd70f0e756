package checker

import "sort"

// Environment records which package first defined each global name. tiny
// has a single flat scope, so there is no parent chain.
type Environment struct {
	symbols map[string]string
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{symbols: make(map[string]string)}
}

// Define binds name to pkg unless an earlier definition exists.
func (e *Environment) Define(name, pkg string) {
	if _, ok := e.symbols[name]; ok {
		return
	}
	e.symbols[name] = pkg
}

// Lookup reports the package that first defined name.
func (e *Environment) Lookup(name string) (string, bool) {
	pkg, ok := e.symbols[name]
	return pkg, ok
}

// NamesFrom lists the names first defined by pkg, sorted.
func (e *Environment) NamesFrom(pkg string) []string {
	var names []string
	for name, owner := range e.symbols {
		if owner == pkg {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
