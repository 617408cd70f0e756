package runtime

import (
	"fmt"
	"sort"
)

// UndeclaredError reports a read of a name that was never stored.
type UndeclaredError struct {
	Name string
}

func (e *UndeclaredError) Error() string {
	return fmt.Sprintf("undeclared variable '%s'", e.Name)
}

// Environment is the single flat variable store of a tiny program. Blocks do
// not introduce scopes; every declaration and assignment lands here.
type Environment struct {
	values map[string]int64
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]int64)}
}

// Snapshot returns a copy of the current bindings.
func (e *Environment) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Define creates or overwrites a binding. Redeclaration is not an error.
func (e *Environment) Define(name string, value int64) {
	e.values[name] = value
}

// Assign stores value under name whether or not it was declared before.
func (e *Environment) Assign(name string, value int64) {
	e.values[name] = value
}

// Get retrieves a binding.
func (e *Environment) Get(name string) (int64, error) {
	if v, ok := e.values[name]; ok {
		return v, nil
	}
	return 0, &UndeclaredError{Name: name}
}

// Has reports whether name is bound.
func (e *Environment) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Keys returns the bindings in sorted order.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len reports the number of bindings.
func (e *Environment) Len() int {
	return len(e.values)
}
