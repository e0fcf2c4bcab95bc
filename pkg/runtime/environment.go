package runtime

import (
	"fmt"
	"sort"
)

// Environment holds the variable bindings visible to a statement. It is
// persistent: With returns a new environment and leaves the receiver intact,
// so every State carries the exact bindings it was produced with.
type Environment struct {
	values map[string]Value
}

// NewEnvironment creates an environment seeded with the provided bindings.
func NewEnvironment(initial map[string]Value) *Environment {
	values := make(map[string]Value, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Environment{values: values}
}

// With returns a copy of the environment with name bound to value.
func (e *Environment) With(name string, value Value) *Environment {
	next := &Environment{values: make(map[string]Value, e.Len()+1)}
	if e != nil {
		for k, v := range e.values {
			next.values[k] = v
		}
	}
	next.values[name] = value
	return next
}

// Lookup retrieves a binding.
func (e *Environment) Lookup(name string) (Value, bool) {
	if e == nil {
		return nil, false
	}
	v, ok := e.values[name]
	return v, ok
}

// Get retrieves a binding or reports it as undefined.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.Lookup(name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("undefined variable '%s'", name)
}

// Len returns the number of bindings.
func (e *Environment) Len() int {
	if e == nil {
		return 0
	}
	return len(e.values)
}

// Snapshot returns a copy of the current bindings.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, e.Len())
	if e == nil {
		return out
	}
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, e.Len())
	if e == nil {
		return keys
	}
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
