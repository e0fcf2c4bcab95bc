package modules

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shkoo/ImplicitCAD/pkg/args"
)

// Body turns bound arguments, and the suite for block-taking modules, into
// the modifier the call site contributes.
type Body func(b *args.Bound, suite Suite) Modifier

// Definition is one entry of the module library.
type Definition struct {
	Name       string
	Doc        string
	TakesSuite bool
	// Signatures are tried in order; the first that binds is used.
	Signatures []args.Signature
	Examples   []string
	Body       Body
}

// Bind resolves call against the definition and returns its modifier.
// Binding errors come from package args unchanged.
func (d *Definition) Bind(call args.Call, suite Suite) (Modifier, error) {
	bound, err := args.BindAny(d.Name, d.Signatures, call)
	if err != nil {
		return nil, err
	}
	if !d.TakesSuite {
		suite = nil
	}
	return d.Body(bound, suite), nil
}

// Registry maps module names to definitions. It is never modified after
// construction, so it may be shared freely.
type Registry struct {
	defs  map[string]*Definition
	order []*Definition
}

// NewRegistry builds a registry, rejecting duplicate or empty names.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Definition, len(defs))}
	for _, def := range defs {
		if def == nil || def.Name == "" {
			return nil, fmt.Errorf("modules: definition without a name")
		}
		if _, dup := r.defs[def.Name]; dup {
			return nil, fmt.Errorf("modules: duplicate definition %q", def.Name)
		}
		if def.Body == nil {
			return nil, fmt.Errorf("modules: %s has no body", def.Name)
		}
		r.defs[def.Name] = def
		r.order = append(r.order, def)
	}
	return r, nil
}

// MustRegistry is NewRegistry for static tables; it panics on error.
func MustRegistry(defs ...*Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Lookup(name string) (*Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Definitions returns the entries in registration order.
func (r *Registry) Definitions() []*Definition {
	return append([]*Definition(nil), r.order...)
}

// Names returns the module names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int { return len(r.order) }

// Default is the process-wide registry of the built-in library.
var Default = sync.OnceValue(func() *Registry {
	return MustRegistry(Library()...)
})
