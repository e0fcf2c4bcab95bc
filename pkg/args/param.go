package args

import (
	"fmt"

	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

// Spec is the semantic part of an argument declaration: what binding reads.
type Spec struct {
	Name       string
	Shape      string
	HasDefault bool
	Default    string
}

// Required reports whether binding fails when the argument is absent.
func (s Spec) Required() bool { return !s.HasDefault }

// Meta is documentation attached to an argument. Binding never reads it.
type Meta struct {
	Doc      string
	Examples []string
}

// Param is a declared argument slot with its type erased.
type Param interface {
	Spec() Spec
	Meta() Meta
	coerce(runtime.Value) (any, bool)
	defaultValue() (any, bool)
}

// Signature is an ordered list of argument slots.
type Signature []Param

// Specs returns the semantic specs in declaration order.
func (s Signature) Specs() []Spec {
	out := make([]Spec, len(s))
	for i, p := range s {
		out[i] = p.Spec()
	}
	return out
}

// Arg is a typed argument slot.
type Arg[T any] struct {
	name   string
	shape  Shape[T]
	def    T
	hasDef bool
	meta   Meta
}

// Required declares an argument without a default.
func Required[T any](name string, shape Shape[T]) *Arg[T] {
	return &Arg[T]{name: name, shape: shape}
}

// Default declares an argument used as def when the call omits it.
func Default[T any](name string, shape Shape[T], def T) *Arg[T] {
	return &Arg[T]{name: name, shape: shape, def: def, hasDef: true}
}

// Doc attaches a description.
func (a *Arg[T]) Doc(text string) *Arg[T] {
	a.meta.Doc = text
	return a
}

// Example attaches an example call.
func (a *Arg[T]) Example(src string) *Arg[T] {
	a.meta.Examples = append(a.meta.Examples, src)
	return a
}

// Name is the argument's keyword.
func (a *Arg[T]) Name() string { return a.name }

func (a *Arg[T]) Spec() Spec {
	spec := Spec{Name: a.name, Shape: a.shape.Name(), HasDefault: a.hasDef}
	if a.hasDef {
		spec.Default = formatDefault(a.def)
	}
	return spec
}

func (a *Arg[T]) Meta() Meta { return a.meta }

func (a *Arg[T]) coerce(v runtime.Value) (any, bool) {
	return a.shape.Coerce(v)
}

func (a *Arg[T]) defaultValue() (any, bool) {
	return a.def, a.hasDef
}

// Get returns the bound value. Asking for an argument that is not part of the
// signature that bound is a programming error and panics.
func (a *Arg[T]) Get(b *Bound) T {
	raw, ok := b.values[a.name]
	if !ok {
		panic(fmt.Sprintf("args: %s has no bound argument %q", b.module, a.name))
	}
	val, ok := raw.(T)
	if !ok {
		panic(fmt.Sprintf("args: %s argument %q bound as %T", b.module, a.name, raw))
	}
	return val
}

func formatDefault(v any) string {
	switch d := v.(type) {
	case runtime.Value:
		return runtime.Format(d)
	case runtime.Vec2:
		return fmt.Sprintf("[%g, %g]", d[0], d[1])
	case runtime.Vec3:
		return fmt.Sprintf("[%g, %g, %g]", d[0], d[1], d[2])
	case float64:
		return fmt.Sprintf("%g", d)
	case string:
		return fmt.Sprintf("%q", d)
	default:
		return fmt.Sprint(d)
	}
}
