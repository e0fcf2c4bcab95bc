package args

import (
	"errors"
	"fmt"

	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

var (
	ErrMissingArgument   = errors.New("missing required argument")
	ErrCoercionExhausted = errors.New("no coercion rule matched")
)

// MissingRequiredArgumentError reports a required slot that the call neither
// named nor could fill by position.
type MissingRequiredArgumentError struct {
	Module string
	Arg    string
}

func (e *MissingRequiredArgumentError) Error() string {
	return fmt.Sprintf("%s: missing required argument %q", e.Module, e.Arg)
}

func (e *MissingRequiredArgumentError) Is(target error) bool {
	return target == ErrMissingArgument
}

// TypeCoercionError reports a supplied value that matched none of the
// argument's coercion rules.
type TypeCoercionError struct {
	Module string
	Arg    string
	Shape  string
	Value  runtime.Value
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("%s: argument %q expects %s, got %s", e.Module, e.Arg, e.Shape, runtime.Format(e.Value))
}

func (e *TypeCoercionError) Is(target error) bool {
	return target == ErrCoercionExhausted
}

// Call is the argument list of one call site.
type Call struct {
	Named      map[string]runtime.Value
	Positional []runtime.Value
}

// Positional builds a call from unnamed values.
func Positional(vals ...runtime.Value) Call {
	return Call{Positional: vals}
}

// Named builds a call from alternating name/value pairs.
func Named(pairs ...any) Call {
	call := Call{Named: make(map[string]runtime.Value, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		name, _ := pairs[i].(string)
		val, _ := pairs[i+1].(runtime.Value)
		call.Named[name] = val
	}
	return call
}

// Bound is the result of a successful bind.
type Bound struct {
	module    string
	signature int
	values    map[string]any
	supplied  map[string]bool
}

// Signature is the index of the signature that bound.
func (b *Bound) Signature() int { return b.signature }

// Supplied reports whether the call provided the argument, as opposed to it
// taking its default.
func (b *Bound) Supplied(name string) bool { return b.supplied[name] }

// Bind resolves sig against call. For each slot in order: a named argument,
// else the next unconsumed positional value, else the default. Resolved values
// are coerced through the slot's shape.
func Bind(module string, sig Signature, call Call) (*Bound, error) {
	bound := &Bound{
		module:   module,
		values:   make(map[string]any, len(sig)),
		supplied: make(map[string]bool, len(sig)),
	}
	next := 0
	for _, param := range sig {
		spec := param.Spec()
		raw, ok := call.Named[spec.Name]
		if !ok && next < len(call.Positional) {
			raw, ok = call.Positional[next], true
			next++
		}
		if !ok {
			def, hasDef := param.defaultValue()
			if !hasDef {
				return nil, &MissingRequiredArgumentError{Module: module, Arg: spec.Name}
			}
			bound.values[spec.Name] = def
			continue
		}
		val, matched := param.coerce(raw)
		if !matched {
			return nil, &TypeCoercionError{Module: module, Arg: spec.Name, Shape: spec.Shape, Value: raw}
		}
		bound.values[spec.Name] = val
		bound.supplied[spec.Name] = true
	}
	return bound, nil
}

// BindAny tries each signature in order and returns the first that binds.
// When all fail the first coercion failure is returned, else the error of the
// first signature.
func BindAny(module string, sigs []Signature, call Call) (*Bound, error) {
	if len(sigs) == 0 {
		return &Bound{module: module, values: map[string]any{}, supplied: map[string]bool{}}, nil
	}
	var first, coercion error
	for idx, sig := range sigs {
		bound, err := Bind(module, sig, call)
		if err == nil {
			bound.signature = idx
			return bound, nil
		}
		if first == nil {
			first = err
		}
		if coercion == nil && errors.Is(err, ErrCoercionExhausted) {
			coercion = err
		}
	}
	if coercion != nil {
		return nil, coercion
	}
	return nil, first
}
