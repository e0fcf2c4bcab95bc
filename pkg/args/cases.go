package args

import "github.com/shkoo/ImplicitCAD/pkg/runtime"

// Arm is one alternative of a Cases rule set: a shape and the continuation
// invoked with the converted value.
type Arm[R any] struct {
	shape string
	try   func(runtime.Value) (R, bool)
}

// When builds an arm. The continuation only runs when the shape matches.
func When[T, R any](s Shape[T], then func(T) R) Arm[R] {
	return Arm[R]{
		shape: s.Name(),
		try: func(v runtime.Value) (R, bool) {
			conv, ok := s.Coerce(v)
			if !ok {
				var zero R
				return zero, false
			}
			return then(conv), true
		},
	}
}

// Cases resolves a value against an ordered list of arms. Arm order is part of
// the contract: the first arm whose shape matches wins even if a later arm
// would match too. Fallback, when non-nil, is total and runs only when no arm
// matched; a nil Fallback makes the rule set partial.
type Cases[R any] struct {
	Arms     []Arm[R]
	Fallback func(runtime.Value) R
}

// NewCases builds a rule set. The fallback is positional so that every rule
// set states whether it is total; pass nil for a partial one.
func NewCases[R any](fallback func(runtime.Value) R, arms ...Arm[R]) Cases[R] {
	return Cases[R]{Arms: arms, Fallback: fallback}
}

// Resolve runs the first matching arm, then the fallback.
func (c Cases[R]) Resolve(v runtime.Value) (R, bool) {
	for _, arm := range c.Arms {
		if res, ok := arm.try(v); ok {
			return res, true
		}
	}
	if c.Fallback != nil {
		return c.Fallback(v), true
	}
	var zero R
	return zero, false
}

// Total reports whether Resolve always succeeds.
func (c Cases[R]) Total() bool { return c.Fallback != nil }

// Names lists the arm shapes in order, with "any" appended for a fallback.
func (c Cases[R]) Names() []string {
	names := make([]string, 0, len(c.Arms)+1)
	for _, arm := range c.Arms {
		names = append(names, arm.shape)
	}
	if c.Fallback != nil {
		names = append(names, "any")
	}
	return names
}

// Shape exposes the rule set as a coercion rule so an argument can be
// declared over it.
func (c Cases[R]) Shape() Shape[R] {
	return NewShape(joinNames(c.Names()), c.Resolve)
}
