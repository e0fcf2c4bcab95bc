// Package args binds dynamically-typed call arguments to the typed slots a
// module declares. A Shape is one coercion rule; Cases is an ordered rule set
// whose first matching arm wins; Arg is a named slot with an optional default.
package args

import (
	"fmt"
	"math"
	"strings"

	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

// Shape interprets a Value as a T. Conversion is partial: ok is false when the
// value does not have this shape.
type Shape[T any] struct {
	name    string
	convert func(runtime.Value) (T, bool)
}

// NewShape declares a coercion rule.
func NewShape[T any](name string, convert func(runtime.Value) (T, bool)) Shape[T] {
	return Shape[T]{name: name, convert: convert}
}

// Name describes the shape in diagnostics and generated documentation.
func (s Shape[T]) Name() string { return s.name }

// Coerce converts v, reporting whether it matched.
func (s Shape[T]) Coerce(v runtime.Value) (T, bool) {
	if s.convert == nil || v == nil {
		var zero T
		return zero, false
	}
	return s.convert(v)
}

var (
	// Real accepts any number.
	Real = NewShape("real", func(v runtime.Value) (float64, bool) {
		n, ok := v.(runtime.NumberValue)
		return n.Val, ok
	})

	// Natural accepts integral numbers. Negative values are kept so sentinel
	// defaults such as $fn=-1 survive a round trip through a call.
	Natural = NewShape("natural", func(v runtime.Value) (int, bool) {
		n, ok := v.(runtime.NumberValue)
		if !ok || math.IsInf(n.Val, 0) || math.IsNaN(n.Val) || n.Val != math.Floor(n.Val) {
			return 0, false
		}
		return int(n.Val), true
	})

	Bool = NewShape("bool", func(v runtime.Value) (bool, bool) {
		b, ok := v.(runtime.BoolValue)
		return b.Val, ok
	})

	String = NewShape("string", func(v runtime.Value) (string, bool) {
		s, ok := v.(runtime.StringValue)
		return s.Val, ok
	})

	// Pair accepts a list of exactly two numbers.
	Pair = NewShape("pair", func(v runtime.Value) (runtime.Vec2, bool) {
		var out runtime.Vec2
		ok := numbersInto(v, out[:])
		return out, ok
	})

	// Triple accepts a list of exactly three numbers.
	Triple = NewShape("triple", func(v runtime.Value) (runtime.Vec3, bool) {
		var out runtime.Vec3
		ok := numbersInto(v, out[:])
		return out, ok
	})

	// Any accepts every value unchanged.
	Any = NewShape("any", func(v runtime.Value) (runtime.Value, bool) {
		return v, true
	})
)

func numbersInto(v runtime.Value, dst []float64) bool {
	list, ok := v.(runtime.ListValue)
	if !ok || len(list.Elements) != len(dst) {
		return false
	}
	for i, el := range list.Elements {
		n, ok := el.(runtime.NumberValue)
		if !ok {
			return false
		}
		dst[i] = n.Val
	}
	return true
}

// ListOf accepts a list whose every element has shape elem.
func ListOf[T any](elem Shape[T]) Shape[[]T] {
	return NewShape("list("+elem.Name()+")", func(v runtime.Value) ([]T, bool) {
		list, ok := v.(runtime.ListValue)
		if !ok {
			return nil, false
		}
		out := make([]T, 0, len(list.Elements))
		for _, el := range list.Elements {
			conv, ok := elem.Coerce(el)
			if !ok {
				return nil, false
			}
			out = append(out, conv)
		}
		return out, true
	})
}

//-----------------------------------------------------------------------------
// Either
//-----------------------------------------------------------------------------

// Either holds exactly one of an A or a B.
type Either[A, B any] struct {
	left    A
	right   B
	isRight bool
}

func Left[A, B any](a A) Either[A, B]  { return Either[A, B]{left: a} }
func Right[A, B any](b B) Either[A, B] { return Either[A, B]{right: b, isRight: true} }

func (e Either[A, B]) IsRight() bool { return e.isRight }

func (e Either[A, B]) Left() (A, bool) { return e.left, !e.isRight }

func (e Either[A, B]) Right() (B, bool) { return e.right, e.isRight }

func (e Either[A, B]) String() string {
	if e.isRight {
		return formatDefault(e.right)
	}
	return formatDefault(e.left)
}

// EitherOf tries a, then b.
func EitherOf[A, B any](a Shape[A], b Shape[B]) Shape[Either[A, B]] {
	name := fmt.Sprintf("either(%s, %s)", a.Name(), b.Name())
	return NewShape(name, func(v runtime.Value) (Either[A, B], bool) {
		if l, ok := a.Coerce(v); ok {
			return Left[A, B](l), true
		}
		if r, ok := b.Coerce(v); ok {
			return Right[A](r), true
		}
		return Either[A, B]{}, false
	})
}

//-----------------------------------------------------------------------------
// Option
//-----------------------------------------------------------------------------

// Option is a T that may be absent.
type Option[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Option[T] { return Option[T]{value: v, ok: true} }
func None[T any]() Option[T]    { return Option[T]{} }

func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

// OrElse returns the held value or def.
func (o Option[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

func (o Option[T]) String() string {
	if !o.ok {
		return "undef"
	}
	return formatDefault(o.value)
}

// OptionalOf maps undef to None and everything else through s.
func OptionalOf[T any](s Shape[T]) Shape[Option[T]] {
	return NewShape("optional("+s.Name()+")", func(v runtime.Value) (Option[T], bool) {
		if v.Kind() == runtime.KindUndefined {
			return None[T](), true
		}
		conv, ok := s.Coerce(v)
		if !ok {
			return Option[T]{}, false
		}
		return Some(conv), true
	})
}

//-----------------------------------------------------------------------------
// Functions of one real
//-----------------------------------------------------------------------------

// Func is a script function of one real whose result is coerced to T on
// every call.
type Func[T any] struct {
	fn  runtime.FunctionValue
	out Shape[T]
}

// Call applies the function to x.
func (f Func[T]) Call(x float64) (T, error) {
	var zero T
	res, err := f.fn.Call(runtime.Num(x))
	if err != nil {
		return zero, err
	}
	conv, ok := f.out.Coerce(res)
	if !ok {
		return zero, fmt.Errorf("function %s returned %s, expected %s", f.Name(), runtime.Format(res), f.out.Name())
	}
	return conv, nil
}

// Name returns the underlying function's name.
func (f Func[T]) Name() string {
	if f.fn.Name == "" {
		return "<anonymous>"
	}
	return f.fn.Name
}

func (f Func[T]) String() string { return "<function " + f.Name() + ">" }

// FuncOf accepts a function value; its results are coerced through out.
func FuncOf[T any](out Shape[T]) Shape[Func[T]] {
	return NewShape("function(real -> "+out.Name()+")", func(v runtime.Value) (Func[T], bool) {
		fn, ok := v.(runtime.FunctionValue)
		if !ok {
			return Func[T]{}, false
		}
		return Func[T]{fn: fn, out: out}, true
	})
}

func joinNames(names []string) string {
	return strings.Join(names, " | ")
}
