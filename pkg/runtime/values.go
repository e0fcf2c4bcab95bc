package runtime

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindUndefined Kind = iota
	KindNumber
	KindBool
	KindString
	KindList
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undef"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is a datum produced by evaluating an argument expression. The set of
// implementations is closed: only the types in this file satisfy it.
type Value interface {
	Kind() Kind
	sealed()
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type UndefinedValue struct{}

func (UndefinedValue) Kind() Kind { return KindUndefined }
func (UndefinedValue) sealed()    {}

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }
func (NumberValue) sealed()      {}

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }
func (BoolValue) sealed()      {}

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }
func (StringValue) sealed()      {}

//-----------------------------------------------------------------------------
// Lists and functions
//-----------------------------------------------------------------------------

type ListValue struct {
	Elements []Value
}

func (v ListValue) Kind() Kind { return KindList }
func (ListValue) sealed()      {}

// Len returns the number of elements.
func (v ListValue) Len() int { return len(v.Elements) }

// FunctionImpl is the host implementation of a script function.
type FunctionImpl func(args []Value) (Value, error)

type FunctionValue struct {
	Name string
	Impl FunctionImpl
}

func (v FunctionValue) Kind() Kind { return KindFunction }
func (FunctionValue) sealed()      {}

// Call applies the function, rejecting values without an implementation.
func (v FunctionValue) Call(args ...Value) (Value, error) {
	if v.Impl == nil {
		return nil, fmt.Errorf("function %s has no implementation", v.displayName())
	}
	return v.Impl(args)
}

func (v FunctionValue) displayName() string {
	if v.Name == "" {
		return "<anonymous>"
	}
	return v.Name
}

//-----------------------------------------------------------------------------
// Constructors
//-----------------------------------------------------------------------------

// Undef is the shared undefined value.
var Undef Value = UndefinedValue{}

func Num(v float64) Value   { return NumberValue{Val: v} }
func Bool(v bool) Value     { return BoolValue{Val: v} }
func Str(v string) Value    { return StringValue{Val: v} }
func List(v ...Value) Value { return ListValue{Elements: v} }

// Nums builds a list of numbers.
func Nums(vals ...float64) Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = NumberValue{Val: v}
	}
	return ListValue{Elements: out}
}

// Func wraps a host function.
func Func(name string, impl FunctionImpl) Value {
	return FunctionValue{Name: name, Impl: impl}
}

//-----------------------------------------------------------------------------
// Utility helpers
//-----------------------------------------------------------------------------

// Equal reports structural equality. Functions are equal when they share a name.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case UndefinedValue:
		return true
	case NumberValue:
		return av.Val == b.(NumberValue).Val
	case BoolValue:
		return av.Val == b.(BoolValue).Val
	case StringValue:
		return av.Val == b.(StringValue).Val
	case ListValue:
		bv := b.(ListValue)
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case FunctionValue:
		return av.Name != "" && av.Name == b.(FunctionValue).Name
	default:
		return false
	}
}

// Format renders a value the way OpenSCAD echoes it.
func Format(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case nil:
		b.WriteString("undef")
	case UndefinedValue:
		b.WriteString("undef")
	case NumberValue:
		b.WriteString(strconv.FormatFloat(val.Val, 'g', -1, 64))
	case BoolValue:
		b.WriteString(strconv.FormatBool(val.Val))
	case StringValue:
		b.WriteString(strconv.Quote(val.Val))
	case ListValue:
		b.WriteByte('[')
		for i, el := range val.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, el)
		}
		b.WriteByte(']')
	case FunctionValue:
		b.WriteString("<function ")
		b.WriteString(val.displayName())
		b.WriteByte('>')
	}
}
