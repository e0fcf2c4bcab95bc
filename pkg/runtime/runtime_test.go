package runtime

import (
	"errors"
	"testing"
)

func TestEnvironmentWithIsPersistent(t *testing.T) {
	base := NewEnvironment(map[string]Value{"a": Num(1)})
	next := base.With("b", Num(2))

	if _, ok := base.Lookup("b"); ok {
		t.Fatalf("expected base environment to stay unchanged")
	}
	v, err := next.Get("a")
	if err != nil {
		t.Fatalf("lookup a: %v", err)
	}
	if !Equal(v, Num(1)) {
		t.Fatalf("unexpected value %#v", v)
	}
	if got := next.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected keys %v", got)
	}
}

func TestEnvironmentGetUndefined(t *testing.T) {
	var env *Environment
	if _, err := env.Get("missing"); err == nil {
		t.Fatalf("expected error for undefined variable")
	}
	if env.With("x", Bool(true)).Len() != 1 {
		t.Fatalf("expected With on nil environment to create a binding")
	}
}

func TestStateAddDoesNotAlias(t *testing.T) {
	parent := NewState().AddObj2("a")
	parent.Obj2 = append(make([]Obj2, 0, 8), parent.Obj2...)

	left := parent.AddObj2("left")
	right := parent.AddObj2("right")
	if left.Obj2[1] != "left" || right.Obj2[1] != "right" {
		t.Fatalf("appends aliased: left=%v right=%v", left.Obj2, right.Obj2)
	}
	if len(parent.Obj2) != 1 {
		t.Fatalf("parent mutated: %v", parent.Obj2)
	}
	if parent.AddObj3().Obj3 != nil {
		t.Fatalf("expected no-op append to keep accumulator")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		value Value
		want  string
	}{
		{Undef, "undef"},
		{Num(2.5), "2.5"},
		{Bool(false), "false"},
		{Str("mm"), `"mm"`},
		{List(Num(1), List(Num(2), Str("x"))), `[1, [2, "x"]]`},
		{Func("f", nil), "<function f>"},
	}
	for _, tc := range cases {
		if got := Format(tc.value); got != tc.want {
			t.Fatalf("Format(%#v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal(Nums(1, 2), List(Num(1), Num(2))) {
		t.Fatalf("expected equal lists")
	}
	if Equal(Nums(1, 2), Nums(1, 2, 3)) {
		t.Fatalf("expected different lengths to differ")
	}
	if Equal(Num(1), Bool(true)) {
		t.Fatalf("expected kinds to differ")
	}
	if Equal(Func("", nil), Func("", nil)) {
		t.Fatalf("anonymous functions must not compare equal")
	}
}

func TestFunctionCall(t *testing.T) {
	double := FunctionValue{Name: "double", Impl: func(args []Value) (Value, error) {
		return Num(args[0].(NumberValue).Val * 2), nil
	}}
	got, err := double.Call(Num(4))
	if err != nil || !Equal(got, Num(8)) {
		t.Fatalf("double(4) = %v, %v", got, err)
	}
	if _, err := (FunctionValue{}).Call(); err == nil {
		t.Fatalf("expected error for missing implementation")
	} else if errors.Unwrap(err) != nil {
		t.Fatalf("expected plain error, got wrapped %v", err)
	}
}
