package modules

import (
	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

// The fold strategies below share one rule: the environment the suite ends
// with becomes the parent's environment, while the suite's objects reach the
// parent only through the strategy.

type (
	Reduce2 func(k kernel.Kernel, objs []kernel.Obj2) (kernel.Obj2, bool)
	Reduce3 func(k kernel.Kernel, objs []kernel.Obj3) (kernel.Obj3, bool)
	Map2    func(k kernel.Kernel, obj kernel.Obj2) kernel.Obj2
	Map3    func(k kernel.Kernel, obj kernel.Obj3) kernel.Obj3
	Lift    func(k kernel.Kernel, obj kernel.Obj2) kernel.Obj3
)

func compress(k kernel.Kernel, r2 Reduce2, r3 Reduce3, child, parent runtime.State) runtime.State {
	out := parent
	out.Env = child.Env
	if obj, ok := r2(k, child.Obj2); ok {
		out = out.AddObj2(obj)
	}
	if obj, ok := r3(k, child.Obj3); ok {
		out = out.AddObj3(obj)
	}
	return out
}

func transform(k kernel.Kernel, f2 Map2, f3 Map3, child, parent runtime.State) runtime.State {
	out := parent
	out.Env = child.Env
	objs2 := make([]kernel.Obj2, len(child.Obj2))
	for i, o := range child.Obj2 {
		objs2[i] = f2(k, o)
	}
	objs3 := make([]kernel.Obj3, len(child.Obj3))
	for i, o := range child.Obj3 {
		objs3[i] = f3(k, o)
	}
	return out.AddObj2(objs2...).AddObj3(objs3...)
}

func lift(k kernel.Kernel, f Lift, child, parent runtime.State) runtime.State {
	out := parent
	out.Env = child.Env
	objs := make([]kernel.Obj3, len(child.Obj2))
	for i, o := range child.Obj2 {
		objs[i] = f(k, o)
	}
	return out.AddObj3(objs...)
}

// CompressSuite collapses each dimension of the suite's objects to at most
// one object. Both reducers always run, possibly over nothing.
func CompressSuite(suite Suite, r2 Reduce2, r3 Reduce3) Modifier {
	return func(ctx *Context, st runtime.State) runtime.State {
		child := RunSuite(ctx, st.Env, suite)
		return compress(ctx.Kernel, r2, r3, child, st)
	}
}

// TransformSuite maps every suite object and appends the results.
func TransformSuite(suite Suite, f2 Map2, f3 Map3) Modifier {
	return func(ctx *Context, st runtime.State) runtime.State {
		child := RunSuite(ctx, st.Env, suite)
		return transform(ctx.Kernel, f2, f3, child, st)
	}
}

// LiftSuite lifts every 2D suite object into 3D. The suite's 3D objects are
// dropped.
func LiftSuite(suite Suite, f Lift) Modifier {
	return func(ctx *Context, st runtime.State) runtime.State {
		child := RunSuite(ctx, st.Env, suite)
		return lift(ctx.Kernel, f, child, st)
	}
}

//-----------------------------------------------------------------------------
// Packing
//-----------------------------------------------------------------------------

// PackState names the stages of one packing attempt.
type PackState int

const (
	PackEmpty PackState = iota
	PackCollecting
	PackedSuccess
	PackedFailure
)

func (s PackState) String() string {
	switch s {
	case PackEmpty:
		return "empty"
	case PackCollecting:
		return "collecting"
	case PackedSuccess:
		return "packed"
	case PackedFailure:
		return "failed"
	default:
		return "unknown"
	}
}

const packFailureMessage = "can't pack given objects in given box with present algorithm"

// pack folds a collected suite. 3D objects take precedence: when the suite
// produced any, only they are packed. The packer is called exactly once.
func pack(k kernel.Packer, size runtime.Vec2, sep float64, child, parent runtime.State) (runtime.State, PackState, *kernel.Diagnostic) {
	out := parent
	out.Env = child.Env
	if len(child.Obj3) > 0 {
		if obj, ok := k.Pack3(size, sep, child.Obj3); ok {
			return out.AddObj3(obj), PackedSuccess, nil
		}
	} else if obj, ok := k.Pack2(size, sep, child.Obj2); ok {
		return out.AddObj2(obj), PackedSuccess, nil
	}
	return out, PackedFailure, &kernel.Diagnostic{
		Severity: kernel.SeverityWarning,
		Code:     kernel.CodePackingInfeasible,
		Module:   "pack",
		Message:  packFailureMessage,
	}
}

// PackSuite packs the suite's objects into one arrangement, or reports that
// they do not fit and merges nothing.
func PackSuite(suite Suite, size runtime.Vec2, sep float64) Modifier {
	return func(ctx *Context, st runtime.State) runtime.State {
		child := RunSuite(ctx, st.Env, suite)
		out, _, diag := pack(ctx.Kernel, size, sep, child, st)
		if diag != nil {
			ctx.Report(*diag)
		}
		return out
	}
}
