// Package modules holds the module library: definitions that bind call
// arguments and return state modifiers, the registry they live in, and the
// fold strategies that merge a suite's objects into the parent state.
package modules

import (
	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

// Context carries the collaborators a modifier may call while running.
type Context struct {
	Kernel kernel.Kernel
	Sink   kernel.Sink
}

// Report forwards d to the sink, if any.
func (c *Context) Report(d kernel.Diagnostic) {
	if c == nil || c.Sink == nil {
		return
	}
	c.Sink.Report(d)
}

// Modifier is the unit of statement execution.
type Modifier func(ctx *Context, st runtime.State) runtime.State

// Identity leaves the state unchanged.
func Identity(_ *Context, st runtime.State) runtime.State { return st }

// Suite is the compiled body of a block-taking call.
type Suite []Modifier

// Apply runs the modifiers in order starting from st.
func (s Suite) Apply(ctx *Context, st runtime.State) runtime.State {
	for _, m := range s {
		st = m(ctx, st)
	}
	return st
}

// RunSuite runs suite from empty accumulators sharing env and returns what it
// produced, including the environment it ended with.
func RunSuite(ctx *Context, env *runtime.Environment, suite Suite) runtime.State {
	return suite.Apply(ctx, runtime.Scoped(env))
}

func addObj3(f func(k kernel.Kernel) kernel.Obj3) Modifier {
	return func(ctx *Context, st runtime.State) runtime.State {
		return st.AddObj3(f(ctx.Kernel))
	}
}

func addObj2(f func(k kernel.Kernel) kernel.Obj2) Modifier {
	return func(ctx *Context, st runtime.State) runtime.State {
		return st.AddObj2(f(ctx.Kernel))
	}
}
