// Package interpreter evaluates scene programs: it compiles statements into
// module modifiers, threads the program state through them and routes every
// statement-level failure to a diagnostic sink.
package interpreter

import (
	"errors"

	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/modules"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

var (
	ErrNoKernel  = errors.New("interpreter: no geometry kernel")
	ErrNoProgram = errors.New("interpreter: no program")
)

// Interpreter runs programs against a module registry and a geometry kernel.
type Interpreter struct {
	// Registry defaults to modules.Default().
	Registry *modules.Registry
	Kernel   kernel.Kernel
	Sink     kernel.Sink
	// Globals seed the environment of every run.
	Globals map[string]runtime.Value
}

// New returns an interpreter over the built-in library.
func New(k kernel.Kernel, sink kernel.Sink) *Interpreter {
	return &Interpreter{Registry: modules.Default(), Kernel: k, Sink: sink}
}

// Run executes the program from the empty state and returns the final state.
// Statement failures are reported to Sink and do not produce an error.
func (i *Interpreter) Run(p *Program) (runtime.State, error) {
	if p == nil {
		return runtime.State{}, ErrNoProgram
	}
	return i.RunStatements(p.Statements)
}

// RunStatements is Run for a bare statement list.
func (i *Interpreter) RunStatements(stmts []Statement) (runtime.State, error) {
	if i.Kernel == nil {
		return runtime.State{}, ErrNoKernel
	}
	reg := i.Registry
	if reg == nil {
		reg = modules.Default()
	}
	ctx := &modules.Context{Kernel: i.Kernel, Sink: i.Sink}
	st := runtime.Scoped(runtime.NewEnvironment(i.Globals))
	Logger().Debug("run", "statements", len(stmts))
	return Compile(reg, stmts).Apply(ctx, st), nil
}
