package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shkoo/ImplicitCAD/pkg/args"
	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/modules"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

// Compile turns statements into a suite of modifiers resolved against reg.
// Failures of one statement are reported when it runs and never stop its
// siblings.
func Compile(reg *modules.Registry, stmts []Statement) modules.Suite {
	suite := make(modules.Suite, 0, len(stmts))
	for _, stmt := range stmts {
		suite = append(suite, compileStatement(reg, stmt))
	}
	return suite
}

func compileStatement(reg *modules.Registry, stmt Statement) modules.Modifier {
	switch s := stmt.(type) {
	case *Call:
		return compileCall(reg, s)
	case *Assign:
		return func(ctx *modules.Context, st runtime.State) runtime.State {
			st.Env = st.Env.With(s.Name, Eval(ctx, st.Env, s.Value))
			return st
		}
	case *Echo:
		return func(ctx *modules.Context, st runtime.State) runtime.State {
			parts := make([]string, len(s.Values))
			for i, e := range s.Values {
				parts[i] = runtime.Format(Eval(ctx, st.Env, e))
			}
			ctx.Report(kernel.Diagnostic{
				Severity: kernel.SeverityInfo,
				Code:     kernel.CodeEcho,
				Message:  "ECHO: " + strings.Join(parts, ", "),
			})
			return st
		}
	default:
		panic(fmt.Sprintf("interpreter: unknown statement %T", stmt))
	}
}

func compileCall(reg *modules.Registry, call *Call) modules.Modifier {
	def, known := reg.Lookup(call.Module)
	var suite modules.Suite
	if call.HasSuite {
		suite = Compile(reg, call.Suite)
	}
	return func(ctx *modules.Context, st runtime.State) runtime.State {
		if !known {
			ctx.Report(kernel.Diagnostic{
				Severity: kernel.SeverityError,
				Code:     kernel.CodeUnknownModule,
				Module:   call.Module,
				Message:  located(fmt.Sprintf("unknown module %s", call.Module), call.At),
			})
			return st
		}
		if call.HasSuite && !def.TakesSuite {
			Logger().Debug("suite ignored", "module", call.Module, "pos", call.At.String())
		}
		mod, err := def.Bind(evalArgs(ctx, st.Env, call), suite)
		if err != nil {
			ctx.Report(bindDiagnostic(call, err))
			return st
		}
		Logger().Debug("statement", "module", call.Module, "pos", call.At.String())
		return mod(ctx, st)
	}
}

func evalArgs(ctx *modules.Context, env *runtime.Environment, call *Call) args.Call {
	out := args.Call{
		Positional: make([]runtime.Value, len(call.Positional)),
		Named:      make(map[string]runtime.Value, len(call.Named)),
	}
	for i, e := range call.Positional {
		out.Positional[i] = Eval(ctx, env, e)
	}
	for _, na := range call.Named {
		out.Named[na.Name] = Eval(ctx, env, na.Value)
	}
	return out
}

func bindDiagnostic(call *Call, err error) kernel.Diagnostic {
	code := kernel.CodeCoercion
	if errors.Is(err, args.ErrMissingArgument) {
		code = kernel.CodeMissingArgument
	}
	msg := strings.TrimPrefix(err.Error(), call.Module+": ")
	return kernel.Diagnostic{
		Severity: kernel.SeverityError,
		Code:     code,
		Module:   call.Module,
		Message:  located(msg, call.At),
	}
}

func located(msg string, at Position) string {
	if !at.Valid() {
		return msg
	}
	return msg + " (" + at.String() + ")"
}
