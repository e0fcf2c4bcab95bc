package interpreter

import (
	"fmt"
	"sort"

	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/modules"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

// Eval evaluates expr against env. Unbound variables evaluate to undef and
// are reported to ctx as warnings.
func Eval(ctx *modules.Context, env *runtime.Environment, expr Expr) runtime.Value {
	switch e := expr.(type) {
	case nil:
		return runtime.Undef
	case *Literal:
		if e.Value == nil {
			return runtime.Undef
		}
		return e.Value
	case *Var:
		if v, ok := env.Lookup(e.Name); ok {
			return v
		}
		ctx.Report(kernel.Diagnostic{
			Severity: kernel.SeverityWarning,
			Code:     kernel.CodeUndefinedVariable,
			Message:  located(fmt.Sprintf("variable %s is undefined", e.Name), e.At),
		})
		return runtime.Undef
	case *ListExpr:
		elems := make([]runtime.Value, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = Eval(ctx, env, el)
		}
		return runtime.List(elems...)
	case *LerpExpr:
		return lerpFunc(e.Knots)
	default:
		panic(fmt.Sprintf("interpreter: unknown expression %T", expr))
	}
}

func lerpFunc(knots []Knot) runtime.Value {
	pts := append([]Knot(nil), knots...)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	return runtime.Func("lerp", func(argv []runtime.Value) (runtime.Value, error) {
		if len(argv) != 1 {
			return nil, fmt.Errorf("lerp expects 1 argument, got %d", len(argv))
		}
		n, ok := argv[0].(runtime.NumberValue)
		if !ok {
			return nil, fmt.Errorf("lerp expects a number, got %s", runtime.Format(argv[0]))
		}
		if len(pts) == 0 {
			return runtime.Undef, nil
		}
		return knotValue(interpolate(pts, n.Val)), nil
	})
}

func interpolate(pts []Knot, x float64) []float64 {
	if x <= pts[0].X {
		return pts[0].Y
	}
	last := pts[len(pts)-1]
	if x >= last.X {
		return last.Y
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].X >= x })
	a, b := pts[i-1], pts[i]
	t := (x - a.X) / (b.X - a.X)
	out := make([]float64, len(a.Y))
	for k := range out {
		out[k] = a.Y[k] + t*(b.Y[k]-a.Y[k])
	}
	return out
}

func knotValue(y []float64) runtime.Value {
	if len(y) == 1 {
		return runtime.Num(y[0])
	}
	return runtime.Nums(y...)
}
