package modules

import (
	"math"

	"github.com/shkoo/ImplicitCAD/pkg/args"
	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

type (
	realOrFunc = args.Either[float64, args.Func[float64]]
	pairOrFunc = args.Either[runtime.Vec2, args.Func[runtime.Vec2]]
)

var (
	realOrFuncShape = args.EitherOf(args.Real, args.FuncOf(args.Real))
	pairOrFuncShape = args.EitherOf(args.Pair, args.FuncOf(args.Pair))
)

// funcReporter reports the first failing call of a script function used as
// an extrusion profile. Later failures in the same statement are silent.
type funcReporter struct {
	ctx      *Context
	module   string
	reported bool
}

func (r *funcReporter) fail(err error) {
	if r.reported {
		return
	}
	r.reported = true
	r.ctx.Report(kernel.Diagnostic{
		Severity: kernel.SeverityWarning,
		Code:     kernel.CodeFunctionResult,
		Module:   r.module,
		Message:  err.Error(),
	})
}

func evalFunc[T any](rep *funcReporter, f args.Func[T], x float64, def T) T {
	v, err := f.Call(x)
	if err != nil {
		rep.fail(err)
		return def
	}
	return v
}

func linearExtrudeModule() *Definition {
	height := args.Default("height", args.Real, 1).Doc("height to extrude to...")
	center := args.Default("center", args.Bool, false).Doc("center? (the z component)")
	twist := args.Default("twist", args.OptionalOf(realOrFuncShape), args.None[realOrFunc]()).
		Doc("twist as we extrude, either a total amount to twist or a function...")
	scale := args.Default("scale", args.OptionalOf(realOrFuncShape), args.None[realOrFunc]()).
		Doc("scale according to this function as we extrude...")
	translate := args.Default("translate", args.OptionalOf(pairOrFuncShape), args.None[pairOrFunc]()).
		Doc("translate according to this function as we extrude...")
	r := args.Default("r", args.Real, 0).Doc("round the top?")

	return &Definition{
		Name:       "linear_extrude",
		Doc:        "Extrudes the 2D objects of its suite along z. 3D objects in the suite are discarded.",
		TakesSuite: true,
		Signatures: []args.Signature{{height, center, twist, scale, translate, r}},
		Examples: []string{
			"linear_extrude(10) square(5);",
			"linear_extrude(height=10, twist=90) square(5, center=true);",
		},
		Body: func(b *args.Bound, suite Suite) Modifier {
			h, centered, rounding := height.Get(b), center.Get(b), r.Get(b)
			tw, sc, tr := twist.Get(b), scale.Get(b), translate.Get(b)
			frac := func(z float64) float64 {
				if h == 0 {
					return 1
				}
				return z / h
			}
			return func(ctx *Context, st runtime.State) runtime.State {
				rep := &funcReporter{ctx: ctx, module: "linear_extrude"}
				profile := kernel.Profile{
					Twist:     twistProfile(rep, tw, frac),
					Scale:     scaleProfile(rep, sc, frac),
					Translate: translateProfile(rep, tr, frac),
				}
				return LiftSuite(suite, func(k kernel.Kernel, o kernel.Obj2) kernel.Obj3 {
					var obj kernel.Obj3
					if profile.Empty() {
						obj = k.ExtrudeR(rounding, o, h)
					} else {
						obj = k.ExtrudeRM(rounding, profile, o, h)
					}
					if centered {
						obj = k.Translate3(runtime.Vec3{0, 0, -h / 2}, obj)
					}
					return obj
				})(ctx, st)
			}
		},
	}
}

func twistProfile(rep *funcReporter, opt args.Option[realOrFunc], frac func(float64) float64) func(float64) float64 {
	e, ok := opt.Get()
	if !ok {
		return nil
	}
	if f, isFunc := e.Right(); isFunc {
		return func(z float64) float64 { return deg2rad(evalFunc(rep, f, z, 0)) }
	}
	total, _ := e.Left()
	if total == 0 {
		return nil
	}
	return func(z float64) float64 { return deg2rad(total * frac(z)) }
}

func scaleProfile(rep *funcReporter, opt args.Option[realOrFunc], frac func(float64) float64) func(float64) float64 {
	e, ok := opt.Get()
	if !ok {
		return nil
	}
	if f, isFunc := e.Right(); isFunc {
		return func(z float64) float64 { return evalFunc(rep, f, z, 1) }
	}
	final, _ := e.Left()
	if final == 1 {
		return nil
	}
	return func(z float64) float64 { return 1 + (final-1)*frac(z) }
}

func translateProfile(rep *funcReporter, opt args.Option[pairOrFunc], frac func(float64) float64) func(float64) runtime.Vec2 {
	e, ok := opt.Get()
	if !ok {
		return nil
	}
	if f, isFunc := e.Right(); isFunc {
		return func(z float64) runtime.Vec2 { return evalFunc(rep, f, z, runtime.Vec2{}) }
	}
	end, _ := e.Left()
	if end == (runtime.Vec2{}) {
		return nil
	}
	return func(z float64) runtime.Vec2 {
		t := frac(z)
		return runtime.Vec2{end[0] * t, end[1] * t}
	}
}

// notWholeTurns reports whether deg is not a multiple of 360.
func notWholeTurns(deg float64) bool {
	return 360*math.Round(deg/360) != deg
}

func rotateExtrudeModule() *Definition {
	a := args.Default("a", args.Real, 360).Doc("angle to sweep")
	r := args.Default("r", args.Real, 0).Doc("rounding of the caps")
	translate := args.Default("translate", pairOrFuncShape, args.Left[runtime.Vec2, args.Func[runtime.Vec2]](runtime.Vec2{0, 0})).
		Doc("translate according to this function as we sweep")
	rotate := args.Default("rotate", realOrFuncShape, args.Left[float64, args.Func[float64]](0)).
		Doc("rotate around the sweep axis according to this function as we sweep")

	return &Definition{
		Name:       "rotate_extrude",
		Doc:        "Sweeps the 2D objects of its suite around the z axis. 3D objects in the suite are discarded.",
		TakesSuite: true,
		Signatures: []args.Signature{{a, r, translate, rotate}},
		Examples: []string{
			"rotate_extrude() translate(20) circle(10);",
			"rotate_extrude(a=180, r=1) translate(10) square(3);",
		},
		Body: func(b *args.Bound, suite Suite) Modifier {
			total, rounding := a.Get(b), r.Get(b)
			tr, rot := translate.Get(b), rotate.Get(b)
			frac := func(deg float64) float64 {
				if total == 0 {
					return 1
				}
				return deg / total
			}
			return func(ctx *Context, st runtime.State) runtime.State {
				rep := &funcReporter{ctx: ctx, module: "rotate_extrude"}
				capped := notWholeTurns(total)
				var sweep kernel.Sweep

				if f, isFunc := tr.Right(); isFunc {
					capped = capped || evalFunc(rep, f, 0, runtime.Vec2{}) != evalFunc(rep, f, total, runtime.Vec2{})
					sweep.Translate = func(theta float64) runtime.Vec2 {
						return evalFunc(rep, f, rad2deg(theta), runtime.Vec2{})
					}
				} else if end, _ := tr.Left(); end != (runtime.Vec2{}) {
					capped = true
					sweep.Translate = func(theta float64) runtime.Vec2 {
						t := frac(rad2deg(theta))
						return runtime.Vec2{end[0] * t, end[1] * t}
					}
				}

				if f, isFunc := rot.Right(); isFunc {
					capped = capped || notWholeTurns(evalFunc(rep, f, 0, 0)-evalFunc(rep, f, total, 0))
					sweep.Rotate = func(theta float64) float64 {
						return deg2rad(evalFunc(rep, f, rad2deg(theta), 0))
					}
				} else if end, _ := rot.Left(); end != 0 {
					capped = capped || notWholeTurns(end)
					sweep.Rotate = func(theta float64) float64 {
						return deg2rad(end * frac(rad2deg(theta)))
					}
				}

				var capR *float64
				if capped {
					capR = &rounding
				}
				return LiftSuite(suite, func(k kernel.Kernel, o kernel.Obj2) kernel.Obj3 {
					return k.RotateExtrude(deg2rad(total), capR, sweep, o)
				})(ctx, st)
			}
		},
	}
}
