package modules

import (
	"fmt"

	"github.com/shkoo/ImplicitCAD/pkg/args"
	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

// suiteFold is what a coerced transform argument resolves to: the fold to
// apply once the suite is known.
type suiteFold func(suite Suite) Modifier

func skipSuite(runtime.Value) suiteFold {
	return func(Suite) Modifier { return Identity }
}

func translation(v2 runtime.Vec2, v3 runtime.Vec3) suiteFold {
	return func(suite Suite) Modifier {
		return TransformSuite(suite,
			func(k kernel.Kernel, o kernel.Obj2) kernel.Obj2 { return k.Translate2(v2, o) },
			func(k kernel.Kernel, o kernel.Obj3) kernel.Obj3 { return k.Translate3(v3, o) },
		)
	}
}

func translateModule() *Definition {
	v := args.Required("v", args.NewCases(skipSuite,
		args.When(args.Triple, func(t runtime.Vec3) suiteFold {
			return translation(runtime.Vec2{t[0], t[1]}, t)
		}),
		args.When(args.Pair, func(p runtime.Vec2) suiteFold {
			return translation(p, runtime.Vec3{p[0], p[1], 0})
		}),
		args.When(args.Real, func(x float64) suiteFold {
			return translation(runtime.Vec2{x, 0}, runtime.Vec3{x, 0, 0})
		}),
	).Shape()).Doc("vector to translate by")

	return &Definition{
		Name:       "translate",
		Doc:        "Moves the objects of its suite.",
		TakesSuite: true,
		Signatures: []args.Signature{{v}},
		Examples:   []string{"translate([2,3]) circle(4);", "translate([5,6,7]) sphere(5);"},
		Body: func(b *args.Bound, suite Suite) Modifier {
			return v.Get(b)(suite)
		},
	}
}

// rotation is the resolved angle argument of rotate; axis is only used by a
// scalar angle.
type rotation func(axis runtime.Vec3, suite Suite) Modifier

func rotateModule() *Definition {
	a := args.Required("a", args.NewCases[rotation](nil,
		args.When(args.Real, func(deg float64) rotation {
			return func(axis runtime.Vec3, suite Suite) Modifier {
				theta := deg2rad(deg)
				return TransformSuite(suite,
					func(k kernel.Kernel, o kernel.Obj2) kernel.Obj2 { return k.Rotate2(theta, o) },
					func(k kernel.Kernel, o kernel.Obj3) kernel.Obj3 { return k.Rotate3V(theta, axis, o) },
				)
			}
		}),
		args.When(args.Triple, func(deg runtime.Vec3) rotation {
			return func(_ runtime.Vec3, suite Suite) Modifier {
				angles := runtime.Vec3{deg2rad(deg[0]), deg2rad(deg[1]), deg2rad(deg[2])}
				return TransformSuite(suite,
					func(k kernel.Kernel, o kernel.Obj2) kernel.Obj2 { return k.Rotate2(angles[2], o) },
					func(k kernel.Kernel, o kernel.Obj3) kernel.Obj3 { return k.Rotate3(angles, o) },
				)
			}
		}),
		args.When(args.Pair, func(deg runtime.Vec2) rotation {
			return func(_ runtime.Vec3, suite Suite) Modifier {
				angles := runtime.Vec3{deg2rad(deg[0]), deg2rad(deg[1]), 0}
				return TransformSuite(suite,
					func(_ kernel.Kernel, o kernel.Obj2) kernel.Obj2 { return o },
					func(k kernel.Kernel, o kernel.Obj3) kernel.Obj3 { return k.Rotate3(angles, o) },
				)
			}
		}),
	).Shape()).Doc("value to rotate by; angle or list of angles")
	v := args.Default("v", args.Triple, runtime.Vec3{0, 0, 1}).Doc("vector to rotate around if a is a single angle")

	return &Definition{
		Name:       "rotate",
		Doc:        "Rotates the objects of its suite. Angles are in degrees.",
		TakesSuite: true,
		Signatures: []args.Signature{{a, v}},
		Examples:   []string{"rotate(45) square(5);", "rotate([45,45,45]) cube(5);", "rotate(90, [1,0,0]) cylinder(r=2, h=5);"},
		Body: func(b *args.Bound, suite Suite) Modifier {
			return a.Get(b)(v.Get(b), suite)
		},
	}
}

func scaling(v2 runtime.Vec2, v3 runtime.Vec3) suiteFold {
	return func(suite Suite) Modifier {
		return TransformSuite(suite,
			func(k kernel.Kernel, o kernel.Obj2) kernel.Obj2 { return k.Scale2(v2, o) },
			func(k kernel.Kernel, o kernel.Obj3) kernel.Obj3 { return k.Scale3(v3, o) },
		)
	}
}

func scaleModule() *Definition {
	v := args.Required("v", args.NewCases[suiteFold](nil,
		args.When(args.Real, func(x float64) suiteFold {
			return scaling(runtime.Vec2{x, x}, runtime.Vec3{x, x, x})
		}),
		args.When(args.Pair, func(p runtime.Vec2) suiteFold {
			return scaling(p, runtime.Vec3{p[0], p[1], 1})
		}),
		args.When(args.Triple, func(t runtime.Vec3) suiteFold {
			return scaling(runtime.Vec2{t[0], t[1]}, t)
		}),
	).Shape()).Doc("vector or scalar to scale by")

	return &Definition{
		Name:       "scale",
		Doc:        "Scales the objects of its suite.",
		TakesSuite: true,
		Signatures: []args.Signature{{v}},
		Examples:   []string{"scale(2) square(5);", "scale([2,3]) square(5);", "scale([2,3,4]) cube(5);"},
		Body: func(b *args.Bound, suite Suite) Modifier {
			return v.Get(b)(suite)
		},
	}
}

func shellModule() *Definition {
	w := args.Required("w", args.Real).Doc("width of the shell...")
	return &Definition{
		Name:       "shell",
		Doc:        "Replaces the objects of its suite with shells of the given width.",
		TakesSuite: true,
		Signatures: []args.Signature{{w}},
		Examples:   []string{"shell(0.5) sphere(5);"},
		Body: func(b *args.Bound, suite Suite) Modifier {
			width := w.Get(b)
			return TransformSuite(suite,
				func(k kernel.Kernel, o kernel.Obj2) kernel.Obj2 { return k.Shell2(width, o) },
				func(k kernel.Kernel, o kernel.Obj3) kernel.Obj3 { return k.Shell3(width, o) },
			)
		},
	}
}

// mmRatio is the length of one unit in millimetres.
func mmRatio(unit string) (float64, bool) {
	switch unit {
	case "inch", "in":
		return 25.4, true
	case "foot", "ft":
		return 304.8, true
	case "yard", "yd":
		return 914.4, true
	case "mm":
		return 1, true
	case "cm":
		return 10, true
	case "dm":
		return 100, true
	case "m":
		return 1000, true
	case "km":
		return 1000000, true
	case "µm", "um":
		return 0.001, true
	case "nm":
		return 0.000001, true
	default:
		return 0, false
	}
}

func unitModule() *Definition {
	unit := args.Required("unit", args.String).Doc("the unit you wish to work in")
	return &Definition{
		Name:       "unit",
		Doc:        "Interprets the lengths of its suite in the given unit, converting them to millimetres.",
		TakesSuite: true,
		Signatures: []args.Signature{{unit}},
		Examples:   []string{`unit("inch") cube(1);`},
		Body: func(b *args.Bound, suite Suite) Modifier {
			name := unit.Get(b)
			ratio, ok := mmRatio(name)
			if !ok {
				keep := TransformSuite(suite,
					func(_ kernel.Kernel, o kernel.Obj2) kernel.Obj2 { return o },
					func(_ kernel.Kernel, o kernel.Obj3) kernel.Obj3 { return o },
				)
				return func(ctx *Context, st runtime.State) runtime.State {
					ctx.Report(kernel.Diagnostic{
						Severity: kernel.SeverityWarning,
						Code:     kernel.CodeUnknownUnit,
						Module:   "unit",
						Message:  fmt.Sprintf("unrecognized unit %q; suite left unscaled", name),
					})
					return keep(ctx, st)
				}
			}
			return scaling(runtime.Vec2{ratio, ratio}, runtime.Vec3{ratio, ratio, ratio})(suite)
		},
	}
}
