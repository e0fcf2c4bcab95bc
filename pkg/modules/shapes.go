package modules

import (
	"fmt"
	"math"

	"github.com/shkoo/ImplicitCAD/pkg/args"
	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

type lengthOrInterval = args.Either[float64, runtime.Vec2]

var lengthOrIntervalShape = args.EitherOf(args.Real, args.Pair)

func span(center bool, e lengthOrInterval) (float64, float64) {
	if iv, ok := e.Right(); ok {
		return iv[0], iv[1]
	}
	w, _ := e.Left()
	return toInterval(center, w)
}

func regularPolygon(r float64, sides int) []runtime.Vec2 {
	pts := make([]runtime.Vec2, sides)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(sides)
		pts[i] = runtime.Vec2{r * math.Cos(theta), r * math.Sin(theta)}
	}
	return pts
}

func sphereModule() *Definition {
	r := args.Required("r", args.Real).Doc("radius of the sphere")
	return &Definition{
		Name:       "sphere",
		Doc:        "A sphere centered at the origin.",
		Signatures: []args.Signature{{r}},
		Examples:   []string{"sphere(3);", "sphere(r=5);"},
		Body: func(b *args.Bound, _ Suite) Modifier {
			radius := r.Get(b)
			return addObj3(func(k kernel.Kernel) kernel.Obj3 { return k.Sphere(radius) })
		},
	}
}

func cubeModule() *Definition {
	x := args.Required("x", lengthOrIntervalShape).Doc("x or x-interval")
	y := args.Required("y", lengthOrIntervalShape).Doc("y or y-interval")
	z := args.Required("z", lengthOrIntervalShape).Doc("z or z-interval")
	size := args.Required("size", args.EitherOf(args.Real, args.Triple)).Doc("cube size")
	center := args.Default("center", args.Bool, false).Doc("should center? (non-intervals)")
	r := args.Default("r", args.Real, 0).Doc("radius of rounding")

	return &Definition{
		Name:       "cube",
		Doc:        "A box, given either per-axis lengths or intervals, or one size.",
		Signatures: []args.Signature{{x, y, z, center, r}, {size, center, r}},
		Examples:   []string{"cube(size = [2,3,4], center = true, r = 0.5);", "cube(4);"},
		Body: func(b *args.Bound, _ Suite) Modifier {
			c := center.Get(b)
			var lo, hi runtime.Vec3
			if b.Signature() == 0 {
				lo[0], hi[0] = span(c, x.Get(b))
				lo[1], hi[1] = span(c, y.Get(b))
				lo[2], hi[2] = span(c, z.Get(b))
			} else {
				dims := runtime.Vec3{}
				s := size.Get(b)
				if v, ok := s.Right(); ok {
					dims = v
				} else {
					w, _ := s.Left()
					dims = runtime.Vec3{w, w, w}
				}
				for i, w := range dims {
					lo[i], hi[i] = toInterval(c, w)
				}
			}
			rounding := r.Get(b)
			return addObj3(func(k kernel.Kernel) kernel.Obj3 { return k.RectR3(rounding, lo, hi) })
		},
	}
}

func squareModule() *Definition {
	x := args.Required("x", lengthOrIntervalShape).Doc("x or x-interval")
	y := args.Required("y", lengthOrIntervalShape).Doc("y or y-interval")
	size := args.Required("size", lengthOrIntervalShape).Doc("square size")
	center := args.Default("center", args.Bool, false).Doc("should center? (non-intervals)")
	r := args.Default("r", args.Real, 0).Doc("radius of rounding")

	return &Definition{
		Name:       "square",
		Doc:        "A rectangle, given per-axis lengths or intervals, or one size.",
		Signatures: []args.Signature{{x, y, center, r}, {size, center, r}},
		Examples:   []string{"square(x=[-2,2], y=[-1,5]);", "square(size = [3,4], center = true, r = 0.5);", "square(4);"},
		Body: func(b *args.Bound, _ Suite) Modifier {
			c := center.Get(b)
			var lo, hi runtime.Vec2
			if b.Signature() == 0 {
				lo[0], hi[0] = span(c, x.Get(b))
				lo[1], hi[1] = span(c, y.Get(b))
			} else {
				s := size.Get(b)
				dims, ok := s.Right()
				if !ok {
					w, _ := s.Left()
					dims = runtime.Vec2{w, w}
				}
				for i, w := range dims {
					lo[i], hi[i] = toInterval(c, w)
				}
			}
			rounding := r.Get(b)
			return addObj2(func(k kernel.Kernel) kernel.Obj2 { return k.RectR(rounding, lo, hi) })
		},
	}
}

func cylinderModule() *Definition {
	r := args.Default("r", args.Real, 1).Doc("radius of cylinder")
	h := args.Default("h", lengthOrIntervalShape, args.Left[float64, runtime.Vec2](1)).Doc("height of cylinder")
	r1 := args.Default("r1", args.OptionalOf(args.Real), args.None[float64]()).Doc("bottom radius; overrides r")
	r2 := args.Default("r2", args.OptionalOf(args.Real), args.None[float64]()).Doc("top radius; overrides r")
	fn := args.Default("$fn", args.Natural, -1).Doc("number of sides, for making prisms")
	center := args.Default("center", args.Bool, false).Doc("center cylinder with respect to z?")

	return &Definition{
		Name:       "cylinder",
		Doc:        "A cylinder, cone frustum or prism along the z axis.",
		Signatures: []args.Signature{{r, h, r1, r2, fn, center}},
		Examples: []string{
			"cylinder(r=10, h=30, center=true);",
			"cylinder(r1=4, r2=6, h=10);",
			"cylinder(r=5, h=10, $fn = 6);",
		},
		Body: func(b *args.Bound, _ Suite) Modifier {
			radius := r.Get(b)
			rb := r1.Get(b).OrElse(radius)
			rt := r2.Get(b).OrElse(radius)
			sides := fn.Get(b)
			h1, h2 := span(center.Get(b), h.Get(b))
			dh := h2 - h1
			return addObj3(func(k kernel.Kernel) kernel.Obj3 {
				var obj kernel.Obj3
				if rb == rt {
					var base kernel.Obj2
					if sides < 3 {
						base = k.Circle(rb)
					} else {
						base = k.PolygonR(0, regularPolygon(rb, sides))
					}
					obj = k.ExtrudeR(0, base, dh)
				} else {
					obj = k.Cylinder2(rb, rt, dh)
				}
				if h1 != 0 {
					obj = k.Translate3(runtime.Vec3{0, 0, h1}, obj)
				}
				return obj
			})
		},
	}
}

func circleModule() *Definition {
	r := args.Required("r", args.Real).Doc("radius of the circle")
	fn := args.Default("$fn", args.Natural, -1).Doc("if defined, makes a regular polygon with n sides instead of a circle")
	return &Definition{
		Name:       "circle",
		Doc:        "A circle, or a regular polygon when $fn is at least 3.",
		Signatures: []args.Signature{{r, fn}},
		Examples:   []string{"circle(r=10); // circle", "circle(r=5, $fn=6); //hexagon"},
		Body: func(b *args.Bound, _ Suite) Modifier {
			radius, sides := r.Get(b), fn.Get(b)
			return addObj2(func(k kernel.Kernel) kernel.Obj2 {
				if sides < 3 {
					return k.Circle(radius)
				}
				return k.PolygonR(0, regularPolygon(radius, sides))
			})
		},
	}
}

func polygonModule() *Definition {
	points := args.Required("points", args.ListOf(args.Pair)).Doc("vertices of the polygon")
	paths := args.Default("paths", args.ListOf(args.Natural), []int{}).Doc("order to go through vertices; ignored for now")
	r := args.Default("r", args.Real, 0).Doc("rounding of the polygon corners")
	return &Definition{
		Name:       "polygon",
		Doc:        "A polygon through the given vertices.",
		Signatures: []args.Signature{{points, paths, r}},
		Examples:   []string{"polygon([[0,0], [0,10], [10,0]]);"},
		Body: func(b *args.Bound, _ Suite) Modifier {
			pts, rounding := points.Get(b), r.Get(b)
			if order := paths.Get(b); len(order) > 0 {
				return func(ctx *Context, st runtime.State) runtime.State {
					ctx.Report(kernel.Diagnostic{
						Severity: kernel.SeverityWarning,
						Code:     kernel.CodeUnsupportedPaths,
						Module:   "polygon",
						Message:  fmt.Sprintf("explicit paths are not supported; %d path indices ignored and no polygon produced", len(order)),
					})
					return st
				}
			}
			return addObj2(func(k kernel.Kernel) kernel.Obj2 { return k.PolygonR(rounding, pts) })
		},
	}
}
