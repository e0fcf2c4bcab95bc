package outline

import (
	"math"
	"strings"

	"github.com/gogpu/gg"

	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

func (k *Kernel) RectR(r float64, lo, hi kernel.Vec2) kernel.Obj2 {
	x0, x1 := math.Min(lo[0], hi[0]), math.Max(lo[0], hi[0])
	y0, y1 := math.Min(lo[1], hi[1]), math.Max(lo[1], hi[1])
	p := gg.NewPath()
	if r > 0 {
		p.RoundedRectangle(x0, y0, x1-x0, y1-y0, r)
	} else {
		p.Rectangle(x0, y0, x1-x0, y1-y0)
	}
	args := []string{vec2(runtime.Vec2{x0, y0}), vec2(runtime.Vec2{x1, y1})}
	if r > 0 {
		args = append(args, "r="+num(r))
	}
	return &Shape2{Path: p, Expr: call("square", args...)}
}

func (k *Kernel) Circle(r float64) kernel.Obj2 {
	p := gg.NewPath()
	p.Circle(0, 0, r)
	return &Shape2{Path: p, Expr: call("circle", num(r))}
}

func (k *Kernel) PolygonR(r float64, points []kernel.Vec2) kernel.Obj2 {
	p := gg.NewPath()
	pts := make([]string, len(points))
	for i, pt := range points {
		if i == 0 {
			p.MoveTo(pt[0], pt[1])
		} else {
			p.LineTo(pt[0], pt[1])
		}
		pts[i] = vec2(pt)
	}
	if len(points) > 0 {
		p.Close()
	}
	args := []string{"[" + strings.Join(pts, ", ") + "]"}
	if r > 0 {
		args = append(args, "r="+num(r))
	}
	return &Shape2{Path: p, Expr: call("polygon", args...)}
}

func (k *Kernel) RectR3(r float64, lo, hi kernel.Vec3) kernel.Obj3 {
	lo, hi = normalize(lo, hi)
	args := []string{vec3(lo), vec3(hi)}
	if r > 0 {
		args = append(args, "r="+num(r))
	}
	return &Solid3{Min: lo, Max: hi, Expr: call("cube", args...)}
}

func (k *Kernel) Sphere(r float64) kernel.Obj3 {
	r = math.Abs(r)
	return &Solid3{
		Min:  runtime.Vec3{-r, -r, -r},
		Max:  runtime.Vec3{r, r, r},
		Expr: call("sphere", num(r)),
	}
}

func (k *Kernel) Cylinder2(rb, rt, h float64) kernel.Obj3 {
	m := math.Max(math.Abs(rb), math.Abs(rt))
	lo, hi := normalize(runtime.Vec3{-m, -m, 0}, runtime.Vec3{m, m, h})
	return &Solid3{
		Min:  lo,
		Max:  hi,
		Expr: call("cylinder", "r1="+num(rb), "r2="+num(rt), "h="+num(h)),
	}
}
