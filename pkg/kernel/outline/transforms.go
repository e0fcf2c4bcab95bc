package outline

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

func (k *Kernel) Translate2(v kernel.Vec2, obj kernel.Obj2) kernel.Obj2 {
	s := as2(obj)
	return transform2(s, gg.Translate(v[0], v[1]), block(call("translate", vec2(v)), []string{s.Expr}))
}

func (k *Kernel) Translate3(v kernel.Vec3, obj kernel.Obj3) kernel.Obj3 {
	s := as3(obj)
	var lo, hi runtime.Vec3
	for i := range v {
		lo[i] = s.Min[i] + v[i]
		hi[i] = s.Max[i] + v[i]
	}
	return &Solid3{Min: lo, Max: hi, Expr: block(call("translate", vec3(v)), []string{s.Expr})}
}

func (k *Kernel) Scale2(v kernel.Vec2, obj kernel.Obj2) kernel.Obj2 {
	s := as2(obj)
	out := transform2(s, gg.Scale(v[0], v[1]), block(call("scale", vec2(v)), []string{s.Expr}))
	out.Pad = s.Pad * math.Max(math.Abs(v[0]), math.Abs(v[1]))
	return out
}

func (k *Kernel) Scale3(v kernel.Vec3, obj kernel.Obj3) kernel.Obj3 {
	s := as3(obj)
	var lo, hi runtime.Vec3
	for i := range v {
		lo[i] = s.Min[i] * v[i]
		hi[i] = s.Max[i] * v[i]
	}
	lo, hi = normalize(lo, hi)
	return &Solid3{Min: lo, Max: hi, Expr: block(call("scale", vec3(v)), []string{s.Expr})}
}

func (k *Kernel) Rotate2(theta float64, obj kernel.Obj2) kernel.Obj2 {
	s := as2(obj)
	return transform2(s, gg.Rotate(theta), block(call("rotate", num(theta)), []string{s.Expr}))
}

func (k *Kernel) Rotate3(angles kernel.Vec3, obj kernel.Obj3) kernel.Obj3 {
	s := as3(obj)
	rotate := func(p runtime.Vec3) runtime.Vec3 {
		p = rotateAxis(p, 1, 2, angles[0])
		p = rotateAxis(p, 2, 0, angles[1])
		return rotateAxis(p, 0, 1, angles[2])
	}
	return rotateBox(s, rotate, block(call("rotate", vec3(angles)), []string{s.Expr}))
}

func (k *Kernel) Rotate3V(theta float64, axis kernel.Vec3, obj kernel.Obj3) kernel.Obj3 {
	s := as3(obj)
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	expr := block(call("rotate", "a="+num(theta), "v="+vec3(axis)), []string{s.Expr})
	if n == 0 {
		return &Solid3{Min: s.Min, Max: s.Max, Expr: expr}
	}
	u := runtime.Vec3{axis[0] / n, axis[1] / n, axis[2] / n}
	cos, sin := math.Cos(theta), math.Sin(theta)
	// Rodrigues: p cos + (u x p) sin + u (u . p)(1 - cos)
	rotate := func(p runtime.Vec3) runtime.Vec3 {
		cross := runtime.Vec3{
			u[1]*p[2] - u[2]*p[1],
			u[2]*p[0] - u[0]*p[2],
			u[0]*p[1] - u[1]*p[0],
		}
		dot := u[0]*p[0] + u[1]*p[1] + u[2]*p[2]
		var out runtime.Vec3
		for i := range out {
			out[i] = p[i]*cos + cross[i]*sin + u[i]*dot*(1-cos)
		}
		return out
	}
	return rotateBox(s, rotate, expr)
}

// rotateAxis rotates p in the plane spanned by axes a and b.
func rotateAxis(p runtime.Vec3, a, b int, theta float64) runtime.Vec3 {
	if theta == 0 {
		return p
	}
	cos, sin := math.Cos(theta), math.Sin(theta)
	pa, pb := p[a], p[b]
	p[a] = pa*cos - pb*sin
	p[b] = pa*sin + pb*cos
	return p
}

func rotateBox(s *Solid3, rotate func(runtime.Vec3) runtime.Vec3, expr string) *Solid3 {
	pts := corners(s)
	moved := make([]runtime.Vec3, len(pts))
	for i, p := range pts {
		moved[i] = rotate(p)
	}
	lo, hi := hull(moved)
	return &Solid3{Min: lo, Max: hi, Expr: expr}
}

func (k *Kernel) Shell2(w float64, obj kernel.Obj2) kernel.Obj2 {
	s := as2(obj)
	return &Shape2{Path: s.Path.Clone(), Pad: s.Pad + math.Abs(w)/2, Expr: block(call("shell", num(w)), []string{s.Expr})}
}

func (k *Kernel) Shell3(w float64, obj kernel.Obj3) kernel.Obj3 {
	s := as3(obj)
	d := math.Abs(w) / 2
	return &Solid3{
		Min:  runtime.Vec3{s.Min[0] - d, s.Min[1] - d, s.Min[2] - d},
		Max:  runtime.Vec3{s.Max[0] + d, s.Max[1] + d, s.Max[2] + d},
		Expr: block(call("shell", num(w)), []string{s.Expr}),
	}
}
