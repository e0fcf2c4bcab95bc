package outline

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

func extrudeHead(r, h float64, extra ...string) string {
	args := []string{"height=" + num(h)}
	args = append(args, extra...)
	if r > 0 {
		args = append(args, "r="+num(r))
	}
	return call("linear_extrude", args...)
}

func (k *Kernel) ExtrudeR(r float64, obj kernel.Obj2, h float64) kernel.Obj3 {
	s := as2(obj)
	b := s.Bounds()
	lo, hi := normalize(runtime.Vec3{b.Min.X, b.Min.Y, 0}, runtime.Vec3{b.Max.X, b.Max.Y, h})
	return &Solid3{Min: lo, Max: hi, Expr: block(extrudeHead(r, h), []string{s.Expr})}
}

// ExtrudeRM bounds the extrusion by sampling the profile at evenly spaced
// heights and taking the hull of the transformed outline bounds.
func (k *Kernel) ExtrudeRM(r float64, profile kernel.Profile, obj kernel.Obj2, h float64) kernel.Obj3 {
	s := as2(obj)
	if profile.Empty() {
		return k.ExtrudeR(r, obj, h)
	}
	var extra []string
	if profile.Twist != nil {
		extra = append(extra, "twist=<function>")
	}
	if profile.Scale != nil {
		extra = append(extra, "scale=<function>")
	}
	if profile.Translate != nil {
		extra = append(extra, "translate=<function>")
	}
	pts := make([]runtime.Vec3, 0, 2*(k.samples+1))
	for i := 0; i <= k.samples; i++ {
		z := h * float64(i) / float64(k.samples)
		m := gg.Identity()
		if profile.Translate != nil {
			t := profile.Translate(z)
			m = m.Multiply(gg.Translate(t[0], t[1]))
		}
		if profile.Twist != nil {
			m = m.Multiply(gg.Rotate(profile.Twist(z)))
		}
		if profile.Scale != nil {
			sc := profile.Scale(z)
			m = m.Multiply(gg.Scale(sc, sc))
		}
		b := (&Shape2{Path: s.Path.Transform(m), Pad: s.Pad}).Bounds()
		pts = append(pts, runtime.Vec3{b.Min.X, b.Min.Y, z}, runtime.Vec3{b.Max.X, b.Max.Y, z})
	}
	lo, hi := hull(pts)
	return &Solid3{Min: lo, Max: hi, Expr: block(extrudeHead(r, h, extra...), []string{s.Expr})}
}

// RotateExtrude bounds the sweep by the largest radius the outline reaches
// over the sampled angles.
func (k *Kernel) RotateExtrude(total float64, capR *float64, sweep kernel.Sweep, obj kernel.Obj2) kernel.Obj3 {
	s := as2(obj)
	radius := 0.0
	zlo, zhi := math.Inf(1), math.Inf(-1)
	for i := 0; i <= k.samples; i++ {
		theta := total * float64(i) / float64(k.samples)
		m := gg.Identity()
		if sweep.Translate != nil {
			t := sweep.Translate(theta)
			m = m.Multiply(gg.Translate(t[0], t[1]))
		}
		if sweep.Rotate != nil {
			m = m.Multiply(gg.Rotate(sweep.Rotate(theta)))
		}
		b := (&Shape2{Path: s.Path.Transform(m), Pad: s.Pad}).Bounds()
		radius = math.Max(radius, math.Max(math.Abs(b.Min.X), math.Abs(b.Max.X)))
		zlo = math.Min(zlo, b.Min.Y)
		zhi = math.Max(zhi, b.Max.Y)
	}
	args := []string{"a=" + num(total)}
	if capR != nil {
		args = append(args, "cap="+num(*capR))
	}
	return &Solid3{
		Min:  runtime.Vec3{-radius, -radius, zlo},
		Max:  runtime.Vec3{radius, radius, zhi},
		Expr: block(call("rotate_extrude", args...), []string{s.Expr}),
	}
}
