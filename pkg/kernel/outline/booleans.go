package outline

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

func head(name string, r float64) string {
	if r > 0 {
		return call(name, "r="+num(r))
	}
	return call(name)
}

func union2(name string, r float64, objs []kernel.Obj2) (kernel.Obj2, bool) {
	if len(objs) == 0 {
		return nil, false
	}
	p := gg.NewPath()
	pad := 0.0
	for _, o := range objs {
		s := as2(o)
		appendPath(p, s.Path)
		pad = math.Max(pad, s.Pad)
	}
	return &Shape2{Path: p, Pad: pad, Expr: block(head(name, r), exprs2(objs))}, true
}

func union3(name string, r float64, objs []kernel.Obj3) (kernel.Obj3, bool) {
	if len(objs) == 0 {
		return nil, false
	}
	pts := make([]runtime.Vec3, 0, 2*len(objs))
	for _, o := range objs {
		s := as3(o)
		pts = append(pts, s.Min, s.Max)
	}
	lo, hi := hull(pts)
	return &Solid3{Min: lo, Max: hi, Expr: block(head(name, r), exprs3(objs))}, true
}

func intersect2(name string, r float64, objs []kernel.Obj2) (kernel.Obj2, bool) {
	if len(objs) == 0 {
		return nil, false
	}
	box := as2(objs[0]).Bounds()
	for _, o := range objs[1:] {
		b := as2(o).Bounds()
		box.Min = gg.Pt(math.Max(box.Min.X, b.Min.X), math.Max(box.Min.Y, b.Min.Y))
		box.Max = gg.Pt(math.Min(box.Max.X, b.Max.X), math.Min(box.Max.Y, b.Max.Y))
	}
	p := gg.NewPath()
	if box.Max.X > box.Min.X && box.Max.Y > box.Min.Y {
		p.Rectangle(box.Min.X, box.Min.Y, box.Width(), box.Height())
	}
	return &Shape2{Path: p, Expr: block(head(name, r), exprs2(objs))}, true
}

func intersect3(name string, r float64, objs []kernel.Obj3) (kernel.Obj3, bool) {
	if len(objs) == 0 {
		return nil, false
	}
	first := as3(objs[0])
	lo, hi := first.Min, first.Max
	for _, o := range objs[1:] {
		s := as3(o)
		for i := range lo {
			lo[i] = math.Max(lo[i], s.Min[i])
			hi[i] = math.Min(hi[i], s.Max[i])
		}
	}
	for i := range lo {
		if hi[i] < lo[i] {
			hi[i] = lo[i]
		}
	}
	return &Solid3{Min: lo, Max: hi, Expr: block(head(name, r), exprs3(objs))}, true
}

func difference2(name string, r float64, objs []kernel.Obj2) (kernel.Obj2, bool) {
	if len(objs) == 0 {
		return nil, false
	}
	first := as2(objs[0])
	return &Shape2{Path: first.Path.Clone(), Pad: first.Pad, Expr: block(head(name, r), exprs2(objs))}, true
}

func difference3(name string, r float64, objs []kernel.Obj3) (kernel.Obj3, bool) {
	if len(objs) == 0 {
		return nil, false
	}
	first := as3(objs[0])
	return &Solid3{Min: first.Min, Max: first.Max, Expr: block(head(name, r), exprs3(objs))}, true
}

func (k *Kernel) Union2(objs []kernel.Obj2) (kernel.Obj2, bool) { return union2("union", 0, objs) }
func (k *Kernel) Union3(objs []kernel.Obj3) (kernel.Obj3, bool) { return union3("union", 0, objs) }

func (k *Kernel) UnionR2(r float64, objs []kernel.Obj2) (kernel.Obj2, bool) {
	return union2("union", r, objs)
}

func (k *Kernel) UnionR3(r float64, objs []kernel.Obj3) (kernel.Obj3, bool) {
	return union3("union", r, objs)
}

func (k *Kernel) Intersect2(objs []kernel.Obj2) (kernel.Obj2, bool) {
	return intersect2("intersection", 0, objs)
}

func (k *Kernel) Intersect3(objs []kernel.Obj3) (kernel.Obj3, bool) {
	return intersect3("intersection", 0, objs)
}

func (k *Kernel) IntersectR2(r float64, objs []kernel.Obj2) (kernel.Obj2, bool) {
	return intersect2("intersection", r, objs)
}

func (k *Kernel) IntersectR3(r float64, objs []kernel.Obj3) (kernel.Obj3, bool) {
	return intersect3("intersection", r, objs)
}

func (k *Kernel) Difference2(objs []kernel.Obj2) (kernel.Obj2, bool) {
	return difference2("difference", 0, objs)
}

func (k *Kernel) Difference3(objs []kernel.Obj3) (kernel.Obj3, bool) {
	return difference3("difference", 0, objs)
}

func (k *Kernel) DifferenceR2(r float64, objs []kernel.Obj2) (kernel.Obj2, bool) {
	return difference2("difference", r, objs)
}

func (k *Kernel) DifferenceR3(r float64, objs []kernel.Obj3) (kernel.Obj3, bool) {
	return difference3("difference", r, objs)
}
