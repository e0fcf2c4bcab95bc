package modules

import (
	"fmt"
	"strings"

	"github.com/shkoo/ImplicitCAD/pkg/kernel"
)

// fakeKernel records every call. Its objects are the recorded call strings.
type fakeKernel struct {
	calls   []string
	packOK  bool
	profile kernel.Profile
	sweep   kernel.Sweep
	capR    *float64
}

var _ kernel.Kernel = (*fakeKernel)(nil)

func (f *fakeKernel) rec(format string, a ...any) string {
	s := fmt.Sprintf(format, a...)
	f.calls = append(f.calls, s)
	return s
}

// count returns how many calls start with prefix.
func (f *fakeKernel) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeKernel) RectR(r float64, lo, hi kernel.Vec2) kernel.Obj2 {
	return f.rec("RectR(%g, %v, %v)", r, lo, hi)
}
func (f *fakeKernel) Circle(r float64) kernel.Obj2 { return f.rec("Circle(%g)", r) }
func (f *fakeKernel) PolygonR(r float64, pts []kernel.Vec2) kernel.Obj2 {
	return f.rec("PolygonR(%g, %d)", r, len(pts))
}

func (f *fakeKernel) RectR3(r float64, lo, hi kernel.Vec3) kernel.Obj3 {
	return f.rec("RectR3(%g, %v, %v)", r, lo, hi)
}
func (f *fakeKernel) Sphere(r float64) kernel.Obj3 { return f.rec("Sphere(%g)", r) }
func (f *fakeKernel) Cylinder2(rb, rt, h float64) kernel.Obj3 {
	return f.rec("Cylinder2(%g, %g, %g)", rb, rt, h)
}

func (f *fakeKernel) Translate2(v kernel.Vec2, o kernel.Obj2) kernel.Obj2 {
	return f.rec("Translate2(%v, %v)", v, o)
}
func (f *fakeKernel) Translate3(v kernel.Vec3, o kernel.Obj3) kernel.Obj3 {
	return f.rec("Translate3(%v, %v)", v, o)
}
func (f *fakeKernel) Scale2(v kernel.Vec2, o kernel.Obj2) kernel.Obj2 {
	return f.rec("Scale2(%v, %v)", v, o)
}
func (f *fakeKernel) Scale3(v kernel.Vec3, o kernel.Obj3) kernel.Obj3 {
	return f.rec("Scale3(%v, %v)", v, o)
}
func (f *fakeKernel) Rotate2(theta float64, o kernel.Obj2) kernel.Obj2 {
	return f.rec("Rotate2(%g, %v)", theta, o)
}
func (f *fakeKernel) Rotate3(angles kernel.Vec3, o kernel.Obj3) kernel.Obj3 {
	return f.rec("Rotate3(%v, %v)", angles, o)
}
func (f *fakeKernel) Rotate3V(theta float64, axis kernel.Vec3, o kernel.Obj3) kernel.Obj3 {
	return f.rec("Rotate3V(%g, %v, %v)", theta, axis, o)
}
func (f *fakeKernel) Shell2(w float64, o kernel.Obj2) kernel.Obj2 { return f.rec("Shell2(%g, %v)", w, o) }
func (f *fakeKernel) Shell3(w float64, o kernel.Obj3) kernel.Obj3 { return f.rec("Shell3(%g, %v)", w, o) }

func (f *fakeKernel) reduce(name string, n int) (string, bool) {
	return f.rec("%s(%d)", name, n), n > 0
}

func (f *fakeKernel) Union2(objs []kernel.Obj2) (kernel.Obj2, bool) { return f.reduce("Union2", len(objs)) }
func (f *fakeKernel) Union3(objs []kernel.Obj3) (kernel.Obj3, bool) { return f.reduce("Union3", len(objs)) }
func (f *fakeKernel) UnionR2(r float64, objs []kernel.Obj2) (kernel.Obj2, bool) {
	return f.reduce(fmt.Sprintf("UnionR2[%g]", r), len(objs))
}
func (f *fakeKernel) UnionR3(r float64, objs []kernel.Obj3) (kernel.Obj3, bool) {
	return f.reduce(fmt.Sprintf("UnionR3[%g]", r), len(objs))
}
func (f *fakeKernel) Intersect2(objs []kernel.Obj2) (kernel.Obj2, bool) {
	return f.reduce("Intersect2", len(objs))
}
func (f *fakeKernel) Intersect3(objs []kernel.Obj3) (kernel.Obj3, bool) {
	return f.reduce("Intersect3", len(objs))
}
func (f *fakeKernel) IntersectR2(r float64, objs []kernel.Obj2) (kernel.Obj2, bool) {
	return f.reduce(fmt.Sprintf("IntersectR2[%g]", r), len(objs))
}
func (f *fakeKernel) IntersectR3(r float64, objs []kernel.Obj3) (kernel.Obj3, bool) {
	return f.reduce(fmt.Sprintf("IntersectR3[%g]", r), len(objs))
}
func (f *fakeKernel) Difference2(objs []kernel.Obj2) (kernel.Obj2, bool) {
	return f.reduce("Difference2", len(objs))
}
func (f *fakeKernel) Difference3(objs []kernel.Obj3) (kernel.Obj3, bool) {
	return f.reduce("Difference3", len(objs))
}
func (f *fakeKernel) DifferenceR2(r float64, objs []kernel.Obj2) (kernel.Obj2, bool) {
	return f.reduce(fmt.Sprintf("DifferenceR2[%g]", r), len(objs))
}
func (f *fakeKernel) DifferenceR3(r float64, objs []kernel.Obj3) (kernel.Obj3, bool) {
	return f.reduce(fmt.Sprintf("DifferenceR3[%g]", r), len(objs))
}

func (f *fakeKernel) ExtrudeR(r float64, o kernel.Obj2, h float64) kernel.Obj3 {
	return f.rec("ExtrudeR(%g, %v, %g)", r, o, h)
}

// ExtrudeRM samples the profile at both ends, as a real kernel would.
func (f *fakeKernel) ExtrudeRM(r float64, p kernel.Profile, o kernel.Obj2, h float64) kernel.Obj3 {
	f.profile = p
	for _, z := range []float64{0, h} {
		if p.Twist != nil {
			p.Twist(z)
		}
		if p.Scale != nil {
			p.Scale(z)
		}
		if p.Translate != nil {
			p.Translate(z)
		}
	}
	return f.rec("ExtrudeRM(%g, %v, %g)", r, o, h)
}

func (f *fakeKernel) RotateExtrude(total float64, capR *float64, sweep kernel.Sweep, o kernel.Obj2) kernel.Obj3 {
	f.capR, f.sweep = capR, sweep
	return f.rec("RotateExtrude(%g, %v)", total, o)
}

func (f *fakeKernel) Pack2(size kernel.Vec2, sep float64, objs []kernel.Obj2) (kernel.Obj2, bool) {
	return f.rec("Pack2(%v, %g, %d)", size, sep, len(objs)), f.packOK
}

func (f *fakeKernel) Pack3(size kernel.Vec2, sep float64, objs []kernel.Obj3) (kernel.Obj3, bool) {
	return f.rec("Pack3(%v, %g, %d)", size, sep, len(objs)), f.packOK
}
