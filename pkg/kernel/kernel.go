// Package kernel declares the geometry operations module bodies call. The
// objects they produce are opaque handles: modules count, order and replace
// them but never look inside.
package kernel

import "github.com/shkoo/ImplicitCAD/pkg/runtime"

type (
	Obj2 = runtime.Obj2
	Obj3 = runtime.Obj3
	Vec2 = runtime.Vec2
	Vec3 = runtime.Vec3
)

type Primitives2 interface {
	// RectR is the rectangle spanning lo..hi with corners rounded by r.
	RectR(r float64, lo, hi Vec2) Obj2
	Circle(r float64) Obj2
	PolygonR(r float64, points []Vec2) Obj2
}

type Primitives3 interface {
	RectR3(r float64, lo, hi Vec3) Obj3
	Sphere(r float64) Obj3
	// Cylinder2 is a frustum from z=0 to z=h with radii rb at the base and rt
	// at the top.
	Cylinder2(rb, rt, h float64) Obj3
}

// Transforms take angles in radians.
type Transforms interface {
	Translate2(v Vec2, obj Obj2) Obj2
	Translate3(v Vec3, obj Obj3) Obj3
	Scale2(v Vec2, obj Obj2) Obj2
	Scale3(v Vec3, obj Obj3) Obj3
	Rotate2(theta float64, obj Obj2) Obj2
	// Rotate3 rotates about x, then y, then z; angles are (yz, zx, xy).
	Rotate3(angles Vec3, obj Obj3) Obj3
	Rotate3V(theta float64, axis Vec3, obj Obj3) Obj3
	Shell2(w float64, obj Obj2) Obj2
	Shell3(w float64, obj Obj3) Obj3
}

// Booleans reduce an ordered sequence of objects to at most one. An empty
// sequence reports ok=false. The R variants round the seams by r.
type Booleans interface {
	Union2(objs []Obj2) (Obj2, bool)
	Union3(objs []Obj3) (Obj3, bool)
	UnionR2(r float64, objs []Obj2) (Obj2, bool)
	UnionR3(r float64, objs []Obj3) (Obj3, bool)

	Intersect2(objs []Obj2) (Obj2, bool)
	Intersect3(objs []Obj3) (Obj3, bool)
	IntersectR2(r float64, objs []Obj2) (Obj2, bool)
	IntersectR3(r float64, objs []Obj3) (Obj3, bool)

	Difference2(objs []Obj2) (Obj2, bool)
	Difference3(objs []Obj3) (Obj3, bool)
	DifferenceR2(r float64, objs []Obj2) (Obj2, bool)
	DifferenceR3(r float64, objs []Obj3) (Obj3, bool)
}

// Profile varies a linear extrusion with height z. Nil members leave that
// aspect constant. Twist is in radians.
type Profile struct {
	Twist     func(z float64) float64
	Scale     func(z float64) float64
	Translate func(z float64) Vec2
}

// Empty reports whether every member is nil.
func (p Profile) Empty() bool {
	return p.Twist == nil && p.Scale == nil && p.Translate == nil
}

// Sweep varies a rotational extrusion with the swept angle. Angles are in
// radians.
type Sweep struct {
	Translate func(theta float64) Vec2
	Rotate    func(theta float64) float64
}

type Extruders interface {
	ExtrudeR(r float64, obj Obj2, h float64) Obj3
	ExtrudeRM(r float64, profile Profile, obj Obj2, h float64) Obj3
	// RotateExtrude sweeps obj about the z axis through total radians. A
	// non-nil capR closes the open ends with that rounding.
	RotateExtrude(total float64, capR *float64, sweep Sweep, obj Obj2) Obj3
}

// Packer arranges objects inside a size box keeping sep between them. ok is
// false when the objects do not fit.
type Packer interface {
	Pack2(size Vec2, sep float64, objs []Obj2) (Obj2, bool)
	Pack3(size Vec2, sep float64, objs []Obj3) (Obj3, bool)
}

// Kernel is everything the module library needs from a geometry backend.
type Kernel interface {
	Primitives2
	Primitives3
	Transforms
	Booleans
	Extruders
	Packer
}
