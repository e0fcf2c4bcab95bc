// Package outline is a reference geometry kernel. 2D objects keep an exact
// outline as a gg path; 3D objects keep an axis-aligned bounding box. Every
// object also carries the CSG expression that produced it, so scenes can be
// printed and compared without a full implicit-surface backend.
//
// Booleans other than union are approximated conservatively: intersections
// clip to the overlapping bounds and differences keep the first operand.
package outline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"

	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

var _ kernel.Kernel = (*Kernel)(nil)

// Shape2 is a planar object.
type Shape2 struct {
	Path *gg.Path
	// Pad grows the bounds beyond the path, as produced by shelling.
	Pad  float64
	Expr string
}

// Bounds returns the axis-aligned extent of the shape.
func (s *Shape2) Bounds() gg.Rect {
	if s.Path == nil {
		return gg.Rect{}
	}
	b := s.Path.BoundingBox()
	if s.Pad != 0 {
		b.Min = b.Min.Sub(gg.Pt(s.Pad, s.Pad))
		b.Max = b.Max.Add(gg.Pt(s.Pad, s.Pad))
	}
	return b
}

func (s *Shape2) String() string { return s.Expr }

// Solid3 is a spatial object reduced to its bounding box.
type Solid3 struct {
	Min, Max runtime.Vec3
	Expr     string
}

// Size returns the edge lengths of the box.
func (s *Solid3) Size() runtime.Vec3 {
	return runtime.Vec3{s.Max[0] - s.Min[0], s.Max[1] - s.Min[1], s.Max[2] - s.Min[2]}
}

func (s *Solid3) String() string { return s.Expr }

// Option configures a Kernel.
type Option func(*Kernel)

// WithPackGrid sets the resolution packing measures object footprints in.
// Non-positive values are ignored.
func WithPackGrid(step float64) Option {
	return func(k *Kernel) {
		if step > 0 {
			k.grid = step
		}
	}
}

// WithSamples sets how many steps extrusions sample their profile functions
// at when computing bounds.
func WithSamples(n int) Option {
	return func(k *Kernel) {
		if n > 0 {
			k.samples = n
		}
	}
}

// Kernel implements kernel.Kernel over Shape2 and Solid3.
type Kernel struct {
	grid    float64
	samples int
}

// New returns a kernel packing on a unit grid.
func New(opts ...Option) *Kernel {
	k := &Kernel{grid: 1, samples: 16}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Grid is the packing resolution.
func (k *Kernel) Grid() float64 { return k.grid }

func as2(obj kernel.Obj2) *Shape2 {
	s, ok := obj.(*Shape2)
	if !ok {
		panic(fmt.Sprintf("outline: foreign 2D object %T", obj))
	}
	return s
}

func as3(obj kernel.Obj3) *Solid3 {
	s, ok := obj.(*Solid3)
	if !ok {
		panic(fmt.Sprintf("outline: foreign 3D object %T", obj))
	}
	return s
}

// appendPath replays src's elements onto dst.
func appendPath(dst, src *gg.Path) {
	if src == nil {
		return
	}
	for _, el := range src.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			dst.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			dst.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			dst.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			dst.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			dst.Close()
		}
	}
}

func transform2(s *Shape2, m gg.Matrix, expr string) *Shape2 {
	return &Shape2{Path: s.Path.Transform(m), Pad: s.Pad, Expr: expr}
}

func normalize(lo, hi runtime.Vec3) (runtime.Vec3, runtime.Vec3) {
	for i := range lo {
		if lo[i] > hi[i] {
			lo[i], hi[i] = hi[i], lo[i]
		}
	}
	return lo, hi
}

func corners(s *Solid3) [8]runtime.Vec3 {
	var out [8]runtime.Vec3
	for i := range out {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				out[i][axis] = s.Max[axis]
			} else {
				out[i][axis] = s.Min[axis]
			}
		}
	}
	return out
}

func hull(points []runtime.Vec3) (runtime.Vec3, runtime.Vec3) {
	lo := runtime.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := runtime.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		for i := range p {
			lo[i] = math.Min(lo[i], p[i])
			hi[i] = math.Max(hi[i], p[i])
		}
	}
	return lo, hi
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

func num(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func vec2(v runtime.Vec2) string { return "[" + num(v[0]) + ", " + num(v[1]) + "]" }

func vec3(v runtime.Vec3) string {
	return "[" + num(v[0]) + ", " + num(v[1]) + ", " + num(v[2]) + "]"
}

func call(name string, args ...string) string {
	return name + "(" + strings.Join(args, ", ") + ")"
}

func block(head string, children []string) string {
	var b strings.Builder
	b.WriteString(head)
	b.WriteByte('{')
	for _, c := range children {
		b.WriteString(c)
		b.WriteByte(';')
	}
	b.WriteByte('}')
	return b.String()
}

func exprs2(objs []kernel.Obj2) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = as2(o).Expr
	}
	return out
}

func exprs3(objs []kernel.Obj3) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = as3(o).Expr
	}
	return out
}
