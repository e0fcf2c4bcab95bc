package outline

import (
	"math"
	"slices"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text/msdf"

	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

// eps absorbs float noise in bounds before they are snapped to the grid.
const eps = 1e-9

type footprint struct {
	index int
	min   gg.Point
	w, h  int
}

// cells converts a length to grid cells, rounding items up.
func (k *Kernel) cells(length float64) int {
	return int(math.Ceil(length/k.grid - eps))
}

// place shelf-packs the footprints inside size. Tallest items go first. The
// returned offsets move each footprint's min corner to its slot and are
// indexed like the input.
func (k *Kernel) place(size runtime.Vec2, sep float64, items []footprint) ([]gg.Point, bool) {
	width := int(math.Floor(size[0]/k.grid + eps))
	height := int(math.Floor(size[1]/k.grid + eps))
	if width <= 0 || height <= 0 {
		return nil, false
	}
	alloc := msdf.NewShelfAllocator(width, height, max(k.cells(sep), 0))

	order := slices.Clone(items)
	slices.SortStableFunc(order, func(a, b footprint) int { return b.h - a.h })

	offsets := make([]gg.Point, len(items))
	for _, it := range order {
		if it.w > width || it.h > height {
			return nil, false
		}
		x, y, ok := alloc.Allocate(it.w, it.h)
		if !ok {
			return nil, false
		}
		offsets[it.index] = gg.Pt(float64(x)*k.grid-it.min.X, float64(y)*k.grid-it.min.Y)
	}
	return offsets, true
}

func packHead(size runtime.Vec2, sep float64) string {
	return call("pack", vec2(size), "sep="+num(sep))
}

func (k *Kernel) Pack2(size kernel.Vec2, sep float64, objs []kernel.Obj2) (kernel.Obj2, bool) {
	if len(objs) == 0 {
		return nil, false
	}
	items := make([]footprint, len(objs))
	for i, o := range objs {
		b := as2(o).Bounds()
		items[i] = footprint{index: i, min: b.Min, w: k.cells(b.Width()), h: k.cells(b.Height())}
	}
	offsets, ok := k.place(size, sep, items)
	if !ok {
		return nil, false
	}
	p := gg.NewPath()
	pad := 0.0
	for i, o := range objs {
		s := as2(o)
		appendPath(p, s.Path.Transform(gg.Translate(offsets[i].X, offsets[i].Y)))
		pad = math.Max(pad, s.Pad)
	}
	return &Shape2{Path: p, Pad: pad, Expr: block(packHead(size, sep), exprs2(objs))}, true
}

// Pack3 packs the xy footprints of the boxes; heights are kept.
func (k *Kernel) Pack3(size kernel.Vec2, sep float64, objs []kernel.Obj3) (kernel.Obj3, bool) {
	if len(objs) == 0 {
		return nil, false
	}
	items := make([]footprint, len(objs))
	for i, o := range objs {
		s := as3(o)
		sz := s.Size()
		items[i] = footprint{index: i, min: gg.Pt(s.Min[0], s.Min[1]), w: k.cells(sz[0]), h: k.cells(sz[1])}
	}
	offsets, ok := k.place(size, sep, items)
	if !ok {
		return nil, false
	}
	pts := make([]runtime.Vec3, 0, 2*len(objs))
	for i, o := range objs {
		s := as3(o)
		d := runtime.Vec3{offsets[i].X, offsets[i].Y, 0}
		pts = append(pts,
			runtime.Vec3{s.Min[0] + d[0], s.Min[1] + d[1], s.Min[2]},
			runtime.Vec3{s.Max[0] + d[0], s.Max[1] + d[1], s.Max[2]},
		)
	}
	lo, hi := hull(pts)
	return &Solid3{Min: lo, Max: hi, Expr: block(packHead(size, sep), exprs3(objs))}, true
}
