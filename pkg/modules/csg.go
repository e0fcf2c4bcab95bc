package modules

import (
	"github.com/shkoo/ImplicitCAD/pkg/args"
	"github.com/shkoo/ImplicitCAD/pkg/kernel"
)

type booleanOp struct {
	name     string
	doc      string
	example  string
	plain2   Reduce2
	plain3   Reduce3
	rounded2 func(k kernel.Kernel, r float64, objs []kernel.Obj2) (kernel.Obj2, bool)
	rounded3 func(k kernel.Kernel, r float64, objs []kernel.Obj3) (kernel.Obj3, bool)
}

func booleanModule(op booleanOp) *Definition {
	r := args.Default("r", args.Real, 0).Doc("radius of rounding for the " + op.name + " interface")
	return &Definition{
		Name:       op.name,
		Doc:        op.doc,
		TakesSuite: true,
		Signatures: []args.Signature{{r}},
		Examples:   []string{op.example},
		Body: func(b *args.Bound, suite Suite) Modifier {
			radius := r.Get(b)
			if radius > 0 {
				return CompressSuite(suite,
					func(k kernel.Kernel, objs []kernel.Obj2) (kernel.Obj2, bool) { return op.rounded2(k, radius, objs) },
					func(k kernel.Kernel, objs []kernel.Obj3) (kernel.Obj3, bool) { return op.rounded3(k, radius, objs) },
				)
			}
			return CompressSuite(suite, op.plain2, op.plain3)
		},
	}
}

func unionModule() *Definition {
	return booleanModule(booleanOp{
		name:     "union",
		doc:      "Combines the objects of its suite into one.",
		example:  "union() { cube(4); sphere(3); }",
		plain2:   kernel.Kernel.Union2,
		plain3:   kernel.Kernel.Union3,
		rounded2: kernel.Kernel.UnionR2,
		rounded3: kernel.Kernel.UnionR3,
	})
}

func intersectionModule() *Definition {
	return booleanModule(booleanOp{
		name:     "intersection",
		doc:      "Keeps the region common to every object of its suite.",
		example:  "intersection(r=1) { cube(4); sphere(3); }",
		plain2:   kernel.Kernel.Intersect2,
		plain3:   kernel.Kernel.Intersect3,
		rounded2: kernel.Kernel.IntersectR2,
		rounded3: kernel.Kernel.IntersectR3,
	})
}

func differenceModule() *Definition {
	return booleanModule(booleanOp{
		name:     "difference",
		doc:      "Subtracts the remaining objects of its suite from the first.",
		example:  "difference() { cube(4, center=true); sphere(2.5); }",
		plain2:   kernel.Kernel.Difference2,
		plain3:   kernel.Kernel.Difference3,
		rounded2: kernel.Kernel.DifferenceR2,
		rounded3: kernel.Kernel.DifferenceR3,
	})
}
