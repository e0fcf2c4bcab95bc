package modules

import "github.com/shkoo/ImplicitCAD/pkg/args"

func packModule() *Definition {
	size := args.Required("size", args.Pair).Doc("size of 2D box to pack objects within")
	sep := args.Required("sep", args.Real).Doc("mandatory space between objects")
	return &Definition{
		Name: "pack",
		Doc: "Arranges the objects of its suite without overlap inside a box. " +
			"When they cannot be placed a warning is reported and nothing is added.",
		TakesSuite: true,
		Signatures: []args.Signature{{size, sep}},
		Examples: []string{
			"pack([45,45], sep=2) { circle(10); circle(10); circle(10); circle(10); }",
			"pack([35,35], sep=2) { cube(10); cube(20); sphere(5); }",
		},
		Body: func(b *args.Bound, suite Suite) Modifier {
			return PackSuite(suite, size.Get(b), sep.Get(b))
		},
	}
}
