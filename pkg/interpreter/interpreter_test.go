package interpreter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/kernel/outline"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

func runScene(t *testing.T, src string) (runtime.State, *kernel.Recorder) {
	t.Helper()
	prog, err := Decode([]byte(src), "scene.yml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec := &kernel.Recorder{}
	st, err := New(outline.New(), rec).Run(prog)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return st, rec
}

func TestRunCenteredCube(t *testing.T) {
	st, rec := runScene(t, `
- call: cube
  named: {size: [2, 3, 4], center: true}
`)
	if len(rec.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", rec.Diagnostics)
	}
	if len(st.Obj3) != 1 || len(st.Obj2) != 0 {
		t.Fatalf("expected one solid, got %d/%d", len(st.Obj2), len(st.Obj3))
	}
	solid := st.Obj3[0].(*outline.Solid3)
	if solid.Min != (runtime.Vec3{-1, -1.5, -2}) || solid.Max != (runtime.Vec3{1, 1.5, 2}) {
		t.Fatalf("unexpected bounds %v %v", solid.Min, solid.Max)
	}
	if solid.Expr != "cube([-1, -1.5, -2], [1, 1.5, 2])" {
		t.Fatalf("unexpected expr %q", solid.Expr)
	}
}

func TestUnknownModuleDoesNotStopSiblings(t *testing.T) {
	st, rec := runScene(t, `
- call: frobnicate
  args: [1]
- call: sphere
  args: [2]
`)
	if rec.Count(kernel.CodeUnknownModule) != 1 {
		t.Fatalf("expected unknown module diagnostic, got %v", rec.Diagnostics)
	}
	d := rec.Errors()[0]
	if d.Module != "frobnicate" || !strings.Contains(d.Message, "scene.yml:2:3") {
		t.Fatalf("unexpected diagnostic %v", d)
	}
	if len(st.Obj3) != 1 {
		t.Fatalf("sibling did not run: %d solids", len(st.Obj3))
	}
}

func TestBindErrorsBecomeDiagnostics(t *testing.T) {
	st, rec := runScene(t, `
- call: cube
- call: sphere
  args: ["big"]
- call: circle
  args: [1]
`)
	if rec.Count(kernel.CodeMissingArgument) != 1 || rec.Count(kernel.CodeCoercion) != 1 {
		t.Fatalf("unexpected diagnostics %v", rec.Diagnostics)
	}
	for _, d := range rec.Errors() {
		if strings.HasPrefix(d.Message, d.Module+":") {
			t.Fatalf("module repeated in message: %q", d.Message)
		}
	}
	if got := rec.Errors()[1].String(); !strings.HasPrefix(got, `error: sphere: argument "r" expects real, got "big"`) {
		t.Fatalf("unexpected message %q", got)
	}
	if len(st.Obj3) != 0 || len(st.Obj2) != 1 {
		t.Fatalf("expected only the circle, got %d/%d", len(st.Obj2), len(st.Obj3))
	}
}

func TestUndefinedVariableIsUndef(t *testing.T) {
	_, rec := runScene(t, `
- call: circle
  args: [{var: radius}]
`)
	if rec.Count(kernel.CodeUndefinedVariable) != 1 {
		t.Fatalf("expected undefined variable warning, got %v", rec.Diagnostics)
	}
	if rec.Count(kernel.CodeCoercion) != 1 {
		t.Fatalf("undef should fail to coerce to real, got %v", rec.Diagnostics)
	}
}

func TestAssignmentInsideSuiteIsVisibleAfter(t *testing.T) {
	st, rec := runScene(t, `
- call: union
  suite:
    - set: {w: 3}
    - call: cube
      args: [1]
- call: cube
  args: [{var: w}]
`)
	if len(rec.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics %v", rec.Diagnostics)
	}
	if len(st.Obj3) != 2 {
		t.Fatalf("expected union and cube, got %d", len(st.Obj3))
	}
	if got := st.Obj3[0].(*outline.Solid3).Expr; got != "union(){cube([0, 0, 0], [1, 1, 1]);}" {
		t.Fatalf("unexpected union %q", got)
	}
	if got := st.Obj3[1].(*outline.Solid3).Max; got != (runtime.Vec3{3, 3, 3}) {
		t.Fatalf("assignment not propagated, max %v", got)
	}
	if v, _ := st.Env.Lookup("w"); !runtime.Equal(v, runtime.Num(3)) {
		t.Fatalf("final env lost w: %v", v)
	}
}

func TestEcho(t *testing.T) {
	_, rec := runScene(t, `
- set: {w: 3}
- echo: [{var: w}, "hi", [1, 2], null]
`)
	if len(rec.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %v", rec.Diagnostics)
	}
	d := rec.Diagnostics[0]
	if d.Code != kernel.CodeEcho || d.Severity != kernel.SeverityInfo {
		t.Fatalf("unexpected diagnostic %v", d)
	}
	if d.Message != `ECHO: 3, "hi", [1, 2], undef` {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestPackScenes(t *testing.T) {
	const circles = `
    - {call: circle, args: [10]}
    - {call: circle, args: [10]}
    - {call: circle, args: [10]}
    - {call: circle, args: [10]}
`
	t.Run("infeasible", func(t *testing.T) {
		st, rec := runScene(t, `
- call: pack
  args: [[1, 1], 2]
  suite:`+circles+`
- set: {after: true}
- call: square
  args: [2]
`)
		if rec.Count(kernel.CodePackingInfeasible) != 1 {
			t.Fatalf("expected packing diagnostic, got %v", rec.Diagnostics)
		}
		if len(rec.Errors()) != 0 {
			t.Fatalf("packing failure must not be an error: %v", rec.Errors())
		}
		if len(st.Obj2) != 1 || st.Obj2[0].(*outline.Shape2).Expr != "square([0, 0], [2, 2])" {
			t.Fatalf("expected only the sibling square, got %v", st.Obj2)
		}
		if _, ok := st.Env.Lookup("after"); !ok {
			t.Fatalf("later statements did not run")
		}
	})
	t.Run("feasible", func(t *testing.T) {
		st, rec := runScene(t, `
- call: pack
  named: {size: [45, 45], sep: 2}
  suite:`+circles)
		if len(rec.Diagnostics) != 0 {
			t.Fatalf("unexpected diagnostics %v", rec.Diagnostics)
		}
		if len(st.Obj2) != 1 {
			t.Fatalf("expected one packed object, got %d", len(st.Obj2))
		}
		if got := st.Obj2[0].(*outline.Shape2).Expr; !strings.HasPrefix(got, "pack([45, 45], sep=2){") {
			t.Fatalf("unexpected expr %q", got)
		}
	})
}

func TestLerp(t *testing.T) {
	scalar := Eval(nil, nil, &LerpExpr{Knots: []Knot{{X: 10, Y: []float64{5}}, {X: 0, Y: []float64{0}}}})
	fn, ok := scalar.(runtime.FunctionValue)
	if !ok {
		t.Fatalf("expected function, got %s", runtime.Format(scalar))
	}
	cases := map[float64]float64{-1: 0, 0: 0, 4: 2, 10: 5, 20: 5}
	for x, want := range cases {
		got, err := fn.Call(runtime.Num(x))
		if err != nil {
			t.Fatalf("lerp(%g): %v", x, err)
		}
		if !runtime.Equal(got, runtime.Num(want)) {
			t.Fatalf("lerp(%g) = %s, want %g", x, runtime.Format(got), want)
		}
	}
	if _, err := fn.Call(runtime.Str("x")); err == nil {
		t.Fatalf("expected error for non-number argument")
	}

	vector := Eval(nil, nil, &LerpExpr{Knots: []Knot{{X: 0, Y: []float64{0, 0}}, {X: 2, Y: []float64{4, -2}}}})
	got, err := vector.(runtime.FunctionValue).Call(runtime.Num(1))
	if err != nil {
		t.Fatalf("vector lerp: %v", err)
	}
	if !runtime.Equal(got, runtime.Nums(2, -1)) {
		t.Fatalf("vector lerp = %s", runtime.Format(got))
	}
}

func TestLinearExtrudeWithLerpTwist(t *testing.T) {
	st, rec := runScene(t, `
- call: linear_extrude
  named:
    height: 10
    twist: {lerp: [[0, 0], [10, 90]]}
    translate: {lerp: [[0, [0, 0]], [10, [2, 0]]]}
  suite:
    - {call: square, args: [4], named: {center: true}}
`)
	if len(rec.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics %v", rec.Diagnostics)
	}
	if len(st.Obj3) != 1 || len(st.Obj2) != 0 {
		t.Fatalf("expected one solid, got %d/%d", len(st.Obj2), len(st.Obj3))
	}
	solid := st.Obj3[0].(*outline.Solid3)
	if solid.Min[2] != 0 || solid.Max[2] != 10 {
		t.Fatalf("unexpected z range %v %v", solid.Min, solid.Max)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		col  int
		msg  string
	}{
		{"unknown call field", "- call: cube\n  colour: red\n", 2, 3, "field colour not found in call"},
		{"unknown statement", "- frob: 1\n", 1, 3, "unknown statement frob"},
		{"unknown expression", "- call: cube\n  args: [{sum: [1, 2]}]\n", 2, 11, "unknown expression sum"},
		{"empty lerp", "- echo: {lerp: []}\n", 1, 16, "lerp needs a list"},
		{"ragged lerp", "- echo: {lerp: [[0, 1], [1, [1, 2]]]}\n", 1, 29, "same length"},
		{"unknown top-level", "scenes: []\n", 1, 1, "field scenes not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.src), "bad.yml")
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
			if de.Pos.Line != tc.line || de.Pos.Column != tc.col {
				t.Fatalf("position %s, want %d:%d", de.Pos, tc.line, tc.col)
			}
			if !strings.Contains(de.Error(), tc.msg) || !strings.HasPrefix(de.Error(), "scene: bad.yml:") {
				t.Fatalf("unexpected message %q", de.Error())
			}
		})
	}
}

func TestDecodeForms(t *testing.T) {
	prog, err := Decode([]byte(`
include: [parts.yml]
statements:
  - set: {a: 1, b: [1, 2]}
  - args: [3]
    call: sphere
  - call: union
    suite: []
  - echo: {var: a}
`), "forms.yml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(prog.Includes) != 1 || prog.Includes[0] != "parts.yml" {
		t.Fatalf("unexpected includes %v", prog.Includes)
	}
	if len(prog.Statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(prog.Statements))
	}
	if a, ok := prog.Statements[1].(*Assign); !ok || a.Name != "b" {
		t.Fatalf("expected second assignment, got %#v", prog.Statements[1])
	}
	if c := prog.Statements[2].(*Call); c.Module != "sphere" || len(c.Positional) != 1 || c.HasSuite {
		t.Fatalf("unexpected call %#v", c)
	}
	if c := prog.Statements[3].(*Call); !c.HasSuite || len(c.Suite) != 0 {
		t.Fatalf("empty suite not recorded: %#v", c)
	}
	if e := prog.Statements[4].(*Echo); len(e.Values) != 1 {
		t.Fatalf("single echo value not wrapped: %#v", e)
	}

	json, err := Decode([]byte(`[{"call": "cube", "args": [1.5]}]`), "scene.json")
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}
	lit := json.Statements[0].(*Call).Positional[0].(*Literal)
	if !runtime.Equal(lit.Value, runtime.Num(1.5)) {
		t.Fatalf("unexpected literal %s", runtime.Format(lit.Value))
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoaderExpandsIncludes(t *testing.T) {
	root := t.TempDir()
	lib := filepath.Join(root, "lib")
	writeFile(t, filepath.Join(lib, "sizes.yml"), "- set: {w: 4}\n")
	writeFile(t, filepath.Join(root, "scene", "local.yml"), "include: sizes.yml\nstatements:\n  - set: {h: 2}\n")
	main := filepath.Join(root, "scene", "main.yml")
	writeFile(t, main, `
include: [local.yml]
statements:
  - call: cube
    args: [{var: w}, {var: w}, {var: h}]
`)

	prog, err := (&Loader{SearchPaths: []string{lib}}).Load(main)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
	if a := prog.Statements[0].(*Assign); a.Name != "w" {
		t.Fatalf("nested include must come first, got %s", a.Name)
	}
	rec := &kernel.Recorder{}
	st, err := New(outline.New(), rec).Run(prog)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rec.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics %v", rec.Diagnostics)
	}
	if got := st.Obj3[0].(*outline.Solid3).Max; got != (runtime.Vec3{4, 4, 2}) {
		t.Fatalf("unexpected max %v", got)
	}
}

func TestLoaderRejectsCycles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yml"), "include: b.yml\n")
	writeFile(t, filepath.Join(dir, "b.yml"), "include: a.yml\n")
	_, err := (&Loader{}).Load(filepath.Join(dir, "a.yml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestLoaderAllowsRepeatedIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "part.yml"), "- {call: sphere, args: [1]}\n")
	writeFile(t, filepath.Join(dir, "main.yml"), "include: [part.yml, part.yml]\n")
	prog, err := (&Loader{}).Load(filepath.Join(dir, "main.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
}

func TestLoaderMissingInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.yml"), "include: nowhere.yml\n")
	_, err := (&Loader{}).Load(filepath.Join(dir, "main.yml"))
	if !errors.Is(err, ErrIncludeNotFound) {
		t.Fatalf("expected ErrIncludeNotFound, got %v", err)
	}
}

func TestRunRequiresKernel(t *testing.T) {
	if _, err := (&Interpreter{}).Run(&Program{}); !errors.Is(err, ErrNoKernel) {
		t.Fatalf("expected ErrNoKernel, got %v", err)
	}
	if _, err := New(outline.New(), nil).Run(nil); !errors.Is(err, ErrNoProgram) {
		t.Fatalf("expected ErrNoProgram, got %v", err)
	}
}

func TestGlobalsSeedEnvironment(t *testing.T) {
	prog, err := Decode([]byte("- {call: sphere, args: [{var: r}]}\n"), "g.yml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	in := New(outline.New(), nil)
	in.Globals = map[string]runtime.Value{"r": runtime.Num(2)}
	st, err := in.Run(prog)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := st.Obj3[0].(*outline.Solid3).Max; got != (runtime.Vec3{2, 2, 2}) {
		t.Fatalf("unexpected max %v", got)
	}
}
