package docgen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shkoo/ImplicitCAD/pkg/modules"
)

func render(t *testing.T, defs []*modules.Definition) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Markdown(&buf, defs); err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	return buf.String()
}

func TestMarkdownListsEveryModule(t *testing.T) {
	reg := modules.Default()
	out := render(t, reg.Definitions())
	for _, name := range reg.Names() {
		if !strings.Contains(out, "\n## "+name+"\n") {
			t.Fatalf("missing section for %s", name)
		}
	}
}

func TestMarkdownSignatureTables(t *testing.T) {
	cube, _ := modules.Default().Lookup("cube")
	out := render(t, []*modules.Definition{cube})
	for _, want := range []string{
		"Takes no suite.",
		"### Form 1",
		"### Form 2",
		"`cube(size, center, r)`",
		"| `size` | either(real, triple) | required | cube size |",
		"| `center` | bool | `false` | should center? (non-intervals) |",
		"```scad\ncube(size = [2,3,4], center = true, r = 0.5);\ncube(4);\n```",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}

func TestMarkdownEscapesCaseShapes(t *testing.T) {
	translate, _ := modules.Default().Lookup("translate")
	out := render(t, []*modules.Definition{translate})
	if !strings.Contains(out, "Takes a suite of statements.") {
		t.Fatalf("suite note missing:\n%s", out)
	}
	if strings.Contains(out, "### Form") {
		t.Fatalf("single signature must not be numbered:\n%s", out)
	}
	if !strings.Contains(out, `| `+"`v`"+` | triple \| pair \| real \| any | required |`) {
		t.Fatalf("case shape not escaped:\n%s", out)
	}
}

func TestHTML(t *testing.T) {
	rotate, _ := modules.Default().Lookup("rotate")
	var buf bytes.Buffer
	if err := HTML(&buf, []*modules.Definition{rotate}); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<h1>Module reference</h1>",
		"<h2>rotate</h2>",
		"<table>",
		"<th>Argument</th>",
		"<td>real | triple | pair</td>",
		`<pre><code class="language-scad">`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}
