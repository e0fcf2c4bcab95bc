// Package docgen renders the module reference from the library's own
// argument declarations.
package docgen

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/shkoo/ImplicitCAD/pkg/args"
	"github.com/shkoo/ImplicitCAD/pkg/modules"
)

// Markdown writes a reference section per definition, in the order given.
func Markdown(w io.Writer, defs []*modules.Definition) error {
	var b strings.Builder
	b.WriteString("# Module reference\n")
	for _, def := range defs {
		writeModule(&b, def)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// HTML renders the Markdown reference as an HTML fragment.
func HTML(w io.Writer, defs []*modules.Definition) error {
	var src bytes.Buffer
	if err := Markdown(&src, defs); err != nil {
		return err
	}
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert(src.Bytes(), w); err != nil {
		return fmt.Errorf("docgen: render html: %w", err)
	}
	return nil
}

func writeModule(b *strings.Builder, def *modules.Definition) {
	fmt.Fprintf(b, "\n## %s\n\n", def.Name)
	if def.Doc != "" {
		b.WriteString(def.Doc)
		b.WriteString("\n\n")
	}
	if def.TakesSuite {
		b.WriteString("Takes a suite of statements.\n")
	} else {
		b.WriteString("Takes no suite.\n")
	}
	for i, sig := range def.Signatures {
		if len(def.Signatures) > 1 {
			fmt.Fprintf(b, "\n### Form %d\n", i+1)
		}
		writeSignature(b, def.Name, sig)
	}
	if len(def.Examples) > 0 {
		b.WriteString("\n**Examples**\n\n```scad\n")
		for _, ex := range def.Examples {
			b.WriteString(ex)
			b.WriteByte('\n')
		}
		b.WriteString("```\n")
	}
}

func writeSignature(b *strings.Builder, module string, sig args.Signature) {
	names := make([]string, len(sig))
	for i, p := range sig {
		names[i] = p.Spec().Name
	}
	fmt.Fprintf(b, "\n`%s(%s)`\n", module, strings.Join(names, ", "))
	if len(sig) == 0 {
		return
	}
	b.WriteString("\n| Argument | Shape | Default | Description |\n|---|---|---|---|\n")
	var examples []string
	for _, p := range sig {
		spec, meta := p.Spec(), p.Meta()
		def := "required"
		if spec.HasDefault {
			def = "`" + cell(spec.Default) + "`"
		}
		fmt.Fprintf(b, "| `%s` | %s | %s | %s |\n", spec.Name, cell(spec.Shape), def, cell(meta.Doc))
		for _, ex := range meta.Examples {
			examples = append(examples, fmt.Sprintf("- `%s`: `%s`", spec.Name, ex))
		}
	}
	if len(examples) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(examples, "\n"))
		b.WriteString("\n")
	}
}

// cell escapes a value for a GFM table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
