package interpreter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

// DecodeError reports a malformed scene document node.
type DecodeError struct {
	Pos     Position
	Message string
}

func (e *DecodeError) Error() string {
	if e.Pos.File == "" && !e.Pos.Valid() {
		return "scene: " + e.Message
	}
	return fmt.Sprintf("scene: %s: %s", e.Pos, e.Message)
}

type decoder struct {
	file string
}

func (d *decoder) pos(n *yaml.Node) Position {
	return Position{File: d.file, Line: n.Line, Column: n.Column}
}

func (d *decoder) errorf(n *yaml.Node, format string, a ...any) error {
	return &DecodeError{Pos: d.pos(n), Message: fmt.Sprintf(format, a...)}
}

// Decode parses a scene document. The top level is either a list of
// statements or a mapping with optional `include` and `statements` keys.
// JSON documents decode the same way. Includes are listed, not expanded.
func Decode(data []byte, path string) (*Program, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	d := &decoder{file: path}
	doc := &Program{Path: path}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}
	top := resolve(root.Content[0])
	switch top.Kind {
	case yaml.SequenceNode:
		stmts, err := d.statements(top)
		if err != nil {
			return nil, err
		}
		doc.Statements = stmts
	case yaml.MappingNode:
		for i := 0; i < len(top.Content); i += 2 {
			key, val := top.Content[i], resolve(top.Content[i+1])
			switch key.Value {
			case "include":
				incs, err := d.strings(val)
				if err != nil {
					return nil, err
				}
				doc.Includes = append(doc.Includes, incs...)
			case "statements":
				stmts, err := d.statements(val)
				if err != nil {
					return nil, err
				}
				doc.Statements = append(doc.Statements, stmts...)
			default:
				return nil, d.errorf(key, "field %s not found", key.Value)
			}
		}
	case yaml.ScalarNode:
		if top.Tag == "!!null" {
			return doc, nil
		}
		return nil, d.errorf(top, "document must be a list of statements or a mapping")
	default:
		return nil, d.errorf(top, "document must be a list of statements or a mapping")
	}
	return doc, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func (d *decoder) strings(n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		return []string{n.Value}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a path or a list of paths")
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		item = resolve(item)
		if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
			return nil, d.errorf(item, "expected a path")
		}
		out = append(out, item.Value)
	}
	return out, nil
}

func (d *decoder) statements(n *yaml.Node) ([]Statement, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "statements must be a list")
	}
	var out []Statement
	for _, item := range n.Content {
		stmts, err := d.statement(resolve(item))
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

// statement decodes one list entry. A `set` entry with several names yields
// one assignment per name, in document order.
func (d *decoder) statement(n *yaml.Node) ([]Statement, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) == 0 {
		return nil, d.errorf(n, "statement must be a mapping with call, set or echo")
	}
	kind := n.Content[0]
	for i := 0; i < len(n.Content); i += 2 {
		switch n.Content[i].Value {
		case "call", "set", "echo":
			kind = n.Content[i]
		}
	}
	switch kind.Value {
	case "call":
		call, err := d.call(n)
		if err != nil {
			return nil, err
		}
		return []Statement{call}, nil
	case "set":
		if len(n.Content) != 2 {
			return nil, d.errorf(n, "set takes no other fields")
		}
		return d.assignments(resolve(n.Content[1]))
	case "echo":
		if len(n.Content) != 2 {
			return nil, d.errorf(n, "echo takes no other fields")
		}
		vals, err := d.exprList(resolve(n.Content[1]))
		if err != nil {
			return nil, err
		}
		return []Statement{&Echo{Values: vals, At: d.pos(n)}}, nil
	default:
		return nil, d.errorf(kind, "unknown statement %s", kind.Value)
	}
}

func (d *decoder) call(n *yaml.Node) (*Call, error) {
	call := &Call{At: d.pos(n)}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i], resolve(n.Content[i+1])
		switch key.Value {
		case "call":
			if val.Kind != yaml.ScalarNode || val.Value == "" {
				return nil, d.errorf(val, "call needs a module name")
			}
			call.Module = strings.TrimSpace(val.Value)
		case "args":
			vals, err := d.exprList(val)
			if err != nil {
				return nil, err
			}
			call.Positional = vals
		case "named":
			if val.Kind != yaml.MappingNode {
				return nil, d.errorf(val, "named must be a mapping")
			}
			for j := 0; j < len(val.Content); j += 2 {
				e, err := d.expr(resolve(val.Content[j+1]))
				if err != nil {
					return nil, err
				}
				call.Named = append(call.Named, NamedArg{Name: val.Content[j].Value, Value: e})
			}
		case "suite":
			stmts, err := d.statements(val)
			if err != nil {
				return nil, err
			}
			call.Suite, call.HasSuite = stmts, true
		default:
			return nil, d.errorf(key, "field %s not found in call", key.Value)
		}
	}
	return call, nil
}

func (d *decoder) assignments(n *yaml.Node) ([]Statement, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "set must map names to values")
	}
	out := make([]Statement, 0, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		key := n.Content[i]
		if key.Value == "" {
			return nil, d.errorf(key, "set needs a variable name")
		}
		e, err := d.expr(resolve(n.Content[i+1]))
		if err != nil {
			return nil, err
		}
		out = append(out, &Assign{Name: key.Value, Value: e, At: d.pos(key)})
	}
	return out, nil
}

// exprList accepts a list of expressions, or a single expression as a list
// of one.
func (d *decoder) exprList(n *yaml.Node) ([]Expr, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		e, err := d.expr(n)
		if err != nil {
			return nil, err
		}
		return []Expr{e}, nil
	}
	out := make([]Expr, 0, len(n.Content))
	for _, item := range n.Content {
		e, err := d.expr(resolve(item))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) expr(n *yaml.Node) (Expr, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		v, err := d.scalar(n)
		if err != nil {
			return nil, err
		}
		return &Literal{Value: v}, nil
	case yaml.SequenceNode:
		elems, err := d.exprList(n)
		if err != nil {
			return nil, err
		}
		return &ListExpr{Elements: elems}, nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, d.errorf(n, "expression mapping must have exactly one key")
		}
		key, val := n.Content[0], resolve(n.Content[1])
		switch key.Value {
		case "var":
			if val.Kind != yaml.ScalarNode || val.Value == "" {
				return nil, d.errorf(val, "var needs a name")
			}
			return &Var{Name: val.Value, At: d.pos(n)}, nil
		case "lerp":
			return d.lerp(val)
		default:
			return nil, d.errorf(key, "unknown expression %s", key.Value)
		}
	default:
		return nil, d.errorf(n, "unsupported expression")
	}
}

func (d *decoder) scalar(n *yaml.Node) (runtime.Value, error) {
	switch n.Tag {
	case "!!null":
		return runtime.Undef, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, d.errorf(n, "%v", err)
		}
		return runtime.Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, d.errorf(n, "%v", err)
		}
		return runtime.Num(f), nil
	default:
		return runtime.Str(n.Value), nil
	}
}

// lerp decodes `[[x, y], ...]` where every y is a number or, for a vector
// valued function, a list of numbers of one common length.
func (d *decoder) lerp(n *yaml.Node) (Expr, error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) == 0 {
		return nil, d.errorf(n, "lerp needs a list of [x, y] knots")
	}
	knots := make([]Knot, 0, len(n.Content))
	for _, item := range n.Content {
		item = resolve(item)
		if item.Kind != yaml.SequenceNode || len(item.Content) != 2 {
			return nil, d.errorf(item, "lerp knot must be [x, y]")
		}
		x, err := d.number(resolve(item.Content[0]))
		if err != nil {
			return nil, err
		}
		var ys []float64
		yn := resolve(item.Content[1])
		if yn.Kind == yaml.SequenceNode {
			for _, c := range yn.Content {
				y, err := d.number(resolve(c))
				if err != nil {
					return nil, err
				}
				ys = append(ys, y)
			}
		} else {
			y, err := d.number(yn)
			if err != nil {
				return nil, err
			}
			ys = []float64{y}
		}
		if len(ys) == 0 || (len(knots) > 0 && len(ys) != len(knots[0].Y)) {
			return nil, d.errorf(yn, "lerp values must all have the same length")
		}
		for _, k := range knots {
			if k.X == x {
				return nil, d.errorf(item, "duplicate lerp knot at %g", x)
			}
		}
		knots = append(knots, Knot{X: x, Y: ys})
	}
	return &LerpExpr{Knots: knots}, nil
}

func (d *decoder) number(n *yaml.Node) (float64, error) {
	if n.Kind != yaml.ScalarNode || (n.Tag != "!!int" && n.Tag != "!!float") {
		return 0, d.errorf(n, "expected a number")
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return 0, d.errorf(n, "%v", err)
	}
	return f, nil
}
