package interpreter

import (
	"fmt"

	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

// Position locates a node in its scene document. The zero value means unknown.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) Valid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.Valid() {
		return p.File
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

// Statement is one executable node of a program.
type Statement interface {
	Pos() Position
	statementNode()
}

// NamedArg is a `name = value` argument of a call.
type NamedArg struct {
	Name  string
	Value Expr
}

// Call invokes a library module. HasSuite distinguishes `m() {}` from `m()`.
type Call struct {
	Module     string
	Positional []Expr
	Named      []NamedArg
	Suite      []Statement
	HasSuite   bool
	At         Position
}

func (c *Call) Pos() Position { return c.At }
func (*Call) statementNode()  {}

// Assign binds a variable for the statements that follow it.
type Assign struct {
	Name  string
	Value Expr
	At    Position
}

func (a *Assign) Pos() Position { return a.At }
func (*Assign) statementNode()  {}

// Echo reports its values as an informational diagnostic.
type Echo struct {
	Values []Expr
	At     Position
}

func (e *Echo) Pos() Position { return e.At }
func (*Echo) statementNode()  {}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

// Expr is an argument expression, evaluated against the environment the
// statement runs with.
type Expr interface {
	exprNode()
}

type Literal struct {
	Value runtime.Value
}

func (*Literal) exprNode() {}

type Var struct {
	Name string
	At   Position
}

func (*Var) exprNode() {}

type ListExpr struct {
	Elements []Expr
}

func (*ListExpr) exprNode() {}

// Knot is one control point of a piecewise-linear function. Y holds one
// value for a scalar function and several for a vector-valued one.
type Knot struct {
	X float64
	Y []float64
}

// LerpExpr evaluates to a function of one real that interpolates linearly
// between knots, sorted by X, and clamps outside their range.
type LerpExpr struct {
	Knots []Knot
}

func (*LerpExpr) exprNode() {}

// Program is a decoded scene document. Once loaded, the statements of every
// include precede the document's own.
type Program struct {
	Path       string
	Includes   []string
	Statements []Statement
}
