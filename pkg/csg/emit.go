package csg

import (
	"fmt"

	"github.com/chazu/sdfgraph/pkg/ir"
)

// Emitter is the code generator as seen by a node.
type Emitter interface {
	// Expr returns the distance expression of n at point p: the node's
	// inline expression, or a call of its function.
	Expr(n Node, p ir.Expr) ir.Expr
	// Helper registers a shared helper function and returns the name to
	// call. Helpers with identical source are emitted once.
	Helper(fn *ir.Func) string
}

// FuncName returns the name of the generated function for n.
func FuncName(n Node) string {
	return fmt.Sprintf("f_%s_%d", n.Kind(), n.ID())
}

// LocalExpr returns the expression mapping point p into the local space of
// n, using the cheapest form for the transform class.
func LocalExpr(n Node, p ir.Expr) ir.Expr {
	a := n.Local()
	switch n.TransformClass() {
	case TransformIdentity:
		return p
	case TransformTranslate:
		return ir.Add(p, ir.VecOf(a.T[0], a.T[1], a.T[2]))
	case TransformLinear:
		return ir.Mat3Mul{M: a.L, X: p}
	default:
		return ir.Mat4Mul{M: a.M4(), X: p}
	}
}

// localVar declares the local point p when n is transformed and returns
// the expression to use for the local point.
func localVar(n Node, pos ir.Expr) ([]ir.Stmt, ir.Expr) {
	if !n.HasTransform() {
		return nil, pos
	}
	return []ir.Stmt{ir.Decl{Name: "p", Type: ir.Vec3, X: LocalExpr(n, pos)}}, ir.Var("p")
}
