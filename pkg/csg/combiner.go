package csg

import (
	"math"

	"github.com/chazu/sdfgraph/pkg/ir"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// combiner folds the distances of its children left to right.
type combiner struct {
	base
}

// fold combines the running distance d with the distance x of the next
// child.
func (c *combiner) fold(d, x float64) float64 {
	switch c.kind {
	case KindUnion:
		return math.Min(d, x)
	case KindDifference:
		return math.Max(d, -x)
	default:
		return math.Max(d, x)
	}
}

func (c *combiner) foldExpr(d, x ir.Expr) ir.Expr {
	switch c.kind {
	case KindUnion:
		return ir.Min(d, x)
	case KindDifference:
		return ir.Max(d, ir.Neg{X: x})
	default:
		return ir.Max(d, x)
	}
}

// Add attaches children in order. If any of them is rejected, none of
// them stays attached. It requires exclusive access to the tree.
func (c *combiner) Add(children ...Node) error {
	n := len(c.children)
	for _, ch := range children {
		if err := AddChild(c.self, ch); err != nil {
			c.detachFrom(n)
			return err
		}
	}
	return nil
}

func (c *combiner) Distance(p v3.Vec) float64 {
	if len(c.children) == 0 {
		return Infinity
	}
	q := c.ToLocal(p)
	d := c.children[0].Distance(q)
	for _, ch := range c.children[1:] {
		d = c.fold(d, ch.Distance(q))
	}
	return d
}

// EmitInline handles up to two children as a single expression.
func (c *combiner) EmitInline(e Emitter, p ir.Expr) (ir.Expr, bool) {
	switch len(c.children) {
	case 0:
		return ir.Num(Infinity), true
	case 1:
		return e.Expr(c.children[0], LocalExpr(c.self, p)), true
	case 2:
		q := LocalExpr(c.self, p)
		return c.foldExpr(e.Expr(c.children[0], q), e.Expr(c.children[1], q)), true
	}
	return nil, false
}

// EmitBody accumulates the children into d.
func (c *combiner) EmitBody(e Emitter, pos ir.Expr) []ir.Stmt {
	body, q := localVar(c.self, pos)
	d := ir.Var("d")
	body = append(body, ir.Decl{Name: "d", Type: ir.Float, X: e.Expr(c.children[0], q)})
	for _, ch := range c.children[1:] {
		body = append(body, ir.Assign{Name: "d", X: c.foldExpr(d, e.Expr(ch, q))})
	}
	return append(body, ir.Return{X: d})
}

func newCombiner(c *combiner, self Node, kind Kind, children []Node) error {
	c.init(self, kind)
	return c.Add(children...)
}

// Union is the minimum of its children.
type Union struct{ combiner }

// NewUnion returns a union owning children.
func NewUnion(children ...Node) (*Union, error) {
	u := &Union{}
	if err := newCombiner(&u.combiner, u, KindUnion, children); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *Union) Copy() Node {
	c := &Union{}
	c.init(c, KindUnion)
	u.copyBase(&c.base)
	u.copyChildren(&c.base)
	return c
}

// Difference subtracts every later child from the first.
type Difference struct{ combiner }

// NewDifference returns a difference owning children.
func NewDifference(children ...Node) (*Difference, error) {
	d := &Difference{}
	if err := newCombiner(&d.combiner, d, KindDifference, children); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Difference) Copy() Node {
	c := &Difference{}
	c.init(c, KindDifference)
	d.copyBase(&c.base)
	d.copyChildren(&c.base)
	return c
}

// Intersection is the maximum of its children.
type Intersection struct{ combiner }

// NewIntersection returns an intersection owning children.
func NewIntersection(children ...Node) (*Intersection, error) {
	in := &Intersection{}
	if err := newCombiner(&in.combiner, in, KindIntersection, children); err != nil {
		return nil, err
	}
	return in, nil
}

func (in *Intersection) Copy() Node {
	c := &Intersection{}
	c.init(c, KindIntersection)
	in.copyBase(&c.base)
	in.copyChildren(&c.base)
	return c
}
