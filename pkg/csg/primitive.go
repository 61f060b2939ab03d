package csg

import (
	"fmt"
	"math"

	"github.com/chazu/sdfgraph/pkg/ir"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func checkFinite(op string, n Node, name string, vs ...float64) error {
	if !finite(vs...) {
		return newError(op, n, ErrParameter, "%s must be finite", name)
	}
	return nil
}

func checkAxis(op string, n Node, axis int) error {
	if axis < 0 || axis > 2 {
		return newError(op, n, ErrParameter, "axis %d out of range, expected 0, 1 or 2", axis)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Sphere
// ---------------------------------------------------------------------------

// Sphere is a sphere centred on the local origin.
type Sphere struct {
	base
	radius float64
}

// NewSphere returns a sphere of the given radius.
func NewSphere(radius float64, opts ...Option) (*Sphere, error) {
	s := &Sphere{}
	s.init(s, KindSphere)
	if err := s.SetRadius(radius); err != nil {
		return nil, err
	}
	if err := Apply(s, opts...); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sphere) Radius() float64 { return s.radius }

// SetRadius requires exclusive access to the tree.
func (s *Sphere) SetRadius(r float64) error {
	if err := checkFinite("set radius", s, "radius", r); err != nil {
		return err
	}
	s.radius = r
	return nil
}

func (s *Sphere) Distance(p v3.Vec) float64 {
	return s.ToLocal(p).Length() - s.radius
}

func (s *Sphere) Copy() Node {
	c := &Sphere{radius: s.radius}
	c.init(c, KindSphere)
	s.copyBase(&c.base)
	return c
}

func (s *Sphere) params() string {
	return fmt.Sprintf("radius=%g", s.radius)
}

func (s *Sphere) EmitInline(_ Emitter, p ir.Expr) (ir.Expr, bool) {
	return ir.Sub(ir.Fn("length", LocalExpr(s, p)), ir.Num(s.radius)), true
}

func (s *Sphere) EmitBody(Emitter, ir.Expr) []ir.Stmt { return nil }

// ---------------------------------------------------------------------------
// Tube
// ---------------------------------------------------------------------------

// Tube is an infinite cylinder around one of the local axes.
type Tube struct {
	base
	radius float64
	axis   int
}

// planeSel names the two components orthogonal to each axis.
var planeSel = [3]string{"yz", "xz", "xy"}

// NewTube returns a tube of the given radius around axis 0, 1 or 2.
func NewTube(radius float64, axis int, opts ...Option) (*Tube, error) {
	t := &Tube{}
	t.init(t, KindTube)
	if err := t.SetRadius(radius); err != nil {
		return nil, err
	}
	if err := t.SetAxis(axis); err != nil {
		return nil, err
	}
	if err := Apply(t, opts...); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tube) Radius() float64 { return t.radius }

func (t *Tube) Axis() int { return t.axis }

// SetRadius requires exclusive access to the tree.
func (t *Tube) SetRadius(r float64) error {
	if err := checkFinite("set radius", t, "radius", r); err != nil {
		return err
	}
	t.radius = r
	return nil
}

// SetAxis requires exclusive access to the tree.
func (t *Tube) SetAxis(axis int) error {
	if err := checkAxis("set axis", t, axis); err != nil {
		return err
	}
	t.axis = axis
	return nil
}

func (t *Tube) Distance(p v3.Vec) float64 {
	q := t.ToLocal(p)
	switch t.axis {
	case 0:
		q.X = 0
	case 1:
		q.Y = 0
	default:
		q.Z = 0
	}
	return q.Length() - t.radius
}

func (t *Tube) Copy() Node {
	c := &Tube{radius: t.radius, axis: t.axis}
	c.init(c, KindTube)
	t.copyBase(&c.base)
	return c
}

func (t *Tube) params() string {
	return fmt.Sprintf("radius=%g axis=%s", t.radius, ir.Component(t.axis))
}

func (t *Tube) EmitInline(_ Emitter, p ir.Expr) (ir.Expr, bool) {
	q := ir.Swizzle{X: LocalExpr(t, p), Sel: planeSel[t.axis]}
	return ir.Sub(ir.Fn("length", q), ir.Num(t.radius)), true
}

func (t *Tube) EmitBody(Emitter, ir.Expr) []ir.Stmt { return nil }

// ---------------------------------------------------------------------------
// Plane
// ---------------------------------------------------------------------------

// Plane is the half space below the plane through the local origin with
// the given normal.
type Plane struct {
	base
	normal v3.Vec
}

// NewPlane returns a plane with the given normal. The normal is used as
// given; a non-unit normal scales the distance.
func NewPlane(normal v3.Vec, opts ...Option) (*Plane, error) {
	pl := &Plane{}
	pl.init(pl, KindPlane)
	if err := pl.SetNormal(normal); err != nil {
		return nil, err
	}
	if err := Apply(pl, opts...); err != nil {
		return nil, err
	}
	return pl, nil
}

func (pl *Plane) Normal() v3.Vec { return pl.normal }

// SetNormal requires exclusive access to the tree.
func (pl *Plane) SetNormal(n v3.Vec) error {
	if err := checkFinite("set normal", pl, "normal", n.X, n.Y, n.Z); err != nil {
		return err
	}
	pl.normal = n
	return nil
}

func (pl *Plane) Distance(p v3.Vec) float64 {
	return pl.ToLocal(p).Dot(pl.normal)
}

func (pl *Plane) Copy() Node {
	c := &Plane{normal: pl.normal}
	c.init(c, KindPlane)
	pl.copyBase(&c.base)
	return c
}

func (pl *Plane) params() string {
	return "normal=" + formatVec(pl.normal)
}

func (pl *Plane) EmitInline(_ Emitter, p ir.Expr) (ir.Expr, bool) {
	n := pl.normal
	return ir.Fn("dot", LocalExpr(pl, p), ir.VecOf(n.X, n.Y, n.Z)), true
}

func (pl *Plane) EmitBody(Emitter, ir.Expr) []ir.Stmt { return nil }
