package csg

import (
	"fmt"
	"math"

	"github.com/chazu/sdfgraph/pkg/ir"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// deformer maps the incoming point before handing it to its only child.
type deformer struct {
	base
}

// Child returns the deformed node.
func (d *deformer) Child() Node {
	if len(d.children) == 0 {
		return nil
	}
	return d.children[0]
}

func newDeformer(self Node, child Node) error {
	return AddChild(self, child)
}

func vecArray(p v3.Vec) [3]float64 { return [3]float64{p.X, p.Y, p.Z} }

func arrayVec(a [3]float64) v3.Vec { return v3.Vec{X: a[0], Y: a[1], Z: a[2]} }

// ---------------------------------------------------------------------------
// Repeat
// ---------------------------------------------------------------------------

// Repeat tiles space into cells centred on multiples of the period. Axes
// with a period <= 0 are not repeated.
type Repeat struct {
	deformer
	period v3.Vec
}

// NewRepeat returns child repeated with period.
func NewRepeat(child Node, period v3.Vec, opts ...Option) (*Repeat, error) {
	r := &Repeat{}
	r.init(r, KindRepeat)
	if err := r.SetPeriod(period); err != nil {
		return nil, err
	}
	if err := Apply(r, opts...); err != nil {
		return nil, err
	}
	if err := newDeformer(r, child); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repeat) Period() v3.Vec { return r.period }

// SetPeriod requires exclusive access to the tree.
func (r *Repeat) SetPeriod(period v3.Vec) error {
	if err := checkFinite("set period", r, "period", period.X, period.Y, period.Z); err != nil {
		return err
	}
	r.period = period
	return nil
}

// RepeatCoord is the centred floor modulo applied to one coordinate.
func RepeatCoord(x, period float64) float64 {
	return ir.FloorMod(x+period*0.5, period) - period*0.5
}

func (r *Repeat) mapPoint(p v3.Vec) v3.Vec {
	c, per := vecArray(p), vecArray(r.period)
	for i := range c {
		if per[i] > 0 {
			c[i] = RepeatCoord(c[i], per[i])
		}
	}
	return arrayVec(c)
}

func (r *Repeat) Distance(p v3.Vec) float64 {
	return r.Child().Distance(r.mapPoint(r.ToLocal(p)))
}

func (r *Repeat) Copy() Node {
	c := &Repeat{period: r.period}
	c.init(c, KindRepeat)
	r.copyBase(&c.base)
	r.copyChildren(&c.base)
	return c
}

func (r *Repeat) params() string {
	return "period=" + formatVec(r.period)
}

func (r *Repeat) repeats() bool {
	return r.period.X > 0 || r.period.Y > 0 || r.period.Z > 0
}

// EmitInline passes through when no axis repeats.
func (r *Repeat) EmitInline(e Emitter, p ir.Expr) (ir.Expr, bool) {
	if r.repeats() {
		return nil, false
	}
	return e.Expr(r.Child(), LocalExpr(r, p)), true
}

func (r *Repeat) EmitBody(e Emitter, pos ir.Expr) []ir.Stmt {
	helper := e.Helper(repeatHelper())
	body := []ir.Stmt{ir.Decl{Name: "p", Type: ir.Vec3, X: LocalExpr(r, pos)}}
	for i, per := range vecArray(r.period) {
		if per <= 0 {
			continue
		}
		arg := ir.Swizzle{X: ir.Var("p"), Sel: ir.Component(i)}
		body = append(body, ir.SetComponent{Name: "p", Index: i, X: ir.Fn(helper, arg, ir.Num(per))})
	}
	return append(body, ir.Return{X: e.Expr(r.Child(), ir.Var("p"))})
}

func repeatHelper() *ir.Func {
	x, period := ir.Var("x"), ir.Var("r")
	half := ir.Mul(period, ir.Num(0.5))
	return &ir.Func{
		Name:   "csg_repeat",
		Params: []ir.Param{{Name: "x", Type: ir.Float}, {Name: "r", Type: ir.Float}},
		Result: ir.Float,
		Body: []ir.Stmt{
			ir.Return{X: ir.Sub(ir.Fn("mod", ir.Add(x, half), period), half)},
		},
	}
}

// ---------------------------------------------------------------------------
// Fan
// ---------------------------------------------------------------------------

// fanAxes lists the (u, v) components of the polar plane for each axis.
var fanAxes = [3][2]int{
	0: {1, 2}, // yz
	1: {2, 0}, // zx
	2: {0, 1}, // xy
}

// Fan repeats an angular sector around an axis. Angles are in radians.
type Fan struct {
	deformer
	center, span float64
	axis         int
}

// NewFan returns child repeated in sectors of width span around axis. The
// sector through center is left in place.
func NewFan(child Node, center, span float64, axis int, opts ...Option) (*Fan, error) {
	f := &Fan{}
	f.init(f, KindFan)
	if err := f.SetCenter(center); err != nil {
		return nil, err
	}
	if err := f.SetRange(span); err != nil {
		return nil, err
	}
	if err := f.SetAxis(axis); err != nil {
		return nil, err
	}
	if err := Apply(f, opts...); err != nil {
		return nil, err
	}
	if err := newDeformer(f, child); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Fan) Center() float64 { return f.center }

func (f *Fan) Range() float64 { return f.span }

func (f *Fan) Axis() int { return f.axis }

// SetCenter requires exclusive access to the tree.
func (f *Fan) SetCenter(center float64) error {
	if err := checkFinite("set center", f, "center", center); err != nil {
		return err
	}
	f.center = center
	return nil
}

// SetRange requires exclusive access to the tree.
func (f *Fan) SetRange(span float64) error {
	if err := checkFinite("set range", f, "range", span); err != nil {
		return err
	}
	if span <= 0 {
		return newError("set range", f, ErrParameter, "range must be positive, got %g", span)
	}
	f.span = span
	return nil
}

// SetAxis requires exclusive access to the tree.
func (f *Fan) SetAxis(axis int) error {
	if err := checkAxis("set axis", f, axis); err != nil {
		return err
	}
	f.axis = axis
	return nil
}

func (f *Fan) start() float64 { return f.center - f.span*0.5 }

// FanPoint remaps p into the sector [start, start+span) around axis,
// keeping its distance to the axis and its coordinate along it.
func FanPoint(p v3.Vec, axis int, start, span float64) v3.Vec {
	c := vecArray(p)
	u, v := fanAxes[axis][0], fanAxes[axis][1]
	a := math.Atan2(c[v], c[u])
	r := math.Sqrt(c[u]*c[u] + c[v]*c[v])
	a = ir.FloorMod(a-start, span) + start
	c[u] = r * math.Cos(a)
	c[v] = r * math.Sin(a)
	return arrayVec(c)
}

func (f *Fan) Distance(p v3.Vec) float64 {
	return f.Child().Distance(FanPoint(f.ToLocal(p), f.axis, f.start(), f.span))
}

func (f *Fan) Copy() Node {
	c := &Fan{center: f.center, span: f.span, axis: f.axis}
	c.init(c, KindFan)
	f.copyBase(&c.base)
	f.copyChildren(&c.base)
	return c
}

func (f *Fan) params() string {
	return fmt.Sprintf("center=%g range=%g axis=%s", f.center, f.span, ir.Component(f.axis))
}

// EmitInline composes the fan helper with the child expression.
func (f *Fan) EmitInline(e Emitter, p ir.Expr) (ir.Expr, bool) {
	helper := e.Helper(fanHelper(f.axis))
	q := ir.Fn(helper, LocalExpr(f, p), ir.Num(f.start()), ir.Num(f.span))
	return e.Expr(f.Child(), q), true
}

func (f *Fan) EmitBody(Emitter, ir.Expr) []ir.Stmt { return nil }

func fanHelper(axis int) *ir.Func {
	u, v := fanAxes[axis][0], fanAxes[axis][1]
	pair := ir.Component(u) + ir.Component(v)
	p, a, r := ir.Var("p"), ir.Var("a"), ir.Var("r")
	start, span := ir.Var("start"), ir.Var("span")
	comp := func(i int) ir.Expr { return ir.Swizzle{X: p, Sel: ir.Component(i)} }

	var out ir.Vec
	out[axis] = comp(axis)
	out[u] = ir.Mul(r, ir.Fn("cos", a))
	out[v] = ir.Mul(r, ir.Fn("sin", a))
	return &ir.Func{
		Name: "csg_fan_" + pair,
		Params: []ir.Param{
			{Name: "p", Type: ir.Vec3},
			{Name: "start", Type: ir.Float},
			{Name: "span", Type: ir.Float},
		},
		Result: ir.Vec3,
		Body: []ir.Stmt{
			ir.Decl{Name: "a", Type: ir.Float, X: ir.Fn("atan2", comp(v), comp(u))},
			ir.Decl{Name: "r", Type: ir.Float, X: ir.Fn("length", ir.Swizzle{X: p, Sel: pair})},
			ir.Assign{Name: "a", X: ir.Add(ir.Fn("mod", ir.Sub(a, start), span), start)},
			ir.Return{X: out},
		},
	}
}

// ---------------------------------------------------------------------------
// Warp
// ---------------------------------------------------------------------------

// WarpFunc maps a local point to the point handed to the child.
type WarpFunc func(p v3.Vec) v3.Vec

// Warp applies a caller-supplied mapping. The numeric mapping and the
// shader source are supplied separately and must agree; the source
// rewrites the vec3 local p in place.
type Warp struct {
	deformer
	fn  WarpFunc
	src ir.Snippet
}

// NewWarp returns child deformed by fn, with src as the equivalent shader
// statements.
func NewWarp(child Node, fn WarpFunc, src ir.Snippet, opts ...Option) (*Warp, error) {
	w := &Warp{fn: fn, src: src}
	w.init(w, KindWarp)
	if fn == nil {
		return nil, newError("new warp", w, ErrParameter, "nil warp function")
	}
	if err := Apply(w, opts...); err != nil {
		return nil, err
	}
	if err := newDeformer(w, child); err != nil {
		return nil, err
	}
	return w, nil
}

// Source returns the shader snippet.
func (w *Warp) Source() ir.Snippet { return w.src }

func (w *Warp) Distance(p v3.Vec) float64 {
	return w.Child().Distance(w.fn(w.ToLocal(p)))
}

func (w *Warp) Copy() Node {
	c := &Warp{fn: w.fn, src: w.src}
	c.init(c, KindWarp)
	w.copyBase(&c.base)
	w.copyChildren(&c.base)
	return c
}

func (w *Warp) EmitInline(Emitter, ir.Expr) (ir.Expr, bool) { return nil, false }

func (w *Warp) EmitBody(e Emitter, pos ir.Expr) []ir.Stmt {
	eval := func(p [3]float64) [3]float64 {
		return vecArray(w.fn(arrayVec(p)))
	}
	return []ir.Stmt{
		ir.Decl{Name: "p", Type: ir.Vec3, X: LocalExpr(w, pos)},
		ir.Raw{Var: "p", Source: w.src, Eval: eval},
		ir.Return{X: e.Expr(w.Child(), ir.Var("p"))},
	}
}
