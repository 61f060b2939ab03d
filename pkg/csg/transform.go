package csg

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// snapTolerance is the distance below which decomposed matrix entries are
// replaced by their exact identity values.
const snapTolerance = 1e-12

// TransformClass tells evaluators how much of a transform must be applied.
type TransformClass int

const (
	TransformIdentity  TransformClass = iota // point passes through
	TransformTranslate                       // p + offset
	TransformLinear                          // L * p
	TransformGeneral                         // L * p + offset
)

func (c TransformClass) String() string {
	switch c {
	case TransformIdentity:
		return "identity"
	case TransformTranslate:
		return "translate"
	case TransformLinear:
		return "linear"
	case TransformGeneral:
		return "general"
	default:
		return "unknown"
	}
}

// Affine is an affine map split into a row-major linear part and a
// translation.
type Affine struct {
	L [3][3]float64
	T [3]float64
}

// identityAffine returns the identity map.
func identityAffine() Affine {
	return Affine{L: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// decompose reads m back through its point transform. The translation is
// the image of the origin and each column the image of a basis vector.
func decompose(m sdf.M44) Affine {
	o := m.MulPosition(v3.Vec{})
	cols := [3]v3.Vec{
		m.MulPosition(v3.Vec{X: 1}).Sub(o),
		m.MulPosition(v3.Vec{Y: 1}).Sub(o),
		m.MulPosition(v3.Vec{Z: 1}).Sub(o),
	}
	var a Affine
	for c, col := range cols {
		a.L[0][c] = col.X
		a.L[1][c] = col.Y
		a.L[2][c] = col.Z
	}
	a.T = [3]float64{o.X, o.Y, o.Z}
	a.snap()
	return a
}

func (a *Affine) snap() {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := 0.0
			if r == c {
				want = 1
			}
			if math.Abs(a.L[r][c]-want) < snapTolerance {
				a.L[r][c] = want
			}
		}
		if math.Abs(a.T[r]) < snapTolerance {
			a.T[r] = 0
		}
	}
}

func (a Affine) finite() bool {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if math.IsNaN(a.L[r][c]) || math.IsInf(a.L[r][c], 0) {
				return false
			}
		}
		if math.IsNaN(a.T[r]) || math.IsInf(a.T[r], 0) {
			return false
		}
	}
	return true
}

// Class returns the cheapest evaluation strategy for a.
func (a Affine) Class() TransformClass {
	linear := a.L != identityAffine().L
	translate := a.T != [3]float64{}
	switch {
	case !linear && !translate:
		return TransformIdentity
	case !linear:
		return TransformTranslate
	case !translate:
		return TransformLinear
	default:
		return TransformGeneral
	}
}

// Apply maps p through a using the strategy of class c. The arithmetic is
// the one emitted into shader code for the same class.
func (a Affine) Apply(c TransformClass, p v3.Vec) v3.Vec {
	switch c {
	case TransformIdentity:
		return p
	case TransformTranslate:
		return v3.Vec{X: p.X + a.T[0], Y: p.Y + a.T[1], Z: p.Z + a.T[2]}
	case TransformLinear:
		return v3.Vec{
			X: a.L[0][0]*p.X + a.L[0][1]*p.Y + a.L[0][2]*p.Z,
			Y: a.L[1][0]*p.X + a.L[1][1]*p.Y + a.L[1][2]*p.Z,
			Z: a.L[2][0]*p.X + a.L[2][1]*p.Y + a.L[2][2]*p.Z,
		}
	default:
		return v3.Vec{
			X: a.L[0][0]*p.X + a.L[0][1]*p.Y + a.L[0][2]*p.Z + a.T[0],
			Y: a.L[1][0]*p.X + a.L[1][1]*p.Y + a.L[1][2]*p.Z + a.T[1],
			Z: a.L[2][0]*p.X + a.L[2][1]*p.Y + a.L[2][2]*p.Z + a.T[2],
		}
	}
}

// M4 returns a as a row-major homogeneous matrix.
func (a Affine) M4() [4][4]float64 {
	var m [4][4]float64
	for r := 0; r < 3; r++ {
		copy(m[r][:3], a.L[r][:])
		m[r][3] = a.T[r]
	}
	m[3][3] = 1
	return m
}

// transform holds a node's transform, its inverse, and the decomposed
// inverse used for evaluation.
type transform struct {
	m, inv sdf.M44
	local  Affine
	class  TransformClass
}

func identityTransform() transform {
	return transform{
		m:     sdf.Identity3d(),
		inv:   sdf.Identity3d(),
		local: identityAffine(),
		class: TransformIdentity,
	}
}

// ---------------------------------------------------------------------------
// Construction options
// ---------------------------------------------------------------------------

// Option composes a transform onto a node at construction time. Options
// apply left to right: the first option acts on the point first.
type Option func(m sdf.M44) sdf.M44

// WithTransform composes an arbitrary matrix.
func WithTransform(t sdf.M44) Option {
	return func(m sdf.M44) sdf.M44 { return t.Mul(m) }
}

// Translate composes a translation.
func Translate(v v3.Vec) Option {
	return WithTransform(sdf.Translate3d(v))
}

// Scale composes a per-axis scale.
func Scale(v v3.Vec) Option {
	return WithTransform(sdf.Scale3d(v))
}

// RotateX composes a rotation about X, in degrees.
func RotateX(deg float64) Option {
	return WithTransform(sdf.RotateX(deg * math.Pi / 180.0))
}

// RotateY composes a rotation about Y, in degrees.
func RotateY(deg float64) Option {
	return WithTransform(sdf.RotateY(deg * math.Pi / 180.0))
}

// RotateZ composes a rotation about Z, in degrees.
func RotateZ(deg float64) Option {
	return WithTransform(sdf.RotateZ(deg * math.Pi / 180.0))
}

// Compose folds opts into a single matrix.
func Compose(opts ...Option) sdf.M44 {
	m := sdf.Identity3d()
	for _, opt := range opts {
		m = opt(m)
	}
	return m
}

// Apply composes opts onto the current transform of n.
// It requires exclusive access to n.
func Apply(n Node, opts ...Option) error {
	if len(opts) == 0 {
		return nil
	}
	m := n.Transform()
	for _, opt := range opts {
		m = opt(m)
	}
	return n.SetTransform(m)
}
