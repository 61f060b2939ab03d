package mesh

import (
	"errors"
	"fmt"

	"github.com/chazu/sdfgraph/pkg/csg"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ sdf.SDF3 = (*Solid)(nil)

// Solid exposes a csg tree as an sdf.SDF3. csg nodes may be unbounded
// (planes, tubes, repeats), so the bounding box is supplied by the caller
// and only limits where the renderer samples.
type Solid struct {
	node csg.Node
	box  sdf.Box3
}

// NewSolid wraps n with the given bounds.
func NewSolid(n csg.Node, box sdf.Box3) (*Solid, error) {
	if n == nil {
		return nil, errors.New("mesh: nil node")
	}
	if box.Min.X >= box.Max.X || box.Min.Y >= box.Max.Y || box.Min.Z >= box.Max.Z {
		return nil, fmt.Errorf("mesh: empty bounds %v..%v", box.Min, box.Max)
	}
	return &Solid{node: n, box: box}, nil
}

// Cube returns the box of half-extent r centred on the origin.
func Cube(r float64) sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: -r, Y: -r, Z: -r},
		Max: v3.Vec{X: r, Y: r, Z: r},
	}
}

// Evaluate returns the signed distance of the wrapped tree at p.
func (s *Solid) Evaluate(p v3.Vec) float64 {
	return s.node.Distance(p)
}

// BoundingBox returns the sampling bounds.
func (s *Solid) BoundingBox() sdf.Box3 {
	return s.box
}
