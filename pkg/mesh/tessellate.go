package mesh

import (
	"fmt"

	"github.com/chazu/sdfgraph/internal/logging"
	"github.com/chazu/sdfgraph/pkg/csg"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// Defaults for Options.
const (
	DefaultCells  = 100
	DefaultBounds = 3.0
)

// Options controls tessellation. Zero fields take the defaults.
type Options struct {
	// Cells is the number of marching cubes cells along the longest side.
	Cells int
	// Bounds is the half-extent of the sampled cube around the origin.
	Bounds float64
}

func (o Options) withDefaults() Options {
	if o.Cells <= 0 {
		o.Cells = DefaultCells
	}
	if o.Bounds <= 0 {
		o.Bounds = DefaultBounds
	}
	return o
}

// FromNode tessellates the surface of n inside the options' bounds.
// The tree is only read.
func FromNode(n csg.Node, opts Options) (*Mesh, error) {
	opts = opts.withDefaults()
	s, err := NewSolid(n, Cube(opts.Bounds))
	if err != nil {
		return nil, err
	}
	m := FromSDF(s, opts.Cells)
	m.Name = csg.Label(n)
	logging.Logger().Debug("mesh: tessellated",
		"node", m.Name,
		"cells", opts.Cells,
		"triangles", m.TriangleCount())
	return m, nil
}

// FromSDF converts an sdf.SDF3 to a flat triangle mesh using uniform
// marching cubes. Each triangle gets three vertices carrying its face
// normal.
func FromSDF(s sdf.SDF3, cells int) *Mesh {
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}
	return &Mesh{Vertices: vertices, Normals: normals, Indices: indices}
}

// Parts tessellates each child of a root combiner separately, one mesh per
// part, so a viewer can colour them apart. The root's own transform is
// applied to every part. Any other root yields a single mesh.
//
// Parts of a difference or intersection are meshed as stand-alone solids,
// ignoring how their siblings cut them.
func Parts(root csg.Node, opts Options) ([]*Mesh, error) {
	if root == nil {
		return nil, nil
	}
	if !root.Kind().IsCombiner() || len(root.Children()) == 0 {
		m, err := FromNode(root, opts)
		if err != nil {
			return nil, err
		}
		return []*Mesh{m}, nil
	}

	var meshes []*Mesh
	for i, child := range root.Children() {
		part := child.Copy()
		if err := csg.Apply(part, csg.WithTransform(root.Transform())); err != nil {
			return nil, fmt.Errorf("mesh: part %d: %w", i, err)
		}
		m, err := FromNode(part, opts)
		if err != nil {
			return nil, fmt.Errorf("mesh: part %d: %w", i, err)
		}
		m.Name = fmt.Sprintf("%d:%s", i, csg.Label(child))
		meshes = append(meshes, m)
	}
	return meshes, nil
}
