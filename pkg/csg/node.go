// Package csg is a tree of implicit-surface operators: primitives, boolean
// combiners and domain deformers. Every node evaluates its signed distance
// on the CPU and describes itself to the shader code generator through the
// Emitter interface, so both interpretations share the same semantics.
//
// Evaluation only reads the tree and may run concurrently. Mutations
// (AddChild, SetTransform, parameter setters, AssignIDs) require exclusive
// access to the whole tree.
package csg

import (
	"fmt"

	"github.com/chazu/sdfgraph/pkg/ir"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Infinity is the distance of an empty combiner. It is far beyond any
// geometry a scene is expected to hold.
const Infinity = 1e20

// Kind identifies the node variant.
type Kind int

const (
	KindSphere Kind = iota
	KindTube
	KindPlane
	KindUnion
	KindDifference
	KindIntersection
	KindRepeat
	KindFan
	KindWarp
)

var kindNames = [...]string{
	KindSphere:       "sphere",
	KindTube:         "tube",
	KindPlane:        "plane",
	KindUnion:        "union",
	KindDifference:   "difference",
	KindIntersection: "intersection",
	KindRepeat:       "repeat",
	KindFan:          "fan",
	KindWarp:         "warp",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsPrimitive reports whether k is a leaf kind.
func (k Kind) IsPrimitive() bool {
	return k <= KindPlane
}

// IsCombiner reports whether k owns any number of children.
func (k Kind) IsCombiner() bool {
	return k >= KindUnion && k <= KindIntersection
}

// IsDeformer reports whether k owns exactly one child.
func (k Kind) IsDeformer() bool {
	return k >= KindRepeat
}

// Node is a vertex of the tree. The set of implementations is closed.
type Node interface {
	Kind() Kind
	Children() []Node
	Parent() Node
	Root() Node
	ID() int

	Transform() sdf.M44
	InverseTransform() sdf.M44
	Local() Affine
	TransformClass() TransformClass
	HasTransform() bool
	SetTransform(m sdf.M44) error
	ToLocal(p v3.Vec) v3.Vec

	// Distance returns the signed distance at world point p.
	Distance(p v3.Vec) float64
	// Copy returns an independent deep copy with equal parameters. The copy
	// has no parent and no id.
	Copy() Node
	String() string

	// EmitInline returns an expression computing the distance at point
	// expression p, or false when the node needs a function of its own.
	EmitInline(e Emitter, p ir.Expr) (ir.Expr, bool)
	// EmitBody returns the body of the node's function, taking the point
	// in parameter pos.
	EmitBody(e Emitter, pos ir.Expr) []ir.Stmt

	params() string
	node() *base
}

// base carries the state shared by every node.
type base struct {
	self     Node
	kind     Kind
	parent   Node
	children []Node
	// capacity is -1 for unlimited children.
	capacity int
	id       int
	xf       transform
}

func (b *base) init(self Node, kind Kind) {
	b.self = self
	b.kind = kind
	b.xf = identityTransform()
	switch {
	case kind.IsPrimitive():
		b.capacity = 0
	case kind.IsDeformer():
		b.capacity = 1
	default:
		b.capacity = -1
	}
}

func (b *base) node() *base { return b }

func (b *base) params() string { return "" }

func (b *base) Kind() Kind { return b.kind }

// Children returns the owned children in insertion order. The slice must
// not be modified.
func (b *base) Children() []Node { return b.children }

func (b *base) Parent() Node { return b.parent }

// Root follows parent links to the root of the tree.
func (b *base) Root() Node {
	n := b.self
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

// ID returns the number assigned by AssignIDs, or 0.
func (b *base) ID() int { return b.id }

func (b *base) Transform() sdf.M44 { return b.xf.m }

func (b *base) InverseTransform() sdf.M44 { return b.xf.inv }

// Local returns the decomposed inverse transform.
func (b *base) Local() Affine { return b.xf.local }

func (b *base) TransformClass() TransformClass { return b.xf.class }

func (b *base) HasTransform() bool { return b.xf.class != TransformIdentity }

// SetTransform replaces the node transform and recomputes its inverse.
// It requires exclusive access to the tree.
func (b *base) SetTransform(m sdf.M44) error {
	inv := m.Inverse()
	local := decompose(inv)
	if !local.finite() {
		return newError("set transform", b.self, ErrParameter, "transform is not invertible")
	}
	b.xf = transform{m: m, inv: inv, local: local, class: local.Class()}
	return nil
}

// ToLocal maps a world-space point into the node's local space.
func (b *base) ToLocal(p v3.Vec) v3.Vec {
	return b.xf.local.Apply(b.xf.class, p)
}

// copyBase copies the parameters shared by all nodes into dst. Ownership
// and ids are not copied.
func (b *base) copyBase(dst *base) {
	dst.xf = b.xf
}

// copyChildren attaches deep copies of b's children to dst.
func (b *base) copyChildren(dst *base) {
	for _, c := range b.children {
		dst.attach(c.Copy())
	}
}

func (b *base) attach(child Node) {
	b.children = append(b.children, child)
	child.node().parent = b.self
}

// AddChild attaches child as the last child of parent. It fails with
// ErrStructural, leaving both trees unchanged, when parent can not own
// another child, when child already has a parent, or when child's subtree
// holds parent's tree.
// It requires exclusive access to both trees.
func AddChild(parent, child Node) error {
	const op = "add child"
	if parent == nil || child == nil {
		return newError(op, parent, ErrStructural, "nil node")
	}
	pb := parent.node()
	switch {
	case pb.capacity == 0:
		return newError(op, parent, ErrStructural, "%s can not own children", parent.Kind())
	case pb.capacity > 0 && len(pb.children) >= pb.capacity:
		return newError(op, parent, ErrStructural, "%s already owns %d child", parent.Kind(), pb.capacity)
	}
	tree := Nodes(parent.Root())
	if _, ok := tree[child]; ok {
		return newError(op, parent, ErrStructural, "%s is already part of this tree", child.Kind())
	}
	// An unowned child is the root of its own tree, so its subtree can only
	// overlap parent's tree by containing parent's root, which is child.
	if owner := child.Parent(); owner != nil {
		return newError(op, parent, ErrStructural, "%s is already owned by %s", child.Kind(), owner.Kind())
	}
	pb.attach(child)
	return nil
}

// detachFrom removes the children of b from index n on, leaving them unowned.
func (b *base) detachFrom(n int) {
	for _, c := range b.children[n:] {
		c.node().parent = nil
	}
	clear(b.children[n:])
	b.children = b.children[:n]
}

// Contains reports whether n is reachable from root.
func Contains(root, n Node) bool {
	found := false
	Walk(root, func(m Node) {
		if m == n {
			found = true
		}
	})
	return found
}

// Nodes returns the set of nodes reachable from root.
func Nodes(root Node) map[Node]struct{} {
	set := make(map[Node]struct{})
	Walk(root, func(n Node) {
		set[n] = struct{}{}
	})
	return set
}

// Must panics if err is not nil. It is meant for literal scene
// construction in tests and examples.
func Must[T Node](n T, err error) T {
	if err != nil {
		panic(err)
	}
	return n
}
