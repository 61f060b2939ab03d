package csg

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func formatVec(v v3.Vec) string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Label is the one-line description of n without its children.
func Label(n Node) string {
	var b strings.Builder
	b.WriteString(n.Kind().String())
	if n.ID() > 0 {
		fmt.Fprintf(&b, "#%d", n.ID())
	}
	if p := n.params(); p != "" {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	if n.HasTransform() {
		t := decompose(n.Transform())
		fmt.Fprintf(&b, " [%s at=(%g, %g, %g)]", n.TransformClass(), t.T[0], t.T[1], t.T[2])
	}
	return b.String()
}

// String renders the node and its children as nested text, e.g.
// union(sphere radius=1, tube radius=0.5 axis=z).
func (b *base) String() string {
	s := Label(b.self)
	if b.kind.IsPrimitive() {
		return s
	}
	parts := make([]string, len(b.children))
	for i, c := range b.children {
		parts[i] = c.String()
	}
	return s + "(" + strings.Join(parts, ", ") + ")"
}

// TreeString draws the tree one node per line:
//
//	union
//	+-sphere radius=1
//	\-repeat period=(1, 0, 0)
//	  \-tube radius=0.2 axis=z
func TreeString(root Node) string {
	var b strings.Builder
	writeTree(&b, root, "", "")
	return b.String()
}

func writeTree(b *strings.Builder, n Node, prefix, childPrefix string) {
	b.WriteString(prefix)
	b.WriteString(Label(n))
	b.WriteByte('\n')
	children := n.Children()
	for i, c := range children {
		if i == len(children)-1 {
			writeTree(b, c, childPrefix+`\-`, childPrefix+"  ")
		} else {
			writeTree(b, c, childPrefix+"+-", childPrefix+"| ")
		}
	}
}
