package csg

// Walk calls fn for every node reachable from root, children before their
// parent.
func Walk(root Node, fn func(Node)) {
	if root == nil {
		return
	}
	for _, c := range root.Children() {
		Walk(c, fn)
	}
	fn(root)
}

// Levels buckets the nodes of the tree by depth. Level 0 holds root; within
// a level nodes appear in left-to-right insertion order.
func Levels(root Node) [][]Node {
	if root == nil {
		return nil
	}
	var levels [][]Node
	for level := []Node{root}; len(level) > 0; {
		levels = append(levels, level)
		var next []Node
		for _, n := range level {
			next = append(next, n.Children()...)
		}
		level = next
	}
	return levels
}

// TopDown returns the nodes level by level, root first.
func TopDown(root Node) []Node {
	var out []Node
	for _, level := range Levels(root) {
		out = append(out, level...)
	}
	return out
}

// BottomUp returns the nodes deepest level first, each level in reverse
// insertion order. Every node appears after all of its descendants.
func BottomUp(root Node) []Node {
	levels := Levels(root)
	var out []Node
	for l := len(levels) - 1; l >= 0; l-- {
		for i := len(levels[l]) - 1; i >= 0; i-- {
			out = append(out, levels[l][i])
		}
	}
	return out
}

// AssignIDs numbers the nodes 1..N in BottomUp order and returns that
// order. It requires exclusive access to the tree.
func AssignIDs(root Node) []Node {
	order := BottomUp(root)
	for i, n := range order {
		n.node().id = i + 1
	}
	return order
}
