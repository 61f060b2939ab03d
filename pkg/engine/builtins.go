package engine

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/chazu/sdfgraph/pkg/csg"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNode wraps a csg.Node so it can be passed between builtins.
type sexpNode struct {
	node csg.Node
}

func (n *sexpNode) SexpString(ps *zygo.PrintState) string { return n.node.String() }
func (n *sexpNode) Type() *zygo.RegisteredType           { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sceneState collects what the builtins of one evaluation record.
type sceneState struct {
	root csg.Node
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// only fails when pa carries a keyword missing from allowed.
func (pa kwArgs) only(allowed ...string) error {
	var unknown []string
	for k := range pa.kw {
		if !slices.Contains(allowed, k) {
			unknown = append(unknown, ":"+k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unknown keyword %s", strings.Join(unknown, ", "))
}

// float returns the number under key, or def when the key is absent.
func (pa kwArgs) float(key string, def float64) (float64, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// vec returns the vector under key, or def when the key is absent. A
// number n stands for (vec3 n n n).
func (pa kwArgs) vec(key string, def v3.Vec) (v3.Vec, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	if f, err := toFloat64(v); err == nil {
		return v3.Vec{X: f, Y: f, Z: f}, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("%s: %w", key, err)
	}
	return vec, nil
}

// axis returns the axis under key, or def when the key is absent.
func (pa kwArgs) axis(key string, def int) (int, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	a, err := toAxis(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return a, nil
}

// placement is the keyword set every node builtin accepts.
var placement = []string{"at", "rotate", "scale"}

// placementOptions turns :scale, :rotate and :at into transform options,
// applied to the point in that order. Rotations are Euler angles in
// degrees about X, then Y, then Z.
func (pa kwArgs) placementOptions() ([]csg.Option, error) {
	var opts []csg.Option
	if _, ok := pa.kw["scale"]; ok {
		s, err := pa.vec("scale", v3.Vec{})
		if err != nil {
			return nil, err
		}
		opts = append(opts, csg.Scale(s))
	}
	if _, ok := pa.kw["rotate"]; ok {
		r, err := pa.vec("rotate", v3.Vec{})
		if err != nil {
			return nil, err
		}
		opts = append(opts, csg.RotateX(r.X), csg.RotateY(r.Y), csg.RotateZ(r.Z))
	}
	if _, ok := pa.kw["at"]; ok {
		at, err := pa.vec("at", v3.Vec{})
		if err != nil {
			return nil, err
		}
		opts = append(opts, csg.Translate(at))
	}
	return opts, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected keyword or string: %w", err)
	}
	return strings.TrimPrefix(str, kwPrefix), nil
}

// toAxis converts a keyword or string to an axis index.
func toAxis(s zygo.Sexp) (int, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return 0, nil
	case "y":
		return 1, nil
	case "z":
		return 2, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toNode extracts a csg.Node from a sexpNode.
func toNode(s zygo.Sexp) (csg.Node, error) {
	if n, ok := s.(*sexpNode); ok {
		return n.node, nil
	}
	return nil, fmt.Errorf("expected node, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, bool, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		items, err := zygo.ListToArray(v)
		return items, true, err
	case *zygo.SexpArray:
		return v.Val, true, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, true, nil
		}
	}
	return nil, false, nil
}

// toNodes collects the nodes of args, flattening lists and arrays.
func toNodes(args []zygo.Sexp) ([]csg.Node, error) {
	var nodes []csg.Node
	for i, a := range args {
		if items, ok, err := sexpListToSlice(a); ok {
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i+1, err)
			}
			sub, err := toNodes(items)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, sub...)
			continue
		}
		n, err := toNode(a)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i+1, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func degrees(d float64) float64 { return d * math.Pi / 180.0 }

// asNode converts a typed constructor result, returning a nil interface
// on error.
func asNode[T csg.Node](n T, err error) (csg.Node, error) {
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// nodeBuiltin describes a builtin producing a node. build receives the
// parsed arguments; placement keywords are applied afterwards.
type nodeBuiltin struct {
	keys  []string
	build func(pa kwArgs) (csg.Node, error)
}

var nodeBuiltins = map[string]nodeBuiltin{
	// (sphere :radius 1)
	"sphere": {keys: []string{"radius"}, build: func(pa kwArgs) (csg.Node, error) {
		r, err := pa.float("radius", 1)
		if err != nil {
			return nil, err
		}
		return asNode(csg.NewSphere(r))
	}},
	// (tube :radius 1 :axis :z)
	"tube": {keys: []string{"radius", "axis"}, build: func(pa kwArgs) (csg.Node, error) {
		r, err := pa.float("radius", 1)
		if err != nil {
			return nil, err
		}
		axis, err := pa.axis("axis", 2)
		if err != nil {
			return nil, err
		}
		return asNode(csg.NewTube(r, axis))
	}},
	// (plane :normal (vec3 0 0 1))
	"plane": {keys: []string{"normal"}, build: func(pa kwArgs) (csg.Node, error) {
		n, err := pa.vec("normal", v3.Vec{Z: 1})
		if err != nil {
			return nil, err
		}
		return asNode(csg.NewPlane(n))
	}},
	// (union a b ...)
	"union": {build: func(pa kwArgs) (csg.Node, error) {
		children, err := toNodes(pa.positional)
		if err != nil {
			return nil, err
		}
		return asNode(csg.NewUnion(children...))
	}},
	// (difference base cut ...)
	"difference": {build: func(pa kwArgs) (csg.Node, error) {
		children, err := toNodes(pa.positional)
		if err != nil {
			return nil, err
		}
		return asNode(csg.NewDifference(children...))
	}},
	// (intersection a b ...)
	"intersection": {build: func(pa kwArgs) (csg.Node, error) {
		children, err := toNodes(pa.positional)
		if err != nil {
			return nil, err
		}
		return asNode(csg.NewIntersection(children...))
	}},
	// (repeat child :period (vec3 1 0 1))
	"repeat": {keys: []string{"period"}, build: func(pa kwArgs) (csg.Node, error) {
		child, err := onlyChild(pa)
		if err != nil {
			return nil, err
		}
		period, err := pa.vec("period", v3.Vec{X: 1, Y: 1, Z: 1})
		if err != nil {
			return nil, err
		}
		return asNode(csg.NewRepeat(child, period))
	}},
	// (fan child :center 0 :range 45 :axis :z), angles in degrees
	"fan": {keys: []string{"center", "range", "axis"}, build: func(pa kwArgs) (csg.Node, error) {
		child, err := onlyChild(pa)
		if err != nil {
			return nil, err
		}
		center, err := pa.float("center", 0)
		if err != nil {
			return nil, err
		}
		span, err := pa.float("range", 90)
		if err != nil {
			return nil, err
		}
		axis, err := pa.axis("axis", 2)
		if err != nil {
			return nil, err
		}
		return asNode(csg.NewFan(child, degrees(center), degrees(span), axis))
	}},
	// (clone node) deep copies a node so it can be used twice.
	"clone": {build: func(pa kwArgs) (csg.Node, error) {
		n, err := onlyChild(pa)
		if err != nil {
			return nil, err
		}
		return n.Copy(), nil
	}},
	// (example "gear") builds a named example scene.
	"example": {build: func(pa kwArgs) (csg.Node, error) {
		if len(pa.positional) != 1 {
			return nil, fmt.Errorf("expects a scene name, one of %s", strings.Join(csg.SceneNames(), ", "))
		}
		name, err := toKeywordString(pa.positional[0])
		if err != nil {
			return nil, err
		}
		return csg.Scene(name)
	}},
}

func onlyChild(pa kwArgs) (csg.Node, error) {
	if len(pa.positional) != 1 {
		return nil, fmt.Errorf("expects exactly one child, got %d", len(pa.positional))
	}
	return toNode(pa.positional[0])
}

// registerBuiltins installs the scene builtins into a zygomys environment.
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, st *sceneState) {
	for name, nb := range nodeBuiltins {
		env.AddFunction(name, nodeFunction(name, nb))
	}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (param node :radius 2 ...) sets parameters in place and returns node.
	// Angles are in degrees.
	// -----------------------------------------------------------------------
	env.AddFunction("param", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n, err := onlyChild(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("param: %w", err)
		}
		keys := make([]string, 0, len(pa.kw))
		for k := range pa.kw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := setParam(n, k, pa.kw[k]); err != nil {
				return zygo.SexpNull, fmt.Errorf("param: %w", err)
			}
		}
		return &sexpNode{node: n}, nil
	})

	// -----------------------------------------------------------------------
	// (scene_value x) returns x. wrapLastAtom inserts it around a trailing
	// bare symbol so the symbol's value is the value of the program.
	// -----------------------------------------------------------------------
	env.AddFunction(valueFn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires exactly one argument", name)
		}
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (scene node) marks the root of the scene.
	// -----------------------------------------------------------------------
	env.AddFunction("scene", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("scene requires exactly one node")
		}
		n, err := toNode(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scene: %w", err)
		}
		if st.root != nil {
			return zygo.SexpNull, fmt.Errorf("scene: root already set to %s", csg.Label(st.root))
		}
		st.root = n
		return args[0], nil
	})
}

// nodeFunction adapts nb to a zygomys function, applying :at, :rotate and
// :scale to the node it builds.
func nodeFunction(name string, nb nodeBuiltin) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only(slices.Concat(nb.keys, placement)...); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		opts, err := pa.placementOptions()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		n, err := nb.build(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		if err := csg.Apply(n, opts...); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return &sexpNode{node: n}, nil
	}
}

// setParam converts a Sexp to the Go type of the named parameter of n.
func setParam(n csg.Node, name string, v zygo.Sexp) error {
	for _, p := range csg.Params(n) {
		if p.Name != name {
			continue
		}
		var value any
		var err error
		switch p.Type {
		case csg.ParamFloat:
			value, err = toFloat64(v)
		case csg.ParamAngle:
			var d float64
			d, err = toFloat64(v)
			value = degrees(d)
		case csg.ParamAxis:
			value, err = toAxis(v)
		case csg.ParamVec:
			value, err = toVec3(v)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return csg.SetParam(n, name, value)
	}
	return csg.SetParam(n, name, nil)
}
