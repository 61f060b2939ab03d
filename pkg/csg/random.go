package csg

import (
	"math"
	"math/rand"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// RandomOptions configures Random. Zero fields take the defaults.
type RandomOptions struct {
	Steps     int  // growth rounds, default 20
	Attach    int  // attachment attempts per round, default 3
	Deform    bool // allow repeat and fan nodes
	Transform bool // give some nodes a random transform
}

// Random grows a tree under a union. Each round picks Attach nodes of the
// current tree at random and gives every combiner among them a new random
// child; empty combiners are finally filled with a primitive. Parameters
// are drawn through the Params schema.
func Random(rng *rand.Rand, opts RandomOptions) *Union {
	if opts.Steps <= 0 {
		opts.Steps = 20
	}
	if opts.Attach <= 0 {
		opts.Attach = 3
	}
	g := &generator{rng: rng, opts: opts}
	root := Must(NewUnion())
	for i := 0; i < opts.Steps; i++ {
		nodes := TopDown(root)
		for j := 0; j < opts.Attach; j++ {
			n := nodes[rng.Intn(len(nodes))]
			if n.Kind().IsCombiner() {
				if err := AddChild(n, g.node(false)); err != nil {
					panic(err) // fresh nodes always attach
				}
			}
		}
	}
	for _, n := range TopDown(root) {
		if n.Kind().IsCombiner() && len(n.Children()) == 0 {
			if err := AddChild(n, g.node(true)); err != nil {
				panic(err)
			}
		}
	}
	return root
}

type generator struct {
	rng  *rand.Rand
	opts RandomOptions
}

func (g *generator) node(onlyPrimitives bool) Node {
	kinds := []Kind{KindSphere, KindTube}
	if !onlyPrimitives {
		kinds = append(kinds, KindUnion, KindDifference, KindIntersection)
		if g.opts.Deform {
			kinds = append(kinds, KindRepeat, KindFan)
		}
	}
	var n Node
	switch kinds[g.rng.Intn(len(kinds))] {
	case KindSphere:
		n = Must(NewSphere(1))
	case KindTube:
		n = Must(NewTube(1, 2))
	case KindUnion:
		n = Must(NewUnion())
	case KindDifference:
		n = Must(NewDifference())
	case KindIntersection:
		n = Must(NewIntersection())
	case KindRepeat:
		n = Must(NewRepeat(g.node(true), v3.Vec{X: 1, Y: 1, Z: 1}))
	case KindFan:
		n = Must(NewFan(g.node(true), 0, math.Pi/2, 2))
	}
	for _, p := range Params(n) {
		if err := SetParam(n, p.Name, g.value(p)); err != nil {
			panic(err)
		}
	}
	if g.opts.Transform && g.rng.Intn(2) == 0 {
		if err := Apply(n, g.transform()...); err != nil {
			panic(err)
		}
	}
	return n
}

func (g *generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *generator) value(p Param) any {
	switch p.Type {
	case ParamAxis:
		return g.rng.Intn(3)
	case ParamAngle:
		if p.Name == "range" {
			return 2 * math.Pi / float64(2+g.rng.Intn(7))
		}
		return g.uniform(-math.Pi, math.Pi)
	case ParamVec:
		if p.Name == "normal" {
			v := v3.Vec{X: g.rng.NormFloat64(), Y: g.rng.NormFloat64(), Z: g.rng.NormFloat64()}
			if l := v.Length(); l > 1e-6 {
				return v.MulScalar(1 / l)
			}
			return v3.Vec{Z: 1}
		}
		return v3.Vec{X: g.uniform(0.5, 2), Y: g.uniform(0.5, 2), Z: g.uniform(0.5, 2)}
	default:
		return math.Round(g.uniform(0.01, 2)*1000) / 1000
	}
}

// transform returns a random mix of translation, rotation and scale so
// that every transform class occurs.
func (g *generator) transform() []Option {
	var opts []Option
	if g.rng.Intn(2) == 0 {
		opts = append(opts, RotateZ(g.uniform(-180, 180)), RotateX(g.uniform(-180, 180)))
	}
	if g.rng.Intn(3) == 0 {
		s := g.uniform(0.5, 2)
		opts = append(opts, Scale(v3.Vec{X: s, Y: s, Z: s}))
	}
	if len(opts) == 0 || g.rng.Intn(2) == 0 {
		opts = append(opts, Translate(v3.Vec{X: g.uniform(-1, 1), Y: g.uniform(-1, 1), Z: g.uniform(-1, 1)}))
	}
	return opts
}
