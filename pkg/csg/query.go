package csg

import (
	"context"
	"math"
	"runtime"
	"sync"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Miss is returned by SphereTrace when the ray hits nothing.
const Miss = -1.0

// DefaultNormalEpsilon is the central difference step used by Normal.
const DefaultNormalEpsilon = 0.001

// Distance returns the signed distance of the tree rooted at n at world
// point p. It only reads the tree.
func Distance(n Node, p v3.Vec) float64 {
	return n.Distance(p)
}

// Normal estimates the surface normal at p by central differences of step
// eps (DefaultNormalEpsilon when eps <= 0). A flat field yields the zero
// vector.
func Normal(n Node, p v3.Vec, eps float64) v3.Vec {
	if eps <= 0 {
		eps = DefaultNormalEpsilon
	}
	dx := v3.Vec{X: eps}
	dy := v3.Vec{Y: eps}
	dz := v3.Vec{Z: eps}
	g := v3.Vec{
		X: n.Distance(p.Add(dx)) - n.Distance(p.Sub(dx)),
		Y: n.Distance(p.Add(dy)) - n.Distance(p.Sub(dy)),
		Z: n.Distance(p.Add(dz)) - n.Distance(p.Sub(dz)),
	}
	l := g.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return v3.Vec{}
	}
	return g.MulScalar(1 / l)
}

// TraceOptions configures SphereTrace. Zero fields take the defaults.
type TraceOptions struct {
	MaxSteps    int     // default 150
	HitEpsilon  float64 // default 0.001
	MaxDistance float64 // default 100
}

// DefaultTraceOptions returns the options of the raymarching shader.
func DefaultTraceOptions() TraceOptions {
	return TraceOptions{MaxSteps: 150, HitEpsilon: 0.001, MaxDistance: 100}
}

func (o TraceOptions) withDefaults() TraceOptions {
	d := DefaultTraceOptions()
	if o.MaxSteps <= 0 {
		o.MaxSteps = d.MaxSteps
	}
	if o.HitEpsilon <= 0 {
		o.HitEpsilon = d.HitEpsilon
	}
	if o.MaxDistance <= 0 {
		o.MaxDistance = d.MaxDistance
	}
	return o
}

// SphereTrace marches from ro along the unit direction rd and returns the
// ray parameter of the first point closer than HitEpsilon to the surface,
// or Miss.
func SphereTrace(n Node, ro, rd v3.Vec, opts TraceOptions) float64 {
	opts = opts.withDefaults()
	t := 0.0
	for i := 0; i < opts.MaxSteps && t < opts.MaxDistance; i++ {
		d := n.Distance(ro.Add(rd.MulScalar(t)))
		if d < opts.HitEpsilon {
			return t
		}
		t += d
	}
	return Miss
}

// DistanceBatch evaluates the distance at every point using up to workers
// goroutines (GOMAXPROCS when workers <= 0). The tree must not be mutated
// while the batch runs. It returns ctx.Err() if ctx is cancelled first.
func DistanceBatch(ctx context.Context, n Node, points []v3.Vec, workers int) ([]float64, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(points) {
		workers = len(points)
	}
	out := make([]float64, len(points))
	if len(points) == 0 {
		return out, ctx.Err()
	}

	const checkEvery = 256
	chunk := (len(points) + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < len(points); lo += chunk {
		hi := min(lo+chunk, len(points))
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				if (i-lo)%checkEvery == 0 && ctx.Err() != nil {
					return
				}
				out[i] = n.Distance(points[i])
			}
		}(lo, hi)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
