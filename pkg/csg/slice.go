package csg

import (
	"math"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// sliceRamp shades a cell from outside to inside.
const sliceRamp = " .:+*#"

// sliceBand is the distance range covered by the shading ramp.
const sliceBand = 0.07

// SliceOptions configures Slice. Zero fields take the defaults.
type SliceOptions struct {
	CenterX, CenterY float64 // centre of the view
	Z                float64 // height of the section plane
	Width, Height    int     // characters, default 80 by 40
	Scale            float64 // world units per character column, default 0.05
}

// Slice draws the section of the surface in the plane z = Z as text. Cells
// near or inside the surface are drawn darker.
func Slice(n Node, o SliceOptions) string {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Height <= 0 {
		o.Height = 40
	}
	if o.Scale <= 0 {
		o.Scale = 0.05
	}
	scaleX := o.Scale * float64(o.Width)
	// Characters are about twice as tall as they are wide.
	scaleY := o.Scale * float64(o.Height) * 2

	var b strings.Builder
	for j := 0; j < o.Height; j++ {
		y := (0.5-float64(j)/float64(o.Height))*scaleY + o.CenterY
		for i := 0; i < o.Width; i++ {
			x := (float64(i)/float64(o.Width)-0.5)*scaleX + o.CenterX
			d := n.Distance(v3.Vec{X: x, Y: y, Z: o.Z}) - sliceBand*0.5
			// Keep the ramp index within int range for far or empty fields.
			d = math.Max(-2*sliceBand, math.Min(d, 2*sliceBand))
			idx := int(float64(len(sliceRamp)) * (1 - d/sliceBand))
			idx = max(0, min(idx, len(sliceRamp)-1))
			b.WriteByte(sliceRamp[idx])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
