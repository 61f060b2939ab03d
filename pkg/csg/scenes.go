package csg

import (
	"fmt"
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// scenes are small hand-built trees used for demos and smoke tests.
var scenes = map[string]func() (Node, error){
	"spheres": sceneSpheres,
	"stripes": sceneStripes,
	"nested":  sceneNested,
	"gear":    sceneGear,
}

// SceneNames lists the built-in scenes.
func SceneNames() []string {
	names := make([]string, 0, len(scenes))
	for name := range scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scene builds the named built-in scene.
func Scene(name string) (Node, error) {
	build, ok := scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q, expected one of %v", name, SceneNames())
	}
	return build()
}

// asNode drops the typed nil a failed constructor returns.
func asNode[T Node](n T, err error) (Node, error) {
	if err != nil {
		return nil, err
	}
	return n, nil
}

// sceneSpheres is three unit spheres on the x axis.
func sceneSpheres() (Node, error) {
	a, err := NewSphere(1, Translate(v3.Vec{X: -1}))
	if err != nil {
		return nil, err
	}
	b, err := NewSphere(1)
	if err != nil {
		return nil, err
	}
	c, err := NewSphere(1, Translate(v3.Vec{X: 1}))
	if err != nil {
		return nil, err
	}
	return asNode(NewUnion(a, b, c))
}

// sceneStripes is a ring with crossed repeated bars.
func sceneStripes() (Node, error) {
	bar, err := NewTube(0.1, 1)
	if err != nil {
		return nil, err
	}
	stripes, err := NewRepeat(bar, v3.Vec{X: 1}, RotateZ(45))
	if err != nil {
		return nil, err
	}
	outer, err := NewTube(1, 2)
	if err != nil {
		return nil, err
	}
	inner, err := NewTube(0.6, 2)
	if err != nil {
		return nil, err
	}
	ring, err := NewDifference(outer, inner)
	if err != nil {
		return nil, err
	}
	crossed := stripes.Copy()
	if err := Apply(crossed, RotateY(180)); err != nil {
		return nil, err
	}
	cross, err := NewIntersection(stripes.Copy(), crossed)
	if err != nil {
		return nil, err
	}
	clip, err := NewTube(2.8, 2)
	if err != nil {
		return nil, err
	}
	outside, err := NewDifference(stripes, clip)
	if err != nil {
		return nil, err
	}
	return asNode(NewUnion(ring, cross, outside))
}

// sceneNested is a sphere under three translated single-child unions.
func sceneNested() (Node, error) {
	s, err := NewSphere(1)
	if err != nil {
		return nil, err
	}
	var n Node = s
	for _, at := range []v3.Vec{{Z: 1}, {Y: 1}, {X: 1}} {
		u, err := NewUnion(n)
		if err != nil {
			return nil, err
		}
		if err := Apply(u, Translate(at)); err != nil {
			return nil, err
		}
		n = u
	}
	return n, nil
}

// sceneGear is a disc with eight teeth made by a fan.
func sceneGear() (Node, error) {
	tooth, err := NewSphere(0.25, Translate(v3.Vec{X: 1}))
	if err != nil {
		return nil, err
	}
	teeth, err := NewFan(tooth, 0, math.Pi/4, 2)
	if err != nil {
		return nil, err
	}
	body, err := NewTube(1, 2)
	if err != nil {
		return nil, err
	}
	top, err := NewPlane(v3.Vec{Z: 1}, Translate(v3.Vec{Z: 0.2}))
	if err != nil {
		return nil, err
	}
	bottom, err := NewPlane(v3.Vec{Z: -1}, Translate(v3.Vec{Z: -0.2}))
	if err != nil {
		return nil, err
	}
	disc, err := NewIntersection(body, top, bottom)
	if err != nil {
		return nil, err
	}
	return asNode(NewUnion(disc, teeth))
}
