package csg

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ParamType is the value type of a node parameter.
type ParamType int

const (
	ParamFloat ParamType = iota // float64
	ParamAngle                  // float64, radians
	ParamAxis                   // int, 0..2
	ParamVec                    // v3.Vec
)

func (t ParamType) String() string {
	switch t {
	case ParamFloat:
		return "float"
	case ParamAngle:
		return "angle"
	case ParamAxis:
		return "axis"
	case ParamVec:
		return "vec3"
	default:
		return "unknown"
	}
}

// Param is a named parameter of a node with its current value.
type Param struct {
	Name  string
	Type  ParamType
	Value any
}

// Params lists the parameters of n. Combiners and warps have none.
func Params(n Node) []Param {
	switch v := n.(type) {
	case *Sphere:
		return []Param{{"radius", ParamFloat, v.radius}}
	case *Tube:
		return []Param{{"radius", ParamFloat, v.radius}, {"axis", ParamAxis, v.axis}}
	case *Plane:
		return []Param{{"normal", ParamVec, v.normal}}
	case *Repeat:
		return []Param{{"period", ParamVec, v.period}}
	case *Fan:
		return []Param{{"center", ParamAngle, v.center}, {"range", ParamAngle, v.span}, {"axis", ParamAxis, v.axis}}
	}
	return nil
}

// SetParam sets the named parameter of n. The value must have the Go type
// of the parameter type; ints are accepted for float parameters.
// It requires exclusive access to the tree.
func SetParam(n Node, name string, value any) error {
	const op = "set param"
	var err error
	switch v := n.(type) {
	case *Sphere:
		switch name {
		case "radius":
			err = withFloat(op, n, name, value, v.SetRadius)
		default:
			err = unknownParam(n, name)
		}
	case *Tube:
		switch name {
		case "radius":
			err = withFloat(op, n, name, value, v.SetRadius)
		case "axis":
			err = withAxis(op, n, name, value, v.SetAxis)
		default:
			err = unknownParam(n, name)
		}
	case *Plane:
		switch name {
		case "normal":
			err = withVec(op, n, name, value, v.SetNormal)
		default:
			err = unknownParam(n, name)
		}
	case *Repeat:
		switch name {
		case "period":
			err = withVec(op, n, name, value, v.SetPeriod)
		default:
			err = unknownParam(n, name)
		}
	case *Fan:
		switch name {
		case "center":
			err = withFloat(op, n, name, value, v.SetCenter)
		case "range":
			err = withFloat(op, n, name, value, v.SetRange)
		case "axis":
			err = withAxis(op, n, name, value, v.SetAxis)
		default:
			err = unknownParam(n, name)
		}
	default:
		err = unknownParam(n, name)
	}
	return err
}

func unknownParam(n Node, name string) error {
	return newError("set param", n, ErrParameter, "no parameter %q", name)
}

func withFloat(op string, n Node, name string, value any, set func(float64) error) error {
	switch x := value.(type) {
	case float64:
		return set(x)
	case int:
		return set(float64(x))
	}
	return newError(op, n, ErrParameter, "%s wants a number, got %T", name, value)
}

func withAxis(op string, n Node, name string, value any, set func(int) error) error {
	if x, ok := value.(int); ok {
		return set(x)
	}
	return newError(op, n, ErrParameter, "%s wants an axis index, got %T", name, value)
}

func withVec(op string, n Node, name string, value any, set func(v3.Vec) error) error {
	if x, ok := value.(v3.Vec); ok {
		return set(x)
	}
	return newError(op, n, ErrParameter, "%s wants a vector, got %T", name, value)
}
