package ir

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoEval is returned when a Raw snippet without a numeric mapping is
// interpreted.
var ErrNoEval = errors.New("ir: snippet has no numeric mapping")

// maxCallDepth bounds recursion through program function calls.
const maxCallDepth = 256

// Value is a scalar (N == 1) or a vector of N components.
type Value struct {
	N int
	V [4]float64
}

// Scalar returns a 1-component value.
func Scalar(f float64) Value { return Value{N: 1, V: [4]float64{f}} }

// Vector3 returns a 3-component value.
func Vector3(x, y, z float64) Value { return Value{N: 3, V: [4]float64{x, y, z}} }

// Float returns the scalar held by v.
func (v Value) Float() float64 { return v.V[0] }

// Vec3 returns the first three components of v.
func (v Value) Vec3() [3]float64 { return [3]float64{v.V[0], v.V[1], v.V[2]} }

func (v Value) String() string {
	if v.N == 1 {
		return fmt.Sprintf("%g", v.V[0])
	}
	return fmt.Sprintf("%v", v.V[:v.N])
}

// Interp evaluates functions of a Program with float64 arithmetic. It is
// safe for concurrent use once constructed.
type Interp struct {
	funcs map[string]*Func
}

// NewInterp returns an interpreter for the functions of p.
func NewInterp(p *Program) *Interp {
	in := &Interp{funcs: make(map[string]*Func, len(p.Funcs))}
	for _, f := range p.Funcs {
		in.funcs[f.Name] = f
	}
	return in
}

// Call evaluates the named function with args.
func (in *Interp) Call(name string, args ...Value) (Value, error) {
	return in.call(name, args, 0)
}

// Distance evaluates a float(vec3) function at p.
func (in *Interp) Distance(name string, p [3]float64) (float64, error) {
	v, err := in.Call(name, Vector3(p[0], p[1], p[2]))
	if err != nil {
		return 0, err
	}
	if v.N != 1 {
		return 0, fmt.Errorf("ir: %s returned %d components, want a scalar", name, v.N)
	}
	return v.Float(), nil
}

func (in *Interp) call(name string, args []Value, depth int) (Value, error) {
	if depth > maxCallDepth {
		return Value{}, fmt.Errorf("ir: call depth exceeded in %s", name)
	}
	f, ok := in.funcs[name]
	if !ok {
		return Value{}, fmt.Errorf("ir: undefined function %q", name)
	}
	if len(args) != len(f.Params) {
		return Value{}, fmt.Errorf("ir: %s takes %d arguments, got %d", name, len(f.Params), len(args))
	}
	env := make(map[string]Value, len(f.Params)+2)
	for i, p := range f.Params {
		if err := checkType(p.Type, args[i]); err != nil {
			return Value{}, fmt.Errorf("ir: %s: parameter %s: %w", name, p.Name, err)
		}
		env[p.Name] = args[i]
	}
	for _, s := range f.Body {
		switch v := s.(type) {
		case Decl:
			x, err := in.eval(v.X, env, depth)
			if err != nil {
				return Value{}, err
			}
			if err := checkType(v.Type, x); err != nil {
				return Value{}, fmt.Errorf("ir: %s: declaration of %s: %w", name, v.Name, err)
			}
			env[v.Name] = x
		case Assign:
			x, err := in.eval(v.X, env, depth)
			if err != nil {
				return Value{}, err
			}
			old, ok := env[v.Name]
			if !ok {
				return Value{}, fmt.Errorf("ir: %s: assignment to undeclared %s", name, v.Name)
			}
			if old.N != x.N {
				return Value{}, fmt.Errorf("ir: %s: assignment of %d components to %s of %d", name, x.N, v.Name, old.N)
			}
			env[v.Name] = x
		case SetComponent:
			x, err := in.eval(v.X, env, depth)
			if err != nil {
				return Value{}, err
			}
			old, ok := env[v.Name]
			if !ok || old.N != 3 || x.N != 1 || v.Index < 0 || v.Index > 2 {
				return Value{}, fmt.Errorf("ir: %s: invalid component assignment %s.%d", name, v.Name, v.Index)
			}
			old.V[v.Index] = x.V[0]
			env[v.Name] = old
		case Raw:
			if v.Eval == nil {
				return Value{}, ErrNoEval
			}
			old, ok := env[v.Var]
			if !ok || old.N != 3 {
				return Value{}, fmt.Errorf("ir: %s: snippet variable %s is not a vec3", name, v.Var)
			}
			r := v.Eval(old.Vec3())
			env[v.Var] = Vector3(r[0], r[1], r[2])
		case Return:
			x, err := in.eval(v.X, env, depth)
			if err != nil {
				return Value{}, err
			}
			if err := checkType(f.Result, x); err != nil {
				return Value{}, fmt.Errorf("ir: %s: return: %w", name, err)
			}
			return x, nil
		default:
			return Value{}, fmt.Errorf("ir: unsupported statement %T", s)
		}
	}
	return Value{}, fmt.Errorf("ir: %s ended without return", name)
}

func checkType(t Type, v Value) error {
	want := 1
	if t == Vec3 {
		want = 3
	}
	if v.N != want {
		return fmt.Errorf("got %d components, want %s", v.N, t)
	}
	return nil
}

func (in *Interp) eval(e Expr, env map[string]Value, depth int) (Value, error) {
	switch v := e.(type) {
	case Num:
		return Scalar(float64(v)), nil
	case Var:
		x, ok := env[string(v)]
		if !ok {
			return Value{}, fmt.Errorf("ir: undefined variable %q", string(v))
		}
		return x, nil
	case Vec:
		var out Value
		out.N = 3
		for i, c := range v {
			x, err := in.eval(c, env, depth)
			if err != nil {
				return Value{}, err
			}
			if x.N != 1 {
				return Value{}, fmt.Errorf("ir: vec3 component %d is not a scalar", i)
			}
			out.V[i] = x.V[0]
		}
		return out, nil
	case Swizzle:
		x, err := in.eval(v.X, env, depth)
		if err != nil {
			return Value{}, err
		}
		return swizzle(x, v.Sel)
	case Neg:
		x, err := in.eval(v.X, env, depth)
		if err != nil {
			return Value{}, err
		}
		for i := 0; i < x.N; i++ {
			x.V[i] = -x.V[i]
		}
		return x, nil
	case Binary:
		x, err := in.eval(v.X, env, depth)
		if err != nil {
			return Value{}, err
		}
		y, err := in.eval(v.Y, env, depth)
		if err != nil {
			return Value{}, err
		}
		return binary(v.Op, x, y)
	case Call:
		args := make([]Value, len(v.Args))
		for i, a := range v.Args {
			x, err := in.eval(a, env, depth)
			if err != nil {
				return Value{}, err
			}
			args[i] = x
		}
		if Builtins[v.Fn] {
			return builtin(v.Fn, args)
		}
		return in.call(v.Fn, args, depth+1)
	case Mat3Mul:
		x, err := in.eval(v.X, env, depth)
		if err != nil {
			return Value{}, err
		}
		if x.N != 3 {
			return Value{}, fmt.Errorf("ir: mat3 * vector of %d components", x.N)
		}
		var out Value
		out.N = 3
		for r := 0; r < 3; r++ {
			out.V[r] = v.M[r][0]*x.V[0] + v.M[r][1]*x.V[1] + v.M[r][2]*x.V[2]
		}
		return out, nil
	case Mat4Mul:
		x, err := in.eval(v.X, env, depth)
		if err != nil {
			return Value{}, err
		}
		if x.N != 3 {
			return Value{}, fmt.Errorf("ir: mat4 * vector of %d components", x.N)
		}
		var out Value
		out.N = 3
		for r := 0; r < 3; r++ {
			out.V[r] = v.M[r][0]*x.V[0] + v.M[r][1]*x.V[1] + v.M[r][2]*x.V[2] + v.M[r][3]
		}
		return out, nil
	}
	return Value{}, fmt.Errorf("ir: unsupported expression %T", e)
}

func swizzle(x Value, sel string) (Value, error) {
	if len(sel) < 1 || len(sel) > 4 {
		return Value{}, fmt.Errorf("ir: invalid swizzle %q", sel)
	}
	var out Value
	out.N = len(sel)
	for i := 0; i < len(sel); i++ {
		var idx int
		switch sel[i] {
		case 'x':
			idx = 0
		case 'y':
			idx = 1
		case 'z':
			idx = 2
		case 'w':
			idx = 3
		default:
			return Value{}, fmt.Errorf("ir: invalid swizzle %q", sel)
		}
		if idx >= x.N {
			return Value{}, fmt.Errorf("ir: swizzle %q out of range for %d components", sel, x.N)
		}
		out.V[i] = x.V[idx]
	}
	return out, nil
}

// broadcast returns the component count of a mixed scalar/vector operation.
func broadcast(x, y Value) (int, error) {
	switch {
	case x.N == y.N:
		return x.N, nil
	case x.N == 1:
		return y.N, nil
	case y.N == 1:
		return x.N, nil
	}
	return 0, fmt.Errorf("ir: mismatched operands of %d and %d components", x.N, y.N)
}

func at(v Value, i int) float64 {
	if v.N == 1 {
		return v.V[0]
	}
	return v.V[i]
}

func binary(op byte, x, y Value) (Value, error) {
	n, err := broadcast(x, y)
	if err != nil {
		return Value{}, err
	}
	out := Value{N: n}
	for i := 0; i < n; i++ {
		a, b := at(x, i), at(y, i)
		switch op {
		case '+':
			out.V[i] = a + b
		case '-':
			out.V[i] = a - b
		case '*':
			out.V[i] = a * b
		case '/':
			out.V[i] = a / b
		default:
			return Value{}, fmt.Errorf("ir: unknown operator %q", op)
		}
	}
	return out, nil
}

// FloorMod is the floored modulo shared by the GLSL mod builtin and the
// CPU evaluator.
func FloorMod(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}

func unary(args []Value, fn func(float64) float64) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("ir: expected 1 argument, got %d", len(args))
	}
	out := args[0]
	for i := 0; i < out.N; i++ {
		out.V[i] = fn(out.V[i])
	}
	return out, nil
}

func pairwise(args []Value, fn func(a, b float64) float64) (Value, error) {
	if len(args) != 2 {
		return Value{}, fmt.Errorf("ir: expected 2 arguments, got %d", len(args))
	}
	n, err := broadcast(args[0], args[1])
	if err != nil {
		return Value{}, err
	}
	out := Value{N: n}
	for i := 0; i < n; i++ {
		out.V[i] = fn(at(args[0], i), at(args[1], i))
	}
	return out, nil
}

func length(v Value) float64 {
	var sum float64
	for i := 0; i < v.N; i++ {
		sum += v.V[i] * v.V[i]
	}
	return math.Sqrt(sum)
}

func builtin(name string, args []Value) (Value, error) {
	switch name {
	case "min":
		return pairwise(args, math.Min)
	case "max":
		return pairwise(args, math.Max)
	case "mod":
		return pairwise(args, FloorMod)
	case "atan2":
		return pairwise(args, math.Atan2)
	case "sin":
		return unary(args, math.Sin)
	case "cos":
		return unary(args, math.Cos)
	case "sqrt":
		return unary(args, math.Sqrt)
	case "floor":
		return unary(args, math.Floor)
	case "abs":
		return unary(args, math.Abs)
	case "length":
		if len(args) != 1 {
			return Value{}, fmt.Errorf("ir: length takes 1 argument, got %d", len(args))
		}
		return Scalar(length(args[0])), nil
	case "normalize":
		if len(args) != 1 {
			return Value{}, fmt.Errorf("ir: normalize takes 1 argument, got %d", len(args))
		}
		l := length(args[0])
		out := args[0]
		for i := 0; i < out.N; i++ {
			out.V[i] /= l
		}
		return out, nil
	case "dot":
		if len(args) != 2 || args[0].N != args[1].N {
			return Value{}, fmt.Errorf("ir: dot takes 2 vectors of equal size")
		}
		var sum float64
		for i := 0; i < args[0].N; i++ {
			sum += args[0].V[i] * args[1].V[i]
		}
		return Scalar(sum), nil
	}
	return Value{}, fmt.Errorf("ir: unknown builtin %q", name)
}
