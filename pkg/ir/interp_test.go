package ir

import (
	"errors"
	"math"
	"testing"
)

func TestFloorMod(t *testing.T) {
	tests := []struct{ x, y, want float64 }{
		{1.5, 1, 0.5},
		{-0.5, 1, 0.5},
		{-3, 2, 1},
		{4, 2, 0},
	}
	for _, tt := range tests {
		if got := FloorMod(tt.x, tt.y); got != tt.want {
			t.Errorf("FloorMod(%g, %g) = %g, want %g", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestInterpDistance(t *testing.T) {
	in := NewInterp(&Program{Funcs: []*Func{sphereFunc()}})
	// p = (0, 3, 4+1) with x cleared: length(0, 3, 5) - 1
	got, err := in.Distance("f", [3]float64{7, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	want := math.Sqrt(9+25) - 1
	if got != want {
		t.Errorf("got %g, want %g", got, want)
	}
}

func TestInterpCallsEarlierFunctions(t *testing.T) {
	helper := &Func{
		Name:   "twice",
		Params: []Param{{Name: "x", Type: Float}},
		Result: Float,
		Body:   []Stmt{Return{X: Mul(Var("x"), Num(2))}},
	}
	main := &Func{
		Name:   "DE",
		Params: []Param{{Name: "pos", Type: Vec3}},
		Result: Float,
		Body: []Stmt{
			Decl{Name: "d", Type: Float, X: Fn("twice", Swizzle{X: Var("pos"), Sel: "y"})},
			Assign{Name: "d", X: Min(Var("d"), Num(1))},
			Return{X: Var("d")},
		},
	}
	in := NewInterp(&Program{Funcs: []*Func{helper, main}, Entry: "DE"})
	for _, tt := range []struct{ y, want float64 }{{0.25, 0.5}, {3, 1}} {
		got, err := in.Distance("DE", [3]float64{0, tt.y, 0})
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("y=%g: got %g, want %g", tt.y, got, tt.want)
		}
	}
}

func TestInterpMatrices(t *testing.T) {
	m3 := [3][3]float64{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}}
	m4 := [4][4]float64{{0, -1, 0, 1}, {1, 0, 0, 2}, {0, 0, 1, 3}, {0, 0, 0, 1}}
	f := func(e Expr) *Func {
		return &Func{Name: "m", Params: []Param{{Name: "p", Type: Vec3}}, Result: Vec3, Body: []Stmt{Return{X: e}}}
	}
	tests := []struct {
		name string
		e    Expr
		want [3]float64
	}{
		{"mat3", Mat3Mul{M: m3, X: Var("p")}, [3]float64{-2, 1, 3}},
		{"mat4", Mat4Mul{M: m4, X: Var("p")}, [3]float64{-1, 3, 6}},
		{"vec broadcast", Mul(Var("p"), Num(2)), [3]float64{2, 4, 6}},
		{"neg", Neg{X: Var("p")}, [3]float64{-1, -2, -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewInterp(&Program{Funcs: []*Func{f(tt.e)}}).Call("m", Vector3(1, 2, 3))
			if err != nil {
				t.Fatal(err)
			}
			if v.Vec3() != tt.want {
				t.Errorf("got %v, want %v", v.Vec3(), tt.want)
			}
		})
	}
}

func TestInterpRaw(t *testing.T) {
	body := func(eval func([3]float64) [3]float64) []Stmt {
		return []Stmt{
			Decl{Name: "p", Type: Vec3, X: Var("pos")},
			Raw{Var: "p", Eval: eval},
			Return{X: Swizzle{X: Var("p"), Sel: "x"}},
		}
	}
	shift := func(p [3]float64) [3]float64 { return [3]float64{p[0] + 1, p[1], p[2]} }
	in := NewInterp(&Program{Funcs: []*Func{{Name: "w", Params: []Param{{Name: "pos", Type: Vec3}}, Result: Float, Body: body(shift)}}})
	got, err := in.Distance("w", [3]float64{2, 0, 0})
	if err != nil || got != 3 {
		t.Errorf("got %g, %v; want 3", got, err)
	}

	in = NewInterp(&Program{Funcs: []*Func{{Name: "w", Params: []Param{{Name: "pos", Type: Vec3}}, Result: Float, Body: body(nil)}}})
	if _, err := in.Distance("w", [3]float64{}); !errors.Is(err, ErrNoEval) {
		t.Errorf("expected ErrNoEval, got %v", err)
	}
}

func TestInterpErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   *Func
		args []Value
	}{
		{"undefined variable", &Func{Name: "f", Result: Float, Body: []Stmt{Return{X: Var("q")}}}, nil},
		{"undefined function", &Func{Name: "f", Result: Float, Body: []Stmt{Return{X: Fn("nope")}}}, nil},
		{"wrong argument type", &Func{Name: "f", Params: []Param{{Name: "p", Type: Vec3}}, Result: Float, Body: []Stmt{Return{X: Num(0)}}}, []Value{Scalar(1)}},
		{"wrong return type", &Func{Name: "f", Result: Float, Body: []Stmt{Return{X: VecOf(1, 2, 3)}}}, nil},
		{"missing return", &Func{Name: "f", Result: Float}, nil},
		{"bad swizzle", &Func{Name: "f", Result: Float, Body: []Stmt{Return{X: Swizzle{X: Num(1), Sel: "y"}}}}, nil},
		{"recursion", &Func{Name: "f", Result: Float, Body: []Stmt{Return{X: Fn("f")}}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewInterp(&Program{Funcs: []*Func{tt.fn}}).Call("f", tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}
