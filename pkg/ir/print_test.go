package ir

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1.0"},
		{0.5, "0.5"},
		{-2, "-2.0"},
		{1e20, "1e+20"},
		{0, "0.0"},
	}
	for _, tt := range tests {
		if got := FormatNum(tt.in); got != tt.want {
			t.Errorf("FormatNum(%g) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintExpr(t *testing.T) {
	p := Var("p")
	ident := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	tests := []struct {
		name string
		e    Expr
		glsl string
		wgsl string
	}{
		{
			name: "sphere",
			e:    Sub(Fn("length", p), Num(1)),
			glsl: "length(p) - 1.0",
			wgsl: "length(p) - 1.0",
		},
		{
			name: "translate",
			e:    Add(p, VecOf(1, 0, -2)),
			glsl: "p + vec3(1.0, 0.0, -2.0)",
			wgsl: "p + vec3<f32>(1.0, 0.0, -2.0)",
		},
		{
			name: "difference",
			e:    Max(Var("a"), Neg{X: Var("b")}),
			glsl: "max(a, -(b))",
			wgsl: "max(a, -(b))",
		},
		{
			name: "negative literal operand",
			e:    Mul(Var("a"), Num(-1)),
			glsl: "a * (-1.0)",
			wgsl: "a * (-1.0)",
		},
		{
			name: "swizzled matrix product",
			e:    Swizzle{X: Mat3Mul{M: ident, X: p}, Sel: "yz"},
			glsl: "(mat3(1.0, 0.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 1.0) * p).yz",
			wgsl: "(mat3x3<f32>(1.0, 0.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 1.0) * p).yz",
		},
		{
			name: "atan2",
			e:    Fn("atan2", Var("y"), Var("x")),
			glsl: "atan(y, x)",
			wgsl: "atan2(y, x)",
		},
		{
			name: "mod",
			e:    Mul(Num(2), Fn("mod", Var("x"), Var("r"))),
			glsl: "2.0 * mod(x, r)",
			wgsl: "2.0 * (x - (r * floor(x / r)))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, c := range []struct {
				d    Dialect
				want string
			}{{GLSL, tt.glsl}, {WGSL, tt.wgsl}} {
				got, err := NewPrinter(c.d).Expr(tt.e)
				if err != nil {
					t.Fatalf("%s: %v", c.d, err)
				}
				if got != c.want {
					t.Errorf("%s: got %q, want %q", c.d, got, c.want)
				}
			}
		})
	}
}

func TestPrintMat4(t *testing.T) {
	m := [4][4]float64{{1, 0, 0, 3}, {0, 1, 0, 4}, {0, 0, 1, 5}, {0, 0, 0, 1}}
	got, err := NewPrinter(GLSL).Expr(Mat4Mul{M: m, X: Var("p")})
	if err != nil {
		t.Fatal(err)
	}
	want := "(mat4(1.0, 0.0, 0.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 0.0, 1.0, 0.0, 3.0, 4.0, 5.0, 1.0) * vec4(p, 1.0)).xyz"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func sphereFunc() *Func {
	return &Func{
		Name:   "f",
		Params: []Param{{Name: "pos", Type: Vec3}},
		Result: Float,
		Body: []Stmt{
			Decl{Name: "p", Type: Vec3, X: Add(Var("pos"), VecOf(0, 0, 1))},
			SetComponent{Name: "p", Index: 0, X: Num(0)},
			Return{X: Sub(Fn("length", Var("p")), Num(1))},
		},
	}
}

func TestPrintFunc(t *testing.T) {
	glsl, err := NewPrinter(GLSL).Func(sphereFunc())
	if err != nil {
		t.Fatal(err)
	}
	wantGLSL := strings.Join([]string{
		"float f(in vec3 pos)",
		"{",
		"    vec3 p = pos + vec3(0.0, 0.0, 1.0);",
		"    p.x = 0.0;",
		"    return length(p) - 1.0;",
		"}",
		"",
	}, "\n")
	if glsl != wantGLSL {
		t.Errorf("glsl mismatch\ngot:\n%s\nwant:\n%s", glsl, wantGLSL)
	}

	wgsl, err := NewPrinter(WGSL).Func(sphereFunc())
	if err != nil {
		t.Fatal(err)
	}
	wantWGSL := strings.Join([]string{
		"fn f(pos: vec3<f32>) -> f32 {",
		"    var p: vec3<f32> = pos + vec3<f32>(0.0, 0.0, 1.0);",
		"    p.x = 0.0;",
		"    return length(p) - 1.0;",
		"}",
		"",
	}, "\n")
	if wgsl != wantWGSL {
		t.Errorf("wgsl mismatch\ngot:\n%s\nwant:\n%s", wgsl, wantWGSL)
	}
}

func TestPrintRaw(t *testing.T) {
	raw := Raw{Var: "p", Source: Snippet{GLSL: "p.x += 1.0;\np.y *= 2.0;"}}
	f := &Func{Name: "w", Params: []Param{{Name: "p0", Type: Vec3}}, Result: Float, Body: []Stmt{
		Decl{Name: "p", Type: Vec3, X: Var("p0")},
		raw,
		Return{X: Fn("length", Var("p"))},
	}}
	src, err := NewPrinter(GLSL).Func(f)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "    p.x += 1.0;\n    p.y *= 2.0;\n") {
		t.Errorf("snippet not indented line by line:\n%s", src)
	}
	if _, err := NewPrinter(WGSL).Func(f); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
}

func TestPrintProgram(t *testing.T) {
	p := &Program{Comment: "scene", Funcs: []*Func{sphereFunc(), sphereFunc()}}
	src, err := NewPrinter(GLSL).Program(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(src, "/*\nscene\n*/\n\nfloat f(") {
		t.Errorf("unexpected header:\n%s", src)
	}
	if strings.Count(src, "}\n\nfloat f(") != 1 {
		t.Errorf("functions not separated by one blank line:\n%s", src)
	}
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{"glsl": GLSL, "WGSL": WGSL, " wgsl ": WGSL} {
		got, err := ParseDialect(in)
		if err != nil || got != want {
			t.Errorf("ParseDialect(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDialect("hlsl"); err == nil {
		t.Error("expected error for hlsl")
	}
}
