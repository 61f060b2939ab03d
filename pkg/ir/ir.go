// Package ir is a small typed shader IR. Distance functions are built as
// IR, printed as GLSL or WGSL source, and can be interpreted on the CPU so
// generated code is checked against the direct evaluator without a GPU.
package ir

// Type is the type of a declared value. The IR only knows floats and
// 3-component float vectors; narrower vectors appear as swizzle results.
type Type int

const (
	Float Type = iota
	Vec3
)

func (t Type) String() string {
	switch t {
	case Float:
		return "float"
	case Vec3:
		return "vec3"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Expr is an IR expression.
type Expr interface {
	expr() // marker method restricting implementations to this package
}

// Num is a float literal.
type Num float64

// Vec constructs a vec3 from three scalar expressions.
type Vec [3]Expr

// Var references a parameter or a local variable.
type Var string

// Swizzle selects components of a vector, e.g. p.yz.
type Swizzle struct {
	X   Expr
	Sel string
}

// Neg is unary negation.
type Neg struct {
	X Expr
}

// Binary is an arithmetic operation. Op is one of + - * /.
type Binary struct {
	Op   byte
	X, Y Expr
}

// Call invokes a builtin (see Builtins) or a function of the program.
type Call struct {
	Fn   string
	Args []Expr
}

// Mat3Mul multiplies a 3x3 matrix (row-major) by a vec3.
type Mat3Mul struct {
	M [3][3]float64
	X Expr
}

// Mat4Mul multiplies a row-major affine matrix by vec4(X, 1) and keeps xyz.
type Mat4Mul struct {
	M [4][4]float64
	X Expr
}

func (Num) expr()     {}
func (Vec) expr()     {}
func (Var) expr()     {}
func (Swizzle) expr() {}
func (Neg) expr()     {}
func (Binary) expr()  {}
func (Call) expr()    {}
func (Mat3Mul) expr() {}
func (Mat4Mul) expr() {}

// Builtins lists the dialect-neutral builtin function names.
var Builtins = map[string]bool{
	"min":       true,
	"max":       true,
	"length":    true,
	"dot":       true,
	"normalize": true,
	"mod":       true,
	"atan2":     true,
	"sin":       true,
	"cos":       true,
	"sqrt":      true,
	"floor":     true,
	"abs":       true,
}

// Add returns x + y.
func Add(x, y Expr) Expr { return Binary{Op: '+', X: x, Y: y} }

// Sub returns x - y.
func Sub(x, y Expr) Expr { return Binary{Op: '-', X: x, Y: y} }

// Mul returns x * y.
func Mul(x, y Expr) Expr { return Binary{Op: '*', X: x, Y: y} }

// Div returns x / y.
func Div(x, y Expr) Expr { return Binary{Op: '/', X: x, Y: y} }

// Min returns min(x, y).
func Min(x, y Expr) Expr { return Call{Fn: "min", Args: []Expr{x, y}} }

// Max returns max(x, y).
func Max(x, y Expr) Expr { return Call{Fn: "max", Args: []Expr{x, y}} }

// Fn returns a call of name with args.
func Fn(name string, args ...Expr) Expr { return Call{Fn: name, Args: args} }

// VecOf returns a vec3 literal.
func VecOf(x, y, z float64) Expr { return Vec{Num(x), Num(y), Num(z)} }

// Component returns the swizzle letter for axis 0, 1 or 2.
func Component(axis int) string {
	return string("xyz"[axis])
}

// ---------------------------------------------------------------------------
// Statements and functions
// ---------------------------------------------------------------------------

// Stmt is an IR statement.
type Stmt interface {
	stmt()
}

// Decl declares a mutable local variable.
type Decl struct {
	Name string
	Type Type
	X    Expr
}

// Assign overwrites a local variable.
type Assign struct {
	Name string
	X    Expr
}

// SetComponent overwrites one component of a vec3 local.
type SetComponent struct {
	Name  string
	Index int
	X     Expr
}

// Return ends the function with a value.
type Return struct {
	X Expr
}

// Snippet is hand-written source per dialect. A snippet operates in place
// on the vec3 local named by the enclosing Raw statement.
type Snippet struct {
	GLSL string
	WGSL string
}

// For returns the snippet text for d and whether one was supplied.
func (s Snippet) For(d Dialect) (string, bool) {
	switch d {
	case GLSL:
		return s.GLSL, s.GLSL != ""
	case WGSL:
		return s.WGSL, s.WGSL != ""
	}
	return "", false
}

// Raw splices a snippet that rewrites the vec3 local Var. Eval is the
// equivalent numeric mapping used by the interpreter.
type Raw struct {
	Var    string
	Source Snippet
	Eval   func(p [3]float64) [3]float64
}

func (Decl) stmt()         {}
func (Assign) stmt()       {}
func (SetComponent) stmt() {}
func (Return) stmt()       {}
func (Raw) stmt()          {}

// Param is a typed function parameter.
type Param struct {
	Name string
	Type Type
}

// Func is a function definition.
type Func struct {
	Name   string
	Params []Param
	Result Type
	Body   []Stmt
}

// Program is an ordered list of function definitions. Every function only
// calls functions defined before it.
type Program struct {
	Comment string
	Funcs   []*Func
	Entry   string
}

// Lookup returns the function with the given name, or nil.
func (p *Program) Lookup(name string) *Func {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
