package ir

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the target shading language.
type Dialect int

const (
	GLSL Dialect = iota
	WGSL
)

func (d Dialect) String() string {
	switch d {
	case GLSL:
		return "glsl"
	case WGSL:
		return "wgsl"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// ParseDialect maps "glsl" or "wgsl" to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "glsl":
		return GLSL, nil
	case "wgsl":
		return WGSL, nil
	}
	return 0, fmt.Errorf("unknown shader dialect %q, expected glsl or wgsl", s)
}

// ErrNoSource is returned when a Raw snippet has no text for the dialect.
var ErrNoSource = errors.New("ir: no source for dialect")

// DefaultIndent is the indentation used for function bodies.
const DefaultIndent = "    "

// Printer renders IR as source text in one dialect.
type Printer struct {
	Dialect Dialect
	Indent  string
}

// NewPrinter returns a printer for d with the default indentation.
func NewPrinter(d Dialect) *Printer {
	return &Printer{Dialect: d, Indent: DefaultIndent}
}

// FormatNum formats a float literal so that it always parses as a float.
func FormatNum(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// TypeName returns the dialect spelling of t.
func (pr *Printer) TypeName(t Type) string {
	if pr.Dialect == WGSL {
		if t == Vec3 {
			return "vec3<f32>"
		}
		return "f32"
	}
	if t == Vec3 {
		return "vec3"
	}
	return "float"
}

// Expr returns the source text of e.
func (pr *Printer) Expr(e Expr) (string, error) {
	var b strings.Builder
	if err := pr.writeExpr(&b, e); err != nil {
		return "", err
	}
	return b.String(), nil
}

// writeOperand writes e, parenthesised when it would otherwise bind
// looser than the surrounding operator.
func (pr *Printer) writeOperand(b *strings.Builder, e Expr) error {
	needParens := false
	switch v := e.(type) {
	case Binary, Neg, Mat3Mul:
		needParens = true
	case Num:
		needParens = v < 0
	}
	if needParens {
		b.WriteByte('(')
	}
	if err := pr.writeExpr(b, e); err != nil {
		return err
	}
	if needParens {
		b.WriteByte(')')
	}
	return nil
}

func (pr *Printer) writeArgs(b *strings.Builder, args []Expr) error {
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := pr.writeExpr(b, a); err != nil {
			return err
		}
	}
	return nil
}

func (pr *Printer) vecCtor(n int) string {
	if pr.Dialect == WGSL {
		return fmt.Sprintf("vec%d<f32>", n)
	}
	return fmt.Sprintf("vec%d", n)
}

func (pr *Printer) writeExpr(b *strings.Builder, e Expr) error {
	switch v := e.(type) {
	case Num:
		b.WriteString(FormatNum(float64(v)))
	case Var:
		b.WriteString(string(v))
	case Vec:
		b.WriteString(pr.vecCtor(3))
		b.WriteByte('(')
		if err := pr.writeArgs(b, v[:]); err != nil {
			return err
		}
		b.WriteByte(')')
	case Swizzle:
		if err := pr.writeOperand(b, v.X); err != nil {
			return err
		}
		b.WriteByte('.')
		b.WriteString(v.Sel)
	case Neg:
		b.WriteString("-(")
		if err := pr.writeExpr(b, v.X); err != nil {
			return err
		}
		b.WriteByte(')')
	case Binary:
		if err := pr.writeOperand(b, v.X); err != nil {
			return err
		}
		b.WriteByte(' ')
		b.WriteByte(v.Op)
		b.WriteByte(' ')
		return pr.writeOperand(b, v.Y)
	case Call:
		return pr.writeCall(b, v)
	case Mat3Mul:
		if pr.Dialect == WGSL {
			b.WriteString("mat3x3<f32>(")
		} else {
			b.WriteString("mat3(")
		}
		// Matrix constructors take columns.
		for c := 0; c < 3; c++ {
			for r := 0; r < 3; r++ {
				if c+r > 0 {
					b.WriteString(", ")
				}
				b.WriteString(FormatNum(v.M[r][c]))
			}
		}
		b.WriteString(") * ")
		return pr.writeOperand(b, v.X)
	case Mat4Mul:
		if pr.Dialect == WGSL {
			b.WriteString("(mat4x4<f32>(")
		} else {
			b.WriteString("(mat4(")
		}
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				if c+r > 0 {
					b.WriteString(", ")
				}
				b.WriteString(FormatNum(v.M[r][c]))
			}
		}
		b.WriteString(") * ")
		b.WriteString(pr.vecCtor(4))
		b.WriteByte('(')
		if err := pr.writeExpr(b, v.X); err != nil {
			return err
		}
		b.WriteString(", 1.0)).xyz")
	case nil:
		return fmt.Errorf("ir: nil expression")
	default:
		return fmt.Errorf("ir: unsupported expression %T", e)
	}
	return nil
}

func (pr *Printer) writeCall(b *strings.Builder, c Call) error {
	switch c.Fn {
	case "mod":
		if len(c.Args) != 2 {
			return fmt.Errorf("ir: mod takes 2 arguments, got %d", len(c.Args))
		}
		if pr.Dialect == WGSL {
			// WGSL % truncates; spell out the floored modulo GLSL uses.
			x, y := c.Args[0], c.Args[1]
			b.WriteByte('(')
			if err := pr.writeExpr(b, Sub(x, Mul(y, Fn("floor", Div(x, y))))); err != nil {
				return err
			}
			b.WriteByte(')')
			return nil
		}
	case "atan2":
		if pr.Dialect == GLSL {
			b.WriteString("atan(")
			if err := pr.writeArgs(b, c.Args); err != nil {
				return err
			}
			b.WriteByte(')')
			return nil
		}
	}
	b.WriteString(c.Fn)
	b.WriteByte('(')
	if err := pr.writeArgs(b, c.Args); err != nil {
		return err
	}
	b.WriteByte(')')
	return nil
}

// Stmt returns the source text of s without indentation or trailing newline.
// Raw snippets may span several lines.
func (pr *Printer) Stmt(s Stmt) (string, error) {
	switch v := s.(type) {
	case Decl:
		x, err := pr.Expr(v.X)
		if err != nil {
			return "", err
		}
		if pr.Dialect == WGSL {
			return fmt.Sprintf("var %s: %s = %s;", v.Name, pr.TypeName(v.Type), x), nil
		}
		return fmt.Sprintf("%s %s = %s;", pr.TypeName(v.Type), v.Name, x), nil
	case Assign:
		x, err := pr.Expr(v.X)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s;", v.Name, x), nil
	case SetComponent:
		if v.Index < 0 || v.Index > 2 {
			return "", fmt.Errorf("ir: component index %d out of range", v.Index)
		}
		x, err := pr.Expr(v.X)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s = %s;", v.Name, Component(v.Index), x), nil
	case Return:
		x, err := pr.Expr(v.X)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("return %s;", x), nil
	case Raw:
		src, ok := v.Source.For(pr.Dialect)
		if !ok {
			return "", fmt.Errorf("%w: %s snippet on %q", ErrNoSource, pr.Dialect, v.Var)
		}
		return strings.TrimSpace(src), nil
	case nil:
		return "", fmt.Errorf("ir: nil statement")
	default:
		return "", fmt.Errorf("ir: unsupported statement %T", s)
	}
}

// Func returns the complete definition of f, terminated by a newline.
func (pr *Printer) Func(f *Func) (string, error) {
	var b strings.Builder
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		if pr.Dialect == WGSL {
			params[i] = fmt.Sprintf("%s: %s", p.Name, pr.TypeName(p.Type))
		} else {
			params[i] = fmt.Sprintf("in %s %s", pr.TypeName(p.Type), p.Name)
		}
	}
	if pr.Dialect == WGSL {
		fmt.Fprintf(&b, "fn %s(%s) -> %s {\n", f.Name, strings.Join(params, ", "), pr.TypeName(f.Result))
	} else {
		fmt.Fprintf(&b, "%s %s(%s)\n{\n", pr.TypeName(f.Result), f.Name, strings.Join(params, ", "))
	}
	for _, s := range f.Body {
		line, err := pr.Stmt(s)
		if err != nil {
			return "", fmt.Errorf("function %s: %w", f.Name, err)
		}
		for _, l := range strings.Split(line, "\n") {
			b.WriteString(pr.Indent)
			b.WriteString(strings.TrimSpace(l))
			b.WriteByte('\n')
		}
	}
	b.WriteString("}\n")
	return b.String(), nil
}

// Program returns the source of every function in p, preceded by the
// program comment. Functions are separated by a blank line.
func (pr *Printer) Program(p *Program) (string, error) {
	var b strings.Builder
	if p.Comment != "" {
		b.WriteString("/*\n")
		b.WriteString(strings.TrimRight(p.Comment, "\n"))
		b.WriteString("\n*/\n\n")
	}
	for i, f := range p.Funcs {
		if i > 0 {
			b.WriteByte('\n')
		}
		src, err := pr.Func(f)
		if err != nil {
			return "", err
		}
		b.WriteString(src)
	}
	return b.String(), nil
}
