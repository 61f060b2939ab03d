// Package shader turns a csg tree into GLSL or WGSL source computing the
// same signed distance as csg.Distance.
//
// Nodes that reduce to a single expression are inlined into their caller.
// All other nodes get a function named f_<kind>_<id>, emitted after every
// function they call. Helper routines contributed by deformers are emitted
// once per distinct source text.
//
// Building assigns node ids and so mutates the tree: do not render the same
// tree from two goroutines. Render a Copy instead.
package shader

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/chazu/sdfgraph/internal/logging"
	"github.com/chazu/sdfgraph/pkg/csg"
	"github.com/chazu/sdfgraph/pkg/ir"
)

// DefaultEntry is the name of the generated distance function.
const DefaultEntry = "DE"

// ProgramKind selects the code wrapped around the distance function.
type ProgramKind int

const (
	// ProgramNone emits the distance function and its dependencies only.
	ProgramNone ProgramKind = iota
	// ProgramRaymarch adds a normal estimate and a sphere tracing loop.
	ProgramRaymarch
	// ProgramCompute adds a compute kernel evaluating a buffer of points.
	ProgramCompute
)

func (k ProgramKind) String() string {
	switch k {
	case ProgramNone:
		return "none"
	case ProgramRaymarch:
		return "raymarch"
	case ProgramCompute:
		return "compute"
	default:
		return fmt.Sprintf("ProgramKind(%d)", int(k))
	}
}

// ParseProgramKind maps "none", "raymarch" or "compute" to a ProgramKind.
func ParseProgramKind(s string) (ProgramKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ProgramNone, nil
	case "raymarch":
		return ProgramRaymarch, nil
	case "compute":
		return ProgramCompute, nil
	}
	return 0, fmt.Errorf("unknown program %q, expected none, raymarch or compute", s)
}

// Options configures code generation. The zero value renders GLSL with
// entry DE and no wrapper.
type Options struct {
	Dialect ir.Dialect
	// Entry names the distance function, default DefaultEntry.
	Entry string
	// Program selects the wrapper around the distance function.
	Program ProgramKind
	// Indent is the body indentation, default ir.DefaultIndent.
	Indent string
	// Trace holds the sphere tracing constants of ProgramRaymarch.
	// Zero fields take csg.DefaultTraceOptions.
	Trace csg.TraceOptions
	// Workgroup is the compute workgroup size, default 64.
	Workgroup int
}

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (o Options) withDefaults() (Options, error) {
	if o.Entry == "" {
		o.Entry = DefaultEntry
	}
	if !identRE.MatchString(o.Entry) || strings.HasPrefix(o.Entry, "f_") || strings.HasPrefix(o.Entry, "csg_") {
		return o, fmt.Errorf("shader: invalid entry name %q", o.Entry)
	}
	if o.Indent == "" {
		o.Indent = ir.DefaultIndent
	}
	d := csg.DefaultTraceOptions()
	if o.Trace.MaxSteps <= 0 {
		o.Trace.MaxSteps = d.MaxSteps
	}
	if o.Trace.HitEpsilon <= 0 {
		o.Trace.HitEpsilon = d.HitEpsilon
	}
	if o.Trace.MaxDistance <= 0 {
		o.Trace.MaxDistance = d.MaxDistance
	}
	if o.Workgroup <= 0 {
		o.Workgroup = 64
	}
	return o, nil
}

// builder implements csg.Emitter for one Build call.
type builder struct {
	printer *ir.Printer
	helpers []*ir.Func
	// byText maps printed helper source to its emitted name.
	byText map[string]string
	names  map[string]bool
	err    error
}

func newBuilder(p *ir.Printer) *builder {
	return &builder{printer: p, byText: make(map[string]string), names: make(map[string]bool)}
}

// Expr returns the inline expression of n or a call of its function.
func (b *builder) Expr(n csg.Node, p ir.Expr) ir.Expr {
	if e, ok := n.EmitInline(b, p); ok {
		return e
	}
	return ir.Fn(csg.FuncName(n), p)
}

// Helper registers fn and returns the name callers must use. Identical
// sources share one definition; a name reused for different source gets a
// numeric suffix.
func (b *builder) Helper(fn *ir.Func) string {
	text, err := b.printer.Func(fn)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return fn.Name
	}
	if name, ok := b.byText[text]; ok {
		return name
	}
	name := fn.Name
	for i := 2; b.names[name]; i++ {
		name = fmt.Sprintf("%s_%d", fn.Name, i)
	}
	if name != fn.Name {
		renamed := *fn
		renamed.Name = name
		fn = &renamed
	}
	b.byText[text] = name
	b.names[name] = true
	b.helpers = append(b.helpers, fn)
	return name
}

// Build assigns node ids and returns the program computing the distance
// of root: helpers, node functions in dependency order, then the entry.
func Build(root csg.Node, opts Options) (*ir.Program, error) {
	if root == nil {
		return nil, errors.New("shader: nil root")
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	printer := &ir.Printer{Dialect: opts.Dialect, Indent: opts.Indent}
	b := newBuilder(printer)

	order := csg.AssignIDs(root)
	pos := ir.Var("pos")
	var funcs []*ir.Func
	for _, n := range order {
		if _, ok := n.EmitInline(b, pos); ok {
			continue
		}
		body := n.EmitBody(b, pos)
		if len(body) == 0 {
			return nil, &csg.TreeError{
				Op:   "render",
				Node: n,
				Err:  fmt.Errorf("%w: %s has neither an inline form nor a body", csg.ErrUnimplemented, n.Kind()),
			}
		}
		funcs = append(funcs, &ir.Func{
			Name:   csg.FuncName(n),
			Params: []ir.Param{{Name: "pos", Type: ir.Vec3}},
			Result: ir.Float,
			Body:   body,
		})
	}
	entry := &ir.Func{
		Name:   opts.Entry,
		Params: []ir.Param{{Name: "pos", Type: ir.Vec3}},
		Result: ir.Float,
		Body:   []ir.Stmt{ir.Return{X: b.Expr(root, pos)}},
	}
	if b.err != nil {
		return nil, wrapSourceErr(b.err)
	}

	prog := &ir.Program{
		Comment: root.String() + "\n\n" + csg.TreeString(root),
		Entry:   opts.Entry,
	}
	prog.Funcs = append(prog.Funcs, b.helpers...)
	prog.Funcs = append(prog.Funcs, funcs...)
	prog.Funcs = append(prog.Funcs, entry)

	logging.Logger().Debug("shader: built program",
		"dialect", opts.Dialect.String(),
		"nodes", len(order),
		"functions", len(funcs),
		"helpers", len(b.helpers))
	return prog, nil
}

// wrapSourceErr marks a missing per-dialect snippet as unimplemented.
func wrapSourceErr(err error) error {
	if errors.Is(err, ir.ErrNoSource) {
		return fmt.Errorf("shader: %w: %w", csg.ErrUnimplemented, err)
	}
	return fmt.Errorf("shader: %w", err)
}

// Render returns the complete source for root.
func Render(root csg.Node, opts Options) (string, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return "", err
	}
	prog, err := Build(root, opts)
	if err != nil {
		return "", err
	}
	printer := &ir.Printer{Dialect: opts.Dialect, Indent: opts.Indent}
	src, err := printer.Program(prog)
	if err != nil {
		return "", wrapSourceErr(err)
	}
	return wrap(src, opts)
}
