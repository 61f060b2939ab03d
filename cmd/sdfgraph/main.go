// Command sdfgraph builds a signed distance scene and prints it as GLSL or
// WGSL, an ASCII cross-section or a triangle mesh.
//
// Usage:
//
//	sdfgraph -example gear -lang wgsl -program raymarch
//	sdfgraph -scene scene.lisp -mesh out.json
//	sdfgraph -random 7 -slice
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/chazu/sdfgraph/internal/logging"
	"github.com/chazu/sdfgraph/pkg/csg"
	"github.com/chazu/sdfgraph/pkg/ir"
	"github.com/chazu/sdfgraph/pkg/mesh"
	"github.com/chazu/sdfgraph/pkg/shader"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "sdfgraph:", err)
		}
		os.Exit(1)
	}
}

type config struct {
	scene   string
	example string
	random  int64
	deform  bool

	lang    string
	program string
	entry   string

	slice  bool
	sliceZ float64
	mesh   string
	cells  int
	bounds float64

	check   bool
	verbose bool
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var c config
	fs := flag.NewFlagSet("sdfgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.scene, "scene", "", "scene source file, - for stdin")
	fs.StringVar(&c.example, "example", "", "built-in scene: "+strings.Join(csg.SceneNames(), ", "))
	fs.Int64Var(&c.random, "random", -1, "generate a random tree from this seed")
	fs.BoolVar(&c.deform, "deform", true, "allow repeat and fan nodes in random trees")
	fs.StringVar(&c.lang, "lang", "glsl", "shader language: glsl or wgsl")
	fs.StringVar(&c.program, "program", "none", "wrapper program: none, raymarch or compute")
	fs.StringVar(&c.entry, "entry", shader.DefaultEntry, "name of the distance function")
	fs.BoolVar(&c.slice, "slice", false, "print an ASCII cross-section instead of shader code")
	fs.Float64Var(&c.sliceZ, "slice-z", 0, "z of the cross-section")
	fs.StringVar(&c.mesh, "mesh", "", "write a JSON triangle mesh to this file, - for stdout")
	fs.IntVar(&c.cells, "cells", mesh.DefaultCells, "marching cubes resolution")
	fs.Float64Var(&c.bounds, "bounds", mesh.DefaultBounds, "half-extent of the meshed cube")
	fs.BoolVar(&c.check, "check", false, "compile the WGSL form of the scene with naga")
	fs.BoolVar(&c.verbose, "v", false, "debug logging to stderr")
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if fs.NArg() > 0 {
		return c, fmt.Errorf("unexpected arguments %q", fs.Args())
	}

	sources := 0
	for _, set := range []bool{c.scene != "", c.example != "", c.random >= 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return c, errors.New("give exactly one of -scene, -example or -random")
	}
	return c, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	c, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if c.verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer logging.SetLogger(nil)
	}

	dialect, err := ir.ParseDialect(c.lang)
	if err != nil {
		return err
	}
	program, err := shader.ParseProgramKind(c.program)
	if err != nil {
		return err
	}
	opts := shader.Options{Dialect: dialect, Program: program, Entry: c.entry}

	app := NewApp(mesh.Options{Cells: c.cells, Bounds: c.bounds})
	root, err := loadScene(c, app, stdin, stderr)
	if err != nil {
		return err
	}
	logging.Logger().Info("scene loaded", "nodes", len(csg.Nodes(root)))

	if c.check {
		spirv, err := shader.RenderSPIRV(root.Copy(), opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "wgsl ok: %d bytes of SPIR-V\n", len(spirv))
	}

	switch {
	case c.mesh != "":
		return writeMesh(c.mesh, app, root, stdout)
	case c.slice:
		_, err := io.WriteString(stdout, csg.Slice(root, csg.SliceOptions{Z: c.sliceZ}))
		return err
	}
	src, err := shader.Render(root, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, src)
	return err
}

// loadScene builds the tree selected by the source flags.
func loadScene(c config, app *App, stdin io.Reader, stderr io.Writer) (csg.Node, error) {
	switch {
	case c.example != "":
		return csg.Scene(c.example)
	case c.random >= 0:
		rng := rand.New(rand.NewSource(c.random))
		return csg.Random(rng, csg.RandomOptions{Deform: c.deform, Transform: true}), nil
	}

	var src []byte
	var err error
	if c.scene == "-" {
		src, err = io.ReadAll(stdin)
	} else {
		src, err = os.ReadFile(c.scene)
	}
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	result := app.Load(string(src))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(stderr, "%s:%d: %s\n", c.scene, e.Line, e.Message)
			} else {
				fmt.Fprintf(stderr, "%s: %s\n", c.scene, e.Message)
			}
		}
		return nil, fmt.Errorf("%s: %d evaluation error(s)", c.scene, len(result.Errors))
	}
	return result.Root, nil
}

func writeMesh(path string, app *App, root csg.Node, stdout io.Writer) (err error) {
	meshes, err := app.Meshes(root)
	if err != nil {
		return err
	}
	out := stdout
	if path != "-" {
		f, cerr := os.Create(path)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("write mesh: %w", cerr)
			}
		}()
		out = f
	}
	if err = json.NewEncoder(out).Encode(EvalResult{Meshes: meshes, Errors: []EvalErrorData{}}); err != nil {
		return fmt.Errorf("write mesh: %w", err)
	}
	logging.Logger().Info("mesh written", "path", path, "parts", len(meshes))
	return nil
}
