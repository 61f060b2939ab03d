package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/chazu/sdfgraph/pkg/csg"
	"github.com/chazu/sdfgraph/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func testApp() *App {
	return NewApp(mesh.Options{Cells: 30, Bounds: 2})
}

// TestE2EGearExample exercises the full pipeline: scene source -> engine ->
// tree -> tessellate -> meshes.
func TestE2EGearExample(t *testing.T) {
	source, err := os.ReadFile("../../examples/gear.lisp")
	if err != nil {
		t.Fatalf("failed to read gear.lisp: %v", err)
	}

	result := testApp().Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	// The file builds the same tree as the built-in gear scene.
	want, err := csg.Scene("gear")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []v3.Vec{{}, {X: 1}, {X: 0.7, Y: 0.7, Z: 0.1}, {X: -1.1, Y: 0.3}} {
		if got, w := csg.Distance(result.Root, p), csg.Distance(want, p); math.Abs(got-w) > 1e-9 {
			t.Errorf("distance at %v = %g, built-in scene gives %g", p, got, w)
		}
	}

	// Expect 2 meshes: the disc and the teeth.
	if len(result.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(result.Meshes))
	}
	for i, m := range result.Meshes {
		if len(m.Vertices) == 0 || len(m.Normals) == 0 || len(m.Indices) == 0 {
			t.Errorf("part %q: empty geometry", m.PartName)
		}
		if m.Color != colorPalette[i] {
			t.Errorf("part %q: color %q, want %q", m.PartName, m.Color, colorPalette[i])
		}
	}
	if !strings.Contains(result.Meshes[0].PartName, "intersection") ||
		!strings.Contains(result.Meshes[1].PartName, "fan") {
		t.Errorf("unexpected part names %q, %q", result.Meshes[0].PartName, result.Meshes[1].PartName)
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	result := testApp().Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if result.Root == nil {
		t.Error("expected an empty scene root")
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	result := testApp().Evaluate("(sphere :radius 1")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
	if result.Root != nil {
		t.Error("expected nil root on error")
	}
}

// TestE2EStructuralError ensures a reused node is reported as an eval error.
func TestE2EStructuralError(t *testing.T) {
	result := testApp().Evaluate("(def s (sphere)) (union s (difference s))")
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a node with two parents")
	}
}

// TestE2EColorPaletteWrapping ensures palette colors repeat past its end.
func TestE2EColorPaletteWrapping(t *testing.T) {
	var b strings.Builder
	b.WriteString("(union")
	n := len(colorPalette) + 2
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, " (sphere :radius 0.12 :at (vec3 %.2f 0 0))", -1.5+0.3*float64(i))
	}
	b.WriteString(")")

	result := NewApp(mesh.Options{Cells: 80, Bounds: 2}).Evaluate(b.String())
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != n {
		t.Fatalf("expected %d meshes, got %d", n, len(result.Meshes))
	}
	for i, m := range result.Meshes {
		if want := colorPalette[i%len(colorPalette)]; m.Color != want {
			t.Errorf("mesh %d: color %q, want %q", i, m.Color, want)
		}
	}
}

// TestE2EPartsOutsideBoundsSkipped ensures parts with no surface in the
// meshed cube produce no mesh.
func TestE2EPartsOutsideBoundsSkipped(t *testing.T) {
	result := testApp().Evaluate("(union (sphere :radius 0.5) (sphere :radius 0.5 :at (vec3 50 0 0)))")
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Errorf("expected 1 mesh, got %d", len(result.Meshes))
	}
}
