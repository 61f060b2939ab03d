package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/sdfgraph/pkg/csg"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// TestExampleFiles evaluates every scene shipped in examples/.
func TestExampleFiles(t *testing.T) {
	files, err := filepath.Glob("../../examples/*.lisp")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no example files found")
	}
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			root := mustEval(t, string(src))
			if root.Parent() != nil {
				t.Errorf("root has a parent")
			}
			if d := csg.Distance(root, v3.Vec{X: 50, Y: 50, Z: 50}); d <= 0 {
				t.Errorf("far point is inside: %g", d)
			}
		})
	}
}
