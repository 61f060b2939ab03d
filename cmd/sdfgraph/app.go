package main

import (
	"github.com/chazu/sdfgraph/internal/logging"
	"github.com/chazu/sdfgraph/pkg/csg"
	"github.com/chazu/sdfgraph/pkg/engine"
	"github.com/chazu/sdfgraph/pkg/mesh"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the scene engine to the mesher.
type App struct {
	engine *engine.Engine
	mesh   mesh.Options
}

// MeshData is the JSON mesh format written by -mesh.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a scene.
type EvalResult struct {
	Root   csg.Node        `json:"-"`
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
}

// NewApp creates a new App with the given mesh options.
func NewApp(opts mesh.Options) *App {
	return &App{
		engine: engine.NewEngine(),
		mesh:   opts,
	}
}

// Load evaluates scene source. Evaluation problems are reported in Errors
// with a nil Root.
func (a *App) Load(source string) EvalResult {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	root, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		logging.Logger().Error("evaluate fatal error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    e.Line,
			Col:     e.Col,
			Message: e.Message,
		})
	}
	if len(result.Errors) == 0 {
		result.Root = root
	}
	return result
}

// Evaluate loads source and tessellates the scene into one colored mesh per
// part.
func (a *App) Evaluate(source string) EvalResult {
	result := a.Load(source)
	if result.Root == nil {
		return result
	}
	meshes, err := a.Meshes(result.Root)
	if err != nil {
		logging.Logger().Error("tessellate error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	result.Meshes = meshes
	return result
}

// Meshes tessellates root part by part. Parts without a surface inside the
// bounds are skipped.
func (a *App) Meshes(root csg.Node) ([]MeshData, error) {
	parts, err := mesh.Parts(root, a.mesh)
	if err != nil {
		return nil, err
	}
	meshes := []MeshData{}
	for _, m := range parts {
		if m.IsEmpty() {
			continue
		}
		meshes = append(meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.Name,
			Color:    colorPalette[len(meshes)%len(colorPalette)],
		})
	}
	return meshes, nil
}
