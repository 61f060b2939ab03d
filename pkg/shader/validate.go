package shader

import (
	"encoding/binary"
	"fmt"

	"github.com/chazu/sdfgraph/internal/logging"
	"github.com/chazu/sdfgraph/pkg/csg"
	"github.com/chazu/sdfgraph/pkg/ir"
	"github.com/gogpu/naga"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// CompileWGSL compiles WGSL source to SPIR-V. It is used to check that
// generated WGSL is accepted by a real shader compiler.
func CompileWGSL(src string) ([]byte, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("shader: compile wgsl: %w", err)
	}
	if len(spirv) < 4 || binary.LittleEndian.Uint32(spirv) != spirvMagic {
		return nil, fmt.Errorf("shader: compile wgsl: output is not SPIR-V")
	}
	logging.Logger().Debug("shader: compiled wgsl", "bytes", len(spirv))
	return spirv, nil
}

// RenderSPIRV renders root as a WGSL compute program and compiles it.
// The dialect and program of opts are overridden.
func RenderSPIRV(root csg.Node, opts Options) ([]byte, error) {
	opts.Dialect = ir.WGSL
	opts.Program = ProgramCompute
	src, err := Render(root, opts)
	if err != nil {
		return nil, err
	}
	return CompileWGSL(src)
}
