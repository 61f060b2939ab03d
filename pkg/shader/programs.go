package shader

import (
	"fmt"
	"strings"

	"github.com/chazu/sdfgraph/pkg/ir"
)

// wrap surrounds the distance program src with the code of opts.Program.
func wrap(src string, opts Options) (string, error) {
	switch opts.Program {
	case ProgramNone:
		return src, nil
	case ProgramRaymarch:
		return src + "\n" + raymarch(opts), nil
	case ProgramCompute:
		if opts.Dialect == ir.WGSL {
			return src + "\n" + computeWGSL(opts), nil
		}
		// #version must be the first line of a GLSL shader.
		return computeGLSLHeader(opts) + src + "\n" + computeGLSLMain(opts), nil
	}
	return "", fmt.Errorf("shader: unknown program %s", opts.Program)
}

// expand substitutes ${name} placeholders and reindents the template with
// opts.Indent.
func expand(tmpl string, opts Options) string {
	t := opts.Trace
	r := strings.NewReplacer(
		"${DE}", opts.Entry,
		"${STEPS}", fmt.Sprint(t.MaxSteps),
		"${EPS}", ir.FormatNum(t.HitEpsilon),
		"${FAR}", ir.FormatNum(t.MaxDistance),
		"${GROUP}", fmt.Sprint(opts.Workgroup),
		"\t", opts.Indent,
	)
	return r.Replace(tmpl)
}

func raymarch(opts Options) string {
	if opts.Dialect == ir.WGSL {
		return expand(raymarchWGSL, opts)
	}
	return expand(raymarchGLSL, opts)
}

const raymarchGLSL = `vec3 ${DE}_norm(in vec3 p)
{
	vec2 e = vec2(${EPS}, 0.0);
	return normalize(vec3(
		${DE}(p + e.xyy) - ${DE}(p - e.xyy),
		${DE}(p + e.yxy) - ${DE}(p - e.yxy),
		${DE}(p + e.yyx) - ${DE}(p - e.yyx)));
}

float sphere_trace(in vec3 ro, in vec3 rd)
{
	float t = 0.0;
	for (int i = 0; i < ${STEPS} && t < ${FAR}; ++i)
	{
		float d = ${DE}(ro + rd * t);
		if (d < ${EPS})
			return t;
		t += d;
	}
	return -1.0;
}
`

const raymarchWGSL = `fn ${DE}_norm(p: vec3<f32>) -> vec3<f32> {
	let e = vec2<f32>(${EPS}, 0.0);
	return normalize(vec3<f32>(
		${DE}(p + e.xyy) - ${DE}(p - e.xyy),
		${DE}(p + e.yxy) - ${DE}(p - e.yxy),
		${DE}(p + e.yyx) - ${DE}(p - e.yyx)));
}

fn sphere_trace(ro: vec3<f32>, rd: vec3<f32>) -> f32 {
	var t: f32 = 0.0;
	for (var i: i32 = 0; i < ${STEPS} && t < ${FAR}; i = i + 1) {
		let d = ${DE}(ro + rd * t);
		if (d < ${EPS}) {
			return t;
		}
		t = t + d;
	}
	return -1.0;
}
`

func computeWGSL(opts Options) string {
	return expand(`@group(0) @binding(0) var<storage, read> positions: array<vec4<f32>>;
@group(0) @binding(1) var<storage, read_write> distances: array<f32>;

@compute @workgroup_size(${GROUP})
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
	let i = id.x;
	if (i >= arrayLength(&distances)) {
		return;
	}
	distances[i] = ${DE}(positions[i].xyz);
}
`, opts)
}

func computeGLSLHeader(opts Options) string {
	return expand(`#version 430
layout(local_size_x = ${GROUP}) in;
layout(std430, binding = 0) readonly buffer Positions { vec4 positions[]; };
layout(std430, binding = 1) writeonly buffer Distances { float distances[]; };

`, opts)
}

func computeGLSLMain(opts Options) string {
	return expand(`void main()
{
	uint i = gl_GlobalInvocationID.x;
	if (i >= uint(distances.length()))
		return;
	distances[i] = ${DE}(positions[i].xyz);
}
`, opts)
}
