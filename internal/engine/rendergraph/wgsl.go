package rendergraph

import (
	"fmt"

	"github.com/gogpu/naga"

	"github.com/Faultbox/iris/internal/engine/fault"
	"github.com/Faultbox/iris/pkg/math"
)

var wgslTemplates = loadTemplates("wgsl")

// WGSL emits WGSL for the WebGPU backend and compiles it to SPIR-V. The
// vertex entry point is vs_main and the fragment entry point fs_main.
type WGSL struct{}

func (WGSL) Backend() Backend { return WebGPU }

func (WGSL) Colour(c math.Colour) string {
	return fmt.Sprintf("vec4<f32>(%s, %s, %s, %s)", literal(c.R), literal(c.G), literal(c.B), literal(c.A))
}

func (WGSL) Texture(b Binding) string {
	return fmt.Sprintf("textureSample(%s, sampler%d, frag.uv)", b.Name, b.Slot)
}

func (WGSL) Arithmetic(op ArithmeticOp, a, b string) string {
	return arithmetic(op, a, b)
}

func (WGSL) Invert(in string) string {
	return fmt.Sprintf("vec4<f32>(vec3<f32>(1.0) - %s.rgb, %s.a)", in, in)
}

func (WGSL) Mix(a, b, factor string) string {
	return fmt.Sprintf("mix(%s, %s, %s)", a, b, factor)
}

func (WGSL) VertexColour() string {
	return "frag.colour"
}

func (WGSL) Program(p Program) (string, string, error) {
	return wgslTemplates.execute(p)
}

// Finalize compiles both stages to SPIR-V.
func (WGSL) Finalize(m *Material) error {
	var err error
	if m.VertexSPIRV, err = compileWGSL("vertex", m.VertexSource); err != nil {
		return err
	}
	if m.FragmentSPIRV, err = compileWGSL("fragment", m.FragmentSource); err != nil {
		return err
	}
	return nil
}

func compileWGSL(stage, source string) ([]byte, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, &fault.ResourceError{Op: "compile", Resource: stage + " shader", Log: err.Error()}
	}
	return spirv, nil
}
