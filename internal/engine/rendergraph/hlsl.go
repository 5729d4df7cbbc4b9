package rendergraph

import (
	"fmt"

	"github.com/Faultbox/iris/pkg/math"
)

var hlslTemplates = loadTemplates("hlsl")

// HLSL emits Shader Model 5 HLSL for the Direct3D 12 backend. The vertex
// entry point is vs_main and the pixel entry point ps_main.
type HLSL struct{}

func (HLSL) Backend() Backend { return D3D12 }

func (HLSL) Colour(c math.Colour) string {
	return fmt.Sprintf("float4(%s, %s, %s, %s)", literal(c.R), literal(c.G), literal(c.B), literal(c.A))
}

func (HLSL) Texture(b Binding) string {
	return fmt.Sprintf("%s.Sample(sampler%d, input.uv)", b.Name, b.Slot)
}

func (HLSL) Arithmetic(op ArithmeticOp, a, b string) string {
	return arithmetic(op, a, b)
}

func (HLSL) Invert(in string) string {
	return fmt.Sprintf("float4(1.0 - %s.rgb, %s.a)", in, in)
}

func (HLSL) Mix(a, b, factor string) string {
	return fmt.Sprintf("lerp(%s, %s, %s)", a, b, factor)
}

func (HLSL) VertexColour() string {
	return "input.colour"
}

func (HLSL) Program(p Program) (string, string, error) {
	return hlslTemplates.execute(p)
}

// Finalize is a no-op; the D3D12 backend compiles HLSL when building its
// pipeline state.
func (HLSL) Finalize(*Material) error {
	return nil
}
