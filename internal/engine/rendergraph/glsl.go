package rendergraph

import (
	"fmt"

	"github.com/Faultbox/iris/pkg/math"
)

var glslTemplates = loadTemplates("glsl")

// GLSL emits GLSL 4.10 core for the OpenGL backend.
type GLSL struct{}

func (GLSL) Backend() Backend { return OpenGL }

func (GLSL) Colour(c math.Colour) string {
	return fmt.Sprintf("vec4(%s, %s, %s, %s)", literal(c.R), literal(c.G), literal(c.B), literal(c.A))
}

func (GLSL) Texture(b Binding) string {
	return fmt.Sprintf("texture(%s, frag_uv)", b.Name)
}

func (GLSL) Arithmetic(op ArithmeticOp, a, b string) string {
	return arithmetic(op, a, b)
}

func (GLSL) Invert(in string) string {
	return fmt.Sprintf("vec4(vec3(1.0) - %s.rgb, %s.a)", in, in)
}

func (GLSL) Mix(a, b, factor string) string {
	return fmt.Sprintf("mix(%s, %s, %s)", a, b, factor)
}

func (GLSL) VertexColour() string {
	return "frag_colour"
}

func (GLSL) Program(p Program) (string, string, error) {
	return glslTemplates.execute(p)
}

// Finalize is a no-op; the driver compiles GLSL when the program is linked.
func (GLSL) Finalize(*Material) error {
	return nil
}
