package rendergraph

import (
	"github.com/Faultbox/iris/internal/engine/texture"
	"github.com/Faultbox/iris/pkg/math"
)

// Node is one step of a render graph. Every node evaluates to an RGBA value.
// The set of node kinds is closed; the compiler dispatches on the concrete
// type.
type Node interface {
	kind() string
}

// ColourNode is a constant colour.
type ColourNode struct {
	Colour math.Colour
}

// TextureNode samples a texture at the mesh texture coordinates. Path and
// Usage are resolved through the compiler's TextureSource the first time the
// node is compiled; afterwards Texture holds the result.
type TextureNode struct {
	Path    string
	Usage   texture.Usage
	Texture *texture.Texture
}

// ArithmeticOp is a component-wise operator.
type ArithmeticOp uint8

const (
	Add ArithmeticOp = iota
	Subtract
	Multiply
	Divide
)

func (op ArithmeticOp) String() string {
	switch op {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	case Multiply:
		return "multiply"
	case Divide:
		return "divide"
	default:
		return "unknown"
	}
}

// ArithmeticNode combines two inputs component-wise.
type ArithmeticNode struct {
	Op   ArithmeticOp
	A, B Node
}

// InvertNode returns one minus the input's RGB, keeping alpha.
type InvertNode struct {
	Input Node
}

// MixNode blends A towards B by Factor.
type MixNode struct {
	A, B   Node
	Factor Node
}

// VertexColourNode is the interpolated vertex colour.
type VertexColourNode struct{}

func (*ColourNode) kind() string       { return "colour" }
func (*TextureNode) kind() string      { return "texture" }
func (*ArithmeticNode) kind() string   { return "arithmetic" }
func (*InvertNode) kind() string       { return "invert" }
func (*MixNode) kind() string          { return "mix" }
func (*VertexColourNode) kind() string { return "vertex_colour" }

// Colour returns a constant colour node.
func Colour(c math.Colour) *ColourNode {
	return &ColourNode{Colour: c}
}

// Texture returns a node sampling the image at path.
func Texture(path string) *TextureNode {
	return &TextureNode{Path: path, Usage: texture.UsageImage}
}

// TextureData returns a node sampling non-colour data, such as a normal map.
func TextureData(path string) *TextureNode {
	return &TextureNode{Path: path, Usage: texture.UsageData}
}

// TextureFrom returns a node sampling an already loaded texture.
func TextureFrom(t *texture.Texture) *TextureNode {
	return &TextureNode{Path: t.Name, Usage: t.Usage, Texture: t}
}

// Arithmetic returns a node applying op to a and b.
func Arithmetic(op ArithmeticOp, a, b Node) *ArithmeticNode {
	return &ArithmeticNode{Op: op, A: a, B: b}
}

// Invert returns a node inverting in.
func Invert(in Node) *InvertNode {
	return &InvertNode{Input: in}
}

// Mix returns a node blending a towards b by factor.
func Mix(a, b, factor Node) *MixNode {
	return &MixNode{A: a, B: b, Factor: factor}
}

// VertexColour returns a node reading the vertex colour.
func VertexColour() *VertexColourNode {
	return &VertexColourNode{}
}

// input is a named edge used for traversal and error reporting.
type input struct {
	name string
	node Node
}

// inputs returns the edges of n in evaluation order.
func inputs(n Node) []input {
	switch n := n.(type) {
	case *ArithmeticNode:
		return []input{{"a", n.A}, {"b", n.B}}
	case *InvertNode:
		return []input{{"input", n.Input}}
	case *MixNode:
		return []input{{"a", n.A}, {"b", n.B}, {"factor", n.Factor}}
	default:
		return nil
	}
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *ColourNode:
		return n == nil
	case *TextureNode:
		return n == nil
	case *ArithmeticNode:
		return n == nil
	case *InvertNode:
		return n == nil
	case *MixNode:
		return n == nil
	case *VertexColourNode:
		return n == nil
	default:
		return false
	}
}
