package rendergraph

import (
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/Faultbox/iris/internal/engine/texture"
)

// Uniform names shared by every backend's generated shaders.
const (
	UniformProjection            = "projection"
	UniformView                  = "view"
	UniformModel                 = "model"
	UniformNormalMatrix          = "normal_matrix"
	UniformAmbient               = "ambient"
	UniformPointCount            = "point_count"
	UniformPointPositions        = "point_positions"
	UniformPointColours          = "point_colours"
	UniformPointFalloff          = "point_falloff"
	UniformDirectionalCount      = "directional_count"
	UniformDirectionalDirections = "directional_directions"
	UniformDirectionalColours    = "directional_colours"
)

// Uniforms lists the per-draw uniforms in declaration order.
var Uniforms = []string{
	UniformProjection,
	UniformView,
	UniformModel,
	UniformNormalMatrix,
	UniformAmbient,
	UniformPointCount,
	UniformPointPositions,
	UniformPointColours,
	UniformPointFalloff,
	UniformDirectionalCount,
	UniformDirectionalDirections,
	UniformDirectionalColours,
}

// Binding is a texture bound to a sampler slot.
type Binding struct {
	Slot    int
	Name    string // Sampler name in the generated source
	Texture *texture.Texture
}

// Material is a compiled render graph: shader source for one backend plus
// the resources it binds.
type Material struct {
	GraphID uuid.UUID
	Backend Backend

	VertexSource   string
	FragmentSource string

	// VertexSPIRV and FragmentSPIRV hold compiled modules for WebGPU.
	VertexSPIRV   []byte
	FragmentSPIRV []byte

	Textures []Binding
	Uniforms []string

	// Hash identifies the generated source.
	Hash uint64

	// Handle is set by the renderer backend, e.g. a linked GL program.
	Handle any
}

func sourceHash(vertex, fragment string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(vertex)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(fragment)
	return d.Sum64()
}
