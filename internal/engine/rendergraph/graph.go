// Package rendergraph builds materials from graphs of shader nodes.
//
// A Graph describes a surface as a DAG of nodes. A Compiler walks the graph
// in dependency order and hands each node to a backend Emitter, which
// produces shader source for OpenGL (GLSL), Direct3D 12 (HLSL) or WebGPU
// (WGSL). The resulting Material is cached on the graph.
package rendergraph

import (
	"github.com/google/uuid"
)

// Backend identifies a shading language target.
type Backend uint8

const (
	OpenGL Backend = iota
	D3D12
	WebGPU
)

func (b Backend) String() string {
	switch b {
	case OpenGL:
		return "opengl"
	case D3D12:
		return "d3d12"
	case WebGPU:
		return "webgpu"
	default:
		return "unknown"
	}
}

// Graph is a render graph: the node producing the surface colour and an
// optional node producing a tangent-space normal.
type Graph struct {
	ID   uuid.UUID
	Name string

	// Colour is the surface colour. Nil means the vertex colour.
	Colour Node
	// Normal perturbs the surface normal when set.
	Normal Node

	materials map[Backend]*Material
}

// New creates an empty graph that renders vertex colours.
func New(name string) *Graph {
	return &Graph{
		ID:        uuid.New(),
		Name:      name,
		materials: make(map[Backend]*Material),
	}
}

// Material returns the material compiled for backend, or nil.
func (g *Graph) Material(backend Backend) *Material {
	return g.materials[backend]
}

// Invalidate drops every compiled material so the next compile rebuilds them.
// Texture nodes keep their resolved textures.
func (g *Graph) Invalidate() {
	clear(g.materials)
}

func (g *Graph) store(m *Material) {
	if g.materials == nil {
		g.materials = make(map[Backend]*Material)
	}
	g.materials[m.Backend] = m
}
