// Package graphics holds the renderable data the scene owns: meshes, render
// entities and skeletons.
package graphics

import "github.com/Faultbox/iris/pkg/math"

// MaxBoneInfluences is the number of bones a vertex can be weighted to.
const MaxBoneInfluences = 4

// Vertex represents a mesh vertex.
type Vertex struct {
	Position    [3]float32
	Normal      [3]float32
	Colour      [4]float32
	TexCoord    [2]float32
	BoneIDs     [MaxBoneInfluences]uint32
	BoneWeights [MaxBoneInfluences]float32
}

// Mesh holds vertex and index data ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extent returns the half size of the box.
func (b Bounds) Extent() math.Vec3 {
	return b.Max.Sub(b.Min).Scale(0.5)
}

// NewMesh builds a mesh and computes its bounds.
func NewMesh(vertices []Vertex, indices []uint32) Mesh {
	return Mesh{
		Vertices: vertices,
		Indices:  indices,
		Bounds:   ComputeBounds(vertices),
	}
}

// ComputeBounds returns the bounding box of the vertex positions.
func ComputeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	first := math.Vec3{X: vertices[0].Position[0], Y: vertices[0].Position[1], Z: vertices[0].Position[2]}
	b := Bounds{Min: first, Max: first}
	for _, v := range vertices[1:] {
		p := math.Vec3{X: v.Position[0], Y: v.Position[1], Z: v.Position[2]}
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}
