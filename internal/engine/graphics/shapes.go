package graphics

import "github.com/Faultbox/iris/pkg/math"

// Cube builds a unit cube centred on the origin with per-face normals.
func Cube(colour math.Colour) Mesh {
	type face struct {
		normal  [3]float32
		corners [4][3]float32
	}
	faces := []face{
		{[3]float32{0, 0, 1}, [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, c := range f.corners {
			vertices = append(vertices, Vertex{
				Position: c,
				Normal:   f.normal,
				Colour:   colour.Array(),
				TexCoord: uvs[i],
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh(vertices, indices)
}

// Plane builds a unit quad in the XZ plane facing +Y.
func Plane(colour math.Colour) Mesh {
	c := colour.Array()
	vertices := []Vertex{
		{Position: [3]float32{-0.5, 0, 0.5}, Normal: [3]float32{0, 1, 0}, Colour: c, TexCoord: [2]float32{0, 0}},
		{Position: [3]float32{0.5, 0, 0.5}, Normal: [3]float32{0, 1, 0}, Colour: c, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{0.5, 0, -0.5}, Normal: [3]float32{0, 1, 0}, Colour: c, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{-0.5, 0, -0.5}, Normal: [3]float32{0, 1, 0}, Colour: c, TexCoord: [2]float32{0, 1}},
	}
	return NewMesh(vertices, []uint32{0, 1, 2, 0, 2, 3})
}

// Line is a coloured segment.
type Line struct {
	From       math.Vec3
	FromColour math.Colour
	To         math.Vec3
	ToColour   math.Colour
}

// Lines builds a mesh for the lines primitive, two vertices per segment.
func Lines(lines []Line) Mesh {
	vertices := make([]Vertex, 0, len(lines)*2)
	indices := make([]uint32, 0, len(lines)*2)
	for _, l := range lines {
		base := uint32(len(vertices))
		vertices = append(vertices,
			Vertex{Position: l.From.Array(), Colour: l.FromColour.Array()},
			Vertex{Position: l.To.Array(), Colour: l.ToColour.Array()},
		)
		indices = append(indices, base, base+1)
	}
	return NewMesh(vertices, indices)
}
