// Package debugdraw provides debug visualization utilities.
package debugdraw

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/pkg/math"
)

// BoxEdgeCount is the number of lines in a box wireframe.
const BoxEdgeCount = 12

// DefaultPadding is the default padding for selection boxes.
const DefaultPadding = 0.01

// boxEdges pairs corner indices. Bits 0, 1 and 2 of a corner index select
// the +X, +Y and +Z sides.
var boxEdges = [BoxEdgeCount][2]int{
	// bottom face
	{0, 1}, {1, 5}, {5, 4}, {4, 0},
	// top face
	{2, 3}, {3, 7}, {7, 6}, {6, 2},
	// vertical edges
	{0, 2}, {1, 3}, {5, 7}, {4, 6},
}

// Box returns the wireframe of a box given its eight corners.
func Box(corners [8]math.Vec3, colour math.Colour) []graphics.Line {
	lines := make([]graphics.Line, 0, BoxEdgeCount)
	for _, e := range boxEdges {
		lines = append(lines, graphics.Line{
			From: corners[e[0]], FromColour: colour,
			To: corners[e[1]], ToColour: colour,
		})
	}
	return lines
}

// AABB returns the wireframe of an axis-aligned box grown by padding on
// every side. Inverted bounds are normalized first.
func AABB(min, max math.Vec3, padding float32, colour math.Colour) []graphics.Line {
	lo := min.Min(max)
	hi := min.Max(max)
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	lo = lo.Sub(pad)
	hi = hi.Add(pad)

	var corners [8]math.Vec3
	for i := range corners {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		corners[i] = c
	}
	return Box(corners, colour)
}

// Circle returns a circle of segments lines around centre, in the plane
// spanned by u and v.
func Circle(centre, u, v math.Vec3, radius float32, segments int, colour math.Colour) []graphics.Line {
	lines := make([]graphics.Line, 0, segments)
	point := func(i int) math.Vec3 {
		a := 2 * math32.Pi * float32(i) / float32(segments)
		return centre.Add(u.Scale(radius * math32.Cos(a))).Add(v.Scale(radius * math32.Sin(a)))
	}
	prev := point(0)
	for i := 1; i <= segments; i++ {
		next := point(i)
		lines = append(lines, graphics.Line{From: prev, FromColour: colour, To: next, ToColour: colour})
		prev = next
	}
	return lines
}

// Sphere returns three great circles of a sphere, oriented by q.
func Sphere(centre math.Vec3, q math.Quat, radius float32, colour math.Colour) []graphics.Line {
	x, y, z := q.Rotate(math.UnitX), q.Rotate(math.UnitY), q.Rotate(math.UnitZ)
	lines := Circle(centre, x, y, radius, 16, colour)
	lines = append(lines, Circle(centre, y, z, radius, 16, colour)...)
	return append(lines, Circle(centre, z, x, radius, 16, colour)...)
}

// Segment returns a single line.
func Segment(from, to math.Vec3, colour math.Colour) graphics.Line {
	return graphics.Line{From: from, FromColour: colour, To: to, ToColour: colour}
}
