package physics

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/iris/pkg/math"
)

// Shape is the collision geometry of a body. The set of shapes is closed:
// Box, Sphere and Capsule.
type Shape interface {
	// Bounds returns the world-space box enclosing the shape at a pose.
	Bounds(position math.Vec3, orientation math.Quat) AABB
	// Inertia returns the diagonal of the local inertia tensor for a mass.
	Inertia(mass float32) math.Vec3

	shape()
}

// Box is a cuboid centred on the body.
type Box struct {
	HalfExtents math.Vec3
}

// Sphere is a ball centred on the body.
type Sphere struct {
	Radius float32
}

// Capsule is a cylinder along local Y capped with hemispheres.
// HalfHeight is half the length of the cylinder part.
type Capsule struct {
	Radius     float32
	HalfHeight float32
}

func (Box) shape()     {}
func (Sphere) shape()  {}
func (Capsule) shape() {}

func (b Box) Bounds(p math.Vec3, q math.Quat) AABB {
	h := b.HalfExtents
	e := q.Rotate(math.Vec3{X: h.X}).Abs().
		Add(q.Rotate(math.Vec3{Y: h.Y}).Abs()).
		Add(q.Rotate(math.Vec3{Z: h.Z}).Abs())
	return AABB{Min: p.Sub(e), Max: p.Add(e)}
}

func (b Box) Inertia(mass float32) math.Vec3 {
	s := b.HalfExtents.Scale(2)
	k := mass / 12
	return math.Vec3{
		X: k * (s.Y*s.Y + s.Z*s.Z),
		Y: k * (s.X*s.X + s.Z*s.Z),
		Z: k * (s.X*s.X + s.Y*s.Y),
	}
}

// Corners returns the eight corners of the box at a pose. Bits 0, 1 and 2 of
// the index select the +X, +Y and +Z sides.
func (b Box) Corners(p math.Vec3, q math.Quat) [8]math.Vec3 {
	var c [8]math.Vec3
	h := b.HalfExtents
	for i := range c {
		local := h
		if i&1 == 0 {
			local.X = -local.X
		}
		if i&2 == 0 {
			local.Y = -local.Y
		}
		if i&4 == 0 {
			local.Z = -local.Z
		}
		c[i] = p.Add(q.Rotate(local))
	}
	return c
}

func (s Sphere) Bounds(p math.Vec3, _ math.Quat) AABB {
	r := math.Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return AABB{Min: p.Sub(r), Max: p.Add(r)}
}

func (s Sphere) Inertia(mass float32) math.Vec3 {
	i := 0.4 * mass * s.Radius * s.Radius
	return math.Vec3{X: i, Y: i, Z: i}
}

func (c Capsule) Bounds(p math.Vec3, q math.Quat) AABB {
	a, b := c.segment(p, q)
	r := math.Vec3{X: c.Radius, Y: c.Radius, Z: c.Radius}
	return AABB{Min: a.Min(b).Sub(r), Max: a.Max(b).Add(r)}
}

// Inertia approximates the capsule as a cylinder of the full height.
func (c Capsule) Inertia(mass float32) math.Vec3 {
	h := 2 * (c.HalfHeight + c.Radius)
	r2 := c.Radius * c.Radius
	side := mass * (3*r2 + h*h) / 12
	return math.Vec3{X: side, Y: 0.5 * mass * r2, Z: side}
}

// segment returns the end points of the capsule's axis.
func (c Capsule) segment(p math.Vec3, q math.Quat) (math.Vec3, math.Vec3) {
	axis := q.Rotate(math.Vec3{Y: c.HalfHeight})
	return p.Sub(axis), p.Add(axis)
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Overlaps reports whether the boxes intersect.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Center returns the middle of the box.
func (a AABB) Center() math.Vec3 {
	return a.Min.Add(a.Max).Scale(0.5)
}

// Collision filter groups. A pair collides when each body's group is in the
// other's mask.
const (
	GroupDefault uint32 = 1 << iota
	GroupStatic
	GroupCharacter
	GroupGhost

	MaskAll = ^uint32(0)
)

// Filter selects which bodies collide.
type Filter struct {
	Group uint32
	Mask  uint32
}

// Collides reports whether bodies with filters f and o interact.
func (f Filter) Collides(o Filter) bool {
	return f.Group&o.Mask != 0 && o.Group&f.Mask != 0
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
