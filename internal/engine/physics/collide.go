package physics

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/iris/pkg/math"
)

// contact is a penetration between two bodies. Normal points from a to b.
type contact struct {
	a, b   Handle
	normal math.Vec3
	depth  float32
}

// pose is a shape placed in the world.
type pose struct {
	shape       Shape
	position    math.Vec3
	orientation math.Quat
}

// core returns the segment a sphere or capsule is swept along, and its
// radius. Spheres are a degenerate segment.
func (p pose) core() (math.Vec3, math.Vec3, float32, bool) {
	switch s := p.shape.(type) {
	case Sphere:
		return p.position, p.position, s.Radius, true
	case Capsule:
		a, b := s.segment(p.position, p.orientation)
		return a, b, s.Radius, true
	}
	return math.Vec3{}, math.Vec3{}, 0, false
}

// collide returns the contact normal (from a to b) and depth, if a and b
// penetrate.
//
// Rounded shapes are exact. Box pairs use their world bounds, which is exact
// for axis-aligned boxes and conservative otherwise.
func collide(a, b pose) (math.Vec3, float32, bool) {
	a0, a1, ra, aRound := a.core()
	b0, b1, rb, bRound := b.core()

	switch {
	case aRound && bRound:
		pa, pb := closestSegments(a0, a1, b0, b1)
		return spheres(pa, ra, pb, rb)
	case aRound:
		box := b.shape.(Box)
		return roundBox(a0, a1, ra, box, b.position, b.orientation)
	case bRound:
		box := a.shape.(Box)
		n, d, ok := roundBox(b0, b1, rb, box, a.position, a.orientation)
		return n.Neg(), d, ok
	default:
		return boxes(a.shape.Bounds(a.position, a.orientation), b.shape.Bounds(b.position, b.orientation))
	}
}

func spheres(pa math.Vec3, ra float32, pb math.Vec3, rb float32) (math.Vec3, float32, bool) {
	d := pb.Sub(pa)
	dist := d.Length()
	depth := ra + rb - dist
	if depth <= 0 {
		return math.Vec3{}, 0, false
	}
	if dist < 1e-6 {
		return math.UnitY, depth, true
	}
	return d.Scale(1 / dist), depth, true
}

// roundBox collides a sphere-swept segment with an oriented box. The normal
// points from the segment towards the box.
func roundBox(s0, s1 math.Vec3, r float32, box Box, p math.Vec3, q math.Quat) (math.Vec3, float32, bool) {
	inv := q.Conjugate()
	l0 := inv.Rotate(s0.Sub(p))
	l1 := inv.Rotate(s1.Sub(p))
	h := box.HalfExtents

	// alternate between the two closest-point problems; two rounds settle
	// for the segment lengths bodies use
	c := closestOnSegment(l0, l1, math.Zero)
	for i := 0; i < 2; i++ {
		c = closestOnSegment(l0, l1, clampBox(c, h))
	}

	onBox := clampBox(c, h)
	diff := c.Sub(onBox)
	dist := diff.Length()

	var local math.Vec3
	var depth float32
	if dist > 1e-6 {
		if dist >= r {
			return math.Vec3{}, 0, false
		}
		local = diff.Scale(-1 / dist)
		depth = r - dist
	} else {
		// centre inside the box: leave through the nearest face
		best := float32(math32.MaxFloat32)
		for i := 0; i < 3; i++ {
			v := c.Get(i)
			gap := h.Get(i) - math32.Abs(v)
			if gap < best {
				best = gap
				local = math.Vec3{}
				sign := float32(-1)
				if v < 0 {
					sign = 1
				}
				switch i {
				case 0:
					local.X = sign
				case 1:
					local.Y = sign
				case 2:
					local.Z = sign
				}
			}
		}
		depth = r + best
	}
	return q.Rotate(local), depth, true
}

func boxes(a, b AABB) (math.Vec3, float32, bool) {
	if !a.Overlaps(b) {
		return math.Vec3{}, 0, false
	}
	ca, cb := a.Center(), b.Center()
	best := float32(math32.MaxFloat32)
	var normal math.Vec3
	for i := 0; i < 3; i++ {
		overlap := math32.Min(a.Max.Get(i), b.Max.Get(i)) - math32.Max(a.Min.Get(i), b.Min.Get(i))
		if overlap < best {
			best = overlap
			sign := float32(1)
			if cb.Get(i) < ca.Get(i) {
				sign = -1
			}
			normal = math.Vec3{}
			switch i {
			case 0:
				normal.X = sign
			case 1:
				normal.Y = sign
			case 2:
				normal.Z = sign
			}
		}
	}
	if best <= 0 {
		return math.Vec3{}, 0, false
	}
	return normal, best, true
}

func clampBox(p, h math.Vec3) math.Vec3 {
	return math.Vec3{
		X: clamp(p.X, -h.X, h.X),
		Y: clamp(p.Y, -h.Y, h.Y),
		Z: clamp(p.Z, -h.Z, h.Z),
	}
}

func closestOnSegment(a, b, p math.Vec3) math.Vec3 {
	ab := b.Sub(a)
	l := ab.Dot(ab)
	if l < 1e-12 {
		return a
	}
	return a.Add(ab.Scale(clamp(p.Sub(a).Dot(ab)/l, 0, 1)))
}

// closestSegments returns the closest points between segments p1q1 and p2q2.
func closestSegments(p1, q1, p2, q2 math.Vec3) (math.Vec3, math.Vec3) {
	const eps = 1e-12
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float32
	switch {
	case a <= eps && e <= eps:
		return p1, p2
	case a <= eps:
		t = clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			s = clamp(-c/a, 0, 1)
			break
		}
		b := d1.Dot(d2)
		if denom := a*e - b*b; denom > eps {
			s = clamp((b*f-c*e)/denom, 0, 1)
		}
		t = (b*s + f) / e
		if t < 0 {
			t = 0
			s = clamp(-c/a, 0, 1)
		} else if t > 1 {
			t = 1
			s = clamp((b-c)/a, 0, 1)
		}
	}
	return p1.Add(d1.Scale(s)), p2.Add(d2.Scale(t))
}
