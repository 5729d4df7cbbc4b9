package physics

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/iris/pkg/math"
)

// Ray is a ray in world space. Direction is normalized.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// intersect returns the distance along r to shape at the given pose, and the
// surface normal there. Rays starting inside a shape hit at distance zero.
func intersect(r Ray, s Shape, p math.Vec3, q math.Quat) (float32, math.Vec3, bool) {
	switch s := s.(type) {
	case Sphere:
		return intersectSphere(r, p, s.Radius)
	case Box:
		// test in box space
		inv := q.Conjugate()
		local := Ray{Origin: inv.Rotate(r.Origin.Sub(p)), Direction: inv.Rotate(r.Direction)}
		t, n, ok := intersectAABB(local, AABB{Min: s.HalfExtents.Neg(), Max: s.HalfExtents})
		return t, q.Rotate(n), ok
	case Capsule:
		inv := q.Conjugate()
		local := Ray{Origin: inv.Rotate(r.Origin.Sub(p)), Direction: inv.Rotate(r.Direction)}
		t, n, ok := intersectCapsule(local, s)
		return t, q.Rotate(n), ok
	}
	return 0, math.Vec3{}, false
}

func intersectSphere(r Ray, centre math.Vec3, radius float32) (float32, math.Vec3, bool) {
	oc := r.Origin.Sub(centre)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	if c <= 0 {
		return 0, r.Direction.Neg(), true
	}
	disc := b*b - c
	if b > 0 || disc < 0 {
		return 0, math.Vec3{}, false
	}
	t := -b - math32.Sqrt(disc)
	return t, r.At(t).Sub(centre).Normalize(), true
}

// intersectAABB is the slab test. The normal is that of the face entered.
func intersectAABB(r Ray, box AABB) (float32, math.Vec3, bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)
	axis := -1
	var sign float32

	for i := 0; i < 3; i++ {
		o, d := r.Origin.Get(i), r.Direction.Get(i)
		lo, hi := box.Min.Get(i), box.Max.Get(i)
		if d == 0 {
			if o < lo || o > hi {
				return 0, math.Vec3{}, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		s := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin = t1
			axis = i
			sign = s
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, math.Vec3{}, false
	}
	if tmin < 0 || axis < 0 {
		return 0, r.Direction.Neg(), true
	}
	var n math.Vec3
	switch axis {
	case 0:
		n.X = sign
	case 1:
		n.Y = sign
	case 2:
		n.Z = sign
	}
	return tmin, n, true
}

// intersectCapsule tests a ray in capsule space, where the axis is Y.
func intersectCapsule(r Ray, c Capsule) (float32, math.Vec3, bool) {
	best := float32(math32.MaxFloat32)
	var normal math.Vec3
	hit := false

	for _, y := range [2]float32{-c.HalfHeight, c.HalfHeight} {
		if t, n, ok := intersectSphere(r, math.Vec3{Y: y}, c.Radius); ok && t < best {
			best, normal, hit = t, n, true
		}
	}

	// cylinder wall, solved in XZ
	o, d := r.Origin, r.Direction
	a := d.X*d.X + d.Z*d.Z
	if a > 1e-8 {
		b := o.X*d.X + o.Z*d.Z
		cc := o.X*o.X + o.Z*o.Z - c.Radius*c.Radius
		if disc := b*b - a*cc; disc >= 0 {
			t := (-b - math32.Sqrt(disc)) / a
			if t < 0 && cc <= 0 {
				t = 0
			}
			if y := o.Y + t*d.Y; t >= 0 && y >= -c.HalfHeight && y <= c.HalfHeight && t < best {
				p := r.At(t)
				best, normal, hit = t, math.Vec3{X: p.X, Z: p.Z}.Normalize(), true
			}
		}
	}
	return best, normal, hit
}
