package physics

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/iris/internal/engine/debugdraw"
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/pkg/math"
)

const (
	// solverIterations is how many times contacts and constraints are
	// resolved per step.
	solverIterations = 4
	// penetrationSlop is the overlap left uncorrected so resting contacts
	// persist between steps.
	penetrationSlop = 0.005
	// correctionPercent of the remaining overlap is removed each step.
	correctionPercent = 0.8
)

// Debug wireframe colours.
var (
	staticColour    = math.RGB(0.5, 0.5, 0.5)
	dynamicColour   = math.RGB(0.2, 0.9, 0.2)
	ghostColour     = math.RGB(0.9, 0.9, 0.2)
	characterColour = math.RGB(0.2, 0.5, 1)
	jointColour     = math.RGB(1, 0.2, 0.2)
)

type body struct {
	desc        BodyDesc
	position    math.Vec3
	orientation math.Quat
	linear      math.Vec3
	angular     math.Vec3
	force       math.Vec3
	invMass     float32
	invInertia  math.Vec3
	inWorld     bool
	overlaps    []Handle
}

// dynamic reports whether the body responds to forces and contacts.
func (b *body) dynamic() bool {
	return b.invMass > 0 && b.desc.Type != Ghost
}

func (b *body) pose() pose {
	return pose{shape: b.desc.Shape, position: b.position, orientation: b.orientation}
}

// DiscreteWorld is the bundled Backend: semi-implicit Euler integration,
// an all-pairs bounds broadphase honouring collision filters, impulse contact
// resolution and projected distance constraints.
//
// Contacts only exchange linear impulses. Angular velocity changes through
// SetVelocity and is integrated, but contacts do not spin bodies.
type DiscreteWorld struct {
	gravity     math.Vec3
	bodies      arena[body]
	constraints arena[ConstraintDesc]
	contacts    []contact
}

var _ Backend = (*DiscreteWorld)(nil)

// NewDiscreteWorld creates an empty world.
func NewDiscreteWorld(gravity math.Vec3) *DiscreteWorld {
	return &DiscreteWorld{gravity: gravity}
}

// Gravity returns the world's gravity.
func (w *DiscreteWorld) Gravity() math.Vec3 {
	return w.gravity
}

func (w *DiscreteWorld) CreateBody(desc BodyDesc) Handle {
	if desc.Orientation.IsZero() {
		desc.Orientation = math.QuatIdentity()
	}
	b := body{
		desc:        desc,
		position:    desc.Position,
		orientation: desc.Orientation.Normalize(),
	}
	if desc.Mass > 0 && desc.Type != Ghost {
		b.invMass = 1 / desc.Mass
		if !desc.LockRotation {
			in := desc.Shape.Inertia(desc.Mass)
			b.invInertia = math.Vec3{X: inverse(in.X), Y: inverse(in.Y), Z: inverse(in.Z)}
		}
	}
	return w.bodies.insert(b)
}

func inverse(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}

func (w *DiscreteWorld) DestroyBody(h Handle) {
	w.bodies.remove(h)
}

func (w *DiscreteWorld) InsertBody(h Handle) {
	if b := w.bodies.get(h); b != nil {
		b.inWorld = true
	}
}

func (w *DiscreteWorld) ExtractBody(h Handle) {
	if b := w.bodies.get(h); b != nil {
		b.inWorld = false
		b.overlaps = nil
	}
}

func (w *DiscreteWorld) Valid(h Handle) bool {
	return w.bodies.get(h) != nil
}

func (w *DiscreteWorld) InWorld(h Handle) bool {
	b := w.bodies.get(h)
	return b != nil && b.inWorld
}

func (w *DiscreteWorld) Transform(h Handle) (math.Vec3, math.Quat) {
	b := w.bodies.get(h)
	if b == nil {
		return math.Vec3{}, math.QuatIdentity()
	}
	return b.position, b.orientation
}

// SetTransform moves the body. Shapes are centred on the body, so the centre
// of mass moves with it.
func (w *DiscreteWorld) SetTransform(h Handle, position math.Vec3, orientation math.Quat) {
	if b := w.bodies.get(h); b != nil {
		b.position = position
		b.orientation = orientation
	}
}

func (w *DiscreteWorld) Velocity(h Handle) (math.Vec3, math.Vec3) {
	b := w.bodies.get(h)
	if b == nil {
		return math.Vec3{}, math.Vec3{}
	}
	return b.linear, b.angular
}

func (w *DiscreteWorld) SetVelocity(h Handle, linear, angular math.Vec3) {
	if b := w.bodies.get(h); b != nil {
		b.linear = linear
		b.angular = angular
	}
}

func (w *DiscreteWorld) ApplyForce(h Handle, force math.Vec3) {
	if b := w.bodies.get(h); b != nil {
		b.force = b.force.Add(force)
	}
}

func (w *DiscreteWorld) ApplyImpulse(h Handle, impulse math.Vec3) {
	if b := w.bodies.get(h); b != nil && b.dynamic() {
		b.linear = b.linear.Add(impulse.Scale(b.invMass))
	}
}

func (w *DiscreteWorld) ClearForces() {
	w.bodies.each(func(_ Handle, b *body) {
		b.force = math.Vec3{}
	})
}

func (w *DiscreteWorld) Overlaps(h Handle) []Handle {
	if b := w.bodies.get(h); b != nil {
		return b.overlaps
	}
	return nil
}

func (w *DiscreteWorld) AddConstraint(desc ConstraintDesc) Handle {
	return w.constraints.insert(desc)
}

func (w *DiscreteWorld) RemoveConstraint(h Handle) {
	w.constraints.remove(h)
}

func (w *DiscreteWorld) Bodies() int      { return w.bodies.count() }
func (w *DiscreteWorld) Constraints() int { return w.constraints.count() }

// Step advances the world by dt seconds.
func (w *DiscreteWorld) Step(dt float32) {
	if dt <= 0 {
		return
	}

	w.bodies.each(func(_ Handle, b *body) {
		if !b.inWorld || !b.dynamic() {
			return
		}
		b.linear = b.linear.Add(w.gravity.Add(b.force.Scale(b.invMass)).Scale(dt))
		if b.desc.LockRotation {
			b.angular = math.Vec3{}
		}
	})

	w.detect()
	for i := 0; i < solverIterations; i++ {
		for _, c := range w.contacts {
			w.resolve(c)
		}
	}

	w.bodies.each(func(_ Handle, b *body) {
		if !b.inWorld || !b.dynamic() {
			return
		}
		b.position = b.position.Add(b.linear.Scale(dt))
		if b.angular.LengthSquared() > 0 {
			b.orientation = b.orientation.Integrate(b.angular, dt)
		}
	})

	for _, c := range w.contacts {
		w.correct(c)
	}
	for i := 0; i < solverIterations; i++ {
		w.constraints.each(func(_ Handle, c *ConstraintDesc) {
			w.project(c)
		})
	}

	w.ClearForces()
}

// detect fills w.contacts and the ghosts' overlap lists.
func (w *DiscreteWorld) detect() {
	w.contacts = w.contacts[:0]

	type entry struct {
		h      Handle
		b      *body
		bounds AABB
	}
	var active []entry
	w.bodies.each(func(h Handle, b *body) {
		if !b.inWorld {
			return
		}
		if b.desc.Type == Ghost {
			b.overlaps = b.overlaps[:0]
		}
		active = append(active, entry{h: h, b: b, bounds: b.desc.Shape.Bounds(b.position, b.orientation)})
	})

	for i := range active {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if !a.bounds.Overlaps(b.bounds) || !a.b.desc.Filter.Collides(b.b.desc.Filter) {
				continue
			}
			aGhost, bGhost := a.b.desc.Type == Ghost, b.b.desc.Type == Ghost
			if !aGhost && !bGhost && !a.b.dynamic() && !b.b.dynamic() {
				continue
			}
			n, depth, ok := collide(a.b.pose(), b.b.pose())
			if !ok {
				continue
			}
			if aGhost || bGhost {
				if aGhost {
					a.b.overlaps = append(a.b.overlaps, b.h)
				}
				if bGhost {
					b.b.overlaps = append(b.b.overlaps, a.h)
				}
				continue
			}
			w.contacts = append(w.contacts, contact{a: a.h, b: b.h, normal: n, depth: depth})
		}
	}
}

// resolve applies the impulses that stop a and b approaching.
func (w *DiscreteWorld) resolve(c contact) {
	a, b := w.bodies.get(c.a), w.bodies.get(c.b)
	total := a.invMass + b.invMass
	if total == 0 {
		return
	}
	n := c.normal
	rv := b.linear.Sub(a.linear)
	vn := rv.Dot(n)
	if vn >= 0 {
		return
	}

	e := a.desc.Restitution * b.desc.Restitution
	j := -(1 + e) * vn / total
	a.linear = a.linear.Sub(n.Scale(j * a.invMass))
	b.linear = b.linear.Add(n.Scale(j * b.invMass))

	rv = b.linear.Sub(a.linear)
	tangent := rv.Sub(n.Scale(rv.Dot(n)))
	l := tangent.Length()
	if l < 1e-6 {
		return
	}
	tangent = tangent.Scale(1 / l)
	mu := math32.Sqrt(a.desc.Friction * b.desc.Friction)
	jt := clamp(-rv.Dot(tangent)/total, -j*mu, j*mu)
	a.linear = a.linear.Sub(tangent.Scale(jt * a.invMass))
	b.linear = b.linear.Add(tangent.Scale(jt * b.invMass))
}

// correct pushes penetrating bodies apart.
func (w *DiscreteWorld) correct(c contact) {
	a, b := w.bodies.get(c.a), w.bodies.get(c.b)
	total := a.invMass + b.invMass
	if total == 0 {
		return
	}
	amount := math32.Max(c.depth-penetrationSlop, 0) / total * correctionPercent
	a.position = a.position.Sub(c.normal.Scale(amount * a.invMass))
	b.position = b.position.Add(c.normal.Scale(amount * b.invMass))
}

// project moves the constrained bodies so their pivots are the constraint's
// distance apart and removes their relative velocity along the joint.
// Constraints whose bodies left the world are skipped.
func (w *DiscreteWorld) project(c *ConstraintDesc) {
	a, b := w.bodies.get(c.A), w.bodies.get(c.B)
	if a == nil || b == nil || !a.inWorld || !b.inWorld {
		return
	}
	total := a.invMass + b.invMass
	if total == 0 {
		return
	}

	pa := a.position.Add(a.orientation.Rotate(c.PivotA))
	pb := b.position.Add(b.orientation.Rotate(c.PivotB))
	d := pb.Sub(pa)
	dist := d.Length()
	n := math.UnitY
	if dist > 1e-6 {
		n = d.Scale(1 / dist)
	}
	drift := dist - c.Distance
	if math32.Abs(drift) < 1e-5 {
		return
	}

	move := n.Scale(drift / total)
	a.position = a.position.Add(move.Scale(a.invMass))
	b.position = b.position.Sub(move.Scale(b.invMass))

	vn := b.linear.Sub(a.linear).Dot(n)
	a.linear = a.linear.Add(n.Scale(vn * a.invMass / total))
	b.linear = b.linear.Sub(n.Scale(vn * b.invMass / total))
}

func (w *DiscreteWorld) RayTest(from, to math.Vec3) []RayHit {
	dir := to.Sub(from)
	length := dir.Length()
	if length == 0 {
		return nil
	}
	r := Ray{Origin: from, Direction: dir.Scale(1 / length)}

	var hits []RayHit
	w.bodies.each(func(h Handle, b *body) {
		if !b.inWorld {
			return
		}
		t, n, ok := intersect(r, b.desc.Shape, b.position, b.orientation)
		if !ok || t > length {
			return
		}
		hits = append(hits, RayHit{Body: h, Fraction: t / length, Point: r.At(t), Normal: n})
	})
	return hits
}

func (w *DiscreteWorld) DebugLines() []graphics.Line {
	var lines []graphics.Line
	w.bodies.each(func(_ Handle, b *body) {
		if !b.inWorld {
			return
		}
		colour := dynamicColour
		switch {
		case b.desc.Type == Ghost:
			colour = ghostColour
		case b.desc.LockRotation:
			colour = characterColour
		case !b.dynamic():
			colour = staticColour
		}

		switch s := b.desc.Shape.(type) {
		case Box:
			lines = append(lines, debugdraw.Box(s.Corners(b.position, b.orientation), colour)...)
		case Sphere:
			lines = append(lines, debugdraw.Sphere(b.position, b.orientation, s.Radius, colour)...)
		case Capsule:
			top, bottom := s.segment(b.position, b.orientation)
			lines = append(lines, debugdraw.Sphere(top, b.orientation, s.Radius, colour)...)
			lines = append(lines, debugdraw.Sphere(bottom, b.orientation, s.Radius, colour)...)
			for _, side := range [4]math.Vec3{math.UnitX, math.UnitX.Neg(), math.UnitZ, math.UnitZ.Neg()} {
				off := b.orientation.Rotate(side.Scale(s.Radius))
				lines = append(lines, debugdraw.Segment(top.Add(off), bottom.Add(off), colour))
			}
		}
	})

	w.constraints.each(func(_ Handle, c *ConstraintDesc) {
		a, b := w.bodies.get(c.A), w.bodies.get(c.B)
		if a == nil || b == nil || !a.inWorld || !b.inWorld {
			return
		}
		pa := a.position.Add(a.orientation.Rotate(c.PivotA))
		pb := b.position.Add(b.orientation.Rotate(c.PivotB))
		lines = append(lines, debugdraw.Segment(pa, pb, jointColour))
	})
	return lines
}
