package physics

import (
	"github.com/Faultbox/iris/pkg/math"
)

// BodyType selects how a body takes part in the simulation.
type BodyType int

const (
	// Standard bodies collide and respond to forces. A zero mass makes
	// them static.
	Standard BodyType = iota
	// Ghost bodies only record which bodies overlap them.
	Ghost
)

func (t BodyType) String() string {
	switch t {
	case Standard:
		return "standard"
	case Ghost:
		return "ghost"
	default:
		return "unknown"
	}
}

// defaultFilter returns the filter a body gets when its description leaves
// Filter empty.
func defaultFilter(desc BodyDesc) Filter {
	switch {
	case desc.Type == Ghost:
		return Filter{Group: GroupGhost, Mask: MaskAll}
	case desc.LockRotation:
		return Filter{Group: GroupCharacter, Mask: MaskAll}
	case desc.Mass == 0:
		return Filter{Group: GroupStatic, Mask: MaskAll &^ GroupStatic}
	default:
		return Filter{Group: GroupDefault, Mask: MaskAll}
	}
}

// RigidBody is a body owned by a System. Until it is added it only holds its
// description; afterwards it resolves through the System's backend.
type RigidBody struct {
	desc    BodyDesc
	handle  Handle
	backend Backend
}

// NewRigidBody creates a body from desc. It enters the world when passed to
// System.Add.
func NewRigidBody(desc BodyDesc) *RigidBody {
	if desc.Orientation.IsZero() {
		desc.Orientation = math.QuatIdentity()
	}
	if desc.Filter == (Filter{}) {
		desc.Filter = defaultFilter(desc)
	}
	return &RigidBody{desc: desc}
}

// Type returns whether the body is standard or a ghost.
func (b *RigidBody) Type() BodyType { return b.desc.Type }

// Shape returns the body's collision shape.
func (b *RigidBody) Shape() Shape { return b.desc.Shape }

// Filter returns the body's collision filter.
func (b *RigidBody) Filter() Filter { return b.desc.Filter }

// Handle returns the body's backend handle; zero before the body is added.
func (b *RigidBody) Handle() Handle { return b.handle }

// InWorld reports whether the body is currently simulated.
func (b *RigidBody) InWorld() bool {
	return b.backend != nil && b.backend.InWorld(b.handle)
}

func (b *RigidBody) attached() bool {
	return b.backend != nil && b.backend.Valid(b.handle)
}

// Position returns the body's world position.
func (b *RigidBody) Position() math.Vec3 {
	if !b.attached() {
		return b.desc.Position
	}
	p, _ := b.backend.Transform(b.handle)
	return p
}

// Orientation returns the body's world orientation.
func (b *RigidBody) Orientation() math.Quat {
	if !b.attached() {
		return b.desc.Orientation
	}
	_, q := b.backend.Transform(b.handle)
	return q
}

// SetTransform moves the body.
func (b *RigidBody) SetTransform(position math.Vec3, orientation math.Quat) {
	if !b.attached() {
		b.desc.Position = position
		b.desc.Orientation = orientation
		return
	}
	b.backend.SetTransform(b.handle, position, orientation)
}

// Velocity returns the body's linear and angular velocity.
func (b *RigidBody) Velocity() (linear, angular math.Vec3) {
	if !b.attached() {
		return math.Vec3{}, math.Vec3{}
	}
	return b.backend.Velocity(b.handle)
}

// SetVelocity replaces the body's velocities. Ignored before the body is added.
func (b *RigidBody) SetVelocity(linear, angular math.Vec3) {
	if b.attached() {
		b.backend.SetVelocity(b.handle, linear, angular)
	}
}

// ApplyForce accumulates a force for the next step.
func (b *RigidBody) ApplyForce(force math.Vec3) {
	if b.attached() {
		b.backend.ApplyForce(b.handle, force)
	}
}

// ApplyImpulse changes the body's velocity immediately.
func (b *RigidBody) ApplyImpulse(impulse math.Vec3) {
	if b.attached() {
		b.backend.ApplyImpulse(b.handle, impulse)
	}
}

// CharacterController is an upright capsule driven by a walk direction
// instead of forces.
type CharacterController struct {
	body *RigidBody

	Speed     float32 // units per second at full walk direction
	JumpSpeed float32

	walk     math.Vec3
	jump     bool
	onGround bool
}

// NewCharacterController creates a character of the given total height
// standing with its centre at position.
func NewCharacterController(position math.Vec3, radius, height, mass float32) *CharacterController {
	half := height/2 - radius
	if half < 0 {
		half = 0
	}
	return &CharacterController{
		body: NewRigidBody(BodyDesc{
			Shape:        Capsule{Radius: radius, HalfHeight: half},
			Mass:         mass,
			Position:     position,
			LockRotation: true,
		}),
		Speed:     5,
		JumpSpeed: 6,
	}
}

// Body returns the character's underlying body.
func (c *CharacterController) Body() *RigidBody { return c.body }

// Position returns the character's centre.
func (c *CharacterController) Position() math.Vec3 { return c.body.Position() }

// SetWalkDirection sets the horizontal direction the character walks in.
// Its length scales Speed; the vertical part is ignored.
func (c *CharacterController) SetWalkDirection(dir math.Vec3) {
	c.walk = math.Vec3{X: dir.X, Z: dir.Z}
}

// WalkDirection returns the current walk direction.
func (c *CharacterController) WalkDirection() math.Vec3 { return c.walk }

// Jump requests a jump on the next step. It is dropped if the character is
// in the air.
func (c *CharacterController) Jump() { c.jump = true }

// OnGround reports whether the last step found ground below the character.
func (c *CharacterController) OnGround() bool { return c.onGround }

// footing returns how far below the centre the capsule ends.
func (c *CharacterController) footing() float32 {
	s := c.body.desc.Shape.(Capsule)
	return s.HalfHeight + s.Radius
}

// update drives the body for the coming step.
func (c *CharacterController) update(onGround bool) {
	c.onGround = onGround
	linear, _ := c.body.Velocity()
	linear.X = c.walk.X * c.Speed
	linear.Z = c.walk.Z * c.Speed
	if c.jump && onGround {
		linear.Y = c.JumpSpeed
	}
	c.jump = false
	c.body.SetVelocity(linear, math.Vec3{})
}

// Constraint joins two bodies at local pivots.
type Constraint struct {
	A, B           *RigidBody
	PivotA, PivotB math.Vec3
	// KeepDistance holds the pivots at the distance they had when the
	// constraint was added instead of joining them.
	KeepDistance bool

	handle  Handle
	backend Backend
}

// NewConstraint creates a point-to-point constraint.
func NewConstraint(a, b *RigidBody, pivotA, pivotB math.Vec3) *Constraint {
	return &Constraint{A: a, B: b, PivotA: pivotA, PivotB: pivotB}
}

// NewDistanceConstraint creates a constraint keeping the pivots at their
// current distance.
func NewDistanceConstraint(a, b *RigidBody, pivotA, pivotB math.Vec3) *Constraint {
	c := NewConstraint(a, b, pivotA, pivotB)
	c.KeepDistance = true
	return c
}

// Handle returns the constraint's backend handle.
func (c *Constraint) Handle() Handle { return c.handle }

// Active reports whether the constraint is still in the world.
func (c *Constraint) Active() bool {
	return c.backend != nil
}

func (c *Constraint) desc() ConstraintDesc {
	d := ConstraintDesc{A: c.A.handle, B: c.B.handle, PivotA: c.PivotA, PivotB: c.PivotB}
	if c.KeepDistance {
		pa := c.A.Position().Add(c.A.Orientation().Rotate(c.PivotA))
		pb := c.B.Position().Add(c.B.Orientation().Rotate(c.PivotB))
		d.Distance = pa.Distance(pb)
	}
	return d
}
