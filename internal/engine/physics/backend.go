package physics

import (
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/pkg/math"
)

// BodyDesc describes a body to create.
type BodyDesc struct {
	Type        BodyType
	Shape       Shape
	Mass        float32 // zero makes the body static
	Position    math.Vec3
	Orientation math.Quat
	Filter      Filter
	Friction    float32
	Restitution float32
	// LockRotation keeps the orientation fixed, as for characters.
	LockRotation bool
}

// ConstraintDesc describes a constraint between two bodies. Pivots are in
// each body's local space. The constraint holds the pivots Distance apart;
// zero joins them at a point.
type ConstraintDesc struct {
	A, B           Handle
	PivotA, PivotB math.Vec3
	Distance       float32
}

// RayHit is one body crossed by a ray test.
type RayHit struct {
	Body     Handle
	Fraction float32 // 0 at the ray start, 1 at its end
	Point    math.Vec3
	Normal   math.Vec3
}

// Backend is a simulation world that owns bodies and constraints and hands out
// handles to them. Handles for destroyed objects must be rejected, never
// resolved to a different object.
type Backend interface {
	CreateBody(desc BodyDesc) Handle
	DestroyBody(h Handle)
	// InsertBody adds a created body to the simulation. Ghost bodies only
	// collect overlaps.
	InsertBody(h Handle)
	// ExtractBody takes a body out of the simulation without destroying it.
	ExtractBody(h Handle)
	Valid(h Handle) bool
	InWorld(h Handle) bool

	Transform(h Handle) (math.Vec3, math.Quat)
	// SetTransform moves a body, including its centre of mass.
	SetTransform(h Handle, position math.Vec3, orientation math.Quat)
	Velocity(h Handle) (linear, angular math.Vec3)
	SetVelocity(h Handle, linear, angular math.Vec3)
	ApplyForce(h Handle, force math.Vec3)
	ApplyImpulse(h Handle, impulse math.Vec3)
	// ClearForces drops forces accumulated on every body.
	ClearForces()
	// Overlaps returns the bodies a ghost overlapped during the last step.
	Overlaps(h Handle) []Handle

	AddConstraint(desc ConstraintDesc) Handle
	RemoveConstraint(h Handle)

	// Step advances the world by one sub-step of dt seconds.
	Step(dt float32)
	// RayTest returns every body the segment from..to crosses, in no
	// particular order.
	RayTest(from, to math.Vec3) []RayHit
	// DebugLines returns wireframes for the world's contents.
	DebugLines() []graphics.Line

	Bodies() int
	Constraints() int
}
