// Package physics simulates rigid bodies, characters and constraints.
//
// A System owns every body added to it and drives a Backend, which holds the
// simulation state behind generation-checked handles. NewDiscreteWorld is the
// bundled backend.
package physics

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/engine/fault"
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/pkg/math"
)

const (
	// DefaultRayLength stands in for an infinite ray.
	DefaultRayLength = 10000
	// groundProbe is how far below its feet a character looks for ground.
	groundProbe = 0.1
)

// DebugSink receives wireframe lines after each step while debug drawing is
// on. An empty list clears what was shown.
type DebugSink interface {
	Draw(lines []graphics.Line)
}

// Options configures a System.
type Options struct {
	RayLength float32 // zero selects DefaultRayLength
	DebugDraw bool
	Sink      DebugSink
}

// Hit is the result of a ray cast.
type Hit struct {
	Body     *RigidBody
	Point    math.Vec3
	Normal   math.Vec3
	Distance float32
}

// System owns bodies, characters and constraints and steps them.
type System struct {
	backend Backend
	log     *zap.Logger

	bodies      []*RigidBody
	characters  []*CharacterController
	constraints []*Constraint
	owners      map[Handle]*RigidBody
	ignore      map[Handle]struct{}

	rayLength float32
	debug     bool
	sink      DebugSink

	time  time.Duration
	steps uint64
}

// New creates a system stepping backend.
func New(backend Backend, opts Options, log *zap.Logger) *System {
	if opts.RayLength <= 0 {
		opts.RayLength = DefaultRayLength
	}
	return &System{
		backend:   backend,
		log:       log.Named("physics"),
		owners:    make(map[Handle]*RigidBody),
		ignore:    make(map[Handle]struct{}),
		rayLength: opts.RayLength,
		debug:     opts.DebugDraw,
		sink:      opts.Sink,
	}
}

// Backend returns the simulation backend.
func (s *System) Backend() Backend {
	return s.backend
}

func (s *System) attach(b *RigidBody) {
	if b.backend != nil {
		fault.Raise("body %s already added", b.handle)
	}
	b.handle = s.backend.CreateBody(b.desc)
	b.backend = s.backend
	s.backend.InsertBody(b.handle)
	s.owners[b.handle] = b
}

// detach takes b out of the world before forgetting it, then destroys its
// backend state. The body keeps its last transform.
func (s *System) detach(b *RigidBody) {
	h := b.handle
	b.desc.Position, b.desc.Orientation = s.backend.Transform(h)
	s.backend.ExtractBody(h)
	delete(s.owners, h)
	delete(s.ignore, h)
	s.backend.DestroyBody(h)
	b.backend = nil
	b.handle = Handle{}
}

func (s *System) owns(b *RigidBody) bool {
	return b != nil && b.backend != nil && s.owners[b.handle] == b
}

// Add takes ownership of b and puts it in the world. Ghost bodies only
// collect overlaps.
func (s *System) Add(b *RigidBody) *RigidBody {
	s.attach(b)
	s.bodies = append(s.bodies, b)
	s.log.Debug("body added",
		zap.Stringer("handle", b.handle),
		zap.Stringer("type", b.desc.Type),
	)
	return b
}

// AddCharacter takes ownership of c and puts its body in the world.
func (s *System) AddCharacter(c *CharacterController) *CharacterController {
	s.attach(c.body)
	s.characters = append(s.characters, c)
	s.log.Debug("character added", zap.Stringer("handle", c.body.handle))
	return c
}

// AddConstraint joins two bodies owned by this system.
func (s *System) AddConstraint(c *Constraint) *Constraint {
	if !s.owns(c.A) || !s.owns(c.B) {
		fault.Raise("constraint between bodies not owned by the physics system")
	}
	c.handle = s.backend.AddConstraint(c.desc())
	c.backend = s.backend
	s.constraints = append(s.constraints, c)
	return c
}

// Remove takes b out of the world and releases it. Constraints using b stay
// owned but stop acting. The body of a character removes the whole
// character. Unknown bodies are ignored.
func (s *System) Remove(b *RigidBody) {
	if !s.owns(b) {
		return
	}
	if i := slices.IndexFunc(s.characters, func(c *CharacterController) bool { return c.body == b }); i >= 0 {
		s.RemoveCharacter(s.characters[i])
		return
	}
	s.detach(b)
	s.bodies = slices.DeleteFunc(s.bodies, func(o *RigidBody) bool { return o == b })
}

// RemoveCharacter takes c out of the world and releases it.
func (s *System) RemoveCharacter(c *CharacterController) {
	if !s.owns(c.body) {
		return
	}
	s.detach(c.body)
	s.characters = slices.DeleteFunc(s.characters, func(o *CharacterController) bool { return o == c })
}

// RemoveConstraint takes c out of the world.
func (s *System) RemoveConstraint(c *Constraint) {
	if c.backend == nil {
		return
	}
	s.backend.RemoveConstraint(c.handle)
	c.backend = nil
	c.handle = Handle{}
	s.constraints = slices.DeleteFunc(s.constraints, func(o *Constraint) bool { return o == c })
}

// Bodies returns the owned rigid bodies, excluding characters.
func (s *System) Bodies() []*RigidBody {
	return slices.Clone(s.bodies)
}

// Characters returns the owned character controllers.
func (s *System) Characters() []*CharacterController {
	return slices.Clone(s.characters)
}

// Constraints returns the owned constraints.
func (s *System) Constraints() []*Constraint {
	return slices.Clone(s.constraints)
}

// Time returns the simulated time.
func (s *System) Time() time.Duration {
	return s.time
}

// Step advances the simulation by a single sub-step of d. Large steps are not
// subdivided; callers that need stability step more often.
func (s *System) Step(d time.Duration) {
	for _, c := range s.characters {
		c.update(s.grounded(c))
	}

	s.backend.Step(float32(d.Seconds()))
	s.time += d
	s.steps++

	if s.debug && s.sink != nil {
		s.sink.Draw(s.backend.DebugLines())
	}
}

// grounded reports whether a standard body lies just below c.
func (s *System) grounded(c *CharacterController) bool {
	from := c.Position()
	to := from.Sub(math.UnitY.Scale(c.footing() + groundProbe))
	for _, hit := range s.backend.RayTest(from, to) {
		if hit.Body == c.body.handle {
			continue
		}
		if b := s.owners[hit.Body]; b != nil && b.desc.Type != Ghost {
			return true
		}
	}
	return false
}

// RayCast returns the body nearest origin along direction, skipping bodies
// ignored for ray casts. The ray is RayLength long.
func (s *System) RayCast(origin, direction math.Vec3) (Hit, bool) {
	if direction.LengthSquared() == 0 {
		return Hit{}, false
	}
	to := origin.Add(direction.Normalize().Scale(s.rayLength))

	var best Hit
	found := false
	for _, h := range s.backend.RayTest(origin, to) {
		b := s.owners[h.Body]
		if b == nil {
			continue
		}
		if _, skip := s.ignore[h.Body]; skip {
			continue
		}
		d := origin.Distance(h.Point)
		if !found || d < best.Distance {
			best = Hit{Body: b, Point: h.Point, Normal: h.Normal, Distance: d}
			found = true
		}
	}
	return best, found
}

// IgnoreInRayCast excludes b from every later ray cast until
// UnignoreInRayCast is called.
func (s *System) IgnoreInRayCast(b *RigidBody) {
	if s.owns(b) {
		s.ignore[b.handle] = struct{}{}
	}
}

// UnignoreInRayCast makes b visible to ray casts again.
func (s *System) UnignoreInRayCast(b *RigidBody) {
	if b != nil {
		delete(s.ignore, b.handle)
	}
}

// Overlapping returns the bodies a ghost overlapped during the last step.
func (s *System) Overlapping(ghost *RigidBody) []*RigidBody {
	if !s.owns(ghost) {
		return nil
	}
	var out []*RigidBody
	for _, h := range s.backend.Overlaps(ghost.handle) {
		if b := s.owners[h]; b != nil {
			out = append(out, b)
		}
	}
	return out
}

// SetDebugDraw turns wireframe output on or off. Turning it off clears the
// sink.
func (s *System) SetDebugDraw(on bool) {
	s.debug = on
	if !on && s.sink != nil {
		s.sink.Draw(nil)
	}
}

// DebugDraw reports whether wireframe output is on.
func (s *System) DebugDraw() bool {
	return s.debug
}

// Close removes every constraint and then every body from the world. Failures
// are logged and never propagated.
func (s *System) Close() {
	for _, c := range s.constraints {
		func() {
			defer fault.Recover(s.log, "remove constraint")
			s.backend.RemoveConstraint(c.handle)
			c.backend = nil
		}()
	}
	s.constraints = nil

	for _, b := range s.bodies {
		s.release(b)
	}
	for _, c := range s.characters {
		s.release(c.body)
	}
	s.bodies, s.characters = nil, nil

	s.log.Info("physics shut down",
		zap.Uint64("steps", s.steps),
		zap.Duration("simulated", s.time),
	)
}

func (s *System) release(b *RigidBody) {
	defer fault.Recover(s.log, "remove body")
	s.detach(b)
}
