package physics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/iris/internal/engine/fault"
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/pkg/math"
)

const frame = time.Second / 60

type recordingSink struct {
	draws [][]graphics.Line
}

func (r *recordingSink) Draw(lines []graphics.Line) {
	r.draws = append(r.draws, lines)
}

func newSystem(t *testing.T, g math.Vec3, opts Options) (*System, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return New(NewDiscreteWorld(g), opts, zap.New(core)), logs
}

// callLog wraps a world and records the calls that tear objects down.
type callLog struct {
	*DiscreteWorld
	calls []string
}

func (l *callLog) RemoveConstraint(h Handle) {
	l.calls = append(l.calls, "remove_constraint "+h.String())
	l.DiscreteWorld.RemoveConstraint(h)
}

func (l *callLog) ExtractBody(h Handle) {
	l.calls = append(l.calls, "extract "+h.String())
	l.DiscreteWorld.ExtractBody(h)
}

func (l *callLog) DestroyBody(h Handle) {
	l.calls = append(l.calls, "destroy "+h.String())
	l.DiscreteWorld.DestroyBody(h)
}

func box(position math.Vec3, mass float32) *RigidBody {
	return NewRigidBody(BodyDesc{
		Shape:    Box{HalfExtents: math.One},
		Mass:     mass,
		Position: position,
	})
}

func TestAddAndRemove(t *testing.T) {
	s, _ := newSystem(t, gravity, Options{})
	b := s.Add(box(math.Vec3{Y: 5}, 1))

	assert.True(t, b.InWorld())
	assert.False(t, b.Handle().IsZero())
	assert.Equal(t, []*RigidBody{b}, s.Bodies())
	assert.Equal(t, GroupDefault, b.Filter().Group)

	s.Step(frame)
	moved := b.Position()
	assert.Less(t, moved.Y, float32(5))

	s.Remove(b)
	assert.False(t, b.InWorld())
	assert.Empty(t, s.Bodies())
	assert.Equal(t, 0, s.Backend().Bodies())
	assert.Equal(t, moved, b.Position(), "removed bodies keep their last transform")

	// removing again is a no-op
	assert.NotPanics(t, func() { s.Remove(b) })
}

func TestAddTwiceFaults(t *testing.T) {
	s, _ := newSystem(t, gravity, Options{})
	b := s.Add(box(math.Zero, 1))

	var f *fault.Fault
	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.ErrorAs(t, err, &f)
	}()
	s.Add(b)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := newSystem(t, gravity, Options{})
	a := s.Add(box(math.Vec3{Y: 5}, 1))
	b := s.Add(NewRigidBody(BodyDesc{Shape: Sphere{Radius: 0.5}, Mass: 2, Position: math.Vec3{X: 4, Y: 3}}))
	c := s.AddCharacter(NewCharacterController(math.Vec3{X: -4, Y: 8}, 0.4, 1.8, 70))
	b.SetVelocity(math.Vec3{X: 1, Y: 2, Z: 3}, math.Vec3{Y: 0.5})
	for i := 0; i < 5; i++ {
		s.Step(frame)
	}

	type snapshot struct {
		p    math.Vec3
		q    math.Quat
		l, w math.Vec3
	}
	capture := func() []snapshot {
		var out []snapshot
		for _, r := range []*RigidBody{a, b, c.Body()} {
			l, w := r.Velocity()
			out = append(out, snapshot{r.Position(), r.Orientation(), l, w})
		}
		return out
	}

	before := capture()
	st := s.Save()
	assert.Len(t, st.Bodies, 3)
	assert.Equal(t, 5*frame, st.Time)

	s.Load(st)
	assert.Equal(t, before, capture(), "save then load restores exactly")

	for i := 0; i < 30; i++ {
		s.Step(frame)
	}
	after := capture()
	assert.NotEqual(t, before, after)

	s.Load(st)
	assert.Equal(t, before, capture())
	assert.Equal(t, 5*frame, s.Time())

	// replaying from the snapshot is deterministic
	for i := 0; i < 30; i++ {
		s.Step(frame)
	}
	assert.Equal(t, after, capture())
}

func TestLoadSkipsRemovedAndIgnoresAddedBodies(t *testing.T) {
	s, logs := newSystem(t, gravity, Options{})
	kept := s.Add(box(math.Vec3{Y: 5}, 1))
	gone := s.Add(box(math.Vec3{X: 10, Y: 5}, 1))
	st := s.Save()

	s.Remove(gone)
	// the freed slot is reused under a new generation
	late := s.Add(box(math.Vec3{X: 20, Y: 5}, 1))
	late.SetTransform(math.Vec3{X: 20, Y: 1}, math.QuatIdentity())
	kept.SetTransform(math.Vec3{Y: 9}, math.QuatIdentity())

	require.NotPanics(t, func() { s.Load(st) })
	assert.Equal(t, math.Vec3{Y: 5}, kept.Position())
	assert.Equal(t, math.Vec3{X: 20, Y: 1}, late.Position())

	entry := logs.FilterMessage("state loaded").All()
	require.Len(t, entry, 1)
	assert.EqualValues(t, 1, entry[0].ContextMap()["skipped"])
}

func TestLoadClearsForces(t *testing.T) {
	s, _ := newSystem(t, math.Zero, Options{})
	b := s.Add(box(math.Zero, 1))
	st := s.Save()

	b.ApplyForce(math.Vec3{X: 600})
	s.Load(st)
	s.Step(frame)

	assert.Equal(t, math.Zero, b.Position())
}

func TestRayCast(t *testing.T) {
	s, _ := newSystem(t, math.Zero, Options{})
	near := s.Add(box(math.Vec3{Z: -5}, 0))
	far := s.Add(box(math.Vec3{Z: -10}, 0))

	hit, ok := s.RayCast(math.Zero, math.Vec3{Z: -1})
	require.True(t, ok)
	assert.Same(t, near, hit.Body)
	assertVec(t, math.Vec3{Z: -4}, hit.Point)
	assert.InDelta(t, 4, hit.Distance, 1e-5)

	s.IgnoreInRayCast(near)
	hit, ok = s.RayCast(math.Zero, math.Vec3{Z: -1})
	require.True(t, ok)
	assert.Same(t, far, hit.Body)
	assertVec(t, math.Vec3{Z: -9}, hit.Point)

	// ignoring lasts until undone
	hit, ok = s.RayCast(math.Zero, math.Vec3{Z: -3})
	require.True(t, ok)
	assert.Same(t, far, hit.Body)

	s.IgnoreInRayCast(far)
	_, ok = s.RayCast(math.Zero, math.Vec3{Z: -1})
	assert.False(t, ok)

	s.UnignoreInRayCast(near)
	hit, ok = s.RayCast(math.Zero, math.Vec3{Z: -1})
	require.True(t, ok)
	assert.Same(t, near, hit.Body)

	_, ok = s.RayCast(math.Zero, math.Vec3{Z: 1})
	assert.False(t, ok)
	_, ok = s.RayCast(math.Zero, math.Zero)
	assert.False(t, ok)
}

func TestRayCastLength(t *testing.T) {
	s, _ := newSystem(t, math.Zero, Options{RayLength: 3})
	s.Add(box(math.Vec3{Z: -5}, 0))

	_, ok := s.RayCast(math.Zero, math.Vec3{Z: -1})
	assert.False(t, ok)
}

func TestGhostOverlapping(t *testing.T) {
	s, _ := newSystem(t, math.Zero, Options{})
	ghost := s.Add(NewRigidBody(BodyDesc{Type: Ghost, Shape: Sphere{Radius: 2}}))
	b := s.Add(box(math.Vec3{X: 1}, 1))

	s.Step(frame)
	assert.Equal(t, []*RigidBody{b}, s.Overlapping(ghost))
	assert.Equal(t, GroupGhost, ghost.Filter().Group)

	s.Remove(b)
	s.Step(frame)
	assert.Empty(t, s.Overlapping(ghost))
}

func TestCharacterWalksAndJumps(t *testing.T) {
	s, _ := newSystem(t, gravity, Options{})
	s.Add(NewRigidBody(BodyDesc{
		Shape:    Box{HalfExtents: math.Vec3{X: 50, Y: 0.5, Z: 50}},
		Position: math.Vec3{Y: -0.5},
	}))
	c := s.AddCharacter(NewCharacterController(math.Vec3{Y: 1}, 0.5, 2, 70))
	assert.Equal(t, GroupCharacter, c.Body().Filter().Group)

	c.SetWalkDirection(math.Vec3{X: 1, Y: 7})
	assert.Equal(t, math.UnitX, c.WalkDirection())
	s.Step(frame)

	assert.True(t, c.OnGround())
	assert.InDelta(t, c.Speed/60, c.Position().X, 1e-4)
	assert.Equal(t, math.QuatIdentity(), c.Body().Orientation(), "characters stay upright")

	c.SetWalkDirection(math.Zero)
	c.Jump()
	s.Step(frame)
	v, _ := c.Body().Velocity()
	assert.Greater(t, v.Y, float32(0))
	assert.Greater(t, c.Position().Y, float32(1))
}

func TestCharacterCannotJumpInAir(t *testing.T) {
	s, _ := newSystem(t, gravity, Options{})
	c := s.AddCharacter(NewCharacterController(math.Vec3{Y: 10}, 0.5, 2, 70))

	c.Jump()
	s.Step(frame)

	assert.False(t, c.OnGround())
	v, _ := c.Body().Velocity()
	assert.Less(t, v.Y, float32(0))

	s.RemoveCharacter(c)
	assert.Empty(t, s.Characters())
	assert.Equal(t, 0, s.Backend().Bodies())
}

func TestConstraints(t *testing.T) {
	s, _ := newSystem(t, math.Zero, Options{})
	a := s.Add(NewRigidBody(BodyDesc{Shape: Sphere{Radius: 0.5}, Mass: 1}))
	b := s.Add(NewRigidBody(BodyDesc{Shape: Sphere{Radius: 0.5}, Mass: 1, Position: math.Vec3{X: 4}}))

	rope := s.AddConstraint(NewDistanceConstraint(a, b, math.Zero, math.Zero))
	assert.True(t, rope.Active())
	b.SetVelocity(math.Vec3{X: 3}, math.Zero)
	for i := 0; i < 20; i++ {
		s.Step(frame)
	}
	assert.InDelta(t, 4, a.Position().Distance(b.Position()), 1e-3)

	s.RemoveConstraint(rope)
	assert.False(t, rope.Active())
	assert.Empty(t, s.Constraints())
	assert.Equal(t, 0, s.Backend().Constraints())

	pin := s.AddConstraint(NewConstraint(a, b, math.Vec3{X: 1}, math.Vec3{X: -1}))
	for i := 0; i < 5; i++ {
		s.Step(frame)
	}
	assert.InDelta(t, 2, a.Position().Distance(b.Position()), 1e-3)
	assert.Len(t, s.Constraints(), 1)
	assert.Same(t, pin, s.Constraints()[0])
}

func TestConstraintNeedsOwnedBodies(t *testing.T) {
	s, _ := newSystem(t, math.Zero, Options{})
	a := s.Add(box(math.Zero, 1))
	stray := box(math.Vec3{X: 3}, 1)

	assert.Panics(t, func() {
		s.AddConstraint(NewConstraint(a, stray, math.Zero, math.Zero))
	})
}

func TestCloseAfterRemovingConstrainedBody(t *testing.T) {
	s, logs := newSystem(t, gravity, Options{})
	a := s.Add(box(math.Zero, 1))
	b := s.Add(box(math.Vec3{X: 3}, 1))
	s.AddCharacter(NewCharacterController(math.Vec3{X: -3}, 0.5, 2, 70))
	joint := s.AddConstraint(NewConstraint(a, b, math.Vec3{X: 1.5}, math.Vec3{X: -1.5}))

	s.Remove(a)
	require.NotPanics(t, func() {
		s.Step(frame)
		s.Close()
	})

	assert.Equal(t, 0, s.Backend().Bodies())
	assert.Equal(t, 0, s.Backend().Constraints())
	assert.False(t, joint.Active())
	assert.Empty(t, s.Bodies())
	assert.Empty(t, s.Characters())
	assert.Empty(t, s.Constraints())
	assert.Zero(t, logs.FilterMessageSnippet("failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("physics shut down").Len())
}

func TestCloseRemovesConstraintsBeforeBodies(t *testing.T) {
	world := &callLog{DiscreteWorld: NewDiscreteWorld(gravity)}
	s := New(world, Options{}, zap.NewNop())

	a := s.Add(box(math.Zero, 1))
	b := s.Add(box(math.Vec3{X: 3}, 1))
	c := s.AddCharacter(NewCharacterController(math.Vec3{X: -3}, 0.5, 2, 70))
	first := s.AddConstraint(NewConstraint(a, b, math.Zero, math.Zero))
	second := s.AddConstraint(NewDistanceConstraint(b, c.Body(), math.Zero, math.Zero))
	bodies := []Handle{a.Handle(), b.Handle(), c.Body().Handle()}

	s.Close()

	want := []string{
		"remove_constraint " + first.handle.String(),
		"remove_constraint " + second.handle.String(),
	}
	for _, h := range bodies {
		want = append(want, "extract "+h.String(), "destroy "+h.String())
	}
	assert.Equal(t, want, world.calls)
	assert.False(t, first.Active())
	assert.False(t, second.Active())
}

func TestRemoveCharacterBody(t *testing.T) {
	s, _ := newSystem(t, gravity, Options{})
	s.Add(NewRigidBody(BodyDesc{
		Shape:    Box{HalfExtents: math.Vec3{X: 10, Y: 0.5, Z: 10}},
		Position: math.Vec3{Y: -0.5},
	}))
	c := s.AddCharacter(NewCharacterController(math.Vec3{Y: 1}, 0.5, 2, 70))

	s.Remove(c.Body())

	assert.Empty(t, s.Characters(), "the controller goes with its body")
	assert.False(t, c.Body().InWorld())
	assert.Equal(t, 1, s.Backend().Bodies())
	require.NotPanics(t, func() { s.Step(frame) })
	assert.Len(t, s.Bodies(), 1)
}

func TestDebugDraw(t *testing.T) {
	sink := &recordingSink{}
	s, _ := newSystem(t, math.Zero, Options{Sink: sink})
	s.Add(box(math.Zero, 1))
	s.Add(NewRigidBody(BodyDesc{Shape: Sphere{Radius: 1}, Mass: 1, Position: math.Vec3{X: 5}}))

	s.Step(frame)
	assert.Empty(t, sink.draws, "debug drawing starts off")

	s.SetDebugDraw(true)
	assert.True(t, s.DebugDraw())
	s.Step(frame)
	require.Len(t, sink.draws, 1)
	assert.Len(t, sink.draws[0], 12+48)

	s.SetDebugDraw(false)
	require.Len(t, sink.draws, 2)
	assert.Empty(t, sink.draws[1])

	s.Step(frame)
	assert.Len(t, sink.draws, 2)
}
