package debugdraw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/internal/engine/scene"
	"github.com/Faultbox/iris/pkg/math"
)

func TestAABBWireframe(t *testing.T) {
	lines := AABB(math.Vec3{X: 1, Y: 1, Z: 1}, math.Vec3{X: -1, Y: -1, Z: -1}, 0.5, math.Red)
	require.Len(t, lines, BoxEdgeCount)

	lo := math.Vec3{X: 100, Y: 100, Z: 100}
	hi := lo.Neg()
	for _, l := range lines {
		assert.Equal(t, math.Red, l.FromColour)
		assert.Equal(t, math.Red, l.ToColour)
		lo = lo.Min(l.From).Min(l.To)
		hi = hi.Max(l.From).Max(l.To)

		// every edge runs along one axis
		d := l.To.Sub(l.From).Abs()
		axes := 0
		for i := 0; i < 3; i++ {
			if d.Get(i) > 0 {
				axes++
			}
		}
		assert.Equal(t, 1, axes)
	}
	assert.Equal(t, math.Vec3{X: -1.5, Y: -1.5, Z: -1.5}, lo)
	assert.Equal(t, math.Vec3{X: 1.5, Y: 1.5, Z: 1.5}, hi)
}

func TestCircleIsClosed(t *testing.T) {
	lines := Circle(math.Zero, math.UnitX, math.UnitZ, 2, 8, math.White)
	require.Len(t, lines, 8)

	assert.True(t, lines[0].From.ApproxEqual(lines[7].To, 1e-5))
	for i := 1; i < len(lines); i++ {
		assert.Equal(t, lines[i-1].To, lines[i].From)
	}
	for _, l := range lines {
		assert.InDelta(t, 2, l.From.Length(), 1e-5)
		assert.InDelta(t, 0, l.From.Y, 1e-6)
	}
}

func TestSphereHasThreeRings(t *testing.T) {
	centre := math.Vec3{X: 3}
	lines := Sphere(centre, math.QuatIdentity(), 1, math.Green)
	require.Len(t, lines, 48)
	for _, l := range lines {
		assert.InDelta(t, 1, l.From.Distance(centre), 1e-5)
	}
}

func TestSinkLifecycle(t *testing.T) {
	s := scene.New()
	k := NewSink(s)
	assert.Nil(t, k.Entity())

	k.Draw(AABB(math.Zero, math.One, 0, math.White))
	e := k.Entity()
	require.NotNil(t, e)
	assert.Equal(t, BoxEdgeCount, k.Lines())
	assert.Equal(t, graphics.LinesPrimitive, e.PrimitiveType())
	assert.Same(t, s.DefaultGraph(), s.RenderGraph(e))
	require.Len(t, e.Meshes(), 1)
	assert.Len(t, e.Meshes()[0].Vertices, 2*BoxEdgeCount)

	// later draws replace the mesh on the same entity
	k.Draw([]graphics.Line{Segment(math.Zero, math.UnitX, math.Red)})
	assert.Same(t, e, k.Entity())
	assert.Len(t, e.Meshes()[0].Vertices, 2)
	assert.Len(t, s.Entities(), 1)

	k.Draw(nil)
	assert.Nil(t, k.Entity())
	assert.Empty(t, s.Entities())
	assert.Equal(t, 0, k.Lines())
}
