package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/iris/internal/engine/fault"
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/internal/engine/lighting"
	"github.com/Faultbox/iris/internal/engine/rendergraph"
	"github.com/Faultbox/iris/pkg/math"
)

func newEntity(name string) *graphics.RenderEntity {
	e := graphics.NewRenderEntity([]graphics.Mesh{graphics.Cube(math.White)}, math.Zero, math.QuatIdentity(), math.One)
	e.Name = name
	return e
}

func TestAddWithGraph(t *testing.T) {
	s := New()
	g := s.AddGraph(rendergraph.New("lit"))
	e := s.Add(g, newEntity("crate"))

	assert.Same(t, g, s.RenderGraph(e))
	assert.True(t, e.ReceivesShadow())
	assert.Equal(t, []*rendergraph.Graph{g}, s.Graphs())
}

func TestAddWithoutGraphUsesDefault(t *testing.T) {
	s := New()
	a := s.Add(nil, newEntity("a"))
	b := s.Add(nil, newEntity("b"))

	assert.Same(t, s.DefaultGraph(), s.RenderGraph(a))
	assert.Same(t, s.RenderGraph(a), s.RenderGraph(b))
	assert.False(t, a.ReceivesShadow())
	assert.False(t, b.ReceivesShadow())
	assert.Nil(t, s.DefaultGraph().Colour, "default graph renders vertex colour")
}

func TestRemoveByIdentity(t *testing.T) {
	s := New()
	a := s.Add(nil, newEntity("same"))
	b := s.Add(nil, newEntity("same"))

	s.Remove(a)
	require.Len(t, s.Entities(), 1)
	assert.Same(t, b, s.Entities()[0].Entity)

	// removing twice is a no-op
	s.Remove(a)
	assert.Len(t, s.Entities(), 1)
}

func TestRenderGraphAfterRemoveFaults(t *testing.T) {
	s := New()
	e := s.Add(nil, newEntity("gone"))
	s.Remove(e)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a fault")
		f, ok := r.(*fault.Fault)
		require.True(t, ok, "expected *fault.Fault, got %T", r)
		assert.Contains(t, f.Msg, "gone")
	}()
	s.RenderGraph(e)
}

func TestEntitiesKeepInsertionOrder(t *testing.T) {
	s := New()
	g := s.AddGraph(rendergraph.New("g"))
	names := []string{"first", "second", "third"}
	for i, n := range names {
		if i == 1 {
			s.Add(g, newEntity(n))
			continue
		}
		s.Add(nil, newEntity(n))
	}

	got := make([]string, 0, len(names))
	for _, entry := range s.Entities() {
		got = append(got, entry.Entity.Name)
	}
	assert.Equal(t, names, got)
	assert.Same(t, g, s.Entities()[1].Graph)
}

func TestLights(t *testing.T) {
	s := New()
	assert.Equal(t, math.White, s.AmbientLight())

	s.SetAmbientLight(math.RGB(0.2, 0.2, 0.2))
	assert.Equal(t, math.RGB(0.2, 0.2, 0.2), s.LightingRig().Ambient.Colour)

	p := s.AddPointLight(lighting.NewPointLight(math.UnitY, math.Red))
	d := s.AddDirectionalLight(lighting.NewDirectionalLight(math.UnitY.Neg(), math.White))
	rig := s.LightingRig()
	require.Len(t, rig.Points, 1)
	require.Len(t, rig.Directional, 1)
	assert.Same(t, p, rig.Points[0])

	s.RemovePointLight(p)
	s.RemoveDirectionalLight(d)
	assert.Empty(t, rig.Points)
	assert.Empty(t, rig.Directional)
}
