package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/config"
	"github.com/Faultbox/iris/internal/engine"
	"github.com/Faultbox/iris/internal/engine/camera"
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/internal/engine/physics"
	"github.com/Faultbox/iris/internal/engine/renderer"
	"github.com/Faultbox/iris/internal/engine/renderer/headless"
	"github.com/Faultbox/iris/pkg/math"
)

func newApp(t *testing.T) (*App, *headless.Backend) {
	t.Helper()
	cfg := config.Default()
	cfg.Graphics.Headless = true
	cfg.Assets.Root = t.TempDir()

	gpu := headless.New(zap.NewNop())
	e, err := engine.New(cfg, zap.NewNop(), gpu)
	require.NoError(t, err)
	t.Cleanup(e.Close)

	cams := renderer.Cameras{
		Perspective:  camera.NewPerspective(math.Vec3{Z: 10}, math.Zero, 800, 600),
		Orthographic: camera.NewOrthographic(800, 600),
	}
	return New(e, cams), gpu
}

func bindCube(a *App, desc physics.BodyDesc) (*physics.RigidBody, *graphics.RenderEntity) {
	body := a.Engine().Physics.Add(physics.NewRigidBody(desc))
	e := graphics.NewRenderEntity([]graphics.Mesh{graphics.Cube(math.White)}, math.Zero, math.QuatIdentity(), math.One)
	a.Engine().Scene.Add(nil, e)
	a.Bind(body, e)
	return body, e
}

func TestTickTakesFixedSteps(t *testing.T) {
	a, _ := newApp(t)
	step := a.Step()
	world := a.Engine().Physics

	n, err := a.Tick(step / 2)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "half a step waits")

	n, err = a.Tick(step - step/2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, step, world.Time())

	n, err = a.Tick(20 * step)
	require.NoError(t, err)
	assert.Equal(t, maxStepsPerTick, n, "catch-up is bounded")
	assert.Equal(t, (1+maxStepsPerTick)*step, world.Time())

	n, err = a.Tick(0)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "dropped time is not replayed")
}

func TestTickSyncsBoundEntities(t *testing.T) {
	a, gpu := newApp(t)
	body, e := bindCube(a, physics.BodyDesc{
		Shape:    physics.Box{HalfExtents: math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}},
		Mass:     1,
		Position: math.Vec3{Y: 10},
	})

	_, err := a.Tick(a.Step())
	require.NoError(t, err)

	assert.Equal(t, body.Position(), e.Position())
	assert.Less(t, e.Position().Y, float32(10))
	assert.Equal(t, 1, gpu.Stats().Frames)
	assert.Equal(t, 1, gpu.Stats().Draws)
	assert.Equal(t, uint64(1), a.Engine().Renderer.Frames())

	a.Unbind(e)
	assert.Empty(t, a.Bindings())
	_, err = a.Tick(a.Step())
	require.NoError(t, err)
	assert.NotEqual(t, body.Position(), e.Position(), "unbound entities stay put")
}

func TestRun(t *testing.T) {
	a, gpu := newApp(t)

	require.NoError(t, a.Run(context.Background(), 3))
	assert.Equal(t, 3, gpu.Stats().Frames)
	assert.Equal(t, 3*a.Step(), a.Engine().Physics.Time())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.Run(ctx, -1))
	assert.Equal(t, 3, gpu.Stats().Frames)
}

func TestPickAndSelect(t *testing.T) {
	a, _ := newApp(t)
	_, e := bindCube(a, physics.BodyDesc{Shape: physics.Box{HalfExtents: math.One}})

	got, hit, ok := a.Pick(400, 300)
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.InDelta(t, 1, hit.Point.Z, 1e-2)

	_, _, ok = a.Pick(0, 0)
	assert.False(t, ok)

	a.Select(got)
	assert.True(t, e.Wireframe())
	assert.Same(t, e, a.Selected())

	a.Select(nil)
	assert.False(t, e.Wireframe())
	assert.Nil(t, a.Selected())
}

func TestPickWithoutCamera(t *testing.T) {
	a, _ := newApp(t)
	a.Cameras.Perspective = nil
	_, _, ok := a.Pick(400, 300)
	assert.False(t, ok)
}

func TestPopulate(t *testing.T) {
	a, gpu := newApp(t)
	d := Populate(a)

	world := a.Engine().Physics
	assert.Len(t, d.Crates, crateCount)
	assert.Len(t, world.Bodies(), 1+crateCount+2+1)
	assert.Len(t, world.Characters(), 1)
	assert.Len(t, world.Constraints(), 1)
	assert.Len(t, a.Bindings(), 1+crateCount+2+1)
	require.NotNil(t, d.HUD)
	assert.Equal(t, graphics.Orthographic, d.HUD.CameraType())
	assert.Len(t, a.Engine().Scene.Entities(), len(a.Bindings())+1)

	require.NoError(t, a.Run(context.Background(), 30))
	assert.Equal(t, 30, gpu.Stats().Frames)
	assert.Equal(t, len(a.Engine().Scene.Entities()), gpu.Stats().Draws/30)
	assert.Equal(t, 2, gpu.Stats().Passes/30, "perspective and overlay")

	// the rope keeps the bob at its starting distance
	assert.InDelta(t, 3, d.Anchor.Position().Distance(d.Bob.Position()), 0.05)
	assert.True(t, d.Ground.InWorld())
}
