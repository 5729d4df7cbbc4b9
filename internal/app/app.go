// Package app runs the engine's frame loop: fixed physics steps, transform
// sync from bodies to entities, then one rendered frame.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/engine"
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/internal/engine/physics"
	"github.com/Faultbox/iris/internal/engine/renderer"
)

// maxStepsPerTick bounds catch-up after a long frame. Time beyond it is
// dropped rather than simulated.
const maxStepsPerTick = 5

// Binding ties an entity's transform to a body.
type Binding struct {
	Body   *physics.RigidBody
	Entity *graphics.RenderEntity
}

// App owns the frame loop for an engine context.
type App struct {
	engine  *engine.Context
	log     *zap.Logger
	Cameras renderer.Cameras

	step     time.Duration
	pending  time.Duration
	bindings []Binding
	selected *graphics.RenderEntity
}

// New creates an app stepping physics at the configured tick rate.
func New(e *engine.Context, cams renderer.Cameras) *App {
	return &App{
		engine:  e,
		log:     e.Log.Named("app"),
		Cameras: cams,
		step:    time.Second / time.Duration(e.Config.Physics.TickRate),
	}
}

// Engine returns the engine context.
func (a *App) Engine() *engine.Context { return a.engine }

// Step returns the fixed physics step.
func (a *App) Step() time.Duration { return a.step }

// Bind makes entity follow body after every tick.
func (a *App) Bind(body *physics.RigidBody, entity *graphics.RenderEntity) {
	a.bindings = append(a.bindings, Binding{Body: body, Entity: entity})
}

// Unbind stops entity following its body.
func (a *App) Unbind(entity *graphics.RenderEntity) {
	for i, b := range a.bindings {
		if b.Entity == entity {
			a.bindings = append(a.bindings[:i], a.bindings[i+1:]...)
			return
		}
	}
}

// Bindings returns the current body to entity bindings.
func (a *App) Bindings() []Binding {
	return a.bindings
}

// Tick advances the simulation by elapsed wall time in fixed steps, syncs
// bound entities and renders a frame. It returns the number of physics steps
// taken.
func (a *App) Tick(elapsed time.Duration) (int, error) {
	a.pending += elapsed
	steps := 0
	for a.pending >= a.step {
		if steps == maxStepsPerTick {
			a.log.Debug("dropping simulation time", zap.Duration("behind", a.pending))
			a.pending = 0
			break
		}
		a.engine.Physics.Step(a.step)
		a.pending -= a.step
		steps++
	}

	a.Sync()

	if err := a.engine.Renderer.Frame(a.engine.Scene, a.Cameras); err != nil {
		return steps, fmt.Errorf("rendering frame %d: %w", a.engine.Renderer.Frames(), err)
	}
	return steps, nil
}

// Sync copies body transforms onto their entities.
func (a *App) Sync() {
	for _, b := range a.bindings {
		b.Entity.SetPosition(b.Body.Position())
		b.Entity.SetOrientation(b.Body.Orientation())
	}
}

// Run ticks frames times with a fixed step, or until ctx is cancelled. A
// negative frames count runs until cancellation.
func (a *App) Run(ctx context.Context, frames int) error {
	for i := 0; frames < 0 || i < frames; i++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if _, err := a.Tick(a.step); err != nil {
			return err
		}
	}
	return nil
}

// Pick casts a ray through the pixel at x, y of the perspective camera and
// returns the bound entity it hits.
func (a *App) Pick(x, y float32) (*graphics.RenderEntity, physics.Hit, bool) {
	cam := a.Cameras.Perspective
	if cam == nil {
		return nil, physics.Hit{}, false
	}
	origin, dir := cam.ScreenRay(x, y)
	hit, ok := a.engine.Physics.RayCast(origin, dir)
	if !ok {
		return nil, hit, false
	}
	for _, b := range a.bindings {
		if b.Body == hit.Body {
			return b.Entity, hit, true
		}
	}
	return nil, hit, true
}

// Select highlights e by drawing it in wireframe. Selecting nil clears the
// selection.
func (a *App) Select(e *graphics.RenderEntity) {
	if a.selected != nil {
		a.selected.SetWireframe(false)
	}
	a.selected = e
	if e != nil {
		e.SetWireframe(true)
	}
}

// Selected returns the highlighted entity, or nil.
func (a *App) Selected() *graphics.RenderEntity {
	return a.selected
}
