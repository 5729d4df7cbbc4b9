package debugdraw

import (
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/internal/engine/scene"
	"github.com/Faultbox/iris/pkg/math"
)

// Sink shows buffered line segments as a single lines entity in a scene.
// Each Draw replaces what the previous one showed.
type Sink struct {
	scene  *scene.Scene
	entity *graphics.RenderEntity
	lines  int
}

// NewSink creates a sink drawing into s. Nothing is added to the scene until
// the first non-empty Draw.
func NewSink(s *scene.Scene) *Sink {
	return &Sink{scene: s}
}

// Draw shows lines until the next call. An empty list removes the entity.
func (k *Sink) Draw(lines []graphics.Line) {
	k.lines = len(lines)
	if len(lines) == 0 {
		if k.entity != nil {
			k.scene.Remove(k.entity)
			k.entity = nil
		}
		return
	}

	mesh := graphics.Lines(lines)
	if k.entity == nil {
		e := graphics.NewRenderEntity([]graphics.Mesh{mesh}, math.Zero, math.QuatIdentity(), math.One)
		e.Name = "debug lines"
		e.SetPrimitiveType(graphics.LinesPrimitive)
		// the default graph draws vertex colours
		k.entity = k.scene.Add(nil, e)
		return
	}
	k.entity.SetMeshes([]graphics.Mesh{mesh})
}

// Entity returns the entity the lines are drawn with, or nil.
func (k *Sink) Entity() *graphics.RenderEntity {
	return k.entity
}

// Lines returns how many lines the last Draw showed.
func (k *Sink) Lines() int {
	return k.lines
}
