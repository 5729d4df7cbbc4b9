package renderer

import (
	"fmt"

	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/internal/engine/lighting"
	"github.com/Faultbox/iris/internal/engine/rendergraph"
	"github.com/Faultbox/iris/internal/engine/scene"
	"github.com/Faultbox/iris/internal/engine/texture"
)

// passOrder is the order camera passes are emitted in. Orthographic entities
// are drawn last so they overlay the world.
var passOrder = []graphics.CameraType{graphics.Perspective, graphics.Orthographic}

// BuildQueue builds the render queue for one frame of s.
//
// Graphs are compiled on first use and every compiled material is assigned to
// its entities. The queue starts with an upload for every texture that a drawn
// material samples or a pass renders into and that has not been uploaded
// yet, whether the material was compiled now or earlier. Then come one pass
// per camera type in use, with the draws in scene order, and a single present.
//
// A compile failure or an invalid render target aborts the build and nothing
// is returned.
func BuildQueue(s *scene.Scene, compiler *rendergraph.Compiler, cams Cameras) ([]Command, error) {
	var (
		uploads []Command
		queued  = make(map[*texture.Texture]struct{})
		draws   = make(map[graphics.CameraType][]Command)
	)
	upload := func(t *texture.Texture) {
		if t == nil || t.Uploaded {
			return
		}
		if _, ok := queued[t]; ok {
			return
		}
		queued[t] = struct{}{}
		uploads = append(uploads, Command{Type: UploadTexture, Texture: t})
	}

	for _, entry := range s.Entities() {
		m, err := compiler.Compile(entry.Graph)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", entry.Entity.Name, err)
		}
		entry.Entity.SetMaterial(m)

		t := entry.Entity.CameraType()
		cam := cams.For(t)
		if cam == nil {
			continue
		}
		for _, b := range m.Textures {
			upload(b.Texture)
		}
		draws[t] = append(draws[t], Command{Type: Draw, Camera: cam, Entity: entry.Entity, Material: m})
	}

	var passes []Command
	if len(draws) > 0 {
		lights := new(lighting.Buffer)
		lights.Flatten(s.LightingRig())
		for _, t := range passOrder {
			if len(draws[t]) == 0 {
				continue
			}
			target := cams.Targets[t]
			if target != nil {
				if err := target.Validate(); err != nil {
					return nil, fmt.Errorf("%s pass: %w", t, err)
				}
				upload(target.Colour)
				upload(target.Depth)
			}
			cam := cams.For(t)
			passes = append(passes, Command{Type: PassStart, Camera: cam, Lights: lights, Target: target})
			passes = append(passes, draws[t]...)
			passes = append(passes, Command{Type: PassEnd, Camera: cam, Target: target})
		}
	}

	queue := append(uploads, passes...)
	return append(queue, Command{Type: Present}), nil
}
