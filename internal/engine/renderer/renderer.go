// Package renderer executes render queues built from a scene.
//
// A frame runs in three phases: the backend's PreRender hook, a dispatch of
// every queued command in order, and the PostRender hook. Backends implement
// the hooks they need and embed NopBackend for the rest.
package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/engine/fault"
	"github.com/Faultbox/iris/internal/engine/lighting"
	"github.com/Faultbox/iris/internal/engine/rendergraph"
	"github.com/Faultbox/iris/internal/engine/scene"
)

// Backend executes render commands against a graphics API.
type Backend interface {
	PreRender() error
	UploadTexture(cmd *Command) error
	PassStart(cmd *Command) error
	Draw(cmd *Command) error
	PassEnd(cmd *Command) error
	Present(cmd *Command) error
	PostRender() error
}

// NopBackend implements every hook as a no-op.
type NopBackend struct{}

func (NopBackend) PreRender() error              { return nil }
func (NopBackend) UploadTexture(*Command) error { return nil }
func (NopBackend) PassStart(*Command) error     { return nil }
func (NopBackend) Draw(*Command) error          { return nil }
func (NopBackend) PassEnd(*Command) error       { return nil }
func (NopBackend) Present(*Command) error       { return nil }
func (NopBackend) PostRender() error            { return nil }

// State is the renderer's position in the frame protocol.
type State uint8

const (
	Idle State = iota
	PreRender
	Dispatch
	PostRender
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PreRender:
		return "pre_render"
	case Dispatch:
		return "dispatch"
	case PostRender:
		return "post_render"
	default:
		return "unknown"
	}
}

// Renderer drives a Backend through the frame protocol.
type Renderer struct {
	backend  Backend
	compiler *rendergraph.Compiler
	log      *zap.Logger
	state    State
	frames   uint64
	dropped  [2]int
}

// New creates a renderer. compiler must emit for the language backend
// consumes.
func New(backend Backend, compiler *rendergraph.Compiler, log *zap.Logger) *Renderer {
	return &Renderer{
		backend:  backend,
		compiler: compiler,
		log:      log.Named("renderer"),
	}
}

// State returns the current phase. It is Idle outside Render.
func (r *Renderer) State() State {
	return r.state
}

// Frames returns the number of frames rendered to completion.
func (r *Renderer) Frames() uint64 {
	return r.frames
}

// Render executes queue in order. Textures are marked uploaded as their
// upload hooks succeed. A hook error aborts the frame and is returned. A command with an unknown type raises a fault.
func (r *Renderer) Render(queue []Command) error {
	defer func() { r.state = Idle }()

	r.state = PreRender
	if err := r.backend.PreRender(); err != nil {
		return fmt.Errorf("pre-render: %w", err)
	}

	r.state = Dispatch
	for i := range queue {
		cmd := &queue[i]
		var err error
		switch cmd.Type {
		case UploadTexture:
			if err = r.backend.UploadTexture(cmd); err == nil {
				cmd.Texture.Uploaded = true
			}
		case PassStart:
			err = r.backend.PassStart(cmd)
		case Draw:
			err = r.backend.Draw(cmd)
		case PassEnd:
			err = r.backend.PassEnd(cmd)
		case Present:
			err = r.backend.Present(cmd)
		default:
			fault.Raise("unknown render command %d at queue index %d", cmd.Type, i)
		}
		if err != nil {
			return fmt.Errorf("%s (command %d): %w", cmd.Type, i, err)
		}
	}

	r.state = PostRender
	if err := r.backend.PostRender(); err != nil {
		return fmt.Errorf("post-render: %w", err)
	}
	r.frames++
	return nil
}

// Frame builds a fresh queue from s and renders it.
func (r *Renderer) Frame(s *scene.Scene, cams Cameras) error {
	queue, err := BuildQueue(s, r.compiler, cams)
	if err != nil {
		return err
	}

	// warn once per change rather than every frame
	rig := s.LightingRig()
	dropped := [2]int{
		max(len(rig.Points)-lighting.MaxPointLights, 0),
		max(len(rig.Directional)-lighting.MaxDirectionalLights, 0),
	}
	if dropped != r.dropped {
		r.dropped = dropped
		if dropped != [2]int{} {
			r.log.Warn("lights exceed shader limits",
				zap.Int("point_dropped", dropped[0]),
				zap.Int("directional_dropped", dropped[1]))
		}
	}

	return r.Render(queue)
}
