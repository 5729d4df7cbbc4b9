package renderer

import (
	"fmt"

	"github.com/Faultbox/iris/internal/engine/camera"
	"github.com/Faultbox/iris/internal/engine/fault"
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/internal/engine/lighting"
	"github.com/Faultbox/iris/internal/engine/rendergraph"
	"github.com/Faultbox/iris/internal/engine/texture"
)

// CommandType tags a render command.
type CommandType uint8

const (
	UploadTexture CommandType = iota
	PassStart
	Draw
	PassEnd
	Present
)

func (t CommandType) String() string {
	switch t {
	case UploadTexture:
		return "upload_texture"
	case PassStart:
		return "pass_start"
	case Draw:
		return "draw"
	case PassEnd:
		return "pass_end"
	case Present:
		return "present"
	default:
		return "unknown"
	}
}

// Command is one entry of the render queue. Which fields are set depends on
// Type:
//
//	UploadTexture: Texture
//	PassStart:     Camera, Lights, Target
//	Draw:          Camera, Entity, Material
//	PassEnd:       Camera, Target
//
// A nil Target draws the pass to the screen.
type Command struct {
	Type CommandType

	Texture  *texture.Texture
	Camera   *camera.Camera
	Lights   *lighting.Buffer
	Target   *RenderTarget
	Entity   *graphics.RenderEntity
	Material *rendergraph.Material
}

// RenderTarget is an off-screen destination for a pass. Colour is required,
// Depth is optional. Both come from texture.Manager.Target and may be sampled
// by render graphs in later frames.
type RenderTarget struct {
	Name   string
	Colour *texture.Texture
	Depth  *texture.Texture

	// Handle is set by the backend, e.g. a GL framebuffer name.
	Handle any
}

// Size returns the size of the colour attachment.
func (rt *RenderTarget) Size() (int, int) {
	return rt.Colour.Width, rt.Colour.Height
}

// Validate checks the attachments' usages and sizes.
func (rt *RenderTarget) Validate() error {
	invalid := func(format string, args ...any) error {
		return &fault.ResourceError{Op: "target", Resource: rt.Name, Err: fmt.Errorf(format, args...)}
	}
	if rt.Colour == nil {
		return invalid("no colour attachment")
	}
	if rt.Colour.Usage != texture.UsageRenderTarget {
		return invalid("colour attachment has usage %s", rt.Colour.Usage)
	}
	if rt.Depth == nil {
		return nil
	}
	if rt.Depth.Usage != texture.UsageDepth {
		return invalid("depth attachment has usage %s", rt.Depth.Usage)
	}
	if rt.Depth.Width != rt.Colour.Width || rt.Depth.Height != rt.Colour.Height {
		return invalid("depth %dx%d does not match colour %dx%d",
			rt.Depth.Width, rt.Depth.Height, rt.Colour.Width, rt.Colour.Height)
	}
	return nil
}

// Cameras holds the camera for each camera type. Entities tagged with a type
// whose camera is nil are not drawn. Targets redirects the pass of a camera
// type off screen.
type Cameras struct {
	Perspective  *camera.Camera
	Orthographic *camera.Camera
	Targets      map[graphics.CameraType]*RenderTarget
}

// For returns the camera for t.
func (c Cameras) For(t graphics.CameraType) *camera.Camera {
	switch t {
	case graphics.Perspective:
		return c.Perspective
	case graphics.Orthographic:
		return c.Orthographic
	default:
		return nil
	}
}
