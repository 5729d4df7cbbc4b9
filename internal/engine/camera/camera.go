// Package camera provides the cameras entities are rendered through.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/pkg/math"
)

// Camera describes a view into the scene.
//
// Perspective cameras use FOV (radians) and the viewport aspect ratio.
// Orthographic cameras map the viewport width and height to world units
// centred on the camera, which suits screen-space overlays.
type Camera struct {
	Type     graphics.CameraType
	Position math.Vec3
	Target   math.Vec3
	Up       math.Vec3
	FOV      float32
	Near     float32
	Far      float32
	Width    float32
	Height   float32
}

// NewPerspective creates a perspective camera looking from position at target.
func NewPerspective(position, target math.Vec3, width, height float32) *Camera {
	return &Camera{
		Type:     graphics.Perspective,
		Position: position,
		Target:   target,
		Up:       math.UnitY,
		FOV:      mgl32.DegToRad(45),
		Near:     0.1,
		Far:      1000,
		Width:    width,
		Height:   height,
	}
}

// NewOrthographic creates an orthographic camera for screen-space entities.
// The origin is the centre of the screen and one unit is one pixel.
func NewOrthographic(width, height float32) *Camera {
	return &Camera{
		Type:     graphics.Orthographic,
		Position: math.Vec3{Z: 100},
		Target:   math.Zero,
		Up:       math.UnitY,
		Near:     0.1,
		Far:      1000,
		Width:    width,
		Height:   height,
	}
}

// Projection returns the projection matrix.
func (c *Camera) Projection() math.Mat4 {
	if c.Type == graphics.Orthographic {
		w, h := c.Width/2, c.Height/2
		return math.Mat4(mgl32.Ortho(-w, w, -h, h, c.Near, c.Far))
	}
	aspect := float32(1)
	if c.Height > 0 {
		aspect = c.Width / c.Height
	}
	return math.Mat4(mgl32.Perspective(c.FOV, aspect, c.Near, c.Far))
}

// View returns the view matrix.
func (c *Camera) View() math.Mat4 {
	return math.Mat4(mgl32.LookAtV(toMgl(c.Position), toMgl(c.Target), toMgl(c.Up)))
}

// Resize updates the viewport dimensions.
func (c *Camera) Resize(width, height float32) {
	c.Width = width
	c.Height = height
}

// Forward returns the unit direction the camera faces.
func (c *Camera) Forward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// ScreenRay converts pixel coordinates, origin top-left, to a world-space ray
// starting on the near plane. The direction is normalized.
func (c *Camera) ScreenRay(x, y float32) (origin, direction math.Vec3) {
	ndcX := 2*x/c.Width - 1
	ndcY := 1 - 2*y/c.Height

	inv := c.Projection().Mul(c.View()).Inverse()
	near := inv.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	far := inv.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 1})
	return near, far.Sub(near).Normalize()
}

func toMgl(v math.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// Orbit moves a camera on a sphere around its target.
type Orbit struct {
	Distance float32
	Pitch    float32
	Yaw      float32

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbit creates an orbit controller with default limits.
func NewOrbit(distance float32) *Orbit {
	return &Orbit{
		Distance:        distance,
		Pitch:           0.5,
		MinDistance:     1,
		MaxDistance:     5000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Apply positions c on the orbit around c.Target.
func (o *Orbit) Apply(c *Camera) {
	cosPitch := math32.Cos(o.Pitch)
	offset := math.Vec3{
		X: o.Distance * cosPitch * math32.Sin(o.Yaw),
		Y: o.Distance * math32.Sin(o.Pitch),
		Z: o.Distance * cosPitch * math32.Cos(o.Yaw),
	}
	c.Position = c.Target.Add(offset)
}

// HandleDrag rotates the orbit by a mouse drag delta.
func (o *Orbit) HandleDrag(deltaX, deltaY float32) {
	o.Yaw -= deltaX * o.DragSensitivity
	o.Pitch = clamp(o.Pitch+deltaY*o.DragSensitivity, o.MinPitch, o.MaxPitch)
}

// HandleZoom changes the distance by a scroll delta.
func (o *Orbit) HandleZoom(delta float32) {
	o.Distance = clamp(o.Distance-delta*o.Distance*o.ZoomSensitivity, o.MinDistance, o.MaxDistance)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
