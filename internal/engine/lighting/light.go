// Package lighting provides the light types a scene can hold and their
// flattened GPU layout.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/iris/pkg/math"
)

// AmbientLight is the constant light applied to every surface.
type AmbientLight struct {
	Colour math.Colour
}

// Attenuation holds the constant, linear and quadratic falloff terms.
type Attenuation struct {
	Constant  float32
	Linear    float32
	Quadratic float32
}

// DefaultAttenuation is a gentle falloff suitable for a range of ~50 units.
var DefaultAttenuation = Attenuation{Constant: 1, Linear: 0.09, Quadratic: 0.032}

// PointLight is a light radiating from a position.
type PointLight struct {
	Position    math.Vec3
	Colour      math.Colour
	Range       float32 // Light radius/falloff distance
	Intensity   float32
	Attenuation Attenuation
}

// NewPointLight creates a point light with default falloff.
func NewPointLight(position math.Vec3, colour math.Colour) *PointLight {
	return &PointLight{
		Position:    position,
		Colour:      colour,
		Range:       100,
		Intensity:   1,
		Attenuation: DefaultAttenuation,
	}
}

// DirectionalLight is an infinitely distant light such as the sun.
type DirectionalLight struct {
	Direction  math.Vec3 // Direction the light travels
	Colour     math.Colour
	CastShadow bool
}

// NewDirectionalLight creates a directional light. The direction is normalized.
func NewDirectionalLight(direction math.Vec3, colour math.Colour) *DirectionalLight {
	return &DirectionalLight{Direction: direction.Normalize(), Colour: colour}
}

// FromAngles returns the direction towards a light at the given longitude
// (rotation around Y) and latitude (elevation from horizon), in degrees.
func FromAngles(longitude, latitude float32) math.Vec3 {
	lonRad := float64(longitude) * gomath.Pi / 180.0
	latRad := float64(latitude) * gomath.Pi / 180.0

	return math.Vec3{
		X: float32(gomath.Cos(latRad) * gomath.Sin(lonRad)),
		Y: float32(gomath.Sin(latRad)),
		Z: float32(gomath.Cos(latRad) * gomath.Cos(lonRad)),
	}
}
