package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/iris/pkg/math"
)

func TestRigDefaultsToWhiteAmbient(t *testing.T) {
	r := NewRig()
	assert.Equal(t, math.White, r.Ambient.Colour)
	assert.Empty(t, r.Points)
	assert.Empty(t, r.Directional)
}

func TestRigRemoveByIdentity(t *testing.T) {
	r := NewRig()
	a := r.AddPoint(NewPointLight(math.Zero, math.Red))
	b := r.AddPoint(NewPointLight(math.Zero, math.Red)) // equal by value

	r.RemovePoint(a)
	assert.Equal(t, []*PointLight{b}, r.Points)

	// not in the rig
	r.RemovePoint(a)
	assert.Len(t, r.Points, 1)

	d := r.AddDirectional(NewDirectionalLight(math.Vec3{Y: -2}, math.White))
	assert.Equal(t, math.Vec3{Y: -1}, d.Direction)
	r.RemoveDirectional(d)
	assert.Empty(t, r.Directional)
}

func TestBufferFlattenTruncates(t *testing.T) {
	r := NewRig()
	r.Ambient.Colour = math.Colour{R: 0.1, G: 0.2, B: 0.3, A: 1}
	for i := 0; i < MaxPointLights+3; i++ {
		r.AddPoint(NewPointLight(math.Vec3{X: float32(i)}, math.Colour{R: 2, G: 0.5, B: -1, A: 1}))
	}

	var b Buffer
	dropped := b.Flatten(r)

	assert.Equal(t, 3, dropped)
	assert.Equal(t, MaxPointLights, b.PointCount)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, b.Ambient)
	assert.Equal(t, float32(5), b.PointPositions[5*3])
	// colours are clamped to [0, 1]
	assert.Equal(t, []float32{1, 0.5, 0}, b.PointColours[0:3])
	assert.Equal(t, DefaultAttenuation.Linear, b.PointFalloff[1])
	assert.Equal(t, float32(100), b.PointFalloff[3])
}

func TestFromAngles(t *testing.T) {
	up := FromAngles(0, 90)
	assert.InDelta(t, 1, up.Y, 1e-6)

	south := FromAngles(0, 0)
	assert.InDelta(t, 1, south.Z, 1e-6)
	assert.InDelta(t, 1, FromAngles(123, 45).Length(), 1e-5)
}
