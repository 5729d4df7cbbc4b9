package lighting

// MaxPointLights is the maximum number of point lights supported in shaders.
const MaxPointLights = 32

// MaxDirectionalLights is the maximum number of directional lights supported in shaders.
const MaxDirectionalLights = 4

// Buffer holds a rig flattened into fixed-size arrays for GPU upload.
type Buffer struct {
	Ambient [4]float32

	PointCount     int
	PointPositions [MaxPointLights * 3]float32 // [x0, y0, z0, x1, ...]
	PointColours   [MaxPointLights * 3]float32 // Premultiplied by intensity
	PointFalloff   [MaxPointLights * 4]float32 // constant, linear, quadratic, range

	DirectionalCount      int
	DirectionalDirections [MaxDirectionalLights * 3]float32
	DirectionalColours    [MaxDirectionalLights * 3]float32
}

// Flatten fills the buffer from rig. It returns how many lights did not fit.
func (b *Buffer) Flatten(rig *Rig) (dropped int) {
	*b = Buffer{}
	if rig == nil {
		return 0
	}
	if rig.Ambient != nil {
		b.Ambient = rig.Ambient.Colour.Array()
	}

	for i, l := range rig.Points {
		if i >= MaxPointLights {
			dropped += len(rig.Points) - MaxPointLights
			break
		}
		pos := l.Position.Array()
		copy(b.PointPositions[i*3:], pos[:])
		rgb := l.Colour.Clamp().Scale(l.Intensity)
		b.PointColours[i*3+0] = rgb.R
		b.PointColours[i*3+1] = rgb.G
		b.PointColours[i*3+2] = rgb.B
		b.PointFalloff[i*4+0] = l.Attenuation.Constant
		b.PointFalloff[i*4+1] = l.Attenuation.Linear
		b.PointFalloff[i*4+2] = l.Attenuation.Quadratic
		b.PointFalloff[i*4+3] = l.Range
		b.PointCount++
	}

	for i, l := range rig.Directional {
		if i >= MaxDirectionalLights {
			dropped += len(rig.Directional) - MaxDirectionalLights
			break
		}
		dir := l.Direction.Array()
		copy(b.DirectionalDirections[i*3:], dir[:])
		b.DirectionalColours[i*3+0] = l.Colour.R
		b.DirectionalColours[i*3+1] = l.Colour.G
		b.DirectionalColours[i*3+2] = l.Colour.B
		b.DirectionalCount++
	}

	return dropped
}
