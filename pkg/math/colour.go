package math

// Colour is a linear RGBA colour with components in [0, 1].
type Colour struct {
	R, G, B, A float32
}

// Common colours.
var (
	White = Colour{1, 1, 1, 1}
	Black = Colour{0, 0, 0, 1}
	Red   = Colour{1, 0, 0, 1}
	Green = Colour{0, 1, 0, 1}
	Blue  = Colour{0, 0, 1, 1}
)

// RGB returns an opaque colour.
func RGB(r, g, b float32) Colour {
	return Colour{r, g, b, 1}
}

// Array returns the colour as a fixed array for GPU upload.
func (c Colour) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Scale multiplies the RGB components, leaving alpha unchanged.
func (c Colour) Scale(s float32) Colour {
	return Colour{c.R * s, c.G * s, c.B * s, c.A}
}

// Clamp limits each component to [0, 1].
func (c Colour) Clamp() Colour {
	return Colour{clamp01(c.R), clamp01(c.G), clamp01(c.B), clamp01(c.A)}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
