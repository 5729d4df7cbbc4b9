// Package texture loads, decodes and reference counts textures.
package texture

import "fmt"

// Usage describes how a texture will be sampled or written.
type Usage uint8

const (
	UsageImage        Usage = iota // Colour data, sampled in sRGB
	UsageData                      // Non-colour data such as normal maps
	UsageRenderTarget              // Colour attachment
	UsageDepth                     // Depth attachment
	usageCount
)

// Valid reports whether u is a known usage.
func (u Usage) Valid() bool {
	return u < usageCount
}

func (u Usage) String() string {
	switch u {
	case UsageImage:
		return "image"
	case UsageData:
		return "data"
	case UsageRenderTarget:
		return "render_target"
	case UsageDepth:
		return "depth"
	default:
		return fmt.Sprintf("usage(%d)", uint8(u))
	}
}

// Texture is RGBA pixel data plus the backend state created for it.
type Texture struct {
	ID     uint32
	Name   string
	Data   []byte // RGBA, 4 bytes per pixel, rows bottom to top
	Width  int
	Height int
	Usage  Usage

	// Handle is set by the backend Factory, e.g. a GL texture name.
	Handle any
	// Uploaded is set once the render queue has uploaded the texture and
	// cleared when the manager destroys it.
	Uploaded bool
}

// Factory creates and destroys the backend resources for textures.
type Factory interface {
	Create(t *Texture) error
	Destroy(t *Texture)
}

// NopFactory leaves textures CPU side only.
type NopFactory struct{}

func (NopFactory) Create(*Texture) error { return nil }
func (NopFactory) Destroy(*Texture)      {}
