package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"path/filepath"
	"strings"

	// Registered image formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Decode decodes an encoded image into RGBA pixels. The name's extension
// selects TGA; every other format is sniffed from the data.
func Decode(name string, data []byte) (*image.RGBA, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return toRGBA(img), nil
}

// toRGBA converts any image.Image to *image.RGBA with a zero origin.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// flipRows returns a copy of pix with its rows in reverse order.
func flipRows(pix []byte, width, height int) []byte {
	stride := width * 4
	out := make([]byte, len(pix))
	for y := 0; y < height; y++ {
		copy(out[(height-1-y)*stride:(height-y)*stride], pix[y*stride:(y+1)*stride])
	}
	return out
}
