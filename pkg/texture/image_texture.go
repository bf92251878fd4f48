package texture

import (
	"fmt"
	"image"
	"image/color"
)

// ImageTexture is an in-memory RGB byte texture implementing core.Texture
type ImageTexture struct {
	width  int
	height int
	pixels []uint8 // Row-major RGB triples: pixels[3*(y*width+x)]
}

// NewImageTexture creates a texture from row-major RGB triples
func NewImageTexture(width, height int, pixels []uint8) (*ImageTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("texture dimensions must be positive, got %dx%d", width, height)
	}
	if len(pixels) != 3*width*height {
		return nil, fmt.Errorf("texture expects %d bytes for %dx%d, got %d", 3*width*height, width, height, len(pixels))
	}
	return &ImageTexture{
		width:  width,
		height: height,
		pixels: pixels,
	}, nil
}

// FromImage copies any decoded image into an ImageTexture, dropping alpha
func FromImage(img image.Image) (*ImageTexture, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]uint8, 3*width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.NRGBA)
			i := 3 * (y*width + x)
			pixels[i] = c.R
			pixels[i+1] = c.G
			pixels[i+2] = c.B
		}
	}

	return NewImageTexture(width, height, pixels)
}

// Width returns the texture width in pixels
func (t *ImageTexture) Width() int {
	return t.width
}

// Height returns the texture height in pixels
func (t *ImageTexture) Height() int {
	return t.height
}

// GetPixel returns the display-encoded color at (x, y).
// Coordinates outside the texture are a caller bug and panic.
func (t *ImageTexture) GetPixel(x, y int) (r, g, b uint8) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		panic(fmt.Sprintf("texture: pixel (%d, %d) outside %dx%d", x, y, t.width, t.height))
	}
	i := 3 * (y*t.width + x)
	return t.pixels[i], t.pixels[i+1], t.pixels[i+2]
}
