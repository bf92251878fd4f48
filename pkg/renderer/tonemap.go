package renderer

import (
	"image/color"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// DisplayGamma is the gamma used to encode linear radiance for display
const DisplayGamma = 2.2

// PixelSink receives finished pixels. Coordinates must lie inside the image.
type PixelSink interface {
	WritePixel(x, y int, r, g, b uint8)
}

// ToneMap converts averaged linear radiance to display bytes:
// clamp to [0, 1], gamma encode, scale to 255 and truncate
func ToneMap(c core.Color) (r, g, b uint8) {
	return toneMapChannel(c.X), toneMapChannel(c.Y), toneMapChannel(c.Z)
}

func toneMapChannel(v float64) uint8 {
	// !(v > 0) also catches NaN
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(math.Pow(v, 1/DisplayGamma) * 255)
}

// vec3ToColor converts a linear color to an opaque RGBA pixel
func vec3ToColor(c core.Color) color.RGBA {
	r, g, b := ToneMap(c)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
