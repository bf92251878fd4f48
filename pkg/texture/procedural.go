package texture

// RGB is a display-encoded color
type RGB struct {
	R, G, B uint8
}

// NewCheckerboardTexture creates a procedural checkerboard pattern texture
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 RGB) *ImageTexture {
	pixels := make([]uint8, 3*width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Alternate colors based on check position
			c := color1
			if (x/checkSize+y/checkSize)%2 != 0 {
				c = color2
			}
			setPixel(pixels, width, x, y, c)
		}
	}

	return mustTexture(width, height, pixels)
}

// NewGradientTexture creates a vertical gradient from color1 (top) to color2 (bottom)
func NewGradientTexture(width, height int, color1, color2 RGB) *ImageTexture {
	pixels := make([]uint8, 3*width*height)

	for y := 0; y < height; y++ {
		t := 0.0
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		c := RGB{
			R: lerp(color1.R, color2.R, t),
			G: lerp(color1.G, color2.G, t),
			B: lerp(color1.B, color2.B, t),
		}
		for x := 0; x < width; x++ {
			setPixel(pixels, width, x, y, c)
		}
	}

	return mustTexture(width, height, pixels)
}

// NewUVDebugTexture creates a texture showing UV coordinates as colors
// U maps to red channel, V maps to green channel
func NewUVDebugTexture(width, height int) *ImageTexture {
	pixels := make([]uint8, 3*width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := RGB{
				R: uint8(255 * x / max(1, width-1)),
				G: uint8(255 * y / max(1, height-1)),
			}
			setPixel(pixels, width, x, y, c)
		}
	}

	return mustTexture(width, height, pixels)
}

func setPixel(pixels []uint8, width, x, y int, c RGB) {
	i := 3 * (y*width + x)
	pixels[i] = c.R
	pixels[i+1] = c.G
	pixels[i+2] = c.B
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t + 0.5)
}

// mustTexture panics on invalid dimensions, which only a programming error produces here
func mustTexture(width, height int, pixels []uint8) *ImageTexture {
	t, err := NewImageTexture(width, height, pixels)
	if err != nil {
		panic(err)
	}
	return t
}
