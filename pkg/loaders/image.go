package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp" // BMP decoder

	"github.com/df07/go-sphere-pathtracer/pkg/texture"
)

// LoadImage decodes a PNG, JPEG or BMP file and reports the detected format
func LoadImage(filename string) (image.Image, string, error) {
	// Open file
	file, err := os.Open(filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Decode image (auto-detects format from file header)
	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	return img, format, nil
}

// LoadTexture loads an image file as a texture. When maxSize is positive,
// images larger than maxSize in either dimension are downsampled to fit,
// keeping their aspect ratio.
func LoadTexture(filename string, maxSize int) (*texture.ImageTexture, error) {
	img, _, err := LoadImage(filename)
	if err != nil {
		return nil, err
	}

	if maxSize > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > maxSize || bounds.Dy() > maxSize {
			img = resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3)
		}
	}

	tex, err := texture.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", filename, err)
	}
	return tex, nil
}
