package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// Supported encodings
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// ImageSink collects rendered pixels into an RGBA buffer. Alpha is always opaque.
type ImageSink struct {
	img *image.RGBA
}

// NewImageSink creates a black image of the given size
func NewImageSink(width, height int) *ImageSink {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	// Start opaque so unwritten pixels are black rather than transparent
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return &ImageSink{img: img}
}

// WritePixel stores one pixel. Coordinates outside the image panic.
func (s *ImageSink) WritePixel(x, y int, r, g, b uint8) {
	if !(image.Point{X: x, Y: y}).In(s.img.Rect) {
		panic(fmt.Sprintf("output: pixel (%d, %d) outside %v", x, y, s.img.Rect))
	}
	s.img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
}

// Image returns the underlying image
func (s *ImageSink) Image() *image.RGBA {
	return s.img
}

// FormatFromPath picks an encoding from a file extension
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	default:
		return "", fmt.Errorf("unsupported image extension %q (want .png or .bmp)", filepath.Ext(path))
	}
}

// ContentType returns the MIME type of an encoding
func ContentType(format string) string {
	if format == FormatBMP {
		return "image/bmp"
	}
	return "image/png"
}

// Encode writes img to w in the given format
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// SaveImage encodes img to path, choosing the format from the extension
// and creating parent directories as needed
func SaveImage(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Encode(file, img, format); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}
