package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// Texture is a random-access 2D image used to color sphere surfaces.
// Pixel values are display-encoded bytes; (0,0) is the top-left corner.
type Texture interface {
	Width() int
	Height() int
	GetPixel(x, y int) (r, g, b uint8)
}

// NopLogger discards all messages
type NopLogger struct{}

// Printf implements Logger
func (NopLogger) Printf(format string, args ...interface{}) {}
