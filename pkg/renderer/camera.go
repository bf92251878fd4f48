package renderer

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// AntiAliasSigma is the standard deviation, in pixels, of the eye ray jitter
const AntiAliasSigma = 0.5

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Eye       core.Vec3 // Camera position
	LookAt    core.Vec3 // Point the camera looks at
	Up        core.Vec3 // Up direction
	FOV       float64   // Field of view in degrees across the image width and height
	Width     int       // Image width in pixels
	Height    int       // Image height in pixels
	AntiAlias bool      // Jitter eye rays with a Gaussian around the pixel
}

// NewCameraConfig combines a scene's camera with the output image settings
func NewCameraConfig(settings scene.CameraSettings, width, height int, antiAlias bool) CameraConfig {
	return CameraConfig{
		Eye:       settings.Eye,
		LookAt:    settings.LookAt,
		Up:        settings.Up,
		FOV:       settings.FOV,
		Width:     width,
		Height:    height,
		AntiAlias: antiAlias,
	}
}

// Camera generates eye rays through a pinhole
type Camera struct {
	config     CameraConfig
	forward    core.Vec3
	right      core.Vec3
	up         core.Vec3
	tanHalfFOV float64
	halfWidth  float64
	halfHeight float64
}

// NewCamera creates a camera and precomputes its basis
func NewCamera(config CameraConfig) *Camera {
	forward := config.LookAt.Subtract(config.Eye).Normalize()
	right := config.Up.Cross(forward).Normalize()
	up := forward.Cross(right).Normalize()

	return &Camera{
		config:     config,
		forward:    forward,
		right:      right,
		up:         up,
		tanHalfFOV: math.Tan(config.FOV * math.Pi / 360),
		halfWidth:  float64(config.Width) / 2,
		halfHeight: float64(config.Height) / 2,
	}
}

// EyeRay returns the ray through an image-plane offset measured in pixels
// from the image center, with y growing downwards. The direction is unit length.
func (c *Camera) EyeRay(x, y float64) core.Ray {
	direction := c.forward.
		Add(c.right.Multiply(c.tanHalfFOV * x / c.halfWidth)).
		Add(c.up.Multiply(c.tanHalfFOV * -y / c.halfHeight))

	return core.NewRay(c.config.Eye, direction.Normalize())
}

// GetRay generates the eye ray for raster pixel (i, j), jittered when anti-aliasing is on
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	x := float64(i - c.config.Width/2)
	y := float64(j - c.config.Height/2)

	if c.config.AntiAlias {
		x += core.Gaussian(sampler, AntiAliasSigma)
		y += core.Gaussian(sampler, AntiAliasSigma)
	}

	return c.EyeRay(x, y)
}

// Config returns the camera configuration
func (c *Camera) Config() CameraConfig {
	return c.config
}
