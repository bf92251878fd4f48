package renderer

import (
	"context"
	"image"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int   // Number of eye rays averaged per pixel
	Seed            int64 // Seed of the random stream(s)
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 1000,
		Seed:            42,
	}
}

// Raytracer renders a scene one pixel at a time
type Raytracer struct {
	scene      *scene.Scene
	camera     *Camera
	integrator integrator.Integrator
	config     SamplingConfig
	logger     core.Logger
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene *scene.Scene, camera *Camera, integ integrator.Integrator, config SamplingConfig) *Raytracer {
	if config.SamplesPerPixel <= 0 {
		config.SamplesPerPixel = 1
	}
	return &Raytracer{
		scene:      scene,
		camera:     camera,
		integrator: integ,
		config:     config,
		logger:     core.NopLogger{},
	}
}

// SetLogger sets where progress messages go
func (rt *Raytracer) SetLogger(logger core.Logger) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	rt.logger = logger
}

// Width returns the image width in pixels
func (rt *Raytracer) Width() int {
	return rt.camera.config.Width
}

// Height returns the image height in pixels
func (rt *Raytracer) Height() int {
	return rt.camera.config.Height
}

// SamplingConfig returns the sampling configuration
func (rt *Raytracer) SamplingConfig() SamplingConfig {
	return rt.config
}

// SamplePixel averages SamplesPerPixel radiance estimates for raster pixel (i, j)
func (rt *Raytracer) SamplePixel(i, j int, sampler core.Sampler) core.Color {
	var ps PixelStats
	for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
		ray := rt.camera.GetRay(i, j, sampler)
		ps.AddSample(rt.integrator.RayColor(ray, rt.scene, sampler))
	}
	return ps.GetColor()
}

// Render draws every pixel in raster order (top to bottom, left to right)
// from a single random stream, so the image depends only on the seed.
// ctx is checked before every row; a cancelled render returns ctx.Err()
// with the rows drawn so far already in sink.
func (rt *Raytracer) Render(ctx context.Context, sink PixelSink) (RenderStats, error) {
	width, height := rt.Width(), rt.Height()
	start := time.Now()
	rt.logger.Printf("Drawing image (%dx%d, %d samples per pixel)...\n", width, height, rt.config.SamplesPerPixel)

	sampler := core.NewSeededSampler(rt.config.Seed)
	luminance := make([]float64, 0, width*height)

	for j := 0; j < height; j++ {
		if err := ctx.Err(); err != nil {
			rt.logger.Printf("Rendering cancelled after %d of %d rows\n", j, height)
			return RenderStats{}, err
		}
		for i := 0; i < width; i++ {
			color := rt.SamplePixel(i, j, sampler)
			luminance = append(luminance, color.Luminance())

			r, g, b := ToneMap(color)
			sink.WritePixel(i, j, r, g, b)
		}
	}

	stats := RenderStats{
		TotalPixels:  width * height,
		TotalSamples: width * height * rt.config.SamplesPerPixel,
		Tiles:        1,
	}
	stats.finalize(luminance, start)

	rt.logger.Printf("Done! (%v)\n", stats.Elapsed)
	return stats, nil
}

// RenderTile renders the pixels of one tile from the tile's own random stream.
// It returns the tone-mapped tile image and the linear luminance of each pixel.
func (rt *Raytracer) RenderTile(tile *Tile) (*image.RGBA, []float64) {
	bounds := tile.Bounds
	tileImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	luminance := make([]float64, 0, bounds.Dx()*bounds.Dy())

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			color := rt.SamplePixel(i, j, tile.Sampler)
			luminance = append(luminance, color.Luminance())
			tileImage.SetRGBA(i-bounds.Min.X, j-bounds.Min.Y, vec3ToColor(color))
		}
	}

	return tileImage, luminance
}
