package renderer

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of samples taken
	AverageSamples  float64       // Average samples per pixel
	Tiles           int           // Number of tiles rendered (1 for a sequential render)
	Elapsed         time.Duration // Wall time of the render
	MeanLuminance   float64       // Mean linear luminance over all pixels
	LuminanceStdDev float64       // Spread of pixel luminance, 0 for a flat image
}

// PixelStats accumulates samples for a single pixel
type PixelStats struct {
	ColorAccum  core.Color // RGB sum of all samples
	SampleCount int        // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Color) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the average color, dividing the sum once
func (ps *PixelStats) GetColor() core.Color {
	if ps.SampleCount == 0 {
		return core.Color{}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// finalize fills the derived fields from the accumulated counts and per-pixel luminance
func (s *RenderStats) finalize(luminance []float64, start time.Time) {
	s.Elapsed = time.Since(start)
	if s.TotalPixels > 0 {
		s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
	}
	if len(luminance) > 0 {
		s.MeanLuminance = stat.Mean(luminance, nil)
	}
	if len(luminance) > 1 {
		s.LuminanceStdDev = stat.StdDev(luminance, nil)
	}
}
