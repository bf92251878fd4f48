package integrator

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along the ray.
	// Each call draws from the sampler, so repeated calls give independent estimates.
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Color
}
