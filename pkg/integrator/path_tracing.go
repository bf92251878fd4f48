package integrator

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

const (
	// LightSampleProbability is the chance a path stops after collecting emission
	LightSampleProbability = 0.2
	// SpecularBoost scales the specular color inside the mirror lobe
	SpecularBoost = 10.0
	// SpecularCosThreshold is the cosine to the mirror direction above which the lobe applies
	SpecularCosThreshold = 0.99
)

// Config controls path termination
type Config struct {
	// MaxDepth caps the number of bounces. 0 leaves termination to Russian roulette alone.
	MaxDepth int
}

// PathTracer implements unidirectional path tracing over sphere scenes with
// Russian roulette termination and uniform hemisphere sampling
type PathTracer struct {
	config Config
}

// NewPathTracer creates a new path tracing integrator
func NewPathTracer(config Config) *PathTracer {
	return &PathTracer{
		config: config,
	}
}

// RayColor computes the color for a single ray.
//
// Each hit adds its emission, then the path ends with probability
// LightSampleProbability. Surviving paths continue in a random direction of
// the outward hemisphere, weighted by 2π·cosθ/(1-p) and the surface
// reflectance. The throughput carries these weights along the path, which
// gives the same estimate as recursing on the next hit. A path whose
// throughput reaches zero ends at once since every later term is zero.
func (pt *PathTracer) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Color {
	spheres := scene.Spheres()
	radiance := core.Color{}
	throughput := core.NewColor(1, 1, 1)

	for depth := 1; ; depth++ {
		hit, isHit := geometry.FindClosestHit(spheres, ray)
		if !isHit {
			return radiance
		}

		radiance = radiance.Add(throughput.MultiplyVec(hit.Emission))

		// Russian roulette: 20 of 100 equally likely events end the path
		if core.UniformEvent(sampler, 100) < int(LightSampleProbability*100) {
			return radiance
		}

		if pt.config.MaxDepth > 0 && depth >= pt.config.MaxDepth {
			return radiance
		}

		direction := SampleHemisphereDirection(hit.Point, hit.SphereCenter, sampler)
		cosine := direction.Normalize().Dot(hit.Normal())
		weight := 2 * math.Pi * cosine / (1 - LightSampleProbability)

		throughput = throughput.MultiplyVec(Reflectance(hit, direction)).Multiply(weight)
		if throughput.IsZero() {
			return radiance
		}

		ray = core.NewRay(hit.Point, direction)
	}
}

// SampleHemisphereDirection draws a point in the unit ball and flips it into
// the hemisphere facing away from the sphere center. The result is not
// normalized and may be the zero vector.
func SampleHemisphereDirection(point, center core.Vec3, sampler core.Sampler) core.Vec3 {
	direction := core.SampleUniformInUnitBall(sampler)
	if direction.Dot(point.Subtract(center)) < 0 {
		return direction.Negate()
	}
	return direction
}

// Reflect mirrors the incident direction about the normal
func Reflect(incident, normal core.Vec3) core.Vec3 {
	return incident.Subtract(normal.Multiply(2 * incident.Dot(normal)))
}

// Reflectance evaluates the surface response for light leaving along direction.
// Directions within the narrow mirror lobe pick up the boosted specular color.
func Reflectance(hit *geometry.HitRecord, direction core.Vec3) core.Color {
	diffuse := hit.Diffuse.Multiply(1 / math.Pi)

	mirror := Reflect(hit.IncidentDirection, hit.Normal()).Normalize()
	if mirror.Dot(direction.Normalize()) > SpecularCosThreshold {
		return diffuse.Add(hit.Specular.Multiply(SpecularBoost / math.Pi))
	}
	return diffuse
}
