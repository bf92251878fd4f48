package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	// Get1D returns a uniform value in [0, 1). Every other random quantity
	// in the renderer is derived from it.
	Get1D() float64
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded with seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Uniform01 returns a uniform value in [0, 1)
func Uniform01(sampler Sampler) float64 {
	return sampler.Get1D()
}

// UniformEvent returns a uniformly distributed integer in [0, n)
func UniformEvent(sampler Sampler, n int) int {
	event := int(sampler.Get1D() * float64(n))
	// Guard against Get1D implementations that round up to 1.0
	if event >= n {
		event = n - 1
	}
	return event
}

// Gaussian returns a normally distributed value with mean 0 and standard
// deviation sigma using the Box-Muller transform.
func Gaussian(sampler Sampler, sigma float64) float64 {
	// Both inputs must lie in (0, 1] so the logarithm stays finite
	x1 := 1.0 - sampler.Get1D()
	x2 := 1.0 - sampler.Get1D()
	return math.Sqrt(-2.0*math.Log(x1)) * math.Sin(2.0*math.Pi*x2) * sigma
}

// SampleUniformInUnitBall returns a point distributed uniformly inside the
// unit ball using rejection sampling. Roughly 52% of the candidates are
// accepted, so the expected number of trials is about 1.91 per component
// triple and the loop ends with probability 1.
func SampleUniformInUnitBall(sampler Sampler) Vec3 {
	for {
		// Generate random point in [-1,1]^3 cube
		p := NewVec3(
			2*sampler.Get1D()-1,
			2*sampler.Get1D()-1,
			2*sampler.Get1D()-1,
		)
		// Accept if inside unit ball
		if p.Length() <= 1.0 {
			return p
		}
	}
}
