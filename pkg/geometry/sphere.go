package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ErrInvalidSphere is returned when a sphere description cannot be rendered
var ErrInvalidSphere = errors.New("invalid sphere")

// SphereConfig describes a sphere before validation
type SphereConfig struct {
	Name     string
	Center   core.Vec3
	Radius   float64
	Diffuse  core.Color
	Emission core.Color
	Specular core.Color
	Texture  core.Texture // Optional, overrides Diffuse at the hit point
}

// Sphere is an immutable scene primitive with a diffuse/specular/emissive material
type Sphere struct {
	name     string
	center   core.Vec3
	radius   float64
	diffuse  core.Color
	emission core.Color
	specular core.Color
	texture  core.Texture
}

// NewSphere validates the configuration and creates a sphere
func NewSphere(config SphereConfig) (*Sphere, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Sphere{
		name:     config.Name,
		center:   config.Center,
		radius:   config.Radius,
		diffuse:  config.Diffuse,
		emission: config.Emission,
		specular: config.Specular,
		texture:  config.Texture,
	}, nil
}

// Validate checks that the sphere will not feed NaNs into the estimator
func (c SphereConfig) Validate() error {
	label := c.Name
	if label == "" {
		label = "<unnamed>"
	}

	if math.IsNaN(c.Radius) || math.IsInf(c.Radius, 0) || c.Radius <= 0 {
		return fmt.Errorf("%w %s: radius must be a positive finite number, got %v", ErrInvalidSphere, label, c.Radius)
	}
	if !c.Center.IsFinite() {
		return fmt.Errorf("%w %s: center has non-finite component %v", ErrInvalidSphere, label, c.Center)
	}

	// Material channels must be finite and non-negative
	channels := []struct {
		name  string
		value core.Color
	}{
		{"diffuse", c.Diffuse},
		{"emission", c.Emission},
		{"specular", c.Specular},
	}
	for _, ch := range channels {
		if !ch.value.IsFinite() || !ch.value.IsNonNegative() {
			return fmt.Errorf("%w %s: %s must be finite and >= 0 per channel, got %v", ErrInvalidSphere, label, ch.name, ch.value)
		}
	}

	if c.Texture != nil && (c.Texture.Width() <= 0 || c.Texture.Height() <= 0) {
		return fmt.Errorf("%w %s: texture has empty dimensions %dx%d", ErrInvalidSphere, label, c.Texture.Width(), c.Texture.Height())
	}

	return nil
}

// MustNewSphere is like NewSphere but panics on invalid input.
// Intended for literal scene tables.
func MustNewSphere(config SphereConfig) *Sphere {
	s, err := NewSphere(config)
	if err != nil {
		panic(err)
	}
	return s
}

// Accessors

func (s *Sphere) Name() string {
	return s.name
}

func (s *Sphere) Center() core.Vec3 {
	return s.center
}

func (s *Sphere) Radius() float64 {
	return s.radius
}

func (s *Sphere) Diffuse() core.Color {
	return s.diffuse
}

func (s *Sphere) Emission() core.Color {
	return s.emission
}

func (s *Sphere) Specular() core.Color {
	return s.specular
}

func (s *Sphere) Texture() core.Texture {
	return s.texture
}

func (s *Sphere) IsEmissive() bool {
	return !s.emission.IsZero()
}

func (s *Sphere) HasTexture() bool {
	return s.texture != nil
}

// Intersect returns the ray parameter of the nearer intersection for a
// normalized direction. Only the smaller root is considered; when it lies
// behind the origin the sphere is not hit (this is also what stops a
// bounce ray leaving a convex surface from hitting that same surface).
func (s *Sphere) Intersect(origin, unitDirection core.Vec3) (float64, bool) {
	// Vector from sphere center to ray origin
	ce := origin.Subtract(s.center)

	// Quadratic λ² + bλ + c = 0 for a unit direction
	b := 2 * ce.Dot(unitDirection)
	c := ce.LengthSquared() - s.radius*s.radius

	discriminant := b*b - 4*c
	if discriminant < 0 {
		return 0, false
	}

	// A tangent ray has discriminant 0 and a single repeated root
	sqrtD := math.Sqrt(discriminant)
	lambda := (-b - sqrtD) / 2
	if lambda < 0 {
		return 0, false
	}
	return lambda, true
}
