package geometry

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// TextureGamma is the exponent that decodes display-encoded texture bytes to linear light
const TextureGamma = 2.2

// HitRecord contains information about a ray-sphere intersection
type HitRecord struct {
	T                 float64    // Distance along the normalized ray direction
	Point             core.Vec3  // Hit point in world space
	IncidentDirection core.Vec3  // Normalized direction of the incoming ray
	Diffuse           core.Color // Diffuse reflectance, texture-sampled when the sphere is textured
	Emission          core.Color
	Specular          core.Color
	SphereCenter      core.Vec3
	Sphere            *Sphere // The sphere that was hit
}

// Normal returns the unit outward surface normal at the hit point
func (h *HitRecord) Normal() core.Vec3 {
	return h.Point.Subtract(h.SphereCenter).Normalize()
}

// FindClosestHit intersects the ray with every sphere and returns the hit
// with the smallest non-negative distance. The direction is normalized here,
// so callers may pass any non-zero direction.
func FindClosestHit(spheres []*Sphere, ray core.Ray) (*HitRecord, bool) {
	direction := ray.Direction.Normalize()

	var closest *Sphere
	closestSoFar := math.MaxFloat64

	// Brute force: every sphere is tested against every ray
	for _, sphere := range spheres {
		lambda, isHit := sphere.Intersect(ray.Origin, direction)
		if isHit && lambda < closestSoFar {
			closestSoFar = lambda
			closest = sphere
		}
	}

	if closest == nil {
		return nil, false
	}

	point := ray.Origin.Add(direction.Multiply(closestSoFar))
	hit := &HitRecord{
		T:                 closestSoFar,
		Point:             point,
		IncidentDirection: direction,
		Diffuse:           closest.diffuse,
		Emission:          closest.emission,
		Specular:          closest.specular,
		SphereCenter:      closest.center,
		Sphere:            closest,
	}

	// Textured spheres take their diffuse color from the image
	if closest.texture != nil {
		normal := point.Subtract(closest.center).Normalize()
		u, v := SphereUV(normal)
		hit.Diffuse = SampleTexture(closest.texture, u, v)
	}

	return hit, true
}

// SphereUV maps a unit surface normal to equirectangular texture coordinates.
// U is the longitude in [0,1] measured from -X, V is the latitude in [0,1]
// with V=0 at the north pole (+Y).
func SphereUV(normal core.Vec3) (u, v float64) {
	u = (math.Atan2(normal.Z, normal.X) + math.Pi) / (2 * math.Pi)
	// Clamp guards acos against rounding just outside [-1, 1]
	v = math.Acos(max(-1, min(1, normal.Y))) / math.Pi
	return u, v
}

// SampleTexture returns the linear-light color of the nearest texel at (u, v)
func SampleTexture(texture core.Texture, u, v float64) core.Color {
	x := int(u * float64(texture.Width()-1))
	y := int(v * float64(texture.Height()-1))

	// Clamp to image bounds
	x = max(0, min(texture.Width()-1, x))
	y = max(0, min(texture.Height()-1, y))

	r, g, b := texture.GetPixel(x, y)
	encoded := core.NewColor(float64(r)/255.0, float64(g)/255.0, float64(b)/255.0)
	return encoded.Pow(TextureGamma)
}
