package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// scriptedSampler replays a fixed list of values, cycling when it runs out
type scriptedSampler struct {
	values []float64
	calls  int
}

func (s *scriptedSampler) Get1D() float64 {
	v := s.values[s.calls%len(s.values)]
	s.calls++
	return v
}

func mustScene(t *testing.T, configs ...geometry.SphereConfig) *scene.Scene {
	t.Helper()
	s, err := scene.Build("test", scene.DefaultCameraSettings(), configs)
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	return s
}

// bounceScene has a grey ball under a large overhead emitter whose lower surface is at y=10
func bounceScene(t *testing.T) *scene.Scene {
	return mustScene(t,
		geometry.SphereConfig{
			Name:    "ball",
			Center:  core.NewVec3(0, 0, 0),
			Radius:  1,
			Diffuse: core.NewColor(0.5, 0.5, 0.5),
		},
		geometry.SphereConfig{
			Name:     "light",
			Center:   core.NewVec3(0, 1010, 0),
			Radius:   1000,
			Emission: core.NewColor(2, 2, 2),
		},
	)
}

func TestRayColor_MissIsBlack(t *testing.T) {
	sc := mustScene(t, geometry.SphereConfig{Center: core.NewVec3(0, 0, 10), Radius: 1, Emission: core.NewColor(5, 5, 5)})
	pt := NewPathTracer(Config{})

	directions := []core.Vec3{
		core.NewVec3(0, 0, -1),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0.01),
	}
	for seed := int64(0); seed < 20; seed++ {
		sampler := core.NewSeededSampler(seed)
		for _, d := range directions {
			color := pt.RayColor(core.NewRay(core.NewVec3(0, 0, 0), d), sc, sampler)
			if color != (core.Color{}) {
				t.Errorf("Expected exactly black for %v, got %v", d, color)
			}
		}
	}
}

func TestRayColor_EmissionOnly(t *testing.T) {
	sc, err := scene.NewSingleLightScene()
	if err != nil {
		t.Fatalf("NewSingleLightScene failed: %v", err)
	}
	pt := NewPathTracer(Config{})
	sampler := core.NewSeededSampler(7)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0.2, 1, -0.3))

	// A black emitter reflects nothing, so every estimate is exactly its emission
	sum := core.Color{}
	const samples = 1000
	for i := 0; i < samples; i++ {
		color := pt.RayColor(ray, sc, sampler)
		if color != core.NewColor(2, 2, 2) {
			t.Fatalf("Expected (2,2,2), got %v", color)
		}
		sum = sum.Add(color)
	}

	average := sum.Multiply(1.0 / samples)
	if average.Subtract(core.NewColor(2, 2, 2)).Length() > 1e-12 {
		t.Errorf("Expected average (2,2,2), got %v", average)
	}
}

func TestRayColor_SingleBounceWeight(t *testing.T) {
	sc := bounceScene(t)
	pt := NewPathTracer(Config{})

	sampler := &scriptedSampler{values: []float64{
		0.5,            // survive roulette at the ball
		0.5, 0.95, 0.5, // ball sample (0, 0.9, 0): straight up
		0.1, // stop at the light
	}}

	ray := core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0))
	color := pt.RayColor(ray, sc, sampler)

	// (D/π) · 2π·cos/(1-0.2) · E = 0.5 · 2 / 0.8 · 2 = 2.5
	expected := core.NewColor(2.5, 2.5, 2.5)
	if color.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected %v, got %v", expected, color)
	}
	if sampler.calls != 5 {
		t.Errorf("Expected 5 sampler draws, got %d", sampler.calls)
	}
}

func TestRayColor_RouletteExitKeepsEmission(t *testing.T) {
	sc := bounceScene(t)
	pt := NewPathTracer(Config{})

	// 0.19 maps to event 19, the last one that ends the path
	sampler := &scriptedSampler{values: []float64{0.19}}
	color := pt.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), sc, sampler)

	if color != core.NewColor(2, 2, 2) {
		t.Errorf("Expected emission only, got %v", color)
	}
	if sampler.calls != 1 {
		t.Errorf("Expected a single roulette draw, got %d", sampler.calls)
	}
}

func TestRayColor_MaxDepth(t *testing.T) {
	sc := bounceScene(t)
	pt := NewPathTracer(Config{MaxDepth: 1})

	// Would bounce into the light without the depth cap
	sampler := &scriptedSampler{values: []float64{0.5, 0.5, 0.95, 0.5, 0.1}}
	color := pt.RayColor(core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0)), sc, sampler)

	if color != (core.Color{}) {
		t.Errorf("Expected black at depth 1, got %v", color)
	}
}

func TestRayColor_Finite(t *testing.T) {
	sc, err := scene.NewCornellScene()
	if err != nil {
		t.Fatalf("NewCornellScene failed: %v", err)
	}
	pt := NewPathTracer(Config{})
	sampler := core.NewSeededSampler(42)
	ray := core.NewRay(core.NewVec3(0, 0, -4), core.NewVec3(0, 0, 1))

	for i := 0; i < 2000; i++ {
		color := pt.RayColor(ray, sc, sampler)
		if !color.IsFinite() || !color.IsNonNegative() {
			t.Fatalf("Expected finite non-negative radiance, got %v", color)
		}
	}
}

func TestRayColor_BlackSurfaceEndsPath(t *testing.T) {
	// Two black spheres facing each other along z. The scripted draws never
	// end the path by roulette and always bounce straight between them, so
	// only the zero throughput can stop it.
	sc := mustScene(t,
		geometry.SphereConfig{Name: "front", Center: core.NewVec3(0, 0, 0), Radius: 1},
		geometry.SphereConfig{Name: "back", Center: core.NewVec3(0, 0, -1010), Radius: 1000},
	)
	// Event 50 survives; ball sample (0, 0, -0.5) points back along -z
	sampler := &scriptedSampler{values: []float64{0.5, 0.5, 0.5, 0.25}}

	ray := core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1))
	color := NewPathTracer(Config{}).RayColor(ray, sc, sampler)

	if !color.IsZero() {
		t.Errorf("Expected black, got %v", color)
	}
	// One event draw and one accepted ball sample at the first hit
	if sampler.calls != 4 {
		t.Errorf("Expected the path to end after 4 draws, got %d", sampler.calls)
	}
}

func TestSampleHemisphereDirection(t *testing.T) {
	sampler := core.NewSeededSampler(3)
	center := core.NewVec3(1, 2, 3)
	point := center.Add(core.NewVec3(0, 0, -2))
	outward := point.Subtract(center)

	for i := 0; i < 10000; i++ {
		d := SampleHemisphereDirection(point, center, sampler)
		if d.Dot(outward) < 0 {
			t.Fatalf("Sample %v points into the sphere", d)
		}
		if d.Length() > 1 {
			t.Fatalf("Sample %v is outside the unit ball", d)
		}
	}
}

func TestSampleHemisphereDirection_Flips(t *testing.T) {
	// (0, -0.9, 0) lies below a surface point whose normal is +Y
	sampler := &scriptedSampler{values: []float64{0.5, 0.05, 0.5}}
	d := SampleHemisphereDirection(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 0), sampler)

	if math.Abs(d.X) > 1e-12 || math.Abs(d.Y-0.9) > 1e-12 || math.Abs(d.Z) > 1e-12 {
		t.Errorf("Expected (0, 0.9, 0), got %v", d)
	}
}

func TestReflect(t *testing.T) {
	tests := []struct {
		name     string
		incident core.Vec3
		normal   core.Vec3
		expected core.Vec3
	}{
		{"head on", core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0)},
		{"45 degrees", core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0), core.NewVec3(1, 1, 0)},
		{"grazing", core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reflect(tt.incident, tt.normal)
			if result.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestReflectance(t *testing.T) {
	diffuse := core.NewColor(0.5, 0.25, 0)
	specular := core.NewColor(0.3, 0.3, 0.3)

	// Ray travelling +Z hits the front of a unit sphere at the origin
	hit := &geometry.HitRecord{
		Point:             core.NewVec3(0, 0, -1),
		IncidentDirection: core.NewVec3(0, 0, 1),
		SphereCenter:      core.NewVec3(0, 0, 0),
		Diffuse:           diffuse,
		Specular:          specular,
	}

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Color
	}{
		{"mirror direction", core.NewVec3(0, 0, -0.5), diffuse.Add(specular.Multiply(10)).Multiply(1 / math.Pi)},
		{"just inside lobe", core.NewVec3(0.1, 0, -1), diffuse.Add(specular.Multiply(10)).Multiply(1 / math.Pi)},
		{"outside lobe", core.NewVec3(0.2, 0, -1), diffuse.Multiply(1 / math.Pi)},
		{"perpendicular", core.NewVec3(1, 0, 0), diffuse.Multiply(1 / math.Pi)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reflectance(hit, tt.direction)
			if result.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestPathTracer_ImplementsIntegrator(t *testing.T) {
	var _ Integrator = NewPathTracer(Config{})
}
