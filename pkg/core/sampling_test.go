package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

// sequenceSampler returns a fixed sequence of values, cycling when exhausted
type sequenceSampler struct {
	values []float64
	index  int
}

func (s *sequenceSampler) Get1D() float64 {
	v := s.values[s.index%len(s.values)]
	s.index++
	return v
}

func TestSampleUniformInUnitBall_NeverOutside(t *testing.T) {
	sampler := NewSeededSampler(42)

	for i := 0; i < 10000; i++ {
		p := SampleUniformInUnitBall(sampler)
		if p.Length() > 1.0 {
			t.Fatalf("Sample %d outside unit ball: %v (length %f)", i, p, p.Length())
		}
	}
}

func TestSampleUniformInUnitBall_RejectsCorners(t *testing.T) {
	// First triple maps to (1,1,1)-ish corner and must be rejected,
	// second triple maps to the origin and must be accepted
	sampler := &sequenceSampler{values: []float64{0.99, 0.99, 0.99, 0.5, 0.5, 0.5}}

	p := SampleUniformInUnitBall(sampler)
	if !p.IsZero() {
		t.Errorf("Expected zero vector to be accepted, got %v", p)
	}
	if sampler.index != 6 {
		t.Errorf("Expected 6 draws (one rejection), got %d", sampler.index)
	}
}

func TestSampleUniformInUnitBall_Uniformity(t *testing.T) {
	sampler := NewSeededSampler(7)
	const n = 50000

	// For a uniform ball, P(|p| <= 0.5) = 0.5^3 = 0.125
	inner := 0
	xs := make([]float64, n)
	for i := 0; i < n; i++ {
		p := SampleUniformInUnitBall(sampler)
		if p.Length() <= 0.5 {
			inner++
		}
		xs[i] = p.X
	}

	fraction := float64(inner) / n
	if math.Abs(fraction-0.125) > 0.01 {
		t.Errorf("Inner-ball fraction %f, expected ~0.125", fraction)
	}
	if mean := stat.Mean(xs, nil); math.Abs(mean) > 0.01 {
		t.Errorf("X mean %f, expected ~0", mean)
	}
}

func TestGaussian_Moments(t *testing.T) {
	tests := []struct {
		name  string
		sigma float64
	}{
		{"anti-aliasing jitter", 0.5},
		{"unit", 1.0},
		{"wide", 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler := NewSeededSampler(1234)
			const n = 100000

			draws := make([]float64, n)
			for i := range draws {
				draws[i] = Gaussian(sampler, tt.sigma)
			}

			mean := stat.Mean(draws, nil)
			stdDev := stat.StdDev(draws, nil)

			if math.Abs(mean) > 0.02*tt.sigma {
				t.Errorf("Mean %f, expected ~0", mean)
			}
			if math.Abs(stdDev-tt.sigma) > 0.02*tt.sigma {
				t.Errorf("StdDev %f, expected ~%f", stdDev, tt.sigma)
			}
		})
	}
}

func TestGaussian_FiniteAtZeroUniform(t *testing.T) {
	// Get1D returning 0 maps to x1 = 1, which must not produce -Inf
	sampler := &sequenceSampler{values: []float64{0}}
	if g := Gaussian(sampler, 0.5); math.IsNaN(g) || math.IsInf(g, 0) {
		t.Errorf("Expected finite value, got %f", g)
	}
}

func TestUniformEvent(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected int
	}{
		{"lowest", 0.0, 0},
		{"just below light threshold", 0.1999, 19},
		{"light threshold", 0.2, 20},
		{"highest", 0.999999, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler := &sequenceSampler{values: []float64{tt.value}}
			if got := UniformEvent(sampler, 100); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestUniformEvent_Distribution(t *testing.T) {
	sampler := NewSeededSampler(99)
	const n = 100000

	below := 0
	for i := 0; i < n; i++ {
		e := UniformEvent(sampler, 100)
		if e < 0 || e >= 100 {
			t.Fatalf("Event out of range: %d", e)
		}
		if e < 20 {
			below++
		}
	}

	if fraction := float64(below) / n; math.Abs(fraction-0.2) > 0.01 {
		t.Errorf("P(event < 20) = %f, expected ~0.2", fraction)
	}
}

func TestRandomSampler_Deterministic(t *testing.T) {
	a := NewSeededSampler(5)
	b := NewSeededSampler(5)
	for i := 0; i < 100; i++ {
		if a.Get1D() != b.Get1D() {
			t.Fatal("Samplers with the same seed diverged")
		}
	}
	if v := Uniform01(a); v < 0 || v >= 1 {
		t.Errorf("Uniform01 out of range: %f", v)
	}
}
