package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

func TestToneMap(t *testing.T) {
	tests := []struct {
		name     string
		input    core.Color
		expected [3]uint8
	}{
		{"black", core.NewColor(0, 0, 0), [3]uint8{0, 0, 0}},
		{"white", core.NewColor(1, 1, 1), [3]uint8{255, 255, 255}},
		{"over exposed clamps", core.NewColor(2, 100, 1.0001), [3]uint8{255, 255, 255}},
		{"negative clamps", core.NewColor(-1, 0, 0), [3]uint8{0, 0, 0}},
		{"NaN is black", core.NewColor(math.NaN(), 0, 0), [3]uint8{0, 0, 0}},
		{"mid grey", core.NewColor(0.5, 0.5, 0.5), [3]uint8{186, 186, 186}},
		{"channels are independent", core.NewColor(1, 0, 0.5), [3]uint8{255, 0, 186}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := ToneMap(tt.input)
			if [3]uint8{r, g, b} != tt.expected {
				t.Errorf("Expected %v, got (%d,%d,%d)", tt.expected, r, g, b)
			}
		})
	}
}

func TestToneMap_Monotonic(t *testing.T) {
	previous := uint8(0)
	for i := 0; i <= 10000; i++ {
		v := float64(i) / 10000
		r, _, _ := ToneMap(core.NewColor(v, 0, 0))
		if r < previous {
			t.Fatalf("Tone map decreased at %f: %d < %d", v, r, previous)
		}
		previous = r
	}
	if previous != 255 {
		t.Errorf("Expected 255 at 1.0, got %d", previous)
	}
}

func TestToneMap_GammaCurve(t *testing.T) {
	for _, v := range []float64{0.01, 0.1, 0.25, 0.75, 0.99} {
		expected := uint8(math.Pow(v, 1/2.2) * 255)
		if r, _, _ := ToneMap(core.NewColor(v, 0, 0)); r != expected {
			t.Errorf("ToneMap(%f) = %d, want %d", v, r, expected)
		}
	}
}

func TestVec3ToColor(t *testing.T) {
	c := vec3ToColor(core.NewColor(1, 0, 0))
	if c.R != 255 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Errorf("Expected opaque red, got %v", c)
	}
}
