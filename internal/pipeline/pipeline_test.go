package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-sphere-pathtracer/internal/config"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

func smallConfig(workers int) *config.Config {
	cfg := config.Default()
	cfg.Width = 16
	cfg.Height = 16
	cfg.Iterations = 2
	cfg.Workers = workers
	cfg.TileSize = 8
	return &cfg
}

func TestNew_AppliesCameraOverrides(t *testing.T) {
	sc, err := scene.NewCornellScene()
	if err != nil {
		t.Fatalf("NewCornellScene failed: %v", err)
	}

	cfg := smallConfig(1)
	eye := core.NewVec3(0, 0.5, -3)
	cfg.Eye = &eye
	cfg.FOV = 45

	p, err := New(sc, cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p.Camera.Eye != eye || p.Camera.FOV != 45 || p.Camera.LookAt != sc.Camera().LookAt {
		t.Errorf("Unexpected camera: %+v", p.Camera)
	}
	if p.Raytracer.Width() != 16 || p.Raytracer.Height() != 16 {
		t.Errorf("Unexpected image size %dx%d", p.Raytracer.Width(), p.Raytracer.Height())
	}
}

func TestNew_InvalidCamera(t *testing.T) {
	sc, err := scene.NewCornellScene()
	if err != nil {
		t.Fatalf("NewCornellScene failed: %v", err)
	}

	cfg := smallConfig(1)
	lookAt := sc.Camera().Eye
	cfg.LookAt = &lookAt

	if _, err := New(sc, cfg, nil); err == nil {
		t.Error("Expected error when eye equals look-at")
	}
}

func TestRender_SequentialAndParallel(t *testing.T) {
	sc, err := scene.NewSingleLightScene()
	if err != nil {
		t.Fatalf("NewSingleLightScene failed: %v", err)
	}

	tests := []struct {
		name          string
		workers       int
		expectedTiles int
	}{
		{"sequential", 1, 1},
		{"parallel", 2, 4},
		{"all cpus", 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(sc, smallConfig(tt.workers), nil)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			sink := output.NewImageSink(16, 16)
			stats, err := p.Render(context.Background(), sink)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if stats.Tiles != tt.expectedTiles || stats.TotalPixels != 256 {
				t.Errorf("Unexpected stats: %+v", stats)
			}
			// Top row looks into the emitter
			if c := sink.Image().RGBAAt(8, 0); c.R != 255 {
				t.Errorf("Expected lit top row, got %v", c)
			}
		})
	}
}

func TestRender_CancelledSequential(t *testing.T) {
	sc, err := scene.NewSingleLightScene()
	if err != nil {
		t.Fatalf("NewSingleLightScene failed: %v", err)
	}
	p, err := New(sc, smallConfig(1), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Render(ctx, output.NewImageSink(16, 16)); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRenderTiles_ReportsTiles(t *testing.T) {
	sc, err := scene.NewSingleLightScene()
	if err != nil {
		t.Fatalf("NewSingleLightScene failed: %v", err)
	}
	// Tiles are reported even when the configuration asks for one worker
	p, err := New(sc, smallConfig(1), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var tiles []renderer.TileCompletionResult
	_, err = p.RenderTiles(context.Background(), output.NewImageSink(16, 16), func(r renderer.TileCompletionResult) {
		tiles = append(tiles, r)
	})
	if err != nil {
		t.Fatalf("RenderTiles failed: %v", err)
	}
	if len(tiles) != 4 {
		t.Errorf("Expected 4 tile callbacks, got %d", len(tiles))
	}
}

func TestResolveScene(t *testing.T) {
	dir := t.TempDir()
	content := "name: Lamp\nspheres:\n  - center: [0, 3, 0]\n    radius: 1\n    emission: [4, 4, 4]\n"
	if err := os.WriteFile(filepath.Join(dir, "lamp.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{"preset", "cornell", "cornell", false},
		{"path", filepath.Join(dir, "lamp.yaml"), "Lamp", false},
		{"name in scenes dir", "lamp", "Lamp", false},
		{"unknown", "nonexistent", "", true},
		{"nested name is not searched", "sub/lamp", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := ResolveScene(tt.input, dir, nil)
			if (err != nil) != tt.expectError {
				t.Fatalf("Expected error=%v, got %v", tt.expectError, err)
			}
			if tt.expectError {
				if !errors.Is(err, scene.ErrUnknownScene) {
					t.Errorf("Expected ErrUnknownScene, got %v", err)
				}
				return
			}
			if sc.Name() != tt.expected {
				t.Errorf("Expected scene %q, got %q", tt.expected, sc.Name())
			}
		})
	}
}
