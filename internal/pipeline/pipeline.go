package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/df07/go-sphere-pathtracer/internal/config"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Pipeline is a scene wired to a camera, integrator and raytracer
type Pipeline struct {
	Scene     *scene.Scene
	Camera    scene.CameraSettings
	Raytracer *renderer.Raytracer

	config *config.Config
	logger core.Logger
}

// New builds the render pipeline for a scene. Camera overrides in cfg are
// applied on top of the scene's camera.
func New(sc *scene.Scene, cfg *config.Config, logger core.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	settings, err := cfg.Camera(sc.Camera())
	if err != nil {
		return nil, fmt.Errorf("invalid camera for scene %s: %w", sc.Name(), err)
	}

	camera := renderer.NewCamera(renderer.NewCameraConfig(settings, cfg.Width, cfg.Height, cfg.AntiAlias))
	rt := renderer.NewRaytracer(sc, camera, integrator.NewPathTracer(cfg.IntegratorConfig()), cfg.SamplingConfig())
	rt.SetLogger(logger)

	return &Pipeline{
		Scene:     sc,
		Camera:    settings,
		Raytracer: rt,
		config:    cfg,
		logger:    logger,
	}, nil
}

// Render draws the image into sink, sequentially when one worker is
// configured and tile-parallel otherwise
func (p *Pipeline) Render(ctx context.Context, sink renderer.PixelSink) (renderer.RenderStats, error) {
	if p.config.Sequential() {
		return p.Raytracer.Render(ctx, sink)
	}
	return p.RenderTiles(ctx, sink, nil)
}

// RenderTiles always renders tile-parallel and reports every finished tile
func (p *Pipeline) RenderTiles(ctx context.Context, sink renderer.PixelSink, onTile func(renderer.TileCompletionResult)) (renderer.RenderStats, error) {
	pr := renderer.NewParallelRenderer(p.Raytracer, p.config.ParallelConfig(), p.logger)
	return pr.Render(ctx, sink, onTile)
}

// ResolveScene finds a scene by preset name, file path, or the name of a
// file in scenesDir without its extension
func ResolveScene(name, scenesDir string, textures scene.TextureProvider) (*scene.Scene, error) {
	sc, err := scene.Resolve(name, textures)
	if err == nil || !errors.Is(err, scene.ErrUnknownScene) {
		return sc, err
	}

	if scenesDir != "" && filepath.Base(name) == name {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(scenesDir, name+ext)
			if _, statErr := os.Stat(path); statErr == nil {
				return scene.LoadFile(path, textures)
			}
		}
	}
	return nil, err
}
