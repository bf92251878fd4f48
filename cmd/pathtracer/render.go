package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/df07/go-sphere-pathtracer/internal/config"
	"github.com/df07/go-sphere-pathtracer/internal/logging"
	"github.com/df07/go-sphere-pathtracer/internal/pipeline"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
)

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to an image file",
		Long: `Render a preset or a YAML scene file and save the image. The format
follows the output extension (.png or .bmp). With --publish the image is
also uploaded to S3.`,
		Example: `  pathtracer render --scene cornell -n 100 -o output/cornell.png
  pathtracer render --scene scenes/mirror-spheres.yaml --workers 0
  pathtracer render --eye 0,0.5,-4 --fov 45`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.Context())
		},
	}

	config.AddRenderFlags(cmd.Flags())
	config.AddOutputFlags(cmd.Flags())
	return cmd
}

func (a *app) render(ctx context.Context) error {
	cfg := a.config
	logger := logging.NewPrintfLogger(a.logger)

	textures := loaders.NewTextureCache(cfg.TextureMaxSize, logger)
	sc, err := pipeline.ResolveScene(cfg.Scene, cfg.ScenesDir, textures)
	if err != nil {
		return err
	}

	p, err := pipeline.New(sc, cfg, logger)
	if err != nil {
		return err
	}

	a.logger.Info().
		Str("scene", sc.Name()).
		Int("spheres", sc.GetPrimitiveCount()).
		Int("emitters", sc.EmitterCount()).
		Int("textures", textures.Len()).
		Msg("Scene loaded")

	sink := output.NewImageSink(cfg.Width, cfg.Height)
	stats, err := p.Render(ctx, sink)
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}

	if err := output.SaveImage(cfg.Output, sink.Image()); err != nil {
		return err
	}
	a.logger.Info().
		Str("output", cfg.Output).
		Dur("elapsed", stats.Elapsed).
		Int("samples", stats.TotalSamples).
		Float64("mean_luminance", stats.MeanLuminance).
		Float64("luminance_stddev", stats.LuminanceStdDev).
		Msg("Render saved")

	if !cfg.S3.Enabled {
		return nil
	}

	publisher, err := output.NewS3Publisher(cfg.S3.Publisher(), logger)
	if err != nil {
		return err
	}
	key, err := publisher.PublishImage(ctx, filepath.Base(cfg.Output), sink.Image())
	if err != nil {
		return err
	}
	a.logger.Info().Str("bucket", cfg.S3.Bucket).Str("key", key).Msg("Render published")
	return nil
}
