package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/df07/go-sphere-pathtracer/internal/config"
	"github.com/df07/go-sphere-pathtracer/internal/logging"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/web/server"
)

func main() {
	// Parse command line flags
	configFile := pflag.String("config", "", "Config file")
	config.AddServerFlags(pflag.CommandLine)
	config.AddRenderFlags(pflag.CommandLine)
	config.AddLogFlags(pflag.CommandLine)
	pflag.Parse()

	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := config.LoadDotEnv(".env"); err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to load .env")
	}
	v := config.New()
	if err := config.BindFlags(v, pflag.CommandLine); err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to bind flags")
	}
	cfg, err := config.Load(v, *configFile)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to create logger")
	}

	// Create and start web server
	webServer := server.NewServer(*cfg, logger)
	if cfg.S3.Enabled {
		publisher, err := output.NewS3Publisher(cfg.S3.Publisher(), logging.NewPrintfLogger(logger))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create S3 publisher")
		}
		webServer.SetPublisher(publisher)
	}

	logger.Info().Msgf("Visit http://localhost:%d to start rendering", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := webServer.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Error starting server")
		stop()
		os.Exit(1)
	}
}
