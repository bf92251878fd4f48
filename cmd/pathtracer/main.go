package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/df07/go-sphere-pathtracer/internal/config"
	"github.com/df07/go-sphere-pathtracer/internal/logging"
)

const (
	appName = "pathtracer"
	version = "v1.0.0"
)

// app carries the state shared by every command of one invocation
type app struct {
	v       *viper.Viper
	cfgFile string
	config  *config.Config
	logger  zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New(), logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Monte Carlo path tracer for scenes made of spheres",
		Long: `pathtracer renders scenes built only from spheres with an unbiased
Monte Carlo estimator: diffuse and glossy surfaces, emissive spheres as the
only light sources and optional equirectangular textures.

Settings come from defaults, a pathtracer.yaml config file, PATHTRACER_*
environment variables (also read from .env) and flags, in increasing order
of priority.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default ./pathtracer.yaml or $HOME/.pathtracer/pathtracer.yaml)")
	config.AddLogFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newRenderCmd(a),
		newScenesCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// initConfig loads the configuration and the logger before any command runs
func (a *app) initConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	a.config = cfg

	a.logger, err = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	return err
}
