package config

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Log output formats
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config holds every setting of a render run
type Config struct {
	Width      int  `mapstructure:"width" yaml:"width"`
	Height     int  `mapstructure:"height" yaml:"height"`
	Iterations int  `mapstructure:"iterations" yaml:"iterations"` // Eye rays per pixel
	AntiAlias  bool `mapstructure:"anti_alias" yaml:"anti_alias"`

	// Camera overrides. Unset fields keep the scene's own camera.
	Eye    *core.Vec3 `mapstructure:"eye" yaml:"eye,omitempty"`
	LookAt *core.Vec3 `mapstructure:"look_at" yaml:"look_at,omitempty"`
	Up     *core.Vec3 `mapstructure:"up" yaml:"up,omitempty"`
	FOV    float64    `mapstructure:"fov" yaml:"fov,omitempty"`

	Scene          string `mapstructure:"scene" yaml:"scene"` // Preset name or scene file path
	ScenesDir      string `mapstructure:"scenes_dir" yaml:"scenes_dir"`
	Seed           int64  `mapstructure:"seed" yaml:"seed"`
	Workers        int    `mapstructure:"workers" yaml:"workers"` // 1 renders sequentially, 0 uses every CPU
	TileSize       int    `mapstructure:"tile_size" yaml:"tile_size"`
	MaxDepth       int    `mapstructure:"max_depth" yaml:"max_depth"`
	Output         string `mapstructure:"output" yaml:"output"`
	TextureMaxSize int    `mapstructure:"texture_max_size" yaml:"texture_max_size"`

	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	S3     S3Config     `mapstructure:"s3" yaml:"s3"`
}

// LogConfig selects the log level and encoding
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig configures the web server
type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

// S3Config configures publishing renders to a bucket
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	AccessKey string `mapstructure:"access_key" yaml:"-"`
	SecretKey string `mapstructure:"secret_key" yaml:"-"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	ACL       string `mapstructure:"acl" yaml:"acl,omitempty"`
}

// Default returns the standard render: a 512x512 image of
// the box scene with 1000 samples per pixel
func Default() Config {
	return Config{
		Width:          512,
		Height:         512,
		Iterations:     1000,
		AntiAlias:      true,
		Scene:          "cornell",
		ScenesDir:      "scenes",
		Seed:           42,
		Workers:        1,
		TileSize:       64,
		MaxDepth:       0,
		Output:         "output/render.png",
		TextureMaxSize: 1024,
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatConsole,
		},
		Server: ServerConfig{Port: 8080},
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}

// Validate checks settings that do not depend on the scene
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if c.FOV != 0 {
		if err := validateFOV(c.FOV); err != nil {
			return err
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("tile size must be positive, got %d", c.TileSize)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative, got %d", c.MaxDepth)
	}
	if c.TextureMaxSize < 0 {
		return fmt.Errorf("texture max size must not be negative, got %d", c.TextureMaxSize)
	}
	if c.Scene == "" {
		return errors.New("scene must be set")
	}
	if _, err := output.FormatFromPath(c.Output); err != nil {
		return fmt.Errorf("invalid output: %w", err)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.Log.Format != LogFormatConsole && c.Log.Format != LogFormatJSON {
		return fmt.Errorf("log format must be %q or %q, got %q", LogFormatConsole, LogFormatJSON, c.Log.Format)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.S3.Enabled && c.S3.Bucket == "" {
		return errors.New("s3 publishing is enabled but no bucket is set")
	}
	return nil
}

// Camera applies the camera overrides to a scene's camera and validates the result
func (c *Config) Camera(base scene.CameraSettings) (scene.CameraSettings, error) {
	settings := base
	if c.Eye != nil {
		settings.Eye = *c.Eye
	}
	if c.LookAt != nil {
		settings.LookAt = *c.LookAt
	}
	if c.Up != nil {
		settings.Up = *c.Up
	}
	if c.FOV != 0 {
		settings.FOV = c.FOV
	}

	if err := ValidateCamera(settings); err != nil {
		return scene.CameraSettings{}, err
	}
	return settings, nil
}

// ValidateCamera rejects cameras that cannot form an image basis
func ValidateCamera(settings scene.CameraSettings) error {
	if err := validateFOV(settings.FOV); err != nil {
		return err
	}
	forward := settings.LookAt.Subtract(settings.Eye)
	if forward.Length() == 0 {
		return errors.New("camera eye and look-at must differ")
	}
	if settings.Up.Length() == 0 || forward.Normalize().Cross(settings.Up.Normalize()).Length() < 1e-9 {
		return errors.New("camera up must not be parallel to the view direction")
	}
	return nil
}

func validateFOV(fov float64) error {
	if math.IsNaN(fov) || fov <= 0 || fov >= 180 {
		return fmt.Errorf("field of view must be in (0, 180) degrees, got %g", fov)
	}
	return nil
}

// SamplingConfig returns the renderer sampling settings
func (c *Config) SamplingConfig() renderer.SamplingConfig {
	return renderer.SamplingConfig{
		SamplesPerPixel: c.Iterations,
		Seed:            c.Seed,
	}
}

// ParallelConfig returns the tile renderer settings
func (c *Config) ParallelConfig() renderer.ParallelConfig {
	return renderer.ParallelConfig{
		TileSize:   c.TileSize,
		NumWorkers: c.Workers,
	}
}

// IntegratorConfig returns the path tracer settings
func (c *Config) IntegratorConfig() integrator.Config {
	return integrator.Config{MaxDepth: c.MaxDepth}
}

// Sequential reports whether the render should run on the calling goroutine
func (c *Config) Sequential() bool {
	return c.Workers == 1
}

// Publisher returns the output settings for S3 uploads
func (s S3Config) Publisher() output.S3Config {
	return output.S3Config{
		Bucket:    s.Bucket,
		Region:    s.Region,
		Endpoint:  s.Endpoint,
		AccessKey: s.AccessKey,
		SecretKey: s.SecretKey,
		Prefix:    s.Prefix,
		ACL:       s.ACL,
	}
}

// WriteYAML writes the effective configuration. Credentials are omitted.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
