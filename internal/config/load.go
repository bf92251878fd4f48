package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

const (
	// EnvPrefix prefixes every environment override, e.g. PATHTRACER_WIDTH
	EnvPrefix = "PATHTRACER"
	// FileName is the config file looked up when --config is not given
	FileName = "pathtracer"
)

// flagKeys maps command line flag names to config keys
var flagKeys = map[string]string{
	"width":            "width",
	"height":           "height",
	"iterations":       "iterations",
	"anti-alias":       "anti_alias",
	"eye":              "eye",
	"look-at":          "look_at",
	"up":               "up",
	"fov":              "fov",
	"scene":            "scene",
	"scenes-dir":       "scenes_dir",
	"seed":             "seed",
	"workers":          "workers",
	"tile-size":        "tile_size",
	"max-depth":        "max_depth",
	"output":           "output",
	"texture-max-size": "texture_max_size",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"port":             "server.port",
	"publish":          "s3.enabled",
	"s3-bucket":        "s3.bucket",
	"s3-region":        "s3.region",
	"s3-endpoint":      "s3.endpoint",
	"s3-prefix":        "s3.prefix",
}

// New creates a viper instance with defaults and environment overrides
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every config key with its default value. Keys
// without a default are invisible to environment overrides.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("width", d.Width)
	v.SetDefault("height", d.Height)
	v.SetDefault("iterations", d.Iterations)
	v.SetDefault("anti_alias", d.AntiAlias)
	v.SetDefault("eye", "")
	v.SetDefault("look_at", "")
	v.SetDefault("up", "")
	v.SetDefault("fov", d.FOV)
	v.SetDefault("scene", d.Scene)
	v.SetDefault("scenes_dir", d.ScenesDir)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("tile_size", d.TileSize)
	v.SetDefault("max_depth", d.MaxDepth)
	v.SetDefault("output", d.Output)
	v.SetDefault("texture_max_size", d.TextureMaxSize)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("s3.enabled", d.S3.Enabled)
	v.SetDefault("s3.bucket", d.S3.Bucket)
	v.SetDefault("s3.region", d.S3.Region)
	v.SetDefault("s3.endpoint", d.S3.Endpoint)
	v.SetDefault("s3.access_key", d.S3.AccessKey)
	v.SetDefault("s3.secret_key", d.S3.SecretKey)
	v.SetDefault("s3.prefix", d.S3.Prefix)
	v.SetDefault("s3.acl", d.S3.ACL)
}

// AddRenderFlags defines the flags that control a render
func AddRenderFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.Int("width", d.Width, "Image width in pixels")
	flags.Int("height", d.Height, "Image height in pixels")
	flags.IntP("iterations", "n", d.Iterations, "Samples per pixel")
	flags.Bool("anti-alias", d.AntiAlias, "Jitter eye rays around each pixel")
	flags.String("eye", "", "Camera position as x,y,z (default: the scene's camera)")
	flags.String("look-at", "", "Camera target as x,y,z")
	flags.String("up", "", "Camera up direction as x,y,z")
	flags.Float64("fov", d.FOV, "Field of view in degrees (0 keeps the scene's)")
	flags.StringP("scene", "s", d.Scene, "Preset name or path to a scene file")
	flags.String("scenes-dir", d.ScenesDir, "Directory searched for scene files")
	flags.Int64("seed", d.Seed, "Random seed")
	flags.IntP("workers", "w", d.Workers, "Render workers (1 = sequential, 0 = all CPUs)")
	flags.Int("tile-size", d.TileSize, "Tile size for parallel rendering")
	flags.Int("max-depth", d.MaxDepth, "Maximum bounces (0 = roulette only)")
	flags.Int("texture-max-size", d.TextureMaxSize, "Downsample textures larger than this (0 = never)")
}

// AddOutputFlags defines the flags that control where a render goes
func AddOutputFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.StringP("output", "o", d.Output, "Output image (.png or .bmp)")
	flags.Bool("publish", d.S3.Enabled, "Upload the render to S3")
	flags.String("s3-bucket", d.S3.Bucket, "S3 bucket for published renders")
	flags.String("s3-region", d.S3.Region, "S3 region")
	flags.String("s3-endpoint", d.S3.Endpoint, "Custom S3 endpoint")
	flags.String("s3-prefix", d.S3.Prefix, "Key prefix for published renders")
}

// AddLogFlags defines the logging flags
func AddLogFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("log-level", d.Log.Level, "Log level (debug, info, warn, error)")
	flags.String("log-format", d.Log.Format, "Log format (console or json)")
}

// AddServerFlags defines the web server flags
func AddServerFlags(flags *pflag.FlagSet) {
	flags.IntP("port", "p", Default().Server.Port, "Port to serve on")
}

// BindFlags binds every known flag present in flags to its config key
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files. Missing files are
// skipped and variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the optional config file and returns the validated settings.
// An explicit configFile must exist; otherwise pathtracer.yaml is searched
// in the working directory and $HOME/.pathtracer.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".pathtracer"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// DecodeHook combines viper's usual conversions with the vector hook.
// The vector hook may return nil, so it must run last.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		Vec3HookFunc(),
	)
}

var vec3Type = reflect.TypeOf(core.Vec3{})

// Vec3HookFunc decodes "x,y,z" strings and three-element lists into vectors.
// An empty string leaves an optional vector unset.
func Vec3HookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		optional := to.Kind() == reflect.Ptr && to.Elem() == vec3Type
		if to != vec3Type && !optional {
			return data, nil
		}

		switch d := data.(type) {
		case string:
			if strings.TrimSpace(d) == "" {
				if optional {
					return nil, nil
				}
				return core.Vec3{}, nil
			}
			return ParseVec3(d)
		case []interface{}:
			return vec3FromList(d)
		case []float64:
			if len(d) != 3 {
				return nil, fmt.Errorf("vector needs 3 components, got %d", len(d))
			}
			return core.NewVec3(d[0], d[1], d[2]), nil
		default:
			return data, nil
		}
	}
}

// ParseVec3 parses "x,y,z"
func ParseVec3(s string) (core.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("vector %q needs 3 comma-separated components", s)
	}

	var c [3]float64
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid vector component %q: %w", part, err)
		}
		c[i] = value
	}
	return core.NewVec3(c[0], c[1], c[2]), nil
}

func vec3FromList(list []interface{}) (core.Vec3, error) {
	if len(list) != 3 {
		return core.Vec3{}, fmt.Errorf("vector needs 3 components, got %d", len(list))
	}

	var c [3]float64
	for i, item := range list {
		switch n := item.(type) {
		case int:
			c[i] = float64(n)
		case int64:
			c[i] = float64(n)
		case float64:
			c[i] = n
		case string:
			value, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return core.Vec3{}, fmt.Errorf("invalid vector component %q: %w", n, err)
			}
			c[i] = value
		default:
			return core.Vec3{}, fmt.Errorf("invalid vector component %v", item)
		}
	}
	return core.NewVec3(c[0], c[1], c[2]), nil
}
