package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// sceneFile is the YAML layout of a scene description
type sceneFile struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Camera      *cameraFile  `yaml:"camera"`
	Spheres     []sphereFile `yaml:"spheres"`
}

type cameraFile struct {
	Eye    vecFile `yaml:"eye"`
	LookAt vecFile `yaml:"lookAt"`
	Up     vecFile `yaml:"up"`
	FOV    float64 `yaml:"fov"`
}

type sphereFile struct {
	Name     string  `yaml:"name"`
	Center   vecFile `yaml:"center"`
	Radius   float64 `yaml:"radius"`
	Diffuse  vecFile `yaml:"diffuse"`
	Emission vecFile `yaml:"emission"`
	Specular vecFile `yaml:"specular"`
	Texture  string  `yaml:"texture"`
}

// vecFile is a three-element list such as [0, 1001, 0]. Empty means unset.
type vecFile []float64

func (v vecFile) toVec3(field string, fallback core.Vec3) (core.Vec3, error) {
	if len(v) == 0 {
		return fallback, nil
	}
	if len(v) != 3 {
		return core.Vec3{}, fmt.Errorf("%s: expected 3 components, got %d", field, len(v))
	}
	return core.NewVec3(v[0], v[1], v[2]), nil
}

// LoadFile reads a YAML scene description. Texture paths are relative to the
// scene file and are resolved through the provider, which may be nil when the
// scene has no textures.
func LoadFile(path string, textures TextureProvider) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	scene, err := Parse(bytes.NewReader(data), name, filepath.Dir(path), textures)
	if err != nil {
		return nil, fmt.Errorf("scene file %s: %w", path, err)
	}
	return scene, nil
}

// Parse decodes a YAML scene description from r. defaultName is used when
// the document has no name; baseDir anchors relative texture paths.
func Parse(r io.Reader, defaultName, baseDir string, textures TextureProvider) (*Scene, error) {
	var doc sceneFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s", ErrEmptyScene, defaultName)
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	name := doc.Name
	if name == "" {
		name = defaultName
	}

	camera, err := doc.Camera.settings()
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	configs := make([]geometry.SphereConfig, 0, len(doc.Spheres))
	for i, s := range doc.Spheres {
		cfg, err := s.config(baseDir, textures)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		configs = append(configs, cfg)
	}

	return Build(name, camera, configs)
}

// settings applies the file's camera over the default one
func (c *cameraFile) settings() (CameraSettings, error) {
	settings := DefaultCameraSettings()
	if c == nil {
		return settings, nil
	}

	var err error
	if settings.Eye, err = c.Eye.toVec3("eye", settings.Eye); err != nil {
		return settings, err
	}
	if settings.LookAt, err = c.LookAt.toVec3("lookAt", settings.LookAt); err != nil {
		return settings, err
	}
	if settings.Up, err = c.Up.toVec3("up", settings.Up); err != nil {
		return settings, err
	}
	if c.FOV != 0 {
		settings.FOV = c.FOV
	}
	return settings, nil
}

func (s sphereFile) config(baseDir string, textures TextureProvider) (geometry.SphereConfig, error) {
	cfg := geometry.SphereConfig{
		Name:   s.Name,
		Radius: s.Radius,
	}

	var err error
	if len(s.Center) == 0 {
		return cfg, fmt.Errorf("center is required")
	}
	if cfg.Center, err = s.Center.toVec3("center", core.Vec3{}); err != nil {
		return cfg, err
	}
	if cfg.Diffuse, err = s.Diffuse.toVec3("diffuse", core.Color{}); err != nil {
		return cfg, err
	}
	if cfg.Emission, err = s.Emission.toVec3("emission", core.Color{}); err != nil {
		return cfg, err
	}
	if cfg.Specular, err = s.Specular.toVec3("specular", core.Color{}); err != nil {
		return cfg, err
	}

	if s.Texture != "" {
		if textures == nil {
			return cfg, fmt.Errorf("texture %s: no texture provider", s.Texture)
		}
		path := s.Texture
		if !filepath.IsAbs(path) && !strings.HasPrefix(path, BuiltinTexturePrefix) {
			path = filepath.Join(baseDir, path)
		}
		if cfg.Texture, err = textures.Texture(path); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}
