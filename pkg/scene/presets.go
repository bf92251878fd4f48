package scene

import (
	"fmt"
	"sort"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// BuiltinTexturePrefix marks texture paths that name procedural textures instead of files
const BuiltinTexturePrefix = "builtin:"

// Texture paths the textured preset asks its provider for
const (
	CheckerTexturePath  = BuiltinTexturePrefix + "checker"
	GradientTexturePath = BuiltinTexturePrefix + "gradient"
)

// presetBuilder builds a scene, resolving textures through the provider when it needs any
type presetBuilder func(textures TextureProvider) (*Scene, error)

var presets = map[string]presetBuilder{
	"cornell":      func(TextureProvider) (*Scene, error) { return NewCornellScene() },
	"single-light": func(TextureProvider) (*Scene, error) { return NewSingleLightScene() },
	"textured":     NewTexturedScene,
}

// Preset builds a built-in scene by name
func Preset(name string, textures TextureProvider) (*Scene, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return build(textures)
}

// PresetNames returns the names of the built-in scenes in sorted order
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cornellSpheres returns the box of giant spheres with two small spheres inside.
// The walls are radius-1000 spheres whose surfaces sit one unit from the origin.
func cornellSpheres() []geometry.SphereConfig {
	return []geometry.SphereConfig{
		{
			Name:     "left wall",
			Center:   core.NewVec3(-1001, 0, 0),
			Radius:   1000,
			Diffuse:  core.NewColor(0.5, 0, 0), // Red
			Specular: core.NewColor(0.5, 0.5, 0.5),
		},
		{
			Name:     "right wall",
			Center:   core.NewVec3(1001, 0, 0),
			Radius:   1000,
			Diffuse:  core.NewColor(0, 0, 0.5), // Blue
			Specular: core.NewColor(0.5, 0.5, 0.5),
		},
		{
			Name:    "back wall",
			Center:  core.NewVec3(0, 0, 1001),
			Radius:  1000,
			Diffuse: core.NewColor(0.5, 0.5, 0.5),
		},
		{
			Name:    "floor",
			Center:  core.NewVec3(0, -1001, 0),
			Radius:  1000,
			Diffuse: core.NewColor(0.5, 0.5, 0.5),
		},
		{
			Name:     "ceiling light",
			Center:   core.NewVec3(0, 1001, 0),
			Radius:   1000,
			Diffuse:  core.NewColor(1, 1, 1),
			Emission: core.NewColor(2, 2, 2),
		},
		{
			Name:     "yellow sphere",
			Center:   core.NewVec3(-0.6, -0.7, -0.6),
			Radius:   0.3,
			Diffuse:  core.NewColor(0.5, 0.5, 0),
			Specular: core.NewColor(0.3, 0.3, 0.3),
		},
		{
			Name:     "cyan sphere",
			Center:   core.NewVec3(0.3, -0.4, 0.3),
			Radius:   0.6,
			Diffuse:  core.NewColor(0, 0.5, 0.5),
			Specular: core.NewColor(0.8, 0.8, 0.8),
		},
	}
}

// NewCornellScene creates the box scene: coloured side walls, a grey back
// wall and floor, a glowing ceiling and two glossy spheres
func NewCornellScene() (*Scene, error) {
	return Build("cornell", DefaultCameraSettings(), cornellSpheres())
}

// NewSingleLightScene creates a scene holding only the ceiling emitter.
// Every ray that reaches it returns exactly the emission, which makes the
// image easy to predict.
func NewSingleLightScene() (*Scene, error) {
	return Build("single-light", DefaultCameraSettings(), []geometry.SphereConfig{
		{
			Name:     "ceiling light",
			Center:   core.NewVec3(0, 1001, 0),
			Radius:   1000,
			Emission: core.NewColor(2, 2, 2),
		},
	})
}

// NewTexturedScene creates the box scene with textures on the two small spheres
func NewTexturedScene(textures TextureProvider) (*Scene, error) {
	if textures == nil {
		return nil, fmt.Errorf("scene textured: no texture provider")
	}

	configs := cornellSpheres()
	assignments := map[string]string{
		"yellow sphere": CheckerTexturePath,
		"cyan sphere":   GradientTexturePath,
	}

	for i := range configs {
		path, ok := assignments[configs[i].Name]
		if !ok {
			continue
		}
		texture, err := textures.Texture(path)
		if err != nil {
			return nil, fmt.Errorf("scene textured: %s: %w", configs[i].Name, err)
		}
		configs[i].Texture = texture
	}

	return Build("textured", DefaultCameraSettings(), configs)
}
