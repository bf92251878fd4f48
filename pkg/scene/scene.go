package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

var (
	// ErrEmptyScene is returned when a scene has no spheres
	ErrEmptyScene = errors.New("scene has no spheres")
	// ErrUnknownScene is returned for a preset name that does not exist
	ErrUnknownScene = errors.New("unknown scene")
)

// CameraSettings is the camera a scene is designed to be viewed from
type CameraSettings struct {
	Eye    core.Vec3
	LookAt core.Vec3
	Up     core.Vec3
	FOV    float64 // Field of view in degrees
}

// DefaultCameraSettings returns the camera the box scene is built for
func DefaultCameraSettings() CameraSettings {
	return CameraSettings{
		Eye:    core.NewVec3(0, 0, -4),
		LookAt: core.NewVec3(0, 0, 6),
		Up:     core.NewVec3(0, 1, 0),
		FOV:    36,
	}
}

// TextureProvider resolves texture references found in scene descriptions
type TextureProvider interface {
	Texture(path string) (core.Texture, error)
}

// Scene is an ordered, read-only list of spheres built once before rendering
type Scene struct {
	name    string
	camera  CameraSettings
	spheres []*geometry.Sphere
}

// New creates a scene from already validated spheres
func New(name string, camera CameraSettings, spheres ...*geometry.Sphere) (*Scene, error) {
	if len(spheres) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyScene, name)
	}
	for i, s := range spheres {
		if s == nil {
			return nil, fmt.Errorf("scene %s: sphere %d is nil", name, i)
		}
	}

	// Copy so later changes to the caller's slice cannot leak into a render
	owned := make([]*geometry.Sphere, len(spheres))
	copy(owned, spheres)

	return &Scene{
		name:    name,
		camera:  camera,
		spheres: owned,
	}, nil
}

// Build validates sphere configurations and creates a scene from them
func Build(name string, camera CameraSettings, configs []geometry.SphereConfig) (*Scene, error) {
	spheres := make([]*geometry.Sphere, 0, len(configs))
	for i, cfg := range configs {
		sphere, err := geometry.NewSphere(cfg)
		if err != nil {
			return nil, fmt.Errorf("scene %s: sphere %d: %w", name, i, err)
		}
		spheres = append(spheres, sphere)
	}
	return New(name, camera, spheres...)
}

// Name returns the scene name
func (s *Scene) Name() string {
	return s.name
}

// Camera returns the camera the scene was designed for
func (s *Scene) Camera() CameraSettings {
	return s.camera
}

// Spheres returns the ordered sphere list. Callers must not modify it.
func (s *Scene) Spheres() []*geometry.Sphere {
	return s.spheres
}

// GetPrimitiveCount returns the number of spheres in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.spheres)
}

// EmitterCount returns the number of spheres with non-zero emission
func (s *Scene) EmitterCount() int {
	count := 0
	for _, sphere := range s.spheres {
		if sphere.IsEmissive() {
			count++
		}
	}
	return count
}
