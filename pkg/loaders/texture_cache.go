package loaders

import (
	"fmt"
	"strings"
	"sync"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
	"github.com/df07/go-sphere-pathtracer/pkg/texture"
)

// builtinTextures are the procedural textures addressable as "builtin:<name>"
var builtinTextures = map[string]func() *texture.ImageTexture{
	"checker": func() *texture.ImageTexture {
		return texture.NewCheckerboardTexture(256, 256, 32,
			texture.RGB{R: 230, G: 230, B: 230}, // White
			texture.RGB{R: 50, G: 50, B: 200},   // Blue
		)
	},
	"gradient": func() *texture.ImageTexture {
		return texture.NewGradientTexture(256, 256,
			texture.RGB{R: 255, G: 50, B: 50}, // Red (top)
			texture.RGB{R: 50, G: 255, B: 50}, // Green (bottom)
		)
	},
	"uv": func() *texture.ImageTexture {
		return texture.NewUVDebugTexture(256, 256)
	},
}

// TextureCache loads each texture path once and shares it between scenes
type TextureCache struct {
	maxSize  int
	logger   core.Logger
	mu       sync.Mutex
	textures map[string]core.Texture
}

// NewTextureCache creates a cache that downsamples file textures to maxSize (0 keeps full size)
func NewTextureCache(maxSize int, logger core.Logger) *TextureCache {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &TextureCache{
		maxSize:  maxSize,
		logger:   logger,
		textures: make(map[string]core.Texture),
	}
}

// Texture returns the texture for path, loading it on first use
func (c *TextureCache) Texture(path string) (core.Texture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tex, ok := c.textures[path]; ok {
		return tex, nil
	}

	var tex core.Texture
	if name, ok := strings.CutPrefix(path, scene.BuiltinTexturePrefix); ok {
		build, exists := builtinTextures[name]
		if !exists {
			return nil, fmt.Errorf("unknown builtin texture %q", name)
		}
		tex = build()
	} else {
		loaded, err := LoadTexture(path, c.maxSize)
		if err != nil {
			return nil, err
		}
		tex = loaded
	}

	c.logger.Printf("Loaded texture %s (%dx%d)\n", path, tex.Width(), tex.Height())
	c.textures[path] = tex
	return tex, nil
}

// Len returns the number of cached textures
func (c *TextureCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.textures)
}
