package renderer

import (
	"context"
	"image"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ParallelConfig contains configuration for tile-parallel rendering
type ParallelConfig struct {
	TileSize   int // Size of each tile in pixels (64x64 recommended)
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultParallelConfig returns sensible default values
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		TileSize:   64,
		NumWorkers: 0, // Auto-detect CPU count
	}
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX     int // Tile coordinates (not pixel coordinates)
	TileY     int
	Bounds    image.Rectangle // Pixel bounds of the tile in the image
	TileImage *image.RGBA     // Image data for just this tile

	// Progress information
	TileNumber int // Tiles completed so far including this one (1-based)
	TotalTiles int // Total number of tiles in the image
}

// ParallelRenderer splits the image into tiles and renders them on a worker pool.
// Every tile draws from its own random stream seeded from the render seed and
// the tile ID, so the image does not depend on scheduling or worker count.
type ParallelRenderer struct {
	raytracer *Raytracer
	config    ParallelConfig
	logger    core.Logger
}

// NewParallelRenderer creates a tile-parallel renderer around a raytracer
func NewParallelRenderer(raytracer *Raytracer, config ParallelConfig, logger core.Logger) *ParallelRenderer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultParallelConfig().TileSize
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &ParallelRenderer{
		raytracer: raytracer,
		config:    config,
		logger:    logger,
	}
}

// Render renders all tiles and writes their pixels to sink from the calling
// goroutine in tile completion order. onTile, when not nil, is called after
// each tile's pixels are written. Cancelling ctx stops dispatching new tiles;
// tiles already in flight still complete and the context error is returned.
func (pr *ParallelRenderer) Render(ctx context.Context, sink PixelSink, onTile func(TileCompletionResult)) (RenderStats, error) {
	width, height := pr.raytracer.Width(), pr.raytracer.Height()
	samples := pr.raytracer.SamplingConfig().SamplesPerPixel
	tiles := NewTileGrid(width, height, pr.config.TileSize, pr.raytracer.SamplingConfig().Seed)

	pool := NewWorkerPool(pr.raytracer, pr.config.NumWorkers)
	start := time.Now()
	pr.logger.Printf("Drawing image (%dx%d, %d samples per pixel, %d tiles, %d workers)...\n",
		width, height, samples, len(tiles), pool.GetNumWorkers())

	pool.Start()

	// Dispatch from a separate goroutine so results can be collected concurrently
	go func() {
		defer pool.Stop()
		for taskID, tile := range tiles {
			if !pool.SubmitTask(ctx, TileTask{Tile: tile, TaskID: taskID}) {
				return
			}
		}
	}()

	stats := RenderStats{}
	luminance := make([]float64, 0, width*height)
	completed := 0

	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		completed++

		tile := tiles[result.TaskID]
		bounds := tile.Bounds
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := result.TileImage.RGBAAt(x-bounds.Min.X, y-bounds.Min.Y)
				sink.WritePixel(x, y, c.R, c.G, c.B)
			}
		}

		luminance = append(luminance, result.Luminance...)
		stats.TotalPixels += bounds.Dx() * bounds.Dy()
		stats.TotalSamples += bounds.Dx() * bounds.Dy() * samples
		stats.Tiles++

		if onTile != nil {
			onTile(TileCompletionResult{
				TileX:      bounds.Min.X / pr.config.TileSize,
				TileY:      bounds.Min.Y / pr.config.TileSize,
				Bounds:     bounds,
				TileImage:  result.TileImage,
				TileNumber: completed,
				TotalTiles: len(tiles),
			})
		}
	}

	stats.finalize(luminance, start)

	if err := ctx.Err(); err != nil && completed < len(tiles) {
		pr.logger.Printf("Rendering cancelled after %d of %d tiles\n", completed, len(tiles))
		return stats, err
	}

	pr.logger.Printf("Done! (%v)\n", stats.Elapsed)
	return stats, nil
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID      int                 // Unique tile identifier
	Bounds  image.Rectangle     // Pixel bounds (x0,y0,x1,y1)
	Sampler *core.RandomSampler // Tile-specific random stream for deterministic results
}

// NewTile creates a new tile whose random stream is seeded with seed+id
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewSeededSampler(seed + int64(id)),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			// Calculate tile bounds
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}
