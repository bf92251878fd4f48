package renderer

import (
	"context"
	"image"
	"runtime"
	"sync"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile   *Tile
	TaskID int // Index of the tile in the grid
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID    int
	TileImage *image.RGBA // Tone-mapped pixels of just this tile
	Luminance []float64   // Linear luminance per pixel, row-major within the tile
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID          int
	raytracer   *Raytracer
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(raytracer *Raytracer, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	// Small queues keep dispatch paced with rendering so cancellation takes effect quickly
	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, numWorkers),
		resultQueue: make(chan TileResult, numWorkers),
		numWorkers:  numWorkers,
	}

	// Create workers. The raytracer only reads shared state, so they can share it.
	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			raytracer:   raytracer,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers and closes the result queue
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a tile task to the worker pool.
// It returns false without submitting when ctx is done first.
func (wp *WorkerPool) SubmitTask(ctx context.Context, task TileTask) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case wp.taskQueue <- task:
		return true
	case <-ctx.Done():
		return false
	}
}

// GetResult retrieves a completed tile result. ok is false once the pool is stopped and drained.
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		// Each tile has non-overlapping bounds and its own sampler
		tileImage, luminance := w.raytracer.RenderTile(task.Tile)

		w.resultQueue <- TileResult{
			TaskID:    task.TaskID,
			TileImage: tileImage,
			Luminance: luminance,
		}
	}
}
