package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/df07/go-sphere-pathtracer/internal/pipeline"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX      int    `json:"tileX"`
	TileY      int    `json:"tileY"`
	X          int    `json:"x"` // Pixel position of the tile's top-left corner
	Y          int    `json:"y"`
	ImageData  string `json:"imageData"`  // Base64 encoded PNG of just this tile
	TileNumber int    `json:"tileNumber"` // Tiles finished so far (1-based)
	TotalTiles int    `json:"totalTiles"` // Total number of tiles in the image
}

// CompleteUpdate is the final event of a render
type CompleteUpdate struct {
	ElapsedMs       int64   `json:"elapsedMs"`
	TotalPixels     int     `json:"totalPixels"`
	TotalSamples    int     `json:"totalSamples"`
	AverageSamples  float64 `json:"averageSamples"`
	Tiles           int     `json:"tiles"`
	MeanLuminance   float64 `json:"meanLuminance"`
	LuminanceStdDev float64 `json:"luminanceStdDev"`
	PrimitiveCount  int     `json:"primitiveCount"`
	EmitterCount    int     `json:"emitterCount"`
	ImageData       string  `json:"imageData"`              // Base64 encoded PNG of the whole image
	PublishedKey    string  `json:"publishedKey,omitempty"` // Object key when the render was uploaded
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// handleRender renders a scene and streams every finished tile via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	// All writes to w happen on the writer goroutine; the handler waits for
	// it before returning
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, webLogger := s.setupConsoleLogging()
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()
	defer func() {
		close(consoleChan)
		<-consoleDone
	}()

	p, err := s.setupRenderingPipeline(req, webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	startTime := time.Now()
	sink := output.NewImageSink(req.Width, req.Height)
	stats, err := p.RenderTiles(ctx, sink, func(tile renderer.TileCompletionResult) {
		s.handleTileUpdate(ctx, sseEventChan, tile)
	})
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	s.handleRenderComplete(ctx, sseEventChan, p, sink.Image(), stats, startTime)
}

// handleImage renders a scene and responds with the encoded image
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]

	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	p, err := s.setupRenderingPipeline(req, NewWebLogger(renderID(), nil, s.logger))
	if err != nil {
		writeJSON(w, statusForSceneError(err), map[string]string{"error": err.Error()})
		return
	}

	sink := output.NewImageSink(req.Width, req.Height)
	if _, err := p.Render(r.Context(), sink); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": fmt.Sprintf("Rendering failed: %v", err)})
		return
	}

	w.Header().Set("Content-Type", output.ContentType(format))
	w.WriteHeader(http.StatusOK)
	if err := output.Encode(w, sink.Image(), format); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode image")
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func renderID() string {
	return fmt.Sprintf("render-%d", time.Now().UnixNano())
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(renderID(), consoleChan, s.logger)
	return consoleChan, webLogger
}

// writeSSEEvents handles writing all SSE events in a single goroutine
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages forwards log lines of a render to the SSE stream
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for {
		select {
		case consoleMsg, ok := <-consoleChan:
			if !ok {
				return
			}

			data, err := json.Marshal(consoleMsg)
			if err != nil {
				s.logger.Error().Err(err).Msg("Error marshaling console message")
				continue
			}

			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// setupRenderingPipeline resolves the scene and builds its raytracer
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger core.Logger) (*pipeline.Pipeline, error) {
	sceneObj, err := s.resolveScene(req.Scene)
	if err != nil {
		return nil, err
	}
	return pipeline.New(sceneObj, s.renderConfig(req), logger)
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan<- SSEEvent, tileResult renderer.TileCompletionResult) {
	tileData, err := imageToBase64PNG(tileResult.TileImage)
	if err != nil {
		s.logger.Error().Err(err).Msgf("Error encoding tile image (%d, %d)", tileResult.TileX, tileResult.TileY)
		return
	}

	update := TileUpdate{
		TileX:      tileResult.TileX,
		TileY:      tileResult.TileY,
		X:          tileResult.Bounds.Min.X,
		Y:          tileResult.Bounds.Min.Y,
		ImageData:  tileData,
		TileNumber: tileResult.TileNumber,
		TotalTiles: tileResult.TotalTiles,
	}
	s.sendJSONEvent(ctx, sseEventChan, "tile", update)
}

// handleRenderComplete sends the final image and statistics, publishing the
// image first when a publisher is configured
func (s *Server) handleRenderComplete(ctx context.Context, sseEventChan chan<- SSEEvent, p *pipeline.Pipeline, img image.Image, stats renderer.RenderStats, startTime time.Time) {
	imageData, err := imageToBase64PNG(img)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Failed to encode image: %v", err))
		return
	}

	update := CompleteUpdate{
		ElapsedMs:       time.Since(startTime).Milliseconds(),
		TotalPixels:     stats.TotalPixels,
		TotalSamples:    stats.TotalSamples,
		AverageSamples:  stats.AverageSamples,
		Tiles:           stats.Tiles,
		MeanLuminance:   stats.MeanLuminance,
		LuminanceStdDev: stats.LuminanceStdDev,
		PrimitiveCount:  p.Scene.GetPrimitiveCount(),
		EmitterCount:    p.Scene.EmitterCount(),
		ImageData:       imageData,
	}

	if s.publisher != nil {
		name := fmt.Sprintf("%s_%s.png", p.Scene.Name(), time.Now().Format("20060102_150405"))
		key, err := s.publisher.PublishImage(ctx, name, img)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish render")
		} else {
			update.PublishedKey = key
		}
	}

	s.sendJSONEvent(ctx, sseEventChan, "complete", update)
}

func (s *Server) sendJSONEvent(ctx context.Context, sseEventChan chan<- SSEEvent, eventType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Msgf("Error marshaling %s event", eventType)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	s.logger.Warn().Msg(message)
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
