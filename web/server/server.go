package server

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/df07/go-sphere-pathtracer/internal/config"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Request limits
const (
	MinImageSize = 8
	MaxImageSize = 2000
	MaxSamples   = 10000
	MaxDepth     = 1000
)

//go:embed static/index.html
var indexHTML []byte

// ImagePublisher uploads finished renders
type ImagePublisher interface {
	PublishImage(ctx context.Context, name string, img image.Image) (string, error)
}

// Server handles web requests for the path tracer
type Server struct {
	config    config.Config
	logger    zerolog.Logger
	textures  *loaders.TextureCache
	publisher ImagePublisher
}

// NewServer creates a new web server. cfg supplies the port, the scene
// directory and the defaults of every render request.
func NewServer(cfg config.Config, logger zerolog.Logger) *Server {
	return &Server{
		config:   cfg,
		logger:   logger,
		textures: loaders.NewTextureCache(cfg.TextureMaxSize, NewWebLogger("textures", nil, logger)),
	}
}

// SetPublisher enables uploading every completed render
func (s *Server) SetPublisher(publisher ImagePublisher) {
	s.publisher = publisher
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene     string `json:"scene"`     // Preset name or scene file ID
	Width     int    `json:"width"`     // Image width
	Height    int    `json:"height"`    // Image height
	Samples   int    `json:"samples"`   // Samples per pixel
	Seed      int64  `json:"seed"`      // Random seed
	AntiAlias bool   `json:"antiAlias"` // Jitter eye rays
	MaxDepth  int    `json:"maxDepth"`  // Bounce cap, 0 = roulette only
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/scenes", s.handleScenes).Methods(http.MethodGet)
	api.HandleFunc("/scene-config", s.handleSceneConfig).Methods(http.MethodGet)
	api.HandleFunc("/render", s.handleRender).Methods(http.MethodGet)
	api.HandleFunc("/render.{format:png|bmp}", s.handleImage).Methods(http.MethodGet)
	api.HandleFunc("/inspect", s.handleInspect).Methods(http.MethodGet)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	r.Use(corsMiddleware)
	r.Use(s.loggingMiddleware)
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info().Msgf("Starting web server on http://localhost:%d", s.config.Server.Port)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info().Msg("Shutting down web server")
		return srv.Shutdown(shutdownCtx)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the presets and the scene files of the scenes directory
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.config.ScenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleSceneConfig returns a scene's camera with the request defaults and limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = s.config.Scene
	}

	sceneObj, err := s.resolveScene(sceneName)
	if err != nil {
		writeJSON(w, statusForSceneError(err), map[string]string{"error": err.Error()})
		return
	}

	camera := sceneObj.Camera()
	response := map[string]interface{}{
		"scene":        sceneName,
		"name":         sceneObj.Name(),
		"sphereCount":  sceneObj.GetPrimitiveCount(),
		"emitterCount": sceneObj.EmitterCount(),
		"camera": map[string]interface{}{
			"eye":    [3]float64{camera.Eye.X, camera.Eye.Y, camera.Eye.Z},
			"lookAt": [3]float64{camera.LookAt.X, camera.LookAt.Y, camera.LookAt.Z},
			"up":     [3]float64{camera.Up.X, camera.Up.Y, camera.Up.Z},
			"fov":    camera.FOV,
		},
		"defaults": s.defaultRequest(sceneName),
		"limits": map[string]interface{}{
			"width":    map[string]int{"min": MinImageSize, "max": MaxImageSize},
			"height":   map[string]int{"min": MinImageSize, "max": MaxImageSize},
			"samples":  map[string]int{"min": 1, "max": MaxSamples},
			"maxDepth": map[string]int{"min": 0, "max": MaxDepth},
		},
	}
	writeJSON(w, http.StatusOK, response)
}

// resolveScene builds a preset or one of the listed scene files. Arbitrary
// paths are rejected so requests cannot read files outside the scenes directory.
func (s *Server) resolveScene(id string) (*scene.Scene, error) {
	for _, name := range scene.PresetNames() {
		if name == id {
			return scene.Preset(id, s.textures)
		}
	}

	files, err := scene.ListSceneFiles(s.config.ScenesDir)
	if err != nil {
		return nil, err
	}
	for _, info := range files {
		if info.ID == id {
			return scene.LoadFile(info.FilePath, s.textures)
		}
	}
	return nil, fmt.Errorf("%w: %q", scene.ErrUnknownScene, id)
}

func statusForSceneError(err error) int {
	if errors.Is(err, scene.ErrUnknownScene) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) defaultRequest(sceneName string) RenderRequest {
	return RenderRequest{
		Scene:     sceneName,
		Width:     s.config.Width,
		Height:    s.config.Height,
		Samples:   s.config.Iterations,
		Seed:      s.config.Seed,
		AntiAlias: s.config.AntiAlias,
		MaxDepth:  s.config.MaxDepth,
	}
}

// parseCommonSceneParams parses the scene and image size shared by every endpoint
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	values := r.URL.Query()
	*req = s.defaultRequest(s.config.Scene)
	if sceneName := values.Get("scene"); sceneName != "" {
		req.Scene = sceneName
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", clamp(req.Width, MinImageSize, MaxImageSize), MinImageSize, MaxImageSize); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(values, "height", clamp(req.Height, MinImageSize, MaxImageSize), MinImageSize, MaxImageSize); err != nil {
		return err
	}
	return nil
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	values := r.URL.Query()
	var err error
	if req.Samples, err = parseIntParam(values, "samples", clamp(req.Samples, 1, MaxSamples), 1, MaxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", clamp(req.MaxDepth, 0, MaxDepth), 0, MaxDepth); err != nil {
		return nil, err
	}
	if value := values.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	}
	if value := values.Get("antiAlias"); value != "" {
		if req.AntiAlias, err = strconv.ParseBool(value); err != nil {
			return nil, fmt.Errorf("invalid antiAlias: %s", value)
		}
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		s.logger.Warn().Msg("Large image with high samples may render slowly")
	}

	return req, nil
}

// renderConfig turns a request into a full render configuration
func (s *Server) renderConfig(req *RenderRequest) *config.Config {
	cfg := s.config
	cfg.Scene = req.Scene
	cfg.Width = req.Width
	cfg.Height = req.Height
	cfg.Iterations = req.Samples
	cfg.Seed = req.Seed
	cfg.AntiAlias = req.AntiAlias
	cfg.MaxDepth = req.MaxDepth
	// Requests always use the scene's own camera
	cfg.Eye, cfg.LookAt, cfg.Up, cfg.FOV = nil, nil, nil, 0
	return &cfg
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
