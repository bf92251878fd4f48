package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Sphere       string                 `json:"sphere,omitempty"`
	MaterialType string                 `json:"materialType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// hexColor formats a linear color as the tone-mapped #rrggbb it displays as
func hexColor(c core.Color) string {
	r, g, b := renderer.ToneMap(c)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// extractMaterialInfo describes the material seen at a hit point
func extractMaterialInfo(hit *geometry.HitRecord) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"diffuse":  vecArray(hit.Diffuse),
		"specular": vecArray(hit.Specular),
		"emission": vecArray(hit.Emission),
		"color":    hexColor(hit.Diffuse),
	}

	sphere := hit.Sphere
	switch {
	case sphere.IsEmissive():
		properties["color"] = hexColor(hit.Emission)
		return "emissive", properties
	case sphere.HasTexture():
		properties["textureSize"] = [2]int{sphere.Texture().Width(), sphere.Texture().Height()}
		return "textured", properties
	case !hit.Specular.IsZero():
		return "glossy", properties
	default:
		return "diffuse", properties
	}
}

// inspectPixel casts the unjittered eye ray through a pixel and returns the first hit
func inspectPixel(sceneObj *scene.Scene, camera scene.CameraSettings, width, height, pixelX, pixelY int) (*geometry.HitRecord, bool) {
	cam := renderer.NewCamera(renderer.NewCameraConfig(camera, width, height, false))
	ray := cam.GetRay(pixelX, pixelY, core.NewSeededSampler(0))
	return geometry.FindClosestHit(sceneObj.Spheres(), ray)
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}
	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	sceneObj, err := s.resolveScene(inspectReq.Scene)
	if err != nil {
		writeJSON(w, statusForSceneError(err), map[string]string{"error": err.Error()})
		return
	}

	hit, isHit := inspectPixel(sceneObj, sceneObj.Camera(), inspectReq.Width, inspectReq.Height, pixelX, pixelY)
	if !isHit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := extractMaterialInfo(hit)
	geometryProps := map[string]interface{}{
		"center": vecArray(hit.Sphere.Center()),
		"radius": hit.Sphere.Radius(),
	}

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		Sphere:       hit.Sphere.Name(),
		MaterialType: materialType,
		Point:        vecArray(hit.Point),
		Normal:       vecArray(hit.Normal()),
		Distance:     hit.T,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
