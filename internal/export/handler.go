// Package export exposes the raster and SVG exporters over HTTP.
package export

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/racan/racan/backend-go/internal/render"
	"github.com/racan/racan/backend-go/internal/render/svgexport"
	"github.com/racan/racan/backend-go/internal/scene"
)

type Handler struct {
	renderer   *render.Renderer
	serializer *svgexport.Serializer
}

func NewHandler(renderer *render.Renderer, serializer *svgexport.Serializer) *Handler {
	return &Handler{renderer: renderer, serializer: serializer}
}

type sceneRequest struct {
	Elements      []scene.Element  `json:"elements"`
	CanvasSize    scene.CanvasSize `json:"canvasSize"`
	CanvasBg      string           `json:"canvasBg"`
	CanvasBgImage string           `json:"canvasBgImage"`
}

func (req *sceneRequest) toScene() (*scene.Scene, error) {
	if req.CanvasSize.Width <= 0 || req.CanvasSize.Height <= 0 {
		return nil, errors.New("canvasSize must be positive")
	}
	s := scene.New(req.CanvasSize.Width, req.CanvasSize.Height)
	if req.CanvasBg != "" {
		s.Frame.Background = req.CanvasBg
	}
	s.Frame.BackgroundImage = req.CanvasBgImage
	s.Elements = req.Elements
	return s, nil
}

type imageRequest struct {
	sceneRequest
	Format      string `json:"format"`
	Scale       int    `json:"scale"`
	Transparent bool   `json:"transparent"`
}

// ExportImage handles POST /export/image.
func (h *Handler) ExportImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s, err := req.toScene()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := render.Options{
		Scale:       req.Scale,
		Format:      render.Format(req.Format),
		Transparent: req.Transparent,
	}
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	if opts.Format == "" {
		opts.Format = render.FormatPNG
	}

	data, err := h.renderer.Render(r.Context(), s, opts)
	if err != nil {
		if errors.Is(err, render.ErrExportBusy) {
			http.Error(w, "an export is already running", http.StatusConflict)
			return
		}
		slog.Error("image export failed", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch opts.Format {
	case render.FormatJPEG:
		w.Header().Set("Content-Type", "image/jpeg")
	default:
		w.Header().Set("Content-Type", "image/png")
	}
	w.Header().Set("Content-Disposition", `attachment; filename="export.`+string(opts.Format)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ExportSVG handles POST /export/svg.
func (h *Handler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s, err := req.toScene()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	svg, err := h.serializer.Serialize(r.Context(), s)
	if err != nil {
		slog.Error("svg export failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="export.svg"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(svg))
}

// Thumbnail handles POST /export/thumbnail, returning a small PNG data URL.
func (h *Handler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s, err := req.toScene()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dataURL, err := h.renderer.Thumbnail(r.Context(), s)
	if err != nil {
		if errors.Is(err, render.ErrExportBusy) {
			http.Error(w, "an export is already running", http.StatusConflict)
			return
		}
		slog.Error("thumbnail failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"thumbnail": dataURL})
}
