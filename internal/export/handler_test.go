package export

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racan/racan/backend-go/internal/render"
	"github.com/racan/racan/backend-go/internal/render/svgexport"
)

func newTestHandler() *Handler {
	return NewHandler(render.New(nil), svgexport.New(nil))
}

const rectScene = `{
	"canvasSize": {"width": 200, "height": 100},
	"canvasBg": "#ffffff",
	"elements": [
		{"id": "el_1", "type": "shape", "x": 10, "y": 10, "width": 50, "height": 50,
		 "shapeType": "rectangle", "backgroundColor": "#ff0000"}
	]
}`

func TestExportImagePNG(t *testing.T) {
	h := newTestHandler()

	body := strings.Replace(rectScene, `"elements"`, `"format": "png", "scale": 1, "elements"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/export/image", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ExportImage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestExportImageDefaultsToPNGScaleOne(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/export/image", strings.NewReader(rectScene))
	rec := httptest.NewRecorder()
	h.ExportImage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	assert.NoError(t, err)
}

func TestExportImageRejectsBadScale(t *testing.T) {
	h := newTestHandler()

	body := strings.Replace(rectScene, `"elements"`, `"scale": 3, "elements"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/export/image", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ExportImage(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportImageRejectsBadCanvas(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/export/image",
		strings.NewReader(`{"canvasSize":{"width":0,"height":0},"elements":[]}`))
	rec := httptest.NewRecorder()
	h.ExportImage(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportSVG(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/export/svg", strings.NewReader(rectScene))
	rec := httptest.NewRecorder()
	h.ExportSVG(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `<svg`)
	assert.Contains(t, rec.Body.String(), `fill="#ff0000"`)
}

func TestThumbnailReturnsDataURL(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/export/thumbnail", strings.NewReader(rectScene))
	rec := httptest.NewRecorder()
	h.Thumbnail(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp["thumbnail"], "data:image/png;base64,"))
}
