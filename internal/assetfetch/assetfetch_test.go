package assetfetch

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDataURLRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	uri, err := DataURL(img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	var r Resolver
	back, err := r.Fetch(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), back.Bounds())
}

func TestFetchDataURIErrors(t *testing.T) {
	var r Resolver
	_, err := r.Fetch(context.Background(), "data:image/png;base64")
	assert.Error(t, err)
	_, err = r.Fetch(context.Background(), "data:image/png;base64,!!!")
	assert.Error(t, err)
	_, err = r.Fetch(context.Background(), "data:text/plain,hello")
	assert.Error(t, err)
}

func TestFetchRemoteAndProxy(t *testing.T) {
	blue := pngBytes(t, color.RGBA{B: 255, A: 255})
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotURL = req.URL.String()
		w.Header().Set("Content-Type", "image/png")
		w.Write(blue)
	}))
	defer srv.Close()

	r := Resolver{Client: srv.Client()}
	img, err := r.Fetch(context.Background(), srv.URL+"/pic.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	// With a proxy base the original URL travels as a query parameter.
	pr := Resolver{Client: srv.Client(), ProxyBase: srv.URL + "/proxy/image"}
	_, err = pr.Fetch(context.Background(), "https://elsewhere.example/pic.png")
	require.NoError(t, err)
	assert.Equal(t, "/proxy/image?url="+
		"https%3A%2F%2Felsewhere.example%2Fpic.png", gotURL)
}

func TestFetchAllSettlesDespiteFailures(t *testing.T) {
	ok := pngBytes(t, color.RGBA{G: 255, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.Contains(req.URL.Path, "missing") {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(ok)
	}))
	defer srv.Close()

	r := Resolver{Client: srv.Client()}
	good := srv.URL + "/good.png"
	bad := srv.URL + "/missing.png"

	got := r.FetchAll(context.Background(), []string{good, bad, good, ""})
	require.Len(t, got, 1)
	assert.Contains(t, got, good)
}

func TestReadLocalConfinedToAssetDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), pngBytes(t, color.White), 0o644))

	r := Resolver{AssetDir: dir}
	img, err := r.Fetch(context.Background(), "a.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	// Traversal collapses to the base name.
	_, err = r.Fetch(context.Background(), "../../etc/passwd")
	assert.Error(t, err)

	none := Resolver{}
	_, err = none.Fetch(context.Background(), "a.png")
	assert.Error(t, err)
}

func TestFetchBytesPassesContentType(t *testing.T) {
	payload := pngBytes(t, color.Black)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	r := Resolver{Client: srv.Client()}
	raw, ct, err := r.FetchBytes(context.Background(), srv.URL+"/x.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, payload, raw)
}
