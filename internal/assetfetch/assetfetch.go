// Package assetfetch resolves image references for exporters: data URIs,
// files under the asset directory, and remote http(s) URLs.
package assetfetch

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	"image/png"
)

// Resolver fetches and decodes images. A zero Resolver works for data URIs;
// set AssetDir for local files and ProxyBase to route remote fetches
// through the image proxy.
type Resolver struct {
	Client    *http.Client
	AssetDir  string
	ProxyBase string // e.g. "http://localhost:8080/proxy/image"
}

func (r *Resolver) client() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// FetchAll resolves every unique source concurrently and joins on all of
// them. Failures are logged and left out of the result; a partial map is a
// success.
func (r *Resolver) FetchAll(ctx context.Context, sources []string) map[string]image.Image {
	uniq := make(map[string]struct{}, len(sources))
	for _, src := range sources {
		if src != "" {
			uniq[src] = struct{}{}
		}
	}

	var mu sync.Mutex
	out := make(map[string]image.Image, len(uniq))
	var wg sync.WaitGroup
	for src := range uniq {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			img, err := r.Fetch(ctx, src)
			if err != nil {
				slog.Warn("image fetch failed, skipping", "source", truncate(src), "error", err)
				return
			}
			mu.Lock()
			out[src] = img
			mu.Unlock()
		}(src)
	}
	wg.Wait()
	return out
}

// Fetch resolves a single source to a decoded image.
func (r *Resolver) Fetch(ctx context.Context, src string) (image.Image, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return r.fetchRemote(ctx, src)
	default:
		return r.readLocal(src)
	}
}

func decodeDataURI(src string) (image.Image, error) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI")
	}
	meta, payload := src[5:comma], src[comma+1:]

	var raw []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URI: %w", err)
		}
		raw = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URI: %w", err)
		}
		raw = []byte(unescaped)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func (r *Resolver) fetchRemote(ctx context.Context, src string) (image.Image, error) {
	target := src
	if r.ProxyBase != "" {
		target = r.ProxyBase + "?url=" + url.QueryEscape(src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", truncate(src), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", truncate(src), resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// readLocal loads an image from inside the asset directory. Paths escaping
// the directory are rejected.
func (r *Resolver) readLocal(src string) (image.Image, error) {
	if r.AssetDir == "" {
		return nil, fmt.Errorf("no asset directory configured")
	}
	name := filepath.Clean(filepath.Base(src))
	f, err := os.Open(filepath.Join(r.AssetDir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", name, err)
	}
	return img, nil
}

// FetchBytes returns the raw bytes and content type of a source, for SVG
// embedding where the original encoding is desired.
func (r *Resolver) FetchBytes(ctx context.Context, src string) ([]byte, string, error) {
	target := src
	if r.ProxyBase != "" {
		target = r.ProxyBase + "?url=" + url.QueryEscape(src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := r.client().Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", truncate(src), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: status %d", truncate(src), resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, "", err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(raw)
	}
	return raw, ct, nil
}

// DataURL encodes an image as a PNG data URI.
func DataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func truncate(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
