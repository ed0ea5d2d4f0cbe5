package asset

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	proxyMaxBytes = 32 << 20
	proxyTimeout  = 20 * time.Second
)

// Proxy fetches remote images server-side so canvases can rasterize
// cross-origin sources. Responses carry the upstream content type and a
// long cache lifetime.
type Proxy struct {
	client *http.Client
}

func NewProxy() *Proxy {
	return &Proxy{client: &http.Client{Timeout: proxyTimeout}}
}

// Image handles GET /proxy/image?url=<remote>.
func (p *Proxy) Image(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		http.Error(w, "invalid url", http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		http.Error(w, "invalid url", http.StatusBadRequest)
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		slog.Warn("proxy fetch failed", "url", raw, "error", err)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("proxy upstream status", "url", raw, "status", resp.StatusCode)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	io.Copy(w, io.LimitReader(resp.Body, proxyMaxBytes))
}
