package server

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/glorpus-work/zedex/internal/logger"
)

// forwardedHeaders are the only upstream response headers passed back to the
// client on a proxied request.
var forwardedHeaders = []string{
	"Content-Type",
	"Content-Length",
	"ETag",
	"Last-Modified",
	"Cache-Control",
	"Content-Disposition",
}

// forward performs a GET against the upstream URL and relays status, a
// safelisted header set, and the body back to the client verbatim.
func (s *Server) forward(w http.ResponseWriter, r *http.Request, url string) {
	s.metrics.proxiedRequests.Inc()
	logger.Debug("Proxying request", logger.Fields{"url": url})

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		logger.Error("Failed to build proxy request", logger.Fields{"url": url, "error": err})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error proxying request: %v", err))
		return
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)

	resp, err := s.proxy.Do(req)
	if err != nil {
		logger.Error("Proxy request failed", logger.Fields{"url": url, "error": err})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error proxying request: %v", err))
		return
	}
	defer func() { _ = resp.Body.Close() }()

	for _, h := range forwardedHeaders {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Warn("Failed to relay proxied body", logger.Fields{"url": url, "error": err})
	}
}

// handleProxyAPI is the catch-all for API paths without a dedicated route.
// Release archive paths are tried against the local cache first; everything
// else goes to the upstream when proxy mode is on.
func (s *Server) handleProxyAPI(w http.ResponseWriter, r *http.Request) {
	s.metrics.requestsTotal.WithLabelValues("proxy_api").Inc()
	tail := chi.URLParam(r, "*")
	logger.Debug("API request", logger.Fields{"path": tail})

	if !s.opts.ProxyMode {
		logger.Warn("Rejecting proxy request in local mode", logger.Fields{"path": tail})
		writeError(w, http.StatusNotFound, fmt.Sprintf("API path not found locally: %s", tail))
		return
	}

	if s.opts.ReleasesDir != "" {
		if path, ok := s.localReleaseFile(tail); ok {
			s.serveReleaseFile(w, path)
			return
		}
	}

	url := s.opts.ReleasesBaseURL + "/api/" + tail
	if raw := r.URL.RawQuery; raw != "" {
		url += "?" + raw
	}
	s.forward(w, r, url)
}

// localReleaseFile maps an API tail onto a cached release file, if one
// exists. Stable-channel archive paths get a second look under the
// per-asset gzip naming used by the downloader.
func (s *Server) localReleaseFile(tail string) (string, bool) {
	if strings.HasPrefix(tail, "releases/stable/") {
		parts := strings.Split(tail, "/")
		if len(parts) >= 4 {
			version := parts[2]
			base := strings.TrimSuffix(parts[3], ".tar.gz")
			for _, asset := range []string{"zed", "zed-remote-server"} {
				p := filepath.Join(s.opts.ReleasesDir, asset, fmt.Sprintf("%s-%s-%s.gz", asset, version, base))
				if fileExists(p) {
					return p, true
				}
			}
		}
	}

	if strings.HasPrefix(tail, "releases/") && tail != "releases/latest" {
		clean := tail
		if i := strings.IndexByte(clean, '?'); i >= 0 {
			clean = clean[:i]
		}
		p := filepath.Join(s.opts.ReleasesDir, strings.TrimPrefix(clean, "releases/"))
		logger.Debug("Attempting to serve release file", logger.Fields{"path": p})
		if fileExists(p) {
			return p, true
		}
	}

	return "", false
}
