package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/glorpus-work/zedex/internal/logger"
	"github.com/glorpus-work/zedex/pkg/model"
)

// handleLatestRelease serves the cached release manifest for the requested
// asset and platform, rewriting its download URL to this mirror's domain
// when one is configured.
func (s *Server) handleLatestRelease(w http.ResponseWriter, r *http.Request) {
	s.metrics.requestsTotal.WithLabelValues("release_latest").Inc()

	query := r.URL.Query()
	osName := query.Get("os")
	if osName == "" {
		osName = "macos"
	}
	arch := query.Get("arch")
	if arch == "" {
		arch = "x86_64"
	}
	asset := query.Get("asset")
	if asset == "" {
		asset = "zed"
	}

	fields := logger.Fields{"asset": asset, "os": osName, "arch": arch}
	if channel := chi.URLParam(r, "channel"); channel != "" {
		fields["channel"] = channel
	}
	logger.Info("Latest version request", fields)

	if s.opts.ReleasesDir == "" {
		writeError(w, http.StatusNotFound, "Releases directory not configured")
		return
	}

	manifestPath := s.layout.ReleaseManifestPath(asset, osName, arch)
	if !fileExists(manifestPath) {
		if s.opts.ProxyMode {
			s.forward(w, r, fmt.Sprintf("%s/api/releases/latest?asset=%s&os=%s&arch=%s",
				s.opts.ReleasesBaseURL, asset, osName, arch))
			return
		}
		writeError(w, http.StatusNotFound, fmt.Sprintf(
			"Version file not found for asset %s on platform %s-%s", asset, osName, arch))
		return
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		logger.Error("Failed to read version file", logger.Fields{"path": manifestPath, "error": err})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error reading version file: %v", err))
		return
	}

	var rel model.ReleaseVersion
	if err := json.Unmarshal(data, &rel); err != nil {
		logger.Error("Failed to parse version file", logger.Fields{"path": manifestPath, "error": err})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error parsing version file: %v", err))
		return
	}

	if s.opts.Domain != "" {
		rel.URL = strings.Replace(rel.URL, s.opts.ReleasesBaseURL, s.opts.Domain, 1)
	}

	writeJSON(w, http.StatusOK, rel)
}

// handleReleaseFile serves a cached release archive addressed by channel,
// version, and filename. Misses are a hard 404; this endpoint never
// proxies, so clients cannot be silently handed an unmirrored binary.
func (s *Server) handleReleaseFile(w http.ResponseWriter, r *http.Request) {
	s.metrics.requestsTotal.WithLabelValues("release_file").Inc()

	channel := chi.URLParam(r, "channel")
	version := chi.URLParam(r, "version")
	filename := chi.URLParam(r, "filename")
	logger.Info("Release file request", logger.Fields{
		"channel":  channel,
		"version":  version,
		"filename": filename,
	})

	if s.opts.ReleasesDir != "" {
		path := s.layout.ReleaseFilePath(version, filename)
		if fileExists(path) {
			s.serveReleaseFile(w, path)
			return
		}
		logger.Warn("Release file not found", logger.Fields{"path": path})
	}

	writeError(w, http.StatusNotFound, fmt.Sprintf(
		"Release file not found for %s %s %s", channel, version, filename))
}

func (s *Server) serveReleaseFile(w http.ResponseWriter, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Failed to read release file", logger.Fields{"path": path, "error": err})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error reading release file: %v", err))
		return
	}

	contentType := contentTypeForFile(path)
	logger.Info("Serving release file", logger.Fields{"path": path, "content_type": contentType})
	s.metrics.cacheHits.WithLabelValues("release").Inc()
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
