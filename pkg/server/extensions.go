package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/glorpus-work/zedex/internal/logger"
	"github.com/glorpus-work/zedex/pkg/cache"
	"github.com/glorpus-work/zedex/pkg/catalog"
	zedexerr "github.com/glorpus-work/zedex/pkg/errors"
	"github.com/glorpus-work/zedex/pkg/model"
)

// handleExtensionsIndex serves the persisted catalog, filtered by the
// request's criteria.
func (s *Server) handleExtensionsIndex(w http.ResponseWriter, r *http.Request) {
	s.metrics.requestsTotal.WithLabelValues("extensions_index").Inc()

	exts, err := catalog.Load(s.layout.CatalogPath())
	if err != nil {
		if errors.Is(err, zedexerr.ErrCatalogMissing) {
			logger.Error("Extension catalog not found", logger.Fields{"error": err})
			writeError(w, http.StatusNotFound, fmt.Sprintf("Extensions file not found: %v", err))
			return
		}
		logger.Error("Failed to load extension catalog", logger.Fields{"error": err})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error parsing extensions file: %v", err))
		return
	}

	opts := model.FilterOptions{
		Text:     r.URL.Query().Get("filter"),
		Provides: r.URL.Query().Get("provides"),
	}
	if raw := r.URL.Query().Get("max_schema_version"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			opts.MaxSchemaVersion = v
			opts.HasMaxSchemaVersion = true
		}
	}

	filtered := exts.Filter(opts)
	logger.Info("Serving filtered extensions", logger.Fields{"count": len(filtered)})
	writeJSON(w, http.StatusOK, model.WrappedExtensions{Data: filtered})
}

// handleExtensionUpdates serves the update-check endpoint: the subset of the
// caller's extensions matching every version bound. An empty id set always
// short-circuits to an empty result.
func (s *Server) handleExtensionUpdates(w http.ResponseWriter, r *http.Request) {
	s.metrics.requestsTotal.WithLabelValues("extension_updates").Inc()

	query := r.URL.Query()
	idsParam := query.Get("ids")
	if idsParam == "" {
		logger.Info("No extensions to check for updates (empty ids parameter)")
		writeJSON(w, http.StatusOK, model.WrappedExtensions{Data: model.Extensions{}})
		return
	}

	opts := model.FilterOptions{
		IDs:               strings.Split(idsParam, ","),
		MinWasmAPIVersion: query.Get("min_wasm_api_version"),
		MaxWasmAPIVersion: query.Get("max_wasm_api_version"),
	}
	if raw := query.Get("min_schema_version"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			opts.MinSchemaVersion = v
			opts.HasMinSchemaVersion = true
		}
	}
	if raw := query.Get("max_schema_version"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			opts.MaxSchemaVersion = v
			opts.HasMaxSchemaVersion = true
		}
	}

	exts, err := catalog.Load(s.layout.CatalogPath())
	if err != nil {
		if !errors.Is(err, zedexerr.ErrCatalogMissing) {
			logger.Error("Failed to parse extension catalog for update check", logger.Fields{"error": err})
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error parsing extensions file: %v", err))
			return
		}
		logger.Error("Extension catalog not found for update check", logger.Fields{"error": err})
		if s.opts.ProxyMode {
			s.forward(w, r, s.opts.APIBaseURL+"/extensions/updates?"+query.Encode())
			return
		}
		writeError(w, http.StatusNotFound, fmt.Sprintf("Extensions file not found: %v", err))
		return
	}

	filtered := exts.Filter(opts)
	logger.Info("Serving extension updates", logger.Fields{"count": len(filtered)})
	writeJSON(w, http.StatusOK, model.WrappedExtensions{Data: filtered})
}

// handleExtensionVersions serves the per-extension versions.json.
func (s *Server) handleExtensionVersions(w http.ResponseWriter, r *http.Request) {
	s.metrics.requestsTotal.WithLabelValues("extension_versions").Inc()
	id := chi.URLParam(r, "id")

	data, err := os.ReadFile(s.layout.VersionsPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			if s.opts.ProxyMode {
				logger.Info("Versions file not found, proxying", logger.Fields{"id": id})
				s.forward(w, r, fmt.Sprintf("%s/extensions/%s", s.opts.APIBaseURL, id))
				return
			}
			logger.Error("Versions file not found", logger.Fields{"id": id})
			writeError(w, http.StatusNotFound, fmt.Sprintf("Extension versions not found for: %s", id))
			return
		}
		logger.Error("Failed to read versions file", logger.Fields{"id": id, "error": err})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error reading versions file: %v", err))
		return
	}

	var wrapped model.WrappedExtensions
	if err := json.Unmarshal(data, &wrapped); err != nil {
		logger.Error("Failed to parse versions file", logger.Fields{"id": id, "error": err})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error parsing versions file: %v", err))
		return
	}

	logger.Info("Serving extension versions", logger.Fields{"id": id, "count": len(wrapped.Data)})
	writeJSON(w, http.StatusOK, wrapped)
}

// handleDownloadExtension serves the best archive the cache can offer for an
// extension: the latest file, then the highest versioned archive on disk,
// then the legacy flat file, then the upstream in proxy mode.
func (s *Server) handleDownloadExtension(w http.ResponseWriter, r *http.Request) {
	s.metrics.requestsTotal.WithLabelValues("extension_download").Inc()
	id := chi.URLParam(r, "id")

	if art, ok := cache.NewLatestChain(s.layout).Resolve(id); ok {
		s.serveArchive(w, id, art)
		return
	}
	s.metrics.cacheMisses.Inc()

	if s.opts.ProxyMode {
		logger.Info("Extension not found locally, proxying", logger.Fields{"id": id})
		// The pinned bounds mirror what upstream clients send for an
		// unconstrained download.
		s.forward(w, r, fmt.Sprintf(
			"%s/extensions/%s/download?min_schema_version=0&max_schema_version=100&min_wasm_api_version=0.0.0&max_wasm_api_version=100.0.0",
			s.opts.APIBaseURL, id))
		return
	}

	logger.Error("Extension not found locally and proxy mode is off", logger.Fields{"id": id})
	writeError(w, http.StatusNotFound, fmt.Sprintf("Extension archive not found for id: %s", id))
}

// handleDownloadExtensionVersion serves one exact archived version. The
// tiered fallback does not apply to explicit-version requests.
func (s *Server) handleDownloadExtensionVersion(w http.ResponseWriter, r *http.Request) {
	s.metrics.requestsTotal.WithLabelValues("extension_download_version").Inc()
	id := chi.URLParam(r, "id")
	version := chi.URLParam(r, "version")

	if art, ok := cache.NewExactChain(s.layout, version).Resolve(id); ok {
		s.serveArchive(w, id, art)
		return
	}
	s.metrics.cacheMisses.Inc()

	if s.opts.ProxyMode {
		logger.Info("Extension version not found locally, proxying", logger.Fields{"id": id, "version": version})
		s.forward(w, r, fmt.Sprintf("%s/extensions/%s/%s/download", s.opts.APIBaseURL, id, version))
		return
	}

	logger.Error("Extension version not found locally", logger.Fields{"id": id, "version": version})
	writeError(w, http.StatusNotFound, fmt.Sprintf("Extension version archive not found: %s", version))
}

func (s *Server) serveArchive(w http.ResponseWriter, id string, art cache.Artifact) {
	data, err := os.ReadFile(art.Path)
	if err != nil {
		logger.Error("Failed to read archive file", logger.Fields{"id": id, "path": art.Path, "error": err})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error reading archive file: %v", err))
		return
	}

	s.metrics.cacheHits.WithLabelValues(art.Source).Inc()
	logger.Info("Serving extension archive", logger.Fields{
		"id":       id,
		"strategy": art.Source,
		"version":  art.Version,
	})
	w.Header().Set("Content-Type", "application/gzip")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
