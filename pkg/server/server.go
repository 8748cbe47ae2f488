// Package server implements the mirror's HTTP surface: catalog listing,
// update checks, archive downloads with tiered cache resolution, release
// manifests, and transparent proxying of cache misses to the upstream.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glorpus-work/zedex/internal/logger"
	"github.com/glorpus-work/zedex/pkg/cache"
)

// Options configure the mirror server.
type Options struct {
	Host string
	Port int

	// ExtensionsDir is the root of the extension cache tree.
	ExtensionsDir string
	// ReleasesDir is the root of the release cache tree. Empty disables the
	// release endpoints' local lookups.
	ReleasesDir string

	// ProxyMode forwards cache misses to the upstream instead of 404ing.
	ProxyMode bool
	// Domain, when set, replaces the upstream origin in release manifest
	// URLs so clients download archives from this mirror.
	Domain string

	// APIBaseURL and ReleasesBaseURL are the upstream origins used in proxy
	// mode.
	APIBaseURL      string
	ReleasesBaseURL string
	// UserAgent sent on proxied requests.
	UserAgent string
	// HTTPTimeout bounds proxied requests. Zero means 30 seconds.
	HTTPTimeout time.Duration

	// Version is reported by the health endpoint.
	Version string
}

// Server is the mirror HTTP server. The start instant is captured once at
// construction and carried in the struct; nothing here is global.
type Server struct {
	opts      Options
	layout    cache.Layout
	proxy     *http.Client
	metrics   *metrics
	startedAt time.Time
}

// New builds a mirror server over the given cache tree.
func New(opts Options) *Server {
	timeout := opts.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "zedex/1.0"
	}
	return &Server{
		opts:      opts,
		layout:    cache.NewLayout(opts.ExtensionsDir, opts.ReleasesDir),
		proxy:     &http.Client{Timeout: timeout},
		metrics:   newMetrics(),
		startedAt: time.Now(),
	}
}

// Router assembles the chi router with every mirror route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logger.GetLogger(),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Get("/extensions", s.handleExtensionsIndex)
	r.Get("/extensions/updates", s.handleExtensionUpdates)
	r.Get("/extensions/{id}", s.handleExtensionVersions)
	r.Get("/extensions/{id}/download", s.handleDownloadExtension)
	r.Get("/extensions/{id}/{version}/download", s.handleDownloadExtensionVersion)

	r.Get("/api/releases/latest", s.handleLatestRelease)
	r.Get("/api/releases/{channel}/latest", s.handleLatestRelease)
	r.Get("/api/releases/{channel}/{version}/{filename}", s.handleReleaseFile)

	// Specific routes above win; everything else under /api falls through to
	// the upstream proxy.
	r.Get("/api/*", s.handleProxyAPI)

	if s.opts.ReleasesDir != "" {
		r.Mount("/releases", http.StripPrefix("/releases", http.FileServer(http.Dir(s.opts.ReleasesDir))))
	}
	r.Mount("/extensions-archive", http.StripPrefix("/extensions-archive", http.FileServer(http.Dir(s.opts.ExtensionsDir))))

	return r
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)

	mode := "LOCAL"
	if s.opts.ProxyMode {
		mode = "PROXY"
	}
	logger.Info("Starting mirror server", logger.Fields{
		"addr":           addr,
		"mode":           mode,
		"extensions_dir": s.opts.ExtensionsDir,
		"releases_dir":   s.opts.ReleasesDir,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
