package server

import (
	"net/http"
	"os"
	"time"

	"github.com/glorpus-work/zedex/internal/logger"
)

type healthResponse struct {
	Status           string `json:"status"`
	Reason           string `json:"reason"`
	Version          string `json:"version"`
	Timestamp        int64  `json:"timestamp"`
	Uptime           int64  `json:"uptime"`
	ExtensionsLoaded int    `json:"extensions_loaded"`
}

// handleHealth reports liveness. A mirror with an empty extension cache is
// considered broken and answers 500 so probes take it out of rotation.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.requestsTotal.WithLabelValues("health").Inc()
	logger.Debug("Health check requested")

	now := time.Now()
	health := healthResponse{
		Status:           "OK",
		Reason:           "Service is running",
		Version:          s.opts.Version,
		Timestamp:        now.Unix(),
		Uptime:           int64(now.Sub(s.startedAt).Seconds()),
		ExtensionsLoaded: s.extensionsLoaded(),
	}

	status := http.StatusOK
	if health.ExtensionsLoaded == 0 {
		health.Status = "ERROR"
		health.Reason = "No extensions found"
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, health)
}

func (s *Server) extensionsLoaded() int {
	entries, err := os.ReadDir(s.opts.ExtensionsDir)
	if err != nil {
		return 0
	}
	return len(entries)
}
