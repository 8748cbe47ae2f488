// Package download drives the concurrent acquisition of extension archives
// and release binaries from the upstream into the local cache.
package download

import (
	"time"

	"github.com/glorpus-work/zedex/pkg/client"
)

// Orchestrator ties the upstream client, the cache layout and the version
// tracker together for acquisition runs.
type Orchestrator struct {
	Client client.Client
	Hooks  Hooks // Hooks for progress and event notifications
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // downloading|skipped|done|error
	ID    string // extension id or asset identifier
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

func (h Hooks) emit(phase, id, msg string) {
	if h.OnEvent != nil {
		h.OnEvent(Event{Phase: phase, ID: id, Msg: msg})
	}
}

// Options control an acquisition run.
type Options struct {
	// AsyncMode launches one unthrottled task per extension. Fast, but the
	// upstream may rate limit the run.
	AsyncMode bool
	// AllVersions downloads every historical version instead of only the
	// latest archive.
	AllVersions bool
	// RateLimit is the pause between sequential version downloads of one
	// extension. It never delays separate extensions.
	RateLimit time.Duration
	// Concurrency bounds the worker pool in throttled mode; values below 1
	// fall back to one worker at a time.
	Concurrency int
}
