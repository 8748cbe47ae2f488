// Package tracker maintains the per-extension last-downloaded-version ledger
// used to skip redundant downloads across acquisition runs.
package tracker

import (
	"encoding/json"
	"os"

	"github.com/glorpus-work/zedex/pkg/errors"
	"github.com/glorpus-work/zedex/pkg/fsutil"
	"github.com/glorpus-work/zedex/pkg/model"
)

// Tracker maps an extension id to the version string last written to the
// cache. A Tracker is not safe for concurrent use; workers take a Clone and
// the results are merged after they finish.
type Tracker struct {
	Extensions map[string]string `json:"extensions"`
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{Extensions: make(map[string]string)}
}

// Update records the extension's version as downloaded.
func (t *Tracker) Update(ext model.Extension) {
	if t.Extensions == nil {
		t.Extensions = make(map[string]string)
	}
	t.Extensions[ext.ID] = ext.Version
}

// Merge folds other into t, overwriting existing keys. Last write wins per
// key, so merging the same tracker twice is a no-op.
func (t *Tracker) Merge(other *Tracker) {
	if other == nil {
		return
	}
	if t.Extensions == nil {
		t.Extensions = make(map[string]string, len(other.Extensions))
	}
	for id, v := range other.Extensions {
		t.Extensions[id] = v
	}
}

// Clone returns an independent copy for a worker to mutate.
func (t *Tracker) Clone() *Tracker {
	clone := &Tracker{Extensions: make(map[string]string, len(t.Extensions))}
	for id, v := range t.Extensions {
		clone.Extensions[id] = v
	}
	return clone
}

// HasNewerVersion reports whether the extension's version differs from what
// was last downloaded. Extensions never seen before always count as newer.
func (t *Tracker) HasNewerVersion(ext model.Extension) bool {
	tracked, ok := t.Extensions[ext.ID]
	if !ok {
		return true
	}
	return tracked != ext.Version
}

// Len returns the number of tracked extensions.
func (t *Tracker) Len() int {
	return len(t.Extensions)
}

// Load reads a persisted tracker from path. A missing or unreadable file
// yields an empty tracker; acquisition must be able to start from nothing.
func Load(path string) *Tracker {
	data, err := os.ReadFile(path)
	if err != nil {
		return New()
	}
	var t Tracker
	if err := json.Unmarshal(data, &t); err != nil {
		return New()
	}
	if t.Extensions == nil {
		t.Extensions = make(map[string]string)
	}
	return &t
}

// Save persists the tracker to path, pretty-printed, rewritten wholesale.
func (t *Tracker) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal version tracker")
	}
	if err := fsutil.WriteFileAtomic(path, data); err != nil {
		return errors.Wrap(err, "failed to write version tracker")
	}
	return nil
}
