package download

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/glorpus-work/zedex/internal/logger"
	"github.com/glorpus-work/zedex/pkg/cache"
	"github.com/glorpus-work/zedex/pkg/errors"
	"github.com/glorpus-work/zedex/pkg/fsutil"
	"github.com/glorpus-work/zedex/pkg/model"
	"github.com/glorpus-work/zedex/pkg/tracker"
)

// DownloadAll fetches the archives for every extension in exts into the
// cache, skipping artifacts already on disk, and returns the updated version
// tracker.
//
// Each worker mutates a private clone of the tracker; the clones are merged
// into the result only after their worker returns, so the download hot path
// never takes a lock. A single extension's failure is logged and skipped,
// never aborting the batch.
func (o *Orchestrator) DownloadAll(ctx context.Context, exts model.Extensions, layout cache.Layout, base *tracker.Tracker, opts Options) (*tracker.Tracker, error) {
	if o.Client == nil {
		return nil, errors.Wrap(errors.ErrUpstreamRequest, "no upstream client configured")
	}

	mode := "latest version only"
	if opts.AllVersions {
		mode = "all versions"
	}
	logger.Info("Downloading extensions", logger.Fields{
		"count": len(exts),
		"mode":  mode,
		"async": opts.AsyncMode,
	})

	result := base.Clone()
	results := make(chan *tracker.Tracker, len(exts))

	if opts.AsyncMode {
		// Fully parallel, no throttling. The upstream may rate limit this.
		logger.Warn("Using fully asynchronous mode - upstream rate limiting may kick in")
		var wg sync.WaitGroup
		for _, ext := range exts {
			wg.Add(1)
			go func(ext model.Extension) {
				defer wg.Done()
				results <- o.downloadExtension(ctx, ext, layout, base.Clone(), opts)
			}(ext)
		}
		wg.Wait()
	} else {
		concurrency := opts.Concurrency
		if concurrency < 1 {
			concurrency = 1
		}
		tasks := make(chan model.Extension)
		var wg sync.WaitGroup
		for w := 0; w < concurrency; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for ext := range tasks {
					results <- o.downloadExtension(ctx, ext, layout, base.Clone(), opts)
				}
			}()
		}
		for _, ext := range exts {
			tasks <- ext
		}
		close(tasks)
		wg.Wait()
	}

	close(results)
	for worker := range results {
		result.Merge(worker)
	}
	return result, nil
}

// downloadExtension fetches one extension's archives into its cache
// subdirectory, recording every successful write in the worker tracker.
func (o *Orchestrator) downloadExtension(ctx context.Context, ext model.Extension, layout cache.Layout, worker *tracker.Tracker, opts Options) *tracker.Tracker {
	if err := layout.EnsureExtensionDir(ext.ID); err != nil {
		logger.Error("Failed to create extension directory", logger.Fields{"id": ext.ID, "error": err})
		o.Hooks.emit("error", ext.ID, "failed to create cache directory")
		return worker
	}

	if opts.AllVersions {
		o.downloadAllVersions(ctx, ext, layout, worker, opts.RateLimit)
		return worker
	}

	latestPath := layout.LatestArchivePath(ext.ID)
	if fileExists(latestPath) && !worker.HasNewerVersion(ext) {
		logger.Debug("Latest version already downloaded, skipping", logger.Fields{"id": ext.ID})
		o.Hooks.emit("skipped", ext.ID, "already downloaded")
		return worker
	}

	o.Hooks.emit("downloading", ext.ID, "downloading latest version")
	data, err := o.Client.DownloadExtensionArchive(ctx, ext.ID, "", o.progressFor(ext.ID))
	if err != nil {
		logger.Error("Failed to download extension", logger.Fields{"id": ext.ID, "error": err})
		o.Hooks.emit("error", ext.ID, "download failed")
		return worker
	}
	if err := os.WriteFile(latestPath, data, fsutil.FileModeDefault); err != nil {
		logger.Error("Failed to write extension archive", logger.Fields{"id": ext.ID, "error": err})
		o.Hooks.emit("error", ext.ID, "write failed")
		return worker
	}

	worker.Update(ext)
	logger.Info("Downloaded extension", logger.Fields{"id": ext.ID, "version": ext.Version})
	o.Hooks.emit("done", ext.ID, "downloaded "+ext.Version)
	return worker
}

// downloadAllVersions persists the full version metadata and fetches every
// version not yet on disk, pausing rateLimit between consecutive versions of
// this extension.
func (o *Orchestrator) downloadAllVersions(ctx context.Context, ext model.Extension, layout cache.Layout, worker *tracker.Tracker, rateLimit time.Duration) {
	versions, err := o.Client.GetExtensionVersions(ctx, ext.ID)
	if err != nil {
		logger.Error("Failed to fetch version list", logger.Fields{"id": ext.ID, "error": err})
		o.Hooks.emit("error", ext.ID, "failed to fetch version list")
		return
	}

	if err := saveVersions(layout.VersionsPath(ext.ID), versions); err != nil {
		logger.Error("Failed to write versions file", logger.Fields{"id": ext.ID, "error": err})
	}

	for _, ver := range versions {
		path := layout.VersionedArchivePath(ext.ID, ver.Version)
		if fileExists(path) {
			logger.Debug("Version already downloaded, skipping", logger.Fields{"id": ext.ID, "version": ver.Version})
			worker.Update(ver)
			continue
		}

		o.Hooks.emit("downloading", ext.ID, "downloading version "+ver.Version)
		data, err := o.Client.DownloadExtensionArchive(ctx, ext.ID, ver.Version, o.progressFor(ext.ID))
		switch {
		case err != nil:
			logger.Error("Failed to download extension version", logger.Fields{
				"id":      ext.ID,
				"version": ver.Version,
				"error":   err,
			})
			o.Hooks.emit("error", ext.ID, "download failed for "+ver.Version)
		default:
			if writeErr := os.WriteFile(path, data, fsutil.FileModeDefault); writeErr != nil {
				logger.Error("Failed to write extension archive", logger.Fields{
					"id":      ext.ID,
					"version": ver.Version,
					"error":   writeErr,
				})
			} else {
				worker.Update(ver)
				logger.Info("Downloaded extension version", logger.Fields{"id": ext.ID, "version": ver.Version})
				o.Hooks.emit("done", ext.ID, "downloaded "+ver.Version)
			}
		}

		// The pause sits between sequential version downloads of this one
		// extension; separate extensions are never delayed by it.
		if rateLimit > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(rateLimit):
			}
		}
	}
}

// DownloadByID fetches the latest archive of one extension listed in exts.
func (o *Orchestrator) DownloadByID(ctx context.Context, id string, exts model.Extensions, layout cache.Layout) error {
	var found *model.Extension
	for i := range exts {
		if exts[i].ID == id {
			found = &exts[i]
			break
		}
	}
	if found == nil {
		return errors.Wrapf(errors.ErrExtensionNotFound, "%s", id)
	}

	if err := layout.EnsureExtensionDir(id); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", id)
	}

	logger.Info("Downloading extension", logger.Fields{"id": id, "version": found.Version})
	data, err := o.Client.DownloadExtensionArchive(ctx, id, "", o.progressFor(id))
	if err != nil {
		return err
	}
	if err := os.WriteFile(layout.LatestArchivePath(id), data, fsutil.FileModeDefault); err != nil {
		return errors.Wrapf(err, "failed to write archive for %s", id)
	}

	logger.Success("Downloaded extension", logger.Fields{"id": id})
	return nil
}

func (o *Orchestrator) progressFor(id string) func(downloaded, total int64) {
	return func(downloaded, total int64) {
		logger.Debug("Download progress", logger.Fields{
			"id":         id,
			"downloaded": downloaded,
			"total":      total,
		})
	}
}

func saveVersions(path string, versions model.Extensions) error {
	data, err := json.MarshalIndent(model.WrappedExtensions{Data: versions}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal versions")
	}
	return fsutil.WriteFileAtomic(path, data)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
