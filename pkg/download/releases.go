package download

import (
	"context"
	"encoding/json"
	"os"

	"github.com/glorpus-work/zedex/internal/logger"
	"github.com/glorpus-work/zedex/pkg/cache"
	"github.com/glorpus-work/zedex/pkg/errors"
	"github.com/glorpus-work/zedex/pkg/fsutil"
)

// Platform identifies one release asset build.
type Platform struct {
	Asset string
	OS    string
	Arch  string
}

// DefaultPlatforms is the asset matrix mirrored by a release run.
// TODO: add windows builds once the upstream publishes them.
var DefaultPlatforms = []Platform{
	{Asset: "zed", OS: "linux", Arch: "x86_64"},
	{Asset: "zed-remote-server", OS: "linux", Arch: "x86_64"},
	{Asset: "zed", OS: "linux", Arch: "aarch64"},
	{Asset: "zed-remote-server", OS: "linux", Arch: "aarch64"},
	{Asset: "zed", OS: "macos", Arch: "x86_64"},
	{Asset: "zed-remote-server", OS: "macos", Arch: "x86_64"},
	{Asset: "zed", OS: "macos", Arch: "aarch64"},
}

// MirrorReleases fetches the latest release manifest and archive for every
// platform in the matrix. A platform's failure is logged and the remaining
// platforms still run.
func (o *Orchestrator) MirrorReleases(ctx context.Context, layout cache.Layout, platforms []Platform) error {
	if o.Client == nil {
		return errors.Wrap(errors.ErrUpstreamRequest, "no upstream client configured")
	}
	if len(platforms) == 0 {
		platforms = DefaultPlatforms
	}

	if err := fsutil.EnsureDir(layout.ReleasesDir()); err != nil {
		return errors.Wrap(err, "failed to create releases directory")
	}

	for _, p := range platforms {
		if err := o.mirrorRelease(ctx, layout, p); err != nil {
			logger.Error("Failed to mirror release", logger.Fields{
				"asset": p.Asset,
				"os":    p.OS,
				"arch":  p.Arch,
				"error": err,
			})
			o.Hooks.emit("error", p.Asset+"-"+p.OS+"-"+p.Arch, "release mirror failed")
		}
	}
	return nil
}

func (o *Orchestrator) mirrorRelease(ctx context.Context, layout cache.Layout, p Platform) error {
	key := p.Asset + "-" + p.OS + "-" + p.Arch

	rel, err := o.Client.GetLatestReleaseVersion(ctx, p.Asset, p.OS, p.Arch)
	if err != nil {
		return err
	}
	logger.Info("Latest release version", logger.Fields{"platform": key, "version": rel.Version})

	manifest, err := json.Marshal(rel)
	if err != nil {
		return errors.Wrap(err, "failed to marshal release manifest")
	}
	if err := fsutil.WriteFileAtomic(layout.ReleaseManifestPath(p.Asset, p.OS, p.Arch), manifest); err != nil {
		return errors.Wrap(err, "failed to write release manifest")
	}

	if err := fsutil.EnsureDir(layout.ReleaseArchiveDir(rel.Version)); err != nil {
		return errors.Wrap(err, "failed to create release version directory")
	}

	archivePath := layout.ReleaseArchivePath(rel.Version, p.Asset, p.OS, p.Arch)
	if fileExists(archivePath) {
		logger.Debug("Release archive already downloaded, skipping", logger.Fields{"platform": key, "version": rel.Version})
		o.Hooks.emit("skipped", key, "already downloaded")
		return nil
	}

	o.Hooks.emit("downloading", key, "downloading release "+rel.Version)
	data, err := o.Client.DownloadReleaseAsset(ctx, rel, o.progressFor(key))
	if err != nil {
		return err
	}
	if err := os.WriteFile(archivePath, data, fsutil.FileModeDefault); err != nil {
		return errors.Wrapf(err, "failed to write release archive %s", archivePath)
	}

	logger.Success("Mirrored release", logger.Fields{"platform": key, "version": rel.Version})
	o.Hooks.emit("done", key, "downloaded "+rel.Version)
	return nil
}
