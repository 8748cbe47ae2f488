// Package cache models the on-disk cache shared by the acquisition pipeline
// and the mirror server. Several layouts coexist in one tree: the current
// per-extension directories with latest and versioned archives, the legacy
// flat files from older runs, and the release manifest/archive tree. The
// Layout type owns every path rule; resolution across layouts is an explicit
// ordered strategy chain.
package cache

import (
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/zedex/pkg/fsutil"
)

// Well-known file names inside the cache tree.
const (
	// CatalogFileName is the persisted extension catalog at the cache root.
	CatalogFileName = "extensions.json"
	// TrackerFileName is the persisted version tracker at the cache root.
	TrackerFileName = "version_tracker.json"
	// VersionsFileName is the per-extension version metadata file.
	VersionsFileName = "versions.json"
)

// Layout resolves every path inside the cache tree. The zero value is not
// usable; construct it with NewLayout.
type Layout struct {
	extensionsDir string
	releasesDir   string
}

// NewLayout builds a layout over the given extension and release directories.
func NewLayout(extensionsDir, releasesDir string) Layout {
	return Layout{extensionsDir: extensionsDir, releasesDir: releasesDir}
}

// ExtensionsDir returns the root of the extension cache tree.
func (l Layout) ExtensionsDir() string { return l.extensionsDir }

// ReleasesDir returns the root of the release cache tree.
func (l Layout) ReleasesDir() string { return l.releasesDir }

// ExtensionDir returns the per-extension cache subdirectory.
func (l Layout) ExtensionDir(id string) string {
	return filepath.Join(l.extensionsDir, id)
}

// LatestArchivePath returns the path of the latest archive for an extension.
func (l Layout) LatestArchivePath(id string) string {
	return filepath.Join(l.extensionsDir, id, id+".tgz")
}

// VersionedArchivePath returns the path of one specific archived version.
func (l Layout) VersionedArchivePath(id, version string) string {
	return filepath.Join(l.extensionsDir, id, fmt.Sprintf("%s-%s.tgz", id, version))
}

// LegacyArchivePath returns the flat single-file path older runs wrote.
func (l Layout) LegacyArchivePath(id string) string {
	return filepath.Join(l.extensionsDir, id+".tar.gz")
}

// VersionsPath returns the per-extension version metadata file.
func (l Layout) VersionsPath(id string) string {
	return filepath.Join(l.extensionsDir, id, VersionsFileName)
}

// CatalogPath returns the persisted catalog file.
func (l Layout) CatalogPath() string {
	return filepath.Join(l.extensionsDir, CatalogFileName)
}

// TrackerPath returns the persisted version tracker file.
func (l Layout) TrackerPath() string {
	return filepath.Join(l.extensionsDir, TrackerFileName)
}

// ReleaseManifestPath returns the cached release manifest for one
// asset/platform combination.
func (l Layout) ReleaseManifestPath(asset, osName, arch string) string {
	return filepath.Join(l.releasesDir, fmt.Sprintf("%s-%s-%s.json", asset, osName, arch))
}

// ReleaseArchiveDir returns the directory holding release archives for one
// version.
func (l Layout) ReleaseArchiveDir(version string) string {
	return filepath.Join(l.releasesDir, version)
}

// ReleaseArchivePath returns the cached release archive for one version and
// asset/platform combination.
func (l Layout) ReleaseArchivePath(version, asset, osName, arch string) string {
	return filepath.Join(l.releasesDir, version, fmt.Sprintf("%s-%s-%s.tar.gz", asset, osName, arch))
}

// ReleaseFilePath returns an arbitrary file under one release version
// directory, as addressed by the release download endpoint.
func (l Layout) ReleaseFilePath(version, filename string) string {
	return filepath.Join(l.releasesDir, version, filename)
}

// EnsureExtensionDir creates the per-extension cache subdirectory.
func (l Layout) EnsureExtensionDir(id string) error {
	return fsutil.EnsureDir(l.ExtensionDir(id))
}
