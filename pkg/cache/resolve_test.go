package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/zedex/pkg/model"
)

func newTestLayout(t *testing.T) Layout {
	t.Helper()
	root := t.TempDir()
	return NewLayout(root, filepath.Join(root, "releases"))
}

func writeArchive(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("archive"), 0o644))
}

func writeVersions(t *testing.T, layout Layout, id string, versions ...string) {
	t.Helper()
	exts := make(model.Extensions, 0, len(versions))
	for _, v := range versions {
		exts = append(exts, model.Extension{ID: id, Version: v})
	}
	data, err := json.Marshal(model.WrappedExtensions{Data: exts})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(layout.ExtensionDir(id), 0o755))
	require.NoError(t, os.WriteFile(layout.VersionsPath(id), data, 0o644))
}

func TestLatestChainPrefersLatestArchive(t *testing.T) {
	layout := newTestLayout(t)
	writeArchive(t, layout.LatestArchivePath("html"))
	writeArchive(t, layout.VersionedArchivePath("html", "1.0.0"))
	writeVersions(t, layout, "html", "1.0.0")

	art, ok := NewLatestChain(layout).Resolve("html")
	require.True(t, ok)
	assert.Equal(t, "latest", art.Source)
	assert.Equal(t, layout.LatestArchivePath("html"), art.Path)
}

func TestBestAvailablePicksHighestSemver(t *testing.T) {
	layout := newTestLayout(t)
	writeVersions(t, layout, "html", "1.2.0", "1.10.0", "0.9.0")
	writeArchive(t, layout.VersionedArchivePath("html", "1.2.0"))
	writeArchive(t, layout.VersionedArchivePath("html", "1.10.0"))
	writeArchive(t, layout.VersionedArchivePath("html", "0.9.0"))

	art, ok := NewLatestChain(layout).Resolve("html")
	require.True(t, ok)
	assert.Equal(t, "best-available", art.Source)
	assert.Equal(t, "1.10.0", art.Version, "1.10.0 orders above 1.2.0 numerically")
	assert.Equal(t, layout.VersionedArchivePath("html", "1.10.0"), art.Path)
}

func TestBestAvailableSkipsMissingAndUnparsable(t *testing.T) {
	layout := newTestLayout(t)
	writeVersions(t, layout, "html", "3.0.0", "not-a-version", "1.0.0")
	// 3.0.0 is listed but its archive is gone; not-a-version has a file but
	// cannot be ordered.
	writeArchive(t, layout.VersionedArchivePath("html", "not-a-version"))
	writeArchive(t, layout.VersionedArchivePath("html", "1.0.0"))

	art, ok := NewLatestChain(layout).Resolve("html")
	require.True(t, ok)
	assert.Equal(t, "1.0.0", art.Version)
}

func TestLegacyFallback(t *testing.T) {
	layout := newTestLayout(t)
	writeArchive(t, layout.LegacyArchivePath("html"))

	art, ok := NewLatestChain(layout).Resolve("html")
	require.True(t, ok)
	assert.Equal(t, "legacy", art.Source)
	assert.Equal(t, layout.LegacyArchivePath("html"), art.Path)
}

func TestLatestChainMiss(t *testing.T) {
	layout := newTestLayout(t)

	_, ok := NewLatestChain(layout).Resolve("html")
	assert.False(t, ok)
}

func TestExactChainDoesNotFallBack(t *testing.T) {
	layout := newTestLayout(t)
	writeArchive(t, layout.LatestArchivePath("html"))
	writeArchive(t, layout.VersionedArchivePath("html", "1.0.0"))
	writeVersions(t, layout, "html", "1.0.0")

	art, ok := NewExactChain(layout, "1.0.0").Resolve("html")
	require.True(t, ok)
	assert.Equal(t, "exact", art.Source)
	assert.Equal(t, "1.0.0", art.Version)

	// A version that was never archived stays a miss even though the latest
	// archive and another version exist.
	_, ok = NewExactChain(layout, "2.0.0").Resolve("html")
	assert.False(t, ok)
}
