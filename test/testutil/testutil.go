// Package testutil provides shared fixtures for mirror tests: a stub
// upstream marketplace server and helpers to build extension archives on
// disk.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mholt/archives"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/zedex/pkg/model"
)

// Upstream is a stub marketplace and release service for tests.
type Upstream struct {
	Server *httptest.Server

	// Index is served on /extensions, keyed by the provides filter. The
	// empty key answers the unfiltered request.
	Index map[string]model.Extensions
	// Versions is served on /extensions/{id}.
	Versions map[string]model.Extensions
	// Archives is served on the extension download endpoints, keyed by
	// "id" or "id@version".
	Archives map[string][]byte
	// Releases is served on /api/releases/latest, keyed by
	// "asset-os-arch".
	Releases map[string]model.ReleaseVersion
	// AssetBodies is served on release asset URLs, keyed by URL path.
	AssetBodies map[string][]byte
}

// NewUpstream starts a stub upstream. The caller owns the server and must
// Close it; t.Cleanup takes care of that.
func NewUpstream(t *testing.T) *Upstream {
	t.Helper()

	u := &Upstream{
		Index:       map[string]model.Extensions{},
		Versions:    map[string]model.Extensions{},
		Archives:    map[string][]byte{},
		Releases:    map[string]model.ReleaseVersion{},
		AssetBodies: map[string][]byte{},
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.handle))
	t.Cleanup(u.Server.Close)
	return u
}

// URL returns the stub's base URL, used for both the API and release
// origins.
func (u *Upstream) URL() string {
	return u.Server.URL
}

func (u *Upstream) handle(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case path == "/extensions":
		writeWrapped(w, u.Index[r.URL.Query().Get("provides")])

	case path == "/api/releases/latest":
		key := r.URL.Query().Get("asset") + "-" + r.URL.Query().Get("os") + "-" + r.URL.Query().Get("arch")
		rel, ok := u.Releases[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rel)

	case strings.HasSuffix(path, "/download"):
		// /extensions/{id}/download or /extensions/{id}/{version}/download
		parts := strings.Split(strings.Trim(path, "/"), "/")
		var key string
		switch len(parts) {
		case 3:
			key = parts[1]
		case 4:
			key = parts[1] + "@" + parts[2]
		}
		body, ok := u.Archives[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/gzip")
		_, _ = w.Write(body)

	case strings.HasPrefix(path, "/extensions/"):
		id := strings.TrimPrefix(path, "/extensions/")
		versions, ok := u.Versions[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeWrapped(w, versions)

	default:
		body, ok := u.AssetBodies[path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}
}

func writeWrapped(w http.ResponseWriter, exts model.Extensions) {
	if exts == nil {
		exts = model.Extensions{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(model.WrappedExtensions{Data: exts})
}

// BuildArchive creates a gzipped tarball at dest containing the given
// files, the same layout real extension archives use.
func BuildArchive(t *testing.T, dest string, files map[string]string) {
	t.Helper()
	ctx := context.Background()

	srcDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(srcDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	srcRoot := filepath.ToSlash(srcDir)
	if !strings.HasSuffix(srcRoot, "/") {
		srcRoot += "/"
	}
	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{srcRoot: ""})
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	out, err := os.Create(dest)
	require.NoError(t, err)
	defer func() { _ = out.Close() }()

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}
	require.NoError(t, format.Archive(ctx, out, archiveFiles))
}

// SeedExtension writes a minimal cached extension: the latest archive under
// the extension's directory.
func SeedExtension(t *testing.T, extensionsDir, id string) string {
	t.Helper()
	dest := filepath.Join(extensionsDir, id, id+".tgz")
	BuildArchive(t, dest, map[string]string{"extension.toml": "id = \"" + id + "\"\n"})
	return dest
}
