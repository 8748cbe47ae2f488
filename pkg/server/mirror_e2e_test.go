package server_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/zedex/pkg/cache"
	"github.com/glorpus-work/zedex/pkg/catalog"
	"github.com/glorpus-work/zedex/pkg/client"
	"github.com/glorpus-work/zedex/pkg/download"
	"github.com/glorpus-work/zedex/pkg/model"
	"github.com/glorpus-work/zedex/pkg/server"
	"github.com/glorpus-work/zedex/pkg/tracker"
	"github.com/glorpus-work/zedex/test/testutil"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Acquire from a stub upstream, then serve the mirrored content back out.
func TestMirrorRoundTrip(t *testing.T) {
	upstream := testutil.NewUpstream(t)
	upstream.Index[""] = model.Extensions{
		{ID: "html", Name: "HTML", Version: "1.0.0", DownloadCount: 10},
	}

	archivePath := filepath.Join(t.TempDir(), "html.tgz")
	testutil.BuildArchive(t, archivePath, map[string]string{"extension.toml": "id = \"html\"\n"})
	archiveBytes, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	upstream.Archives["html"] = archiveBytes

	root := t.TempDir()
	layout := cache.NewLayout(root, filepath.Join(root, "releases"))
	c := client.New(client.Options{APIBaseURL: upstream.URL(), ReleasesBaseURL: upstream.URL()})

	exts, err := catalog.Ensure(context.Background(), c, layout.CatalogPath(), nil)
	require.NoError(t, err)
	require.Len(t, exts, 1)

	orch := &download.Orchestrator{Client: c}
	result, err := orch.DownloadAll(context.Background(), exts, layout, tracker.New(), download.Options{})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", result.Extensions["html"])

	srv := server.New(server.Options{
		Host:          "127.0.0.1",
		ExtensionsDir: root,
		ReleasesDir:   filepath.Join(root, "releases"),
		Version:       "test",
	})
	handler := srv.Router()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/extensions/html/download", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/gzip", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), gzipMagic), "served archive is a real gzip stream")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/extensions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

// A seeded cache serves without ever touching the network.
func TestServeSeededCacheOffline(t *testing.T) {
	root := t.TempDir()
	archivePath := testutil.SeedExtension(t, root, "catppuccin")

	srv := server.New(server.Options{
		Host:          "127.0.0.1",
		ExtensionsDir: root,
		ReleasesDir:   filepath.Join(root, "releases"),
		Version:       "test",
	})
	handler := srv.Router()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/extensions/catppuccin/download", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	seeded, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	assert.Equal(t, seeded, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
