package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/zedex/pkg/errors"
	"github.com/glorpus-work/zedex/pkg/model"
)

func TestGetExtensionsIndex(t *testing.T) {
	var gotProvides, gotUserAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/extensions", r.URL.Path)
		gotProvides = r.URL.Query().Get("provides")
		gotUserAgent = r.Header.Get("User-Agent")
		_ = json.NewEncoder(w).Encode(model.WrappedExtensions{Data: model.Extensions{
			{ID: "html", Version: "1.0.0"},
		}})
	}))
	defer ts.Close()

	c := New(Options{APIBaseURL: ts.URL, UserAgent: "zedex-test"})

	exts, err := c.GetExtensionsIndex(context.Background(), "languages")
	require.NoError(t, err)
	require.Len(t, exts, 1)
	assert.Equal(t, "html", exts[0].ID)
	assert.Equal(t, "languages", gotProvides)
	assert.Equal(t, "zedex-test", gotUserAgent)
}

func TestGetExtensionVersions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/extensions/html", r.URL.Path)
		_ = json.NewEncoder(w).Encode(model.WrappedExtensions{Data: model.Extensions{
			{ID: "html", Version: "1.1.0"},
			{ID: "html", Version: "1.0.0"},
		}})
	}))
	defer ts.Close()

	c := New(Options{APIBaseURL: ts.URL})
	versions, err := c.GetExtensionVersions(context.Background(), "html")
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestDownloadExtensionArchiveEndpoints(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Length", "7")
		_, _ = w.Write([]byte("archive"))
	}))
	defer ts.Close()

	c := New(Options{APIBaseURL: ts.URL})

	data, err := c.DownloadExtensionArchive(context.Background(), "html", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "archive", string(data))
	assert.Equal(t, "/extensions/html/download", gotPath)

	var lastDownloaded, lastTotal int64
	_, err = c.DownloadExtensionArchive(context.Background(), "html", "1.0.0",
		func(downloaded, total int64) {
			lastDownloaded, lastTotal = downloaded, total
		})
	require.NoError(t, err)
	assert.Equal(t, "/extensions/html/1.0.0/download", gotPath)
	assert.Equal(t, int64(7), lastDownloaded, "progress reports the full body once read")
	assert.Equal(t, int64(7), lastTotal)
}

func TestGetLatestReleaseVersion(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/releases/latest", r.URL.Path)
		assert.Equal(t, "zed", r.URL.Query().Get("asset"))
		assert.Equal(t, "linux", r.URL.Query().Get("os"))
		assert.Equal(t, "x86_64", r.URL.Query().Get("arch"))
		_ = json.NewEncoder(w).Encode(model.ReleaseVersion{Version: "0.153.0", URL: "https://zed.dev/x"})
	}))
	defer ts.Close()

	c := New(Options{ReleasesBaseURL: ts.URL})
	rel, err := c.GetLatestReleaseVersion(context.Background(), "zed", "linux", "x86_64")
	require.NoError(t, err)
	assert.Equal(t, "0.153.0", rel.Version)
}

func TestDownloadReleaseAsset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("binary"))
	}))
	defer ts.Close()

	c := New(Options{})
	data, err := c.DownloadReleaseAsset(context.Background(),
		model.ReleaseVersion{Version: "0.153.0", URL: ts.URL + "/releases/0.153.0/zed.tar.gz"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "binary", string(data))
}

func TestNon200IsAnUpstreamStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := New(Options{APIBaseURL: ts.URL})

	_, err := c.GetExtensionsIndex(context.Background(), "")
	assert.ErrorIs(t, err, errors.ErrUpstreamStatus)

	_, err = c.DownloadExtensionArchive(context.Background(), "html", "", nil)
	assert.ErrorIs(t, err, errors.ErrUpstreamStatus)
}

func TestUnreachableUpstreamIsARequestError(t *testing.T) {
	c := New(Options{APIBaseURL: "http://127.0.0.1:1"})
	_, err := c.GetExtensionsIndex(context.Background(), "")
	assert.ErrorIs(t, err, errors.ErrUpstreamRequest)
}
