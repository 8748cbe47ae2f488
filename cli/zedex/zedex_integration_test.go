//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/zedex/pkg/cache"
	"github.com/glorpus-work/zedex/pkg/model"
)

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

func TestVersionCommand(t *testing.T) {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	cmd := newRootCmd()
	cmd.SetArgs([]string{"version"})
	err := cmd.ExecuteContext(context.Background())

	_ = w.Close()
	os.Stdout = oldStdout

	require.NoError(t, err, "version command should not return an error")

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	assert.Contains(t, output, "zedex version", "version output should contain 'zedex version'")
}

func TestConfigInitAndGet(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", configPath, "config", "init"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.FileExists(t, configPath)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	cmd = newRootCmd()
	cmd.SetArgs([]string{"--config", configPath, "config", "get", "upstream.api_base_url"})
	err := cmd.ExecuteContext(context.Background())

	_ = w.Close()
	os.Stdout = oldStdout

	require.NoError(t, err)

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	assert.Contains(t, buf.String(), "https://api.zed.dev")
}

func TestGetExtensionIndexCommand(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/extensions", r.URL.Path)
		_ = json.NewEncoder(w).Encode(model.WrappedExtensions{Data: model.Extensions{
			{ID: "html", Name: "HTML", Version: "1.0.0", SchemaVersion: 1, DownloadCount: 42},
		}})
	}))
	defer upstream.Close()

	root := t.TempDir()
	configPath := filepath.Join(root, "config.yaml")
	configBody := "upstream:\n  api_base_url: " + upstream.URL + "\nsettings:\n  root_dir: " + root + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configBody), 0o644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", configPath, "get", "extension-index"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	layout := cache.NewLayout(root, filepath.Join(root, "releases"))
	data, err := os.ReadFile(layout.CatalogPath())
	require.NoError(t, err)

	var wrapped model.WrappedExtensions
	require.NoError(t, json.Unmarshal(data, &wrapped))
	require.Len(t, wrapped.Data, 1)
	assert.Equal(t, "html", wrapped.Data[0].ID)
}
