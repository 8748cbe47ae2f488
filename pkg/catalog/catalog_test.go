package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glorpus-work/zedex/pkg/client/mocks"
	"github.com/glorpus-work/zedex/pkg/errors"
	"github.com/glorpus-work/zedex/pkg/model"
)

func TestBuildMergesCapabilityFetches(t *testing.T) {
	ctrl := gomock.NewController(t)
	mc := mocks.NewMockClient(ctrl)

	unfiltered := model.Extensions{
		{ID: "html", Version: "1.0.0", DownloadCount: 10, Provides: []string{"languages"}},
		{ID: "catppuccin", Version: "0.5.0", DownloadCount: 500, Provides: []string{"themes"}},
	}
	mc.EXPECT().GetExtensionsIndex(gomock.Any(), "").Return(unfiltered, nil)
	// The capability fanout re-fetches per tag; the languages fetch returns
	// a newer snapshot for html which must win the merge.
	mc.EXPECT().GetExtensionsIndex(gomock.Any(), "languages").Return(model.Extensions{
		{ID: "html", Version: "1.1.0", DownloadCount: 10, Provides: []string{"languages"}},
	}, nil)
	mc.EXPECT().GetExtensionsIndex(gomock.Any(), "themes").Return(model.Extensions{
		{ID: "catppuccin", Version: "0.5.0", DownloadCount: 500, Provides: []string{"themes"}},
	}, nil)

	exts, err := Build(context.Background(), mc, nil)
	require.NoError(t, err)
	require.Len(t, exts, 2)

	// Sorted by download count, highest first.
	assert.Equal(t, "catppuccin", exts[0].ID)
	assert.Equal(t, "html", exts[1].ID)
	assert.Equal(t, "1.1.0", exts[1].Version, "later fetch wins the id merge")
}

func TestBuildWithExplicitProvides(t *testing.T) {
	ctrl := gomock.NewController(t)
	mc := mocks.NewMockClient(ctrl)

	mc.EXPECT().GetExtensionsIndex(gomock.Any(), "themes").Return(model.Extensions{
		{ID: "catppuccin", DownloadCount: 500},
	}, nil)

	exts, err := Build(context.Background(), mc, []string{"themes"})
	require.NoError(t, err)
	require.Len(t, exts, 1)
	assert.Equal(t, "catppuccin", exts[0].ID)
}

func TestBuildFailsFast(t *testing.T) {
	ctrl := gomock.NewController(t)
	mc := mocks.NewMockClient(ctrl)

	mc.EXPECT().GetExtensionsIndex(gomock.Any(), "").Return(model.Extensions{
		{ID: "html", Provides: []string{"languages"}},
	}, nil)
	mc.EXPECT().GetExtensionsIndex(gomock.Any(), "languages").
		Return(nil, errors.ErrUpstreamStatus)

	exts, err := Build(context.Background(), mc, nil)
	require.Error(t, err)
	assert.Nil(t, exts, "a partial catalog is never returned")
	assert.ErrorIs(t, err, errors.ErrUpstreamStatus)
}

func TestSortByDownloadsIsStable(t *testing.T) {
	exts := model.Extensions{
		{ID: "a", DownloadCount: 5},
		{ID: "b", DownloadCount: 10},
		{ID: "c", DownloadCount: 5},
	}
	SortByDownloads(exts)

	assert.Equal(t, "b", exts[0].ID)
	assert.Equal(t, "a", exts[1].ID, "ties keep their relative order")
	assert.Equal(t, "c", exts[2].ID)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extensions.json")
	exts := model.Extensions{{ID: "html", Version: "1.0.0", DownloadCount: 10}}

	require.NoError(t, Save(path, exts))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, exts, loaded)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, errors.ErrCatalogMissing)

	path := filepath.Join(t.TempDir(), "extensions.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, errors.ErrCatalogParse)
}

func TestEnsurePrefersExistingCatalog(t *testing.T) {
	ctrl := gomock.NewController(t)
	mc := mocks.NewMockClient(ctrl)
	// No client expectations: an existing catalog must not hit upstream.

	path := filepath.Join(t.TempDir(), "extensions.json")
	require.NoError(t, Save(path, model.Extensions{{ID: "html"}}))

	exts, err := Ensure(context.Background(), mc, path, nil)
	require.NoError(t, err)
	require.Len(t, exts, 1)
	assert.Equal(t, "html", exts[0].ID)
}

func TestEnsureBuildsAndPersists(t *testing.T) {
	ctrl := gomock.NewController(t)
	mc := mocks.NewMockClient(ctrl)

	mc.EXPECT().GetExtensionsIndex(gomock.Any(), "").Return(model.Extensions{
		{ID: "html", DownloadCount: 10},
	}, nil)

	path := filepath.Join(t.TempDir(), "extensions.json")
	exts, err := Ensure(context.Background(), mc, path, nil)
	require.NoError(t, err)
	require.Len(t, exts, 1)

	// The built catalog was persisted for the next run.
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, exts, loaded)
}
