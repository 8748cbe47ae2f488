package tracker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/zedex/pkg/model"
)

func TestHasNewerVersion(t *testing.T) {
	tr := New()
	tr.Update(model.Extension{ID: "html", Version: "1.0.0"})

	assert.False(t, tr.HasNewerVersion(model.Extension{ID: "html", Version: "1.0.0"}),
		"exact tracked version is not newer")
	assert.True(t, tr.HasNewerVersion(model.Extension{ID: "html", Version: "1.1.0"}),
		"any differing version counts as newer")
	assert.True(t, tr.HasNewerVersion(model.Extension{ID: "html", Version: "0.9.0"}),
		"older versions also count as newer; the ledger only knows difference")
	assert.True(t, tr.HasNewerVersion(model.Extension{ID: "unseen", Version: "1.0.0"}),
		"unknown extensions always count as newer")
}

func TestMergeLastWriteWins(t *testing.T) {
	base := New()
	base.Update(model.Extension{ID: "html", Version: "1.0.0"})
	base.Update(model.Extension{ID: "toml", Version: "0.3.0"})

	worker := New()
	worker.Update(model.Extension{ID: "html", Version: "1.1.0"})
	worker.Update(model.Extension{ID: "catppuccin", Version: "0.5.0"})

	base.Merge(worker)

	assert.Equal(t, "1.1.0", base.Extensions["html"], "merged value overwrites")
	assert.Equal(t, "0.3.0", base.Extensions["toml"], "untouched keys survive")
	assert.Equal(t, "0.5.0", base.Extensions["catppuccin"], "new keys are added")
	assert.Equal(t, 3, base.Len())

	// Merging the same tracker again changes nothing.
	before := base.Clone()
	base.Merge(worker)
	assert.Equal(t, before.Extensions, base.Extensions)

	base.Merge(nil)
	assert.Equal(t, before.Extensions, base.Extensions)
}

func TestCloneIsIndependent(t *testing.T) {
	base := New()
	base.Update(model.Extension{ID: "html", Version: "1.0.0"})

	clone := base.Clone()
	clone.Update(model.Extension{ID: "html", Version: "2.0.0"})
	clone.Update(model.Extension{ID: "toml", Version: "0.1.0"})

	assert.Equal(t, "1.0.0", base.Extensions["html"])
	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version_tracker.json")

	tr := New()
	tr.Update(model.Extension{ID: "html", Version: "1.0.0"})
	tr.Update(model.Extension{ID: "catppuccin", Version: "0.5.0"})
	require.NoError(t, tr.Save(path))

	loaded := Load(path)
	assert.Equal(t, tr.Extensions, loaded.Extensions)
}

func TestLoadMissingOrCorruptYieldsEmpty(t *testing.T) {
	missing := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.NotNil(t, missing.Extensions)
	assert.Equal(t, 0, missing.Len())

	path := filepath.Join(t.TempDir(), "version_tracker.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	corrupt := Load(path)
	assert.NotNil(t, corrupt.Extensions)
	assert.Equal(t, 0, corrupt.Len())
}
