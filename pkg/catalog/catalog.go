// Package catalog builds and persists the extension catalog: one
// deduplicated, download-count-sorted list of every extension known
// upstream.
package catalog

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"github.com/glorpus-work/zedex/internal/logger"
	"github.com/glorpus-work/zedex/pkg/client"
	"github.com/glorpus-work/zedex/pkg/errors"
	"github.com/glorpus-work/zedex/pkg/fsutil"
	"github.com/glorpus-work/zedex/pkg/model"
)

// Build fetches the catalog from upstream, merged across capability-filtered
// fetches and deduplicated by id.
//
// With no filters it fetches the unfiltered catalog once, collects the union
// of capability tags seen, then re-fetches once per tag; with filters it
// fetches once per filter. Later fetches overwrite earlier entries for the
// same id. Any single fetch failure aborts the whole build; a partial
// catalog is never returned.
func Build(ctx context.Context, c client.Client, provides []string) (model.Extensions, error) {
	merged := make(map[string]model.Extension)

	if len(provides) == 0 {
		initial, err := c.GetExtensionsIndex(ctx, "")
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch unfiltered catalog")
		}
		for _, ext := range initial {
			merged[ext.ID] = ext
		}

		capabilities := make(map[string]struct{})
		for _, ext := range initial {
			for _, tag := range ext.Provides {
				capabilities[tag] = struct{}{}
			}
		}
		for tag := range capabilities {
			exts, err := c.GetExtensionsIndex(ctx, tag)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to fetch catalog for capability %q", tag)
			}
			for _, ext := range exts {
				merged[ext.ID] = ext
			}
		}
	} else {
		for _, tag := range provides {
			exts, err := c.GetExtensionsIndex(ctx, tag)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to fetch catalog for capability %q", tag)
			}
			for _, ext := range exts {
				merged[ext.ID] = ext
			}
		}
	}

	extensions := make(model.Extensions, 0, len(merged))
	for _, ext := range merged {
		extensions = append(extensions, ext)
	}
	SortByDownloads(extensions)

	logger.Info("Built extension catalog", logger.Fields{"extensions": len(extensions)})
	return extensions, nil
}

// SortByDownloads orders extensions by download count, highest first,
// keeping the relative order of ties.
func SortByDownloads(exts model.Extensions) {
	sort.SliceStable(exts, func(i, j int) bool {
		return exts[i].DownloadCount > exts[j].DownloadCount
	})
}

// Save persists the catalog to path, wrapped and pretty-printed, rewritten
// wholesale.
func Save(path string, exts model.Extensions) error {
	wrapped := model.WrappedExtensions{Data: exts}
	data, err := json.MarshalIndent(wrapped, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal catalog")
	}
	if err := fsutil.WriteFileAtomic(path, data); err != nil {
		return errors.Wrap(err, "failed to write catalog")
	}
	return nil
}

// Load reads a persisted catalog from path.
func Load(path string) (model.Extensions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrCatalogMissing, "%s", path)
		}
		return nil, errors.Wrapf(err, "failed to read catalog %s", path)
	}
	var wrapped model.WrappedExtensions
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, errors.Wrap(errors.ErrCatalogParse, err.Error())
	}
	return wrapped.Data, nil
}

// Ensure loads the catalog at path when it exists, otherwise builds it from
// upstream and persists it.
func Ensure(ctx context.Context, c client.Client, path string, provides []string) (model.Extensions, error) {
	exts, err := Load(path)
	if err == nil {
		logger.Info("Loaded extension catalog", logger.Fields{"path": path, "extensions": len(exts)})
		return exts, nil
	}

	logger.Info("Extension catalog not found, fetching from upstream", logger.Fields{"path": path})
	exts, err = Build(ctx, c, provides)
	if err != nil {
		return nil, err
	}
	if err := Save(path, exts); err != nil {
		return nil, err
	}
	logger.Success("Saved extension catalog", logger.Fields{"path": path})
	return exts, nil
}
