package cache

import (
	"encoding/json"
	"os"

	version "github.com/hashicorp/go-version"

	"github.com/glorpus-work/zedex/internal/logger"
	"github.com/glorpus-work/zedex/pkg/model"
)

// Artifact is a servable archive found in the cache.
type Artifact struct {
	// Path is the absolute or layout-relative file path of the archive.
	Path string
	// Version is the concrete version served, when the strategy knows it.
	Version string
	// Source names the strategy that produced the hit, for logging.
	Source string
}

// Strategy answers "can you serve this extension id?" for one on-disk layout.
// Strategies are stateless; the chain queries them in order and the first hit
// wins, which keeps the fallback order auditable and each tier independently
// testable.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// Resolve returns a servable artifact for the id, or false.
	Resolve(id string) (Artifact, bool)
}

// Chain is an ordered list of strategies tried first to last.
type Chain []Strategy

// Resolve returns the first artifact any strategy can serve.
func (c Chain) Resolve(id string) (Artifact, bool) {
	for _, s := range c {
		if art, ok := s.Resolve(id); ok {
			art.Source = s.Name()
			return art, true
		}
	}
	return Artifact{}, false
}

// NewLatestChain is the resolution order for a download request without an
// explicit version: the latest archive, then the highest versioned archive
// on disk, then the legacy flat file.
func NewLatestChain(layout Layout) Chain {
	return Chain{
		latestStrategy{layout: layout},
		bestAvailableStrategy{layout: layout},
		legacyStrategy{layout: layout},
	}
}

// NewExactChain is the resolution order for an explicit-version request:
// only the exact versioned archive is tried.
func NewExactChain(layout Layout, version string) Chain {
	return Chain{exactStrategy{layout: layout, version: version}}
}

// latestStrategy serves <id>/<id>.tgz.
type latestStrategy struct {
	layout Layout
}

func (s latestStrategy) Name() string { return "latest" }

func (s latestStrategy) Resolve(id string) (Artifact, bool) {
	path := s.layout.LatestArchivePath(id)
	if !fileExists(path) {
		return Artifact{}, false
	}
	return Artifact{Path: path}, true
}

// bestAvailableStrategy scans versions.json for the highest version whose
// archive actually exists on disk. Versions that do not parse as semver are
// skipped with a warning; legacy and current layouts may coexist in one
// directory, so an unparsable entry is never fatal.
type bestAvailableStrategy struct {
	layout Layout
}

func (s bestAvailableStrategy) Name() string { return "best-available" }

func (s bestAvailableStrategy) Resolve(id string) (Artifact, bool) {
	data, err := os.ReadFile(s.layout.VersionsPath(id))
	if err != nil {
		return Artifact{}, false
	}

	var wrapped model.WrappedExtensions
	if err := json.Unmarshal(data, &wrapped); err != nil {
		logger.Error("Failed to parse versions file", logger.Fields{"id": id, "error": err})
		return Artifact{}, false
	}

	var (
		best        *version.Version
		bestVersion string
		bestPath    string
	)
	for _, ext := range wrapped.Data {
		path := s.layout.VersionedArchivePath(id, ext.Version)
		if !fileExists(path) {
			continue
		}
		parsed, err := version.NewVersion(ext.Version)
		if err != nil {
			logger.Warn("Skipping unparsable version", logger.Fields{
				"id":      id,
				"version": ext.Version,
				"error":   err,
			})
			continue
		}
		if best == nil || parsed.GreaterThan(best) {
			best = parsed
			bestVersion = ext.Version
			bestPath = path
		}
	}

	if best == nil {
		return Artifact{}, false
	}
	return Artifact{Path: bestPath, Version: bestVersion}, true
}

// legacyStrategy serves the flat <id>.tar.gz files written by old runs.
type legacyStrategy struct {
	layout Layout
}

func (s legacyStrategy) Name() string { return "legacy" }

func (s legacyStrategy) Resolve(id string) (Artifact, bool) {
	path := s.layout.LegacyArchivePath(id)
	if !fileExists(path) {
		return Artifact{}, false
	}
	return Artifact{Path: path}, true
}

// exactStrategy serves one specific versioned archive and nothing else.
type exactStrategy struct {
	layout  Layout
	version string
}

func (s exactStrategy) Name() string { return "exact" }

func (s exactStrategy) Resolve(id string) (Artifact, bool) {
	path := s.layout.VersionedArchivePath(id, s.version)
	if !fileExists(path) {
		return Artifact{}, false
	}
	return Artifact{Path: path, Version: s.version}, true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
