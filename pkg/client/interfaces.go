//go:generate mockgen -destination=./mocks/client.go -package=mocks . Client

// Package client implements the HTTP client for the upstream extension
// marketplace and release distribution APIs.
package client

import (
	"context"

	"github.com/glorpus-work/zedex/pkg/model"
)

// ProgressFunc receives download progress. total is zero when the upstream
// does not announce a content length.
type ProgressFunc func(downloaded, total int64)

// Client is the upstream surface consumed by the catalog builder, the
// acquisition orchestrator and the mirror server in proxy mode.
type Client interface {
	// GetExtensionsIndex lists the catalog, optionally filtered by a
	// capability tag. An empty provides fetches the unfiltered catalog.
	GetExtensionsIndex(ctx context.Context, provides string) (model.Extensions, error)

	// GetExtensionVersions lists every published version of one extension.
	GetExtensionVersions(ctx context.Context, id string) (model.Extensions, error)

	// DownloadExtensionArchive fetches an extension archive. An empty version
	// downloads the latest. onProgress may be nil.
	DownloadExtensionArchive(ctx context.Context, id, version string, onProgress ProgressFunc) ([]byte, error)

	// GetLatestReleaseVersion fetches the latest release manifest for one
	// asset/platform combination.
	GetLatestReleaseVersion(ctx context.Context, asset, osName, arch string) (model.ReleaseVersion, error)

	// DownloadReleaseAsset fetches the archive a release manifest points at.
	// onProgress may be nil.
	DownloadReleaseAsset(ctx context.Context, rel model.ReleaseVersion, onProgress ProgressFunc) ([]byte, error)
}
