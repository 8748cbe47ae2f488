package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/glorpus-work/zedex/pkg/errors"
	"github.com/glorpus-work/zedex/pkg/model"
)

// HTTPClient talks to the upstream marketplace and release APIs over HTTP.
type HTTPClient struct {
	client          *http.Client
	apiBaseURL      string
	releasesBaseURL string
	userAgent       string
}

// Options configure an HTTPClient.
type Options struct {
	// APIBaseURL is the marketplace API origin, e.g. https://api.zed.dev.
	APIBaseURL string
	// ReleasesBaseURL is the release service origin, e.g. https://zed.dev.
	ReleasesBaseURL string
	// Timeout bounds each request. Zero means 30 seconds.
	Timeout time.Duration
	// UserAgent sent on every request. Empty means "zedex/1.0".
	UserAgent string
}

// New creates an upstream client.
func New(opts Options) *HTTPClient {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "zedex/1.0"
	}
	return &HTTPClient{
		client:          &http.Client{Timeout: opts.Timeout},
		apiBaseURL:      opts.APIBaseURL,
		releasesBaseURL: opts.ReleasesBaseURL,
		userAgent:       opts.UserAgent,
	}
}

// GetExtensionsIndex lists the catalog, optionally filtered by capability.
func (c *HTTPClient) GetExtensionsIndex(ctx context.Context, provides string) (model.Extensions, error) {
	endpoint := c.apiBaseURL + "/extensions"
	if provides != "" {
		endpoint += "?provides=" + url.QueryEscape(provides)
	}

	var wrapped model.WrappedExtensions
	if err := c.getJSON(ctx, endpoint, &wrapped); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch extensions index (provides=%q)", provides)
	}
	return wrapped.Data, nil
}

// GetExtensionVersions lists every published version of one extension.
func (c *HTTPClient) GetExtensionVersions(ctx context.Context, id string) (model.Extensions, error) {
	endpoint := fmt.Sprintf("%s/extensions/%s", c.apiBaseURL, url.PathEscape(id))

	var wrapped model.WrappedExtensions
	if err := c.getJSON(ctx, endpoint, &wrapped); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch versions for extension %s", id)
	}
	return wrapped.Data, nil
}

// DownloadExtensionArchive fetches an extension archive, reporting progress
// as the body streams in.
func (c *HTTPClient) DownloadExtensionArchive(ctx context.Context, id, version string, onProgress ProgressFunc) ([]byte, error) {
	var endpoint string
	if version == "" {
		endpoint = fmt.Sprintf("%s/extensions/%s/download", c.apiBaseURL, url.PathEscape(id))
	} else {
		endpoint = fmt.Sprintf("%s/extensions/%s/%s/download",
			c.apiBaseURL, url.PathEscape(id), url.PathEscape(version))
	}

	data, err := c.getBytes(ctx, endpoint, onProgress)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download archive for extension %s", id)
	}
	return data, nil
}

// GetLatestReleaseVersion fetches the latest release manifest for one
// asset/platform combination.
func (c *HTTPClient) GetLatestReleaseVersion(ctx context.Context, asset, osName, arch string) (model.ReleaseVersion, error) {
	endpoint := fmt.Sprintf("%s/api/releases/latest?asset=%s&os=%s&arch=%s",
		c.releasesBaseURL, url.QueryEscape(asset), url.QueryEscape(osName), url.QueryEscape(arch))

	var rel model.ReleaseVersion
	if err := c.getJSON(ctx, endpoint, &rel); err != nil {
		return model.ReleaseVersion{}, errors.Wrapf(err, "failed to fetch latest release for %s-%s-%s", asset, osName, arch)
	}
	return rel, nil
}

// DownloadReleaseAsset fetches the archive a release manifest points at.
func (c *HTTPClient) DownloadReleaseAsset(ctx context.Context, rel model.ReleaseVersion, onProgress ProgressFunc) ([]byte, error) {
	data, err := c.getBytes(ctx, rel.URL, onProgress)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download release asset %s", rel.Version)
	}
	return data, nil
}

func (c *HTTPClient) do(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUpstreamRequest, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Wrapf(errors.ErrUpstreamStatus, "%d from %s", resp.StatusCode, endpoint)
	}
	return resp, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	resp, err := c.do(ctx, endpoint)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrUpstreamResponse, err.Error())
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to parse response from %s", endpoint)
	}
	return nil
}

func (c *HTTPClient) getBytes(ctx context.Context, endpoint string, onProgress ProgressFunc) ([]byte, error) {
	resp, err := c.do(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	reader := io.Reader(resp.Body)
	if onProgress != nil {
		reader = &progressReader{
			inner:      resp.Body,
			total:      resp.ContentLength,
			onProgress: onProgress,
		}
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUpstreamResponse, err.Error())
	}
	return data, nil
}

// progressReader drives the progress callback as bytes stream through it.
type progressReader struct {
	inner      io.Reader
	total      int64
	downloaded int64
	onProgress ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.downloaded += int64(n)
		total := r.total
		if total < 0 {
			total = 0
		}
		r.onProgress(r.downloaded, total)
	}
	return n, err
}
