package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/zedex/internal/logger"
	"github.com/glorpus-work/zedex/pkg/cache"
	"github.com/glorpus-work/zedex/pkg/config"
	"github.com/glorpus-work/zedex/pkg/download"
)

// NewReleaseCmd creates the release command with subcommands.
func NewReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Fetch editor releases from the upstream",
		Long:  "Query and mirror editor and remote server release binaries",
	}

	cmd.AddCommand(
		newReleaseLatestCmd("latest", "zed", "Get the latest editor release version info (does not download the file)"),
		newReleaseLatestCmd("remote-server-latest", "zed-remote-server", "Get the latest remote server release version info (does not download the file)"),
		newReleaseDownloadCmd("download", "zed", "Download the latest editor release for every platform"),
		newReleaseDownloadCmd("download-remote-server", "zed-remote-server", "Download the latest remote server release for every platform"),
	)

	return cmd
}

func newReleaseLatestCmd(use, asset, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReleaseLatest(cmd, asset)
		},
	}
}

func newReleaseDownloadCmd(use, asset, short string) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReleaseDownload(cmd, asset, outputDir)
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for downloaded releases (defaults to the cache root)")

	return cmd
}

func runReleaseLatest(cmd *cobra.Command, asset string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c := newClient(cfg)

	for _, p := range assetPlatforms(asset) {
		rel, err := c.GetLatestReleaseVersion(cmd.Context(), p.Asset, p.OS, p.Arch)
		if err != nil {
			logger.Error("Failed to fetch latest release version", logger.Fields{
				"asset": p.Asset,
				"os":    p.OS,
				"arch":  p.Arch,
				"error": err,
			})
			continue
		}
		fmt.Printf("%s-%s-%s: %s\n  %s\n", p.Asset, p.OS, p.Arch, rel.Version, rel.URL)
	}

	return nil
}

func runReleaseDownload(cmd *cobra.Command, asset, outputDir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout := releaseLayout(cfg, outputDir)

	orch := &download.Orchestrator{Client: newClient(cfg), Hooks: eventHooks()}
	if err := orch.MirrorReleases(cmd.Context(), layout, assetPlatforms(asset)); err != nil {
		return fmt.Errorf("failed to mirror releases: %w", err)
	}

	logger.Success("Releases mirrored", logger.Fields{"asset": asset})
	return nil
}

// assetPlatforms narrows the default platform matrix to one asset.
func assetPlatforms(asset string) []download.Platform {
	var platforms []download.Platform
	for _, p := range download.DefaultPlatforms {
		if p.Asset == asset {
			platforms = append(platforms, p)
		}
	}
	return platforms
}

func releaseLayout(cfg *config.Config, outputDir string) cache.Layout {
	releasesDir := cfg.GetReleasesDir()
	if outputDir != "" {
		releasesDir = outputDir
	}
	return cache.NewLayout(cfg.GetExtensionsDir(), releasesDir)
}
