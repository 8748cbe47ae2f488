package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/zedex/internal/logger"
	"github.com/glorpus-work/zedex/pkg/cache"
	"github.com/glorpus-work/zedex/pkg/catalog"
	"github.com/glorpus-work/zedex/pkg/config"
	"github.com/glorpus-work/zedex/pkg/download"
	"github.com/glorpus-work/zedex/pkg/tracker"
)

// NewGetCmd creates the get command with subcommands.
func NewGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch extensions from the upstream",
		Long:  "Fetch the extension index or extension archives into the local cache",
	}

	cmd.AddCommand(
		newGetExtensionIndexCmd(),
		newGetExtensionCmd(),
		newGetAllExtensionsCmd(),
	)

	return cmd
}

func newGetExtensionIndexCmd() *cobra.Command {
	var provides []string

	cmd := &cobra.Command{
		Use:   "extension-index",
		Short: "Fetch the extension index",
		Long:  "Download the full extension catalog and persist it in the cache root",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGetExtensionIndex(cmd, provides)
		},
	}

	cmd.Flags().StringSliceVar(&provides, "provides", nil, "Filter extensions by provides tags (e.g. languages, language-servers)")

	return cmd
}

func newGetExtensionCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "extension ID...",
		Short: "Fetch specific extensions by ID",
		Long:  "Download the archives of one or more extensions into the local cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGetExtension(cmd, args, outputDir)
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for downloaded extensions (defaults to the cache root)")

	return cmd
}

func newGetAllExtensionsCmd() *cobra.Command {
	var (
		outputDir   string
		asyncMode   bool
		allVersions bool
		rateLimit   uint
	)

	cmd := &cobra.Command{
		Use:   "all-extensions",
		Short: "Fetch every extension in the catalog",
		Long: `Download the archive of every extension listed in the catalog.
The catalog is fetched first when the cache does not have one yet.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGetAllExtensions(cmd, outputDir, asyncMode, allVersions, rateLimit)
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for downloaded extensions (defaults to the cache root)")
	cmd.Flags().BoolVar(&asyncMode, "async-mode", false, "Use fully asynchronous downloads without throttling (faster but may trigger rate limiting)")
	cmd.Flags().BoolVar(&allVersions, "all-versions", false, "Download all versions of each extension")
	cmd.Flags().UintVar(&rateLimit, "rate-limit", 10, "Rate limit between API requests in seconds (default: the configured rate_limit setting)")

	return cmd
}

func runGetExtensionIndex(cmd *cobra.Command, provides []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout := extensionLayout(cfg, "")

	exts, err := catalog.Build(cmd.Context(), newClient(cfg), provides)
	if err != nil {
		return fmt.Errorf("failed to build extension index: %w", err)
	}

	if err := catalog.Save(layout.CatalogPath(), exts); err != nil {
		return fmt.Errorf("failed to save extension index: %w", err)
	}

	logger.Success("Extension index saved", logger.Fields{
		"path":  layout.CatalogPath(),
		"count": len(exts),
	})
	return nil
}

func runGetExtension(cmd *cobra.Command, ids []string, outputDir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout := extensionLayout(cfg, outputDir)

	exts, err := catalog.Ensure(cmd.Context(), newClient(cfg), layout.CatalogPath(), nil)
	if err != nil {
		return fmt.Errorf("failed to load extension index: %w", err)
	}

	orch := &download.Orchestrator{Client: newClient(cfg), Hooks: eventHooks()}
	for _, id := range ids {
		if err := orch.DownloadByID(cmd.Context(), id, exts, layout); err != nil {
			return fmt.Errorf("failed to download extension %s: %w", id, err)
		}
	}

	logger.Success("Extensions downloaded", logger.Fields{"count": len(ids)})
	return nil
}

func runGetAllExtensions(cmd *cobra.Command, outputDir string, asyncMode, allVersions bool, rateLimit uint) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout := extensionLayout(cfg, outputDir)

	exts, err := catalog.Ensure(cmd.Context(), newClient(cfg), layout.CatalogPath(), nil)
	if err != nil {
		return fmt.Errorf("failed to load extension index: %w", err)
	}

	base := tracker.Load(layout.TrackerPath())
	orch := &download.Orchestrator{Client: newClient(cfg), Hooks: eventHooks()}

	opts := download.Options{
		AsyncMode:   asyncMode,
		AllVersions: allVersions,
		RateLimit:   effectiveRateLimit(cmd, rateLimit, cfg.Settings.RateLimit),
		Concurrency: cfg.Settings.MaxConcurrent,
	}

	merged, err := orch.DownloadAll(cmd.Context(), exts, layout, base, opts)
	if err != nil {
		return fmt.Errorf("failed to download extensions: %w", err)
	}

	if err := merged.Save(layout.TrackerPath()); err != nil {
		return fmt.Errorf("failed to save version tracker: %w", err)
	}

	logger.Success("All extensions downloaded", logger.Fields{
		"extensions": len(exts),
		"tracked":    merged.Len(),
	})
	return nil
}

// effectiveRateLimit picks the pause between version downloads: an explicit
// --rate-limit flag wins, otherwise the configured rate_limit applies.
func effectiveRateLimit(cmd *cobra.Command, flagSeconds uint, configured time.Duration) time.Duration {
	if cmd.Flags().Changed("rate-limit") {
		return time.Duration(flagSeconds) * time.Second
	}
	return configured
}

// extensionLayout builds the cache layout, preferring an explicit output
// directory over the configured root.
func extensionLayout(cfg *config.Config, outputDir string) cache.Layout {
	extensionsDir := cfg.GetExtensionsDir()
	if outputDir != "" {
		extensionsDir = outputDir
	}
	return cache.NewLayout(extensionsDir, cfg.GetReleasesDir())
}
