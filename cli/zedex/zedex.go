package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/zedex/internal/cli"
	"github.com/glorpus-work/zedex/internal/logger"
)

var (
	configPath string
	rootDir    string
	logLevel   string
	noColor    bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zedex",
		Short: "A self-hosted extension marketplace mirror",
		Long: `zedex mirrors an editor extension marketplace for offline and
air-gapped use:
- get: fetch the extension index and extension archives
- release: mirror editor release binaries
- serve: serve the cached content over the upstream API surface`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logger.InitLogger(logLevel, noColor, logger.FileOptions{})
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().StringVar(&rootDir, "root-dir", "", "root directory for all cache files (default: .zedex-cache)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.RootDir = &rootDir
	cli.LogLevel = &logLevel
	cli.NoColor = &noColor

	// Add subcommands
	cmd.AddCommand(
		cli.NewGetCmd(),
		cli.NewReleaseCmd(),
		cli.NewServeCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
