package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/zedex/internal/logger"
	"github.com/glorpus-work/zedex/pkg/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var (
		host          string
		port          int
		extensionsDir string
		proxyMode     bool
		domain        string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local mirror server",
		Long: `Start a local server that serves the cached extension catalog,
extension archives and release binaries over the upstream API surface.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, host, port, extensionsDir, proxyMode, domain)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host IP address to bind the server to")
	cmd.Flags().IntVar(&port, "port", 0, "Port to run the server on")
	cmd.Flags().StringVar(&extensionsDir, "extensions-dir", "", "Directory containing extension archives and metadata")
	cmd.Flags().BoolVar(&proxyMode, "proxy-mode", false, "Proxy requests to the upstream for missing content")
	cmd.Flags().StringVar(&domain, "domain", "", "Domain to use in release URLs (e.g. http://localhost:2654)")

	return cmd
}

func runServe(cmd *cobra.Command, host string, port int, extensionsDir string, proxyMode bool, domain string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Long-running mode; honor the configured rotating log file.
	if cfg.Settings.LogFilePath != "" {
		noColor := NoColor != nil && *NoColor
		logger.InitLogger(cfg.Settings.LogLevel, noColor, logger.FileOptions{
			Path:       cfg.Settings.LogFilePath,
			MaxSizeMB:  cfg.Settings.LogMaxSizeMB,
			MaxBackups: cfg.Settings.LogMaxBackups,
			Compress:   true,
		})
	}

	// CLI flags override the configured server defaults.
	if host == "" {
		host = cfg.Server.Host
	}
	if port == 0 {
		port = cfg.Server.Port
	}
	if extensionsDir == "" {
		extensionsDir = cfg.GetExtensionsDir()
	}
	if !proxyMode {
		proxyMode = cfg.Server.ProxyMode
	}
	if domain == "" {
		domain = cfg.Server.Domain
	}

	srv := server.New(server.Options{
		Host:            host,
		Port:            port,
		ExtensionsDir:   extensionsDir,
		ReleasesDir:     cfg.GetReleasesDir(),
		ProxyMode:       proxyMode,
		Domain:          domain,
		APIBaseURL:      cfg.Upstream.APIBaseURL,
		ReleasesBaseURL: cfg.Upstream.ReleasesBaseURL,
		UserAgent:       cfg.Upstream.UserAgent,
		HTTPTimeout:     cfg.Settings.HTTPTimeout,
		Version:         Version,
	})

	if err := srv.ListenAndServe(cmd.Context()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
