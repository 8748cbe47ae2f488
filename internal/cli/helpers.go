package cli

import (
	"fmt"

	"github.com/glorpus-work/zedex/internal/logger"
	"github.com/glorpus-work/zedex/pkg/client"
	"github.com/glorpus-work/zedex/pkg/config"
	"github.com/glorpus-work/zedex/pkg/download"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	RootDir    *string
	LogLevel   *string
	NoColor    *bool
)

// loadConfig loads the configuration file and applies CLI flag overrides.
func loadConfig() (*config.Config, error) {
	configPath := getConfigPath()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with CLI flags if provided
	if RootDir != nil && *RootDir != "" {
		cfg.Settings.RootDir = *RootDir
	}
	if LogLevel != nil && *LogLevel != "" {
		cfg.Settings.LogLevel = *LogLevel
	}

	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

func newClient(cfg *config.Config) *client.HTTPClient {
	return client.New(client.Options{
		APIBaseURL:      cfg.Upstream.APIBaseURL,
		ReleasesBaseURL: cfg.Upstream.ReleasesBaseURL,
		UserAgent:       cfg.Upstream.UserAgent,
		Timeout:         cfg.Settings.HTTPTimeout,
	})
}

// eventHooks prints acquisition events in a simple human-friendly form.
func eventHooks() download.Hooks {
	return download.Hooks{OnEvent: func(e download.Event) {
		if e.ID != "" {
			fmt.Printf("%s: %s (%s)\n", e.Phase, e.Msg, e.ID)
		} else {
			fmt.Printf("%s: %s\n", e.Phase, e.Msg)
		}
	}}
}
