// Package config provides configuration management for the zedex mirror.
// It handles loading, validating and saving application settings: upstream
// endpoints, cache directories, acquisition behavior and mirror server
// defaults. Configuration lives in a YAML file; missing files fall back to
// sensible defaults.
package config

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/zedex/pkg/errors"
	"github.com/glorpus-work/zedex/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	// Upstream endpoints being mirrored.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Server holds mirror server defaults; CLI flags override them.
	Server ServerConfig `yaml:"server"`

	// General settings.
	Settings Settings `yaml:"settings"`
}

// UpstreamConfig points at the origin marketplace and release service.
type UpstreamConfig struct {
	// APIBaseURL is the extension marketplace API origin.
	APIBaseURL string `yaml:"api_base_url"`
	// ReleasesBaseURL is the release distribution origin.
	ReleasesBaseURL string `yaml:"releases_base_url"`
	// UserAgent sent on every upstream request.
	UserAgent string `yaml:"user_agent,omitempty"`
}

// ServerConfig holds the mirror server defaults.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// ProxyMode forwards cache misses to the upstream instead of returning 404.
	ProxyMode bool `yaml:"proxy_mode"`
	// Domain, when set, replaces the upstream origin in release manifest URLs
	// so clients download archives from this mirror.
	Domain string `yaml:"domain,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// RootDir is the cache root; the extension tree and the releases tree
	// live underneath it.
	RootDir string `yaml:"root_dir,omitempty"`

	// Network settings.
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	MaxConcurrent int           `yaml:"max_concurrent_downloads"`
	RateLimit     time.Duration `yaml:"rate_limit"`

	// Logging settings.
	LogLevel      string `yaml:"log_level"`
	LogFilePath   string `yaml:"log_file_path,omitempty"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb,omitempty"`
	LogMaxBackups int    `yaml:"log_max_backups,omitempty"`
}

// Default configuration values.
const (
	// DefaultAPIBaseURL is the extension marketplace origin being mirrored.
	DefaultAPIBaseURL = "https://api.zed.dev"
	// DefaultReleasesBaseURL is the release distribution origin.
	DefaultReleasesBaseURL = "https://zed.dev"
	// DefaultUserAgent identifies zedex to the upstream.
	DefaultUserAgent = "zedex/1.0"

	// DefaultHTTPTimeout is the default timeout for upstream requests.
	DefaultHTTPTimeout = 30 * time.Second
	// DefaultMaxConcurrent bounds concurrent extension downloads. One at a
	// time is deliberate: the throttle exists to respect upstream rate limits.
	DefaultMaxConcurrent = 1
	// DefaultRateLimit is the pause between sequential version downloads of
	// one extension in all-versions mode.
	DefaultRateLimit = 10 * time.Second

	// DefaultServerHost is the address the mirror server binds to.
	DefaultServerHost = "127.0.0.1"
	// DefaultServerPort is the port the mirror server listens on.
	DefaultServerPort = 2654

	// DefaultRootDirName is the cache root created next to the working
	// directory when none is configured.
	DefaultRootDirName = ".zedex-cache"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			APIBaseURL:      DefaultAPIBaseURL,
			ReleasesBaseURL: DefaultReleasesBaseURL,
			UserAgent:       DefaultUserAgent,
		},
		Server: ServerConfig{
			Host: DefaultServerHost,
			Port: DefaultServerPort,
		},
		Settings: Settings{
			RootDir:       DefaultRootDirName,
			HTTPTimeout:   DefaultHTTPTimeout,
			MaxConcurrent: DefaultMaxConcurrent,
			RateLimit:     DefaultRateLimit,
			LogLevel:      "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// default configuration.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig saves configuration to a file atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureDir(filepath.Dir(absPath)); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	data, err := c.ToYAML()
	if err != nil {
		return err
	}

	if err := fsutil.WriteFileAtomic(absPath, data); err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	for _, raw := range []string{c.Upstream.APIBaseURL, c.Upstream.ReleasesBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Wrapf(errors.ErrConfigValidation, "invalid upstream URL: %q", raw)
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Wrapf(errors.ErrConfigValidation, "invalid server port: %d", c.Server.Port)
	}
	if c.Settings.MaxConcurrent < 1 {
		return errors.Wrapf(errors.ErrConfigValidation, "max_concurrent_downloads must be at least 1")
	}
	if c.Settings.RateLimit < 0 {
		return errors.Wrapf(errors.ErrConfigValidation, "rate_limit cannot be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Upstream.APIBaseURL == "" {
		c.Upstream.APIBaseURL = defaults.Upstream.APIBaseURL
	}
	if c.Upstream.ReleasesBaseURL == "" {
		c.Upstream.ReleasesBaseURL = defaults.Upstream.ReleasesBaseURL
	}
	if c.Upstream.UserAgent == "" {
		c.Upstream.UserAgent = defaults.Upstream.UserAgent
	}
	if c.Server.Host == "" {
		c.Server.Host = defaults.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Settings.RootDir == "" {
		c.Settings.RootDir = defaults.Settings.RootDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.RateLimit == 0 {
		c.Settings.RateLimit = defaults.Settings.RateLimit
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}

// GetDefaultConfigPath returns the platform default location of the config
// file.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine user config directory")
	}
	return filepath.Join(configDir, "zedex", "config.yaml"), nil
}
