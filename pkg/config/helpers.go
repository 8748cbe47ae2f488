package config

import (
	"strconv"
	"time"

	"github.com/glorpus-work/zedex/pkg/errors"
)

// SetValue sets a configuration value by key.
// Supported keys:
//   - root_dir: string - cache root directory
//   - upstream.api_base_url: string - marketplace API origin
//   - upstream.releases_base_url: string - release service origin
//   - server.host / server.port / server.proxy_mode / server.domain
//   - http_timeout / rate_limit: duration strings (e.g. "30s")
//   - max_concurrent_downloads: int
//   - log_level: string
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "root_dir":
		c.Settings.RootDir = value
	case "upstream.api_base_url":
		c.Upstream.APIBaseURL = value
	case "upstream.releases_base_url":
		c.Upstream.ReleasesBaseURL = value
	case "server.host":
		c.Server.Host = value
	case "server.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "invalid integer value for %s: %s", key, value)
		}
		c.Server.Port = port
	case "server.proxy_mode":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "invalid boolean value for %s: %s", key, value)
		}
		c.Server.ProxyMode = enabled
	case "server.domain":
		c.Server.Domain = value
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, "invalid duration value for %s: %s", key, value)
		}
		c.Settings.HTTPTimeout = d
	case "rate_limit":
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, "invalid duration value for %s: %s", key, value)
		}
		c.Settings.RateLimit = d
	case "max_concurrent_downloads":
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "invalid integer value for %s: %s", key, value)
		}
		c.Settings.MaxConcurrent = n
	case "log_level":
		c.Settings.LogLevel = value
	default:
		return errors.Wrapf(errors.ErrConfigKeyUnknown, "%s", key)
	}
	return c.Validate()
}

// GetValue returns the value of a configuration key as a string.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "root_dir":
		return c.Settings.RootDir, nil
	case "upstream.api_base_url":
		return c.Upstream.APIBaseURL, nil
	case "upstream.releases_base_url":
		return c.Upstream.ReleasesBaseURL, nil
	case "server.host":
		return c.Server.Host, nil
	case "server.port":
		return strconv.Itoa(c.Server.Port), nil
	case "server.proxy_mode":
		return strconv.FormatBool(c.Server.ProxyMode), nil
	case "server.domain":
		return c.Server.Domain, nil
	case "http_timeout":
		return c.Settings.HTTPTimeout.String(), nil
	case "rate_limit":
		return c.Settings.RateLimit.String(), nil
	case "max_concurrent_downloads":
		return strconv.Itoa(c.Settings.MaxConcurrent), nil
	case "log_level":
		return c.Settings.LogLevel, nil
	default:
		return "", errors.Wrapf(errors.ErrConfigKeyUnknown, "%s", key)
	}
}

// ToMap returns every supported key with its current value. This is useful
// for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	keys := []string{
		"root_dir",
		"upstream.api_base_url",
		"upstream.releases_base_url",
		"server.host",
		"server.port",
		"server.proxy_mode",
		"server.domain",
		"http_timeout",
		"rate_limit",
		"max_concurrent_downloads",
		"log_level",
	}
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		value, err := c.GetValue(key)
		if err != nil {
			continue
		}
		result[key] = value
	}
	return result
}
