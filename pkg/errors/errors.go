// Package errors defines the sentinel errors shared across zedex and small
// helpers for wrapping them with context.
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrConfigKeyUnknown  = fmt.Errorf("unknown configuration key")

	// Upstream errors.
	ErrUpstreamStatus   = fmt.Errorf("unexpected upstream status")
	ErrUpstreamRequest  = fmt.Errorf("upstream request failed")
	ErrUpstreamResponse = fmt.Errorf("failed to read upstream response")

	// Catalog errors.
	ErrCatalogMissing = fmt.Errorf("extension catalog not found")
	ErrCatalogParse   = fmt.Errorf("failed to parse extension catalog")

	// Extension errors.
	ErrExtensionNotFound = fmt.Errorf("extension not found in catalog")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
