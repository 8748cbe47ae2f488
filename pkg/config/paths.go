package config

import "path/filepath"

// GetExtensionsDir returns the directory holding extension archives, the
// persisted catalog and the version tracker.
func (c *Config) GetExtensionsDir() string {
	return c.Settings.RootDir
}

// GetReleasesDir returns the directory holding mirrored release manifests
// and archives.
func (c *Config) GetReleasesDir() string {
	return filepath.Join(c.Settings.RootDir, "releases")
}
