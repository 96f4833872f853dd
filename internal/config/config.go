// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the connection string itself goes
// to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"pgbridge/internal/xdg"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	// DefaultDatabase is used when a discrete connection is configured
	// without an explicit database name.
	DefaultDatabase string `json:"default_database"`
	// ConnectTimeoutSeconds bounds connection verification in `pgbridge connect`.
	ConnectTimeoutSeconds int `json:"connect_timeout_seconds"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	c := Config{
		DefaultDatabase:       "postgres",
		ConnectTimeoutSeconds: 5,
	}
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	if c.DefaultDatabase == "" {
		c.DefaultDatabase = "postgres"
	}
	if c.ConnectTimeoutSeconds <= 0 {
		c.ConnectTimeoutSeconds = 5
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o600)
}
