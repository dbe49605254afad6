// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; session credentials go to OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"wayfare/cli/internal/xdg"
)

// DefaultAPIBaseURL is the production Wayfare API endpoint.
const DefaultAPIBaseURL = "https://api.wayfare.travel"

// Config holds non-sensitive CLI settings.
type Config struct {
	APIBaseURL string `json:"api_base_url"`
	LogLevel   string `json:"log_level"`
	Currency   string `json:"currency"`
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
// WAYFARE_API_URL overrides the configured base URL when set.
func Load() (Config, error) {
	c, err := load()
	if err != nil {
		return c, err
	}
	if env := strings.TrimSpace(os.Getenv("WAYFARE_API_URL")); env != "" {
		c.APIBaseURL = env
	}
	return c, nil
}

func load() (Config, error) {
	var c Config
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.APIBaseURL = DefaultAPIBaseURL
			c.LogLevel = "info"
			c.Currency = "USD"
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
