// Package config loads and saves the foto settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

const (
	appName        = "foto"
	configFileName = "config.json"
)

// Icon key set backends.
const (
	IconStoreMemory = "memory"
	IconStoreBadger = "badger"
)

const (
	defaultBridgeWorkers   = 4
	maxBridgeWorkers       = 64
	defaultJPEGCompression = 0.9
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Config represents the application configuration.
type Config struct {
	// IconStore selects the icon key set: "memory" or "badger".
	// Both live only as long as the process.
	IconStore string `json:"icon_store"`
	LogLevel  string `json:"log_level"`

	// LogFile receives logs instead of stderr when set.
	LogFile string `json:"log_file,omitempty"`

	// BridgeWorkers bounds concurrent requests in the stdio bridge.
	BridgeWorkers int `json:"bridge_workers"`

	// JPEGCompression is the quality (0..1) used by the CLI when none is given.
	JPEGCompression float64 `json:"jpeg_compression"`
	JPEGTranPath    string  `json:"jpegtran_path,omitempty"`

	path string
}

// Load reads the settings file from the user config directory, falling
// back to defaults when it does not exist yet.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from path. A missing file yields defaults
// that Save will write to path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		IconStore:       IconStoreMemory,
		LogLevel:        "info",
		BridgeWorkers:   defaultBridgeWorkers,
		JPEGCompression: defaultJPEGCompression,
	}
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := configPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		path = p
	}

	if err := c.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.IconStore != IconStoreMemory && c.IconStore != IconStoreBadger {
		return fmt.Errorf("unknown icon store %q", c.IconStore)
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.JPEGCompression < 0 || c.JPEGCompression > 1 {
		return fmt.Errorf("jpeg compression %v out of range [0,1]", c.JPEGCompression)
	}
	return nil
}

// Workers returns BridgeWorkers clamped to [1, 64].
func (c *Config) Workers() int {
	return min(max(c.BridgeWorkers, 1), maxBridgeWorkers)
}

func (c *Config) applyDefaults() {
	if c.IconStore == "" {
		c.IconStore = IconStoreMemory
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.BridgeWorkers == 0 {
		c.BridgeWorkers = defaultBridgeWorkers
	}
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}
