// Package config handles loading and saving constellation configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/constellation/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFallbackColor is the heatmap colour used when a value has none.
const DefaultFallbackColor = "#999999"

// DiagnosticsConfig controls the dev-only event log.
type DiagnosticsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// FocusConfig holds defaults for focus overlays created by the host.
type FocusConfig struct {
	DefaultDepth    int  `yaml:"default_depth"`
	IncludeIncoming bool `yaml:"include_incoming"`
	IncludeOutgoing bool `yaml:"include_outgoing"`
}

// HeatmapConfig holds heatmap decoration settings.
type HeatmapConfig struct {
	FallbackColor string `yaml:"fallback_color"` // #rrggbb, used for values without a colour
}

// OverlaysConfig groups overlay settings.
type OverlaysConfig struct {
	Validate bool          `yaml:"validate"` // Reject malformed overlays before applying
	Focus    FocusConfig   `yaml:"focus"`
	Heatmap  HeatmapConfig `yaml:"heatmap"`
}

// Config is the top-level configuration.
type Config struct {
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Overlays    OverlaysConfig    `yaml:"overlays"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Overlays: OverlaysConfig{
			Validate: true,
			Focus: FocusConfig{
				DefaultDepth:    1,
				IncludeIncoming: true,
				IncludeOutgoing: true,
			},
			Heatmap: HeatmapConfig{
				FallbackColor: DefaultFallbackColor,
			},
		},
	}
}

// ConfigDir returns the XDG config directory for constellation.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "constellation")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "constellation")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist. Keys missing from the
// file keep their defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Overlays.Focus.DefaultDepth < 0 {
		c.Overlays.Focus.DefaultDepth = def.Overlays.Focus.DefaultDepth
	}
	c.Overlays.Heatmap.FallbackColor = strings.TrimSpace(c.Overlays.Heatmap.FallbackColor)
	if c.Overlays.Heatmap.FallbackColor == "" {
		c.Overlays.Heatmap.FallbackColor = def.Overlays.Heatmap.FallbackColor
	}
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
