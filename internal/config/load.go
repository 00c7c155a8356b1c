package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)
	normalize(cfg)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./m3dtool.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "m3dtool")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "m3dtool")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "m3dtool")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "m3dtool")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize replaces unusable values with defaults.
func normalize(cfg *Config) {
	def := Default()
	if cfg.Assets.CacheSize <= 0 {
		cfg.Assets.CacheSize = def.Assets.CacheSize
	}
	if cfg.Assets.Workers <= 0 {
		cfg.Assets.Workers = def.Assets.Workers
	}
	if len(cfg.Assets.SearchPaths) == 0 {
		cfg.Assets.SearchPaths = def.Assets.SearchPaths
	}
}
