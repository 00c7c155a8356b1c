// Package config handles m3dtool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Decode  DecodeConfig  `yaml:"decode"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
}

// DecodeConfig holds decoder settings.
type DecodeConfig struct {
	VertexMax bool `yaml:"vertex_max"` // parse vertex-max parameter groups in MESH chunks
}

// AssetsConfig holds model lookup and caching settings.
type AssetsConfig struct {
	SearchPaths []string `yaml:"search_paths"` // later entries take priority
	CacheSize   int      `yaml:"cache_size"`   // decoded models kept in memory
	Workers     int      `yaml:"workers"`      // concurrent decodes during preload
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			VertexMax: false,
		},
		Assets: AssetsConfig{
			SearchPaths: []string{"."},
			CacheSize:   64,
			Workers:     4,
		},
		Logging: LoggingConfig{
			Level:   "warn",
			LogFile: "",
		},
	}
}
