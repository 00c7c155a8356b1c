package config

import (
	"flag"
	"strings"
)

// pathList collects repeated -path flags.
type pathList []string

func (p *pathList) String() string {
	return strings.Join(*p, ",")
}

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagVertexMax = flag.Bool("vertex-max", false, "Decode vertex-max parameter groups")
	flagWorkers   = flag.Int("workers", 0, "Concurrent decodes when validating many files")
	flagPaths     pathList
)

func init() {
	flag.Var(&flagPaths, "path", "Add a model search directory (repeatable, last wins)")
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagVertexMax {
		cfg.Decode.VertexMax = true
	}
	if *flagWorkers > 0 {
		cfg.Assets.Workers = *flagWorkers
	}
	cfg.Assets.SearchPaths = append(cfg.Assets.SearchPaths, flagPaths...)
}
