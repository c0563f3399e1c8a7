// Package config loads pipeline parameters from YAML and the environment.
//
// Precedence, lowest first: built-in defaults, the YAML file (with
// ${VAR} and ${VAR:-default} expansion), REVELATION_* environment
// variables, then CLI flags applied by the caller.
package config

import (
	"github.com/roach88/revelation/internal/log"
	"github.com/roach88/revelation/internal/projection"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REVELATION_"

// DefaultDBPath is the SQLite log used when no path is configured.
const DefaultDBPath = "revelation.db"

// Config is the full runtime configuration.
type Config struct {
	Log        log.Options       `yaml:"log"`
	Store      StoreConfig       `yaml:"store"`
	Ingest     IngestConfig      `yaml:"ingest"`
	Projection projection.Config `yaml:"projection"`
}

// StoreConfig locates the event log database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// IngestConfig controls event file decoding.
type IngestConfig struct {
	// Strict makes malformed records fatal instead of skipped.
	Strict bool `yaml:"strict"`
	// MaxFrameBytes caps a single framed record. Zero means the codec default.
	MaxFrameBytes int `yaml:"max_frame_bytes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:   log.Options{Level: "info", Format: log.FormatJSON},
		Store: StoreConfig{Path: DefaultDBPath},
	}
}
