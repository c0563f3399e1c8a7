package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// overrides are the settings that may come from the environment.
// Unset variables leave the loaded value alone.
type overrides struct {
	LogLevel      string   `env:"LOG_LEVEL"`
	LogFormat     string   `env:"LOG_FORMAT"`
	DBPath        string   `env:"DB"`
	Strict        *bool    `env:"STRICT"`
	SampleRate    int      `env:"SAMPLE_RATE"`
	AudioStepMs   float64  `env:"AUDIO_STEP_MS"`
	PhysicsStepMs float64  `env:"PHYSICS_STEP_MS"`
	SpringK       *float64 `env:"SPRING_K"`
	Damping       *float64 `env:"DAMPING"`
	Drag          *float64 `env:"DRAG"`
	Width         float64  `env:"SVG_WIDTH"`
	Height        float64  `env:"SVG_HEIGHT"`
	Background    string   `env:"SVG_BACKGROUND"`
	Texture       string   `env:"TEXTURE"`
}

// Load reads the YAML file at path, expands environment references and
// applies REVELATION_* overrides. An empty path loads defaults plus
// overrides only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg, nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode strictly unmarshals expanded YAML over cfg. Unknown keys are
// errors so typos do not silently fall back to defaults.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader([]byte(ExpandEnv(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv applies REVELATION_* overrides to cfg. A nil environment
// reads the process environment.
func ApplyEnv(cfg *Config, environment map[string]string) error {
	var o overrides
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString(&cfg.Log.Level, o.LogLevel)
	setString(&cfg.Log.Format, o.LogFormat)
	setString(&cfg.Store.Path, o.DBPath)
	if o.Strict != nil {
		cfg.Ingest.Strict = *o.Strict
	}

	p := &cfg.Projection
	setNumber(&p.Audio.SampleRate, o.SampleRate)
	setNumber(&p.Audio.StepMs, o.AudioStepMs)
	setNumber(&p.Physics.StepMs, o.PhysicsStepMs)
	setValue(&p.Physics.SpringK, o.SpringK)
	setValue(&p.Physics.Damping, o.Damping)
	setValue(&p.Physics.Drag, o.Drag)
	setNumber(&p.SVG.Width, o.Width)
	setNumber(&p.SVG.Height, o.Height)
	setString(&p.SVG.Background, o.Background)
	setString(&p.Mesh.Texture, o.Texture)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setNumber[T int | float64](dst *T, v T) {
	if v != 0 {
		*dst = v
	}
}

// setValue applies an override that may legitimately be zero.
func setValue(dst **float64, v *float64) {
	if v != nil {
		*dst = v
	}
}
