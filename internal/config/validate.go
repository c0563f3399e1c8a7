package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/revelation/internal/log"
)

// Validate reports settings that no component could use.
func (c *Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", log.FormatJSON, log.FormatConsole:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	p := c.Projection
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"projection.svg.width", p.SVG.Width},
		{"projection.svg.height", p.SVG.Height},
		{"projection.svg.step_ms", p.SVG.StepMs},
		{"projection.physics.step_ms", p.Physics.StepMs},
		{"projection.physics.spring_k", valueOrZero(p.Physics.SpringK)},
		{"projection.physics.damping", valueOrZero(p.Physics.Damping)},
		{"projection.physics.drag", valueOrZero(p.Physics.Drag)},
		{"projection.audio.sample_rate", float64(p.Audio.SampleRate)},
		{"projection.audio.step_ms", p.Audio.StepMs},
		{"projection.audio.max_duration_sec", p.Audio.MaxDurationSec},
	} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			errs = append(errs, fmt.Errorf("%s: must be a non-negative number, got %v", f.name, f.v))
		}
	}
	if c.Ingest.MaxFrameBytes < 0 {
		errs = append(errs, fmt.Errorf("ingest.max_frame_bytes: must be non-negative"))
	}
	return errors.Join(errs...)
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
