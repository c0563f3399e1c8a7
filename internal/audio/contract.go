package audio

import (
	"math"

	"github.com/roach88/revelation/internal/contract"
	"github.com/roach88/revelation/internal/event"
)

// ContractName is the registry name of the audio contract.
const ContractName = "audio"

// Contract defaults.
const (
	DefaultStepMs         = 50.0
	DefaultMaxDurationSec = 120.0
	// TailSec is the silence kept after the last queued sound starts.
	TailSec = 0.6
)

// Options configure the audio contract. Zero fields take the defaults.
type Options struct {
	SampleRate     int     `yaml:"sample_rate" json:"sample_rate"`
	StepMs         float64 `yaml:"step_ms" json:"step_ms"`
	MaxDurationSec float64 `yaml:"max_duration_sec" json:"max_duration_sec"`
}

// DefaultOptions returns the contract defaults.
func DefaultOptions() Options {
	return Options{
		SampleRate:     DefaultSampleRate,
		StepMs:         DefaultStepMs,
		MaxDurationSec: DefaultMaxDurationSec,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SampleRate > 0 {
		d.SampleRate = o.SampleRate
	}
	if o.StepMs > 0 {
		d.StepMs = o.StepMs
	}
	if o.MaxDurationSec > 0 {
		d.MaxDurationSec = o.MaxDurationSec
	}
	return d
}

// State is the fold state of the audio contract.
type State struct {
	Sink    *Sink
	MaxTime float64
	Count   int
}

// NewContract returns a contract that plays events back to back.
//
// Sounds are placed on a compact local clock (event count times StepMs)
// rather than the timeline offset, so long idle gaps in the log do not
// become long silences. The rendered length is the last local time plus
// TailSec, capped at MaxDurationSec.
func NewContract(opts Options) contract.Contract[*State, []float32] {
	o := opts.withDefaults()
	return contract.Contract[*State, []float32]{
		Name: ContractName,
		Init: func() *State {
			return &State{Sink: NewSink(o.SampleRate)}
		},
		OnEvent: func(s *State, evt event.Event, _ float64) *State {
			localT := float64(s.Count) * o.StepMs / 1000
			s.Sink.OnEvent(evt, localT)
			if localT > s.MaxTime {
				s.MaxTime = localT
			}
			s.Count++
			return s
		},
		Finalize: func(s *State) ([]float32, error) {
			duration := math.Min(s.MaxTime+TailSec, o.MaxDurationSec)
			return s.Sink.Render(duration), nil
		},
	}
}
