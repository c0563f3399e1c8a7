package projection

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/revelation/internal/canonical"
	"github.com/roach88/revelation/internal/event"
)

// Verification is the outcome of running one contract twice.
type Verification struct {
	Contract string `json:"contract"`
	First    string `json:"first"`
	Second   string `json:"second"`
	Match    bool   `json:"match"`
}

// Report summarizes a determinism check over a log.
type Report struct {
	LogDigest string         `json:"log_digest"`
	Events    int            `json:"events"`
	Results   []Verification `json:"results"`
}

// OK reports whether every contract reproduced its artifact.
func (r Report) OK() bool {
	for _, v := range r.Results {
		if !v.Match {
			return false
		}
	}
	return true
}

// Verify runs each named contract twice over events and compares the
// artifact digests. With no names, every registered contract is checked.
func (r *Registry) Verify(events []event.Event, names ...string) (Report, error) {
	if len(names) == 0 {
		names = r.names
	}

	logDigest, err := canonical.LogDigest(events)
	if err != nil {
		return Report{}, fmt.Errorf("verify: %w", err)
	}
	report := Report{LogDigest: logDigest, Events: len(events)}

	for _, name := range names {
		first, err := r.Run(name, events)
		if err != nil {
			return Report{}, fmt.Errorf("verify: %w", err)
		}
		second, err := r.Run(name, events)
		if err != nil {
			return Report{}, fmt.Errorf("verify: %w", err)
		}

		v := Verification{
			Contract: name,
			First:    first.Digest,
			Second:   second.Digest,
			Match:    first.Digest == second.Digest,
		}
		if !v.Match {
			r.logger.Warn("artifact digests differ",
				zap.String("contract", name),
				zap.String("first", v.First),
				zap.String("second", v.Second),
			)
		}
		report.Results = append(report.Results, v)
	}
	return report, nil
}
