// Package timeline assigns a relative time in seconds to every event of a log.
//
// Output order always matches input order; only the time differs. Build
// is stateless and returns a fresh slice on every call, so it can be
// re-run against a growing log.
package timeline

import (
	"math"

	"github.com/roach88/revelation/internal/event"
)

// DefaultStepMs is the fallback spacing for events without a timestamp.
const DefaultStepMs = 50.0

// msThreshold separates millisecond-epoch from second-epoch timestamps.
const msThreshold = 1e12

// TimedEvent pairs an event with its offset in seconds from the base.
type TimedEvent struct {
	Event event.Event
	T     float64
}

type options struct {
	stepMs float64
}

// Option configures Build.
type Option func(*options)

// WithStepMs sets the fallback spacing in milliseconds.
// Non-positive and non-finite values keep the default.
func WithStepMs(ms float64) Option {
	return func(o *options) {
		if ms > 0 && !math.IsInf(ms, 0) {
			o.stepMs = ms
		}
	}
}

// Build computes offsets for events.
//
// The base is the first event carrying a timestamp. Timestamps above 1e12
// are treated as milliseconds and divided by 1000. An event with a
// timestamp gets max(0, ts-base); an event without one, or any event when
// no base exists, gets index*stepMs/1000. Nothing is sorted.
func Build(events []event.Event, opts ...Option) []TimedEvent {
	o := options{stepMs: DefaultStepMs}
	for _, opt := range opts {
		opt(&o)
	}

	base, hasBase := baseTS(events)

	out := make([]TimedEvent, len(events))
	for i, evt := range events {
		t := float64(i) * o.stepMs / 1000
		if hasBase && evt.TS != nil {
			t = math.Max(0, normalize(*evt.TS)-base)
		}
		out[i] = TimedEvent{Event: evt, T: t}
	}
	return out
}

// baseTS returns the normalized timestamp of the first timestamped event.
func baseTS(events []event.Event) (float64, bool) {
	for _, evt := range events {
		if evt.TS != nil {
			return normalize(*evt.TS), true
		}
	}
	return 0, false
}

func normalize(ts float64) float64 {
	if ts > msThreshold {
		return ts / 1000
	}
	return ts
}
