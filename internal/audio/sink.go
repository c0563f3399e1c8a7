// Package audio synthesizes a mono sample buffer from interaction events.
//
// Each recognized event type maps to a fixed sound: decaying sine plucks
// for structural events and seeded noise bursts for removals and cursor
// activity. Sounds are queued by OnEvent and mixed additively by Render;
// overlapping sounds sum and nothing is clipped.
//
// Noise is deterministic: the seed is an FNV-1a hash of the event id,
// advanced by a 32-bit linear congruential step per sample, so the same
// id always produces the same waveform.
package audio

import (
	"math"
	"unicode/utf16"

	"github.com/roach88/revelation/internal/event"
)

// DefaultSampleRate is the output sample rate in Hz.
const DefaultSampleRate = 44100

// pluckDecay is the exponent of the pluck envelope exp(-decay*t/duration).
const pluckDecay = 6.0

type soundKind int

const (
	kindTone soundKind = iota
	kindNoise
)

// sound is one queued tone or noise burst.
type sound struct {
	kind     soundKind
	start    float64
	freq     float64
	duration float64
	amp      float64
	seed     string
}

// Sink queues sounds for offline rendering.
type Sink struct {
	sampleRate int
	sounds     []sound
}

// NewSink creates a sink. Non-positive rates fall back to DefaultSampleRate.
func NewSink(sampleRate int) *Sink {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Sink{sampleRate: sampleRate}
}

// SampleRate returns the output sample rate in Hz.
func (s *Sink) SampleRate() int {
	return s.sampleRate
}

// Pending returns the number of queued sounds.
func (s *Sink) Pending() int {
	return len(s.sounds)
}

// OnEvent queues the sound for evt starting at t seconds.
// Unrecognized types queue nothing.
func (s *Sink) OnEvent(evt event.Event, t float64) {
	switch evt.Type {
	case event.TypeNodeAdd:
		s.tone(t, 440, 0.12, 0.6)
	case event.TypeNodeSelect:
		s.tone(t, 880, 0.08, 0.7)
	case event.TypeEdgeAdd:
		s.tone(t, 330, 0.2, 0.4)
		s.tone(t, 440, 0.2, 0.4)
		s.tone(t, 550, 0.2, 0.4)
	case event.TypeEdgeRemove:
		s.noise(t, 0.12, 0.25, seedText(evt))
	case event.TypeCursorMove:
		s.noise(t, 0.02, 0.05, seedText(evt))
	case event.TypeSceneTransform:
		s.tone(t, 260, 0.25, 0.35)
		s.tone(t+0.12, 310, 0.25, 0.35)
	}
}

func seedText(evt event.Event) string {
	if evt.ID != "" {
		return evt.ID
	}
	return string(evt.Type)
}

func (s *Sink) tone(start, freq, duration, amp float64) {
	s.sounds = append(s.sounds, sound{kind: kindTone, start: start, freq: freq, duration: duration, amp: amp})
}

func (s *Sink) noise(start, duration, amp float64, seed string) {
	s.sounds = append(s.sounds, sound{kind: kindNoise, start: start, duration: duration, amp: amp, seed: seed})
}

// Render mixes every queued sound into a fresh buffer of
// ceil(duration*sampleRate) samples. Sounds running past the end are
// truncated. Rendering does not consume the queue.
func (s *Sink) Render(duration float64) []float32 {
	rate := float64(s.sampleRate)
	total := 0
	if duration > 0 {
		total = int(math.Ceil(duration * rate))
	}
	buf := make([]float32, total)

	for _, snd := range s.sounds {
		start := int(math.Max(0, math.Floor(snd.start*rate)))
		end := min(len(buf), start+int(math.Floor(snd.duration*rate)))
		switch snd.kind {
		case kindTone:
			for i := start; i < end; i++ {
				t := float64(i-start) / rate
				env := math.Exp(-pluckDecay * t / snd.duration)
				v := math.Sin(2*math.Pi*snd.freq*t) * snd.amp * env
				buf[i] = float32(float64(buf[i]) + v)
			}
		case kindNoise:
			seed := hashString(snd.seed)
			for i := start; i < end; i++ {
				seed = seed*1664525 + 1013904223
				v := (float64(seed)/0xffffffff*2 - 1) * snd.amp
				buf[i] = float32(float64(buf[i]) + v)
			}
		}
	}
	return buf
}

// hashString is 32-bit FNV-1a over the UTF-16 code units of value.
func hashString(value string) uint32 {
	h := uint32(2166136261)
	for _, unit := range utf16.Encode([]rune(value)) {
		h ^= uint32(unit)
		h *= 16777619
	}
	return h
}
