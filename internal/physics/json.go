package physics

import (
	"encoding/json"
	"math"
)

// A diverged simulation (a zero-mass particle under load, say) produces
// NaN or infinite coordinates. They encode as null so the snapshot stays
// valid JSON.

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// MarshalJSON encodes non-finite values as null.
func (p Particle) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    string   `json:"id"`
		X     *float64 `json:"x"`
		Y     *float64 `json:"y"`
		VX    *float64 `json:"vx"`
		VY    *float64 `json:"vy"`
		Mass  *float64 `json:"mass"`
		Fixed bool     `json:"fixed"`
	}{p.ID, finite(p.X), finite(p.Y), finite(p.VX), finite(p.VY), finite(p.Mass), p.Fixed})
}

// MarshalJSON encodes a non-finite rest length as null.
func (s Spring) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      string   `json:"id"`
		From    string   `json:"from"`
		To      string   `json:"to"`
		Rest    *float64 `json:"rest"`
		K       float64  `json:"k"`
		Damping float64  `json:"damping"`
		Active  bool     `json:"active"`
	}{s.ID, s.From, s.To, finite(s.Rest), s.K, s.Damping, s.Active})
}
