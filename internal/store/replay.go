package store

import (
	"context"
	"fmt"

	"github.com/roach88/revelation/internal/canonical"
)

// Summary describes the stored log of one space, or of all spaces.
type Summary struct {
	Space     string `json:"space,omitempty"`
	Events    int    `json:"events"`
	LastSeq   int64  `json:"last_seq"`
	LogDigest string `json:"log_digest"`
}

// Summarize reads a space back and digests it in append order. Two
// stores holding the same log in the same order have equal digests.
func (s *SQLite) Summarize(ctx context.Context, space string) (Summary, error) {
	events, err := s.Events(ctx, space)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	digest, err := canonical.LogDigest(events)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}

	var lastSeq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&lastSeq); err != nil {
		return Summary{}, fmt.Errorf("summarize: last seq: %w", err)
	}

	return Summary{
		Space:     space,
		Events:    len(events),
		LastSeq:   lastSeq,
		LogDigest: digest,
	}, nil
}
