package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/revelation/internal/event"
)

// Domain prefixes for digests.
// Version suffix enables future algorithm migration.
const (
	DomainEvent    = "revelation/event/v1"
	DomainLog      = "revelation/log/v1"
	DomainArtifact = "revelation/artifact/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventDigest computes the content digest of a single event.
// Key order and whitespace in the original record do not affect it.
func EventDigest(evt event.Event) (string, error) {
	data, err := Marshal(evt)
	if err != nil {
		return "", fmt.Errorf("EventDigest %q: %w", evt.ID, err)
	}
	return hashWithDomain(DomainEvent, data), nil
}

// LogDigest computes the digest of an ordered event log.
// Reordering events changes the digest.
func LogDigest(events []event.Event) (string, error) {
	if events == nil {
		events = []event.Event{}
	}
	data, err := Marshal(events)
	if err != nil {
		return "", fmt.Errorf("LogDigest: %w", err)
	}
	return hashWithDomain(DomainLog, data), nil
}

// ArtifactDigest computes the digest of encoded artifact bytes, scoped by
// the name of the contract that produced them.
func ArtifactDigest(contract string, data []byte) string {
	scoped := make([]byte, 0, len(contract)+1+len(data))
	scoped = append(scoped, contract...)
	scoped = append(scoped, 0x00)
	scoped = append(scoped, data...)
	return hashWithDomain(DomainArtifact, scoped)
}

// MustEventDigest is like EventDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustEventDigest(evt event.Event) string {
	d, err := EventDigest(evt)
	if err != nil {
		panic(err)
	}
	return d
}
