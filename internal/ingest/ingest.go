// Package ingest reads and writes event logs as files.
//
// Three encodings are supported: JSON Lines (one event object per line),
// a JSON array of event objects, and length-prefixed msgpack frames
// (4-byte big-endian length, then one msgpack-encoded event).
//
// A record that cannot be decoded is skipped, logged at warn and counted
// in Stats.Skipped. With Options.Strict set the first bad record aborts
// the read instead. Stream-level damage (a truncated or oversized frame)
// is always fatal because the reader cannot resynchronize.
package ingest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/revelation/internal/event"
)

// Options configure readers.
type Options struct {
	// Strict makes malformed records fatal.
	Strict bool
	// Logger receives a warn entry per skipped record. Nil discards.
	Logger *zap.Logger
	// IDs, when set, assigns ids to records that arrive without one.
	IDs event.IDGenerator
	// MaxRecordBytes caps one line or frame. Zero means MaxPayloadSize.
	MaxRecordBytes int
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) maxRecord() int {
	if o.MaxRecordBytes <= 0 || o.MaxRecordBytes > MaxPayloadSize {
		return MaxPayloadSize
	}
	return o.MaxRecordBytes
}

// Stats counts what a read did.
type Stats struct {
	// Read is the number of records encountered, skipped ones included.
	Read int `json:"read"`
	// Skipped is the number of malformed records dropped.
	Skipped int `json:"skipped"`
	// Filled is the number of events that were assigned a generated id.
	Filled int `json:"filled"`
}

// Events is the number of events a read returned.
func (s Stats) Events() int {
	return s.Read - s.Skipped
}

// RecordError describes a record that could not be decoded.
type RecordError struct {
	// Record is the zero-based record position (line, element or frame).
	Record int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Record, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// collector applies the skip policy shared by every reader.
type collector struct {
	opts   Options
	format string
	stats  Stats
	events []event.Event
}

func newCollector(opts Options, format string) *collector {
	return &collector{opts: opts, format: format, events: []event.Event{}}
}

// add records one decode outcome. It returns an error only in strict mode.
func (c *collector) add(evt event.Event, err error) error {
	index := c.stats.Read
	c.stats.Read++
	if err != nil {
		recErr := &RecordError{Record: index, Err: err}
		if c.opts.Strict {
			return recErr
		}
		c.stats.Skipped++
		c.opts.logger().Warn("skipping malformed record",
			zap.String("format", c.format),
			zap.Int("record", index),
			zap.Error(err),
		)
		return nil
	}
	c.events = append(c.events, evt)
	return nil
}

func (c *collector) finish() ([]event.Event, Stats) {
	if c.opts.IDs != nil {
		c.stats.Filled = event.FillIDs(c.events, c.opts.IDs)
	}
	if c.stats.Skipped > 0 {
		c.opts.logger().Info("ingest finished with skipped records",
			zap.String("format", c.format),
			zap.Int("read", c.stats.Read),
			zap.Int("skipped", c.stats.Skipped),
		)
	}
	return c.events, c.stats
}
