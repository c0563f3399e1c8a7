package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/revelation/internal/event"
)

// Format names used in logs and by ReadFile.
const (
	FormatJSONL  = "jsonl"
	FormatJSON   = "json"
	FormatFrames = "frames"
)

var errNotObject = errors.New("record is not a JSON object")

// decodeJSONRecord decodes one event object.
func decodeJSONRecord(raw []byte) (event.Event, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return event.Event{}, errNotObject
	}
	var evt event.Event
	if err := json.Unmarshal(trimmed, &evt); err != nil {
		return event.Event{}, err
	}
	return evt, nil
}

// ReadJSONL reads one event per line. Blank lines are ignored and do not
// count as records.
func ReadJSONL(r io.Reader, opts Options) ([]event.Event, Stats, error) {
	c := newCollector(opts, FormatJSONL)

	scanner := bufio.NewScanner(r)
	limit := opts.maxRecord()
	scanner.Buffer(make([]byte, 0, min(64*1024, limit)), limit)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := c.add(decodeJSONRecord(line)); err != nil {
			return nil, c.stats, fmt.Errorf("jsonl: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, c.stats, fmt.Errorf("jsonl: read line %d: %w", c.stats.Read+1, err)
	}

	events, stats := c.finish()
	return events, stats, nil
}

// ReadJSON reads a JSON array of events. A document that is not an array
// is fatal; bad elements follow the skip policy.
func ReadJSON(r io.Reader, opts Options) ([]event.Event, Stats, error) {
	c := newCollector(opts, FormatJSON)

	var elements []json.RawMessage
	if err := json.NewDecoder(r).Decode(&elements); err != nil {
		return nil, c.stats, fmt.Errorf("json: decode array: %w", err)
	}
	for _, raw := range elements {
		if err := c.add(decodeJSONRecord(raw)); err != nil {
			return nil, c.stats, fmt.Errorf("json: %w", err)
		}
	}

	events, stats := c.finish()
	return events, stats, nil
}

// WriteJSONL writes one compact JSON object per event, each followed by
// a newline.
func WriteJSONL(w io.Writer, events []event.Event) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i, evt := range events {
		if err := enc.Encode(evt); err != nil {
			return fmt.Errorf("jsonl: write event %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("jsonl: flush: %w", err)
	}
	return nil
}
