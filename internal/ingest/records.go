package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// RecordFunc receives one undecoded record as JSON. index counts records
// the way the event readers do, so it lines up with RecordError.Record.
type RecordFunc func(index int, raw []byte) error

// ReadRecords walks the records of r without decoding them into events,
// so field types survive exactly as written. Msgpack frames are converted
// to JSON first. It returns the number of records visited.
func ReadRecords(r io.Reader, format string, maxRecordBytes int, fn RecordFunc) (int, error) {
	limit := Options{MaxRecordBytes: maxRecordBytes}.maxRecord()

	switch format {
	case FormatJSONL:
		return readJSONLRecords(r, limit, fn)
	case FormatJSON:
		var elements []json.RawMessage
		if err := json.NewDecoder(r).Decode(&elements); err != nil {
			return 0, fmt.Errorf("json: decode array: %w", err)
		}
		for i, raw := range elements {
			if err := fn(i, raw); err != nil {
				return i + 1, err
			}
		}
		return len(elements), nil
	case FormatFrames:
		return readFrameRecords(r, limit, fn)
	default:
		return 0, fmt.Errorf("unknown event format %q", format)
	}
}

// ReadRecordsFile opens path and walks its records by extension. "-"
// reads stdin as JSON Lines.
func ReadRecordsFile(path string, maxRecordBytes int, fn RecordFunc) (int, error) {
	if path == "-" {
		return ReadRecords(os.Stdin, FormatJSONL, maxRecordBytes, fn)
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open events: %w", err)
	}
	defer f.Close()

	n, err := ReadRecords(f, FormatForPath(path), maxRecordBytes, fn)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

func readJSONLRecords(r io.Reader, limit int, fn RecordFunc) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, limit)), limit)

	n := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := fn(n, line); err != nil {
			return n + 1, err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("jsonl: read line %d: %w", n+1, err)
	}
	return n, nil
}

func readFrameRecords(r io.Reader, limit int, fn RecordFunc) (int, error) {
	dec := &FrameDecoder{reader: bufio.NewReader(r), maxSize: limit}

	n := 0
	for {
		payload, err := dec.ReadFrame()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("frames: frame %d: %w", n, err)
		}

		var value any
		if err := msgpack.Unmarshal(payload, &value); err != nil {
			return n, fmt.Errorf("frames: frame %d: %w", n, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode record", Err: err})
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return n, fmt.Errorf("frames: frame %d: %w", n, &FrameError{Kind: FrameErrorDecode, Msg: "failed to convert record", Err: err})
		}
		if err := fn(n, raw); err != nil {
			return n + 1, err
		}
		n++
	}
}
