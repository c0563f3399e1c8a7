package ingest

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/revelation/internal/event"
)

// Frame size limits.
const (
	// LengthPrefixSize is the size of the big-endian length prefix.
	LengthPrefixSize = 4
	// MaxFrameSize is the largest frame, length prefix included (16 MiB).
	MaxFrameSize = 16 * 1024 * 1024
	// MaxPayloadSize is the largest frame payload.
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
)

// FrameErrorKind classifies frame errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a length prefix above the limit.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a payload that is not an event.
	FrameErrorDecode
)

func (k FrameErrorKind) String() string {
	switch k {
	case FrameErrorPartial:
		return "partial"
	case FrameErrorTooLarge:
		return "too_large"
	case FrameErrorDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// FrameError represents a frame reading or decoding error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the stream is unusable after this error.
// Partial and oversized frames lose framing; decode errors do not.
func (e *FrameError) IsFatal() bool {
	return e.Kind == FrameErrorPartial || e.Kind == FrameErrorTooLarge
}

// IsFatalFrameError returns true if err wraps a fatal *FrameError.
func IsFatalFrameError(err error) bool {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr.IsFatal()
	}
	return false
}

// FrameDecoder reads length-prefixed frames from a stream.
type FrameDecoder struct {
	reader  io.Reader
	maxSize int
}

// NewFrameDecoder creates a decoder with the default payload limit.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{reader: r, maxSize: MaxPayloadSize}
}

// ReadFrame reads one frame payload.
//
// Errors:
//   - io.EOF: the stream ended cleanly between frames
//   - *FrameError with Kind=FrameErrorPartial: truncated frame
//   - *FrameError with Kind=FrameErrorTooLarge: length above the limit
func (d *FrameDecoder) ReadFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(d.reader, lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "failed to read length prefix", Err: err}
	}

	size := binary.BigEndian.Uint32(lengthBuf[:])
	if uint64(size) > uint64(d.maxSize) {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", size, d.maxSize),
		}
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(d.reader, payload); err != nil {
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "failed to read payload", Err: err}
	}
	return payload, nil
}

// frameEvent is the msgpack shape of an event. Payload travels as a
// native msgpack value and is converted to JSON on decode.
type frameEvent struct {
	ID        string `msgpack:"id"`
	TS        any    `msgpack:"ts,omitempty"`
	Actor     string `msgpack:"actor"`
	Type      string `msgpack:"type"`
	Space     string `msgpack:"space"`
	Payload   any    `msgpack:"payload,omitempty"`
	Ephemeral bool   `msgpack:"ephemeral,omitempty"`
}

// DecodeEvent decodes one frame payload into an event.
func DecodeEvent(payload []byte) (event.Event, error) {
	var fe frameEvent
	if err := msgpack.Unmarshal(payload, &fe); err != nil {
		return event.Event{}, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode event", Err: err}
	}

	evt := event.Event{
		ID:        fe.ID,
		TS:        numericTS(fe.TS),
		Actor:     fe.Actor,
		Type:      event.Type(fe.Type),
		Space:     fe.Space,
		Ephemeral: fe.Ephemeral,
	}
	if fe.Payload != nil {
		raw, err := json.Marshal(fe.Payload)
		if err != nil {
			return event.Event{}, &FrameError{Kind: FrameErrorDecode, Msg: "failed to convert payload", Err: err}
		}
		evt.Payload = raw
	}
	return evt, nil
}

// numericTS keeps only finite numeric timestamps, like the JSON decoder.
func numericTS(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return event.TimeStamp(f)
}

// EncodeEvent encodes an event as a frame payload.
func EncodeEvent(evt event.Event) ([]byte, error) {
	fe := frameEvent{
		ID:        evt.ID,
		Actor:     evt.Actor,
		Type:      string(evt.Type),
		Space:     evt.Space,
		Ephemeral: evt.Ephemeral,
	}
	if evt.TS != nil {
		fe.TS = *evt.TS
	}
	if len(evt.Payload) > 0 {
		if err := json.Unmarshal(evt.Payload, &fe.Payload); err != nil {
			return nil, fmt.Errorf("event %q: payload: %w", evt.ID, err)
		}
	}
	data, err := msgpack.Marshal(&fe)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", evt.ID, err)
	}
	return data, nil
}

// ReadFrames reads msgpack frames until EOF. Undecodable payloads follow
// the skip policy; truncated or oversized frames are always fatal.
func ReadFrames(r io.Reader, opts Options) ([]event.Event, Stats, error) {
	c := newCollector(opts, FormatFrames)
	dec := &FrameDecoder{reader: bufio.NewReader(r), maxSize: opts.maxRecord()}

	for {
		payload, err := dec.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, c.stats, fmt.Errorf("frames: frame %d: %w", c.stats.Read, err)
		}
		if err := c.add(DecodeEvent(payload)); err != nil {
			return nil, c.stats, fmt.Errorf("frames: %w", err)
		}
	}

	events, stats := c.finish()
	return events, stats, nil
}

// WriteFrames writes each event as one length-prefixed msgpack frame.
func WriteFrames(w io.Writer, events []event.Event) error {
	bw := bufio.NewWriter(w)
	var prefix [LengthPrefixSize]byte
	for i, evt := range events {
		payload, err := EncodeEvent(evt)
		if err != nil {
			return fmt.Errorf("frames: write event %d: %w", i, err)
		}
		if len(payload) > MaxPayloadSize {
			return fmt.Errorf("frames: write event %d: payload size %d exceeds maximum %d", i, len(payload), MaxPayloadSize)
		}
		binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
		if _, err := bw.Write(prefix[:]); err != nil {
			return fmt.Errorf("frames: write event %d: %w", i, err)
		}
		if _, err := bw.Write(payload); err != nil {
			return fmt.Errorf("frames: write event %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("frames: flush: %w", err)
	}
	return nil
}
