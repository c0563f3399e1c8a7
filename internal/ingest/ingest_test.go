package ingest

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/testutil"
)

func sampleEvents() []event.Event {
	return testutil.NewLog().
		At(1700000000000).
		NodeAdd("a", 10, 20).
		NodeAdd("b", 30.5, -4).
		EdgeAdd("ab", "a", "b").
		Untimed().
		CursorMove(1, 2).
		Events()
}

func TestJSONLRoundTrip(t *testing.T) {
	events := sampleEvents()

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, events))
	assert.Equal(t, len(events), strings.Count(buf.String(), "\n"))

	got, stats, err := ReadJSONL(&buf, Options{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Read: 4}, stats)
	require.Len(t, got, len(events))
	for i := range events {
		assert.Equal(t, events[i].ID, got[i].ID)
		assert.Equal(t, events[i].TS, got[i].TS)
		assert.Equal(t, events[i].Ephemeral, got[i].Ephemeral)
		assert.JSONEq(t, string(events[i].Payload), string(got[i].Payload))
	}
}

func TestReadJSONL_SkipsGarbage(t *testing.T) {
	input := `{"id":"e1","ts":1,"actor":"a","type":"node.add","space":"s","payload":{"id":"n1"}}

not json at all
[1,2,3]
{"id":"e2","ts":2,"actor":"a","type":"node.move","space":"s","payload":{"id":"n1","x":3}}
`
	core, logs := observer.New(zap.WarnLevel)

	got, stats, err := ReadJSONL(strings.NewReader(input), Options{Logger: zap.New(core)})
	require.NoError(t, err)
	assert.Equal(t, Stats{Read: 4, Skipped: 2}, stats)
	assert.Equal(t, 2, stats.Events())
	require.Len(t, got, 2)
	assert.Equal(t, "e2", got[1].ID)

	warns := logs.FilterMessage("skipping malformed record").All()
	require.Len(t, warns, 2)
	assert.Equal(t, int64(1), warns[0].ContextMap()["record"])
}

func TestReadJSONL_Strict(t *testing.T) {
	input := "{\"id\":\"e1\"}\ngarbage\n"
	_, stats, err := ReadJSONL(strings.NewReader(input), Options{Strict: true})
	require.Error(t, err)

	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 1, recErr.Record)
	assert.Equal(t, 2, stats.Read)
}

func TestReadJSONL_LineTooLong(t *testing.T) {
	input := `{"id":"` + strings.Repeat("x", 200) + `"}`
	_, _, err := ReadJSONL(strings.NewReader(input), Options{MaxRecordBytes: 64})
	assert.Error(t, err)
}

func TestReadJSONL_FillsIDs(t *testing.T) {
	input := "{\"actor\":\"a\",\"type\":\"node.add\"}\n{\"id\":\"keep\"}\n"
	got, stats, err := ReadJSONL(strings.NewReader(input), Options{IDs: event.NewSequentialGenerator("imp")})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Filled)
	assert.Equal(t, "imp-1", got[0].ID)
	assert.Equal(t, "keep", got[1].ID)
}

func TestReadJSON_Array(t *testing.T) {
	input := `[{"id":"e1","type":"node.add"}, 42, {"id":"e2","ts":"soon"}]`
	got, stats, err := ReadJSON(strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Read: 3, Skipped: 1}, stats)
	require.Len(t, got, 2)
	assert.Nil(t, got[1].TS)

	_, _, err = ReadJSON(strings.NewReader(`{"id":"e1"}`), Options{})
	assert.Error(t, err)
}

func TestFramesRoundTrip(t *testing.T) {
	events := sampleEvents()

	var buf bytes.Buffer
	require.NoError(t, WriteFrames(&buf, events))

	got, stats, err := ReadFrames(&buf, Options{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Read: len(events)}, stats)
	require.Len(t, got, len(events))
	for i := range events {
		assert.Equal(t, events[i].ID, got[i].ID)
		assert.Equal(t, events[i].Type, got[i].Type)
		assert.Equal(t, events[i].TS, got[i].TS)
		assert.Equal(t, events[i].Ephemeral, got[i].Ephemeral)
		assert.JSONEq(t, string(events[i].Payload), string(got[i].Payload))
	}
	assert.Equal(t, 30.5, got[1].Decode().(event.NodeAdd).X.Value)
}

func frame(payload []byte) []byte {
	out := make([]byte, LengthPrefixSize, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	return append(out, payload...)
}

func TestReadFrames_SkipsUndecodablePayload(t *testing.T) {
	good, err := EncodeEvent(event.Event{ID: "e1", Type: event.TypeNodeAdd, Payload: json.RawMessage(`{"id":"n"}`)})
	require.NoError(t, err)

	var stream []byte
	stream = append(stream, frame([]byte{0xc1})...) // never-used msgpack code
	stream = append(stream, frame(good)...)

	got, stats, err := ReadFrames(bytes.NewReader(stream), Options{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Read: 2, Skipped: 1}, stats)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)

	_, _, err = ReadFrames(bytes.NewReader(stream), Options{Strict: true})
	var frameErr *FrameError
	require.ErrorAs(t, err, &frameErr)
	assert.Equal(t, FrameErrorDecode, frameErr.Kind)
	assert.False(t, IsFatalFrameError(err))
}

func TestReadFrames_TruncatedIsFatal(t *testing.T) {
	good, err := EncodeEvent(event.Event{ID: "e1"})
	require.NoError(t, err)
	stream := frame(good)

	_, _, err = ReadFrames(bytes.NewReader(stream[:len(stream)-1]), Options{})
	require.Error(t, err)
	assert.True(t, IsFatalFrameError(err))

	_, _, err = ReadFrames(bytes.NewReader([]byte{0, 0}), Options{})
	assert.True(t, IsFatalFrameError(err))
}

func TestReadFrames_TooLarge(t *testing.T) {
	stream := frame(make([]byte, 100))
	_, _, err := ReadFrames(bytes.NewReader(stream), Options{MaxRecordBytes: 10})

	var frameErr *FrameError
	require.ErrorAs(t, err, &frameErr)
	assert.Equal(t, FrameErrorTooLarge, frameErr.Kind)
	assert.True(t, frameErr.IsFatal())
}

func TestFrameDecoder_CleanEOF(t *testing.T) {
	_, err := NewFrameDecoder(bytes.NewReader(nil)).ReadFrame()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestDecodeEvent_NonNumericTS(t *testing.T) {
	payload, err := EncodeEvent(event.Event{ID: "e1"})
	require.NoError(t, err)
	evt, err := DecodeEvent(payload)
	require.NoError(t, err)
	assert.Nil(t, evt.TS)
	assert.Empty(t, evt.Payload)

	assert.Nil(t, numericTS("12"))
	assert.Equal(t, 12.0, *numericTS(int8(12)))
	assert.Equal(t, 1.5, *numericTS(float32(1.5)))
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatForPath("log.JSON"))
	assert.Equal(t, FormatFrames, FormatForPath("log.mpk"))
	assert.Equal(t, FormatJSONL, FormatForPath("log.jsonl"))
	assert.Equal(t, FormatJSONL, FormatForPath("log"))
}

func TestFileRoundTrip(t *testing.T) {
	events := sampleEvents()
	dir := t.TempDir()

	for _, name := range []string{"log.jsonl", "log.json", "log.mpk"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, events))

			got, stats, err := ReadFile(path, Options{})
			require.NoError(t, err)
			assert.Equal(t, len(events), stats.Read)
			require.Len(t, got, len(events))
			assert.Equal(t, events[2].ID, got[2].ID)
		})
	}
}

func TestWriteJSONArray_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, nil))
	assert.Equal(t, "[\n]\n", buf.String())

	got, _, err := ReadJSON(&buf, Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnknownFormat(t *testing.T) {
	_, _, err := Read(strings.NewReader(""), "xml", Options{})
	assert.Error(t, err)
	assert.Error(t, Write(&bytes.Buffer{}, "xml", nil))
}
