package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/revelation/internal/event"
)

// FormatForPath picks an encoding from a file extension: .json is an
// array, .mpk/.msgpack/.frames are msgpack frames, anything else is
// JSON Lines.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".mpk", ".msgpack", ".frames":
		return FormatFrames
	default:
		return FormatJSONL
	}
}

// Read decodes r in the named format.
func Read(r io.Reader, format string, opts Options) ([]event.Event, Stats, error) {
	switch format {
	case FormatJSONL:
		return ReadJSONL(r, opts)
	case FormatJSON:
		return ReadJSON(r, opts)
	case FormatFrames:
		return ReadFrames(r, opts)
	default:
		return nil, Stats{}, fmt.Errorf("unknown event format %q", format)
	}
}

// ReadFile opens path and decodes it by extension. "-" reads stdin as
// JSON Lines.
func ReadFile(path string, opts Options) ([]event.Event, Stats, error) {
	if path == "-" {
		return ReadJSONL(os.Stdin, opts)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open events: %w", err)
	}
	defer f.Close()

	events, stats, err := Read(f, FormatForPath(path), opts)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return events, stats, nil
}

// Write encodes events in the named format. JSON arrays are written as
// JSON Lines would be, wrapped in brackets.
func Write(w io.Writer, format string, events []event.Event) error {
	switch format {
	case FormatJSONL:
		return WriteJSONL(w, events)
	case FormatFrames:
		return WriteFrames(w, events)
	case FormatJSON:
		return writeJSONArray(w, events)
	default:
		return fmt.Errorf("unknown event format %q", format)
	}
}

// WriteFile creates path and encodes events by extension. "-" writes
// JSON Lines to stdout.
func WriteFile(path string, events []event.Event) error {
	if path == "-" {
		return WriteJSONL(os.Stdout, events)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create events file: %w", err)
	}
	if err := Write(f, FormatForPath(path), events); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func writeJSONArray(w io.Writer, events []event.Event) error {
	if _, err := io.WriteString(w, "[\n"); err != nil {
		return err
	}
	var sb strings.Builder
	if err := WriteJSONL(&sb, events); err != nil {
		return err
	}
	lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	if len(events) == 0 {
		lines = nil
	}
	if _, err := io.WriteString(w, strings.Join(lines, ",\n")); err != nil {
		return err
	}
	if len(lines) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]\n")
	return err
}
