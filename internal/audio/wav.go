package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// WAV constants for mono 32-bit IEEE float output.
const (
	wavFormatFloat   = 3
	wavChannels      = 1
	wavBitsPerSample = 32
	wavBlockAlign    = wavChannels * wavBitsPerSample / 8
)

// EncodeWAV writes samples as a mono 32-bit float WAV file.
func EncodeWAV(w io.Writer, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("encode wav: invalid sample rate %d", sampleRate)
	}
	dataSize := len(samples) * wavBlockAlign
	if uint64(dataSize) > math.MaxUint32-36 {
		return fmt.Errorf("encode wav: %d samples exceed the RIFF size limit", len(samples))
	}

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatFloat)
	binary.LittleEndian.PutUint16(header[22:24], wavChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*wavBlockAlign))
	binary.LittleEndian.PutUint16(header[32:34], wavBlockAlign)
	binary.LittleEndian.PutUint16(header[34:36], wavBitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("encode wav: write header: %w", err)
	}
	if _, err := w.Write(SampleBytes(samples)); err != nil {
		return fmt.Errorf("encode wav: write samples: %w", err)
	}
	return nil
}

// SampleBytes returns the little-endian IEEE 754 bytes of samples.
// This is the byte form used for artifact digests.
func SampleBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
