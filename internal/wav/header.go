// Package wav writes 16-bit PCM WAV files whose header is kept in step with
// the samples appended while a recording is still in progress.
package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderSize is the size of the canonical PCM WAV header in bytes.
const HeaderSize = 44

const (
	formatPCM      = 1
	fmtChunkSize   = 16
	riffBaseLength = HeaderSize - 8 // chunk_size when the data chunk is empty
)

// Header is the 44-byte RIFF/WAVE header, laid out exactly as it appears on disk.
type Header struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // bytes of sample data
}

// NewHeader builds the header for a file holding samples samples in format f.
// The size fields depend only on samples, channel count and bit depth. Data
// beyond the 32-bit RIFF limit is clamped to the largest describable size.
func NewHeader(f Format, samples uint64) Header {
	dataSize := uint32(maxDataBytes)
	if bps := uint64(f.bytesPerSample()); bps == 0 || samples <= maxDataBytes/bps {
		dataSize = uint32(samples * bps)
	}
	return Header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     riffBaseLength + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: fmtChunkSize,
		AudioFormat:   formatPCM,
		NumChannels:   f.Channels,
		SampleRate:    f.SampleRate,
		ByteRate:      f.SampleRate * uint32(f.Channels) * uint32(f.BitDepth) / 8,
		BlockAlign:    f.Channels * f.BitDepth / 8,
		BitsPerSample: f.BitDepth,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
}

// MarshalBinary encodes the header little-endian.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("wav: encode header: %w", err)
	}
	return buf.Bytes(), nil
}

// Samples returns the number of samples the data chunk claims to hold.
func (h Header) Samples() uint64 {
	if h.BitsPerSample == 0 {
		return 0
	}
	return uint64(h.Subchunk2Size) / uint64(h.BitsPerSample/8)
}

// ReadHeader decodes and validates a canonical 44-byte PCM header.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Header{}, fmt.Errorf("wav: read header: %w", err)
	}
	switch {
	case string(h.ChunkID[:]) != "RIFF":
		return Header{}, fmt.Errorf("wav: missing RIFF chunk")
	case string(h.Format[:]) != "WAVE":
		return Header{}, fmt.Errorf("wav: missing WAVE format")
	case string(h.Subchunk1ID[:]) != "fmt ":
		return Header{}, fmt.Errorf("wav: missing fmt chunk")
	case string(h.Subchunk2ID[:]) != "data":
		return Header{}, fmt.Errorf("wav: missing data chunk")
	case h.AudioFormat != formatPCM:
		return Header{}, fmt.Errorf("wav: unsupported audio format %d", h.AudioFormat)
	}
	return h, nil
}
