package wav

import (
	"errors"
	"fmt"
	"os"
	"time"

	gowav "github.com/go-audio/wav"
)

// ErrNotWAV is returned by Probe for files that are not RIFF/WAVE audio.
var ErrNotWAV = errors.New("wav: not a WAV file")

// Info summarizes an existing WAV file.
type Info struct {
	SampleRate uint32
	Channels   uint16
	BitDepth   uint16
	Duration   time.Duration
}

// Probe reads the header of the WAV file at path.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	dec := gowav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Info{}, fmt.Errorf("%w: %s", ErrNotWAV, path)
	}
	// The decoder's own Duration counts the RIFF chunk size, which includes
	// the header; the data chunk length is what plays.
	if err := dec.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("wav: probe %s: %w", path, err)
	}
	info := Info{
		SampleRate: dec.SampleRate,
		Channels:   dec.NumChans,
		BitDepth:   dec.BitDepth,
	}
	info.Duration = dataDuration(dec.PCMLen(), info.SampleRate, info.Channels, info.BitDepth)
	return info, nil
}

// dataDuration converts a data chunk length in bytes to playback time.
func dataDuration(dataBytes int64, sampleRate uint32, channels, bitDepth uint16) time.Duration {
	byteRate := int64(sampleRate) * int64(channels) * int64(bitDepth) / 8
	if byteRate <= 0 || dataBytes <= 0 {
		return 0
	}
	return time.Duration(dataBytes * int64(time.Second) / byteRate)
}
