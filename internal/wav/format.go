package wav

import (
	"fmt"
	"time"
)

// Format describes the PCM layout of a file. Only 16-bit samples are supported.
type Format struct {
	SampleRate uint32
	Channels   uint16 // defaults to 1; only mono is written
	BitDepth   uint16 // defaults to 16
}

// withDefaults fills in the mono/16-bit defaults and validates the result.
func (f Format) withDefaults() (Format, error) {
	if f.Channels == 0 {
		f.Channels = 1
	}
	if f.BitDepth == 0 {
		f.BitDepth = 16
	}
	if f.SampleRate == 0 {
		return f, fmt.Errorf("wav: sample rate must be > 0")
	}
	if f.Channels != 1 {
		return f, fmt.Errorf("wav: unsupported channel count %d, only mono is written", f.Channels)
	}
	if f.BitDepth != 16 {
		return f, fmt.Errorf("wav: unsupported bit depth %d, only 16-bit PCM is written", f.BitDepth)
	}
	return f, nil
}

func (f Format) bytesPerSample() uint32 {
	return uint32(f.BitDepth) / 8
}

// duration converts an interleaved sample count to playback time.
func (f Format) duration(samples uint64) time.Duration {
	if f.SampleRate == 0 || f.Channels == 0 {
		return 0
	}
	frames := samples / uint64(f.Channels)
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}
