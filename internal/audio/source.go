// Package audio captures 16-bit PCM frames from a microphone and records them
// into WAV files.
package audio

import (
	"context"
	"errors"
)

// ErrSourceStopped is returned by ReadFrame once the source has been stopped.
var ErrSourceStopped = errors.New("audio: frame source stopped")

// FrameSource delivers fixed-length frames of 16-bit signed mono samples.
type FrameSource interface {
	// Start opens the capture device and begins producing frames.
	Start() error
	// ReadFrame blocks until the next frame is available or ctx is done.
	ReadFrame(ctx context.Context) ([]int16, error)
	// Stop halts capture and releases the device.
	Stop() error
	// IsActive reports whether the source is capturing.
	IsActive() bool
	// SampleRate is fixed for the lifetime of the source.
	SampleRate() uint32
}

// DeviceError reports a capture device failure while starting or reading.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string { return "audio: " + e.Op + ": " + e.Err.Error() }

func (e *DeviceError) Unwrap() error { return e.Err }
