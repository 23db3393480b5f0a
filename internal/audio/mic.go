package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// frameQueueLen bounds how many captured frames may wait for ReadFrame.
const frameQueueLen = 64

// MicSource captures mono 16-bit audio from the default microphone and slices
// it into frames of a fixed number of samples.
type MicSource struct {
	ctx        *malgo.AllocatedContext
	sampleRate uint32
	frameSize  int
	logger     *slog.Logger

	mu       sync.Mutex
	device   *malgo.Device
	active   bool
	pending  []int16
	frames   chan []int16
	overruns int
}

// NewMicSource creates a microphone frame source. Call Close() when done.
func NewMicSource(sampleRate uint32, frameSize int) (*MicSource, error) {
	if sampleRate == 0 {
		return nil, fmt.Errorf("audio: sample rate must be > 0")
	}
	if frameSize <= 0 {
		return nil, fmt.Errorf("audio: frame size must be > 0")
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}

	return &MicSource{
		ctx:        ctx,
		sampleRate: sampleRate,
		frameSize:  frameSize,
		logger:     slog.Default(),
	}, nil
}

// Start begins capturing from the default microphone.
func (m *MicSource) Start() error {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return fmt.Errorf("audio: already capturing")
	}
	m.pending = make([]int16, 0, m.frameSize)
	m.frames = make(chan []int16, frameQueueLen)
	m.overruns = 0
	m.active = true
	m.mu.Unlock()

	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatS16
	deviceCfg.Capture.Channels = 1
	deviceCfg.SampleRate = m.sampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: m.onData,
	}

	device, err := malgo.InitDevice(m.ctx.Context, deviceCfg, callbacks)
	if err != nil {
		m.deactivate()
		return &DeviceError{Op: "initialize capture device", Err: err}
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		m.deactivate()
		return &DeviceError{Op: "start capture device", Err: err}
	}

	m.mu.Lock()
	m.device = device
	m.mu.Unlock()

	return nil
}

// ReadFrame returns the next captured frame. Once the source is stopped and
// every queued frame has been read it returns ErrSourceStopped.
func (m *MicSource) ReadFrame(ctx context.Context) ([]int16, error) {
	m.mu.Lock()
	frames := m.frames
	m.mu.Unlock()
	if frames == nil {
		return nil, ErrSourceStopped
	}

	select {
	case frame, ok := <-frames:
		if !ok {
			return nil, ErrSourceStopped
		}
		return frame, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop halts capture and releases the device. Samples that did not fill a
// whole frame are discarded.
func (m *MicSource) Stop() error {
	m.mu.Lock()
	device := m.device
	m.device = nil
	m.mu.Unlock()

	// Uninit waits for the data callback to return, so it must run unlocked.
	if device != nil {
		device.Uninit()
	}
	m.deactivate()
	return nil
}

// IsActive returns whether the source is currently capturing.
func (m *MicSource) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// SampleRate returns the capture sample rate.
func (m *MicSource) SampleRate() uint32 {
	return m.sampleRate
}

// Close stops capture and releases the audio context.
func (m *MicSource) Close() error {
	_ = m.Stop()

	if m.ctx != nil {
		if err := m.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninitializing audio context: %w", err)
		}
		m.ctx.Free()
		m.ctx = nil
	}

	return nil
}

func (m *MicSource) deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}
	m.active = false
	m.pending = nil
	if m.frames != nil {
		close(m.frames)
	}
	if m.overruns > 0 {
		m.logger.Warn("capture overrun, frames dropped", "frames", m.overruns)
	}
}

// onData is the malgo callback invoked when captured audio is available.
// pSample holds frameCount little-endian int16 samples.
func (m *MicSource) onData(_, pSample []byte, frameCount uint32) {
	samples := bytesToInt16(pSample, frameCount)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}
	m.pending = append(m.pending, samples...)
	for len(m.pending) >= m.frameSize {
		frame := make([]int16, m.frameSize)
		copy(frame, m.pending)
		m.pending = append(m.pending[:0], m.pending[m.frameSize:]...)

		select {
		case m.frames <- frame:
		default: // reader is behind; never block the audio thread
			m.overruns++
		}
	}
}

// bytesToInt16 converts raw little-endian int16 bytes to a sample slice.
func bytesToInt16(data []byte, sampleCount uint32) []int16 {
	samples := make([]int16, 0, sampleCount)
	for i := uint32(0); i < sampleCount; i++ {
		offset := i * 2
		if offset+2 > uint32(len(data)) {
			break
		}
		samples = append(samples, int16(binary.LittleEndian.Uint16(data[offset:offset+2])))
	}
	return samples
}
