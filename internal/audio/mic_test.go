package audio

import (
	"context"
	"errors"
	"testing"
)

func TestNewMicSourceAndClose(t *testing.T) {
	m, err := NewMicSource(16000, 512)
	if err != nil {
		t.Skipf("no audio backend available: %v", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	if m.SampleRate() != 16000 {
		t.Errorf("SampleRate() = %d, want 16000", m.SampleRate())
	}
	if m.IsActive() {
		t.Error("IsActive() should be false after creation")
	}
}

func TestNewMicSourceRejectsBadArgs(t *testing.T) {
	if _, err := NewMicSource(0, 512); err == nil {
		t.Error("NewMicSource(0, 512) should fail")
	}
	if _, err := NewMicSource(16000, 0); err == nil {
		t.Error("NewMicSource(16000, 0) should fail")
	}
}

func TestReadFrameWithoutStart(t *testing.T) {
	m := &MicSource{sampleRate: 16000, frameSize: 4}
	if _, err := m.ReadFrame(context.Background()); !errors.Is(err, ErrSourceStopped) {
		t.Errorf("ReadFrame() error = %v, want ErrSourceStopped", err)
	}
}

func TestOnDataSlicesFrames(t *testing.T) {
	m := &MicSource{
		sampleRate: 16000,
		frameSize:  3,
		active:     true,
		frames:     make(chan []int16, 4),
	}

	// Five samples: 1, -1, 2, -2, 3 as little-endian int16.
	m.onData(nil, []byte{0x01, 0x00, 0xFF, 0xFF, 0x02, 0x00, 0xFE, 0xFF, 0x03, 0x00}, 5)

	frame, err := m.ReadFrame(context.Background())
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	want := []int16{1, -1, 2}
	for i := range want {
		if frame[i] != want[i] {
			t.Fatalf("frame = %v, want %v", frame, want)
		}
	}
	if len(m.pending) != 2 {
		t.Errorf("pending = %d samples, want 2", len(m.pending))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.ReadFrame(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadFrame() with cancelled ctx error = %v, want context.Canceled", err)
	}
}

func TestOnDataCountsOverruns(t *testing.T) {
	m := &MicSource{
		sampleRate: 16000,
		frameSize:  1,
		active:     true,
		frames:     make(chan []int16, 1),
	}
	m.onData(nil, []byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00}, 3)
	if m.overruns != 2 {
		t.Errorf("overruns = %d, want 2", m.overruns)
	}
}

func TestBytesToInt16(t *testing.T) {
	data := []byte{0x00, 0x80, 0xFF, 0x7F, 0x34, 0x12}
	samples := bytesToInt16(data, 3)
	want := []int16{-32768, 32767, 0x1234}
	if len(samples) != len(want) {
		t.Fatalf("bytesToInt16() returned %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("samples[%d] = %d, want %d", i, samples[i], want[i])
		}
	}
}

func TestBytesToInt16Truncated(t *testing.T) {
	samples := bytesToInt16([]byte{0x01, 0x00, 0x02}, 2)
	if len(samples) != 1 {
		t.Errorf("bytesToInt16() returned %d samples, want 1", len(samples))
	}
}
