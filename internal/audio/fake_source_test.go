package audio

import (
	"context"
	"errors"
	"sync"
)

// rampSource is a deterministic FrameSource whose samples count up from zero.
type rampSource struct {
	rate     uint32
	frameLen int

	// limit blocks ReadFrame after this many frames until ctx is done (0 = unlimited).
	limit int
	// failAfter makes ReadFrame fail after this many frames (0 = never).
	failAfter int
	startErr  error

	mu            sync.Mutex
	active        bool
	next          int16
	delivered     int
	deliveredStop int
	stopCalls     int
	readAfterStop bool
}

func newRampSource(frameLen int) *rampSource {
	return &rampSource{rate: 16000, frameLen: frameLen}
}

func (r *rampSource) Start() error {
	if r.startErr != nil {
		return r.startErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = true
	return nil
}

func (r *rampSource) ReadFrame(ctx context.Context) ([]int16, error) {
	r.mu.Lock()
	if !r.active {
		r.readAfterStop = true
		r.mu.Unlock()
		return nil, ErrSourceStopped
	}
	if r.failAfter > 0 && r.delivered >= r.failAfter {
		r.mu.Unlock()
		return nil, errors.New("device unplugged")
	}
	if r.limit > 0 && r.delivered >= r.limit {
		r.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	frame := make([]int16, r.frameLen)
	for i := range frame {
		frame[i] = r.next
		r.next++
	}
	r.delivered++
	r.mu.Unlock()
	return frame, nil
}

func (r *rampSource) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
	r.stopCalls++
	r.deliveredStop = r.delivered
	return nil
}

func (r *rampSource) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *rampSource) SampleRate() uint32 { return r.rate }

func (r *rampSource) deliveredFrames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delivered
}
