package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chaz8081/gostt-transcribe/internal/wav"
)

// ErrSessionState is returned when a session operation does not fit its state.
var ErrSessionState = errors.New("audio: invalid session state")

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result describes a finished recording.
type Result struct {
	Path     string
	Samples  uint64
	Frames   int
	Duration time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for session lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithHeaderRefresh rewrites the WAV header every n frames while recording,
// so an interrupted recording still describes most of its data. n <= 0
// disables refreshing; the header is always corrected when the session stops.
func WithHeaderRefresh(n int) Option {
	return func(s *Session) { s.headerRefresh = n }
}

// Session records one take from a FrameSource into a WAV file.
//
// After Start, only the pump goroutine touches the writer and the source.
// Stop cancels the pump and waits for it to stop the device and finalize the
// file, so a frame is never appended after the device is released.
type Session struct {
	src           FrameSource
	path          string
	logger        *slog.Logger
	headerRefresh int
	create        func(path string, f wav.Format) (*wav.Writer, error)

	mu      sync.Mutex
	state   State
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
	result  Result
	err     error
}

// NewSession creates an idle session that will record src into path.
func NewSession(src FrameSource, path string, opts ...Option) *Session {
	s := &Session{
		src:    src,
		path:   path,
		logger: slog.Default(),
		create: wav.Create,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the WAV file, starts the source and begins pumping frames.
// Cancelling ctx ends the recording the same way Stop does.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("%w: start while %s", ErrSessionState, s.state)
	}

	w, err := s.create(s.path, wav.Format{SampleRate: s.src.SampleRate()})
	if err != nil {
		s.state = StateStopped
		return err
	}

	if err := s.src.Start(); err != nil {
		s.state = StateStopped
		var devErr *DeviceError
		if !errors.As(err, &devErr) {
			err = &DeviceError{Op: "start", Err: err}
		}
		return errors.Join(err, w.Finalize())
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateRecording
	s.logger.Info("recording started", "path", s.path, "sample_rate", s.src.SampleRate())

	go s.pump(pumpCtx, cancel, w)
	return nil
}

// pump forwards frames from the source to the writer until cancelled or a
// read or write fails, then releases both.
func (s *Session) pump(ctx context.Context, cancel context.CancelFunc, w *wav.Writer) {
	defer close(s.done)
	defer cancel()

	var (
		frames int
		cause  error
	)
	for {
		frame, err := s.src.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() == nil {
				cause = &DeviceError{Op: "read frame", Err: err}
			}
			break
		}
		if err := w.AppendSamples(frame); err != nil {
			cause = err
			break
		}
		frames++

		if s.headerRefresh > 0 && frames%s.headerRefresh == 0 {
			if err := w.RewriteHeader(); err != nil {
				cause = err
				break
			}
		}

		// Poll for a stop request between frames.
		if ctx.Err() != nil {
			break
		}
	}

	s.finish(w, frames, cause)
}

func (s *Session) finish(w *wav.Writer, frames int, cause error) {
	var stopErr error
	if err := s.src.Stop(); err != nil {
		stopErr = &DeviceError{Op: "stop", Err: err}
	}
	finErr := w.Finalize()

	res := Result{
		Path:     s.path,
		Samples:  w.Samples(),
		Frames:   frames,
		Duration: w.Duration(),
	}
	err := errors.Join(cause, stopErr, finErr)

	s.mu.Lock()
	s.state = StateStopped
	s.result = res
	s.err = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("recording failed", "path", s.path, "frames", frames, "error", err)
		return
	}
	s.logger.Info("recording stopped", "path", s.path, "frames", frames,
		"samples", res.Samples, "duration", res.Duration.Round(time.Millisecond))
}

// Stop ends the recording. It returns once the source is stopped and the WAV
// file is finalized. If the recording already failed, that error is returned.
func (s *Session) Stop() (Result, error) {
	s.mu.Lock()
	if s.done == nil {
		state := s.state
		s.mu.Unlock()
		return Result{}, fmt.Errorf("%w: stop while %s", ErrSessionState, state)
	}
	if s.stopped {
		s.mu.Unlock()
		return Result{}, fmt.Errorf("%w: already stopped", ErrSessionState)
	}
	s.stopped = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.err
}

// Wait blocks until the recording ends on its own, through ctx cancellation,
// a failure, or a concurrent Stop.
func (s *Session) Wait() (Result, error) {
	s.mu.Lock()
	done := s.done
	state := s.state
	s.mu.Unlock()
	if done == nil {
		return Result{}, fmt.Errorf("%w: wait while %s", ErrSessionState, state)
	}

	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.err
}

// Done is closed when the pump has stopped. It is nil before Start succeeds.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsRecording reports whether frames are being pumped.
func (s *Session) IsRecording() bool {
	return s.State() == StateRecording
}
