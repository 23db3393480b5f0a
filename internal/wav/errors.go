package wav

import "errors"

// ErrInvalidState is returned when a writer is used after it was finalized.
var ErrInvalidState = errors.New("wav: writer is closed")

// IOError reports a failure of the underlying file while creating, writing,
// flushing or closing a WAV file. The partially written file is left in place.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return "wav: " + e.Op + ": " + e.Err.Error()
	}
	return "wav: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }
