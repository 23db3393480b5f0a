package wav

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"
)

// maxDataBytes is the largest data chunk a RIFF size field can describe.
const maxDataBytes = math.MaxUint32 - riffBaseLength

// ErrTooLong is returned when an append would overflow the 32-bit RIFF sizes.
var ErrTooLong = errors.New("wav: data chunk exceeds 4 GiB")

// Sink is the destination a Writer appends to and patches the header of.
type Sink interface {
	io.WriteSeeker
	io.Closer
}

// Writer appends 16-bit PCM samples to a WAV file and keeps its header in step
// with the number of samples written. It is safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	sink    Sink
	buf     *bufio.Writer
	path    string
	format  Format
	samples uint64
	open    bool
	scratch []byte
}

// Create creates (or truncates) the file at path and writes a header for zero
// samples. Subsequent appends land directly after the header.
func Create(path string, format Format) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, &IOError{Op: "create", Path: path, Err: err}
	}
	w, err := newWriter(f, path, format)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// NewWriter writes a zero-sample header to sink and returns a Writer appending
// to it. The sink should be positioned at offset 0.
func NewWriter(sink Sink, format Format) (*Writer, error) {
	return newWriter(sink, "", format)
}

func newWriter(sink Sink, path string, format Format) (*Writer, error) {
	format, err := format.withDefaults()
	if err != nil {
		return nil, err
	}
	w := &Writer{
		sink:   sink,
		buf:    bufio.NewWriter(sink),
		path:   path,
		format: format,
		open:   true,
	}
	hdr, err := NewHeader(format, 0).MarshalBinary()
	if err != nil {
		return nil, err
	}
	if _, err := sink.Write(hdr); err != nil {
		return nil, &IOError{Op: "write header", Path: path, Err: err}
	}
	return w, nil
}

// AppendSamples writes frame as little-endian int16 samples after the data
// already written and advances the sample count by len(frame).
func (w *Writer) AppendSamples(frame []int16) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrInvalidState
	}
	if len(frame) == 0 {
		return nil
	}
	bps := uint64(w.format.bytesPerSample())
	if (w.samples+uint64(len(frame)))*bps > maxDataBytes {
		return ErrTooLong
	}

	w.scratch = w.scratch[:0]
	for _, s := range frame {
		w.scratch = binary.LittleEndian.AppendUint16(w.scratch, uint16(s))
	}
	n, err := w.buf.Write(w.scratch)
	// Count whatever reached the buffer so the header never claims more than was written.
	w.samples += uint64(n) / bps
	if err != nil {
		return &IOError{Op: "append samples", Path: w.path, Err: err}
	}
	return nil
}

// RewriteHeader patches bytes 0..44 with a header describing the samples
// written so far, then returns the cursor to the append position.
func (w *Writer) RewriteHeader() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrInvalidState
	}
	return w.rewriteHeader()
}

func (w *Writer) rewriteHeader() error {
	if err := w.buf.Flush(); err != nil {
		return &IOError{Op: "flush", Path: w.path, Err: err}
	}
	pos, err := w.sink.Seek(0, io.SeekCurrent)
	if err != nil {
		return &IOError{Op: "seek", Path: w.path, Err: err}
	}
	hdr, err := NewHeader(w.format, w.samples).MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.sink.Seek(0, io.SeekStart); err != nil {
		return &IOError{Op: "seek", Path: w.path, Err: err}
	}
	if _, err := w.sink.Write(hdr); err != nil {
		return &IOError{Op: "rewrite header", Path: w.path, Err: err}
	}
	if _, err := w.sink.Seek(pos, io.SeekStart); err != nil {
		return &IOError{Op: "seek", Path: w.path, Err: err}
	}
	return nil
}

// Finalize writes the final header, flushes buffered samples and closes the
// sink. The writer rejects every later call with ErrInvalidState.
func (w *Writer) Finalize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return fmt.Errorf("finalize: %w", ErrInvalidState)
	}
	w.open = false

	rewriteErr := w.rewriteHeader()
	var closeErr error
	if err := w.sink.Close(); err != nil {
		closeErr = &IOError{Op: "close", Path: w.path, Err: err}
	}
	w.buf = nil
	return errors.Join(rewriteErr, closeErr)
}

// Samples returns the number of samples appended so far.
func (w *Writer) Samples() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.samples
}

// Duration returns the playback length of the samples appended so far.
func (w *Writer) Duration() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.format.duration(w.samples)
}

// Format returns the format the file was created with, defaults applied.
func (w *Writer) Format() Format {
	return w.format
}

// Path returns the file path, or "" for writers created with NewWriter.
func (w *Writer) Path() string {
	return w.path
}

// IsOpen reports whether the writer still accepts samples.
func (w *Writer) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}
