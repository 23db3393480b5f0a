// Package output delivers transcribed text: printed to the console, typed
// into the active application, or pasted through the clipboard.
package output

import (
	"fmt"
	"io"
)

// Emitter delivers a transcription result.
type Emitter interface {
	Emit(text string) error
}

// New returns the Emitter for method ("print", "type" or "paste").
// Printed results go to w.
func New(method string, w io.Writer) (Emitter, error) {
	switch method {
	case "print", "":
		return NewPrinter(w), nil
	case "type", "paste":
		return NewKeyboard(method), nil
	default:
		return nil, fmt.Errorf("output: unknown method %q (supported: print, type, paste)", method)
	}
}

// Printer writes results to a console stream.
type Printer struct {
	w io.Writer
}

// Compile-time interface satisfaction check.
var _ Emitter = (*Printer)(nil)

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Emit prints the transcription preceded by a blank line.
func (p *Printer) Emit(text string) error {
	if _, err := fmt.Fprintf(p.w, "\nTranscription: %s\n", text); err != nil {
		return fmt.Errorf("output: print: %w", err)
	}
	return nil
}
