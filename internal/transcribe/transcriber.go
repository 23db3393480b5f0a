// Package transcribe uploads finished audio files to a speech-to-text
// service and returns the recognized text.
//
// Supported backends:
//   - openai: the OpenAI-compatible /audio/transcriptions endpoint (default)
//
// The file part carries a media type derived from the file extension
// (audio/wav, audio/m4a, ...); unknown extensions go as
// application/octet-stream.
package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/chaz8081/gostt-transcribe/internal/config"
)

// Transcriber converts an audio file to text.
type Transcriber interface {
	// Transcribe uploads the file at path and returns the recognized text.
	Transcribe(ctx context.Context, path string) (string, error)
}

// New creates a Transcriber based on the config backend setting.
// A blank API key is rejected before any request is made.
func New(cfg *config.TranscribeConfig) (Transcriber, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("transcribe: OPENAI_API_KEY is not set")
	}
	switch cfg.Backend {
	case "openai", "":
		return NewOpenAITranscriber(cfg), nil
	default:
		return nil, fmt.Errorf("transcribe: unknown backend %q (supported: openai)", cfg.Backend)
	}
}
