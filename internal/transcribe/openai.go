package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chaz8081/gostt-transcribe/internal/config"
)

// OpenAITranscriber posts audio files to an OpenAI-compatible transcription
// endpoint as multipart/form-data with a bearer token. It never retries.
type OpenAITranscriber struct {
	client   *openai.Client
	model    string
	language string
}

// NewOpenAITranscriber builds a client for cfg.BaseURL using cfg.APIKey.
func NewOpenAITranscriber(cfg *config.TranscribeConfig) *OpenAITranscriber {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	return &OpenAITranscriber{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		language: cfg.Language,
	}
}

// Transcribe uploads the file at path and returns the trimmed "text" field
// of the JSON response.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("transcribe: audio file: %w", err)
	}
	defer f.Close()

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   audioPart{File: f, contentType: contentTypeFor(path)},
		FilePath: path,
		Language: t.language,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: create transcription: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// audioPart labels the uploaded file part with its media type. Without it the
// client sends application/octet-stream and the service goes by file name.
type audioPart struct {
	*os.File
	contentType string
}

func (p audioPart) ContentType() string { return p.contentType }

var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".m4a":  "audio/m4a",
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// contentTypeFor maps an audio file extension to its media type.
func contentTypeFor(path string) string {
	if ct, ok := audioTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "application/octet-stream"
}
