package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chaz8081/gostt-transcribe/internal/config"
)

// writeAudio creates a small file to upload and returns its path and contents.
func writeAudio(t *testing.T, name string) (string, []byte) {
	t.Helper()
	data := []byte("RIFF$\x00\x00\x00WAVEfmt fake audio payload")
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path, data
}

func testConfig(baseURL string) *config.TranscribeConfig {
	return &config.TranscribeConfig{
		Backend: "openai",
		Model:   "whisper-1",
		BaseURL: baseURL,
		APIKey:  "sk-test",
		Timeout: 5 * time.Second,
	}
}

func TestOpenAITranscribe(t *testing.T) {
	path, data := writeAudio(t, "take.wav")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %s, want /v1/audio/transcriptions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer sk-test")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q, want %q", got, "whisper-1")
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q, want %q", got, "en")
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile(file): %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		if hdr.Filename != "take.wav" {
			t.Errorf("file name = %q, want %q", hdr.Filename, "take.wav")
		}
		if got := hdr.Header.Get("Content-Type"); got != "audio/wav" {
			t.Errorf("file Content-Type = %q, want %q", got, "audio/wav")
		}
		body, _ := io.ReadAll(f)
		if string(body) != string(data) {
			t.Errorf("uploaded %d bytes, want %d", len(body), len(data))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"  Ask not what your country can do for you.  "}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL + "/v1/")
	cfg.Language = "en"
	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	text, err := tr.Transcribe(context.Background(), path)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if want := "Ask not what your country can do for you."; text != want {
		t.Errorf("Transcribe() = %q, want %q", text, want)
	}
}

func TestOpenAITranscribeM4A(t *testing.T) {
	path, _ := writeAudio(t, "memo.m4a")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile(file): %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if hdr.Filename != "memo.m4a" {
			t.Errorf("file name = %q, want %q", hdr.Filename, "memo.m4a")
		}
		if got := hdr.Header.Get("Content-Type"); got != "audio/m4a" {
			t.Errorf("file Content-Type = %q, want %q", got, "audio/m4a")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"memo"}`)
	}))
	defer srv.Close()

	tr, err := New(testConfig(srv.URL + "/v1"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := tr.Transcribe(context.Background(), path); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"take.wav", "audio/wav"},
		{"/tmp/Memo.M4A", "audio/m4a"},
		{"song.mp3", "audio/mpeg"},
		{"notes.txt", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := contentTypeFor(tt.path); got != tt.want {
				t.Errorf("contentTypeFor(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestOpenAITranscribeAPIError(t *testing.T) {
	path, _ := writeAudio(t, "take.m4a")

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	tr, err := New(testConfig(srv.URL + "/v1"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = tr.Transcribe(context.Background(), path)
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Transcribe() error = %v, want *openai.APIError", err)
	}
	if apiErr.HTTPStatusCode != http.StatusUnauthorized {
		t.Errorf("HTTPStatusCode = %d, want 401", apiErr.HTTPStatusCode)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want exactly 1 (no retries)", calls)
	}
}

func TestOpenAITranscribeMissingFile(t *testing.T) {
	tr, err := New(testConfig("http://127.0.0.1:0/v1"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = tr.Transcribe(context.Background(), "/nonexistent/audio.wav")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Transcribe() error = %v, want os.ErrNotExist", err)
	}
}

func TestOpenAITranscribeCancelled(t *testing.T) {
	path, _ := writeAudio(t, "take.wav")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	tr, err := New(testConfig(srv.URL + "/v1"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := tr.Transcribe(ctx, path); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Transcribe() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		cfg := testConfig("http://localhost/v1")
		cfg.APIKey = key
		if _, err := New(cfg); err == nil {
			t.Errorf("New() with API key %q should fail", key)
		}
	}
}

func TestNewUnknownBackend(t *testing.T) {
	cfg := testConfig("http://localhost/v1")
	cfg.Backend = "parakeet"
	if _, err := New(cfg); err == nil {
		t.Error("New() with unknown backend should fail")
	}
}

func TestNewDefaultsModel(t *testing.T) {
	cfg := testConfig("http://localhost/v1")
	cfg.Model = ""
	tr := NewOpenAITranscriber(cfg)
	if tr.model != openai.Whisper1 {
		t.Errorf("model = %q, want %q", tr.model, openai.Whisper1)
	}
}
