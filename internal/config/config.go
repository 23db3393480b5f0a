package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const appName = "gostt-transcribe"

// Config holds all application configuration.
type Config struct {
	Interactive bool             `yaml:"interactive"`
	Transcribe  TranscribeConfig `yaml:"transcribe"`
	Audio       AudioConfig      `yaml:"audio"`
	Record      RecordConfig     `yaml:"record"`
	Hotkey      HotkeyConfig     `yaml:"hotkey"`
	Output      OutputConfig     `yaml:"output"`
	LogLevel    string           `yaml:"log_level"`
}

// TranscribeConfig holds speech-to-text API settings.
type TranscribeConfig struct {
	Backend  string        `yaml:"backend"` // "openai"
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
	APIKey   string        `yaml:"-"` // environment only
}

// AudioConfig holds audio capture settings.
type AudioConfig struct {
	SampleRate uint32 `yaml:"sample_rate"`
	Channels   uint32 `yaml:"channels"`
	FrameSize  int    `yaml:"frame_size"` // samples per captured frame
}

// RecordConfig holds interactive recording settings.
type RecordConfig struct {
	OutputDir           string        `yaml:"output_dir"`
	Trigger             string        `yaml:"trigger"` // "enter" or "hotkey"
	MinDuration         time.Duration `yaml:"min_duration"`
	HeaderRefreshFrames int           `yaml:"header_refresh_frames"`
}

// HotkeyConfig holds hotkey-related settings.
type HotkeyConfig struct {
	Keys []string `yaml:"keys"`
	Mode string   `yaml:"mode"` // "hold" or "toggle"
}

// OutputConfig selects how transcribed text is delivered.
type OutputConfig struct {
	Method string `yaml:"method"` // "print", "type" or "paste"
}

// envOverrides are read from the process environment after the file.
type envOverrides struct {
	APIKey      string `env:"OPENAI_API_KEY"`
	BaseURL     string `env:"OPENAI_BASE_URL"`
	Interactive *bool  `env:"GOSTT_INTERACTIVE"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Transcribe: TranscribeConfig{
			Backend: "openai",
			Model:   "whisper-1",
			BaseURL: "https://api.openai.com/v1",
			Timeout: 2 * time.Minute,
		},
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
			FrameSize:  512,
		},
		Record: RecordConfig{
			OutputDir:           os.TempDir(),
			Trigger:             "enter",
			MinDuration:         300 * time.Millisecond,
			HeaderRefreshFrames: 32,
		},
		Hotkey: HotkeyConfig{
			Keys: []string{"ctrl", "shift", "r"},
			Mode: "toggle",
		},
		Output: OutputConfig{
			Method: "print",
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in record.output_dir is expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Record.OutputDir = expandTilde(cfg.Record.OutputDir)

	return cfg, nil
}

// ApplyEnv overlays OPENAI_API_KEY, OPENAI_BASE_URL and GOSTT_INTERACTIVE.
// The API key is only ever taken from the environment.
func (c *Config) ApplyEnv() error {
	var raw envOverrides
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("environment variables are invalid: %w", err)
	}

	c.Transcribe.APIKey = strings.TrimSpace(raw.APIKey)
	if raw.BaseURL != "" {
		c.Transcribe.BaseURL = raw.BaseURL
	}
	if raw.Interactive != nil {
		c.Interactive = *raw.Interactive
	}
	return nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.Transcribe.Backend {
	case "openai":
	default:
		return fmt.Errorf("transcribe.backend must be \"openai\", got %q", c.Transcribe.Backend)
	}

	if c.Transcribe.Model == "" {
		return fmt.Errorf("transcribe.model must not be empty")
	}

	if c.Transcribe.BaseURL == "" {
		return fmt.Errorf("transcribe.base_url must not be empty")
	}

	if c.Transcribe.Timeout < 0 {
		return fmt.Errorf("transcribe.timeout must not be negative")
	}

	if c.Audio.SampleRate == 0 {
		return fmt.Errorf("audio.sample_rate must be > 0")
	}

	if c.Audio.Channels != 1 {
		return fmt.Errorf("audio.channels must be 1, got %d", c.Audio.Channels)
	}

	if c.Audio.FrameSize <= 0 {
		return fmt.Errorf("audio.frame_size must be > 0")
	}

	switch c.Record.Trigger {
	case "enter":
	case "hotkey":
		if len(c.Hotkey.Keys) == 0 {
			return fmt.Errorf("hotkey.keys must not be empty when record.trigger is \"hotkey\"")
		}
	default:
		return fmt.Errorf("record.trigger must be \"enter\" or \"hotkey\", got %q", c.Record.Trigger)
	}

	if c.Record.HeaderRefreshFrames < 0 {
		return fmt.Errorf("record.header_refresh_frames must not be negative")
	}

	switch c.Hotkey.Mode {
	case "hold", "toggle":
	default:
		return fmt.Errorf("hotkey.mode must be \"hold\" or \"toggle\", got %q", c.Hotkey.Mode)
	}

	switch c.Output.Method {
	case "print", "type", "paste":
	default:
		return fmt.Errorf("output.method must be \"print\", \"type\" or \"paste\", got %q", c.Output.Method)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a log_level value to a slog.Level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const defaultFileHeader = `# ` + appName + ` configuration
#
# OPENAI_API_KEY must be set in the environment; it is never read from this file.
# OPENAI_BASE_URL and GOSTT_INTERACTIVE override the values below.

`

// WriteDefault writes the default config to DefaultConfigPath if no file
// exists there yet. It returns the path written, or "" if one already existed.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(defaultFileHeader), data...), 0o644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
