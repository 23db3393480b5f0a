package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/chaz8081/gostt-transcribe/internal/audio"
	"github.com/chaz8081/gostt-transcribe/internal/config"
	"github.com/chaz8081/gostt-transcribe/internal/output"
	"github.com/chaz8081/gostt-transcribe/internal/transcribe"
	"github.com/chaz8081/gostt-transcribe/internal/trigger"
	"github.com/chaz8081/gostt-transcribe/internal/wav"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/gostt-transcribe/config.yaml)")
	interactive := flag.Bool("interactive", false, "record from the microphone instead of reading a file")
	outDir := flag.String("out", "", "directory for recordings (overrides record.output_dir)")
	initConfig := flag.Bool("init", false, "write the default config file and exit")
	flag.Parse()

	if *initConfig {
		path, err := config.WriteDefault()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		if path == "" {
			fmt.Println("Config already exists at", config.DefaultConfigPath())
			return
		}
		fmt.Println("Wrote", path)
		return
	}

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if *interactive {
		cfg.Interactive = true
	}
	if *outDir != "" {
		cfg.Record.OutputDir = *outDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	// Fail fast on a missing API key, before recording anything.
	transcriber, err := transcribe.New(&cfg.Transcribe)
	if err != nil {
		log.Fatalf("%v", err)
	}

	emitter, err := output.New(cfg.Output.Method, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, transcriber, emitter)
	stop()
	switch {
	case errors.Is(err, errInterrupted):
		log.Printf("%v", err)
		os.Exit(130)
	case errors.Is(err, errTooShort):
		log.Printf("%v, skipping", err)
	case err != nil:
		log.Fatalf("%v", err)
	}
}

var (
	errInterrupted = errors.New("interrupted")
	errTooShort    = errors.New("recording too short")
)

// run obtains one audio file, from the microphone or the command line, and
// emits its transcript. A signal before the upload starts aborts the run.
func run(ctx context.Context, cfg *config.Config, transcriber transcribe.Transcriber, emitter output.Emitter) error {
	stdin := bufio.NewReader(os.Stdin)

	var audioPath string
	if cfg.Interactive {
		res, err := record(ctx, cfg, stdin)
		if err != nil {
			if ctx.Err() != nil && res.Path == "" {
				return errInterrupted
			}
			return fmt.Errorf("recording failed: %w", err)
		}
		if err := checkTake(ctx, res, cfg.Record.MinDuration); err != nil {
			return err
		}
		audioPath = res.Path
	} else {
		path, err := inputPath(flag.Args(), stdin)
		if err != nil {
			return err
		}
		describeInput(path)
		audioPath = path
	}
	if ctx.Err() != nil {
		return errInterrupted
	}

	fmt.Println("Transcribing...")
	start := time.Now()
	text, err := transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}
	slog.Debug("transcribed", "path", audioPath, "elapsed", time.Since(start).Round(time.Millisecond))

	if text == "" {
		log.Println("No speech detected")
		return nil
	}
	if err := emitter.Emit(text); err != nil {
		return fmt.Errorf("output failed: %w", err)
	}
	return nil
}

// checkTake decides whether a finished recording goes on to transcription.
// A take stopped by a signal is kept on disk but not uploaded.
func checkTake(ctx context.Context, res audio.Result, minDuration time.Duration) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: recording kept at %s", errInterrupted, res.Path)
	}
	if res.Duration < minDuration {
		return fmt.Errorf("%w (%.1fs)", errTooShort, res.Duration.Seconds())
	}
	return nil
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		slog.Debug("config loaded", "path", defaultPath)
		return cfg, nil
	}

	return config.Default(), nil
}

// inputPath takes the file to transcribe from the first argument, or asks
// for it on the console. The file must exist.
func inputPath(args []string, in *bufio.Reader) (string, error) {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		fmt.Print("File to transcribe: ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading file path: %w", err)
		}
		path = strings.TrimSpace(line)
	}

	if path == "" {
		return "", errors.New("no file to transcribe")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("file not found: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}

// describeInput logs the format of WAV inputs. Other formats are uploaded as is.
func describeInput(path string) {
	info, err := wav.Probe(path)
	if err != nil {
		if !errors.Is(err, wav.ErrNotWAV) {
			slog.Warn("could not inspect input", "path", path, "error", err)
		}
		return
	}
	slog.Info("input", "path", path, "sample_rate", info.SampleRate, "channels", info.Channels,
		"bit_depth", info.BitDepth, "duration", info.Duration.Round(time.Millisecond))
}

// record captures one take from the microphone into a new WAV file. The
// configured trigger starts and stops it; a signal also stops it.
func record(ctx context.Context, cfg *config.Config, stdin *bufio.Reader) (audio.Result, error) {
	if err := os.MkdirAll(cfg.Record.OutputDir, 0o755); err != nil {
		return audio.Result{}, fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(cfg.Record.OutputDir, "recording-"+uuid.NewString()+".wav")

	src, err := audio.NewMicSource(cfg.Audio.SampleRate, cfg.Audio.FrameSize)
	if err != nil {
		return audio.Result{}, fmt.Errorf("%w\n\nEnsure microphone access is granted to this terminal.", err)
	}
	defer src.Close()

	session := audio.NewSession(src, path,
		audio.WithLogger(slog.Default()),
		audio.WithHeaderRefresh(cfg.Record.HeaderRefreshFrames),
	)

	var trg trigger.Trigger
	if cfg.Record.Trigger == "hotkey" {
		trg = trigger.NewHotkey(cfg.Hotkey.Keys, cfg.Hotkey.Mode)
		fmt.Printf("Press %s to record.\n", strings.Join(cfg.Hotkey.Keys, "+"))
	} else {
		trg = trigger.NewConsole(stdin)
	}
	go trg.Start()
	defer trg.Stop()

	events := trg.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// Input ended; stop a running take, otherwise there is nothing to record.
				if session.IsRecording() {
					return session.Stop()
				}
				return audio.Result{}, errors.New("input closed before recording started")
			}
			switch ev.Type {
			case trigger.EventStart:
				if session.State() != audio.StateIdle {
					continue
				}
				if err := session.Start(ctx); err != nil {
					return audio.Result{}, err
				}
				if cfg.Record.Trigger == "hotkey" {
					fmt.Println("Recording... release or press the hotkey again to stop.")
				} else {
					fmt.Println("Recording... press Enter to stop.")
				}
			case trigger.EventStop:
				if session.IsRecording() {
					return session.Stop()
				}
			}

		case <-session.Done():
			// Cancelled by a signal or failed on its own.
			return session.Wait()

		case <-ctx.Done():
			if session.State() == audio.StateIdle {
				return audio.Result{}, ctx.Err()
			}
			return session.Wait()
		}
	}
}
