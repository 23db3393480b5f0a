// Command test-record is a manual test for microphone capture.
// It records from the default microphone until Enter is pressed, then
// prints what a WAV decoder sees in the resulting file.
//
// Usage:
//
//	go run ./cmd/test-record [--rate 16000] [--out take.wav]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chaz8081/gostt-transcribe/internal/audio"
	"github.com/chaz8081/gostt-transcribe/internal/trigger"
	"github.com/chaz8081/gostt-transcribe/internal/wav"
)

func main() {
	rate := flag.Uint("rate", 16000, "capture sample rate")
	frame := flag.Int("frame", 512, "samples per frame")
	out := flag.String("out", "test-record.wav", "output WAV file")
	flag.Parse()

	src, err := audio.NewMicSource(uint32(*rate), *frame)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer src.Close()

	// Handle Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := audio.NewSession(src, *out, audio.WithHeaderRefresh(16))
	console := trigger.NewConsole(os.Stdin)
	go console.Start()
	defer console.Stop()

	events := console.Events()
wait:
	for {
		select {
		case ev, ok := <-events:
			if !ok || ev.Type == trigger.EventStop {
				break wait
			}
			if err := session.Start(ctx); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fmt.Printf(">>> recording to %s, press Enter to stop\n", *out)
		case <-ctx.Done():
			fmt.Println("\nShutting down...")
			break wait
		}
	}

	res, err := session.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("<<< %d frames, %d samples, %s\n", res.Frames, res.Samples, res.Duration)

	info, err := wav.Probe(res.Path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("    decoder: %dHz, %dch, %d-bit, %s\n", info.SampleRate, info.Channels, info.BitDepth, info.Duration)
}
