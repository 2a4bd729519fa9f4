// Command descramble inverts the segment scrambling of an ANLG
// container, recovering the original waveform exactly when the key and
// session parameters match.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghostlink/ghostlink/internal/session"
	"github.com/ghostlink/ghostlink/pkg/anlg"
	"github.com/ghostlink/ghostlink/pkg/config"
	"github.com/ghostlink/ghostlink/pkg/keystream"
	"github.com/ghostlink/ghostlink/pkg/logger"
	"github.com/ghostlink/ghostlink/pkg/scramble"
	"github.com/ghostlink/ghostlink/pkg/waveform"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("descramble", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: descramble [flags] INPUT OUTPUT\n\nFlags:\n")
		fs.PrintDefaults()
	}

	configFile := fs.String("config", "", "Path to configuration file")
	showVersion := fs.Bool("version", false, "Show version information")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	password := fs.String("password", "", "Key derived from a password (SHA-256)")
	keyHex := fs.String("key", "", "Key as 64 hex characters (takes precedence over --password)")
	backend := fs.String("keystream", "", "Keystream backend: chacha20 or prng")
	streamID := fs.Uint64("stream-id", 0, "Session stream identifier")
	segments := fs.Int("segments", 0, "Segments per active line; overrides container metadata")
	jobs := fs.Int("jobs", 0, "Parallel line workers per frame")

	enablePerm := fs.Bool("enable-permutation", false, "Assume segment permutation was applied")
	disablePerm := fs.Bool("disable-permutation", false, "Assume segment permutation was not applied")
	enableInv := fs.Bool("enable-inversion", false, "Assume per-segment inversion was applied")
	disableInv := fs.Bool("disable-inversion", false, "Assume per-segment inversion was not applied")
	enableShift := fs.Bool("enable-shift", false, "Assume per-segment circular shift was applied")
	disableShift := fs.Bool("disable-shift", false, "Assume per-segment circular shift was not applied")

	fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("ghostlink descramble %s (built %s)\n", version, buildTime)
		return 0
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	input, output := fs.Arg(0), fs.Arg(1)

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "descramble: %v\n", err)
		return 1
	}

	level := cfg.Logging.Level
	if *verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level})

	key, err := resolveKey(*keyHex, *password)
	if err != nil {
		log.Error("Invalid key material", logger.Error(err))
		return 1
	}

	if *jobs > 0 {
		cfg.Scramble.Workers = *jobs
	}
	if *backend != "" {
		cfg.Keystream.Backend = *backend
	}
	if *streamID != 0 {
		cfg.Keystream.StreamID = *streamID
	}

	reader, err := anlg.Open(input)
	if err != nil {
		log.Error("Failed to open input", logger.String("path", input), logger.Error(err))
		return 1
	}
	defer reader.Close()

	meta := reader.Metadata()
	if !meta.Scrambled {
		log.Warn("Input is not marked scrambled; descrambling anyway")
	}

	// Session parameters come from the container when present; explicit
	// flags override.
	sessSegments := cfg.Scramble.Segments
	if meta.SegmentsPerLine > 0 {
		sessSegments = meta.SegmentsPerLine
	}
	if *segments > 0 {
		sessSegments = *segments
	}

	flags := scramble.FlagsFromOperations(meta.Operations)
	applyOpFlag(&flags.Permutation, *enablePerm, *disablePerm)
	applyOpFlag(&flags.Inversion, *enableInv, *disableInv)
	applyOpFlag(&flags.Shift, *enableShift, *disableShift)

	std, err := waveform.ByName(meta.Standard)
	if err != nil {
		log.Error("Unsupported video standard", logger.Error(err))
		return 1
	}
	framer, err := waveform.NewFramer(std, meta.SampleRate, meta.ActiveLines, meta.SamplesPerFrame)
	if err != nil {
		log.Error("Container geometry rejected", logger.Error(err))
		return 1
	}

	scfg := scramble.Config{
		Key:      key,
		Backend:  cfg.Keystream.Backend,
		StreamID: cfg.Keystream.StreamID,
		Segments: sessSegments,
		Flags:    flags,
		Workers:  cfg.Scramble.Workers,
	}
	descrambler, err := scramble.NewDescrambler(scfg, framer, std.Levels)
	if err != nil {
		log.Error("Failed to configure descrambler", logger.Error(err))
		return 1
	}

	outMeta := meta
	outMeta.Scrambled = false
	outMeta.ScramblingMethod = ""
	outMeta.SegmentsPerLine = 0
	outMeta.Operations = nil

	log.Info("Descrambling",
		logger.String("input", input),
		logger.String("output", output),
		logger.String("standard", meta.Standard),
		logger.Int("frames", reader.FrameCount()),
		logger.Int("segments", scfg.Segments),
		logger.String("backend", scfg.Backend),
		logger.Uint64("stream_id", scfg.StreamID),
		logger.String("key_fingerprint", key.Fingerprint()),
		logger.Bool("permutation", flags.Permutation),
		logger.Bool("inversion", flags.Inversion),
		logger.Bool("shift", flags.Shift))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Warn("Received shutdown signal", logger.String("signal", sig.String()))
		cancel()
	}()

	runner := session.NewRunner(cfg, log)
	frames, err := runner.Run(ctx, reader, session.Options{
		Tool:       "descramble",
		Input:      input,
		Output:     output,
		Key:        key,
		Backend:    scfg.Backend,
		StreamID:   scfg.StreamID,
		Segments:   scfg.Segments,
		Flags:      flags,
		Transform:  descrambler,
		OutputMeta: outMeta,
	})
	if err != nil {
		log.Error("Descrambling failed", logger.Int("frames_written", frames), logger.Error(err))
		return 1
	}

	log.Info("Descrambling complete", logger.Int("frames", frames))
	return 0
}

// resolveKey builds key material from the flags; an explicit hex key
// wins over a password.
func resolveKey(keyHex, password string) (keystream.KeyMaterial, error) {
	if keyHex != "" {
		return keystream.FromHex(keyHex)
	}
	if password != "" {
		return keystream.FromPassword(password)
	}
	return keystream.KeyMaterial{}, &keystream.KeyError{Reason: "no key material: provide --key or --password"}
}

// applyOpFlag applies an enable/disable flag pair; disable wins
func applyOpFlag(target *bool, enable, disable bool) {
	if enable {
		*target = true
	}
	if disable {
		*target = false
	}
}
