// Command subfast reduces a video to the frame samples worth OCRing: it
// samples frames, detects subtitle content, and collapses runs of the same
// rendered subtitle into segments.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/weidix/subtitle-fast-sub001/internal/app"
	"github.com/weidix/subtitle-fast-sub001/internal/config"
	"github.com/weidix/subtitle-fast-sub001/internal/server"
	"github.com/weidix/subtitle-fast-sub001/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "subfast:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		videoPath  = flag.String("video", "", "path to the input video (required)")
		configPath = flag.String("config", "", "path to a JSON config file")
		rate       = flag.Int("rate", 0, "frame samples per second")
		roiSpec    = flag.String("roi", "", "region of interest as x,y,width,height in [0,1]")
		detector   = flag.String("detector", "", "detection strategy: heuristic or native")
		backend    = flag.String("backend", "", "native vision backend, or auto")
		compareAlg = flag.String("compare", "", "comparator: bitset-cover or sparse-chamfer")
		bandTarget = flag.Int("band-target", -1, "target subtitle luma value [0,255]")
		bandDelta  = flag.Int("band-delta", -1, "luma band half-width [0,255]")
		languages  = flag.String("lang", "", "comma-separated languages for text backends")
		dbPath     = flag.String("db", "", "sqlite database path (default ~/.subfast/subfast.db)")
		listen     = flag.String("listen", "", "progress API listen address, e.g. :8080")
		logFormat  = flag.String("logfmt", "", "log format: text or json")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, *rate, *roiSpec, *detector, *backend, *compareAlg,
		*bandTarget, *bandDelta, *languages, *dbPath, *listen, *logFormat)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *videoPath == "" {
		return fmt.Errorf("missing required -video flag")
	}

	logger, err := newLogger(cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	detectCfg, err := cfg.DetectConfig()
	if err != nil {
		return err
	}
	compareCfg, err := cfg.CompareConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *server.Hub
	if cfg.Listen != "" {
		hub = server.NewHub(logger)
		srv := server.New(server.Config{Store: st, Events: hub})
		go func() {
			logger.Info("progress API listening", "addr", cfg.Listen)
			if err := srv.ListenAndServe(cfg.Listen); err != nil {
				logger.Error("progress API stopped", "error", err)
			}
		}()
	}

	a := app.New(app.Config{
		VideoPath:        *videoPath,
		Store:            st,
		Events:           hub,
		Logger:           logger,
		Detect:           detectCfg,
		Compare:          compareCfg,
		SamplesPerSecond: cfg.SamplesPerSecond,
		QueueDepth:       cfg.QueueDepth,
	})

	runID, err := a.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println("run", runID, "complete")
	return nil
}

// applyFlags overlays explicitly-set flag values onto the loaded config.
// Sentinel values (empty string, 0, -1) mean "flag not given".
func applyFlags(cfg *config.Config, rate int, roiSpec, detector, backend, compareAlg string,
	bandTarget, bandDelta int, languages, dbPath, listen, logFormat string) {
	if rate > 0 {
		cfg.SamplesPerSecond = rate
	}
	if roiSpec != "" {
		cfg.Roi = roiSpec
	}
	if detector != "" {
		cfg.Detector = detector
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if compareAlg != "" {
		cfg.Compare = compareAlg
	}
	if bandTarget >= 0 {
		cfg.BandTarget = bandTarget
	}
	if bandDelta >= 0 {
		cfg.BandDelta = bandDelta
	}
	if languages != "" {
		cfg.Languages = languages
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
}

func newLogger(format string) (*slog.Logger, error) {
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, nil)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, nil)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir := filepath.Join(homeDir, ".subfast")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		path = filepath.Join(dir, "subfast.db")
	}
	return store.New(path)
}
