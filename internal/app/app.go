// Package app wires the extraction pipeline to the run store and the
// progress API: it owns the lifecycle of one extraction pass over a video.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/weidix/subtitle-fast-sub001/internal/compare"
	"github.com/weidix/subtitle-fast-sub001/internal/detect"
	"github.com/weidix/subtitle-fast-sub001/internal/pipeline"
	"github.com/weidix/subtitle-fast-sub001/internal/server"
	"github.com/weidix/subtitle-fast-sub001/internal/store"
	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

// Config holds configuration options for an extraction run.
type Config struct {
	VideoPath string
	// Source overrides file decoding when set; used by tests and callers
	// that already own a frame stream.
	Source video.Source

	Store  *store.Store
	Events *server.Hub
	Logger *slog.Logger

	Detect           detect.Config
	Compare          compare.Config
	SamplesPerSecond int
	QueueDepth       int
}

// App runs extraction passes.
type App struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a new App instance with the given configuration.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SamplesPerSecond < 1 {
		cfg.SamplesPerSecond = 1
	}
	return &App{cfg: cfg, logger: logger}
}

// Run executes one extraction pass and returns the run ID. The returned
// error is the pipeline's terminal error, if any; segments detected before
// the failure are persisted either way.
func (a *App) Run(ctx context.Context) (string, error) {
	source := a.cfg.Source
	if source == nil {
		fileSource, err := video.OpenFile(a.cfg.VideoPath)
		if err != nil {
			return "", err
		}
		source = fileSource
	}
	defer source.Close()

	strategy, err := detect.New(a.cfg.Detect)
	if err != nil {
		return "", err
	}
	defer strategy.Close()

	comparator := compare.New(a.cfg.Compare)

	runID := uuid.NewString()
	if a.cfg.Store != nil {
		run := &store.Run{
			ID:               runID,
			VideoPath:        a.cfg.VideoPath,
			Detector:         a.cfg.Detect.Kind,
			Backend:          a.cfg.Compare.Backend.String(),
			SamplesPerSecond: a.cfg.SamplesPerSecond,
		}
		if err := a.cfg.Store.Runs().Create(run); err != nil {
			return "", fmt.Errorf("create run: %w", err)
		}
	}

	a.logger.Info("extraction started",
		"run", runID,
		"video", a.cfg.VideoPath,
		"backend", a.cfg.Compare.Backend.String(),
		"rate", a.cfg.SamplesPerSecond)

	events := pipeline.Build(ctx, source, strategy, comparator, a.cfg.Detect.Roi, pipeline.Config{
		SamplesPerSecond: a.cfg.SamplesPerSecond,
		QueueDepth:       a.cfg.QueueDepth,
	})

	agg := newSegmentAggregator()
	var terminal error
	for r := range events {
		if r.Err != nil {
			terminal = r.Err
			break
		}

		event := r.Value
		if a.cfg.Events != nil {
			a.cfg.Events.Publish(event)
		}

		if seg := agg.observe(event); seg != nil {
			a.persistSegment(runID, seg)
		}
	}

	// A segment still open at the end of the stream ends with it.
	if seg := agg.flush(); seg != nil {
		a.persistSegment(runID, seg)
	}

	if a.cfg.Store != nil {
		if err := a.cfg.Store.Runs().Finish(runID, terminal); err != nil {
			a.logger.Warn("finish run failed", "run", runID, "error", err)
		}
	}

	if terminal != nil {
		a.logger.Error("extraction failed", "run", runID, "error", terminal)
		return runID, terminal
	}
	a.logger.Info("extraction finished", "run", runID, "segments", agg.completed)
	return runID, nil
}

func (a *App) persistSegment(runID string, seg *segment) {
	a.logger.Info("segment closed",
		"run", runID,
		"start_ms", seg.startMs,
		"end_ms", seg.endMs,
		"samples", seg.count)

	if a.cfg.Store == nil {
		return
	}
	record := &store.Segment{
		ID:             uuid.NewString(),
		RunID:          runID,
		StartMs:        seg.startMs,
		EndMs:          seg.endMs,
		StartFrame:     seg.startFrame,
		EndFrame:       seg.lastFrame,
		SampleCount:    seg.count,
		MeanSimilarity: seg.meanSimilarity(),
	}
	if err := a.cfg.Store.Segments().Create(record); err != nil {
		a.logger.Warn("persist segment failed", "run", runID, "error", err)
	}
}
