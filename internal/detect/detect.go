// Package detect decides whether a frame's region of interest contains
// subtitle content. Two interchangeable strategies implement the decision:
// a luma-band heuristic and a native text-detection service bridge.
package detect

import (
	"fmt"

	"github.com/weidix/subtitle-fast-sub001/internal/roi"
	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

// Strategy kinds.
const (
	KindHeuristic = "heuristic"
	KindNative    = "native"
)

// Region is a candidate subtitle bounding box in frame pixel coordinates,
// always fully contained in both the frame and the configured region of
// interest.
type Region struct {
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Score  float64 `json:"score"`
}

// Result is the detector output for one frame. HasSubtitle holds exactly
// when Regions is non-empty; MaxScore is the maximum region score, 0 when
// there are none.
type Result struct {
	HasSubtitle bool     `json:"has_subtitle"`
	MaxScore    float64  `json:"max_score"`
	Regions     []Region `json:"regions,omitempty"`
}

// Strategy analyzes one frame for subtitle content.
type Strategy interface {
	Detect(frame *video.Frame) (Result, error)
	Close() error
}

// VisionError reports a native text-detection backend failure. Native
// failures are terminal for the run: a broken platform service is assumed
// to stay broken.
type VisionError struct {
	Err error
}

func (e *VisionError) Error() string {
	return "vision backend: " + e.Err.Error()
}

func (e *VisionError) Unwrap() error {
	return e.Err
}

// Config holds detector configuration.
type Config struct {
	// Kind selects the strategy: KindHeuristic or KindNative.
	Kind string
	// Backend names the native vision backend, or "auto" for the first
	// one linked into the build.
	Backend string
	// Roi restricts detection to a normalized sub-region of the frame.
	Roi roi.Config
	// Band classifies foreground pixels for the heuristic strategy.
	Band video.LumaBand
	// Languages is a comma-separated language list for text backends.
	Languages string
	// MinCoverage and MaxCoverage bound the on-pixel fraction the heuristic
	// accepts as subtitle content.
	MinCoverage float64
	MaxCoverage float64
}

// DefaultConfig returns a detector configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Kind:        KindHeuristic,
		Backend:     "auto",
		Band:        video.LumaBand{Target: 235, Delta: 20},
		Languages:   "eng",
		MinCoverage: 0.005,
		MaxCoverage: 0.40,
	}
}

// New builds the configured strategy. Configuration errors are rejected here,
// before any frame flows.
func New(cfg Config) (Strategy, error) {
	switch cfg.Kind {
	case KindHeuristic, "":
		return NewHeuristic(cfg), nil
	case KindNative:
		service, err := newVisionService(cfg.Backend, cfg)
		if err != nil {
			return nil, err
		}
		return NewNative(cfg.Roi, service), nil
	default:
		return nil, fmt.Errorf("unknown detector kind %q", cfg.Kind)
	}
}
