package pipeline

import (
	"context"
	"time"

	"github.com/weidix/subtitle-fast-sub001/internal/compare"
	"github.com/weidix/subtitle-fast-sub001/internal/detect"
	"github.com/weidix/subtitle-fast-sub001/internal/roi"
	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

// Detection pairs a sampled frame with its detector result. The frame rides
// along so the comparator can extract its feature blob; after that the frame
// is dropped and only the blob is retained.
type Detection struct {
	Frame  *video.Frame
	Result detect.Result
}

// EventKind classifies a segment event.
type EventKind string

const (
	// SegmentStart opens a new subtitle segment. When it interrupts an open
	// segment (a different subtitle appeared with no gap), the previous
	// segment implicitly ends at this frame.
	SegmentStart EventKind = "start"
	// SegmentContinue extends the open segment with another same-subtitle
	// detection.
	SegmentContinue EventKind = "continue"
	// SegmentEnd closes the open segment: subtitle content disappeared.
	SegmentEnd EventKind = "end"
)

// SegmentEvent is the comparator stage's decision for one sampled frame.
type SegmentEvent struct {
	Kind       EventKind        `json:"kind"`
	FrameIndex int64            `json:"frame_index"`
	Timestamp  time.Duration    `json:"timestamp"`
	Report     compare.Report   `json:"report"`
	Regions    []detect.Region  `json:"regions,omitempty"`
}

// Config holds pipeline tuning.
type Config struct {
	SamplesPerSecond int
	QueueDepth       int
}

// Build wires source → sampler → detector → comparator and returns the
// terminal segment-event stream. Each stage is an independent goroutine
// connected by bounded channels; cancelling ctx tears the chain down.
func Build(ctx context.Context, src video.Source, strategy detect.Strategy, comparator *compare.Comparator, region roi.Config, cfg Config) <-chan Result[SegmentEvent] {
	depth := cfg.QueueDepth
	frames := SourceStream(ctx, src, depth)

	sampler := NewSampler(src.FPS(), cfg.SamplesPerSecond)
	sampled := FilterStage(ctx, "sampler", frames, depth, func(f *video.Frame) (*video.Frame, bool, error) {
		return f, sampler.Keep(f.Index), nil
	})

	detections := Stage(ctx, "detector", sampled, depth, func(f *video.Frame) (Detection, error) {
		result, err := strategy.Detect(f)
		if err != nil {
			return Detection{}, err
		}
		return Detection{Frame: f, Result: result}, nil
	})

	tracker := newSegmentTracker(comparator, region)
	return FilterStage(ctx, "comparator", detections, depth, tracker.observe)
}

// segmentTracker holds the single piece of cross-frame state in the
// pipeline: the previous accepted detection's feature blob. It runs inside
// one stage worker and is never shared.
type segmentTracker struct {
	comparator *compare.Comparator
	region     roi.Config
	prev       *compare.Blob
}

func newSegmentTracker(comparator *compare.Comparator, region roi.Config) *segmentTracker {
	return &segmentTracker{comparator: comparator, region: region}
}

// observe decides, for one detection, whether it starts a new segment,
// continues the open one, or ends it. The newest blob always supersedes the
// previous one as the comparison reference.
func (t *segmentTracker) observe(d Detection) (SegmentEvent, bool, error) {
	var blob *compare.Blob
	if d.Result.HasSubtitle {
		var err error
		blob, err = t.comparator.Extract(d.Frame, t.region)
		if err != nil {
			return SegmentEvent{}, false, err
		}
	}

	// No comparable content: close the open segment if there is one.
	if blob == nil {
		if t.prev == nil {
			return SegmentEvent{}, false, nil
		}
		t.prev = nil
		return SegmentEvent{
			Kind:       SegmentEnd,
			FrameIndex: d.Frame.Index,
			Timestamp:  d.Frame.Timestamp,
		}, true, nil
	}

	event := SegmentEvent{
		FrameIndex: d.Frame.Index,
		Timestamp:  d.Frame.Timestamp,
		Regions:    d.Result.Regions,
	}

	if t.prev == nil {
		event.Kind = SegmentStart
	} else {
		report := t.comparator.Compare(t.prev, blob)
		event.Report = report
		if report.SameSegment {
			event.Kind = SegmentContinue
		} else {
			event.Kind = SegmentStart
		}
	}

	t.prev = blob
	return event, true, nil
}
