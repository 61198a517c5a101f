package app

import (
	"github.com/weidix/subtitle-fast-sub001/internal/pipeline"
)

// segment accumulates the samples of one open subtitle segment.
type segment struct {
	startFrame int64
	lastFrame  int64
	startMs    int64
	endMs      int64
	count      int64
	simSum     float64
	simCount   int64
}

// meanSimilarity averages the comparison scores within the segment. A
// single-sample segment has no comparisons; it is trivially self-similar.
func (s *segment) meanSimilarity() float64 {
	if s.simCount == 0 {
		return 1.0
	}
	return s.simSum / float64(s.simCount)
}

// segmentAggregator folds the event stream into closed segments. A
// SegmentStart that interrupts an open segment closes the previous one at
// the interrupting frame.
type segmentAggregator struct {
	open      *segment
	completed int64
}

func newSegmentAggregator() *segmentAggregator {
	return &segmentAggregator{}
}

// observe folds one event in and returns a segment when the event closed
// one, nil otherwise.
func (a *segmentAggregator) observe(event pipeline.SegmentEvent) *segment {
	ms := event.Timestamp.Milliseconds()

	switch event.Kind {
	case pipeline.SegmentStart:
		closed := a.closeOpen(ms)
		a.open = &segment{
			startFrame: event.FrameIndex,
			lastFrame:  event.FrameIndex,
			startMs:    ms,
			endMs:      ms,
			count:      1,
		}
		return closed

	case pipeline.SegmentContinue:
		if a.open == nil {
			return nil
		}
		a.open.lastFrame = event.FrameIndex
		a.open.endMs = ms
		a.open.count++
		a.open.simSum += event.Report.Similarity
		a.open.simCount++
		return nil

	case pipeline.SegmentEnd:
		return a.closeOpen(ms)
	}
	return nil
}

// flush closes whatever segment is still open, keeping its last observed
// frame and timestamp as the end.
func (a *segmentAggregator) flush() *segment {
	if a.open == nil {
		return nil
	}
	closed := a.open
	a.open = nil
	a.completed++
	return closed
}

// closeOpen ends the open segment at endMs. The end frame stays at the
// last frame the subtitle was actually seen on.
func (a *segmentAggregator) closeOpen(endMs int64) *segment {
	if a.open == nil {
		return nil
	}
	closed := a.open
	closed.endMs = endMs
	a.open = nil
	a.completed++
	return closed
}
