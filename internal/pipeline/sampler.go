package pipeline

import "math"

// Sampler selects a subsequence of frames approximating a target rate of
// samples per second: every round(F/R)-th frame for source rate F and
// target rate R.
type Sampler struct {
	step int64
}

// NewSampler computes the keep-every-Nth step. A target rate at or above
// the source rate keeps every frame.
func NewSampler(sourceFPS float64, samplesPerSecond int) *Sampler {
	if samplesPerSecond < 1 {
		samplesPerSecond = 1
	}
	step := int64(1)
	if sourceFPS > 0 {
		step = int64(math.Round(sourceFPS / float64(samplesPerSecond)))
		if step < 1 {
			step = 1
		}
	}
	return &Sampler{step: step}
}

// Step returns the sampling interval in frames.
func (s *Sampler) Step() int64 {
	return s.step
}

// Keep reports whether the frame with the given index is sampled.
func (s *Sampler) Keep(index int64) bool {
	return index%s.step == 0
}
