package compare

import (
	"math"

	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

// Chamfer tuning. The point budget caps cost at budget² distance evaluations
// per comparison regardless of mask resolution; the threshold is a
// calibration candidate.
const (
	chamferPointBudget = 256

	// chamferSameThreshold is the similarity at or above which two point
	// sets are judged to show the same subtitle.
	chamferSameThreshold = 0.95
)

// chamferPoint is a boundary sample in region-relative pixel coordinates.
type chamferPoint struct {
	x float32
	y float32
}

// extractChamfer collects the boundary pixels of the cleaned mask (on pixels
// with at least one off 4-neighbor) in row-major order and subsamples them
// evenly down to the point budget. Row-major traversal keeps the result
// deterministic for identical masks.
func extractChamfer(mask *video.Mask) *Blob {
	var boundary []chamferPoint
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if !mask.At(x, y) {
				continue
			}
			if !mask.At(x-1, y) || !mask.At(x+1, y) || !mask.At(x, y-1) || !mask.At(x, y+1) {
				boundary = append(boundary, chamferPoint{x: float32(x), y: float32(y)})
			}
		}
	}

	points := boundary
	if n := len(boundary); n > chamferPointBudget {
		points = make([]chamferPoint, chamferPointBudget)
		for i := 0; i < chamferPointBudget; i++ {
			points[i] = boundary[i*n/chamferPointBudget]
		}
	}

	return &Blob{
		backend: SparseChamfer,
		points:  points,
		roiW:    mask.Width,
		roiH:    mask.Height,
	}
}

// compareChamfer scores two point sets by symmetric chamfer distance: the
// mean nearest-neighbor distance from A to B and from B to A are averaged,
// normalized by the region diagonal, and mapped to similarity via
// 1 - normalized distance, clamped to [0,1].
func compareChamfer(a, b *Blob) Report {
	if len(a.points) == 0 || len(b.points) == 0 {
		// Blobs are only built for non-empty masks, but guard the division.
		same := len(a.points) == len(b.points)
		sim := 0.0
		if same {
			sim = 1.0
		}
		return Report{Similarity: sim, SameSegment: sim >= chamferSameThreshold}
	}

	forward := directedMeanDistance(a.points, b.points)
	reverse := directedMeanDistance(b.points, a.points)
	mean := (forward + reverse) / 2

	// Use the mean diagonal so the score is symmetric even if the two blobs
	// were extracted from differently sized regions.
	diagA := math.Hypot(float64(a.roiW), float64(a.roiH))
	diagB := math.Hypot(float64(b.roiW), float64(b.roiH))
	diag := (diagA + diagB) / 2

	normalized := 0.0
	if diag > 0 {
		normalized = mean / diag
	}

	similarity := 1 - normalized
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}

	return Report{
		Similarity:  similarity,
		SameSegment: similarity >= chamferSameThreshold,
		Details: map[string]float64{
			"forward_mean":        forward,
			"reverse_mean":        reverse,
			"normalized_distance": normalized,
			"points_a":            float64(len(a.points)),
			"points_b":            float64(len(b.points)),
		},
	}
}

// directedMeanDistance returns the mean distance from each point of from to
// its nearest neighbor in to.
func directedMeanDistance(from, to []chamferPoint) float64 {
	var total float64
	for _, p := range from {
		best := math.Inf(1)
		for _, q := range to {
			dx := float64(p.x - q.x)
			dy := float64(p.y - q.y)
			if d := dx*dx + dy*dy; d < best {
				best = d
			}
		}
		total += math.Sqrt(best)
	}
	return total / float64(len(from))
}
