package detect

import (
	"github.com/weidix/subtitle-fast-sub001/internal/roi"
	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

// HeuristicStrategy classifies region pixels by the luma band and derives
// subtitle presence from the contiguous on-pixel coverage left after the
// morphological cleanup pass.
type HeuristicStrategy struct {
	roi         roi.Config
	band        video.LumaBand
	minCoverage float64
	maxCoverage float64
}

// NewHeuristic creates the heuristic strategy from the detector config.
func NewHeuristic(cfg Config) *HeuristicStrategy {
	minCov := cfg.MinCoverage
	maxCov := cfg.MaxCoverage
	if maxCov <= 0 {
		maxCov = 1
	}
	return &HeuristicStrategy{
		roi:         cfg.Roi,
		band:        cfg.Band,
		minCoverage: minCov,
		maxCoverage: maxCov,
	}
}

// Detect resolves the region of interest, masks it by the luma band, and
// reports subtitle presence when the cleaned coverage falls inside the
// configured window. Too little coverage is background noise; too much is a
// bright scene, not text.
func (s *HeuristicStrategy) Detect(frame *video.Frame) (Result, error) {
	resolved, err := s.roi.Resolve(frame.Width, frame.Height)
	if err != nil {
		return Result{}, err
	}
	if err := frame.Validate(); err != nil {
		return Result{}, err
	}

	mask, err := video.BuildMask(frame, resolved, s.band)
	if err != nil {
		return Result{}, err
	}
	mask.Clean()

	coverage := float64(mask.OnCount()) / float64(resolved.Width*resolved.Height)
	if coverage < s.minCoverage || coverage > s.maxCoverage {
		return Result{}, nil
	}

	x, y, w, h, ok := mask.Bounds()
	if !ok {
		return Result{}, nil
	}

	region := Region{
		X:      resolved.X + x,
		Y:      resolved.Y + y,
		Width:  w,
		Height: h,
		Score:  coverage,
	}
	return Result{
		HasSubtitle: true,
		MaxScore:    region.Score,
		Regions:     []Region{region},
	}, nil
}

// Close is a no-op: the heuristic holds no external resources.
func (s *HeuristicStrategy) Close() error {
	return nil
}
