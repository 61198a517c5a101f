package detect

import (
	"github.com/weidix/subtitle-fast-sub001/internal/roi"
	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

// RawRegion is a region as returned by a native text-detection service,
// before clipping to the frame and region-of-interest bounds.
type RawRegion struct {
	X          int
	Y          int
	Width      int
	Height     int
	Confidence float64
}

// VisionService is the narrow interface over a platform text-detection
// backend. Implementations receive the Y-plane bytes with geometry plus the
// region of interest in both resolved and normalized forms, and own the
// cleanup of any natively allocated result on every exit path.
type VisionService interface {
	DetectText(y []byte, width, height, stride int, region roi.Resolved, norm roi.Config) ([]RawRegion, error)
	Close() error
}

// NativeStrategy delegates detection to a VisionService and clips the
// returned regions by interval intersection against the frame bounds and
// the region of interest, discarding regions left without area.
type NativeStrategy struct {
	roi     roi.Config
	service VisionService
}

// NewNative wraps a vision service in the detection strategy contract.
func NewNative(region roi.Config, service VisionService) *NativeStrategy {
	return &NativeStrategy{roi: region, service: service}
}

// Detect runs the native service over the region of interest. Service
// failures are wrapped in VisionError and are terminal: they are not
// retried.
func (s *NativeStrategy) Detect(frame *video.Frame) (Result, error) {
	resolved, err := s.roi.Resolve(frame.Width, frame.Height)
	if err != nil {
		return Result{}, err
	}
	if err := frame.Validate(); err != nil {
		return Result{}, err
	}

	raw, err := s.service.DetectText(frame.Pixels, frame.Width, frame.Height, frame.Stride, resolved, s.roi)
	if err != nil {
		return Result{}, &VisionError{Err: err}
	}

	frameRect := roi.Resolved{X: 0, Y: 0, Width: frame.Width, Height: frame.Height}

	var regions []Region
	maxScore := 0.0
	for _, r := range raw {
		x, y, w, h := frameRect.Intersect(r.X, r.Y, r.Width, r.Height)
		if w <= 0 || h <= 0 {
			continue
		}
		x, y, w, h = resolved.Intersect(x, y, w, h)
		if w <= 0 || h <= 0 {
			continue
		}
		regions = append(regions, Region{X: x, Y: y, Width: w, Height: h, Score: r.Confidence})
		if r.Confidence > maxScore {
			maxScore = r.Confidence
		}
	}

	return Result{
		HasSubtitle: len(regions) > 0,
		MaxScore:    maxScore,
		Regions:     regions,
	}, nil
}

// Close releases the underlying vision service.
func (s *NativeStrategy) Close() error {
	return s.service.Close()
}
