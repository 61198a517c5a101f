package detect

import (
	"errors"
	"testing"

	"github.com/weidix/subtitle-fast-sub001/internal/roi"
	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

var testBand = video.LumaBand{Target: 250, Delta: 5}

// subtitleFrame builds a 128x64 frame with a bright text-like band in the
// lower third, the usual place for hard subtitles.
func subtitleFrame() *video.Frame {
	return video.NewTestFrame(128, 64, 0, 0, func(x, y int) uint8 {
		if x >= 20 && x < 108 && y >= 48 && y < 56 {
			return 250
		}
		return 16
	})
}

func TestHeuristic_DetectsSubtitleBand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Band = testBand
	s := NewHeuristic(cfg)

	result, err := s.Detect(subtitleFrame())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if !result.HasSubtitle {
		t.Fatal("expected subtitle band to be detected")
	}
	if len(result.Regions) != 1 {
		t.Fatalf("len(Regions) = %d, want 1", len(result.Regions))
	}
	if result.MaxScore != result.Regions[0].Score {
		t.Errorf("MaxScore = %f, want region score %f", result.MaxScore, result.Regions[0].Score)
	}

	r := result.Regions[0]
	if r.X != 20 || r.Y != 48 || r.Width != 88 || r.Height != 8 {
		t.Errorf("region = %+v, want bounding box of the band", r)
	}
}

func TestHeuristic_BlackFrame_NoSubtitle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Band = testBand
	s := NewHeuristic(cfg)

	result, err := s.Detect(video.NewTestFrame(128, 64, 0, 0, nil))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if result.HasSubtitle || len(result.Regions) != 0 || result.MaxScore != 0 {
		t.Errorf("black frame should yield an empty result, got %+v", result)
	}
}

func TestHeuristic_BrightScene_RejectedByMaxCoverage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Band = testBand
	s := NewHeuristic(cfg)

	// A frame that is almost entirely inside the band is a bright scene,
	// not subtitle text.
	bright := video.NewTestFrame(128, 64, 0, 0, func(x, y int) uint8 { return 250 })

	result, err := s.Detect(bright)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if result.HasSubtitle {
		t.Error("full-frame brightness should be rejected as non-subtitle")
	}
}

func TestHeuristic_EmptyRoi(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Band = testBand
	cfg.Roi = roi.Config{X: 2.0, Y: 0, Width: 0.1, Height: 0.1}
	s := NewHeuristic(cfg)

	_, err := s.Detect(subtitleFrame())
	if !errors.Is(err, roi.ErrEmptyRoi) {
		t.Errorf("Detect() error = %v, want ErrEmptyRoi", err)
	}
}

func TestHeuristic_InsufficientData(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Band = testBand
	s := NewHeuristic(cfg)

	short := &video.Frame{Pixels: make([]byte, 8), Width: 128, Height: 64, Stride: 128}
	_, err := s.Detect(short)

	var ide *video.InsufficientDataError
	if !errors.As(err, &ide) {
		t.Errorf("Detect() error = %v, want InsufficientDataError", err)
	}
}

func TestNative_ClipsRegions(t *testing.T) {
	mock := NewMockVision()
	mock.SetRegions([]RawRegion{
		// Overhangs the left frame edge.
		{X: -10, Y: 50, Width: 30, Height: 10, Confidence: 0.9},
		// Entirely outside the ROI.
		{X: 0, Y: 0, Width: 10, Height: 10, Confidence: 0.8},
		// Fully inside.
		{X: 30, Y: 50, Width: 40, Height: 8, Confidence: 0.7},
	})

	// ROI is the lower half of the 128x64 frame.
	region := roi.Config{X: 0, Y: 0.5, Width: 1, Height: 0.5}
	s := NewNative(region, mock)

	result, err := s.Detect(subtitleFrame())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if len(result.Regions) != 2 {
		t.Fatalf("len(Regions) = %d, want 2 (out-of-roi region dropped)", len(result.Regions))
	}

	first := result.Regions[0]
	if first.X != 0 || first.Width != 20 {
		t.Errorf("clipped region = %+v, want X=0 Width=20", first)
	}
	if result.MaxScore != 0.9 {
		t.Errorf("MaxScore = %f, want 0.9", result.MaxScore)
	}
	if !result.HasSubtitle {
		t.Error("surviving regions should mark the frame as subtitled")
	}
}

func TestNative_AllRegionsClippedAway(t *testing.T) {
	mock := NewMockVision()
	mock.SetRegions([]RawRegion{
		{X: 200, Y: 200, Width: 10, Height: 10, Confidence: 0.9},
	})
	s := NewNative(roi.Config{}, mock)

	result, err := s.Detect(subtitleFrame())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if result.HasSubtitle || result.MaxScore != 0 {
		t.Errorf("fully clipped detections should yield an empty result, got %+v", result)
	}
}

func TestNative_ServiceFailure_IsVisionError(t *testing.T) {
	mock := NewMockVision()
	mock.SetError(errors.New("service unavailable"))
	s := NewNative(roi.Config{}, mock)

	_, err := s.Detect(subtitleFrame())

	var ve *VisionError
	if !errors.As(err, &ve) {
		t.Fatalf("Detect() error = %v, want VisionError", err)
	}
}

func TestNative_CloseReleasesService(t *testing.T) {
	mock := NewMockVision()
	s := NewNative(roi.Config{}, mock)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !mock.Closed() {
		t.Error("Close() should release the vision service")
	}
}

func TestNew_UnknownKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = "psychic"
	if _, err := New(cfg); err == nil {
		t.Error("New() should reject an unknown detector kind")
	}
}

func TestNew_UnknownVisionBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = KindNative
	cfg.Backend = "no-such-backend"
	if _, err := New(cfg); err == nil {
		t.Error("New() should reject an unknown vision backend")
	}
}

func TestAvailableVisionBackends_IncludesTesseract(t *testing.T) {
	found := false
	for _, name := range AvailableVisionBackends() {
		if name == "tesseract" {
			found = true
		}
	}
	if !found {
		t.Error("tesseract backend should be registered in this build")
	}
}
