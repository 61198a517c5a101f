package compare

import (
	"math"
	"reflect"
	"testing"

	"github.com/weidix/subtitle-fast-sub001/internal/roi"
	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

var testBand = video.LumaBand{Target: 250, Delta: 5}

// blockFrame builds a 64x32 frame with a bright filled rectangle at
// (x0, y0)-(x0+w, y0+h). Blocks are kept thick enough to survive the
// morphological open.
func blockFrame(x0, y0, w, h int) *video.Frame {
	return video.NewTestFrame(64, 32, 0, 0, func(x, y int) uint8 {
		if x >= x0 && x < x0+w && y >= y0 && y < y0+h {
			return 250
		}
		return 0
	})
}

func allBackends() []Backend {
	return []Backend{BitsetCover, SparseChamfer}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		input   string
		want    Backend
		wantErr bool
	}{
		{"bitset-cover", BitsetCover, false},
		{"sparse-chamfer", SparseChamfer, false},
		{"  Bitset-Cover  ", BitsetCover, false},
		{"SPARSE-CHAMFER", SparseChamfer, false},
		{"dtw", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBackend(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseBackend(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBackend(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBackend(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBackend_StringRoundTrip(t *testing.T) {
	for _, backend := range allBackends() {
		parsed, err := ParseBackend(backend.String())
		if err != nil {
			t.Fatalf("ParseBackend(%q) error = %v", backend.String(), err)
		}
		if parsed != backend {
			t.Errorf("round trip of %v = %v", backend, parsed)
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	frame := blockFrame(10, 8, 20, 8)

	for _, backend := range allBackends() {
		t.Run(backend.String(), func(t *testing.T) {
			c := New(Config{Backend: backend, Preprocess: testBand})

			first, err := c.Extract(frame, roi.Config{})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			second, err := c.Extract(frame, roi.Config{})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}

			if !reflect.DeepEqual(first, second) {
				t.Error("Extract() should be deterministic for identical input")
			}
		})
	}
}

func TestCompare_SelfSimilarity(t *testing.T) {
	frame := blockFrame(10, 8, 20, 8)

	for _, backend := range allBackends() {
		t.Run(backend.String(), func(t *testing.T) {
			c := New(Config{Backend: backend, Preprocess: testBand})

			blob, err := c.Extract(frame, roi.Config{})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if blob == nil {
				t.Fatal("Extract() returned no blob for a non-empty mask")
			}

			report := c.Compare(blob, blob)
			if report.Similarity != 1.0 {
				t.Errorf("self similarity = %f, want 1.0", report.Similarity)
			}
			if !report.SameSegment {
				t.Error("identical blobs should be judged the same segment")
			}
		})
	}
}

func TestCompare_Symmetric(t *testing.T) {
	frameA := blockFrame(10, 8, 20, 8)
	frameB := blockFrame(30, 12, 16, 10)

	for _, backend := range allBackends() {
		t.Run(backend.String(), func(t *testing.T) {
			c := New(Config{Backend: backend, Preprocess: testBand})

			a, err := c.Extract(frameA, roi.Config{})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			b, err := c.Extract(frameB, roi.Config{})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}

			ab := c.Compare(a, b)
			ba := c.Compare(b, a)
			if math.Abs(ab.Similarity-ba.Similarity) > 1e-9 {
				t.Errorf("similarity not symmetric: %f vs %f", ab.Similarity, ba.Similarity)
			}
		})
	}
}

func TestCompare_SimilarityRange(t *testing.T) {
	frameA := blockFrame(4, 4, 12, 6)
	frameB := blockFrame(44, 20, 12, 6)

	for _, backend := range allBackends() {
		t.Run(backend.String(), func(t *testing.T) {
			c := New(Config{Backend: backend, Preprocess: testBand})

			a, _ := c.Extract(frameA, roi.Config{})
			b, _ := c.Extract(frameB, roi.Config{})

			report := c.Compare(a, b)
			if report.Similarity < 0 || report.Similarity > 1 {
				t.Errorf("similarity %f out of [0,1]", report.Similarity)
			}
			if report.Similarity >= 1.0 {
				t.Errorf("disjoint blocks should not be fully similar, got %f", report.Similarity)
			}
		})
	}
}

func TestExtract_EmptyMask_NoBlob(t *testing.T) {
	black := video.NewTestFrame(64, 32, 0, 0, nil)

	for _, backend := range allBackends() {
		t.Run(backend.String(), func(t *testing.T) {
			c := New(Config{Backend: backend, Preprocess: testBand})

			blob, err := c.Extract(black, roi.Config{})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if blob != nil {
				t.Error("Extract() on an empty mask should return no blob")
			}
		})
	}
}

func TestExtract_NoiseOnly_NoBlob(t *testing.T) {
	// A lone bright pixel is removed by the cleanup pass, so no blob.
	frame := video.NewTestFrame(64, 32, 0, 0, func(x, y int) uint8 {
		if x == 17 && y == 9 {
			return 250
		}
		return 0
	})

	c := New(Config{Backend: BitsetCover, Preprocess: testBand})
	blob, err := c.Extract(frame, roi.Config{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if blob != nil {
		t.Error("Extract() should discard a noise-only mask")
	}
}

func TestExtract_EmptyRoi(t *testing.T) {
	frame := blockFrame(10, 8, 20, 8)
	c := New(Config{Backend: BitsetCover, Preprocess: testBand})

	if _, err := c.Extract(frame, roi.Config{X: 1.5, Y: 0, Width: 0.1, Height: 0.1}); err == nil {
		t.Error("Extract() with an out-of-frame region should fail")
	}
}

// TestJitterRobustness verifies the core trade-off between the backends:
// for a one-pixel shift of the same shape, the chamfer backend's similarity
// must drop no more than the grid backend's.
func TestJitterRobustness(t *testing.T) {
	base := blockFrame(10, 8, 20, 8)
	shifted := blockFrame(11, 8, 20, 8)

	drops := make(map[Backend]float64)
	for _, backend := range allBackends() {
		c := New(Config{Backend: backend, Preprocess: testBand})

		a, err := c.Extract(base, roi.Config{})
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		b, err := c.Extract(shifted, roi.Config{})
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}

		report := c.Compare(a, b)
		drops[backend] = 1 - report.Similarity
	}

	if drops[SparseChamfer] > drops[BitsetCover] {
		t.Errorf("chamfer drop %f exceeds bitset drop %f for a 1px shift",
			drops[SparseChamfer], drops[BitsetCover])
	}
}

func TestCompare_DetailsDoNotAffectDecision(t *testing.T) {
	frame := blockFrame(10, 8, 20, 8)
	c := New(Config{Backend: SparseChamfer, Preprocess: testBand})

	blob, _ := c.Extract(frame, roi.Config{})
	report := c.Compare(blob, blob)

	// Mutating the diagnostics must not be able to change the decision:
	// Details is a copy-out map, recomputing yields the same verdict.
	report.Details["forward_mean"] = 999
	again := c.Compare(blob, blob)
	if again.Similarity != 1.0 || !again.SameSegment {
		t.Error("diagnostics mutation leaked into the comparison result")
	}
}
