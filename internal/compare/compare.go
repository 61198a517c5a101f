// Package compare implements the frame-similarity engine that decides
// whether two subtitle detections show the same rendered subtitle.
//
// Two interchangeable backends extract a compact feature blob from a frame's
// region of interest and score the similarity of two blobs: BitsetCover
// (grid-occupancy overlap, cheapest) and SparseChamfer (sparse geometric
// point matching, robust to pixel jitter).
package compare

import (
	"fmt"
	"strings"

	"github.com/weidix/subtitle-fast-sub001/internal/roi"
	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

// Backend selects the comparison algorithm.
type Backend int

const (
	// BitsetCover partitions the region into a fixed grid and compares
	// occupancy bitsets by Jaccard index.
	BitsetCover Backend = iota
	// SparseChamfer samples boundary points of the cleaned mask and compares
	// them by symmetric chamfer distance.
	SparseChamfer
)

// String returns the canonical backend name.
func (b Backend) String() string {
	switch b {
	case SparseChamfer:
		return "sparse-chamfer"
	default:
		return "bitset-cover"
	}
}

// ParseBackend maps a textual backend name, case-insensitively and ignoring
// surrounding whitespace, to a Backend.
func ParseBackend(s string) (Backend, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "bitset-cover":
		return BitsetCover, nil
	case "sparse-chamfer":
		return SparseChamfer, nil
	default:
		return 0, fmt.Errorf("unknown comparator backend %q", name)
	}
}

// Config holds comparator tuning.
type Config struct {
	Backend    Backend
	Preprocess video.LumaBand
}

// DefaultConfig returns a comparator configuration with sensible defaults:
// the grid backend and a luma band matching typical white subtitle text.
func DefaultConfig() Config {
	return Config{
		Backend:    BitsetCover,
		Preprocess: video.LumaBand{Target: 235, Delta: 20},
	}
}

// Report is the outcome of comparing two feature blobs.
//
// Similarity is in [0,1] and symmetric in its arguments. Details carries
// named intermediate metrics for diagnostics only; it never influences
// Similarity or SameSegment.
type Report struct {
	Similarity  float64            `json:"similarity"`
	SameSegment bool               `json:"same_segment"`
	Details     map[string]float64 `json:"details,omitempty"`
}

// Blob is the compact, algorithm-specific summary of a frame region's
// content. Blobs from different backends are not comparable.
type Blob struct {
	backend Backend
	grid    bitGrid
	points  []chamferPoint
	roiW    int
	roiH    int
}

// Backend returns the algorithm that produced the blob.
func (b *Blob) Backend() Backend {
	return b.backend
}

// Comparator extracts feature blobs and scores their similarity.
type Comparator struct {
	cfg Config
}

// New creates a Comparator for the configured backend.
func New(cfg Config) *Comparator {
	return &Comparator{cfg: cfg}
}

// Backend returns the configured backend.
func (c *Comparator) Backend() Backend {
	return c.cfg.Backend
}

// Extract resolves the region against the frame, builds the luma-band mask,
// runs the morphological cleanup pass, and returns the backend's feature
// blob. A mask with no on pixels after cleanup yields (nil, nil): nothing to
// compare, not an error.
func (c *Comparator) Extract(frame *video.Frame, region roi.Config) (*Blob, error) {
	resolved, err := region.Resolve(frame.Width, frame.Height)
	if err != nil {
		return nil, err
	}

	mask, err := video.BuildMask(frame, resolved, c.cfg.Preprocess)
	if err != nil {
		return nil, err
	}
	mask.Clean()

	if mask.OnCount() == 0 {
		return nil, nil
	}

	switch c.cfg.Backend {
	case SparseChamfer:
		return extractChamfer(mask), nil
	default:
		return extractBitset(mask), nil
	}
}

// Compare scores two blobs produced by the same backend. It is a pure
// function: deterministic, symmetric in its arguments, and it never fails.
func (c *Comparator) Compare(a, b *Blob) Report {
	switch c.cfg.Backend {
	case SparseChamfer:
		return compareChamfer(a, b)
	default:
		return compareBitset(a, b)
	}
}
