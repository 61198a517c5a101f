// Package selection loads the region-selection document consumed by the
// comparison bench tooling: frame geometry, a luma band, and an ordered list
// of named regions to compare across two frame buffers.
package selection

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/weidix/subtitle-fast-sub001/internal/roi"
	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

// Document describes one repeatable comparison setup.
type Document struct {
	FrameWidth  int            `yaml:"frame_width"`
	FrameHeight int            `yaml:"frame_height"`
	LumaBand    video.LumaBand `yaml:"luma_band"`
	Regions     []NamedRegion  `yaml:"regions"`
}

// NamedRegion is one region entry of the document.
type NamedRegion struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Region      roi.Config `yaml:"region"`
}

// Load reads and validates a region-selection document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selection file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a region-selection document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse selection file: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document's invariants: positive frame geometry,
// at least one region, unique names, and regions that resolve to a
// non-empty rectangle.
func (d *Document) Validate() error {
	if d.FrameWidth <= 0 || d.FrameHeight <= 0 {
		return fmt.Errorf("selection: frame dimensions %dx%d must be positive", d.FrameWidth, d.FrameHeight)
	}
	if len(d.Regions) == 0 {
		return fmt.Errorf("selection: at least one region is required")
	}

	seen := make(map[string]bool, len(d.Regions))
	for i, r := range d.Regions {
		if r.Name == "" {
			return fmt.Errorf("selection: region %d has no name", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("selection: duplicate region name %q", r.Name)
		}
		seen[r.Name] = true

		if _, err := r.Region.Resolve(d.FrameWidth, d.FrameHeight); err != nil {
			return fmt.Errorf("selection: region %q: %w", r.Name, err)
		}
	}
	return nil
}

// FrameSize returns the expected byte length of a raw Y-plane buffer for
// this document's geometry.
func (d *Document) FrameSize() int {
	return d.FrameWidth * d.FrameHeight
}
