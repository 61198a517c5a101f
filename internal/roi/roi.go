// Package roi provides region-of-interest configuration, textual parsing,
// and resolution against concrete frame dimensions.
package roi

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrEmptyRoi is returned when a region of interest resolves to a rectangle
// with zero area after clamping to the frame bounds.
var ErrEmptyRoi = errors.New("region of interest resolves to an empty rectangle")

// Config describes a region of interest in normalized [0,1] coordinates
// relative to the frame. A zero width or height selects the full frame.
type Config struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// FullFrame reports whether the config selects the whole frame.
func (c Config) FullFrame() bool {
	return c.Width <= 0 || c.Height <= 0
}

// Resolved is a region of interest in absolute pixel coordinates.
type Resolved struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Resolve scales the normalized config by the frame dimensions (flooring the
// origin, ceiling the far edge), clamps the rectangle to the frame, and
// returns ErrEmptyRoi when the clamped rectangle has no area.
func (c Config) Resolve(frameWidth, frameHeight int) (Resolved, error) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return Resolved{}, ErrEmptyRoi
	}
	if c.FullFrame() {
		return Resolved{X: 0, Y: 0, Width: frameWidth, Height: frameHeight}, nil
	}

	x0 := int(math.Floor(c.X * float64(frameWidth)))
	y0 := int(math.Floor(c.Y * float64(frameHeight)))
	x1 := int(math.Ceil((c.X + c.Width) * float64(frameWidth)))
	y1 := int(math.Ceil((c.Y + c.Height) * float64(frameHeight)))

	x0 = clamp(x0, 0, frameWidth)
	y0 = clamp(y0, 0, frameHeight)
	x1 = clamp(x1, 0, frameWidth)
	y1 = clamp(y1, 0, frameHeight)

	if x1-x0 <= 0 || y1-y0 <= 0 {
		return Resolved{}, ErrEmptyRoi
	}

	return Resolved{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, nil
}

// Diagonal returns the diagonal length of the region in pixels.
func (r Resolved) Diagonal() float64 {
	return math.Hypot(float64(r.Width), float64(r.Height))
}

// Contains reports whether the pixel (x, y) lies inside the region.
func (r Resolved) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersect clips the rectangle (x, y, w, h) to the region by interval
// intersection. The returned width or height is <= 0 when the rectangles
// are disjoint.
func (r Resolved) Intersect(x, y, w, h int) (int, int, int, int) {
	x0 := maxInt(x, r.X)
	y0 := maxInt(y, r.Y)
	x1 := minInt(x+w, r.X+r.Width)
	y1 := minInt(y+h, r.Y+r.Height)
	return x0, y0, x1 - x0, y1 - y0
}

// Parse reads a textual ROI: four non-negative floats x,y,width,height
// separated by commas or whitespace. The empty string selects the full frame.
func Parse(s string) (Config, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Config{}, nil
	}

	fields := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 4 {
		return Config{}, fmt.Errorf("roi %q: want 4 values x,y,width,height, got %d", s, len(fields))
	}

	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Config{}, fmt.Errorf("roi %q: invalid value %q: %w", s, f, err)
		}
		if v < 0 {
			return Config{}, fmt.Errorf("roi %q: value %q must be non-negative", s, f)
		}
		vals[i] = v
	}

	return Config{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
