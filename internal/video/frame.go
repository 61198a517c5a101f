// Package video provides the decoded-frame data model and the frame source
// abstraction consumed by the extraction pipeline. The GoCV-backed file
// source is the only component that touches the decoding backend; everything
// downstream works on plain luma-plane bytes.
package video

import (
	"fmt"
	"time"
)

// Frame is one decoded video frame. Pixels holds the luma (Y) plane in
// row-major order with the given stride; only grayscale content flows
// through the pipeline.
type Frame struct {
	Pixels    []byte
	Width     int
	Height    int
	Stride    int
	Timestamp time.Duration // presentation timestamp
	Index     int64         // monotonically increasing frame index
}

// InsufficientDataError reports a frame buffer smaller than its declared
// geometry requires.
type InsufficientDataError struct {
	DataLen  int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("frame buffer holds %d bytes, need %d", e.DataLen, e.Required)
}

// Validate checks that the pixel buffer covers stride × height bytes.
func (f *Frame) Validate() error {
	required := f.Stride * f.Height
	if required <= 0 || len(f.Pixels) < required {
		return &InsufficientDataError{DataLen: len(f.Pixels), Required: required}
	}
	return nil
}

// At returns the luma value at (x, y). The caller is responsible for bounds.
func (f *Frame) At(x, y int) uint8 {
	return f.Pixels[y*f.Stride+x]
}

// Source produces an ordered sequence of decoded frames.
//
// Implementations must guarantee strictly increasing frame indices and
// timestamps. Next returns io.EOF on the clean end of the stream.
type Source interface {
	Next() (*Frame, error)
	FPS() float64
	Close() error
}
