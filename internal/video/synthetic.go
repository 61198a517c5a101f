package video

import (
	"io"
	"time"
)

// SyntheticSource is a test implementation of Source that replays pre-built
// frames and, optionally, a terminal error after the frames are exhausted.
type SyntheticSource struct {
	frames []*Frame
	err    error
	fps    float64
	pos    int
}

// NewSyntheticSource creates a source that emits the given frames in order.
func NewSyntheticSource(fps float64, frames ...*Frame) *SyntheticSource {
	return &SyntheticSource{frames: frames, fps: fps}
}

// FailWith makes the source return err instead of io.EOF once the frames
// are exhausted.
func (s *SyntheticSource) FailWith(err error) {
	s.err = err
}

// Next returns the next pre-built frame.
func (s *SyntheticSource) Next() (*Frame, error) {
	if s.pos >= len(s.frames) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// FPS returns the configured frame rate.
func (s *SyntheticSource) FPS() float64 {
	return s.fps
}

// Close is a no-op for the synthetic source.
func (s *SyntheticSource) Close() error {
	return nil
}

// NewTestFrame builds a packed grayscale frame filled by fn(x, y).
// Passing fn == nil yields an all-black frame.
func NewTestFrame(width, height int, index int64, ts time.Duration, fn func(x, y int) uint8) *Frame {
	pixels := make([]byte, width*height)
	if fn != nil {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				pixels[y*width+x] = fn(x, y)
			}
		}
	}
	return &Frame{
		Pixels:    pixels,
		Width:     width,
		Height:    height,
		Stride:    width,
		Timestamp: ts,
		Index:     index,
	}
}
