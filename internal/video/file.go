package video

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// FallbackFPS is assumed when the container does not report a frame rate.
const FallbackFPS = 25.0

// FileSource decodes frames sequentially from a video file using GoCV.
type FileSource struct {
	path    string
	capture *gocv.VideoCapture
	fps     float64
	mat     gocv.Mat
	gray    gocv.Mat
	index   int64
	mu      sync.Mutex
	closed  bool
}

// OpenFile opens a video file for sequential decoding.
func OpenFile(path string) (*FileSource, error) {
	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = FallbackFPS
	}

	return &FileSource{
		path:    path,
		capture: capture,
		fps:     fps,
		mat:     gocv.NewMat(),
		gray:    gocv.NewMat(),
	}, nil
}

// FPS returns the container-reported frame rate.
func (s *FileSource) FPS() float64 {
	return s.fps
}

// Next decodes the next frame and returns its luma plane. It returns io.EOF
// at the end of the file.
func (s *FileSource) Next() (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, io.EOF
	}
	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, io.EOF
	}

	if s.mat.Channels() > 1 {
		gocv.CvtColor(s.mat, &s.gray, gocv.ColorBGRToGray)
	} else {
		s.mat.CopyTo(&s.gray)
	}

	ptsMs := s.capture.Get(gocv.VideoCapturePosMsec)

	// ToBytes copies into a packed buffer, so the stride equals the width.
	frame := &Frame{
		Pixels:    s.gray.ToBytes(),
		Width:     s.gray.Cols(),
		Height:    s.gray.Rows(),
		Stride:    s.gray.Cols(),
		Timestamp: time.Duration(ptsMs * float64(time.Millisecond)),
		Index:     s.index,
	}
	s.index++

	return frame, nil
}

// Close releases the capture and its scratch buffers.
func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.mat.Close()
	s.gray.Close()
	return s.capture.Close()
}
