package detect

import (
	"github.com/weidix/subtitle-fast-sub001/internal/roi"
)

// MockVision is a test implementation of VisionService. It allows tests to
// control the raw regions the native strategy receives.
type MockVision struct {
	regions []RawRegion
	err     error
	calls   int
	closed  bool
}

// NewMockVision creates a new MockVision instance.
func NewMockVision() *MockVision {
	return &MockVision{}
}

// SetRegions sets the raw regions returned by DetectText.
func (m *MockVision) SetRegions(regions []RawRegion) {
	m.regions = regions
}

// SetError sets the error returned by DetectText.
func (m *MockVision) SetError(err error) {
	m.err = err
}

// Calls returns how many times DetectText was invoked.
func (m *MockVision) Calls() int {
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockVision) Closed() bool {
	return m.closed
}

// DetectText returns the pre-configured regions or error.
func (m *MockVision) DetectText(_ []byte, _, _, _ int, _ roi.Resolved, _ roi.Config) ([]RawRegion, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.regions, nil
}

// Close records the release for assertions.
func (m *MockVision) Close() error {
	m.closed = true
	return nil
}
