package detect

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/weidix/subtitle-fast-sub001/internal/roi"
)

func init() {
	registerVision("tesseract", func(cfg Config) (VisionService, error) {
		return NewTesseractService(cfg.Languages), nil
	})
}

// TesseractService implements VisionService over the Tesseract OCR engine
// via gosseract. Each call owns a client for its full duration so the native
// handle is released on every exit path.
type TesseractService struct {
	languages []string
}

// NewTesseractService creates the service for the given comma-separated
// language list (empty means the engine default).
func NewTesseractService(languages string) *TesseractService {
	var langs []string
	for _, l := range strings.Split(languages, ",") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return &TesseractService{languages: langs}
}

// DetectText crops the region out of the Y plane, hands it to Tesseract, and
// maps the detected text lines back to frame coordinates.
func (s *TesseractService) DetectText(y []byte, width, height, stride int, region roi.Resolved, _ roi.Config) ([]RawRegion, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if len(s.languages) > 0 {
		if err := client.SetLanguage(s.languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}

	img := image.NewGray(image.Rect(0, 0, region.Width, region.Height))
	for row := 0; row < region.Height; row++ {
		src := (region.Y+row)*stride + region.X
		copy(img.Pix[row*img.Stride:row*img.Stride+region.Width], y[src:src+region.Width])
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode region: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	regions := make([]RawRegion, 0, len(boxes))
	for _, b := range boxes {
		regions = append(regions, RawRegion{
			X:          region.X + b.Box.Min.X,
			Y:          region.Y + b.Box.Min.Y,
			Width:      b.Box.Dx(),
			Height:     b.Box.Dy(),
			Confidence: b.Confidence / 100,
		})
	}
	return regions, nil
}

// Close is a no-op: clients are scoped per call.
func (s *TesseractService) Close() error {
	return nil
}
