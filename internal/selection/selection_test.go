package selection

import (
	"strings"
	"testing"
)

const validDoc = `
frame_width: 1920
frame_height: 1080
luma_band:
  target: 235
  delta: 20
regions:
  - name: bottom-band
    description: standard subtitle placement
    region: {x: 0.1, y: 0.8, width: 0.8, height: 0.15}
  - name: top-band
    description: forced captions
    region: {x: 0.1, y: 0.05, width: 0.8, height: 0.1}
`

func TestParse_ValidDocument(t *testing.T) {
	doc, err := Parse([]byte(validDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.FrameWidth != 1920 || doc.FrameHeight != 1080 {
		t.Errorf("geometry = %dx%d, want 1920x1080", doc.FrameWidth, doc.FrameHeight)
	}
	if doc.LumaBand.Target != 235 || doc.LumaBand.Delta != 20 {
		t.Errorf("luma band = %+v, want {235 20}", doc.LumaBand)
	}
	if len(doc.Regions) != 2 {
		t.Fatalf("len(Regions) = %d, want 2", len(doc.Regions))
	}
	if doc.Regions[0].Name != "bottom-band" {
		t.Errorf("region order not preserved: %q first", doc.Regions[0].Name)
	}
	if doc.FrameSize() != 1920*1080 {
		t.Errorf("FrameSize() = %d, want %d", doc.FrameSize(), 1920*1080)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			"missing dimensions",
			`regions: [{name: a, region: {x: 0, y: 0, width: 1, height: 1}}]`,
		},
		{
			"no regions",
			"frame_width: 100\nframe_height: 100\n",
		},
		{
			"duplicate names",
			`
frame_width: 100
frame_height: 100
regions:
  - name: a
    region: {x: 0, y: 0, width: 0.5, height: 0.5}
  - name: a
    region: {x: 0.5, y: 0.5, width: 0.5, height: 0.5}
`,
		},
		{
			"region outside frame",
			`
frame_width: 100
frame_height: 100
regions:
  - name: off-frame
    region: {x: 1.5, y: 0, width: 0.1, height: 0.1}
`,
		},
		{
			"not yaml",
			"{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Errorf("Parse() should fail for %s", tt.name)
			}
		})
	}
}

func TestParse_UnnamedRegionRejected(t *testing.T) {
	doc := `
frame_width: 100
frame_height: 100
regions:
  - region: {x: 0, y: 0, width: 0.5, height: 0.5}
`
	_, err := Parse([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "no name") {
		t.Errorf("Parse() error = %v, want unnamed-region rejection", err)
	}
}
