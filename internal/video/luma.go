package video

import (
	"github.com/weidix/subtitle-fast-sub001/internal/roi"
)

// LumaBand classifies a pixel as "on" when its luma value falls within
// Delta of the Target value. Subtitle text is typically rendered at a
// near-constant brightness, which is what the band captures.
type LumaBand struct {
	Target uint8 `json:"target" yaml:"target"`
	Delta  uint8 `json:"delta" yaml:"delta"`
}

// Contains reports whether the luma value v falls inside the band.
func (b LumaBand) Contains(v uint8) bool {
	d := int(v) - int(b.Target)
	if d < 0 {
		d = -d
	}
	return d <= int(b.Delta)
}

// Mask is a binary bitmap over a resolved region of interest.
// Bits holds one byte per pixel in row-major order, 1 meaning "on".
type Mask struct {
	Bits   []uint8
	Width  int
	Height int
}

// BuildMask classifies the region's pixels by the luma band. The region must
// already be resolved against the frame's dimensions.
func BuildMask(f *Frame, region roi.Resolved, band LumaBand) (*Mask, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	m := &Mask{
		Bits:   make([]uint8, region.Width*region.Height),
		Width:  region.Width,
		Height: region.Height,
	}
	for y := 0; y < region.Height; y++ {
		row := f.Pixels[(region.Y+y)*f.Stride+region.X:]
		for x := 0; x < region.Width; x++ {
			if band.Contains(row[x]) {
				m.Bits[y*region.Width+x] = 1
			}
		}
	}
	return m, nil
}

// At reports whether the mask pixel (x, y) is on. Out-of-bounds reads are off.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x] != 0
}

// OnCount returns the number of on pixels.
func (m *Mask) OnCount() int {
	n := 0
	for _, b := range m.Bits {
		if b != 0 {
			n++
		}
	}
	return n
}

// Bounds returns the bounding box of the on pixels in mask coordinates.
// ok is false when the mask is empty.
func (m *Mask) Bounds() (x, y, w, h int, ok bool) {
	minX, minY := m.Width, m.Height
	maxX, maxY := -1, -1
	for py := 0; py < m.Height; py++ {
		row := m.Bits[py*m.Width : (py+1)*m.Width]
		for px, b := range row {
			if b == 0 {
				continue
			}
			if px < minX {
				minX = px
			}
			if px > maxX {
				maxX = px
			}
			if py < minY {
				minY = py
			}
			maxY = py
		}
	}
	if maxX < 0 {
		return 0, 0, 0, 0, false
	}
	return minX, minY, maxX - minX + 1, maxY - minY + 1, true
}

// Clean applies the morphological cleanup pass: a 3×3 open to remove isolated
// noise pixels followed by a 3×3 close to fill small holes.
func (m *Mask) Clean() {
	tmp := make([]uint8, len(m.Bits))
	// Open: erode then dilate.
	m.erode(tmp)
	copy(m.Bits, tmp)
	m.dilate(tmp)
	copy(m.Bits, tmp)
	// Close: dilate then erode.
	m.dilate(tmp)
	copy(m.Bits, tmp)
	m.erode(tmp)
	copy(m.Bits, tmp)
}

// erode writes into dst a mask where a pixel survives only if its full 3×3
// neighborhood is on. Pixels outside the mask count as off.
func (m *Mask) erode(dst []uint8) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			on := true
			for dy := -1; dy <= 1 && on; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if !m.At(x+dx, y+dy) {
						on = false
						break
					}
				}
			}
			if on {
				dst[y*m.Width+x] = 1
			} else {
				dst[y*m.Width+x] = 0
			}
		}
	}
}

// dilate writes into dst a mask where a pixel is on if any pixel of its 3×3
// neighborhood is on.
func (m *Mask) dilate(dst []uint8) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			on := false
			for dy := -1; dy <= 1 && !on; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if m.At(x+dx, y+dy) {
						on = true
						break
					}
				}
			}
			if on {
				dst[y*m.Width+x] = 1
			} else {
				dst[y*m.Width+x] = 0
			}
		}
	}
}
