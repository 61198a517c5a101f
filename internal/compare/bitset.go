package compare

import (
	"math/bits"

	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

// Grid tuning. The defaults are calibration candidates, not measured optima:
// 32×12 cells keep a 1920-wide subtitle band around 60 px per cell row, and
// a cell lights up once 15% of its pixels are on.
const (
	gridCols = 32
	gridRows = 12

	cellOnFraction = 0.15

	// bitsetSameThreshold is the Jaccard similarity at or above which two
	// grids are judged to show the same subtitle.
	bitsetSameThreshold = 0.70
)

const gridWords = (gridCols*gridRows + 63) / 64

// bitGrid is the fixed-resolution occupancy bitset over the region.
type bitGrid struct {
	words [gridWords]uint64
}

func (g *bitGrid) set(col, row int) {
	idx := row*gridCols + col
	g.words[idx/64] |= 1 << (idx % 64)
}

func (g *bitGrid) onCount() int {
	n := 0
	for _, w := range g.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// extractBitset rasterizes the cleaned mask onto the fixed grid: a cell is
// on when its on-pixel density meets cellOnFraction.
func extractBitset(mask *video.Mask) *Blob {
	blob := &Blob{
		backend: BitsetCover,
		roiW:    mask.Width,
		roiH:    mask.Height,
	}

	for row := 0; row < gridRows; row++ {
		y0 := row * mask.Height / gridRows
		y1 := (row + 1) * mask.Height / gridRows
		for col := 0; col < gridCols; col++ {
			x0 := col * mask.Width / gridCols
			x1 := (col + 1) * mask.Width / gridCols

			cellArea := (x1 - x0) * (y1 - y0)
			if cellArea == 0 {
				continue
			}

			on := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					if mask.At(x, y) {
						on++
					}
				}
			}
			if float64(on) >= cellOnFraction*float64(cellArea) {
				blob.grid.set(col, row)
			}
		}
	}

	return blob
}

// compareBitset scores two occupancy grids by the Jaccard index of their on
// bits. Two all-off grids are identical, hence similarity 1.
func compareBitset(a, b *Blob) Report {
	var intersection, union int
	for i := range a.grid.words {
		intersection += bits.OnesCount64(a.grid.words[i] & b.grid.words[i])
		union += bits.OnesCount64(a.grid.words[i] | b.grid.words[i])
	}

	similarity := 1.0
	if union > 0 {
		similarity = float64(intersection) / float64(union)
	}

	return Report{
		Similarity:  similarity,
		SameSegment: similarity >= bitsetSameThreshold,
		Details: map[string]float64{
			"intersection": float64(intersection),
			"union":        float64(union),
			"cells_a":      float64(a.grid.onCount()),
			"cells_b":      float64(b.grid.onCount()),
		},
	}
}
