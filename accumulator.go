package ghtface

import (
	"image"
	"math"

	"github.com/esimov/ghtface/utils"
)

// minRegionSize is the smallest usable voting region edge; anything smaller
// after clamping yields an empty accumulator.
const minRegionSize = 8

// Accumulator is a grid of vote counts matching the source image size.
// Each cell counts how many edge pixels nominated it as a shape center.
// Votes saturate at the maximum representable count instead of wrapping.
type Accumulator struct {
	Width  int
	Height int
	Bins   []uint16
}

// NewAccumulator creates a zeroed accumulator of the given size.
func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{
		Width:  width,
		Height: height,
		Bins:   make([]uint16, width*height),
	}
}

// Vote casts the votes of every admissible source pixel into a fresh
// accumulator: a pixel votes when it lies inside the region, its gradient
// magnitude meets the threshold and its orientation is defined. Each vote
// increments the cells reached by the offsets stored under the pixel's
// orientation bin; out of bounds targets are dropped. The region restricts
// which pixels may vote, pass the full image rectangle to vote everywhere.
//
// This is the hot loop of the detector: cost is proportional to the region
// area times the average offset list length.
func Vote(gr *Gradients, rt *RTable, threshold int, region image.Rectangle) *Accumulator {
	acc := NewAccumulator(gr.Width, gr.Height)

	r := region.Intersect(image.Rect(0, 0, gr.Width, gr.Height))
	if r.Dx() < minRegionSize || r.Dy() < minRegionSize {
		return acc
	}

	x0 := utils.Max(1, r.Min.X)
	x1 := utils.Min(gr.Width-2, r.Max.X)
	y0 := utils.Max(1, r.Min.Y)
	y1 := utils.Min(gr.Height-2, r.Max.Y)

	for y := y0; y < y1; y++ {
		row := y * gr.Width
		for x := x0; x < x1; x++ {
			idx := row + x
			if int(gr.Mag[idx]) < threshold {
				continue
			}
			if gr.Gx[idx] == 0 && gr.Gy[idx] == 0 {
				continue
			}

			for _, off := range rt[gr.Theta[idx]] {
				cx := x + off.Dx
				cy := y + off.Dy
				if cx < 0 || cx >= acc.Width || cy < 0 || cy >= acc.Height {
					continue
				}
				cell := cy*acc.Width + cx
				if acc.Bins[cell] < math.MaxUint16 {
					acc.Bins[cell]++
				}
			}
		}
	}
	return acc
}

// Image renders the vote counts normalized into an NRGBA image, a debugging
// aid for inspecting the vote distribution.
func (a *Accumulator) Image() *image.NRGBA {
	var max uint16
	for _, v := range a.Bins {
		if v > max {
			max = v
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, a.Width, a.Height))
	for i, v := range a.Bins {
		var c uint8
		if max > 0 {
			c = uint8(int(v) * 255 / int(max))
		}
		dst.Pix[i*4] = c
		dst.Pix[i*4+1] = c
		dst.Pix[i*4+2] = c
		dst.Pix[i*4+3] = 0xff
	}
	return dst
}
