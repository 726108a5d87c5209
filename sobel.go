package ghtface

import (
	"image"
	"math"
)

type kernel [][]int32

var (
	kernelX = kernel{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}

	kernelY = kernel{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// Gradients holds the per pixel edge response of a luminance grid: the
// signed horizontal and vertical kernel sums, the rounded gradient magnitude
// and the gradient orientation expressed as a whole degree bin in [0,360).
// The orientation is meaningful only where Gx or Gy is nonzero; such pixels
// must never cast votes.
type Gradients struct {
	Width  int
	Height int
	Gx     []int16
	Gy     []int16
	Mag    []uint16
	Theta  []int16
}

// Sobel computes the gradient field of the luminance grid.
// See https://en.wikipedia.org/wiki/Sobel_operator
// Samples outside the grid bounds are replicated from the nearest edge.
func Sobel(g *Gray) *Gradients {
	gr := &Gradients{
		Width:  g.Width,
		Height: g.Height,
		Gx:     make([]int16, g.Width*g.Height),
		Gy:     make([]int16, g.Width*g.Height),
		Mag:    make([]uint16, g.Width*g.Height),
		Theta:  make([]int16, g.Width*g.Height),
	}

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			var sumX, sumY int32
			for ky := 0; ky < 3; ky++ {
				py := clampi(y+ky-1, 0, g.Height-1)
				for kx := 0; kx < 3; kx++ {
					px := clampi(x+kx-1, 0, g.Width-1)
					v := int32(g.Pix[py*g.Width+px])
					sumX += v * kernelX[ky][kx]
					sumY += v * kernelY[ky][kx]
				}
			}

			idx := y*g.Width + x
			gr.Gx[idx] = int16(sumX)
			gr.Gy[idx] = int16(sumY)

			mag := math.Round(math.Sqrt(float64(sumX*sumX + sumY*sumY)))
			if mag > math.MaxUint16 {
				mag = math.MaxUint16
			}
			gr.Mag[idx] = uint16(mag)

			if sumX != 0 || sumY != 0 {
				gr.Theta[idx] = degBin(float64(sumY), float64(sumX))
			}
		}
	}
	return gr
}

// degBin converts a gradient direction to a whole degree bin in [0,360).
func degBin(gy, gx float64) int16 {
	deg := math.Atan2(gy, gx) * 180 / math.Pi
	bin := int(math.Round(deg)) % 360
	if bin < 0 {
		bin += 360
	}
	return int16(bin)
}

// Image renders the gradient magnitudes normalized into an NRGBA image,
// a debugging aid for tuning the edge thresholds.
func (gr *Gradients) Image() *image.NRGBA {
	var max uint16
	for _, m := range gr.Mag {
		if m > max {
			max = m
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, gr.Width, gr.Height))
	for i, m := range gr.Mag {
		var v uint8
		if max > 0 {
			v = uint8(int(m) * 255 / int(max))
		}
		dst.Pix[i*4] = v
		dst.Pix[i*4+1] = v
		dst.Pix[i*4+2] = v
		dst.Pix[i*4+3] = 0xff
	}
	return dst
}

// clampi clamps v into the [lo, hi] range.
func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
