package ghtface

import (
	"fmt"
	"image"
	"math"

	"github.com/esimov/ghtface/utils"
)

// Gray is a single channel, row-major luminance grid. It is the working
// representation consumed by every stage of the detection pipeline. A grid
// is owned by the stage which produced it and is never mutated afterwards,
// with the exception of Stackblur which documents its in place behavior.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray creates a new luminance grid filled with the provided value.
func NewGray(width, height int, fill uint8) *Gray {
	pix := make([]uint8, width*height)
	if fill != 0 {
		for i := range pix {
			pix[i] = fill
		}
	}
	return &Gray{Width: width, Height: height, Pix: pix}
}

// At returns the luminance value at the (x, y) coordinate.
func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set stores the luminance value at the (x, y) coordinate.
func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Clone returns a deep copy of the grid.
func (g *Gray) Clone() *Gray {
	pix := make([]uint8, len(g.Pix))
	copy(pix, g.Pix)
	return &Gray{Width: g.Width, Height: g.Height, Pix: pix}
}

// SubGray copies the r region into a new, standalone grid. The rectangle is
// clamped against the grid bounds first.
func (g *Gray) SubGray(r image.Rectangle) *Gray {
	r = r.Intersect(image.Rect(0, 0, g.Width, g.Height))
	dst := NewGray(r.Dx(), r.Dy(), 0)

	for y := 0; y < dst.Height; y++ {
		si := (r.Min.Y+y)*g.Width + r.Min.X
		copy(dst.Pix[y*dst.Width:(y+1)*dst.Width], g.Pix[si:si+dst.Width])
	}
	return dst
}

// Image renders the grid as an NRGBA image, mostly useful for debugging
// the preprocessing stages.
func (g *Gray) Image() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for i, v := range g.Pix {
		dst.Pix[i*4] = v
		dst.Pix[i*4+1] = v
		dst.Pix[i*4+2] = v
		dst.Pix[i*4+3] = 0xff
	}
	return dst
}

// FromBGR converts a packed 8 bit, 3 channel (blue, green, red ordered)
// sample buffer to a luminance grid using the integer BT.601 weights.
// The buffer length must be exactly width*height*3.
func FromBGR(data []uint8, width, height int) (*Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("the sample grid must have a nonzero area, got %dx%d", width, height)
	}
	if len(data) != width*height*3 {
		return nil, fmt.Errorf("expected a three channel buffer of %d bytes, got %d", width*height*3, len(data))
	}

	g := NewGray(width, height, 0)
	for i := 0; i < width*height; i++ {
		b := int(data[3*i])
		gg := int(data[3*i+1])
		r := int(data[3*i+2])
		g.Pix[i] = uint8((299*r + 587*gg + 114*b) / 1000)
	}
	return g, nil
}

// FromImage converts any image type to a luminance grid.
func FromImage(img image.Image) (*Gray, error) {
	if img == nil {
		return nil, fmt.Errorf("the source image is empty")
	}
	src := imgToNRGBA(img)
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("the source image has a zero area")
	}

	g := NewGray(width, height, 0)
	for i := 0; i < width*height; i++ {
		r := int(src.Pix[i*4])
		gg := int(src.Pix[i*4+1])
		b := int(src.Pix[i*4+2])
		g.Pix[i] = uint8((299*r + 587*gg + 114*b) / 1000)
	}
	return g, nil
}

// Equalize spreads the luminance histogram over the full value range and
// returns the result as a new grid. Flat images are returned unchanged.
func (g *Gray) Equalize() *Gray {
	var hist [256]int
	for _, v := range g.Pix {
		hist[v]++
	}

	lut, ok := equalizeLUT(hist, len(g.Pix))
	if !ok {
		return g.Clone()
	}

	dst := NewGray(g.Width, g.Height, 0)
	for i, v := range g.Pix {
		dst.Pix[i] = lut[v]
	}
	return dst
}

// adaptiveTiles is the number of tiles per axis used by the adaptive
// histogram equalization.
const adaptiveTiles = 8

// EqualizeAdaptive equalizes the luminance histogram per image tile and
// interpolates bilinearly between the neighboring tile mappings, which
// preserves local contrast much better than the global variant on unevenly
// lit frames.
func (g *Gray) EqualizeAdaptive() *Gray {
	if g.Width < adaptiveTiles || g.Height < adaptiveTiles {
		return g.Equalize()
	}

	tw := (g.Width + adaptiveTiles - 1) / adaptiveTiles
	th := (g.Height + adaptiveTiles - 1) / adaptiveTiles

	var luts [adaptiveTiles * adaptiveTiles][256]uint8
	for ty := 0; ty < adaptiveTiles; ty++ {
		for tx := 0; tx < adaptiveTiles; tx++ {
			x0, y0 := tx*tw, ty*th
			x1 := utils.Min(x0+tw, g.Width)
			y1 := utils.Min(y0+th, g.Height)

			var hist [256]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[g.At(x, y)]++
				}
			}
			lut, ok := equalizeLUT(hist, (x1-x0)*(y1-y0))
			if !ok {
				// Flat tile, keep an identity mapping.
				for v := 0; v < 256; v++ {
					lut[v] = uint8(v)
				}
			}
			luts[ty*adaptiveTiles+tx] = lut
		}
	}

	dst := NewGray(g.Width, g.Height, 0)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			// Tile space position relative to the tile centers.
			gx := (float64(x) - float64(tw)/2) / float64(tw)
			gy := (float64(y) - float64(th)/2) / float64(th)

			tx0 := int(math.Floor(gx))
			ty0 := int(math.Floor(gy))
			fx := gx - float64(tx0)
			fy := gy - float64(ty0)

			tx1 := clampi(tx0+1, 0, adaptiveTiles-1)
			ty1 := clampi(ty0+1, 0, adaptiveTiles-1)
			tx0 = clampi(tx0, 0, adaptiveTiles-1)
			ty0 = clampi(ty0, 0, adaptiveTiles-1)

			v := g.At(x, y)
			m00 := float64(luts[ty0*adaptiveTiles+tx0][v])
			m10 := float64(luts[ty0*adaptiveTiles+tx1][v])
			m01 := float64(luts[ty1*adaptiveTiles+tx0][v])
			m11 := float64(luts[ty1*adaptiveTiles+tx1][v])

			top := m00 + (m10-m00)*fx
			bottom := m01 + (m11-m01)*fx
			dst.Set(x, y, uint8(math.Round(top+(bottom-top)*fy)))
		}
	}
	return dst
}

// equalizeLUT builds the cumulative histogram mapping. It reports false for
// degenerate (single valued) histograms which cannot be stretched.
func equalizeLUT(hist [256]int, n int) ([256]uint8, bool) {
	var lut [256]uint8

	cdfMin := 0
	for _, c := range hist {
		if c > 0 {
			cdfMin = c
			break
		}
	}
	if n == 0 || n == cdfMin {
		return lut, false
	}

	cdf := 0
	for v := 0; v < 256; v++ {
		cdf += hist[v]
		if cdf == 0 {
			continue
		}
		lut[v] = uint8(math.Round(float64(cdf-cdfMin) / float64(n-cdfMin) * 255))
	}
	return lut, true
}
