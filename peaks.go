package ghtface

import (
	"github.com/esimov/ghtface/utils"
)

// Peak is a local maximum of the accumulator: the integer location of the
// strongest cell, its raw vote count and a vote weighted barycenter which
// refines the location below integer pixel resolution.
type Peak struct {
	X     int
	Y     int
	Bx    float64
	By    float64
	Score int
}

// LocalBarycenter scans the whole accumulator for its strongest cell and
// refines its location with a weighted centroid over a square window of the
// given radius, clamped against the accumulator bounds. Ties between equal
// cells resolve to the first maximum in row major scan order; callers must
// not assume a stronger guarantee. The boolean reports false when the
// accumulator holds no votes at all.
func LocalBarycenter(acc *Accumulator, radius int) (Peak, bool) {
	px, py := -1, -1
	best := 0

	for y := 0; y < acc.Height; y++ {
		row := y * acc.Width
		for x := 0; x < acc.Width; x++ {
			if v := int(acc.Bins[row+x]); v > best {
				best, px, py = v, x, y
			}
		}
	}
	if px < 0 || best == 0 {
		return Peak{}, false
	}

	x0 := utils.Max(0, px-radius)
	x1 := utils.Min(acc.Width-1, px+radius)
	y0 := utils.Max(0, py-radius)
	y1 := utils.Min(acc.Height-1, py+radius)

	var sw, sx, sy float64
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			w := float64(acc.Bins[y*acc.Width+x])
			sw += w
			sx += float64(x) * w
			sy += float64(y) * w
		}
	}
	if sw <= 0 {
		return Peak{}, false
	}

	return Peak{X: px, Y: py, Bx: sx / sw, By: sy / sw, Score: best}, true
}

// TopPeaks extracts up to k well separated peaks: after recording a peak,
// every cell within nmsRadius of its integer location is zeroed before the
// next scan, so near duplicate maxima around one true feature collapse into
// a single candidate. Extraction stops early when no votes remain or the
// next peak scores below minScore. The accumulator is consumed in the
// process.
func TopPeaks(acc *Accumulator, k, nmsRadius, baryRadius, minScore int) []Peak {
	var peaks []Peak

	for i := 0; i < k; i++ {
		pk, ok := LocalBarycenter(acc, baryRadius)
		if !ok || pk.Score < minScore {
			break
		}
		peaks = append(peaks, pk)
		suppressDisk(acc, pk.X, pk.Y, nmsRadius)
	}
	return peaks
}

// suppressDisk zeroes every accumulator cell within radius r of (cx, cy).
// The disk test uses squared distances to avoid a square root per cell.
func suppressDisk(acc *Accumulator, cx, cy, r int) {
	rr := r * r
	x0 := utils.Max(0, cx-r)
	x1 := utils.Min(acc.Width-1, cx+r)
	y0 := utils.Max(0, cy-r)
	y1 := utils.Min(acc.Height-1, cy+r)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := x - cx
			dy := y - cy
			if dx*dx+dy*dy <= rr {
				acc.Bins[y*acc.Width+x] = 0
			}
		}
	}
}
