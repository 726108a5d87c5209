package ghtface

import (
	"math"

	"github.com/esimov/ghtface/utils"
)

// Tolerance bands of the synthesized shape boundaries. Both are wide enough
// to yield a continuous outline of a few pixels thickness, which the table
// builder needs to pick up a stable gradient orientation on every side of
// the shape.
const (
	ellipseBand = 0.03
	circleBand  = 3.0
)

// EllipseTemplate synthesizes a binary template: a white background with a
// black ellipse outline of the given semi axes, centered on the designed
// (width/2, height/2) reference point.
func EllipseTemplate(width, height int, rx, ry float64) *Gray {
	t := NewGray(width, height, 255)
	cx := float64(width / 2)
	cy := float64(height / 2)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			v := dx*dx/(rx*rx) + dy*dy/(ry*ry)
			if math.Abs(v-1) < ellipseBand {
				t.Set(x, y, 0)
			}
		}
	}
	return t
}

// CircleTemplate synthesizes a binary template: a white background with a
// black circle outline of the given radius, centered on the designed
// (width/2, height/2) reference point.
func CircleTemplate(width, height int, r float64) *Gray {
	t := NewGray(width, height, 255)
	cx := float64(width / 2)
	cy := float64(height / 2)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			d := math.Sqrt(dx*dx + dy*dy)
			if math.Abs(d-r) < circleBand {
				t.Set(x, y, 0)
			}
		}
	}
	return t
}

// ArtificialEllipseImage generates a synthetic probe image holding a single
// ellipse outline at its center, sized relative to the image height. Used by
// the self test mode.
func ArtificialEllipseImage(width, height int) *Gray {
	ry := 0.35 * float64(height)
	rx := 0.5 * ry
	return EllipseTemplate(width, height, rx, ry)
}

// ArtificialCircleImage generates a synthetic probe image holding a single
// circle outline at its center, sized relative to the shortest image side.
// Used by the self test mode.
func ArtificialCircleImage(width, height int) *Gray {
	r := 0.30 * float64(utils.Min(width, height))
	return CircleTemplate(width, height, r)
}
