package ghtface

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Detection is the per frame report. A fresh value is produced for every
// processed image; a failed stage leaves its section on NOTFOUND instead of
// raising an error. All coordinates are integer pixel positions in the
// source image's coordinate space.
type Detection struct {
	FaceOK    bool
	FaceX     int
	FaceY     int
	FaceScore int
	FaceRx    int
	FaceRy    int

	EyesOK   bool
	Eye1X    int
	Eye1Y    int
	Eye2X    int
	Eye2Y    int
	EyeScore int
	EyeR     int

	// EyeRegion is the band above the face center the eye pass searched,
	// in source image coordinates. Empty when no face was found.
	EyeRegion image.Rectangle

	// The edge magnitude thresholds actually used, kept for diagnostics.
	FaceThreshold int
	EyeThreshold  int
}

// String renders the canonical detection report.
func (d *Detection) String() string {
	var sb strings.Builder

	if d.FaceOK {
		fmt.Fprintf(&sb, "Face=(%d,%d) score=%d scale=(%d,%d)\n",
			d.FaceX, d.FaceY, d.FaceScore, d.FaceRx, d.FaceRy)
	} else {
		sb.WriteString("Face=NOTFOUND\n")
	}

	if d.EyesOK {
		fmt.Fprintf(&sb, "Eyes=(%d,%d) (%d,%d) score=%d r=%d\n",
			d.Eye1X, d.Eye1Y, d.Eye2X, d.Eye2Y, d.EyeScore, d.EyeR)
	} else {
		sb.WriteString("Eyes=NOTFOUND\n")
	}

	fmt.Fprintf(&sb, "Thresholds: face=%d eye=%d\n", d.FaceThreshold, d.EyeThreshold)
	return sb.String()
}

// rescale maps the reported coordinates and radii back into the source
// image space after a pre detection downscale. Scores stay those of the
// working resolution.
func (d *Detection) rescale(f float64) {
	s := func(v int) int {
		return int(math.Round(float64(v) * f))
	}

	d.FaceX, d.FaceY = s(d.FaceX), s(d.FaceY)
	d.FaceRx, d.FaceRy = s(d.FaceRx), s(d.FaceRy)
	d.Eye1X, d.Eye1Y = s(d.Eye1X), s(d.Eye1Y)
	d.Eye2X, d.Eye2Y = s(d.Eye2X), s(d.Eye2Y)
	d.EyeR = s(d.EyeR)
	d.EyeRegion = image.Rect(
		s(d.EyeRegion.Min.X), s(d.EyeRegion.Min.Y),
		s(d.EyeRegion.Max.X), s(d.EyeRegion.Max.Y),
	)
}
