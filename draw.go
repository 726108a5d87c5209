package ghtface

import (
	"image"
	"image/color"
	"math"

	"github.com/esimov/ghtface/utils"
)

// Overlay colors.
var (
	faceColor   = color.NRGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	eyeColor    = color.NRGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	regionColor = color.NRGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0x96}
)

// DrawDetection renders the detection result over a copy of the source
// image: the face ellipse, the searched eye band and the located eye
// circles. The detector itself never depends on this; it is a pure consumer
// of a finished Detection.
func DrawDetection(src *image.NRGBA, det *Detection) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	if det == nil {
		return dst
	}

	if det.FaceOK {
		drawEllipse(dst, det.FaceX, det.FaceY, float64(det.FaceRx), float64(det.FaceRy), faceColor)
		if !det.EyeRegion.Empty() {
			drawRect(dst, det.EyeRegion, regionColor)
		}
	}
	if det.EyesOK {
		drawCircle(dst, det.Eye1X, det.Eye1Y, float64(det.EyeR), eyeColor)
		drawCircle(dst, det.Eye2X, det.Eye2Y, float64(det.EyeR), eyeColor)
	}
	return dst
}

// drawEllipse plots the outline of an ellipse parametrically, with enough
// steps that neighboring samples stay within a pixel of each other.
func drawEllipse(img *image.NRGBA, cx, cy int, rx, ry float64, c color.NRGBA) {
	steps := utils.Max(64, int(2*math.Pi*math.Max(rx, ry)))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(rx*math.Cos(a)))
		y := cy + int(math.Round(ry*math.Sin(a)))
		blendPixel(img, x, y, c)
	}
}

func drawCircle(img *image.NRGBA, cx, cy int, r float64, c color.NRGBA) {
	drawEllipse(img, cx, cy, r, r, c)
}

// drawRect plots the outline of a rectangle.
func drawRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		blendPixel(img, x, r.Min.Y, c)
		blendPixel(img, x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		blendPixel(img, r.Min.X, y, c)
		blendPixel(img, r.Max.X-1, y, c)
	}
}

// blendPixel mixes the overlay color into the destination pixel according
// to the overlay alpha. Out of bounds coordinates are dropped.
func blendPixel(img *image.NRGBA, x, y int, c color.NRGBA) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}

	i := img.PixOffset(x, y)
	a := int(c.A)
	img.Pix[i] = uint8((int(c.R)*a + int(img.Pix[i])*(255-a)) / 255)
	img.Pix[i+1] = uint8((int(c.G)*a + int(img.Pix[i+1])*(255-a)) / 255)
	img.Pix[i+2] = uint8((int(c.B)*a + int(img.Pix[i+2])*(255-a)) / 255)
	img.Pix[i+3] = 0xff
}
