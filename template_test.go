package ghtface

import (
	"math"
	"testing"
)

func TestTemplate_EllipseOutline(t *testing.T) {
	tm := EllipseTemplate(150, 230, 45, 85)
	cx, cy := 75, 115

	if tm.At(cx, cy) != 255 {
		t.Errorf("The template center should stay background")
	}
	if tm.At(0, 0) != 255 {
		t.Errorf("The template corner should stay background")
	}
	if tm.At(cx+45, cy) != 0 {
		t.Errorf("The right apex should lie on the outline")
	}
	if tm.At(cx, cy+85) != 0 {
		t.Errorf("The bottom apex should lie on the outline")
	}
}

func TestTemplate_CircleOutlineShouldBeContinuous(t *testing.T) {
	const r = 18.0
	tm := CircleTemplate(76, 76, r)
	cx, cy := 38, 38

	if tm.At(cx, cy) != 255 {
		t.Errorf("The template center should stay background")
	}

	// Every rounded point of the ideal circle must land inside the
	// tolerance band, so the outline has no gaps.
	for i := 0; i < 360; i++ {
		a := float64(i) * math.Pi / 180
		x := cx + int(math.Round(r*math.Cos(a)))
		y := cy + int(math.Round(r*math.Sin(a)))
		if tm.At(x, y) != 0 {
			t.Fatalf("Gap in the circle outline at angle %d", i)
		}
	}
}

func TestTemplate_ArtificialImages(t *testing.T) {
	e := ArtificialEllipseImage(640, 480)
	if e.Width != 640 || e.Height != 480 {
		t.Errorf("Unexpected probe image size %dx%d", e.Width, e.Height)
	}
	// ry = 0.35*480 = 168, bottom apex on the outline.
	if e.At(320, 240+168) != 0 {
		t.Errorf("The probe ellipse should be centered on the image")
	}

	c := ArtificialCircleImage(320, 320)
	// r = 0.30*320 = 96, right apex on the outline.
	if c.At(160+96, 160) != 0 {
		t.Errorf("The probe circle should be centered on the image")
	}
}
