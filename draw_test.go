package ghtface

import (
	"image"
	"testing"
)

func TestDraw_ShouldNotMutateTheSource(t *testing.T) {
	src := NewGray(100, 100, 50).Image()
	det := &Detection{
		FaceOK: true, FaceX: 50, FaceY: 50, FaceRx: 10, FaceRy: 20,
		EyesOK: true, Eye1X: 40, Eye1Y: 40, Eye2X: 60, Eye2Y: 40, EyeR: 4,
		EyeRegion: image.Rect(30, 30, 70, 45),
	}

	dst := DrawDetection(src, det)
	if dst == src {
		t.Fatalf("The overlay must be rendered on a copy")
	}

	i := src.PixOffset(60, 50)
	if src.Pix[i] != 50 || src.Pix[i+1] != 50 || src.Pix[i+2] != 50 {
		t.Errorf("The source image should stay untouched")
	}
}

func TestDraw_ShouldRenderTheOverlay(t *testing.T) {
	src := NewGray(100, 100, 50).Image()
	det := &Detection{
		FaceOK: true, FaceX: 50, FaceY: 50, FaceRx: 10, FaceRy: 20,
		EyesOK: true, Eye1X: 40, Eye1Y: 40, Eye2X: 60, Eye2Y: 40, EyeR: 4,
	}

	dst := DrawDetection(src, det)

	// Right apex of the face ellipse, drawn fully opaque.
	i := dst.PixOffset(60, 50)
	if dst.Pix[i] != faceColor.R || dst.Pix[i+1] != faceColor.G || dst.Pix[i+2] != faceColor.B {
		t.Errorf("Expected the face outline color at (60,50)")
	}

	// Right apex of the left eye circle.
	i = dst.PixOffset(44, 40)
	if dst.Pix[i] != eyeColor.R || dst.Pix[i+1] != eyeColor.G || dst.Pix[i+2] != eyeColor.B {
		t.Errorf("Expected the eye outline color at (44,40)")
	}
}

func TestDraw_NilDetectionShouldCopyVerbatim(t *testing.T) {
	src := NewGray(32, 32, 77).Image()
	dst := DrawDetection(src, nil)

	for i := range dst.Pix {
		if dst.Pix[i] != src.Pix[i] {
			t.Fatalf("Expected a verbatim copy, mismatch at index %d", i)
		}
	}
}
