package ghtface

import (
	"math"
	"reflect"
	"sync"
	"testing"
)

var (
	modelsOnce sync.Once
	models     *Models
)

// testModels builds the default scale ladders once and shares them read only
// across the tests, the same way a long running caller would.
func testModels() *Models {
	modelsOnce.Do(func() {
		models = DefaultModels()
	})
	return models
}

// drawTestCircle paints a circle outline of the given value onto the grid.
func drawTestCircle(g *Gray, cx, cy int, r float64, v uint8) {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			dx := float64(x - cx)
			dy := float64(y - cy)
			if math.Abs(math.Sqrt(dx*dx+dy*dy)-r) < 3 {
				g.Set(x, y, v)
			}
		}
	}
}

func TestDetector_ShouldLocateCenteredEllipse(t *testing.T) {
	g := EllipseTemplate(640, 480, 45, 85)
	p := &Processor{Models: testModels()}

	det, err := p.DetectGray(g)
	if err != nil {
		t.Fatalf("Unexpected detection error: %v", err)
	}
	if !det.FaceOK {
		t.Fatalf("A clean centered ellipse should have been located")
	}
	if math.Abs(float64(det.FaceX-320)) > 3 || math.Abs(float64(det.FaceY-240)) > 3 {
		t.Errorf("Expected the face near (320,240), got (%d,%d)", det.FaceX, det.FaceY)
	}
	if det.FaceRx != 45 || det.FaceRy != 85 {
		t.Errorf("Expected the matching scale (45,85), got (%d,%d)", det.FaceRx, det.FaceRy)
	}
}

func TestDetector_ShouldLocateFaceAndEyes(t *testing.T) {
	g := EllipseTemplate(640, 520, 55, 105)
	drawTestCircle(g, 275, 190, 12, 0)
	drawTestCircle(g, 365, 190, 12, 0)

	p := &Processor{Models: testModels()}
	det, err := p.DetectGray(g)
	if err != nil {
		t.Fatalf("Unexpected detection error: %v", err)
	}

	if !det.FaceOK {
		t.Fatalf("The face ellipse should have been located")
	}
	if math.Abs(float64(det.FaceX-320)) > 3 || math.Abs(float64(det.FaceY-260)) > 3 {
		t.Errorf("Expected the face near (320,260), got (%d,%d)", det.FaceX, det.FaceY)
	}

	if !det.EyesOK {
		t.Fatalf("The eye pair should have been located, report:\n%s", det.String())
	}
	if det.EyeR != 12 {
		t.Errorf("Expected the matching eye radius 12, got %d", det.EyeR)
	}
	if math.Abs(float64(det.Eye1X-275)) > 3 || math.Abs(float64(det.Eye1Y-190)) > 3 {
		t.Errorf("Expected the left eye near (275,190), got (%d,%d)", det.Eye1X, det.Eye1Y)
	}
	if math.Abs(float64(det.Eye2X-365)) > 3 || math.Abs(float64(det.Eye2Y-190)) > 3 {
		t.Errorf("Expected the right eye near (365,190), got (%d,%d)", det.Eye2X, det.Eye2Y)
	}
	if det.EyeRegion.Empty() {
		t.Errorf("The searched eye band should have been reported")
	}
}

func TestDetector_BestCircleShouldPickTheMatchingRadius(t *testing.T) {
	img := CircleTemplate(320, 320, 18)
	p := &Processor{Models: testModels()}

	pk, r, ok := p.BestCircle(img)
	if !ok {
		t.Fatalf("A clean circle outline should have been located")
	}
	if r != 18 {
		t.Errorf("Expected the matching radius 18, got %d", r)
	}
	if math.Abs(pk.Bx-160) > 2 || math.Abs(pk.By-160) > 2 {
		t.Errorf("Expected the circle near (160,160), got (%f,%f)", pk.Bx, pk.By)
	}
}

func TestDetector_BestCircleShouldBeTranslationInvariant(t *testing.T) {
	p := &Processor{Models: testModels()}

	g1 := NewGray(320, 240, 255)
	drawTestCircle(g1, 100, 120, 14, 0)
	g2 := NewGray(320, 240, 255)
	drawTestCircle(g2, 140, 140, 14, 0)

	pk1, r1, ok1 := p.BestCircle(g1)
	pk2, r2, ok2 := p.BestCircle(g2)
	if !ok1 || !ok2 {
		t.Fatalf("Both circles should have been located")
	}
	if r1 != r2 || pk1.Score != pk2.Score {
		t.Errorf("A translated shape should keep its radius and score, got r=%d/%d score=%d/%d",
			r1, r2, pk1.Score, pk2.Score)
	}
	if math.Abs((pk2.Bx-pk1.Bx)-40) > 1 || math.Abs((pk2.By-pk1.By)-20) > 1 {
		t.Errorf("Expected the peak shifted by (40,20), got (%f,%f)", pk2.Bx-pk1.Bx, pk2.By-pk1.By)
	}
}

func TestDetector_ShouldBeDeterministic(t *testing.T) {
	g := EllipseTemplate(640, 480, 45, 85)
	snapshot := g.Clone()
	p := &Processor{Models: testModels()}

	det1, err := p.DetectGray(g)
	if err != nil {
		t.Fatalf("Unexpected detection error: %v", err)
	}
	det2, err := p.DetectGray(g)
	if err != nil {
		t.Fatalf("Unexpected detection error: %v", err)
	}

	if !reflect.DeepEqual(det1, det2) {
		t.Errorf("Two runs over the same grid should produce identical reports")
	}
	if !reflect.DeepEqual(g.Pix, snapshot.Pix) {
		t.Errorf("The detection must not mutate the input grid")
	}
}

func TestDetector_ScoreFloorShouldRejectWeakFaces(t *testing.T) {
	g := EllipseTemplate(640, 480, 45, 85)

	p := &Processor{Models: testModels(), FaceMinScore: 60000}
	det, err := p.DetectGray(g)
	if err != nil {
		t.Fatalf("Unexpected detection error: %v", err)
	}
	if det.FaceOK {
		t.Errorf("An unreachable score floor should reject every candidate")
	}
	if det.EyesOK {
		t.Errorf("No eye search should run without a located face")
	}
}

func TestDetector_DetectShouldMatchDetectGray(t *testing.T) {
	g := EllipseTemplate(640, 480, 45, 85)
	p := &Processor{Models: testModels()}

	fromGray, err := p.DetectGray(g)
	if err != nil {
		t.Fatalf("Unexpected detection error: %v", err)
	}
	fromImage, err := p.Detect(g.Image())
	if err != nil {
		t.Fatalf("Unexpected detection error: %v", err)
	}
	if !reflect.DeepEqual(fromGray, fromImage) {
		t.Errorf("The image entry point should report the same detection as the grid entry point")
	}
}

func TestDetector_BlurredInputShouldStillResolve(t *testing.T) {
	g := EllipseTemplate(640, 480, 45, 85)
	p := &Processor{Models: testModels(), BlurKernel: 3}

	det, err := p.DetectGray(g)
	if err != nil {
		t.Fatalf("Unexpected detection error: %v", err)
	}
	if !det.FaceOK {
		t.Fatalf("A lightly smoothed outline should still be located")
	}
	if math.Abs(float64(det.FaceX-320)) > 4 || math.Abs(float64(det.FaceY-240)) > 4 {
		t.Errorf("Expected the face near (320,240), got (%d,%d)", det.FaceX, det.FaceY)
	}
}

func TestDetector_AutoThresholdShouldRecoverLowContrast(t *testing.T) {
	g := NewGray(200, 200, 128)
	drawTestCircle(g, 100, 100, 14, 120)

	fixed := &Processor{Models: testModels()}
	if _, _, ok := fixed.BestCircle(g); ok {
		t.Errorf("The fixed cutoff should miss an 8 level contrast outline")
	}

	auto := &Processor{Models: testModels(), AutoThreshold: true}
	pk, _, ok := auto.BestCircle(g)
	if !ok {
		t.Fatalf("The calibrated cutoff should recover the faint outline")
	}
	if math.Abs(pk.Bx-100) > 5 || math.Abs(pk.By-100) > 5 {
		t.Errorf("Expected the faint circle near (100,100), got (%f,%f)", pk.Bx, pk.By)
	}
}

func TestDetector_EyePairSelection(t *testing.T) {
	// Too close horizontally.
	peaks := []Peak{{Bx: 10, By: 5, Score: 9}, {Bx: 20, By: 5, Score: 8}}
	if _, _, ok := bestEyePair(peaks, 50, 25, 100, 12); ok {
		t.Errorf("A pair below the minimum separation should be rejected")
	}

	// Below the face vertical center.
	peaks = []Peak{{Bx: 10, By: 60, Score: 9}, {Bx: 60, By: 60, Score: 8}}
	if _, _, ok := bestEyePair(peaks, 50, 25, 100, 12); ok {
		t.Errorf("Candidates below the face center should be rejected")
	}

	// Vertical misalignment.
	peaks = []Peak{{Bx: 10, By: 5, Score: 9}, {Bx: 60, By: 30, Score: 8}}
	if _, _, ok := bestEyePair(peaks, 50, 25, 100, 12); ok {
		t.Errorf("A vertically misaligned pair should be rejected")
	}

	// Admissible pair, handed in right to left.
	peaks = []Peak{{Bx: 60, By: 5, Score: 8}, {Bx: 10, By: 6, Score: 9}}
	left, right, ok := bestEyePair(peaks, 50, 25, 100, 12)
	if !ok {
		t.Fatalf("An admissible pair should have been accepted")
	}
	if left.Bx != 10 || right.Bx != 60 {
		t.Errorf("Expected the pair ordered left to right, got %f then %f", left.Bx, right.Bx)
	}
}

func TestDetector_ShouldRejectUnusableInput(t *testing.T) {
	p := &Processor{Models: testModels()}

	if _, err := p.DetectGray(nil); err == nil {
		t.Errorf("A nil grid should have been rejected")
	}
	if _, err := p.DetectGray(&Gray{Width: 4, Height: 4, Pix: make([]uint8, 3)}); err == nil {
		t.Errorf("A malformed grid should have been rejected")
	}
	if _, err := p.Detect(nil); err == nil {
		t.Errorf("A nil image should have been rejected")
	}

	noModels := &Processor{}
	if _, err := noModels.DetectGray(NewGray(64, 64, 0)); err == nil {
		t.Errorf("A processor without models should have been rejected")
	}

	evenBlur := &Processor{Models: testModels(), BlurKernel: 4}
	if _, err := evenBlur.DetectGray(NewGray(64, 64, 0)); err == nil {
		t.Errorf("An even blur kernel should have been rejected")
	}
}

func TestDetector_RescaleShouldMapBackToSource(t *testing.T) {
	det := &Detection{
		FaceOK: true, FaceX: 100, FaceY: 80, FaceRx: 30, FaceRy: 50,
		EyesOK: true, Eye1X: 85, Eye1Y: 60, Eye2X: 115, Eye2Y: 61, EyeR: 8,
	}
	det.rescale(2)

	if det.FaceX != 200 || det.FaceY != 160 || det.FaceRx != 60 || det.FaceRy != 100 {
		t.Errorf("The face coordinates should scale with the source image")
	}
	if det.Eye1X != 170 || det.Eye2X != 230 || det.EyeR != 16 {
		t.Errorf("The eye coordinates should scale with the source image")
	}
}
