package ghtface

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/esimov/ghtface/utils"
)

// Search parameters of the face and eye passes.
const (
	faceBaryRadius   = 22
	eyeBaryRadius    = 10
	eyeNMSRadius     = 14
	eyePeakCount     = 6
	circleBaryRadius = 17
)

// Default acceptance scores applied when no override is provided.
const (
	DefaultFaceMinScore = 14
	DefaultEyeMinPeak   = 5
)

// Processor holds the validated detection options. The zero value runs the
// canonical pipeline with fixed thresholds and no preprocessing; Models must
// always be provided.
type Processor struct {
	// Preprocessing switches, applied in the listed order.
	HistEq         bool
	AdaptiveHistEq bool
	BlurKernel     int

	// AutoThreshold derives the edge thresholds from the gradient
	// magnitude distribution of the current image. An explicit override
	// below always wins over the calibration.
	AutoThreshold     bool
	FaceEdgeThreshold int
	EyeEdgeThreshold  int

	// Acceptance scores; zero selects the defaults.
	FaceMinScore int
	EyeMinPeak   int

	// MaxDim downscales frames whose longest side exceeds it before
	// detection and maps the results back to the source coordinate
	// space. Zero disables the rescale.
	MaxDim int

	Models *Models
}

// Detect locates a face and a pair of eyes in the source image and returns
// the detection report. An error is returned only for unusable input; a
// frame without a detectable face or eye pair yields a NOTFOUND report.
func (p *Processor) Detect(src image.Image) (*Detection, error) {
	if src == nil {
		return nil, errors.New("the source image is empty")
	}

	b := src.Bounds()
	scale := 1.0
	if p.MaxDim > 0 && (b.Dx() > p.MaxDim || b.Dy() > p.MaxDim) {
		if b.Dx() >= b.Dy() {
			scale = float64(b.Dx()) / float64(p.MaxDim)
			src = imaging.Resize(src, p.MaxDim, 0, imaging.Lanczos)
		} else {
			scale = float64(b.Dy()) / float64(p.MaxDim)
			src = imaging.Resize(src, 0, p.MaxDim, imaging.Lanczos)
		}
	}

	g, err := FromImage(src)
	if err != nil {
		return nil, err
	}

	det, err := p.DetectGray(g)
	if err != nil {
		return nil, err
	}
	if scale != 1.0 {
		det.rescale(scale)
	}
	return det, nil
}

// DetectGray runs the detection pipeline on a prepared luminance grid:
// preprocess, compute the gradient field once, search the face scales over
// the full frame, then search the eye scales inside the band derived from
// the located face and pair the candidate peaks. The input grid is never
// mutated.
func (p *Processor) DetectGray(g *Gray) (*Detection, error) {
	if g == nil || g.Width == 0 || g.Height == 0 {
		return nil, errors.New("the luminance grid is empty")
	}
	if len(g.Pix) != g.Width*g.Height {
		return nil, fmt.Errorf("malformed luminance grid: expected %d samples, got %d", g.Width*g.Height, len(g.Pix))
	}
	if p.Models == nil || len(p.Models.Face) == 0 || len(p.Models.Eye) == 0 {
		return nil, errors.New("no shape models configured")
	}
	if p.BlurKernel < 0 || (p.BlurKernel > 0 && p.BlurKernel%2 == 0) {
		return nil, fmt.Errorf("the blur kernel size must be an odd number, got %d", p.BlurKernel)
	}

	g = p.preprocess(g)
	grads := Sobel(g)

	det := &Detection{}
	det.FaceThreshold = p.faceThreshold(grads)

	minScore := p.FaceMinScore
	if minScore == 0 {
		minScore = DefaultFaceMinScore
	}

	// The outer image border rarely holds a centered face; skipping it
	// also skips the most frequent false vote sources.
	region := image.Rect(
		int(float64(g.Width)*0.10), int(float64(g.Height)*0.05),
		int(float64(g.Width)*0.90), int(float64(g.Height)*0.95),
	)

	var (
		found          bool
		best           Peak
		bestRx, bestRy int
	)
	for _, m := range p.Models.Face {
		acc := Vote(grads, m.Table, det.FaceThreshold, region)
		pk, ok := LocalBarycenter(acc, faceBaryRadius)
		if !ok || pk.Score < minScore {
			continue
		}
		if !found || pk.Score > best.Score {
			found = true
			best = pk
			bestRx, bestRy = m.Rx, m.Ry
		}
	}
	if !found {
		return det, nil
	}

	det.FaceOK = true
	det.FaceX = int(math.Round(best.Bx))
	det.FaceY = int(math.Round(best.By))
	det.FaceScore = best.Score
	det.FaceRx, det.FaceRy = bestRx, bestRy

	p.searchEyes(g, det)
	return det, nil
}

// BestCircle runs the multi scale circle search over the whole grid and
// returns the strongest peak together with its winning radius. This is the
// direct eye voting path, useful for probing circular shapes without a
// located face. The boolean reports false when no scale produced a peak or
// the input is unusable.
func (p *Processor) BestCircle(g *Gray) (Peak, int, bool) {
	if g == nil || g.Width == 0 || g.Height == 0 || len(g.Pix) != g.Width*g.Height {
		return Peak{}, 0, false
	}
	if p.Models == nil || len(p.Models.Eye) == 0 {
		return Peak{}, 0, false
	}

	g = p.preprocess(g)
	grads := Sobel(g)
	threshold := p.eyeThreshold(grads)
	full := image.Rect(0, 0, g.Width, g.Height)

	var (
		found bool
		best  Peak
		bestR int
	)
	for _, m := range p.Models.Eye {
		acc := Vote(grads, m.Table, threshold, full)
		pk, ok := LocalBarycenter(acc, circleBaryRadius)
		if !ok {
			continue
		}
		if !found || pk.Score > best.Score {
			found = true
			best = pk
			bestR = m.R
		}
	}
	return best, bestR, found
}

// preprocess applies the configured contrast and smoothing passes, leaving
// the caller's grid untouched.
func (p *Processor) preprocess(g *Gray) *Gray {
	out := g
	if p.HistEq {
		out = out.Equalize()
	}
	if p.AdaptiveHistEq {
		out = out.EqualizeAdaptive()
	}
	if p.BlurKernel >= 3 {
		if out == g {
			out = g.Clone()
		}
		out = Stackblur(out, p.BlurKernel)
	}
	return out
}

func (p *Processor) faceThreshold(gr *Gradients) int {
	if p.FaceEdgeThreshold > 0 {
		return p.FaceEdgeThreshold
	}
	if p.AutoThreshold {
		return CalibrateThreshold(gr, faceQuantile, minFaceThreshold, maxFaceThreshold)
	}
	return DefaultFaceEdgeThreshold
}

func (p *Processor) eyeThreshold(gr *Gradients) int {
	if p.EyeEdgeThreshold > 0 {
		return p.EyeEdgeThreshold
	}
	if p.AutoThreshold {
		return CalibrateThreshold(gr, eyeQuantile, minEyeThreshold, maxEyeThreshold)
	}
	return DefaultEyeEdgeThreshold
}

// searchEyes derives the eye band from the located face, recomputes the
// gradients on the extracted sub grid so no votes leak in from outside the
// band, searches every eye scale and pairs the winning scale's candidates.
func (p *Processor) searchEyes(g *Gray, det *Detection) {
	region := image.Rect(
		det.FaceX-int(math.Round(float64(det.FaceRx)*2.2)),
		det.FaceY-int(math.Round(float64(det.FaceRy)*0.95)),
		det.FaceX+int(math.Round(float64(det.FaceRx)*2.2)),
		det.FaceY-int(math.Round(float64(det.FaceRy)*0.30)),
	).Intersect(image.Rect(0, 0, g.Width, g.Height))

	if region.Dx() < minRegionSize || region.Dy() < minRegionSize {
		return
	}
	det.EyeRegion = region

	sub := g.SubGray(region)
	grads := Sobel(sub)
	det.EyeThreshold = p.eyeThreshold(grads)

	minPeak := p.EyeMinPeak
	if minPeak == 0 {
		minPeak = DefaultEyeMinPeak
	}

	// Each scale is scored by its strongest peak; the winner's candidate
	// list goes to the pair selector.
	var (
		bestPeaks []Peak
		bestR     int
		bestScore int
	)
	full := image.Rect(0, 0, sub.Width, sub.Height)
	for _, m := range p.Models.Eye {
		acc := Vote(grads, m.Table, det.EyeThreshold, full)
		peaks := TopPeaks(acc, eyePeakCount, eyeNMSRadius, eyeBaryRadius, minPeak)
		if len(peaks) == 0 {
			continue
		}
		if bestPeaks == nil || peaks[0].Score > bestScore {
			bestPeaks = peaks
			bestR = m.R
			bestScore = peaks[0].Score
		}
	}
	if bestPeaks == nil {
		return
	}

	faceY := det.FaceY - region.Min.Y
	minDx := utils.Max(25, int(math.Round(float64(det.FaceRx)*0.8)))
	maxDx := utils.Min(g.Width, int(math.Round(float64(det.FaceRx)*2.8)))
	maxDy := utils.Max(12, int(math.Round(float64(det.FaceRy)*0.18)))

	left, right, ok := bestEyePair(bestPeaks, faceY, minDx, maxDx, maxDy)
	if !ok {
		return
	}

	det.EyesOK = true
	det.Eye1X = int(math.Round(left.Bx)) + region.Min.X
	det.Eye1Y = int(math.Round(left.By)) + region.Min.Y
	det.Eye2X = int(math.Round(right.Bx)) + region.Min.X
	det.Eye2Y = int(math.Round(right.By)) + region.Min.Y
	det.EyeScore = left.Score + right.Score
	det.EyeR = bestR
}

// bestEyePair examines every unordered pair of candidates and keeps the
// admissible one with the highest combined score. A pair qualifies when the
// horizontal separation of the rounded barycenters falls inside
// [minDx, maxDx], the vertical separation stays within maxDy and both
// candidates sit above the face's vertical center (faceY, expressed in the
// same local frame as the peaks). Left and right are ordered by horizontal
// position.
func bestEyePair(peaks []Peak, faceY, minDx, maxDx, maxDy int) (left, right Peak, found bool) {
	bestSum := 0

	for i := 0; i < len(peaks); i++ {
		for j := i + 1; j < len(peaks); j++ {
			ax := int(math.Round(peaks[i].Bx))
			ay := int(math.Round(peaks[i].By))
			bx := int(math.Round(peaks[j].Bx))
			by := int(math.Round(peaks[j].By))

			dx := utils.Abs(ax - bx)
			dy := utils.Abs(ay - by)

			if dx < minDx || dx > maxDx || dy > maxDy {
				continue
			}
			if ay >= faceY || by >= faceY {
				continue
			}

			sum := peaks[i].Score + peaks[j].Score
			if !found || sum > bestSum {
				found = true
				bestSum = sum
				if ax <= bx {
					left, right = peaks[i], peaks[j]
				} else {
					left, right = peaks[j], peaks[i]
				}
			}
		}
	}
	return left, right, found
}
