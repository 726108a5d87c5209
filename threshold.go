package ghtface

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Parameters of the adaptive threshold calibration. Fixed cutoffs silently
// produce zero votes on washed out frames and vote storms on harsh ones;
// deriving the cutoff from the gradient magnitude distribution of the
// current image keeps the vote density stable across lighting conditions.
const (
	faceQuantile  = 0.90
	eyeQuantile   = 0.80
	quantileScale = 0.5

	minFaceThreshold = 20
	maxFaceThreshold = 200
	minEyeThreshold  = 10
	maxEyeThreshold  = 120

	// thresholdSamples bounds how many magnitudes the calibration sorts.
	thresholdSamples = 1 << 16
)

// Default edge magnitude cutoffs applied when the adaptive calibration is
// disabled and no explicit override is provided.
const (
	DefaultFaceEdgeThreshold = 140
	DefaultEyeEdgeThreshold  = 75
)

// CalibrateThreshold derives an edge magnitude cutoff from the gradient
// magnitude distribution: the requested quantile, scaled down by a fixed
// fraction and clamped to the [lo, hi] safety range. Large fields are
// subsampled with a constant stride for speed.
func CalibrateThreshold(gr *Gradients, q float64, lo, hi int) int {
	n := gr.Width * gr.Height
	if n == 0 {
		return lo
	}

	stride := n/thresholdSamples + 1
	xs := make([]float64, 0, n/stride+1)
	for i := 0; i < n; i += stride {
		xs = append(xs, float64(gr.Mag[i]))
	}
	sort.Float64s(xs)

	t := int(math.Round(stat.Quantile(q, stat.Empirical, xs, nil) * quantileScale))
	return clampi(t, lo, hi)
}
