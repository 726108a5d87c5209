package ghtface

// Template synthesis and table construction parameters. The margins leave
// enough background around each outline for the gradient operator to settle,
// the edge thresholds keep faint template gradients out of the tables and
// the per bin cap bounds the voting cost.
const (
	faceTemplateMargin = 60
	eyeTemplateMargin  = 40

	faceTemplateEdge = 50
	eyeTemplateEdge  = 40

	maxOffsetsPerBin = 220
)

// FaceModel pairs an ellipse scale with its precomputed lookup table.
type FaceModel struct {
	Rx    int
	Ry    int
	Table *RTable
}

// EyeModel pairs a circle radius with its precomputed lookup table.
type EyeModel struct {
	R     int
	Table *RTable
}

// Models holds the ordered ladders of face and eye shape models spanning the
// supported scale range. Build the collection once at startup and share it
// read only across frames; the detection entry points never mutate it.
type Models struct {
	Face []FaceModel
	Eye  []EyeModel
}

// DefaultFaceScales is the standard ladder of ellipse semi axes (rx, ry),
// small to large.
var DefaultFaceScales = [][2]int{
	{25, 45}, {30, 55}, {35, 65}, {45, 85}, {55, 105}, {65, 125}, {75, 145},
}

// DefaultEyeRadii is the standard ladder of eye circle radii.
var DefaultEyeRadii = []int{6, 8, 10, 12, 14, 16, 18}

// NewModels synthesizes a template for every requested scale and builds the
// per scale lookup tables.
func NewModels(faceScales [][2]int, eyeRadii []int) *Models {
	m := &Models{
		Face: make([]FaceModel, 0, len(faceScales)),
		Eye:  make([]EyeModel, 0, len(eyeRadii)),
	}

	for _, s := range faceScales {
		rx, ry := s[0], s[1]
		tw := 2*rx + faceTemplateMargin
		th := 2*ry + faceTemplateMargin

		t := EllipseTemplate(tw, th, float64(rx), float64(ry))
		m.Face = append(m.Face, FaceModel{
			Rx:    rx,
			Ry:    ry,
			Table: BuildRTable(t, faceTemplateEdge, maxOffsetsPerBin),
		})
	}

	for _, r := range eyeRadii {
		tw := 2*r + eyeTemplateMargin

		t := CircleTemplate(tw, tw, float64(r))
		m.Eye = append(m.Eye, EyeModel{
			R:     r,
			Table: BuildRTable(t, eyeTemplateEdge, maxOffsetsPerBin),
		})
	}
	return m
}

// DefaultModels builds the standard face and eye scale ladders.
func DefaultModels() *Models {
	return NewModels(DefaultFaceScales, DefaultEyeRadii)
}
