package ghtface

// Offset is a template relative displacement pointing from an edge pixel to
// the template's reference point.
type Offset struct {
	Dx int
	Dy int
}

// RTable maps gradient orientation bins to the list of offsets which reach
// the shape center from an edge pixel of that orientation. A table is built
// once per model scale and is read only afterwards, so it can be shared
// across concurrently processed frames without locking.
type RTable [360][]Offset

// BuildRTable derives the lookup table from a synthesized shape template.
// Template pixels whose gradient magnitude falls below minMag contribute no
// entry and each orientation bin keeps at most maxPerBin offsets; excess
// entries are discarded. The reference point is the template's designed
// center, not a measured centroid.
func BuildRTable(t *Gray, minMag, maxPerBin int) *RTable {
	rt := &RTable{}
	tg := Sobel(t)

	cx := t.Width / 2
	cy := t.Height / 2

	for y := 1; y < t.Height-1; y++ {
		for x := 1; x < t.Width-1; x++ {
			idx := y*t.Width + x
			if int(tg.Mag[idx]) < minMag {
				continue
			}
			if tg.Gx[idx] == 0 && tg.Gy[idx] == 0 {
				continue
			}

			bin := tg.Theta[idx]
			if len(rt[bin]) < maxPerBin {
				rt[bin] = append(rt[bin], Offset{Dx: cx - x, Dy: cy - y})
			}
		}
	}
	return rt
}

// Len returns the total number of offsets stored across all bins.
func (rt *RTable) Len() int {
	var n int
	for _, offs := range rt {
		n += len(offs)
	}
	return n
}
