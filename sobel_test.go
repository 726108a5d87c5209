package ghtface

import "testing"

func TestSobel_FlatImageShouldHaveNoResponse(t *testing.T) {
	gr := Sobel(NewGray(8, 8, 120))
	for i := range gr.Mag {
		if gr.Mag[i] != 0 || gr.Gx[i] != 0 || gr.Gy[i] != 0 {
			t.Fatalf("Expected a zero gradient field on a flat image, got response at index %d", i)
		}
	}
}

func TestSobel_VerticalStepEdge(t *testing.T) {
	g := NewGray(8, 8, 0)
	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			g.Set(x, y, 255)
		}
	}

	gr := Sobel(g)
	idx := 3*8 + 3
	if gr.Gx[idx] != 1020 {
		t.Errorf("Expected Gx=1020 on the step edge, got %d", gr.Gx[idx])
	}
	if gr.Gy[idx] != 0 {
		t.Errorf("Expected Gy=0 on a vertical edge, got %d", gr.Gy[idx])
	}
	if gr.Mag[idx] != 1020 {
		t.Errorf("Expected magnitude 1020, got %d", gr.Mag[idx])
	}
	if gr.Theta[idx] != 0 {
		t.Errorf("Expected orientation bin 0, got %d", gr.Theta[idx])
	}
}

func TestSobel_HorizontalStepEdge(t *testing.T) {
	g := NewGray(8, 8, 0)
	for y := 4; y < 8; y++ {
		for x := 0; x < 8; x++ {
			g.Set(x, y, 255)
		}
	}

	gr := Sobel(g)
	idx := 3*8 + 3
	if gr.Gy[idx] != 1020 || gr.Gx[idx] != 0 {
		t.Errorf("Expected (Gx,Gy)=(0,1020), got (%d,%d)", gr.Gx[idx], gr.Gy[idx])
	}
	if gr.Theta[idx] != 90 {
		t.Errorf("Expected orientation bin 90, got %d", gr.Theta[idx])
	}
}

func TestSobel_DegBinShouldCoverFullCircle(t *testing.T) {
	cases := []struct {
		gy, gx float64
		want   int16
	}{
		{0, 1, 0},
		{1, 0, 90},
		{0, -1, 180},
		{-1, 0, 270},
		{-1, 1, 315},
	}
	for _, c := range cases {
		if got := degBin(c.gy, c.gx); got != c.want {
			t.Errorf("degBin(%v,%v): expected %d, got %d", c.gy, c.gx, c.want, got)
		}
	}
}
