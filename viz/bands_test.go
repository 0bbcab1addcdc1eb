package viz

import "testing"

func TestPercentileBands(t *testing.T) {
	e := nestedEnsemble([]float64{-2, -1, 0, 1, 2}, 6)
	// Depths matching the nested layout: innermost deepest.
	depths := []float64{0.1, 0.3, 0.9, 0.3, 0.1}

	bands, err := PercentileBands(e, depths, []float64{90, 50})
	if err != nil {
		t.Fatalf("PercentileBands failed: %v", err)
	}
	if len(bands) != 2 {
		t.Fatalf("expected 2 bands, got %d", len(bands))
	}
	// Bands come back sorted ascending by percentile.
	if bands[0].Percentile != 50 || bands[1].Percentile != 90 {
		t.Errorf("expected percentiles [50 90], got [%v %v]", bands[0].Percentile, bands[1].Percentile)
	}

	// The 50% band spans the deepest three members (-1, 0, 1).
	for i := 0; i < e.Points; i++ {
		if bands[0].Lower[i] != -1 || bands[0].Upper[i] != 1 {
			t.Fatalf("50%% band at point %d: [%v, %v], expected [-1, 1]", i, bands[0].Lower[i], bands[0].Upper[i])
		}
	}
	// Nesting: outer band contains inner band.
	for i := 0; i < e.Points; i++ {
		if bands[1].Lower[i] > bands[0].Lower[i] || bands[1].Upper[i] < bands[0].Upper[i] {
			t.Fatalf("90%% band does not contain the 50%% band at point %d", i)
		}
	}
}

func TestPercentileBands_Errors(t *testing.T) {
	e := nestedEnsemble([]float64{-1, 0, 1}, 4)
	depths := []float64{0.2, 0.8, 0.2}

	t.Run("percentile out of range", func(t *testing.T) {
		for _, p := range []float64{0, -5, 101} {
			if _, err := PercentileBands(e, depths, []float64{p}); err == nil {
				t.Errorf("expected an error for percentile %v", p)
			}
		}
	})
	t.Run("depth count mismatch", func(t *testing.T) {
		if _, err := PercentileBands(e, []float64{0.5}, []float64{50}); err == nil {
			t.Error("expected an error for mismatched depths")
		}
	})
}

func TestMedianCurve(t *testing.T) {
	e := nestedEnsemble([]float64{-2, 0, 2}, 4)
	depths := []float64{0.1, 0.9, 0.1}

	median, err := MedianCurve(e, depths)
	if err != nil {
		t.Fatalf("MedianCurve failed: %v", err)
	}
	for i, v := range median {
		if v != 0 {
			t.Fatalf("median at point %d is %v, expected 0", i, v)
		}
	}

	// The returned curve is a copy, not a view.
	median[0] = 99
	if e.Members[1][0] == 99 {
		t.Error("MedianCurve must not alias ensemble storage")
	}

	if _, err := MedianCurve(e, []float64{0.1}); err == nil {
		t.Error("expected an error for mismatched depths")
	}
}

func TestContourBands(t *testing.T) {
	// Two members below and two above the isovalue on the left half,
	// all above on the right half.
	members := [][]float64{
		{0, 0, 1, 1},
		{0, 0, 1, 1},
		{1, 1, 1, 1},
		{1, 1, 1, 1},
	}
	e := &Ensemble{Name: "step", Members: members, Points: 4}

	summary := ContourBands(e, 0.5)
	if summary.Isovalue != 0.5 {
		t.Errorf("expected isovalue recorded, got %v", summary.Isovalue)
	}
	wantCoverage := []float64{0.5, 0.5, 1, 1}
	for i, c := range summary.Coverage {
		if c != wantCoverage[i] {
			t.Errorf("coverage at %d = %v, expected %v", i, c, wantCoverage[i])
		}
	}
	// Points 0 and 1 sit in the central disagreement band.
	if len(summary.BandLow) != 2 || summary.BandLow[0] != 0 || summary.BandLow[1] != 1 {
		t.Errorf("expected central band [0 1], got %v", summary.BandLow)
	}
	// Points 2 and 3 show full agreement.
	if len(summary.BandHigh) != 2 || summary.BandHigh[0] != 2 {
		t.Errorf("expected agreement points [2 3], got %v", summary.BandHigh)
	}
	// The coverage jump lands at point 2.
	if len(summary.Crossing) != 1 || summary.Crossing[0] != 2 {
		t.Errorf("expected crossing at point 2, got %v", summary.Crossing)
	}
}
