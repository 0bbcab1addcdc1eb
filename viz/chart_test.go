package viz

import (
	"encoding/json"
	"testing"
)

func TestPaletteFor(t *testing.T) {
	if got := PaletteFor("plasma"); got[0] != "#0d0887" {
		t.Errorf("unexpected plasma palette: %v", got)
	}
	if got := PaletteFor("no-such-map"); got[0] != palettes["viridis"][0] {
		t.Errorf("expected viridis fallback, got %v", got)
	}
}

func TestKnownColormap(t *testing.T) {
	for _, name := range []string{"viridis", "plasma", "magma", "blues", "greys"} {
		if !KnownColormap(name) {
			t.Errorf("expected %q to be known", name)
		}
	}
	if KnownColormap("rainbow") {
		t.Error("did not expect rainbow to be known")
	}
}

func decodeChart(t *testing.T, spec string) map[string]interface{} {
	t.Helper()
	var option map[string]interface{}
	if err := json.Unmarshal([]byte(spec), &option); err != nil {
		t.Fatalf("chart spec is not valid JSON: %v", err)
	}
	return option
}

func TestFunctionalBoxplotChart(t *testing.T) {
	e := nestedEnsemble([]float64{-1, 0, 1}, 5)
	depths := []float64{0.2, 0.8, 0.2}
	bands, err := PercentileBands(e, depths, []float64{50, 90})
	if err != nil {
		t.Fatalf("PercentileBands failed: %v", err)
	}
	median, err := MedianCurve(e, depths)
	if err != nil {
		t.Fatalf("MedianCurve failed: %v", err)
	}

	spec, err := FunctionalBoxplotChart(e, bands, median, []int{0}, ChartOptions{
		Colormap:     "plasma",
		Alpha:        0.5,
		ShowMedian:   true,
		ShowOutliers: true,
	})
	if err != nil {
		t.Fatalf("FunctionalBoxplotChart failed: %v", err)
	}

	option := decodeChart(t, spec)
	series, ok := option["series"].([]interface{})
	if !ok {
		t.Fatal("expected a series array")
	}
	// Two bands, one median, one outlier.
	if len(series) != 4 {
		t.Errorf("expected 4 series, got %d", len(series))
	}
	names := map[string]bool{}
	for _, raw := range series {
		s := raw.(map[string]interface{})
		names[s["name"].(string)] = true
	}
	for _, want := range []string{"band 50%", "band 90%", "median", "outlier 0"} {
		if !names[want] {
			t.Errorf("missing series %q in %v", want, names)
		}
	}
}

func TestFunctionalBoxplotChart_HiddenLayers(t *testing.T) {
	e := nestedEnsemble([]float64{-1, 0, 1}, 5)
	depths := []float64{0.2, 0.8, 0.2}
	bands, _ := PercentileBands(e, depths, []float64{50})

	spec, err := FunctionalBoxplotChart(e, bands, nil, []int{0}, ChartOptions{})
	if err != nil {
		t.Fatalf("FunctionalBoxplotChart failed: %v", err)
	}
	option := decodeChart(t, spec)
	series := option["series"].([]interface{})
	if len(series) != 1 {
		t.Errorf("expected only the band series, got %d", len(series))
	}
}

func TestContourBoxplotChart(t *testing.T) {
	e := nestedEnsemble([]float64{-1, 0, 1}, 5)
	summary := ContourBands(e, 0.5)

	spec, err := ContourBoxplotChart(e, summary, ChartOptions{Colormap: "blues"})
	if err != nil {
		t.Fatalf("ContourBoxplotChart failed: %v", err)
	}
	option := decodeChart(t, spec)
	if _, ok := option["series"]; !ok {
		t.Error("expected a series entry in the contour chart")
	}
}
