package viz

import (
	"encoding/json"
	"fmt"
)

// ChartOptions carries the presentation parameters shared by the chart builders.
type ChartOptions struct {
	Colormap      string
	Alpha         float64
	Scale         float64
	ShowMedian    bool
	ShowOutliers  bool
	MedianColor   string
	MedianWidth   float64
	MedianAlpha   float64
	OutliersColor string
	OutliersWidth float64
	OutliersAlpha float64
}

// palettes maps colormap names to band fill colors, widest band first.
var palettes = map[string][]string{
	"viridis": {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
	"plasma":  {"#0d0887", "#7e03a8", "#cc4778", "#f89540", "#f0f921"},
	"magma":   {"#000004", "#51127c", "#b73779", "#fc8961", "#fcfdbf"},
	"blues":   {"#f7fbff", "#c6dbef", "#6baed6", "#2171b5", "#08306b"},
	"greys":   {"#f7f7f7", "#cccccc", "#969696", "#525252", "#000000"},
}

// PaletteFor returns the fill colors for a colormap name, falling back to
// viridis for unknown names.
func PaletteFor(name string) []string {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes["viridis"]
}

// KnownColormap reports whether name is a registered colormap.
func KnownColormap(name string) bool {
	_, ok := palettes[name]
	return ok
}

// FunctionalBoxplotChart builds an ECharts-style option for a functional
// boxplot: nested percentile bands, the median curve, and outlier curves.
func FunctionalBoxplotChart(e *Ensemble, bands []Band, median []float64, outliers []int, opts ChartOptions) (string, error) {
	palette := PaletteFor(opts.Colormap)
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	xAxis := make([]float64, e.Points)
	for i := range xAxis {
		xAxis[i] = float64(i) / float64(e.Points-1)
	}

	series := make([]map[string]interface{}, 0, len(bands)*2+1+len(outliers))
	for i := len(bands) - 1; i >= 0; i-- {
		band := bands[i]
		color := palette[i%len(palette)]
		series = append(series, map[string]interface{}{
			"name":      fmt.Sprintf("band %.0f%%", band.Percentile),
			"type":      "line",
			"data":      scaled(band.Upper, scale),
			"lineStyle": map[string]interface{}{"width": 0},
			"areaStyle": map[string]interface{}{"color": color, "opacity": opts.Alpha},
			"stackData": scaled(band.Lower, scale),
		})
	}

	if opts.ShowMedian && median != nil {
		width := opts.MedianWidth
		if width <= 0 {
			width = 2
		}
		series = append(series, map[string]interface{}{
			"name": "median",
			"type": "line",
			"data": scaled(median, scale),
			"lineStyle": map[string]interface{}{
				"color":   defaultStr(opts.MedianColor, "black"),
				"width":   width,
				"opacity": defaultFloat(opts.MedianAlpha, 1),
			},
		})
	}

	if opts.ShowOutliers {
		width := opts.OutliersWidth
		if width <= 0 {
			width = 1
		}
		for _, idx := range outliers {
			if idx < 0 || idx >= e.MemberCount() {
				continue
			}
			series = append(series, map[string]interface{}{
				"name": fmt.Sprintf("outlier %d", idx),
				"type": "line",
				"data": scaled(e.Members[idx], scale),
				"lineStyle": map[string]interface{}{
					"color":   defaultStr(opts.OutliersColor, "red"),
					"width":   width,
					"opacity": defaultFloat(opts.OutliersAlpha, 0.6),
					"type":    "dashed",
				},
			})
		}
	}

	option := map[string]interface{}{
		"title":  map[string]interface{}{"text": "Functional Boxplot", "subtext": e.Name},
		"xAxis":  map[string]interface{}{"type": "category", "data": xAxis},
		"yAxis":  map[string]interface{}{"type": "value"},
		"series": series,
	}
	out, err := json.Marshal(option)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chart option: %v", err)
	}
	return string(out), nil
}

// ContourBoxplotChart builds an ECharts-style option for an isovalue
// agreement plot.
func ContourBoxplotChart(e *Ensemble, summary *ContourBandSummary, opts ChartOptions) (string, error) {
	palette := PaletteFor(opts.Colormap)
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	series := []map[string]interface{}{
		{
			"name":      "coverage",
			"type":      "line",
			"data":      scaled(summary.Coverage, scale),
			"areaStyle": map[string]interface{}{"color": palette[len(palette)/2], "opacity": opts.Alpha},
		},
	}
	if opts.ShowMedian {
		series = append(series, map[string]interface{}{
			"name": "isovalue",
			"type": "line",
			"data": constant(0.5, e.Points),
			"lineStyle": map[string]interface{}{
				"color": defaultStr(opts.MedianColor, "black"),
				"type":  "dotted",
			},
		})
	}

	option := map[string]interface{}{
		"title": map[string]interface{}{
			"text":    "Contour Boxplot",
			"subtext": fmt.Sprintf("%s @ isovalue %.3f", e.Name, summary.Isovalue),
		},
		"xAxis":  map[string]interface{}{"type": "category"},
		"yAxis":  map[string]interface{}{"type": "value", "min": 0, "max": 1},
		"series": series,
	}
	out, err := json.Marshal(option)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chart option: %v", err)
	}
	return string(out), nil
}

func scaled(values []float64, scale float64) []float64 {
	if scale == 1 {
		return append([]float64(nil), values...)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * scale
	}
	return out
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func defaultFloat(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}
