package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"vizchat/database"
	"vizchat/viz"
)

// FunctionalBoxplotTool renders a functional boxplot of an ensemble: nested
// percentile bands around the deepest member, with optional outliers.
type FunctionalBoxplotTool struct {
	store   *database.EnsembleStore
	logFunc func(string)
}

// FunctionalBoxplotInput defines the input parameters for the functional boxplot
type FunctionalBoxplotInput struct {
	DataRef       string    `json:"data_ref"`
	Percentiles   []float64 `json:"percentiles,omitempty"`
	Colormap      string    `json:"colormap,omitempty"`
	Alpha         float64   `json:"alpha,omitempty"`
	Scale         float64   `json:"scale,omitempty"`
	Method        string    `json:"method,omitempty"`
	ShowMedian    *bool     `json:"show_median,omitempty"`
	ShowOutliers  *bool     `json:"show_outliers,omitempty"`
	MedianColor   string    `json:"median_color,omitempty"`
	MedianWidth   float64   `json:"median_width,omitempty"`
	MedianAlpha   float64   `json:"median_alpha,omitempty"`
	OutliersColor string    `json:"outliers_color,omitempty"`
	OutliersWidth float64   `json:"outliers_width,omitempty"`
	OutliersAlpha float64   `json:"outliers_alpha,omitempty"`
}

// NewFunctionalBoxplotTool creates the functional boxplot capability.
func NewFunctionalBoxplotTool(store *database.EnsembleStore, logFunc func(string)) *FunctionalBoxplotTool {
	return &FunctionalBoxplotTool{store: store, logFunc: logFunc}
}

// Accepted lists the declared argument names.
func (t *FunctionalBoxplotTool) Accepted() []string {
	return []string{
		"data_ref", "percentiles", "colormap", "alpha", "scale", "method",
		"show_median", "show_outliers",
		"median_color", "median_width", "median_alpha",
		"outliers_color", "outliers_width", "outliers_alpha",
	}
}

// Info returns the tool information
func (t *FunctionalBoxplotTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "plot_functional_boxplot",
		Desc: "Plot a functional boxplot of an ensemble dataset: nested percentile bands, the band-depth median curve, and outlier members.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"data_ref": {
				Type:     schema.String,
				Desc:     "Dataset reference returned by a data capability",
				Required: true,
			},
			"percentiles": {
				Type:     schema.Array,
				ElemInfo: &schema.ParameterInfo{Type: schema.Number},
				Desc:     "Band percentiles, e.g. [25, 50, 90] (default [25, 50, 75])",
				Required: false,
			},
			"colormap": {
				Type:     schema.String,
				Desc:     "Band colormap: viridis, plasma, magma, blues, greys",
				Required: false,
			},
			"alpha": {
				Type:     schema.Number,
				Desc:     "Band fill opacity in (0, 1] (default 0.6)",
				Required: false,
			},
			"scale": {
				Type:     schema.Number,
				Desc:     "Vertical scale factor (default 1)",
				Required: false,
			},
			"method": {
				Type:     schema.String,
				Desc:     "Band depth method: mbd (default), bd, fast",
				Required: false,
			},
			"show_median": {
				Type:     schema.Boolean,
				Desc:     "Draw the median curve (default true)",
				Required: false,
			},
			"show_outliers": {
				Type:     schema.Boolean,
				Desc:     "Draw outlier members (default true)",
				Required: false,
			},
			"median_color":   {Type: schema.String, Desc: "Median line color", Required: false},
			"median_width":   {Type: schema.Number, Desc: "Median line width", Required: false},
			"median_alpha":   {Type: schema.Number, Desc: "Median line opacity", Required: false},
			"outliers_color": {Type: schema.String, Desc: "Outlier line color", Required: false},
			"outliers_width": {Type: schema.Number, Desc: "Outlier line width", Required: false},
			"outliers_alpha": {Type: schema.Number, Desc: "Outlier line opacity", Required: false},
		}),
	}, nil
}

// InvokableRun executes the functional boxplot
func (t *FunctionalBoxplotTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	t.log(fmt.Sprintf("[VIZ-TOOL] plot_functional_boxplot args: %s", argumentsInJSON))

	var input FunctionalBoxplotInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("failed to parse input: %v", err)
	}
	if input.DataRef == "" {
		return errorResult("no data_ref given; load or generate a dataset first", "").marshal(), nil
	}

	ensemble, err := t.store.LoadEnsemble(input.DataRef)
	if err != nil {
		return errorResult(fmt.Sprintf("dataset %s not found", input.DataRef), err.Error()).marshal(), nil
	}

	if len(input.Percentiles) == 0 {
		input.Percentiles = []float64{25, 50, 75}
	}
	if input.Alpha <= 0 || input.Alpha > 1 {
		input.Alpha = 0.6
	}

	summary, err := viz.BandDepth(ensemble, input.Method)
	if err != nil {
		return errorResult("band depth computation failed", err.Error()).marshal(), nil
	}
	bands, err := viz.PercentileBands(ensemble, summary.Depths, input.Percentiles)
	if err != nil {
		return errorResult("invalid percentile bands", err.Error()).marshal(), nil
	}
	median, err := viz.MedianCurve(ensemble, summary.Depths)
	if err != nil {
		return errorResult("median extraction failed", err.Error()).marshal(), nil
	}

	options := viz.ChartOptions{
		Colormap:      input.Colormap,
		Alpha:         input.Alpha,
		Scale:         input.Scale,
		ShowMedian:    boolOrDefault(input.ShowMedian, true),
		ShowOutliers:  boolOrDefault(input.ShowOutliers, true),
		MedianColor:   input.MedianColor,
		MedianWidth:   input.MedianWidth,
		MedianAlpha:   input.MedianAlpha,
		OutliersColor: input.OutliersColor,
		OutliersWidth: input.OutliersWidth,
		OutliersAlpha: input.OutliersAlpha,
	}
	spec, err := viz.FunctionalBoxplotChart(ensemble, bands, median, summary.OutlierIndices, options)
	if err != nil {
		return errorResult("chart construction failed", err.Error()).marshal(), nil
	}

	chartID := uuid.NewString()
	if err := t.store.SaveChart(chartID, "functional boxplot", spec); err != nil {
		return errorResult("failed to store the chart", err.Error()).marshal(), nil
	}

	result := successResult(fmt.Sprintf("Rendered functional boxplot of %s (%d bands, %d outliers)",
		input.DataRef, len(bands), len(summary.OutlierIndices)))
	result.Artifact = &Artifact{ID: chartID, Kind: "chart", Name: "functional boxplot"}
	result.Parameters = echoParameters(argumentsInJSON)
	return result.marshal(), nil
}

func (t *FunctionalBoxplotTool) log(msg string) {
	if t.logFunc != nil {
		t.logFunc(msg)
	}
}

// ContourBoxplotTool renders isovalue agreement across an ensemble.
type ContourBoxplotTool struct {
	store   *database.EnsembleStore
	logFunc func(string)
}

// ContourBoxplotInput defines the input parameters for the contour boxplot
type ContourBoxplotInput struct {
	DataRef      string  `json:"data_ref"`
	Isovalue     float64 `json:"isovalue"`
	BandColormap string  `json:"band_colormap,omitempty"`
	Alpha        float64 `json:"alpha,omitempty"`
	Scale        float64 `json:"scale,omitempty"`
	Method       string  `json:"method,omitempty"`
	ShowMedian   *bool   `json:"show_median,omitempty"`
	MedianColor  string  `json:"median_color,omitempty"`
}

// NewContourBoxplotTool creates the contour boxplot capability.
func NewContourBoxplotTool(store *database.EnsembleStore, logFunc func(string)) *ContourBoxplotTool {
	return &ContourBoxplotTool{store: store, logFunc: logFunc}
}

// Accepted lists the declared argument names.
func (t *ContourBoxplotTool) Accepted() []string {
	return []string{"data_ref", "isovalue", "band_colormap", "alpha", "scale", "method", "show_median", "median_color"}
}

// Info returns the tool information
func (t *ContourBoxplotTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "plot_contour_boxplot",
		Desc: "Plot a contour boxplot: how strongly the ensemble members agree on an isovalue crossing.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"data_ref": {
				Type:     schema.String,
				Desc:     "Dataset reference returned by a data capability",
				Required: true,
			},
			"isovalue": {
				Type:     schema.Number,
				Desc:     "Isovalue to extract contour agreement for",
				Required: true,
			},
			"band_colormap": {
				Type:     schema.String,
				Desc:     "Band colormap: viridis, plasma, magma, blues, greys",
				Required: false,
			},
			"alpha": {
				Type:     schema.Number,
				Desc:     "Band fill opacity in (0, 1] (default 0.6)",
				Required: false,
			},
			"scale": {
				Type:     schema.Number,
				Desc:     "Vertical scale factor (default 1)",
				Required: false,
			},
			"method": {
				Type:     schema.String,
				Desc:     "Band depth method: mbd (default), bd, fast",
				Required: false,
			},
			"show_median":  {Type: schema.Boolean, Desc: "Draw the isovalue reference line (default true)", Required: false},
			"median_color": {Type: schema.String, Desc: "Reference line color", Required: false},
		}),
	}, nil
}

// InvokableRun executes the contour boxplot
func (t *ContourBoxplotTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	t.log(fmt.Sprintf("[VIZ-TOOL] plot_contour_boxplot args: %s", argumentsInJSON))

	var input ContourBoxplotInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("failed to parse input: %v", err)
	}
	if input.DataRef == "" {
		return errorResult("no data_ref given; load or generate a dataset first", "").marshal(), nil
	}

	ensemble, err := t.store.LoadEnsemble(input.DataRef)
	if err != nil {
		return errorResult(fmt.Sprintf("dataset %s not found", input.DataRef), err.Error()).marshal(), nil
	}
	if input.Alpha <= 0 || input.Alpha > 1 {
		input.Alpha = 0.6
	}

	summary := viz.ContourBands(ensemble, input.Isovalue)
	options := viz.ChartOptions{
		Colormap:    input.BandColormap,
		Alpha:       input.Alpha,
		Scale:       input.Scale,
		ShowMedian:  boolOrDefault(input.ShowMedian, true),
		MedianColor: input.MedianColor,
	}
	spec, err := viz.ContourBoxplotChart(ensemble, summary, options)
	if err != nil {
		return errorResult("chart construction failed", err.Error()).marshal(), nil
	}

	chartID := uuid.NewString()
	if err := t.store.SaveChart(chartID, "contour boxplot", spec); err != nil {
		return errorResult("failed to store the chart", err.Error()).marshal(), nil
	}

	result := successResult(fmt.Sprintf("Rendered contour boxplot of %s at isovalue %.3f (%d crossing points)",
		input.DataRef, input.Isovalue, len(summary.Crossing)))
	result.Artifact = &Artifact{ID: chartID, Kind: "chart", Name: "contour boxplot"}
	result.Parameters = echoParameters(argumentsInJSON)
	return result.marshal(), nil
}

func (t *ContourBoxplotTool) log(msg string) {
	if t.logFunc != nil {
		t.logFunc(msg)
	}
}

// echoParameters returns the raw argument map so the core can record the
// exact invocation for the hybrid path.
func echoParameters(argumentsInJSON string) map[string]interface{} {
	params := make(map[string]interface{})
	_ = json.Unmarshal([]byte(argumentsInJSON), &params)
	return params
}

func boolOrDefault(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func floatOrDefault(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
