package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"vizchat/database"
	"vizchat/viz"
)

// BandDepthTool computes per-member band depth statistics for an ensemble.
type BandDepthTool struct {
	store   *database.EnsembleStore
	logFunc func(string)
}

// BandDepthInput defines the input parameters for the statistics capability
type BandDepthInput struct {
	DataRef string `json:"data_ref"`
	Method  string `json:"method,omitempty"`
}

// NewBandDepthTool creates the statistics capability.
func NewBandDepthTool(store *database.EnsembleStore, logFunc func(string)) *BandDepthTool {
	return &BandDepthTool{store: store, logFunc: logFunc}
}

// Accepted lists the declared argument names.
func (t *BandDepthTool) Accepted() []string {
	return []string{"data_ref", "method"}
}

// Info returns the tool information
func (t *BandDepthTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "compute_band_depth",
		Desc: "Compute band depth statistics for an ensemble: per-member depths, the median member, central members, and outliers.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"data_ref": {
				Type:     schema.String,
				Desc:     "Dataset reference returned by a data capability",
				Required: true,
			},
			"method": {
				Type:     schema.String,
				Desc:     "Band depth method: mbd (default), bd, fast",
				Required: false,
			},
		}),
	}, nil
}

// InvokableRun executes the statistics capability
func (t *BandDepthTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	t.log(fmt.Sprintf("[STATS-TOOL] compute_band_depth args: %s", argumentsInJSON))

	var input BandDepthInput
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

	summary, err := viz.BandDepth(ensemble, input.Method)
	if err != nil {
		return errorResult("band depth computation failed", err.Error()).marshal(), nil
	}

	result := successResult(fmt.Sprintf(
		"Computed %s depth for %d members: median member %d, %d outliers, mean depth %.4f",
		summary.Method, ensemble.MemberCount(), summary.MedianIndex, len(summary.OutlierIndices), summary.MeanDepth))
	result.Statistics = summary
	return result.marshal(), nil
}

func (t *BandDepthTool) log(msg string) {
	if t.logFunc != nil {
		t.logFunc(msg)
	}
}
