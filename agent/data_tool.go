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

// GenerateEnsembleTool synthesizes an ensemble dataset and stores it as a
// session artifact.
type GenerateEnsembleTool struct {
	store   *database.EnsembleStore
	logFunc func(string)
}

// GenerateEnsembleInput defines the input parameters for ensemble generation
type GenerateEnsembleInput struct {
	Kind    string   `json:"kind,omitempty"`
	Members int      `json:"members,omitempty"`
	Points  int      `json:"points,omitempty"`
	Noise   *float64 `json:"noise,omitempty"`
	Seed    int64    `json:"seed,omitempty"`
}

// NewGenerateEnsembleTool creates the generator capability.
func NewGenerateEnsembleTool(store *database.EnsembleStore, logFunc func(string)) *GenerateEnsembleTool {
	return &GenerateEnsembleTool{store: store, logFunc: logFunc}
}

// Accepted lists the declared argument names.
func (t *GenerateEnsembleTool) Accepted() []string {
	return []string{"kind", "members", "points", "noise", "seed"}
}

// Info returns the tool information
func (t *GenerateEnsembleTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "generate_synthetic_ensemble",
		Desc: "Generate a synthetic ensemble dataset of member curves. Use this when the user asks to create, simulate, or demo data.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"kind": {
				Type:     schema.String,
				Desc:     "Ensemble kind: 'sine' (default) or 'gaussian'",
				Required: false,
			},
			"members": {
				Type:     schema.Integer,
				Desc:     "Number of member curves (default 20)",
				Required: false,
			},
			"points": {
				Type:     schema.Integer,
				Desc:     "Samples per curve (default 50)",
				Required: false,
			},
			"noise": {
				Type:     schema.Number,
				Desc:     "Additive noise level (default 0.1)",
				Required: false,
			},
			"seed": {
				Type:     schema.Integer,
				Desc:     "Random seed for reproducibility",
				Required: false,
			},
		}),
	}, nil
}

// InvokableRun executes the generator
func (t *GenerateEnsembleTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	t.log(fmt.Sprintf("[DATA-TOOL] generate_synthetic_ensemble args: %s", argumentsInJSON))

	var input GenerateEnsembleInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("failed to parse input: %v", err)
	}
	ensemble, err := viz.GenerateEnsemble(input.Kind, input.Members, input.Points, floatOrDefault(input.Noise, 0.1), input.Seed)
	if err != nil {
		return errorResult(err.Error(), "").marshal(), nil
	}

	id := uuid.NewString()
	if err := t.store.SaveEnsemble(id, ensemble); err != nil {
		return errorResult("failed to store the generated ensemble", err.Error()).marshal(), nil
	}

	result := successResult(fmt.Sprintf("Generated %s with reference %s", ensemble.Name, id))
	result.Artifact = &Artifact{
		ID:      id,
		Kind:    "ensemble",
		Name:    ensemble.Name,
		Members: ensemble.MemberCount(),
		Points:  ensemble.Points,
	}
	return result.marshal(), nil
}

func (t *GenerateEnsembleTool) log(msg string) {
	if t.logFunc != nil {
		t.logFunc(msg)
	}
}

// LoadFileTool loads an ensemble from a CSV file on disk.
type LoadFileTool struct {
	store   *database.EnsembleStore
	logFunc func(string)
}

// LoadFileInput defines the input parameters for file loading
type LoadFileInput struct {
	Path string `json:"path"`
}

// NewLoadFileTool creates the file loader capability.
func NewLoadFileTool(store *database.EnsembleStore, logFunc func(string)) *LoadFileTool {
	return &LoadFileTool{store: store, logFunc: logFunc}
}

// Accepted lists the declared argument names.
func (t *LoadFileTool) Accepted() []string {
	return []string{"path"}
}

// Info returns the tool information
func (t *LoadFileTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "load_file",
		Desc: "Load an ensemble dataset from a CSV file, one member curve per row.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"path": {
				Type:     schema.String,
				Desc:     "Path to the CSV file",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun executes the loader
func (t *LoadFileTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	t.log(fmt.Sprintf("[DATA-TOOL] load_file args: %s", argumentsInJSON))

	var input LoadFileInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("failed to parse input: %v", err)
	}
	if input.Path == "" {
		return errorResult("no file path given", "").marshal(), nil
	}

	ensemble, err := viz.LoadEnsembleCSV(input.Path)
	if err != nil {
		return errorResult(fmt.Sprintf("could not load %s", input.Path), err.Error()).marshal(), nil
	}

	id := uuid.NewString()
	if err := t.store.SaveEnsemble(id, ensemble); err != nil {
		return errorResult("failed to store the loaded ensemble", err.Error()).marshal(), nil
	}

	result := successResult(fmt.Sprintf("Loaded %s (%d members, %d points) with reference %s",
		input.Path, ensemble.MemberCount(), ensemble.Points, id))
	result.Artifact = &Artifact{
		ID:      id,
		Kind:    "ensemble",
		Name:    ensemble.Name,
		Path:    input.Path,
		Members: ensemble.MemberCount(),
		Points:  ensemble.Points,
	}
	return result.marshal(), nil
}

func (t *LoadFileTool) log(msg string) {
	if t.logFunc != nil {
		t.logFunc(msg)
	}
}
