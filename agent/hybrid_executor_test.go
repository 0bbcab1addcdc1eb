package agent

import (
	"context"
	"encoding/json"
	"testing"
)

func vizCapabilities(t *testing.T, stubs ...Capability) *Capabilities {
	t.Helper()
	return &Capabilities{Visualization: mustRegistry(t, ClassVisualization, stubs...)}
}

func TestHybridExecutor_UpdateParameter(t *testing.T) {
	var lastArgs map[string]interface{}
	stub := &stubCapability{
		name:     "plot_functional_boxplot",
		accepted: []string{"data_ref", "colormap", "alpha", "percentiles"},
		run: func(ctx context.Context, argsJSON string) (string, error) {
			lastArgs = map[string]interface{}{}
			if err := json.Unmarshal([]byte(argsJSON), &lastArgs); err != nil {
				t.Fatalf("stub got invalid args: %v", err)
			}
			result := successResult("Rendered functional boxplot")
			result.Artifact = &Artifact{ID: "chart-2", Kind: "chart", Name: "boxplot"}
			return result.marshal(), nil
		},
	}
	caps := vizCapabilities(t, stub)
	h := NewHybridExecutor(caps, nil)

	st := NewConversationState()
	st.LastVizInvocation = &CapabilityInvocation{
		Capability: "plot_functional_boxplot",
		Args:       map[string]interface{}{"data_ref": "ens-1", "colormap": "viridis", "alpha": 0.6},
		DataRef:    "ens-1",
	}

	reply, ok := h.Execute(context.Background(), &Command{Parameter: "colormap", Value: "plasma"}, st)
	if !ok {
		t.Fatal("expected hybrid path to accept the command")
	}
	if reply != "Rendered functional boxplot" {
		t.Errorf("unexpected reply %q", reply)
	}
	if lastArgs["colormap"] != "plasma" {
		t.Errorf("expected colormap plasma, got %v", lastArgs["colormap"])
	}
	if lastArgs["data_ref"] != "ens-1" {
		t.Errorf("expected data_ref carried over, got %v", lastArgs["data_ref"])
	}
	if st.LastVizInvocation.Args["colormap"] != "plasma" {
		t.Errorf("expected state updated to plasma, got %v", st.LastVizInvocation.Args["colormap"])
	}
	if len(st.Artifacts) != 1 || st.Artifacts[0].ID != "chart-2" {
		t.Errorf("expected new chart artifact recorded, got %v", st.Artifacts)
	}
}

func TestHybridExecutor_ColormapAliasTargetsContourName(t *testing.T) {
	var lastArgs map[string]interface{}
	stub := &stubCapability{
		name:     "plot_contour_boxplot",
		accepted: []string{"data_ref", "isovalue", "band_colormap"},
		run: func(ctx context.Context, argsJSON string) (string, error) {
			lastArgs = map[string]interface{}{}
			json.Unmarshal([]byte(argsJSON), &lastArgs)
			return successResult("Rendered contour boxplot").marshal(), nil
		},
	}
	h := NewHybridExecutor(vizCapabilities(t, stub), nil)

	st := NewConversationState()
	st.LastVizInvocation = &CapabilityInvocation{
		Capability: "plot_contour_boxplot",
		Args:       map[string]interface{}{"data_ref": "ens-1", "isovalue": 0.5},
		DataRef:    "ens-1",
	}

	_, ok := h.Execute(context.Background(), &Command{Parameter: "colormap", Value: "magma"}, st)
	if !ok {
		t.Fatal("expected hybrid path to accept via the band_colormap alias")
	}
	if lastArgs["band_colormap"] != "magma" {
		t.Errorf("expected band_colormap magma, got %v", lastArgs["band_colormap"])
	}
	if _, present := lastArgs["colormap"]; present {
		t.Error("colormap must not be injected when the schema only declares band_colormap")
	}
}

func TestHybridExecutor_DeclineCases(t *testing.T) {
	stub := &stubCapability{
		name:     "plot_functional_boxplot",
		accepted: []string{"data_ref", "colormap"},
	}
	h := NewHybridExecutor(vizCapabilities(t, stub), nil)

	t.Run("no prior visualization", func(t *testing.T) {
		st := NewConversationState()
		if _, ok := h.Execute(context.Background(), &Command{Parameter: "colormap", Value: "plasma"}, st); ok {
			t.Error("expected decline without a prior visualization")
		}
		if len(stub.calls) != 0 {
			t.Error("declined command must not invoke the capability")
		}
	})

	t.Run("parameter not accepted", func(t *testing.T) {
		st := NewConversationState()
		st.LastVizInvocation = &CapabilityInvocation{
			Capability: "plot_functional_boxplot",
			Args:       map[string]interface{}{"data_ref": "ens-1"},
		}
		if _, ok := h.Execute(context.Background(), &Command{Parameter: "isovalue", Value: 0.4}, st); ok {
			t.Error("expected decline for an undeclared parameter")
		}
		if len(stub.calls) != 0 {
			t.Error("declined command must not invoke the capability")
		}
	})

	t.Run("unknown capability in state", func(t *testing.T) {
		st := NewConversationState()
		st.LastVizInvocation = &CapabilityInvocation{Capability: "plot_gone", Args: map[string]interface{}{}}
		if _, ok := h.Execute(context.Background(), &Command{Parameter: "colormap", Value: "plasma"}, st); ok {
			t.Error("expected decline for an unregistered capability")
		}
	})
}

func TestHybridExecutor_PercentileUpdateReplacesBandSet(t *testing.T) {
	parser := NewCommandParser(nil)
	var lastArgs map[string]interface{}
	stub := &stubCapability{
		name:     "plot_functional_boxplot",
		accepted: []string{"data_ref", "percentiles", "colormap"},
		run: func(ctx context.Context, argsJSON string) (string, error) {
			lastArgs = map[string]interface{}{}
			if err := json.Unmarshal([]byte(argsJSON), &lastArgs); err != nil {
				t.Fatalf("stub got invalid args: %v", err)
			}
			return successResult("rendered").marshal(), nil
		},
	}
	h := NewHybridExecutor(vizCapabilities(t, stub), nil)

	t.Run("no prior invocation declines", func(t *testing.T) {
		st := NewConversationState()
		cmd := parser.Parse("percentile 75")
		if cmd == nil {
			t.Fatal("expected percentile command to parse")
		}
		if _, ok := h.Execute(context.Background(), cmd, st); ok {
			t.Error("expected decline without a prior visualization")
		}
	})

	t.Run("prior multi-band set collapses to one band", func(t *testing.T) {
		st := NewConversationState()
		st.LastVizInvocation = &CapabilityInvocation{
			Capability: "plot_functional_boxplot",
			Args: map[string]interface{}{
				"data_ref":    "ens-1",
				"percentiles": []interface{}{25.0, 50.0, 90.0, 100.0},
			},
			DataRef: "ens-1",
		}

		cmd := parser.Parse("percentile 90")
		if _, ok := h.Execute(context.Background(), cmd, st); !ok {
			t.Fatal("expected hybrid path to accept the percentile update")
		}

		bands, ok := lastArgs["percentiles"].([]interface{})
		if !ok {
			t.Fatalf("expected a percentile list, got %T", lastArgs["percentiles"])
		}
		if len(bands) != 1 || bands[0] != 90.0 {
			t.Errorf("expected the previous band set replaced by [90], got %v", bands)
		}
		if lastArgs["data_ref"] != "ens-1" {
			t.Errorf("expected data_ref carried over, got %v", lastArgs["data_ref"])
		}
	})
}

func TestHybridExecutor_FailedInvocationLeavesStateUntouched(t *testing.T) {
	stub := &stubCapability{
		name:     "plot_functional_boxplot",
		accepted: []string{"data_ref", "colormap"},
		run: func(ctx context.Context, argsJSON string) (string, error) {
			return errorResult("dataset vanished", "").marshal(), nil
		},
	}
	h := NewHybridExecutor(vizCapabilities(t, stub), nil)

	st := NewConversationState()
	original := &CapabilityInvocation{
		Capability: "plot_functional_boxplot",
		Args:       map[string]interface{}{"data_ref": "ens-1", "colormap": "viridis"},
	}
	st.LastVizInvocation = original

	if _, ok := h.Execute(context.Background(), &Command{Parameter: "colormap", Value: "plasma"}, st); ok {
		t.Fatal("expected decline on capability failure")
	}
	if st.LastVizInvocation != original {
		t.Error("failed invocation must not replace the last invocation record")
	}
	if st.LastVizInvocation.Args["colormap"] != "viridis" {
		t.Errorf("expected original colormap kept, got %v", st.LastVizInvocation.Args["colormap"])
	}
	if len(st.Artifacts) != 0 {
		t.Error("failed invocation must not record artifacts")
	}
}

func TestHybridExecutor_ReportRetrieval(t *testing.T) {
	reportStub := &stubCapability{name: "generate_report", accepted: []string{"data_ref"}}
	caps := &Capabilities{Report: mustRegistry(t, ClassReport, reportStub)}
	h := NewHybridExecutor(caps, nil)

	t.Run("retrieves existing variant", func(t *testing.T) {
		st := NewConversationState()
		st.Reports = map[string]string{"inline": "short", "quick": "medium", "detailed": "long"}

		reply, ok := h.Execute(context.Background(), &Command{Parameter: "report_type", Value: "quick"}, st)
		if !ok {
			t.Fatal("expected retrieval to succeed")
		}
		if reply != "medium" {
			t.Errorf("expected the stored quick report verbatim, got %q", reply)
		}
		if len(reportStub.calls) != 0 {
			t.Error("retrieval must never re-invoke the report capability")
		}
	})

	t.Run("declines when no reports exist", func(t *testing.T) {
		st := NewConversationState()
		if _, ok := h.Execute(context.Background(), &Command{Parameter: "report_type", Value: "quick"}, st); ok {
			t.Error("expected decline with no generated reports")
		}
	})

	t.Run("declines when a variant is missing", func(t *testing.T) {
		st := NewConversationState()
		st.Reports = map[string]string{"inline": "short", "quick": "medium"}
		if _, ok := h.Execute(context.Background(), &Command{Parameter: "report_type", Value: "inline"}, st); ok {
			t.Error("expected decline when the variant set is incomplete")
		}
	})
}
