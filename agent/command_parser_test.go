package agent

import (
	"reflect"
	"testing"
)

func TestCommandParser_Grammar(t *testing.T) {
	p := NewCommandParser(nil)

	tests := []struct {
		name      string
		utterance string
		parameter string
		value     interface{}
	}{
		{"show median", "show median", "show_median", true},
		{"hide median", "hide median", "show_median", false},
		{"show outliers", "show outliers", "show_outliers", true},
		{"hide outliers", "hide outliers", "show_outliers", false},
		{"median color", "median color red", "median_color", "red"},
		{"outliers color", "outliers color steel-blue", "outliers_color", "steel-blue"},
		{"median width", "median width 2.5", "median_width", 2.5},
		{"outliers alpha", "outliers alpha 0.3", "outliers_alpha", 0.3},
		{"colormap", "colormap viridis", "colormap", "viridis"},
		{"percentile singular", "percentile 90", "percentiles", []float64{90}},
		{"percentiles plural", "percentiles 75", "percentiles", []float64{75}},
		{"isovalue", "isovalue 0.5", "isovalue", 0.5},
		{"scale negative", "scale -1.5", "scale", -1.5},
		{"alpha scientific", "alpha 5e-1", "alpha", 0.5},
		{"method mbd", "method mbd", "method", "mbd"},
		{"method fast", "method fast", "method", "fast"},
		{"inline summary", "inline summary", "report_type", "inline"},
		{"detailed summary", "detailed summary", "report_type", "detailed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := p.Parse(tt.utterance)
			if cmd == nil {
				t.Fatalf("Parse(%q) returned nil, expected %s", tt.utterance, tt.parameter)
			}
			if cmd.Parameter != tt.parameter {
				t.Errorf("expected parameter %q, got %q", tt.parameter, cmd.Parameter)
			}
			if !reflect.DeepEqual(cmd.Value, tt.value) {
				t.Errorf("expected value %v (%T), got %v (%T)", tt.value, tt.value, cmd.Value, cmd.Value)
			}
		})
	}
}

func TestCommandParser_Normalization(t *testing.T) {
	p := NewCommandParser(nil)

	tests := []struct {
		name      string
		utterance string
		parameter string
	}{
		{"uppercase", "SHOW MEDIAN", "show_median"},
		{"mixed case", "Colormap Viridis", "colormap"},
		{"extra whitespace", "  median   width   3  ", "median_width"},
		{"tabs", "method\tbd", "method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := p.Parse(tt.utterance)
			if cmd == nil {
				t.Fatalf("Parse(%q) returned nil, expected %s", tt.utterance, tt.parameter)
			}
			if cmd.Parameter != tt.parameter {
				t.Errorf("expected parameter %q, got %q", tt.parameter, cmd.Parameter)
			}
		})
	}
}

func TestCommandParser_NoMatch(t *testing.T) {
	p := NewCommandParser(nil)

	tests := []struct {
		name      string
		utterance string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"free text", "please plot my ensemble data"},
		{"partial match with prefix", "now show median"},
		{"partial match with suffix", "show median please"},
		{"unknown method", "method quantile"},
		{"unknown report variant", "fancy summary"},
		{"colormap value starting with digit", "colormap 3plasma"},
		{"width without value", "median width"},
		{"two numbers", "scale 1 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if cmd := p.Parse(tt.utterance); cmd != nil {
				t.Errorf("Parse(%q) = %+v, expected nil", tt.utterance, cmd)
			}
		})
	}
}

func TestCommandParser_PercentileCollapsesToSingleBand(t *testing.T) {
	p := NewCommandParser(nil)

	cmd := p.Parse("percentile 42.5")
	if cmd == nil {
		t.Fatal("expected a command")
	}
	bands, ok := cmd.Value.([]float64)
	if !ok {
		t.Fatalf("expected []float64, got %T", cmd.Value)
	}
	if len(bands) != 1 || bands[0] != 42.5 {
		t.Errorf("expected single band [42.5], got %v", bands)
	}
}

func TestFiniteFloat(t *testing.T) {
	tests := []struct {
		token string
		want  float64
		ok    bool
	}{
		{"1.5", 1.5, true},
		{"-0.25", -0.25, true},
		{"1e3", 1000, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := finiteFloat(tt.token)
		if ok != tt.ok || got != tt.want {
			t.Errorf("finiteFloat(%q) = (%v, %v), expected (%v, %v)", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}
