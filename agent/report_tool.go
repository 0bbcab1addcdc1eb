package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"vizchat/export"
	"vizchat/viz"
)

// ReportSnapshot is the read-only slice of session state the report
// capability builds its text from.
type ReportSnapshot struct {
	Data          *Artifact
	Statistics    *viz.DepthSummary
	LastViz       *CapabilityInvocation
	ArtifactCount int
}

// ReportTool generates the three report variants from a session snapshot.
type ReportTool struct {
	snapshot func() ReportSnapshot
	logFunc  func(string)
}

// NewReportTool creates the report capability. The snapshot provider is
// injected so the capability never reaches for ambient session state.
func NewReportTool(snapshot func() ReportSnapshot, logFunc func(string)) *ReportTool {
	return &ReportTool{snapshot: snapshot, logFunc: logFunc}
}

// Accepted lists the declared argument names.
func (t *ReportTool) Accepted() []string {
	return []string{"data_ref"}
}

// Info returns the tool information
func (t *ReportTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "generate_report",
		Desc: "Generate an analysis report of the current session in three variants: inline, quick, and detailed.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"data_ref": {
				Type:     schema.String,
				Desc:     "Optional dataset reference the report should focus on",
				Required: false,
			},
		}),
	}, nil
}

// InvokableRun executes the report generator
func (t *ReportTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	t.log(fmt.Sprintf("[REPORT-TOOL] generate_report args: %s", argumentsInJSON))

	snap := t.snapshot()
	if snap.Data == nil {
		return errorResult("nothing to report on; load or generate a dataset first", "").marshal(), nil
	}

	reports := map[string]string{
		"inline":   t.inlineReport(snap),
		"quick":    t.quickReport(snap),
		"detailed": t.detailedReport(snap),
	}

	result := successResult("Generated inline, quick, and detailed reports")
	result.Reports = reports
	return result.marshal(), nil
}

func (t *ReportTool) inlineReport(snap ReportSnapshot) string {
	line := fmt.Sprintf("Dataset %s: %d members x %d points.", snap.Data.Name, snap.Data.Members, snap.Data.Points)
	if snap.Statistics != nil {
		line += fmt.Sprintf(" Median member %d, %d outliers (%s).",
			snap.Statistics.MedianIndex, len(snap.Statistics.OutlierIndices), snap.Statistics.Method)
	}
	return line
}

func (t *ReportTool) quickReport(snap ReportSnapshot) string {
	var sb strings.Builder
	sb.WriteString("Session summary\n")
	sb.WriteString(fmt.Sprintf("- Dataset: %s (%d members, %d points)\n", snap.Data.Name, snap.Data.Members, snap.Data.Points))
	if snap.Statistics != nil {
		sb.WriteString(fmt.Sprintf("- Band depth (%s): median member %d, mean depth %.4f\n",
			snap.Statistics.Method, snap.Statistics.MedianIndex, snap.Statistics.MeanDepth))
		sb.WriteString(fmt.Sprintf("- Outliers: %d\n", len(snap.Statistics.OutlierIndices)))
	}
	if snap.LastViz != nil {
		sb.WriteString(fmt.Sprintf("- Last visualization: %s\n", snap.LastViz.Capability))
	}
	sb.WriteString(fmt.Sprintf("- Artifacts created: %d\n", snap.ArtifactCount))
	return sb.String()
}

func (t *ReportTool) detailedReport(snap ReportSnapshot) string {
	var sb strings.Builder
	sb.WriteString("Ensemble analysis report\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	sb.WriteString("Dataset\n")
	sb.WriteString(fmt.Sprintf("  Name: %s\n  Reference: %s\n  Members: %d\n  Points per member: %d\n",
		snap.Data.Name, snap.Data.ID, snap.Data.Members, snap.Data.Points))
	if snap.Data.Path != "" {
		sb.WriteString(fmt.Sprintf("  Source file: %s\n", snap.Data.Path))
	}

	if snap.Statistics != nil {
		s := snap.Statistics
		sb.WriteString("\nBand depth statistics\n")
		sb.WriteString(fmt.Sprintf("  Method: %s\n  Median member: %d\n", s.Method, s.MedianIndex))
		sb.WriteString(fmt.Sprintf("  Depth range: [%.4f, %.4f], mean %.4f\n", s.MinDepth, s.MaxDepth, s.MeanDepth))
		sb.WriteString(fmt.Sprintf("  Central members (deepest 50%%): %v\n", s.CentralIndices))
		sb.WriteString(fmt.Sprintf("  Outlier members: %v\n", s.OutlierIndices))
	} else {
		sb.WriteString("\nBand depth statistics: not computed this session\n")
	}

	if snap.LastViz != nil {
		sb.WriteString("\nVisualization\n")
		sb.WriteString(fmt.Sprintf("  Last capability: %s\n", snap.LastViz.Capability))
		sb.WriteString(fmt.Sprintf("  Dataset reference: %s\n", snap.LastViz.DataRef))
	}

	sb.WriteString(fmt.Sprintf("\nArtifacts created this session: %d\n", snap.ArtifactCount))
	return sb.String()
}

func (t *ReportTool) log(msg string) {
	if t.logFunc != nil {
		t.logFunc(msg)
	}
}

// PDFReportTool exports an already generated report variant to a PDF file.
type PDFReportTool struct {
	exporter  *export.PDFExportService
	reports   func() map[string]string
	outputDir string
	logFunc   func(string)
}

// PDFReportInput defines the input parameters for the PDF export
type PDFReportInput struct {
	ReportType string `json:"report_type,omitempty"`
	FileName   string `json:"file_name,omitempty"`
}

// NewPDFReportTool creates the PDF export capability.
func NewPDFReportTool(exporter *export.PDFExportService, reports func() map[string]string, outputDir string, logFunc func(string)) *PDFReportTool {
	return &PDFReportTool{exporter: exporter, reports: reports, outputDir: outputDir, logFunc: logFunc}
}

// Accepted lists the declared argument names.
func (t *PDFReportTool) Accepted() []string {
	return []string{"report_type", "file_name"}
}

// Info returns the tool information
func (t *PDFReportTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "export_report_pdf",
		Desc: "Export an already generated report variant to a PDF file. Requires generate_report to have run first.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"report_type": {
				Type:     schema.String,
				Desc:     "Report variant to export: inline, quick, or detailed (default detailed)",
				Required: false,
			},
			"file_name": {
				Type:     schema.String,
				Desc:     "Output file name (default report_<timestamp>.pdf)",
				Required: false,
			},
		}),
	}, nil
}

// InvokableRun executes the PDF export
func (t *PDFReportTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	t.log(fmt.Sprintf("[REPORT-TOOL] export_report_pdf args: %s", argumentsInJSON))

	var input PDFReportInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("failed to parse input: %v", err)
	}
	if input.ReportType == "" {
		input.ReportType = "detailed"
	}

	reports := t.reports()
	body, ok := reports[input.ReportType]
	if !ok {
		return errorResult(fmt.Sprintf("no %s report available; run generate_report first", input.ReportType), "").marshal(), nil
	}

	doc := export.ReportDocument{
		Title:    "Ensemble Analysis Report",
		Subtitle: input.ReportType,
		Sections: []export.ReportSection{{Body: body}},
	}
	pdfBytes, err := t.exporter.ExportReportToPDF(doc)
	if err != nil {
		return errorResult("PDF rendering failed", err.Error()).marshal(), nil
	}

	name := input.FileName
	if name == "" {
		name = fmt.Sprintf("report_%s.pdf", time.Now().Format("20060102_150405"))
	}
	path := filepath.Join(t.outputDir, name)
	if err := os.WriteFile(path, pdfBytes, 0644); err != nil {
		return errorResult("failed to write PDF file", err.Error()).marshal(), nil
	}

	result := successResult(fmt.Sprintf("Exported %s report to %s", input.ReportType, path))
	result.Artifact = &Artifact{ID: uuid.NewString(), Kind: "pdf", Name: name, Path: path}
	return result.marshal(), nil
}

func (t *PDFReportTool) log(msg string) {
	if t.logFunc != nil {
		t.logFunc(msg)
	}
}
