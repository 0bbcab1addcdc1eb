package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// PDFExportService renders analysis reports to PDF using maroto
type PDFExportService struct{}

// NewPDFExportService creates a new PDF export service
func NewPDFExportService() *PDFExportService {
	return &PDFExportService{}
}

// ReportSection is a titled block of report text
type ReportSection struct {
	Heading string
	Body    string
}

// ReportDocument represents a report ready for PDF rendering
type ReportDocument struct {
	Title    string
	Subtitle string
	Sections []ReportSection
}

// ExportReportToPDF renders the document and returns the PDF bytes
func (s *PDFExportService) ExportReportToPDF(doc ReportDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithDefaultFont(&props.Font{
			Family: fontfamily.Arial,
			Size:   10,
		}).
		Build()

	m := maroto.New(cfg)

	s.addHeader(m, doc.Title, doc.Subtitle)
	for _, section := range doc.Sections {
		s.addSection(m, section)
	}
	s.addFooter(m)

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return document.GetBytes(), nil
}

// addHeader adds the report title and timestamp
func (s *PDFExportService) addHeader(m core.Maroto, title, subtitle string) {
	if title == "" {
		title = "Analysis Report"
	}
	m.AddRow(20,
		col.New(12).Add(
			text.New(title, props.Text{
				Family: fontfamily.Arial,
				Size:   18,
				Style:  fontstyle.Bold,
				Align:  align.Center,
				Color:  &props.Color{Red: 59, Green: 130, Blue: 246},
			}),
		),
	)

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("Generated: %s", timestamp)
	if subtitle != "" {
		line = fmt.Sprintf("%s - %s", subtitle, line)
	}
	m.AddRow(8,
		col.New(12).Add(
			text.New(line, props.Text{
				Family: fontfamily.Arial,
				Size:   9,
				Align:  align.Center,
				Color:  &props.Color{Red: 100, Green: 116, Blue: 139},
			}),
		),
	)

	m.AddRow(5)
}

// addSection adds a heading row followed by one row per body line
func (s *PDFExportService) addSection(m core.Maroto, section ReportSection) {
	if section.Heading != "" {
		m.AddRow(8,
			col.New(12).Add(
				text.New(section.Heading, props.Text{
					Family: fontfamily.Arial,
					Size:   12,
					Style:  fontstyle.Bold,
				}),
			),
		)
	}

	for _, line := range strings.Split(section.Body, "\n") {
		if strings.TrimSpace(line) == "" {
			m.AddRow(3)
			continue
		}
		m.AddRow(6,
			col.New(12).Add(
				text.New(line, props.Text{
					Family: fontfamily.Arial,
					Size:   10,
				}),
			),
		)
	}

	m.AddRow(5)
}

// addFooter adds the closing line
func (s *PDFExportService) addFooter(m core.Maroto) {
	m.AddRow(10,
		col.New(12).Add(
			text.New("VizChat - ensemble visualization assistant", props.Text{
				Family: fontfamily.Arial,
				Size:   8,
				Align:  align.Center,
				Color:  &props.Color{Red: 148, Green: 163, Blue: 184},
			}),
		),
	)
}
