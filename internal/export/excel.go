// Package export renders report data into downloadable Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
)

const (
	summarySheet = "Summary"
	chartSheet   = "Chart Data"
)

// ReportExporter writes report aggregates into an Excel workbook with a
// summary sheet and a chart data sheet.
type ReportExporter struct {
	logger *zap.Logger
}

// NewReportExporter creates a new report exporter
func NewReportExporter(logger *zap.Logger) *ReportExporter {
	return &ReportExporter{logger: logger}
}

// WriteReport builds the workbook and streams it to w.
func (e *ReportExporter) WriteReport(w io.Writer, summary []entity.ReportRow, chart *entity.ChartSeries) error {
	f, err := e.buildWorkbook(summary, chart)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *ReportExporter) buildWorkbook(summary []entity.ReportRow, chart *entity.ChartSeries) (*excelize.File, error) {
	f := excelize.NewFile()

	// The default sheet becomes the summary sheet.
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	e.setCell(f, summarySheet, "A1", "Category")
	e.setCell(f, summarySheet, "B1", "Amount")
	e.setCell(f, summarySheet, "C1", "Count")

	for i, row := range summary {
		rowNum := i + 2
		e.setCell(f, summarySheet, fmt.Sprintf("A%d", rowNum), row.Category)
		if row.Amount != nil {
			e.setCell(f, summarySheet, fmt.Sprintf("B%d", rowNum), row.Amount.String())
		}
		e.setCellValue(f, summarySheet, fmt.Sprintf("C%d", rowNum), row.Count)
	}

	if _, err := f.NewSheet(chartSheet); err != nil {
		return nil, fmt.Errorf("failed to add chart sheet: %w", err)
	}

	e.setCell(f, chartSheet, "A1", "Label")
	e.setCell(f, chartSheet, "B1", "Amount")

	if chart != nil && len(chart.Datasets) > 0 {
		data := chart.Datasets[0].Data
		for i, label := range chart.Labels {
			rowNum := i + 2
			e.setCell(f, chartSheet, fmt.Sprintf("A%d", rowNum), label)
			if i < len(data) {
				e.setCellValue(f, chartSheet, fmt.Sprintf("B%d", rowNum), data[i])
			}
		}
	}

	return f, nil
}

// setCell sets a string cell value in the workbook
func (e *ReportExporter) setCell(f *excelize.File, sheet, cell, value string) {
	e.setCellValue(f, sheet, cell, value)
}

func (e *ReportExporter) setCellValue(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}
