// Package export renders extracted tables as spreadsheet files for clients.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"doc-llm-pipeline/internal/jobs"
)

// Service is a tiny façade that produces XLSX bytes for a job result.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// TablesXLSX returns an XLSX workbook for the tables in result. One sheet;
// each table gets its title, its rows, and a separating blank line.
func (s *Service) TablesXLSX(jobID string, result *jobs.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Tables"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	// summary block
	write(1, 1, "Provider")
	write(2, 1, result.LLMProvider)
	write(1, 2, "Model")
	write(2, 2, result.LLMModel)
	write(1, 3, "Pages")
	write(2, 3, result.PageCount)
	write(1, 4, "Scanned")
	write(2, 4, result.IsScanned)

	row := 6
	for _, table := range result.Tables {
		header := table.Title
		if table.Page != nil {
			header = fmt.Sprintf("%s (page %d)", table.Title, *table.Page)
		}
		write(1, row, header)
		row++
		for _, r := range table.Rows {
			write(1, row, r)
			row++
		}
		row++
	}

	// drop the default sheet excelize seeds
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"job_id", jobID,
		"tables", len(result.Tables),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
