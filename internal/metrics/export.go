package metrics

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	SheetSummary = "Summary"
	SheetDaily   = "Daily"
	SheetReasons = "Reasons"
)

// WriteWorkbook writes summary and daily as an .xlsx workbook to w.
func WriteWorkbook(w io.Writer, summary Summary, daily []DailyStat) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default sheet becomes the summary sheet.
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetDaily, SheetReasons} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	summaryRows := [][]any{
		{"Metric", "Value"},
		{"Period (days)", summary.PeriodDays},
		{"Total uploads", summary.TotalUploads},
		{"Total generations", summary.TotalGenerations},
		{"Unique sessions", summary.UniqueSessions},
		{"Average analysis time (ms)", summary.AverageAnalysisTimeMS},
		{"Average generation time (ms)", summary.AverageGenerationTimeMS},
		{"Errors", summary.ErrorCount},
		{"Error rate (%)", summary.ErrorRate},
	}
	if err := writeRows(f, SheetSummary, summaryRows); err != nil {
		return err
	}

	dailyRows := [][]any{{"Date", "Unique users", "Uploads", "Generations"}}
	for _, d := range daily {
		dailyRows = append(dailyRows, []any{d.Date, d.UniqueUsers, d.Uploads, d.Generations})
	}
	if err := writeRows(f, SheetDaily, dailyRows); err != nil {
		return err
	}

	reasonRows := [][]any{{"Decline reason", "Count"}}
	for _, r := range summary.TopDeclineReasons {
		reasonRows = append(reasonRows, []any{r.Reason, r.Count})
	}
	if err := writeRows(f, SheetReasons, reasonRows); err != nil {
		return err
	}

	_ = f.SetColWidth(SheetSummary, "A", "A", 30)
	_ = f.SetColWidth(SheetDaily, "A", "A", 14)
	_ = f.SetColWidth(SheetReasons, "A", "A", 26)

	if idx, err := f.GetSheetIndex(SheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
