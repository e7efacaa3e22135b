package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"reel-transcribe-go/internal/types"
)

const (
	ResultsSheet = "Transcripts"
	SummarySheet = "Summary"
)

var resultHeader = []any{"row", "url", "status", "transcript", "error", "duration_ms"}

// SaveResults writes one row per result plus a summary sheet to path.
func SaveResults(path string, results []types.PostResult, summary Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ResultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, ResultsSheet, 1, resultHeader); err != nil {
		return err
	}
	for i, r := range results {
		row := []any{r.Row, r.URL, r.Status, r.Transcript, r.Error, r.DurationMs}
		if err := setRow(f, ResultsSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(ResultsSheet, "D", "D", 80); err != nil {
		return fmt.Errorf("set width: %w", err)
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	lines := [][]any{
		{"total", summary.Total},
		{"succeeded", summary.Succeeded},
		{"failed", summary.Failed},
		{"avg_duration_ms", summary.AvgDurationMs},
	}
	kinds := make([]string, 0, len(summary.ByKind))
	for k := range summary.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		lines = append(lines, []any{"failed_" + k, summary.ByKind[k]})
	}
	for i, msg := range summary.TopErrors {
		lines = append(lines, []any{fmt.Sprintf("top_error_%d", i+1), msg})
	}
	for i, l := range lines {
		if err := setRow(f, SummarySheet, i+1, l); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
