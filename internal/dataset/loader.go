package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"reel-transcribe-go/internal/types"
)

var urlHeaders = []string{"url", "link", "reel", "post"}

// Load reads post URLs from the first sheet of an xlsx workbook. The URL
// column is detected from the header row; rows whose cell is not an http(s)
// URL are skipped.
func Load(path string) ([]types.PostRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	urlIdx := urlColumn(rows[0])
	if urlIdx == -1 {
		urlIdx = 0
	}

	var out []types.PostRecord
	for i, r := range rows[1:] {
		if urlIdx >= len(r) {
			continue
		}
		u := strings.TrimSpace(r[urlIdx])
		if !isHTTP(u) {
			continue
		}
		// i starts at the second sheet row; sheet rows are 1-based.
		out = append(out, types.PostRecord{Row: i + 2, URL: u})
	}
	return out, nil
}

func urlColumn(header []string) int {
	for _, want := range urlHeaders {
		for i, h := range header {
			if strings.Contains(strings.ToLower(strings.TrimSpace(h)), want) {
				return i
			}
		}
	}
	return -1
}

func isHTTP(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
