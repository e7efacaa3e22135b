package dataset

import (
	"sort"

	"reel-transcribe-go/internal/types"
)

const topErrorCount = 3

// Summary is a compact overview of one batch run.
type Summary struct {
	Total         int            `json:"total"`
	Succeeded     int            `json:"succeeded"`
	Failed        int            `json:"failed"`
	ByKind        map[string]int `json:"by_kind"`
	AvgDurationMs int64          `json:"avg_duration_ms"`
	TopErrors     []string       `json:"top_errors"`
}

// Summarize counts outcomes per failure kind and ranks the most frequent
// error messages.
func Summarize(results []types.PostResult) Summary {
	s := Summary{Total: len(results), ByKind: map[string]int{}}
	errCounts := map[string]int{}
	var totalMs int64

	for _, r := range results {
		totalMs += r.DurationMs
		if r.Error == "" {
			s.Succeeded++
			continue
		}
		s.Failed++
		kind := r.Kind
		if kind == "" {
			kind = string(types.KindUnknown)
		}
		s.ByKind[kind]++
		errCounts[r.Error]++
	}
	if s.Total > 0 {
		s.AvgDurationMs = totalMs / int64(s.Total)
	}

	type ec struct {
		msg   string
		count int
	}
	var arr []ec
	for k, v := range errCounts {
		arr = append(arr, ec{k, v})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].count != arr[j].count {
			return arr[i].count > arr[j].count
		}
		return arr[i].msg < arr[j].msg
	})
	s.TopErrors = []string{}
	for i := 0; i < len(arr) && i < topErrorCount; i++ {
		s.TopErrors = append(s.TopErrors, arr[i].msg)
	}
	return s
}
