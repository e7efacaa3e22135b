package transcription

import (
	"fmt"
	"math"
	"strings"

	"reel-transcribe-go/internal/types"
)

// Timestamp formats a start offset in seconds as MM:SS.
func Timestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	mins := int64(math.Floor(seconds / 60))
	secs := int64(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

// Render turns segments into "[MM:SS] text" lines separated by a blank line.
// Segment order is kept as given.
func Render(segments []types.Segment) string {
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		lines = append(lines, "["+Timestamp(s.Start)+"] "+strings.TrimSpace(s.Text))
	}
	return strings.Join(lines, "\n\n")
}
