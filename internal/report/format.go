package report

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/philowalk/internal/model"
)

// formatPercent renders a 0..1 rate without trailing zeros, e.g. "37.5%".
func formatPercent(rate float64) string {
	return strings.TrimSuffix(strings.TrimRight(formatFloat(rate*100), "0"), ".") + "%"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func statusText(report *model.SessionReport) string {
	switch {
	case report.Error != "":
		return "ERROR - " + report.Error
	case report.Completed():
		return "Complete"
	default:
		return "Partial"
	}
}

func summaryStatus(s model.SessionSummary) string {
	if s.Error != "" {
		return "error"
	}
	if s.Valid+s.Invalid < s.Requested {
		return "partial"
	}
	return "complete"
}

// lengthRows returns histogram rows ordered by path length.
func lengthRows(stats model.Stats) [][2]int {
	rows := make([][2]int, 0, len(stats.Histogram))
	for _, length := range slices.Sorted(maps.Keys(stats.Histogram)) {
		rows = append(rows, [2]int{length, stats.Histogram[length]})
	}
	return rows
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
