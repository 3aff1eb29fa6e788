package session

import (
	"slices"

	"github.com/nao1215/philowalk/internal/model"
)

// Aggregate partitions Workflow Memory entries by outcome and summarizes the
// path lengths of valid runs.
func Aggregate(entries map[model.Node]model.WorkflowEntry) model.Stats {
	stats := model.Stats{Histogram: make(map[int]int)}

	for _, entry := range entries {
		if entry.Outcome != model.OutcomeValid {
			stats.Invalid++
			continue
		}
		stats.Valid++
		stats.ValidLengths = append(stats.ValidLengths, entry.Length)
		stats.Histogram[entry.Length]++
	}

	if total := stats.Total(); total > 0 {
		stats.SuccessRate = float64(stats.Valid) / float64(total)
	}
	if len(stats.ValidLengths) == 0 {
		return stats
	}

	slices.Sort(stats.ValidLengths)
	n := len(stats.ValidLengths)
	stats.Min = stats.ValidLengths[0]
	stats.Max = stats.ValidLengths[n-1]

	sum := 0
	for _, l := range stats.ValidLengths {
		sum += l
	}
	stats.Mean = float64(sum) / float64(n)

	if n%2 == 1 {
		stats.Median = float64(stats.ValidLengths[n/2])
	} else {
		stats.Median = float64(stats.ValidLengths[n/2-1]+stats.ValidLengths[n/2]) / 2
	}

	return stats
}
