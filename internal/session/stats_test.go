package session

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/philowalk/internal/model"
)

func workflow(lengths []int, invalid int) map[model.Node]model.WorkflowEntry {
	entries := make(map[model.Node]model.WorkflowEntry)
	for i, l := range lengths {
		entries[model.Node(fmt.Sprintf("https://w.example/wiki/V%d", i))] = model.WorkflowEntry{
			Outcome: model.OutcomeValid,
			Length:  l,
		}
	}
	for i := range invalid {
		entries[model.Node(fmt.Sprintf("https://w.example/wiki/I%d", i))] = model.WorkflowEntry{
			Outcome: model.OutcomeInvalid,
			Length:  2,
		}
	}
	return entries
}

// TestAggregate tests session statistics.
func TestAggregate(t *testing.T) {
	t.Parallel()

	t.Run("mixed outcomes", func(t *testing.T) {
		t.Parallel()

		stats := Aggregate(workflow([]int{7, 3, 5, 3}, 4))

		if stats.Valid != 4 || stats.Invalid != 4 {
			t.Errorf("expected 4/4, got %d/%d", stats.Valid, stats.Invalid)
		}
		if stats.SuccessRate != 0.5 {
			t.Errorf("expected success rate 0.5, got %v", stats.SuccessRate)
		}
		if diff := cmp.Diff([]int{3, 3, 5, 7}, stats.ValidLengths); diff != "" {
			t.Errorf("lengths mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(map[int]int{3: 2, 5: 1, 7: 1}, stats.Histogram); diff != "" {
			t.Errorf("histogram mismatch (-want +got):\n%s", diff)
		}
		if stats.Min != 3 || stats.Max != 7 {
			t.Errorf("expected min 3 max 7, got %d %d", stats.Min, stats.Max)
		}
		if stats.Mean != 4.5 {
			t.Errorf("expected mean 4.5, got %v", stats.Mean)
		}
		if stats.Median != 4 {
			t.Errorf("expected median 4, got %v", stats.Median)
		}
	})

	t.Run("odd number of valid runs", func(t *testing.T) {
		t.Parallel()

		stats := Aggregate(workflow([]int{10, 2, 6}, 0))
		if stats.Median != 6 || stats.SuccessRate != 1 {
			t.Errorf("expected median 6 and rate 1, got %v and %v", stats.Median, stats.SuccessRate)
		}
	})

	t.Run("no valid runs", func(t *testing.T) {
		t.Parallel()

		stats := Aggregate(workflow(nil, 3))
		if stats.SuccessRate != 0 || stats.HasValidRuns() {
			t.Errorf("expected zero success, got %+v", stats)
		}
		if stats.Min != 0 || stats.Max != 0 || stats.Mean != 0 {
			t.Errorf("expected zero summary, got %+v", stats)
		}
	})

	t.Run("empty memory", func(t *testing.T) {
		t.Parallel()

		stats := Aggregate(nil)
		if stats.Total() != 0 || stats.SuccessRate != 0 {
			t.Errorf("expected empty stats, got %+v", stats)
		}
		if stats.Histogram == nil {
			t.Error("histogram should be initialized")
		}
	})
}
