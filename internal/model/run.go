package model

import "time"

// RunResult is the reported outcome of one counted walk.
type RunResult struct {
	// Seed is the resolved random article the walk started from.
	Seed Node `json:"seed"`

	// Outcome is VALID if and only if the last node of Path is the target.
	Outcome Outcome `json:"outcome"`

	// Reason is the terminal state the walk ended in.
	Reason Reason `json:"reason"`

	// Path is the full walk, including any continuation spliced from memory.
	Path []Node `json:"path"`

	// MemoHitAt is the index in Path where a memoized continuation was spliced,
	// or -1 when the walk was computed step by step.
	MemoHitAt int `json:"memo_hit_at"`

	// Fetches is the number of HTTP fetches this walk issued.
	Fetches int `json:"fetches"`

	// Elapsed is the wall-clock duration of the walk.
	Elapsed time.Duration `json:"elapsed"`
}

// Length returns the number of nodes in the path.
func (r *RunResult) Length() int {
	return len(r.Path)
}

// Last returns the final node of the path, or an empty node for an empty path.
func (r *RunResult) Last() Node {
	if len(r.Path) == 0 {
		return ""
	}
	return r.Path[len(r.Path)-1]
}
