package model

import "time"

// SessionReport is the complete result of a sampling session.
// It is what the report writers render and what the database stores.
type SessionReport struct {
	// ID is the unique session identifier (UUID).
	ID string `json:"id"`

	// Target is the node whose reachability is measured.
	Target Node `json:"target"`

	// SeedURL is the random-article entry point used for every run.
	SeedURL string `json:"seed_url"`

	// Requested is the number of counted runs that was asked for.
	Requested int `json:"requested"`

	// StartedAt and FinishedAt bound the session in wall-clock time.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Discarded counts degenerate runs (path of at most one node).
	Discarded int `json:"discarded"`

	// Duplicates counts runs skipped because their seed was already recorded.
	Duplicates int `json:"duplicates"`

	// Runs holds every counted run in completion order.
	Runs []RunResult `json:"runs"`

	// Stats is the aggregate over Runs.
	Stats Stats `json:"stats"`

	// Error holds the message of the error that ended the session early, if any.
	Error string `json:"error,omitempty"`
}

// NewSessionReport creates an empty report for a session.
func NewSessionReport(id string, target Node, seedURL string, requested int) *SessionReport {
	return &SessionReport{
		ID:        id,
		Target:    target,
		SeedURL:   seedURL,
		Requested: requested,
		StartedAt: time.Now(),
		Runs:      make([]RunResult, 0, requested),
		Stats:     Stats{Histogram: make(map[int]int)},
	}
}

// Elapsed returns the session duration, or zero if it has not finished.
func (r *SessionReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Completed reports whether the session reached its requested sample count.
func (r *SessionReport) Completed() bool {
	return len(r.Runs) >= r.Requested && r.Error == ""
}

// SessionSummary is the listing form of a stored session.
// It omits the runs so history can be shown without loading every path.
type SessionSummary struct {
	ID          string    `json:"id"`
	Target      Node      `json:"target"`
	Requested   int       `json:"requested"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Valid       int       `json:"valid"`
	Invalid     int       `json:"invalid"`
	SuccessRate float64   `json:"success_rate"`
	Error       string    `json:"error,omitempty"`
}

// Summary returns the listing form of the report.
func (r *SessionReport) Summary() SessionSummary {
	return SessionSummary{
		ID:          r.ID,
		Target:      r.Target,
		Requested:   r.Requested,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Valid:       r.Stats.Valid,
		Invalid:     r.Stats.Invalid,
		SuccessRate: r.Stats.SuccessRate,
		Error:       r.Error,
	}
}
