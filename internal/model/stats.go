package model

// Stats summarizes the counted runs of a session.
type Stats struct {
	// Valid is the number of runs that reached the target.
	Valid int `json:"valid"`

	// Invalid is the number of runs that ended elsewhere.
	Invalid int `json:"invalid"`

	// SuccessRate is Valid / (Valid + Invalid), or 0 when there are no runs.
	SuccessRate float64 `json:"success_rate"`

	// ValidLengths holds the path lengths of valid runs in ascending order.
	ValidLengths []int `json:"valid_lengths"`

	// Histogram maps a valid path length to the number of runs with that length.
	Histogram map[int]int `json:"histogram"`

	// Min, Max, Mean and Median describe ValidLengths. They are zero when there
	// are no valid runs.
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Total returns the number of counted runs.
func (s *Stats) Total() int {
	return s.Valid + s.Invalid
}

// HasValidRuns reports whether at least one run reached the target.
func (s *Stats) HasValidRuns() bool {
	return s.Valid > 0
}
