package session

import "errors"

var (
	// ErrInvalidSampleCount is returned when fewer than one run is requested.
	ErrInvalidSampleCount = errors.New("sample count must be at least 1")

	// ErrTooManyDiscards is returned when too many runs in a row were
	// discarded. It usually indicates that the seed URL is unreachable.
	ErrTooManyDiscards = errors.New("too many consecutive discarded runs")
)
