package crawler

import "errors"

// Run discard errors.
//
// A discarded run is not counted and leaves both memory maps untouched. The
// caller is expected to start a new run with a fresh seed.
var (
	// ErrDuplicateSeed is returned when the resolved seed already has a
	// counted run.
	ErrDuplicateSeed = errors.New("seed already recorded")

	// ErrDegenerateRun is returned when a run produced at most one node,
	// for example because the seed could not be fetched or had no link.
	ErrDegenerateRun = errors.New("degenerate run")
)
