// Package session drives a sampling session: it repeats runs until the
// requested number of counted runs is reached and aggregates their outcomes.
//
// Duplicate seeds and degenerate runs are discarded and retried with a new
// seed. They do not count toward the requested sample size. A session that
// keeps discarding (for example during a network outage) fails after a
// bounded number of consecutive discards instead of looping forever.
//
// Design decision: Runs are driven by a fixed number of workers sharing one
// memory rather than one goroutine per sample because:
// 1. The number of runs needed is unknown up front (discards are retried)
// 2. Slots are claimed before each run, so the session never records more
// runs than requested
// 3. With one worker the session is strictly sequential, matching the
// single-threaded sampling the statistics were designed for
package session
