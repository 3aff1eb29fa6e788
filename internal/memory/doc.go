// Package memory holds the two memoization maps shared by all runs of a
// session.
//
// Path Memory maps every node ever seen on a counted run to the remainder of
// that run from the node onward. A later run reaching such a node can splice
// the stored continuation instead of walking it again.
//
// Workflow Memory maps the seed of every counted run to the run's terminal
// outcome. It is the source for session statistics and for rejecting
// duplicate seeds.
//
// Design decision: Both maps are first-writer-wins because:
// 1. A continuation is only meaningful relative to the run that produced it
// 2. Overwriting would let a later, shorter run rewrite history that other
// entries already reference
// 3. It keeps Record idempotent for a given seed
//
// The maps live for the lifetime of the process and are never persisted.
package memory
