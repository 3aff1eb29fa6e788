// Package model defines the core data structures used throughout philowalk.
//
// This package contains the following main types:
//   - Node: A canonical article URL, the unit of identity in the link graph
//   - Page: A fetched article with cleaned content and its resolved URL
//   - PathEntry / WorkflowEntry: Memoized continuations and per-seed run outcomes
//   - RunResult: The outcome of a single walk from a seed article
//   - Stats / SessionReport: Aggregated results of a sampling session
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, memory, session, database and report packages all
// need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
