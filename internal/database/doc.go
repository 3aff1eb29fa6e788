// Package database provides SQLite-based storage of walk sessions.
//
// The HistoryDB stores:
//   - One row per session with its parameters and aggregated statistics
//   - One row per counted run with its seed, outcome and full path
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sessions are written once at the end of a walk, so a single writer is enough
//
// Paths are stored as JSON arrays. They are only ever read back whole.
package database
