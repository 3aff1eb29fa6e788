package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/philowalk/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "philowalk.db"

// ErrNilReport is returned when SaveSession is called without a report.
var ErrNilReport = errors.New("session report is nil")

// HistoryDB provides SQLite-based storage for finished walk sessions.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	// The history command opens with false so it never creates an empty file.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a walk first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a new file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the location of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		seed_url TEXT NOT NULL,
		requested INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		discarded INTEGER DEFAULT 0,
		duplicates INTEGER DEFAULT 0,
		valid INTEGER DEFAULT 0,
		invalid INTEGER DEFAULT 0,
		success_rate REAL DEFAULT 0,
		stats_json TEXT NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

	-- Runs keep their insertion order through seq.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		seed TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT,
		length INTEGER NOT NULL,
		memo_hit_at INTEGER DEFAULT -1,
		fetches INTEGER DEFAULT 0,
		elapsed_ns INTEGER DEFAULT 0,
		path_json TEXT NOT NULL,
		UNIQUE(session_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(session_id);
	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveSession stores a session report and its runs.
// Saving a session with an existing ID replaces the previous copy.
func (hdb *HistoryDB) SaveSession(ctx context.Context, report *model.SessionReport) (err error) {
	if report == nil {
		return ErrNilReport
	}

	statsJSON, err := json.Marshal(report.Stats)
	if err != nil {
		return fmt.Errorf("failed to serialize stats: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
	INSERT INTO sessions (id, target, seed_url, requested, started_at, finished_at,
		discarded, duplicates, valid, invalid, success_rate, stats_json, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		target = excluded.target,
		seed_url = excluded.seed_url,
		requested = excluded.requested,
		started_at = excluded.started_at,
		finished_at = excluded.finished_at,
		discarded = excluded.discarded,
		duplicates = excluded.duplicates,
		valid = excluded.valid,
		invalid = excluded.invalid,
		success_rate = excluded.success_rate,
		stats_json = excluded.stats_json,
		error = excluded.error
	`
	if _, err = tx.ExecContext(ctx, query,
		report.ID,
		report.Target.String(),
		report.SeedURL,
		report.Requested,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		report.Discarded,
		report.Duplicates,
		report.Stats.Valid,
		report.Stats.Invalid,
		report.Stats.SuccessRate,
		string(statsJSON),
		report.Error,
	); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM runs WHERE session_id = ?", report.ID); err != nil {
		return fmt.Errorf("failed to clear previous runs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO runs (session_id, seq, seed, outcome, reason, length, memo_hit_at, fetches, elapsed_ns, path_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare run insert: %w", err)
	}
	defer stmt.Close()

	for i := range report.Runs {
		run := &report.Runs[i]
		var pathJSON []byte
		pathJSON, err = json.Marshal(run.Path)
		if err != nil {
			return fmt.Errorf("failed to serialize path: %w", err)
		}
		if _, err = stmt.ExecContext(ctx,
			report.ID,
			i,
			run.Seed.String(),
			run.Outcome.String(),
			string(run.Reason),
			run.Length(),
			run.MemoHitAt,
			run.Fetches,
			int64(run.Elapsed),
			string(pathJSON),
		); err != nil {
			return fmt.Errorf("failed to save run %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// ListSessions returns metadata of all stored sessions, newest first.
func (hdb *HistoryDB) ListSessions(ctx context.Context) ([]model.SessionSummary, error) {
	query := `
	SELECT id, target, requested, started_at, finished_at, valid, invalid, success_rate, error
	FROM sessions
	ORDER BY started_at DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var results []model.SessionSummary
	for rows.Next() {
		var meta model.SessionSummary
		var target, startedAt string
		var finishedAt, sessionErr sql.NullString

		if err := rows.Scan(
			&meta.ID,
			&target,
			&meta.Requested,
			&startedAt,
			&finishedAt,
			&meta.Valid,
			&meta.Invalid,
			&meta.SuccessRate,
			&sessionErr,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		meta.Target = model.Node(target)
		meta.StartedAt = parseTimestamp(startedAt)
		meta.FinishedAt = parseTimestamp(finishedAt.String)
		meta.Error = sessionErr.String
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetSession retrieves a session and its runs by ID.
// It returns nil without an error when no session has that ID.
func (hdb *HistoryDB) GetSession(ctx context.Context, id string) (*model.SessionReport, error) {
	query := `
	SELECT id, target, seed_url, requested, started_at, finished_at, discarded, duplicates, stats_json, error
	FROM sessions
	WHERE id = ?
	`

	var report model.SessionReport
	var target, startedAt, statsJSON string
	var finishedAt, sessionErr sql.NullString

	err := hdb.db.QueryRowContext(ctx, query, id).Scan(
		&report.ID,
		&target,
		&report.SeedURL,
		&report.Requested,
		&startedAt,
		&finishedAt,
		&report.Discarded,
		&report.Duplicates,
		&statsJSON,
		&sessionErr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	report.Target = model.Node(target)
	report.StartedAt = parseTimestamp(startedAt)
	report.FinishedAt = parseTimestamp(finishedAt.String)
	report.Error = sessionErr.String

	if err := json.Unmarshal([]byte(statsJSON), &report.Stats); err != nil {
		return nil, fmt.Errorf("failed to parse stats: %w", err)
	}
	if report.Stats.Histogram == nil {
		report.Stats.Histogram = make(map[int]int)
	}

	runs, err := hdb.ListRuns(ctx, id)
	if err != nil {
		return nil, err
	}
	report.Runs = runs

	return &report, nil
}

// ListRuns returns the runs of a session in the order they were counted.
func (hdb *HistoryDB) ListRuns(ctx context.Context, sessionID string) ([]model.RunResult, error) {
	query := `
	SELECT seed, outcome, reason, memo_hit_at, fetches, elapsed_ns, path_json
	FROM runs
	WHERE session_id = ?
	ORDER BY seq
	`

	rows, err := hdb.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]model.RunResult, 0)
	for rows.Next() {
		var run model.RunResult
		var seed, outcome, pathJSON string
		var reason sql.NullString
		var elapsed int64

		if err := rows.Scan(&seed, &outcome, &reason, &run.MemoHitAt, &run.Fetches, &elapsed, &pathJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Seed = model.Node(seed)
		run.Reason = model.Reason(reason.String)
		run.Elapsed = time.Duration(elapsed)
		if run.Outcome, err = model.ParseOutcome(outcome); err != nil {
			return nil, fmt.Errorf("failed to parse run outcome: %w", err)
		}
		if err := json.Unmarshal([]byte(pathJSON), &run.Path); err != nil {
			return nil, fmt.Errorf("failed to parse run path: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// DeleteSession removes a session and its runs.
// It reports whether a session was removed.
func (hdb *HistoryDB) DeleteSession(ctx context.Context, id string) (bool, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE session_id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete runs: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return n > 0, nil
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, it returns the zero time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
