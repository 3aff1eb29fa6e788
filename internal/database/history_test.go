package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/philowalk/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testReport(id string, started time.Time) *model.SessionReport {
	target := model.Node("https://en.wikipedia.org/wiki/Philosophy")
	report := model.NewSessionReport(id, target, "https://en.wikipedia.org/wiki/Special:Random", 2)
	report.StartedAt = started
	report.FinishedAt = started.Add(3 * time.Second)
	report.Discarded = 1
	report.Duplicates = 1
	report.Runs = append(report.Runs,
		model.RunResult{
			Seed:      "https://en.wikipedia.org/wiki/Logic",
			Outcome:   model.OutcomeValid,
			Reason:    model.ReasonReachedTarget,
			Path:      []model.Node{"https://en.wikipedia.org/wiki/Logic", target},
			MemoHitAt: -1,
			Fetches:   2,
			Elapsed:   1500 * time.Millisecond,
		},
		model.RunResult{
			Seed:      "https://en.wikipedia.org/wiki/Loop",
			Outcome:   model.OutcomeInvalid,
			Reason:    model.ReasonCycle,
			Path:      []model.Node{"https://en.wikipedia.org/wiki/Loop", "https://en.wikipedia.org/wiki/Ring"},
			MemoHitAt: -1,
			Fetches:   3,
			Elapsed:   time.Second,
		},
	)
	report.Stats = model.Stats{
		Valid:        1,
		Invalid:      1,
		SuccessRate:  0.5,
		ValidLengths: []int{2},
		Histogram:    map[int]int{2: 1},
		Min:          2,
		Max:          2,
		Mean:         2,
		Median:       2,
	}
	return report
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error when database does not exist")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("unexpected error: %v", err)
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "existing-db")
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if err := db1.SaveSession(context.Background(), testReport("s1", time.Now())); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}
		_ = db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer db2.Close()

		got, err := db2.GetSession(context.Background(), "s1")
		if err != nil || got == nil {
			t.Fatalf("GetSession() = %v, %v", got, err)
		}
	})
}

// TestSaveAndGetSession tests a full round trip of a session.
func TestSaveAndGetSession(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.UTC)
	want := testReport("session-1", started)

	if err := db.SaveSession(ctx, want); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := db.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetSession() returned nil")
	}

	if !got.StartedAt.Equal(want.StartedAt) || !got.FinishedAt.Equal(want.FinishedAt) {
		t.Errorf("timestamps = %v..%v, want %v..%v", got.StartedAt, got.FinishedAt, want.StartedAt, want.FinishedAt)
	}
	if got.Target != want.Target || got.SeedURL != want.SeedURL || got.Requested != want.Requested {
		t.Errorf("parameters = %q %q %d", got.Target, got.SeedURL, got.Requested)
	}
	if got.Discarded != 1 || got.Duplicates != 1 {
		t.Errorf("discards = %d/%d, want 1/1", got.Discarded, got.Duplicates)
	}
	if diff := cmp.Diff(want.Runs, got.Runs); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Stats, got.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

// TestSaveSession_Replace tests that saving the same ID replaces runs.
func TestSaveSession_Replace(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	report := testReport("same", time.Now())

	if err := db.SaveSession(ctx, report); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	report.Runs = report.Runs[:1]
	report.Error = "interrupted"
	if err := db.SaveSession(ctx, report); err != nil {
		t.Fatalf("second SaveSession() error = %v", err)
	}

	got, err := db.GetSession(ctx, "same")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if len(got.Runs) != 1 {
		t.Errorf("expected 1 run after replace, got %d", len(got.Runs))
	}
	if got.Error != "interrupted" {
		t.Errorf("Error = %q, want interrupted", got.Error)
	}

	sessions, err := db.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("expected 1 session, got %d", len(sessions))
	}
}

// TestSaveSession_Nil tests the nil report guard.
func TestSaveSession_Nil(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	if err := db.SaveSession(context.Background(), nil); err != ErrNilReport {
		t.Errorf("SaveSession(nil) = %v, want ErrNilReport", err)
	}
}

// TestGetSession_NotFound tests lookup of a missing session.
func TestGetSession_NotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	got, err := db.GetSession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

// TestListSessions tests ordering and metadata.
func TestListSessions(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "new", "mid"} {
		offsets := []time.Duration{0, 2 * time.Hour, time.Hour}
		if err := db.SaveSession(ctx, testReport(id, base.Add(offsets[i]))); err != nil {
			t.Fatalf("SaveSession(%s) error = %v", id, err)
		}
	}

	sessions, err := db.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}

	var ids []string
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	if diff := cmp.Diff([]string{"new", "mid", "old"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	first := sessions[0]
	if first.Valid != 1 || first.Invalid != 1 || first.SuccessRate != 0.5 {
		t.Errorf("metadata = %+v", first)
	}
	if first.Target != "https://en.wikipedia.org/wiki/Philosophy" {
		t.Errorf("Target = %q", first.Target)
	}
}

// TestListRuns_Empty tests that a session without runs yields an empty slice.
func TestListRuns_Empty(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	runs, err := db.ListRuns(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if runs == nil || len(runs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", runs)
	}
}

// TestDeleteSession tests removal of a session and its runs.
func TestDeleteSession(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	if err := db.SaveSession(ctx, testReport("gone", time.Now())); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	removed, err := db.DeleteSession(ctx, "gone")
	if err != nil || !removed {
		t.Fatalf("DeleteSession() = %v, %v", removed, err)
	}
	runs, err := db.ListRuns(ctx, "gone")
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected runs to be deleted, got %d", len(runs))
	}

	removed, err = db.DeleteSession(ctx, "gone")
	if err != nil || removed {
		t.Errorf("second DeleteSession() = %v, %v", removed, err)
	}
}

// TestParseTimestamp tests timestamp parsing fallbacks.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-02T03:04:05.5Z", time.Date(2024, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{"2024-01-02 03:04:05", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"", time.Time{}},
		{"garbage", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
