package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/philowalk/internal/crawler"
	"github.com/nao1215/philowalk/internal/memory"
	"github.com/nao1215/philowalk/internal/model"
	"golang.org/x/sync/errgroup"
)

// Defaults for a session.
const (
	// DefaultWorkers keeps runs strictly sequential.
	DefaultWorkers = 1

	// DefaultMaxConsecutiveDiscards bounds how many runs in a row may be
	// discarded before the session gives up.
	DefaultMaxConsecutiveDiscards = 100
)

// Walker performs single runs against a shared memory.
// *crawler.Walker satisfies it.
type Walker interface {
	Walk(ctx context.Context) (*model.RunResult, error)
	Memory() *memory.Memory
	Target() model.Node
	SeedURL() string
}

// EventKind classifies a finished run attempt.
type EventKind int

const (
	// EventCounted means the run was recorded and counts toward the sample.
	EventCounted EventKind = iota

	// EventDuplicate means the run was discarded because its seed was
	// already recorded.
	EventDuplicate

	// EventDegenerate means the run was discarded because it produced at
	// most one node.
	EventDegenerate
)

// String returns a short name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventCounted:
		return "counted"
	case EventDuplicate:
		return "duplicate"
	case EventDegenerate:
		return "degenerate"
	default:
		return "unknown"
	}
}

// Event describes one finished run attempt.
type Event struct {
	Kind EventKind

	// Result is set for counted runs.
	Result *model.RunResult

	// Err is the discard reason for discarded runs.
	Err error

	// Counted and Requested give the session progress after this event.
	Counted   int
	Requested int
}

// Observer is called after every run attempt. It may be called from several
// goroutines at once when the session has more than one worker.
type Observer func(Event)

// Session drives runs until the requested number of counted runs is reached.
type Session struct {
	walker      Walker
	workers     int
	maxDiscards int
	observer    Observer
	logger      *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithWorkers sets the number of concurrent runs.
func WithWorkers(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMaxConsecutiveDiscards sets how many runs in a row may be discarded.
func WithMaxConsecutiveDiscards(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxDiscards = n
		}
	}
}

// WithObserver sets a callback invoked after every run attempt.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// WithLogger sets the logger for session-level logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a Session driving walker.
func New(walker Walker, opts ...Option) *Session {
	s := &Session{
		walker:      walker,
		workers:     DefaultWorkers,
		maxDiscards: DefaultMaxConsecutiveDiscards,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// tally is the shared bookkeeping of a running session.
type tally struct {
	mu          sync.Mutex
	report      *model.SessionReport
	requested   int
	claimed     int
	counted     int
	consecutive int
}

// claim reserves a slot for one more run. It reports false once enough runs
// are counted or in flight.
func (t *tally) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counted+t.claimed >= t.requested {
		return false
	}
	t.claimed++
	return true
}

// Run performs runs until n of them are counted.
//
// The returned report is never nil. When the session ends early (too many
// discards or cancellation) the report holds the runs counted so far and
// its Error field describes why.
func (s *Session) Run(ctx context.Context, n int) (*model.SessionReport, error) {
	report := model.NewSessionReport(uuid.NewString(), s.walker.Target(), s.walker.SeedURL(), n)
	if n < 1 {
		report.FinishedAt = time.Now()
		report.Error = ErrInvalidSampleCount.Error()
		return report, ErrInvalidSampleCount
	}

	s.logger.Info("starting session",
		"id", report.ID,
		"samples", n,
		"workers", s.workers,
		"target", report.Target,
	)

	t := &tally{report: report, requested: n}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for range s.workers {
		g.Go(func() error {
			return s.work(gctx, t)
		})
	}
	err := g.Wait()

	report.FinishedAt = time.Now()
	report.Stats = Aggregate(s.walker.Memory().WorkflowEntries())
	if err != nil {
		report.Error = err.Error()
	}

	s.logger.Info("session finished",
		"id", report.ID,
		"counted", len(report.Runs),
		"discarded", report.Discarded,
		"duplicates", report.Duplicates,
		"success_rate", report.Stats.SuccessRate,
		"elapsed", report.Elapsed(),
	)

	return report, err
}

// work runs walks until the session is satisfied or fails.
func (s *Session) work(ctx context.Context, t *tally) error {
	for t.claim() {
		result, err := s.walker.Walk(ctx)

		event, stop := s.settle(t, result, err)
		if stop != nil {
			return stop
		}
		if s.observer != nil {
			s.observer(event)
		}
	}
	return nil
}

// settle folds one run attempt into the tally and releases its slot.
// It returns a non-nil error when the session must stop.
func (s *Session) settle(t *tally, result *model.RunResult, err error) (Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.claimed--
	event := Event{Requested: t.requested}

	switch {
	case err == nil:
		t.counted++
		t.consecutive = 0
		t.report.Runs = append(t.report.Runs, *result)
		event.Kind = EventCounted
		event.Result = result
	case errors.Is(err, crawler.ErrDuplicateSeed):
		t.report.Duplicates++
		t.consecutive++
		event.Kind = EventDuplicate
		event.Err = err
		s.logger.Debug("discarded duplicate seed", "error", err)
	case errors.Is(err, crawler.ErrDegenerateRun):
		t.report.Discarded++
		t.consecutive++
		event.Kind = EventDegenerate
		event.Err = err
		s.logger.Debug("discarded degenerate run", "error", err)
	default:
		return event, err
	}

	event.Counted = t.counted
	if t.consecutive >= s.maxDiscards {
		return event, fmt.Errorf("%w: %d in a row, last: %w", ErrTooManyDiscards, t.consecutive, err)
	}
	return event, nil
}

// Reset clears the memory shared by the session's runs.
func (s *Session) Reset() {
	s.walker.Memory().Reset()
}
