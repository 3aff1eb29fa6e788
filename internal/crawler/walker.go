package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/philowalk/internal/memory"
	"github.com/nao1215/philowalk/internal/model"
)

// Default endpoints of a walk.
const (
	// DefaultSeedURL redirects to a random article on every request.
	DefaultSeedURL = "https://en.wikipedia.org/wiki/Special:Random"

	// DefaultTargetURL is the article every walk tries to reach.
	DefaultTargetURL = "https://en.wikipedia.org/wiki/Philosophy"
)

// PageFetcher retrieves a cleaned page together with its resolved URL.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.Page, error)
}

// LinkExtractor chooses the next hop from a page.
type LinkExtractor interface {
	NextLink(page *model.Page) (model.Node, bool)
}

// Walker performs runs: walks from a random seed along first links until the
// target, a cycle, a dead end, or a memoized node.
//
// A Walker holds no per-run state, so one Walker may serve several workers
// at once as long as they share its Memory and Throttle.
type Walker struct {
	fetcher   PageFetcher
	extractor LinkExtractor
	memory    *memory.Memory
	throttle  *Throttle
	seedURL   string
	target    model.Node
	logger    *slog.Logger
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithSeedURL sets the random-article URL each run starts from.
func WithSeedURL(seedURL string) WalkerOption {
	return func(w *Walker) {
		if seedURL != "" {
			w.seedURL = seedURL
		}
	}
}

// WithTarget sets the node whose reachability is measured.
func WithTarget(target model.Node) WalkerOption {
	return func(w *Walker) {
		if !target.IsZero() {
			w.target = target
		}
	}
}

// WithThrottle sets the politeness gate shared by all fetches.
func WithThrottle(t *Throttle) WalkerOption {
	return func(w *Walker) {
		w.throttle = t
	}
}

// WithWalkerLogger sets the logger for run-level logging.
func WithWalkerLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker creates a Walker over the given collaborators.
func NewWalker(fetcher PageFetcher, extractor LinkExtractor, mem *memory.Memory, opts ...WalkerOption) *Walker {
	w := &Walker{
		fetcher:   fetcher,
		extractor: extractor,
		memory:    mem,
		seedURL:   DefaultSeedURL,
		target:    model.ParseNode(DefaultTargetURL),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.throttle == nil {
		w.throttle = NewThrottle(DefaultDelay)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}

	return w
}

// Target returns the node walks are measured against.
func (w *Walker) Target() model.Node {
	return w.target
}

// SeedURL returns the URL each run starts from.
func (w *Walker) SeedURL() string {
	return w.seedURL
}

// Memory returns the memory shared by the walker's runs.
func (w *Walker) Memory() *memory.Memory {
	return w.memory
}

// run is the mutable state of one walk.
type run struct {
	result  model.RunResult
	visited map[model.Node]struct{}
}

// Walk performs one run and folds it into memory.
//
// It returns ErrDuplicateSeed when the seed already has a counted run and
// ErrDegenerateRun when the run ends with at most one node. In both cases
// memory is not modified. Fetch failures and missing links are not errors:
// they end the run as INVALID. The only other error is ctx.Err().
func (w *Walker) Walk(ctx context.Context) (*model.RunResult, error) {
	started := time.Now()
	r := &run{
		result:  model.RunResult{MemoHitAt: -1},
		visited: make(map[model.Node]struct{}),
	}

	page, err := w.fetch(ctx, r, w.seedURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: seed fetch failed: %w", ErrDegenerateRun, err)
	}

	seed := page.URL
	if seed.IsZero() {
		return nil, fmt.Errorf("%w: seed did not resolve to a URL", ErrDegenerateRun)
	}
	if w.memory.HasSeed(seed) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSeed, seed)
	}
	r.result.Seed = seed
	r.visited[seed] = struct{}{}

	if err := w.step(ctx, r, seed, page); err != nil {
		return nil, err
	}

	result := &r.result
	result.Elapsed = time.Since(started)

	if result.Length() <= 1 {
		w.logger.Debug("discarding degenerate run",
			"seed", seed,
			"reason", result.Reason,
		)
		return nil, fmt.Errorf("%w: %s ended after %d node(s) (%s)", ErrDegenerateRun, seed, result.Length(), result.Reason)
	}

	recorded, err := w.memory.Record(result.Outcome, result.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	if !recorded {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSeed, seed)
	}

	w.logger.Info("run finished",
		"seed", seed.Title(),
		"outcome", result.Outcome,
		"reason", result.Reason,
		"length", result.Length(),
		"fetches", result.Fetches,
	)

	return result, nil
}

// step walks from node until a terminal state and records it in r.
// page is the already fetched content of node, if any.
func (w *Walker) step(ctx context.Context, r *run, node model.Node, page *model.Page) error {
	result := &r.result

	for {
		if entry, ok := w.memory.Path(node); ok {
			result.MemoHitAt = len(result.Path)
			result.Path = append(result.Path, entry.Continuation...)
			result.Outcome = entry.Outcome
			result.Reason = model.ReasonMemoHit
			w.logger.Info("node already visited",
				"node", node.Title(),
				"additional_path_length", entry.Length,
				"outcome", entry.Outcome,
			)
			return nil
		}

		result.Path = append(result.Path, node)

		if node == w.target {
			result.Outcome = model.OutcomeValid
			result.Reason = model.ReasonReachedTarget
			return nil
		}

		if !page.HasContent() {
			var err error
			page, err = w.fetch(ctx, r, node.String())
			if err != nil {
				return w.fail(ctx, r, node, err)
			}
		}

		next, ok := w.extractor.NextLink(page)
		if !ok {
			result.Outcome = model.OutcomeInvalid
			result.Reason = model.ReasonDeadEnd
			w.logger.Debug("no qualifying link", "node", node)
			return nil
		}

		nextPage, err := w.fetch(ctx, r, next.String())
		if err != nil {
			return w.fail(ctx, r, next, err)
		}

		resolved := nextPage.URL
		if _, seen := r.visited[resolved]; seen || resolved.IsZero() {
			result.Outcome = model.OutcomeInvalid
			result.Reason = model.ReasonCycle
			w.logger.Debug("cycle detected", "node", resolved)
			return nil
		}
		r.visited[resolved] = struct{}{}

		w.logger.Debug("step", "from", node, "to", resolved)
		node, page = resolved, nextPage
	}
}

// fail ends the run as INVALID after a fetch failure, unless the failure
// was caused by cancellation.
func (w *Walker) fail(ctx context.Context, r *run, node model.Node, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	r.result.Outcome = model.OutcomeInvalid
	r.result.Reason = model.ReasonFetchFailed
	w.logger.Debug("fetch failed", "node", node, "error", err)
	return nil
}

// fetch waits for the politeness gate and fetches rawURL.
func (w *Walker) fetch(ctx context.Context, r *run, rawURL string) (*model.Page, error) {
	if err := w.throttle.Wait(ctx); err != nil {
		return nil, err
	}
	r.result.Fetches++
	return w.fetcher.Fetch(ctx, rawURL)
}
