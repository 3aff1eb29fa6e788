package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/philowalk/internal/model"
)

// Defaults mirror the values the sampling runs were tuned with.
const (
	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxRetries is the number of extra attempts after the first.
	DefaultMaxRetries = 1

	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize int64 = 5 * 1024 * 1024

	// DefaultUserAgent identifies the walker to the encyclopedia servers.
	DefaultUserAgent = "philowalk/1.0 (+https://github.com/nao1215/philowalk)"
)

// Fetcher retrieves and cleans article pages.
// It is safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	cleaner     *Cleaner
	timeout     time.Duration
	maxRetries  int
	maxBodySize int64
	userAgent   string
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per response.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithLogger sets the logger for per-attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher using client for all requests.
// A nil client falls back to a direct client from NewHTTPClient.
func New(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client, _ = NewHTTPClient("") //nolint:errcheck // cannot fail without a proxy
	}

	f := &Fetcher{
		client:      client,
		cleaner:     NewCleaner(),
		timeout:     DefaultTimeout,
		maxRetries:  DefaultMaxRetries,
		maxBodySize: DefaultMaxBodySize,
		userAgent:   DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// Fetch retrieves rawURL and returns the cleaned page.
//
// Transport failures (including per-attempt timeouts) are retried up to the
// configured retry count. A non-2xx status returns ErrUnexpectedStatus at
// once. Cancellation of ctx stops retrying and returns ctx.Err().
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	attempts := 1 + f.maxRetries
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		page, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryable(err) {
			return nil, err
		}

		lastErr = err
		f.logger.Debug("fetch attempt failed",
			"url", rawURL,
			"attempt", attempt,
			"attempts", attempts,
			"error", err,
		)
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrRetriesExhausted, rawURL, attempts, lastErr)
}

// fetchOnce performs a single attempt bounded by the per-attempt timeout.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*model.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &permanentError{err: fmt.Errorf("invalid request for %s: %w", rawURL, err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &permanentError{err: fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, rawURL, resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}

	content := strings.TrimSpace(f.cleaner.Clean(body))
	if content == "" {
		return nil, &permanentError{err: fmt.Errorf("%w: %s", ErrEmptyContent, rawURL)}
	}

	page := &model.Page{
		URL:         model.CanonicalNode(resp.Request.URL),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Content:     content,
	}
	page.ComputeHash()

	f.logger.Debug("fetched page",
		"url", rawURL,
		"resolved", page.URL,
		"status", page.StatusCode,
		"bytes", len(body),
		"hash", page.Hash,
	)

	return page, nil
}

// permanentError marks a failure that another attempt cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var pe *permanentError
	return !errors.As(err, &pe)
}
