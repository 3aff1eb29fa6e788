package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Fetch and politeness values follow the settings the walk statistics were
// originally collected with.
const (
	// DefaultSamples is the number of counted runs per session.
	DefaultSamples = 500

	// DefaultWorkers keeps runs strictly sequential. Raising it speeds up a
	// session but the politeness delay is still shared by all workers.
	DefaultWorkers = 1

	// DefaultTimeout bounds a single fetch attempt.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxRetries is the number of extra attempts after a transport failure.
	DefaultMaxRetries = 1

	// DefaultDelay is the minimum spacing between two fetches.
	// 1 second keeps the load on the encyclopedia servers negligible.
	DefaultDelay = 1 * time.Second

	// DefaultMaxConsecutiveDiscards bounds how many runs in a row may be
	// discarded before the session fails.
	DefaultMaxConsecutiveDiscards = 100

	// DefaultSeedURL redirects to a random article on every request.
	DefaultSeedURL = "https://en.wikipedia.org/wiki/Special:Random"

	// DefaultTargetURL is the article whose reachability is measured.
	DefaultTargetURL = "https://en.wikipedia.org/wiki/Philosophy"

	// DefaultUserAgent identifies philowalk in HTTP requests.
	// Wikimedia asks automated clients to send a descriptive User-Agent.
	DefaultUserAgent = "philowalk/1.0 (+https://github.com/nao1215/philowalk)"

	// DefaultMaxBodySize limits the response body size to read.
	// Long articles stay well below 5MB.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "philowalk"
)

// Config holds all configuration options for philowalk.
// This struct is populated from the config file and CLI flags and passed
// through the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Samples is the number of counted runs to collect.
	Samples int

	// Workers is the number of runs executed concurrently.
	Workers int

	// Timeout bounds each fetch attempt.
	Timeout time.Duration

	// MaxRetries is the number of retries after a failed fetch attempt.
	// Zero means a single attempt.
	MaxRetries int

	// Delay is the politeness interval between consecutive fetches.
	Delay time.Duration

	// MaxConsecutiveDiscards is the number of discarded runs in a row after
	// which the session fails.
	MaxConsecutiveDiscards int

	// SeedURL is requested at the start of every run and must redirect to a
	// random article.
	SeedURL string

	// TargetURL is the article walks try to reach.
	TargetURL string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// Empty means direct connections.
	ProxyAddress string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .philowalk in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output with a pie chart.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory holding the session history database.
	// Defaults to XDG data directory (~/.local/share/philowalk on Linux).
	DBDir string

	// SaveToDB indicates whether finished sessions are saved to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (samples, timeout, delay).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Samples:                DefaultSamples,
		Workers:                DefaultWorkers,
		Timeout:                DefaultTimeout,
		MaxRetries:             DefaultMaxRetries,
		Delay:                  DefaultDelay,
		MaxConsecutiveDiscards: DefaultMaxConsecutiveDiscards,
		SeedURL:                DefaultSeedURL,
		TargetURL:              DefaultTargetURL,
		UserAgent:              DefaultUserAgent,
		MaxBodySize:            DefaultMaxBodySize,
		DBDir:                  XDGDataDir(),
		SaveToDB:               true,
	}
}

// XDGDataDir returns the XDG data directory for philowalk.
// On Linux: ~/.local/share/philowalk
// On macOS: ~/Library/Application Support/philowalk
// On Windows: %LOCALAPPDATA%\philowalk
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for philowalk.
// On Linux: ~/.config/philowalk
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any fetch is made.
func (c *Config) Validate() error {
	if c.Samples < 1 {
		return ErrInvalidSamples
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRetries < 0 {
		return ErrInvalidRetries
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.MaxConsecutiveDiscards < 1 {
		return ErrInvalidMaxDiscards
	}
	if !isHTTPURL(c.SeedURL) {
		return ErrInvalidSeed
	}
	if !isHTTPURL(c.TargetURL) {
		return ErrInvalidTarget
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// isHTTPURL reports whether raw is an absolute http or https URL with a host.
func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
