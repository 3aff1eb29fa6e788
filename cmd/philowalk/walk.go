package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/nao1215/philowalk/internal/config"
	"github.com/nao1215/philowalk/internal/crawler"
	"github.com/nao1215/philowalk/internal/database"
	"github.com/nao1215/philowalk/internal/fetch"
	"github.com/nao1215/philowalk/internal/log"
	"github.com/nao1215/philowalk/internal/memory"
	"github.com/nao1215/philowalk/internal/model"
	"github.com/nao1215/philowalk/internal/report"
	"github.com/nao1215/philowalk/internal/session"
)

// NewWalkCmd creates the walk command.
func NewWalkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Walk from random articles and report how many reach the target",
		Long: `Walk runs a session of walks. Every walk requests the seed URL, which
redirects to a random article, and then follows the first link in the body
text that is not in parentheses or italics. A walk is VALID when it reaches
the target article and INVALID when it loops, finds no usable link or a page
cannot be fetched.

The session ends when the requested number of walks has been counted. Walks
whose random seed was already used, or that never leave the seed, are
discarded and replaced.

Examples:
  # Run 100 walks
  philowalk walk -n 100

  # Aim at another article
  philowalk walk -n 50 --target https://en.wikipedia.org/wiki/Mathematics

  # Write a Markdown report to a file
  philowalk walk -n 200 --markdown -o report.md

  # Route requests through a local SOCKS5 proxy
  philowalk walk --proxy 127.0.0.1:9050`,
		Args: cobra.NoArgs,
		RunE: runWalkCmd,
	}

	// Session flags
	cmd.Flags().IntP("samples", "n", config.DefaultSamples,
		"Number of walks to count")
	cmd.Flags().String("target", config.DefaultTargetURL,
		"Article that counts as reached")
	cmd.Flags().String("seed", config.DefaultSeedURL,
		"URL that redirects to a random article")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent walks (the delay is shared)")
	cmd.Flags().Int("max-discards", config.DefaultMaxConsecutiveDiscards,
		"Fail after this many discarded walks in a row")

	// Fetch flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page request")
	cmd.Flags().IntP("retries", "r", config.DefaultMaxRetries,
		"Extra attempts after a network failure")
	cmd.Flags().DurationP("delay", "d", config.DefaultDelay,
		"Minimum spacing between page requests")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .philowalk in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Storage flags
	cmd.Flags().Bool("no-save", false,
		"Do not save the session to the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

func runWalkCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// A first interrupt ends the session early. Counted walks are still
	// reported and saved.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing session...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runWalk(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the configuration file and
// the command flags, in that order. Only flags set on the command line
// override file values.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	if flags.Changed("samples") {
		if cfg.Samples, err = flags.GetInt("samples"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("target") {
		if cfg.TargetURL, err = flags.GetString("target"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("seed") {
		if cfg.SeedURL, err = flags.GetString("seed"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-discards") {
		if cfg.MaxConsecutiveDiscards, err = flags.GetInt("max-discards"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("retries") {
		if cfg.MaxRetries, err = flags.GetInt("retries"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("delay") {
		if cfg.Delay, err = flags.GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	if noSave {
		cfg.SaveToDB = false
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// applyConfigFile loads the configuration file into cfg.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise a missing file is silently ignored.
func applyConfigFile(cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	if err := file.Apply(cfg); err != nil {
		return fmt.Errorf("failed to apply config file %s: %w", path, err)
	}
	return nil
}

// runWalk wires the components together and runs one session.
// The report is written and saved even when the session ends early; all
// failures are returned together.
func runWalk(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	client, err := fetch.NewHTTPClient(cfg.ProxyAddress)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	fetcher := fetch.New(client,
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxRetries(cfg.MaxRetries),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithLogger(logger),
	)

	walker := crawler.NewWalker(fetcher, crawler.NewParser(), memory.New(),
		crawler.WithSeedURL(cfg.SeedURL),
		crawler.WithTarget(model.ParseNode(cfg.TargetURL)),
		crawler.WithThrottle(crawler.NewThrottle(cfg.Delay)),
		crawler.WithWalkerLogger(logger),
	)

	bar := newProgressBar(cfg.Samples, stderr)
	sess := session.New(walker,
		session.WithWorkers(cfg.Workers),
		session.WithMaxConsecutiveDiscards(cfg.MaxConsecutiveDiscards),
		session.WithObserver(progressObserver(bar)),
		session.WithLogger(logger),
	)

	sessionReport, runErr := sess.Run(ctx, cfg.Samples)
	_ = bar.Finish() //nolint:errcheck // Progress output is best effort

	var result *multierror.Error
	if runErr != nil {
		result = multierror.Append(result, fmt.Errorf("session ended early: %w", runErr))
	}
	if err := outputReport(cfg, sessionReport, stdout); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to write report: %w", err))
	}
	if cfg.SaveToDB {
		// The session may have been cancelled; saving must not be.
		if err := saveSession(context.WithoutCancel(ctx), cfg.DBDir, sessionReport, logger); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// newProgressBar creates a progress bar like this:
// walking  42% [=================>                        ] (21/50, 1 it/s)
func newProgressBar(total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("walking"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// progressObserver advances bar for counted walks and shows the latest
// discard reason otherwise.
func progressObserver(bar *progressbar.ProgressBar) session.Observer {
	return func(e session.Event) {
		switch e.Kind {
		case session.EventCounted:
			_ = bar.Add(1) //nolint:errcheck // Progress output is best effort
		default:
			bar.Describe("walking (" + e.Kind.String() + " discarded)")
		}
	}
}

// outputReport writes the session report in the requested format.
func outputReport(cfg *config.Config, sessionReport *model.SessionReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	w, err := report.NewWriter(reportFormat(cfg.JSONReport, cfg.MarkdownReport), output, cfg.Verbose)
	if err != nil {
		return err
	}
	_, err = w.Write(sessionReport)
	return err
}

func reportFormat(jsonOutput, markdownOutput bool) report.Format {
	switch {
	case jsonOutput:
		return report.FormatJSON
	case markdownOutput:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// saveSession stores the session in the history database.
func saveSession(ctx context.Context, dbDir string, sessionReport *model.SessionReport, logger *slog.Logger) error {
	if sessionReport == nil {
		return errors.New("no session to save")
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveSession(ctx, sessionReport); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	logger.Info("session saved to database", "id", sessionReport.ID, "path", db.Path())
	return nil
}
