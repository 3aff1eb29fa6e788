package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/nao1215/philowalk/internal/model"
)

// barWidth is the width of the longest histogram bar.
const barWidth = 40

// SimpleWriter outputs human-readable text reports.
// Statistics and listings are rendered as tables.
type SimpleWriter struct {
	baseWriter

	// verbose adds one table row per counted run.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with the individual runs.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the session report in human-readable format.
func (w *SimpleWriter) Write(report *model.SessionReport) (int, error) {
	out := &countingWriter{w: w.output}

	steps := []func(io.Writer, *model.SessionReport) error{
		w.writeHeader,
		w.writeStats,
		w.writeHistogram,
		w.writeRuns,
		w.writeFooter,
	}
	for _, step := range steps {
		if err := step(out, report); err != nil {
			return out.n, err
		}
	}
	return out.n, nil
}

func (w *SimpleWriter) writeHeader(out io.Writer, report *model.SessionReport) error {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      GETTING TO PHILOSOPHY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Session:    %s\n", report.ID)
	fmt.Fprintf(&sb, "Target:     %s\n", report.Target)
	fmt.Fprintf(&sb, "Seed:       %s\n", report.SeedURL)
	fmt.Fprintf(&sb, "Started:    %s\n", formatTime(report.StartedAt))
	fmt.Fprintf(&sb, "Elapsed:    %s\n", report.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(&sb, "Runs:       %d of %d (%d discarded, %d duplicate seeds)\n",
		len(report.Runs), report.Requested, report.Discarded, report.Duplicates)
	fmt.Fprintf(&sb, "Status:     %s\n\n", statusText(report))

	_, err := io.WriteString(out, sb.String())
	return err
}

func (w *SimpleWriter) writeStats(out io.Writer, report *model.SessionReport) error {
	if err := writeSection(out, "STATISTICS"); err != nil {
		return err
	}

	stats := report.Stats
	table := tablewriter.NewWriter(out)
	table.Header("Metric", "Value")
	rows := [][]string{
		{"Valid", strconv.Itoa(stats.Valid)},
		{"Invalid", strconv.Itoa(stats.Invalid)},
		{"Success rate", formatPercent(stats.SuccessRate)},
	}
	if stats.HasValidRuns() {
		rows = append(rows,
			[]string{"Shortest path", strconv.Itoa(stats.Min)},
			[]string{"Longest path", strconv.Itoa(stats.Max)},
			[]string{"Mean length", formatFloat(stats.Mean)},
			[]string{"Median length", formatFloat(stats.Median)},
		)
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := io.WriteString(out, "\n")
	return err
}

func (w *SimpleWriter) writeHistogram(out io.Writer, report *model.SessionReport) error {
	rows := lengthRows(report.Stats)
	if len(rows) == 0 {
		return nil
	}
	if err := writeSection(out, "PATH LENGTHS (valid runs)"); err != nil {
		return err
	}

	peak := 0
	for _, r := range rows {
		peak = max(peak, r[1])
	}

	table := tablewriter.NewWriter(out)
	table.Header("Length", "Runs", "")
	for _, r := range rows {
		bar := strings.Repeat("#", max(1, r[1]*barWidth/peak))
		if err := table.Append([]string{strconv.Itoa(r[0]), strconv.Itoa(r[1]), bar}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := io.WriteString(out, "\n")
	return err
}

func (w *SimpleWriter) writeRuns(out io.Writer, report *model.SessionReport) error {
	if !w.verbose || len(report.Runs) == 0 {
		return nil
	}
	if err := writeSection(out, "RUNS"); err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("#", "Seed", "Outcome", "Reason", "Length", "Fetches")
	for i, run := range report.Runs {
		if err := table.Append([]string{
			strconv.Itoa(i + 1),
			truncateString(run.Seed.Title(), 40),
			run.Outcome.String(),
			string(run.Reason),
			strconv.Itoa(run.Length()),
			strconv.Itoa(run.Fetches),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := io.WriteString(out, "\n")
	return err
}

func (w *SimpleWriter) writeFooter(out io.Writer, _ *model.SessionReport) error {
	_, err := io.WriteString(out, strings.Repeat("=", 70)+"\n")
	return err
}

// WriteList outputs stored sessions as a table, one row per session.
func (w *SimpleWriter) WriteList(sessions []model.SessionSummary) (int, error) {
	out := &countingWriter{w: w.output}
	if len(sessions) == 0 {
		_, err := io.WriteString(out, "No saved sessions.\n")
		return out.n, err
	}

	table := tablewriter.NewWriter(out)
	table.Header("ID", "Started", "Target", "Runs", "Success", "Status")
	for _, s := range sessions {
		if err := table.Append([]string{
			s.ID,
			formatTime(s.StartedAt),
			s.Target.Title(),
			fmt.Sprintf("%d/%d", s.Valid+s.Invalid, s.Requested),
			formatPercent(s.SuccessRate),
			summaryStatus(s),
		}); err != nil {
			return out.n, err
		}
	}
	err := table.Render()
	return out.n, err
}

func writeSection(out io.Writer, title string) error {
	rule := strings.Repeat("-", 70)
	_, err := fmt.Fprintf(out, "%s\n%s\n%s\n\n", rule, title, rule)
	return err
}
