package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/philowalk/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. Mermaid charts and GitHub-flavored alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the session report in Markdown format.
func (w *MarkdownWriter) Write(report *model.SessionReport) (int, error) {
	out := &countingWriter{w: w.output}
	md := markdown.NewMarkdown(out)

	w.writeHeader(md, report)
	w.writeStats(md, report)
	w.writeHistogram(md, report)
	w.writeRuns(md, report)
	w.writeFooter(md)

	err := md.Build()
	return out.n, err
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SessionReport) {
	md.H1("Getting to Philosophy")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Session", "`" + report.ID + "`"},
			{"Target", fmt.Sprintf("[%s](%s)", report.Target.Title(), report.Target)},
			{"Seed", "`" + report.SeedURL + "`"},
			{"Started", formatTime(report.StartedAt)},
			{"Runs", fmt.Sprintf("%d of %d", len(report.Runs), report.Requested)},
			{"Discarded", fmt.Sprintf("%d (%d duplicate seeds)", report.Discarded, report.Duplicates)},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeStats(md *markdown.Markdown, report *model.SessionReport) {
	stats := report.Stats

	md.H2("Statistics")
	md.PlainText("")

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
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if stats.Total() > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Run Outcomes"),
			piechart.WithShowData(true),
		)
		if stats.Valid > 0 {
			chart.LabelAndIntValue("Valid", uint64(stats.Valid))
		}
		if stats.Invalid > 0 {
			chart.LabelAndIntValue("Invalid", uint64(stats.Invalid))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case report.Error != "":
		md.Cautionf("The session stopped early: %s", report.Error)
	case stats.Total() == 0:
		md.Note("No runs were counted.")
	case stats.Valid == 0:
		md.Warningf("No run reached %s.", report.Target.Title())
	default:
		md.Tip(fmt.Sprintf("%s of runs reached %s.", formatPercent(stats.SuccessRate), report.Target.Title()))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeHistogram(md *markdown.Markdown, report *model.SessionReport) {
	rows := lengthRows(report.Stats)
	if len(rows) == 0 {
		return
	}

	md.H2("Path Lengths")
	md.PlainText("")

	table := make([][]string, len(rows))
	for i, r := range rows {
		table[i] = []string{strconv.Itoa(r[0]), strconv.Itoa(r[1])}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Length", "Valid runs"},
		Rows:   table,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeRuns(md *markdown.Markdown, report *model.SessionReport) {
	if len(report.Runs) == 0 {
		return
	}

	md.H2("Runs")
	md.PlainText("")

	rows := make([][]string, len(report.Runs))
	for i, run := range report.Runs {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncateString(run.Seed.Title(), 40),
			run.Outcome.String(),
			string(run.Reason),
			strconv.Itoa(run.Length()),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Seed", "Outcome", "Reason", "Length"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [philowalk](https://github.com/nao1215/philowalk)*")
}

// WriteList outputs stored sessions as a Markdown table.
func (w *MarkdownWriter) WriteList(sessions []model.SessionSummary) (int, error) {
	out := &countingWriter{w: w.output}
	md := markdown.NewMarkdown(out)

	md.H1("Saved Sessions")
	md.PlainText("")

	if len(sessions) == 0 {
		md.PlainText("No saved sessions.")
		return out.n, md.Build()
	}

	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		rows[i] = []string{
			"`" + s.ID + "`",
			formatTime(s.StartedAt),
			s.Target.Title(),
			fmt.Sprintf("%d/%d", s.Valid+s.Invalid, s.Requested),
			formatPercent(s.SuccessRate),
			summaryStatus(s),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Target", "Runs", "Success", "Status"},
		Rows:   rows,
	})

	err := md.Build()
	return out.n, err
}
