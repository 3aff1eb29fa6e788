package report

import (
	"errors"
	"io"
	"strings"

	"github.com/nao1215/philowalk/internal/model"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or a buffer
// with the same API.
type Writer interface {
	// Write outputs a session report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.SessionReport) (int, error)

	// WriteList outputs a listing of stored sessions.
	WriteList(sessions []model.SessionSummary) (int, error)
}

// Format names an output format.
type Format string

const (
	// FormatText is the human-readable table format.
	FormatText Format = "text"
	// FormatJSON is indented JSON.
	FormatJSON Format = "json"
	// FormatMarkdown is GitHub-flavored Markdown.
	FormatMarkdown Format = "markdown"
)

// NewWriter returns the Writer for format.
// An empty format selects FormatText.
func NewWriter(format Format, output io.Writer, verbose bool) (Writer, error) {
	switch Format(strings.ToLower(string(format))) {
	case "", FormatText:
		return NewSimpleWriter(output, WithVerbose(verbose)), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, ErrUnknownFormat
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.SessionReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteList outputs the listing to all configured Writers.
func (m *MultiWriter) WriteList(sessions []model.SessionSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteList(sessions)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter counts bytes written through it.
// tablewriter and markdown render straight into an io.Writer and do not
// report sizes.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

const timeLayout = "2006-01-02 15:04:05 MST"
