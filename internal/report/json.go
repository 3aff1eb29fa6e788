package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/philowalk/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's sufficient for our needs
// 2. The model types already carry json tags and custom marshalers
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonSession adds derived fields to the session report.
type jsonSession struct {
	*model.SessionReport
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Completed      bool    `json:"completed"`
}

// Write outputs the session report in JSON format.
func (w *JSONWriter) Write(report *model.SessionReport) (int, error) {
	return w.writeJSON(jsonSession{
		SessionReport:  report,
		ElapsedSeconds: report.Elapsed().Seconds(),
		Completed:      report.Completed(),
	})
}

// WriteList outputs the session listing as a JSON array.
func (w *JSONWriter) WriteList(sessions []model.SessionSummary) (int, error) {
	if sessions == nil {
		sessions = []model.SessionSummary{}
	}
	return w.writeJSON(sessions)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output
	data = append(data, '\n')
	return w.output.Write(data)
}
