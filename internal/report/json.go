package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/samradar/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// version is written into the wrapper; empty means the bare report.
	version string

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// WithVersion wraps the report in a JSONReport carrying version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport wraps a report with output-only metadata.
//
// Design decision: We wrap the report rather than extending ScanReport so
// that stored reports stay free of presentation fields.
type JSONReport struct {
	// Version is the SAM-Radar version that generated this report.
	Version string `json:"version"`

	// Report is the full scan report.
	Report *model.ScanReport `json:"report"`

	// Summary holds the result counts per risk level.
	Summary model.RiskSummary `json:"summary"`

	// QuickLinks is set when no adverse-media result was found.
	QuickLinks []QuickLink `json:"quick_links,omitempty"`
}

// NewJSONReport creates a JSONReport wrapper.
func NewJSONReport(report *model.ScanReport, version string) *JSONReport {
	j := &JSONReport{
		Version: version,
		Report:  report,
		Summary: report.Summary(),
	}
	if !report.HasResults() {
		j.QuickLinks = QuickLinks(report.Entity)
	}
	return j
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	if w.version != "" {
		return w.writeJSON(NewJSONReport(report, w.version))
	}
	return w.writeJSON(report)
}

// writeJSON marshals v and writes it with a trailing newline.
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
	data = append(data, '\n')
	return w.output.Write(data)
}
