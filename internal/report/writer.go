package report

import (
	"io"
	"net/url"
	"strings"

	"github.com/nao1215/samradar/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface so the CLI can pick a format from
// flags and the HTTP API can reuse the CSV export with the same call.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ScanReport) (int, error)
}

// MultiWriter writes to multiple Writers in order, stopping at the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
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

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// QuickLink is a manual check URL offered when a scan finds nothing.
type QuickLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// QuickLinks returns manual quick-check links for entity.
func QuickLinks(entity string) []QuickLink {
	return []QuickLink{
		{Label: "OpenSanctions", URL: "https://api.opensanctions.org/search?q=" + escape(entity)},
		{Label: "DuckDuckGo Instant", URL: "https://api.duckduckgo.com/?q=" + escape(entity+" sanctions") + "&format=json"},
		{Label: "Bing search", URL: "https://www.bing.com/search?q=" + escape(entity+" sanctions")},
	}
}

// escape percent-encodes s for a query value, spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// statusText describes how the scan ended.
func statusText(report *model.ScanReport) string {
	switch {
	case report.TimedOut:
		return "TIMED OUT (partial results)"
	case report.ErrorMessage != "":
		return "ERROR - " + report.ErrorMessage
	default:
		return "Complete"
	}
}

// truncate shortens s to maxRunes runes with an ellipsis.
func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// noHitsMessage is shown when no adverse-media result was kept.
const noHitsMessage = "No adverse media hits found. Try alternate spellings, enable NewsData, or enable Wikipedia alias discovery."

// dateLayout is used for scan dates in text and Markdown output.
const dateLayout = "2006-01-02 15:04:05 MST"
