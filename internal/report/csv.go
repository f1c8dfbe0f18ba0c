package report

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/nao1215/samradar/internal/model"
)

// CSVHeader is the header row of the CSV export.
var CSVHeader = []string{"Source", "Title", "Summary", "Risk Level", "Link"}

// CSVWriter exports the adverse-media results as CSV, one row per result
// in display order. Sanctions records are not part of the export.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the results in CSV format.
func (w *CSVWriter) Write(report *model.ScanReport) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(CSVHeader); err != nil {
		return 0, err
	}
	for _, r := range report.Results {
		row := []string{r.Source, r.Title, r.DisplaySummary(), r.RiskLevel.String(), r.Link}
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
