package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/nao1215/samradar/internal/model"
)

// Column widths of the terminal result table.
const (
	titleWidth = 60
	noteWidth  = 80
)

// SimpleWriter outputs human-readable text reports for the terminal.
//
// Design decision: We use plain text with ASCII section rules and
// tablewriter tables rather than ANSI colors, so output can be piped to
// files or other tools unchanged.
type SimpleWriter struct {
	baseWriter

	// verbose adds result summaries and the per-connector outcomes.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
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

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	if err := w.writeSanctions(&sb, report); err != nil {
		return 0, err
	}
	w.writeSummary(&sb, report)
	if err := w.writeResults(&sb, report); err != nil {
		return 0, err
	}
	if w.verbose {
		if err := w.writeOutcomes(&sb, report); err != nil {
			return 0, err
		}
	}
	w.writeFooter(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     SAM-RADAR SCREENING REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Entity:         %s\n", report.Entity))
	if len(report.Aliases) > 1 {
		sb.WriteString(fmt.Sprintf("Aliases:        %s\n", strings.Join(report.Aliases[1:], ", ")))
	}
	sb.WriteString(fmt.Sprintf("Scan ID:        %s\n", report.ScanID))
	sb.WriteString(fmt.Sprintf("Scan Date:      %s\n", report.DateScanned.Format(dateLayout)))
	sb.WriteString(fmt.Sprintf("Query Bank:     %d queries\n", report.QueryBankSize))
	sb.WriteString(fmt.Sprintf("Status:         %s\n", statusText(report)))
	sb.WriteString("\n")
}

// writeSanctions writes the sanctions section. Any record is a high risk
// signal on its own.
func (w *SimpleWriter) writeSanctions(sb *strings.Builder, report *model.ScanReport) error {
	section(sb, "SANCTIONS / WATCHLIST")

	if !report.HasSanctions() {
		sb.WriteString("  No quick sanctions matches found.\n\n")
		return nil
	}

	sb.WriteString(fmt.Sprintf("  [!!!] Sanctions hits found: %d - treat as HIGH RISK\n\n", len(report.Sanctions)))

	rows := make([][]string, 0, len(report.Sanctions))
	for _, s := range report.Sanctions {
		rows = append(rows, []string{s.Name, s.Type, s.Source, truncate(s.Note, noteWidth)})
	}
	return renderTable(sb, []string{"Name", "Type", "Source", "Note"}, rows)
}

// writeSummary writes the risk summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.ScanReport) {
	section(sb, "RISK SUMMARY")

	s := report.Summary()
	sb.WriteString(fmt.Sprintf("  HIGH:     %d\n", s.High))
	sb.WriteString(fmt.Sprintf("  MEDIUM:   %d\n", s.Medium))
	sb.WriteString(fmt.Sprintf("  LOW:      %d\n", s.Low))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:    %d results\n", s.Total()))
	sb.WriteString("\n")
}

// writeResults writes the adverse-media table, or the quick-check links
// when there is nothing to show.
func (w *SimpleWriter) writeResults(sb *strings.Builder, report *model.ScanReport) error {
	section(sb, "ADVERSE MEDIA / MENTIONS")

	if !report.HasResults() {
		sb.WriteString("  " + noHitsMessage + "\n\n")
		sb.WriteString("  Manual quick-check links (open in browser):\n")
		for _, l := range QuickLinks(report.Entity) {
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", l.Label, l.URL))
		}
		sb.WriteString("\n")
		return nil
	}

	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		rows = append(rows, []string{r.RiskLevel.String(), r.Source, truncate(r.Title, titleWidth), r.Link})
	}
	if err := renderTable(sb, []string{"Risk", "Source", "Title", "Link"}, rows); err != nil {
		return err
	}

	if w.verbose {
		for i, r := range report.Results {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, r.DisplaySummary()))
		}
		sb.WriteString("\n")
	}
	return nil
}

// writeOutcomes writes the per-connector call statistics and the reason of
// every failed call.
func (w *SimpleWriter) writeOutcomes(sb *strings.Builder, report *model.ScanReport) error {
	section(sb, "CONNECTOR CALLS")

	counts := report.OutcomeCounts()
	sb.WriteString(fmt.Sprintf("  ok: %d  failed: %d  skipped: %d\n\n",
		counts[model.OutcomeOK], counts[model.OutcomeFailed], counts[model.OutcomeSkipped]))

	var rows [][]string
	for _, o := range report.Outcomes {
		if o.Status != model.OutcomeFailed {
			continue
		}
		rows = append(rows, []string{o.Connector, truncate(o.Query, 40), truncate(o.Reason, noteWidth)})
	}
	if len(rows) == 0 {
		return nil
	}
	return renderTable(sb, []string{"Connector", "Query", "Reason"}, rows)
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Scan finished in %s\n", report.Elapsed.Round(10*time.Millisecond)))
	sb.WriteString("Report generated by SAM-Radar\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// renderTable renders rows with tablewriter and appends the result.
func renderTable(sb *strings.Builder, header []string, rows [][]string) error {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	sb.Write(buf.Bytes())
	sb.WriteString("\n")
	return nil
}
