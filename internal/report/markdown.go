package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/samradar/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for case files and sharing with reviewers.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation, with GitHub-flavored alerts for the sanctions banner.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSanctions(md, report)
	w.writeSummary(md, report)
	w.writeResults(md, report)
	w.writeOutcomes(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("SAM-Radar Screening Report")
	md.PlainText("")

	rows := [][]string{
		{"Entity", "**" + cell(report.Entity) + "**"},
	}
	if len(report.Aliases) > 1 {
		rows = append(rows, []string{"Aliases", cell(strings.Join(report.Aliases[1:], ", "))})
	}
	rows = append(rows,
		[]string{"Scan ID", "`" + report.ScanID + "`"},
		[]string{"Scan Date", report.DateScanned.Format(dateLayout)},
		[]string{"Query Bank", strconv.Itoa(report.QueryBankSize) + " queries"},
		[]string{"Status", cell(statusText(report))},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSanctions writes the sanctions section.
func (w *MarkdownWriter) writeSanctions(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Sanctions / Watchlist")
	md.PlainText("")

	if !report.HasSanctions() {
		md.PlainText("No quick sanctions matches found.")
		md.PlainText("")
		return
	}

	md.Cautionf("Sanctions hits found: %d. Treat as HIGH RISK.", len(report.Sanctions))
	md.PlainText("")

	rows := make([][]string, len(report.Sanctions))
	for i, s := range report.Sanctions {
		note := s.Note
		if note == "" {
			note = "-"
		}
		rows[i] = []string{cell(s.Name), cell(s.Type), cell(s.Source), cell(truncate(note, noteWidth))}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Type", "Source", "Note"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the risk summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ScanReport) {
	s := report.Summary()

	md.H2("Risk Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Risk", "Count"},
		Rows: [][]string{
			{"🔴 High", strconv.Itoa(s.High)},
			{"🟡 Medium", strconv.Itoa(s.Medium)},
			{"🔵 Low", strconv.Itoa(s.Low)},
			{"**Total**", "**" + strconv.Itoa(s.Total()) + "**"},
		},
	})
	md.PlainText("")

	if s.Total() > 0 {
		w.writePieChart(md, s)
	}
	w.writeAlert(md, s)
}

// writePieChart writes a mermaid pie chart for the risk distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.RiskSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Adverse Media Risk Distribution"),
		piechart.WithShowData(true),
	)

	for _, level := range model.RiskLevels {
		if n := s.Count(level); n > 0 {
			chart.LabelAndIntValue(level.String(), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the highest risk present.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s model.RiskSummary) {
	switch {
	case s.High > 0:
		md.Warningf("%d high risk result(s) mention enforcement or criminal terms and need review.", s.High)
	case s.Medium > 0:
		md.Importantf("%d medium risk result(s) mention investigations or allegations.", s.Medium)
	case s.Total() > 0:
		md.Note("Only low risk mentions were found.")
	default:
		md.Tip("No adverse media results were kept.")
	}
	md.PlainText("")
}

// writeResults writes the results grouped by risk level, or the quick-check
// links when there are none.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Adverse Media / Mentions")
	md.PlainText("")

	if !report.HasResults() {
		md.PlainText(noHitsMessage)
		md.PlainText("")
		md.PlainText("Manual quick-check links:")
		md.PlainText("")
		links := QuickLinks(report.Entity)
		items := make([]string, len(links))
		for i, l := range links {
			items[i] = fmt.Sprintf("[%s](%s)", l.Label, l.URL)
		}
		md.BulletList(items...)
		md.PlainText("")
		return
	}

	headers := map[model.RiskLevel]string{
		model.RiskHigh:   "### 🔴 High",
		model.RiskMedium: "### 🟡 Medium",
		model.RiskLow:    "### 🔵 Low",
	}
	for _, level := range model.RiskLevels {
		results := report.ResultsByRisk(level)
		if len(results) == 0 {
			continue
		}
		md.PlainText(headers[level])
		md.PlainText("")
		w.writeResultsTable(md, results)
	}
}

// writeResultsTable writes one table of results followed by collapsible
// summaries.
func (w *MarkdownWriter) writeResultsTable(md *markdown.Markdown, results []model.Result) {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			cell(r.Source),
			cell(truncate(r.Title, titleWidth)),
			fmt.Sprintf("[link](%s)", r.Link),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Title", "Link"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range results {
		if r.Summary != "" {
			md.Details(r.Title, r.DisplaySummary())
		}
	}
	md.PlainText("")
}

// writeOutcomes writes the connector call statistics.
func (w *MarkdownWriter) writeOutcomes(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Outcomes) == 0 {
		return
	}

	type tally struct{ ok, failed, skipped, hits int }
	var order []string
	byConnector := make(map[string]*tally)
	for _, o := range report.Outcomes {
		t, ok := byConnector[o.Connector]
		if !ok {
			t = &tally{}
			byConnector[o.Connector] = t
			order = append(order, o.Connector)
		}
		switch o.Status {
		case model.OutcomeOK:
			t.ok++
		case model.OutcomeFailed:
			t.failed++
		case model.OutcomeSkipped:
			t.skipped++
		}
		t.hits += o.Hits
	}

	rows := make([][]string, len(order))
	for i, name := range order {
		t := byConnector[name]
		rows[i] = []string{
			name,
			strconv.Itoa(t.ok),
			strconv.Itoa(t.failed),
			strconv.Itoa(t.skipped),
			strconv.Itoa(t.hits),
		}
	}

	md.H2("Connector Calls")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Connector", "OK", "Failed", "Skipped", "Raw Hits"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [SAM-Radar](https://github.com/nao1215/samradar)*")
}

// cell escapes characters that would break a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}
