package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/samradar/internal/database"
	"github.com/nao1215/samradar/internal/model"
)

// noResultsMessage is shown for a scan without results or sanctions.
const noResultsMessage = "No results"

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [entity]",
		Short: "Compare screening results with earlier scans",
		Long: `Compare displays differences between the latest and a previous scan of an entity.

This command retrieves historical scan data from the database and shows:
- New results that appeared since the previous scan
- Resolved results that are no longer found
- Changes in High, Medium and Low result counts and sanctions records

The comparison requires at least two scans in the database for the specified
entity. Use 'samradar scan' to perform scans and save results.

Examples:
  # Compare latest two scans for an entity
  samradar compare "Acme Holdings"

  # List all scan history for an entity
  samradar compare --list "Acme Holdings"

  # Compare with a specific historical scan by ID
  samradar compare --with-scan-id 5 "Acme Holdings"

  # Output comparison in JSON format
  samradar compare --json "Acme Holdings"

  # List all screened entities in the database
  samradar compare --list-entities`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified entity")
	cmd.Flags().BoolP("list-entities", "L", false,
		"List all screened entities in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	cmd.Flags().String("db-dir", "",
		"Scan history directory (default: XDG data directory)")

	return cmd
}

// compareOptions holds the parsed compare flags.
type compareOptions struct {
	entity     string
	withScanID int64
	since      string
	json       bool
	markdown   bool
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listEntities, err := cmd.Flags().GetBool("list-entities")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	var opts compareOptions
	if !listEntities {
		if len(args) == 0 {
			return errors.New("entity name is required (use --list-entities to see screened entities)")
		}
		opts.entity, err = model.NormalizeEntity(args[0])
		if err != nil {
			return err
		}
	}

	dir, err := dbDir(cmd)
	if err != nil {
		return err
	}
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listEntities {
		return listScannedEntities(ctx, out, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, out, db, opts.entity)
	}

	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if opts.json && opts.markdown {
		return errors.New("choose only one of --json and --markdown")
	}
	if opts.withScanID, err = cmd.Flags().GetInt64("with-scan-id"); err != nil {
		return err
	}
	if opts.since, err = cmd.Flags().GetString("since"); err != nil {
		return err
	}

	return runComparison(ctx, out, db, opts)
}

// listScannedEntities lists all entities that have scan records in the database.
func listScannedEntities(ctx context.Context, out io.Writer, db *database.ScanDB) error {
	entities, err := db.ListScannedEntities(ctx)
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}

	if len(entities) == 0 {
		fmt.Fprintln(out, "No screened entities found in the database.")
		fmt.Fprintln(out, "\nUse 'samradar scan <entity>' to screen an entity.")
		return nil
	}

	fmt.Fprintf(out, "Screened entities (%d):\n\n", len(entities))
	for _, entity := range entities {
		fmt.Fprintf(out, "  • %s\n", entity)
	}
	fmt.Fprintln(out, "\nUse 'samradar compare --list <entity>' to see scan history for an entity.")

	return nil
}

// listScanHistory lists all scan records for a specific entity.
func listScanHistory(ctx context.Context, out io.Writer, db *database.ScanDB, entity string) error {
	history, err := db.HistoryWithMetadata(ctx, entity)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No scan history found for %s\n", entity)
		fmt.Fprintln(out, "\nUse 'samradar scan' to screen this entity.")
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", entity, len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %s\n", "ID", "Date", "Risk Summary")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, meta := range history {
		fmt.Fprintf(out, "  %-6d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			formatRiskSummary(meta.RiskSummary),
		)
	}

	fmt.Fprintln(out, "\nUse 'samradar compare <entity>' to compare the latest two scans.")
	fmt.Fprintln(out, "Use 'samradar compare --with-scan-id <id> <entity>' to compare with a specific scan.")

	return nil
}

// formatRiskSummary formats a risk summary into a compact string.
func formatRiskSummary(s model.RiskSummary) string {
	var parts []string
	if s.Sanctions > 0 {
		parts = append(parts, fmt.Sprintf("S:%d", s.Sanctions))
	}
	if s.High > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", s.High))
	}
	if s.Medium > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", s.Medium))
	}
	if s.Low > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", s.Low))
	}

	if len(parts) == 0 {
		return noResultsMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between scan reports.
func runComparison(ctx context.Context, out io.Writer, db *database.ScanDB, opts compareOptions) error {
	reports, err := db.History(ctx, opts.entity)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no scan history found for %s", opts.entity)
	}
	if len(reports) < 2 && opts.withScanID == 0 && opts.since == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
	}

	// Latest report is always the current one
	current := reports[0]
	var previous *model.ScanReport

	switch {
	case opts.withScanID > 0:
		previous, err = db.GetByID(ctx, opts.withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", opts.withScanID, err)
		}
		if previous == nil {
			return fmt.Errorf("scan with ID %d not found", opts.withScanID)
		}
		if !strings.EqualFold(previous.Entity, opts.entity) {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", opts.withScanID, previous.Entity, opts.entity)
		}
	case opts.since != "":
		sinceDate, err := time.ParseInLocation("2006-01-02", opts.since, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Reports are newest first, so iterate in reverse to find the
		// oldest report at or after the date.
		for i := len(reports) - 1; i >= 0; i-- {
			if !reports[i].DateScanned.Before(sinceDate) {
				previous = reports[i]
				break
			}
		}
		if previous == nil {
			return fmt.Errorf("no scans found since %s", opts.since)
		}
		if previous == current {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", opts.since)
		}
	default:
		previous = reports[1]
	}

	diff := model.CompareReports(previous, current)

	switch {
	case opts.json:
		return outputComparisonJSON(out, diff)
	case opts.markdown:
		return outputComparisonMarkdown(out, diff)
	default:
		return outputComparisonText(out, diff)
	}
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, diff *model.ScanDiff) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(diff)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, diff *model.ScanDiff) error {
	fmt.Fprintf(out, "# Scan Comparison: %s\n\n", diff.Entity)

	fmt.Fprintln(out, "## Summary")
	fmt.Fprintf(out, "\n**Risk Status:** %s\n\n", formatRiskDirection(diff.Direction))

	prev, cur := diff.PreviousScan.Summary, diff.CurrentScan.Summary
	fmt.Fprintln(out, "| Metric | Previous | Current | Change |")
	fmt.Fprintln(out, "|--------|----------|---------|--------|")
	fmt.Fprintf(out, "| Date | %s | %s | - |\n",
		diff.PreviousScan.DateScanned.Local().Format("2006-01-02 15:04"),
		diff.CurrentScan.DateScanned.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "| Sanctions | %d | %d | %s |\n",
		prev.Sanctions, cur.Sanctions, formatDelta(diff.SanctionsDelta()))
	for _, level := range model.RiskLevels {
		fmt.Fprintf(out, "| %s | %d | %d | %s |\n",
			level, prev.Count(level), cur.Count(level), formatDelta(diff.Delta(level)))
	}
	fmt.Fprintf(out, "| **Total** | **%d** | **%d** | **%s** |\n",
		prev.Total(), cur.Total(), formatDelta(cur.Total()-prev.Total()))

	if len(diff.NewResults) > 0 {
		fmt.Fprintf(out, "\n## New Results (%d)\n\n", len(diff.NewResults))
		for _, r := range diff.NewResults {
			fmt.Fprintf(out, "- **[%s]** %s: [%s](%s)\n", r.RiskLevel, r.Source, r.Title, r.Link)
		}
	}

	if len(diff.ResolvedResults) > 0 {
		fmt.Fprintf(out, "\n## Resolved Results (%d)\n\n", len(diff.ResolvedResults))
		for _, r := range diff.ResolvedResults {
			fmt.Fprintf(out, "- ~~**[%s]** %s: %s~~\n", r.RiskLevel, r.Source, r.Title)
		}
	}

	if diff.UnchangedCount > 0 {
		fmt.Fprintf(out, "\n---\n\n*%d results unchanged*\n", diff.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, diff *model.ScanDiff) error {
	fmt.Fprintf(out, "Scan Comparison: %s\n", diff.Entity)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nRisk Status: %s\n", formatRiskDirection(diff.Direction))

	fmt.Fprintf(out, "\nPrevious scan: %s\n", diff.PreviousScan.DateScanned.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current scan:  %s\n", diff.CurrentScan.DateScanned.Local().Format("2006-01-02 15:04:05"))

	prev, cur := diff.PreviousScan.Summary, diff.CurrentScan.Summary
	fmt.Fprintln(out, "\nResults Summary:")
	fmt.Fprintf(out, "  %-10s  %-10s  %-10s  %-10s\n", "Risk", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Sanctions",
		prev.Sanctions, cur.Sanctions, formatDelta(diff.SanctionsDelta()))
	for _, level := range model.RiskLevels {
		fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", level,
			prev.Count(level), cur.Count(level), formatDelta(diff.Delta(level)))
	}
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Total",
		prev.Total(), cur.Total(), formatDelta(cur.Total()-prev.Total()))

	if len(diff.NewResults) > 0 {
		fmt.Fprintf(out, "\nNew Results (%d):\n", len(diff.NewResults))
		for _, r := range diff.NewResults {
			fmt.Fprintf(out, "  [+] [%s] %s: %s\n", r.RiskLevel, r.Source, r.Title)
			fmt.Fprintf(out, "      %s\n", r.Link)
		}
	}

	if len(diff.ResolvedResults) > 0 {
		fmt.Fprintf(out, "\nResolved Results (%d):\n", len(diff.ResolvedResults))
		for _, r := range diff.ResolvedResults {
			fmt.Fprintf(out, "  [-] [%s] %s: %s\n", r.RiskLevel, r.Source, r.Title)
		}
	}

	if diff.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d results\n", diff.UnchangedCount)
	}

	return nil
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case model.RiskDirectionImproved:
		return "IMPROVED (risk decreased)"
	case model.RiskDirectionWorsened:
		return "WORSENED (risk increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
