// Package report renders scan reports: a terminal table (simple), JSON,
// CSV and Markdown with a risk distribution pie chart.
//
// Sanctions records are always rendered as their own section ahead of the
// adverse-media results, and an empty result set is rendered as a normal
// report with manual quick-check links rather than as an error.
package report
