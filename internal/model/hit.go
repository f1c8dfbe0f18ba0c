package model

import (
	"errors"
	"strings"
)

// ErrEmptyEntity is returned when an entity name is empty after trimming.
var ErrEmptyEntity = errors.New("entity name is empty")

// SummaryMaxRunes is the display length of the combined title and summary
// used in tables and CSV exports.
const SummaryMaxRunes = 600

// Hit is a raw search hit returned by a source connector.
// The link is the natural identity candidate but is not unique across
// sources because tracking query strings vary; see LinkKey.
type Hit struct {
	// Source is the connector name that produced the hit (e.g. "Bing").
	Source string `json:"source"`

	// Title is the headline or result title.
	Title string `json:"title"`

	// Summary is the snippet or description. It may be empty.
	Summary string `json:"summary"`

	// Link is the absolute URL of the hit.
	Link string `json:"link"`
}

// Text returns the text the relevance filter and risk scorer look at:
// the title and summary joined by a single space.
func (h Hit) Text() string {
	return h.Title + " " + h.Summary
}

// Result is a relevant, deduplicated hit with its derived risk level.
type Result struct {
	Hit

	// RiskLevel is computed from Hit.Text().
	RiskLevel RiskLevel `json:"risk_level"`

	// RiskText is the human-readable risk level.
	RiskText string `json:"risk_text"`
}

// NewResult wraps a hit with its risk level.
func NewResult(hit Hit, level RiskLevel) Result {
	return Result{
		Hit:       hit,
		RiskLevel: level,
		RiskText:  level.String(),
	}
}

// DisplaySummary returns the combined title and summary truncated for display.
func (r Result) DisplaySummary() string {
	return Summarize(r.Text(), SummaryMaxRunes)
}

// SanctionHit is a record returned by a sanctions or watchlist search.
// Sanction hits are displayed as their own result set and are never merged
// into the adverse-media results.
type SanctionHit struct {
	// Name is the listed entity name.
	Name string `json:"name"`

	// Type is the entity schema (Person, Company, ...).
	Type string `json:"type"`

	// Source lists the datasets the record was found in.
	Source string `json:"source"`

	// Note carries free-text notes or a summary. It may be empty.
	Note string `json:"note,omitempty"`
}

// LinkKey returns the normalized deduplication key of a link: any query
// string starting at the first '?' is removed, then trailing slashes.
// Two hits with the same key are the same result.
func LinkKey(link string) string {
	if i := strings.IndexByte(link, '?'); i >= 0 {
		link = link[:i]
	}
	return strings.TrimRight(link, "/")
}

// NormalizeEntity trims surrounding whitespace from an entity name.
// It returns ErrEmptyEntity if nothing is left.
func NormalizeEntity(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyEntity
	}
	return trimmed, nil
}

// Summarize truncates text to maxRunes runes and appends "..." when cut.
func Summarize(text string, maxRunes int) string {
	if text == "" || maxRunes <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}
