package model

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeStatus describes how a single connector call ended.
type OutcomeStatus string

const (
	// OutcomeOK means the connector answered and its body was parsed.
	// An OK outcome may still carry zero hits.
	OutcomeOK OutcomeStatus = "ok"

	// OutcomeFailed means a transport, status or parse failure occurred.
	// The aggregation treats it exactly like zero hits.
	OutcomeFailed OutcomeStatus = "failed"

	// OutcomeSkipped means the call was not issued, either because the
	// connector is not configured (no access key) or because the result
	// cap had already been reached.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// SourceOutcome records one connector call for diagnostics.
//
// Design decision: Connectors never surface errors to the pipeline. Instead
// every call yields an outcome so that "no hits" and "call failed" stay
// distinguishable in logs and reports while aggregating identically.
type SourceOutcome struct {
	// Connector is the connector name (e.g. "Bing").
	Connector string `json:"connector"`

	// Query is the query string or entity name that was sent.
	Query string `json:"query"`

	// Status is the outcome status.
	Status OutcomeStatus `json:"status"`

	// Reason explains a failed or skipped outcome.
	Reason string `json:"reason,omitempty"`

	// Hits is the number of raw hits returned before filtering.
	Hits int `json:"hits"`

	// Elapsed is the wall-clock duration of the call.
	Elapsed time.Duration `json:"elapsed"`
}

// ScanReport is the complete outcome of screening one entity.
//
// Design decision: We use a single struct holding inputs, intermediate
// artifacts and outputs to simplify serialization and database storage.
// The query bank itself is excluded from JSON because of its size; only
// its length is kept.
type ScanReport struct {
	// ScanID uniquely identifies this scan.
	ScanID string `json:"scan_id"`

	// Entity is the trimmed entity name that was screened.
	Entity string `json:"entity"`

	// DateScanned is when the scan started.
	DateScanned time.Time `json:"date_scanned"`

	// Elapsed is the total scan duration.
	Elapsed time.Duration `json:"elapsed"`

	// Aliases is the ordered alias set. Element 0 is Entity.
	Aliases []string `json:"aliases"`

	// QueryBank is the ordered, deduplicated query bank.
	QueryBank []string `json:"-"`

	// QueryBankSize is len(QueryBank), kept for stored reports.
	QueryBankSize int `json:"query_bank_size"`

	// Sanctions contains the sanctions/watchlist records.
	Sanctions []SanctionHit `json:"sanctions"`

	// Hits holds the aggregated hits between fetching and scoring.
	Hits []Hit `json:"-"`

	// Results contains the relevant, deduplicated adverse-media results
	// in final display order.
	Results []Result `json:"results"`

	// Outcomes records every connector call made (or skipped) during the scan.
	Outcomes []SourceOutcome `json:"outcomes,omitempty"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut is true if the scan was cancelled before completing.
	TimedOut bool `json:"timed_out"`

	// Error holds the last step error, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewScanReport creates an empty report for the given entity.
func NewScanReport(entity string) *ScanReport {
	return &ScanReport{
		ScanID:      uuid.NewString(),
		Entity:      entity,
		DateScanned: time.Now(),
		Aliases:     make([]string, 0),
		Sanctions:   make([]SanctionHit, 0),
		Results:     make([]Result, 0),
		Outcomes:    make([]SourceOutcome, 0),
	}
}

// AddOutcome appends a connector outcome.
func (r *ScanReport) AddOutcome(o SourceOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// HasResults reports whether any adverse-media result was kept.
func (r *ScanReport) HasResults() bool {
	return len(r.Results) > 0
}

// HasSanctions reports whether the sanctions lookup returned any record.
func (r *ScanReport) HasSanctions() bool {
	return len(r.Sanctions) > 0
}

// Summary counts the results per risk level.
func (r *ScanReport) Summary() RiskSummary {
	var s RiskSummary
	for _, res := range r.Results {
		s.add(res.RiskLevel)
	}
	s.Sanctions = len(r.Sanctions)
	return s
}

// ResultsByRisk returns the results with the given risk level,
// preserving their display order.
func (r *ScanReport) ResultsByRisk(level RiskLevel) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.RiskLevel == level {
			out = append(out, res)
		}
	}
	return out
}

// OutcomeCounts returns the number of outcomes per status.
func (r *ScanReport) OutcomeCounts() map[OutcomeStatus]int {
	counts := map[OutcomeStatus]int{
		OutcomeOK:      0,
		OutcomeFailed:  0,
		OutcomeSkipped: 0,
	}
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// RiskSummary holds result counts per risk level.
type RiskSummary struct {
	High      int `json:"high"`
	Medium    int `json:"medium"`
	Low       int `json:"low"`
	Sanctions int `json:"sanctions"`
}

func (s *RiskSummary) add(level RiskLevel) {
	switch level {
	case RiskHigh:
		s.High++
	case RiskMedium:
		s.Medium++
	default:
		s.Low++
	}
}

// Total returns the number of adverse-media results.
func (s RiskSummary) Total() int {
	return s.High + s.Medium + s.Low
}

// Count returns the count for a single level.
func (s RiskSummary) Count(level RiskLevel) int {
	switch level {
	case RiskHigh:
		return s.High
	case RiskMedium:
		return s.Medium
	default:
		return s.Low
	}
}
