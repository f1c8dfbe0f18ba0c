package model

import "time"

// Risk directions reported by CompareReports.
const (
	RiskDirectionWorsened  = "worsened"
	RiskDirectionImproved  = "improved"
	RiskDirectionUnchanged = "unchanged"
)

// ScanDiff describes how the adverse-media picture of an entity changed
// between two stored scans.
type ScanDiff struct {
	// Entity is the screened entity of the current scan.
	Entity string `json:"entity"`

	// PreviousScan summarizes the older scan.
	PreviousScan ScanSnapshot `json:"previous_scan"`

	// CurrentScan summarizes the newer scan.
	CurrentScan ScanSnapshot `json:"current_scan"`

	// NewResults are results whose link key only appears in the current scan.
	NewResults []Result `json:"new_results,omitempty"`

	// ResolvedResults are results whose link key only appears in the previous scan.
	ResolvedResults []Result `json:"resolved_results,omitempty"`

	// UnchangedCount is the number of link keys present in both scans.
	UnchangedCount int `json:"unchanged_count"`

	// Direction is one of the RiskDirection constants.
	Direction string `json:"direction"`
}

// ScanSnapshot is the part of a scan shown in a comparison.
type ScanSnapshot struct {
	ScanID      string      `json:"scan_id"`
	DateScanned time.Time   `json:"date_scanned"`
	Summary     RiskSummary `json:"summary"`
}

// Delta returns current minus previous for one risk level.
func (d *ScanDiff) Delta(level RiskLevel) int {
	return d.CurrentScan.Summary.Count(level) - d.PreviousScan.Summary.Count(level)
}

// SanctionsDelta returns the change in sanctions record count.
func (d *ScanDiff) SanctionsDelta() int {
	return d.CurrentScan.Summary.Sanctions - d.PreviousScan.Summary.Sanctions
}

// CompareReports compares two scans of the same entity. Results are matched
// by LinkKey; new and resolved results keep the display order of the scan
// they come from.
func CompareReports(previous, current *ScanReport) *ScanDiff {
	diff := &ScanDiff{
		Entity:       current.Entity,
		PreviousScan: snapshot(previous),
		CurrentScan:  snapshot(current),
	}

	previousKeys := make(map[string]struct{}, len(previous.Results))
	for _, r := range previous.Results {
		previousKeys[LinkKey(r.Link)] = struct{}{}
	}
	currentKeys := make(map[string]struct{}, len(current.Results))
	for _, r := range current.Results {
		currentKeys[LinkKey(r.Link)] = struct{}{}
	}

	for _, r := range current.Results {
		if _, ok := previousKeys[LinkKey(r.Link)]; !ok {
			diff.NewResults = append(diff.NewResults, r)
		}
	}
	for _, r := range previous.Results {
		if _, ok := currentKeys[LinkKey(r.Link)]; ok {
			diff.UnchangedCount++
			continue
		}
		diff.ResolvedResults = append(diff.ResolvedResults, r)
	}

	diff.Direction = riskDirection(diff.PreviousScan.Summary, diff.CurrentScan.Summary)
	return diff
}

func snapshot(r *ScanReport) ScanSnapshot {
	return ScanSnapshot{
		ScanID:      r.ScanID,
		DateScanned: r.DateScanned,
		Summary:     r.Summary(),
	}
}

// riskDirection weighs sanctions records and high risk results heaviest.
func riskDirection(previous, current RiskSummary) string {
	score := func(s RiskSummary) int {
		return s.Sanctions*100 + s.High*50 + s.Medium*10 + s.Low*5
	}
	switch p, c := score(previous), score(current); {
	case c < p:
		return RiskDirectionImproved
	case c > p:
		return RiskDirectionWorsened
	default:
		return RiskDirectionUnchanged
	}
}
