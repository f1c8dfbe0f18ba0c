package model

// RiskLevel is the coarse severity band assigned to an adverse-media result.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// the exact labels used in tables and CSV exports.
type RiskLevel int

const (
	// RiskLow means no risk keyword was found in the hit text.
	RiskLow RiskLevel = iota

	// RiskMedium means only a single medium-severity keyword was found
	// (investigation, probe, regulatory, lawsuit, review).
	RiskMedium

	// RiskHigh means at least one high-severity keyword or two distinct
	// medium-severity keywords were found.
	RiskHigh
)

// String returns the display label of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// RiskLevels lists all levels from most to least severe.
// Report writers iterate over it to keep section order stable.
var RiskLevels = []RiskLevel{RiskHigh, RiskMedium, RiskLow}
