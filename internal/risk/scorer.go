// Package risk maps hit text to a coarse risk band by keyword presence.
package risk

import (
	"strings"

	"github.com/nao1215/samradar/internal/model"
	"github.com/nao1215/samradar/internal/textutil"
)

// Default keyword lists. Each high keyword present adds 2 to the score and
// each medium keyword present adds 1; a keyword counts once however often
// it appears.
var (
	DefaultHighKeywords = []string{
		"fraud", "money laundering", "scam", "crime", "corruption",
		"sanction", "arrest", "convicted", "charged",
	}
	DefaultMediumKeywords = []string{
		"investigation", "probe", "regulatory", "lawsuit", "review",
	}
)

// Score thresholds.
const (
	highThreshold   = 2
	mediumThreshold = 1
)

// Scorer assigns risk levels. It is safe for concurrent use.
type Scorer struct {
	high   []string
	medium []string
}

// NewScorer creates a Scorer with the default keyword lists.
func NewScorer() *Scorer {
	return NewScorerWithKeywords(DefaultHighKeywords, DefaultMediumKeywords)
}

// NewScorerWithKeywords creates a Scorer with custom keyword lists.
func NewScorerWithKeywords(high, medium []string) *Scorer {
	return &Scorer{high: foldAll(high), medium: foldAll(medium)}
}

// Score returns the numeric score of text.
func (s *Scorer) Score(text string) int {
	folded := textutil.Lower(text)
	score := 0
	for _, kw := range s.high {
		if strings.Contains(folded, kw) {
			score += 2
		}
	}
	for _, kw := range s.medium {
		if strings.Contains(folded, kw) {
			score++
		}
	}
	return score
}

// Level returns the risk band of text: High for a score of 2 or more,
// Medium for 1 and Low for 0.
func (s *Scorer) Level(text string) model.RiskLevel {
	switch score := s.Score(text); {
	case score >= highThreshold:
		return model.RiskHigh
	case score >= mediumThreshold:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// ScoreHit builds the scored result of a hit from its title and summary.
func (s *Scorer) ScoreHit(h model.Hit) model.Result {
	return model.NewResult(h, s.Level(h.Text()))
}

func foldAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = textutil.Lower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
