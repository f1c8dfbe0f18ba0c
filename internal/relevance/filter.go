package relevance

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/samradar/internal/model"
	"github.com/nao1215/samradar/internal/textutil"
)

// DefaultThreshold is the minimum title similarity for a fuzzy match.
const DefaultThreshold = 0.78

// DefaultAdverseKeywords trigger rule 3.
var DefaultAdverseKeywords = []string{
	"fraud",
	"sanction",
	"arrest",
	"investigation",
	"scam",
	"money laundering",
	"charged",
	"lawsuit",
	"fine",
	"convicted",
	"corruption",
}

// Rule identifies which rule kept a hit.
type Rule int

const (
	// RuleNone means the hit is not relevant.
	RuleNone Rule = iota
	// RuleWordMatch means an alias occurs as a whole word.
	RuleWordMatch
	// RuleFuzzyTitle means an alias is similar enough to the title.
	RuleFuzzyTitle
	// RuleAdverseKeyword means the text mentions an adverse keyword.
	RuleAdverseKeyword
)

// String returns the rule name used in debug logs.
func (r Rule) String() string {
	switch r {
	case RuleWordMatch:
		return "word_match"
	case RuleFuzzyTitle:
		return "fuzzy_title"
	case RuleAdverseKeyword:
		return "adverse_keyword"
	default:
		return "none"
	}
}

// Filter applies the relevance rules for one alias list.
// It holds no mutable state and is safe for concurrent use.
type Filter struct {
	aliases   []string
	threshold float64
	keywords  []string
}

// Option configures a Filter.
type Option func(*Filter)

// WithThreshold overrides the fuzzy match threshold.
func WithThreshold(th float64) Option {
	return func(f *Filter) {
		f.threshold = th
	}
}

// WithAdverseKeywords overrides the rule 3 keyword list.
func WithAdverseKeywords(keywords []string) Option {
	return func(f *Filter) {
		f.keywords = keywords
	}
}

// NewFilter creates a Filter for the given aliases. Empty aliases are ignored.
func NewFilter(aliases []string, opts ...Option) *Filter {
	f := &Filter{
		threshold: DefaultThreshold,
		keywords:  DefaultAdverseKeywords,
	}
	for _, a := range aliases {
		if folded := textutil.LowerKey(a); folded != "" {
			f.aliases = append(f.aliases, folded)
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	folded := make([]string, len(f.keywords))
	for i, kw := range f.keywords {
		folded[i] = textutil.Lower(kw)
	}
	f.keywords = folded
	return f
}

// Relevant reports whether a hit with this title and summary should be kept.
func (f *Filter) Relevant(title, summary string) bool {
	return f.Match(title, summary) != RuleNone
}

// RelevantHit is Relevant for a model.Hit.
func (f *Filter) RelevantHit(h model.Hit) bool {
	return f.Relevant(h.Title, h.Summary)
}

// Match returns the first rule that keeps the hit, or RuleNone.
func (f *Filter) Match(title, summary string) Rule {
	text := textutil.Lower(title + " " + summary)

	for _, a := range f.aliases {
		if containsWord(text, a) {
			return RuleWordMatch
		}
	}

	foldedTitle := textutil.Lower(title)
	for _, a := range f.aliases {
		if Ratio(a, foldedTitle) >= f.threshold {
			return RuleFuzzyTitle
		}
	}

	for _, kw := range f.keywords {
		if strings.Contains(text, kw) {
			return RuleAdverseKeyword
		}
	}

	return RuleNone
}

// containsWord reports whether word occurs in text with a word boundary on
// both sides. A boundary sits between a word rune and a non-word rune (or
// the start/end of text), so "lukoil" is found in "lukoil's" but not in
// "lukoilish". Unicode letters count as word runes.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for start := 0; start <= len(text)-len(word); {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		pos := start + idx
		end := pos + len(word)
		if atBoundary(text, pos) && atBoundary(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[pos:])
		start = pos + size
	}
	return false
}

// atBoundary reports whether byte offset i of s is a word boundary.
func atBoundary(s string, i int) bool {
	before := false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	after := false
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
