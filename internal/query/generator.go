package query

import "strings"

// DefaultSuffixes are the legal-entity suffixes appended to each alias.
// The empty suffix comes first so the bare alias leads the bank.
var DefaultSuffixes = []string{"", " plc", " ltd", " llc", " inc", " corp", " group", " holdings", " sa"}

// DefaultKeywords are the adverse keywords combined with each alias.
var DefaultKeywords = []string{
	"fraud",
	"money laundering",
	"scam",
	"sanction",
	"arrest",
	"investigation",
	"charged",
	"lawsuit",
	"convicted",
	"corruption",
}

// Generator builds query strings from aliases.
// The zero value is not usable; create one with NewGenerator.
type Generator struct {
	suffixes []string
	keywords []string
}

// Option configures a Generator.
type Option func(*Generator)

// WithSuffixes replaces the suffix list. Order is significant.
func WithSuffixes(suffixes []string) Option {
	return func(g *Generator) {
		g.suffixes = suffixes
	}
}

// WithKeywords replaces the keyword list. Order is significant.
func WithKeywords(keywords []string) Option {
	return func(g *Generator) {
		g.keywords = keywords
	}
}

// NewGenerator creates a Generator using DefaultSuffixes and DefaultKeywords
// unless overridden by options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		suffixes: DefaultSuffixes,
		keywords: DefaultKeywords,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Expand returns the ordered, deduplicated queries for a single alias.
// It yields at most len(suffixes) * (1 + 2*len(keywords)) queries.
func (g *Generator) Expand(alias string) []string {
	alias = strings.TrimSpace(alias)
	out := newOrderedSet(len(g.suffixes) * (1 + 2*len(g.keywords)))

	for _, suffix := range g.suffixes {
		base := strings.TrimSpace(alias + suffix)
		out.add(base)
		for _, kw := range g.keywords {
			out.add(base + " " + kw)
			out.add(kw + " " + base)
		}
	}

	return out.items
}

// BuildBank expands every alias and concatenates the results in alias order,
// deduplicating across aliases.
func (g *Generator) BuildBank(aliases []string) []string {
	bank := newOrderedSet(0)
	for _, alias := range aliases {
		for _, q := range g.Expand(alias) {
			bank.add(q)
		}
	}
	return bank.items
}

// orderedSet keeps insertion order and drops exact duplicates.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet(capacity int) *orderedSet {
	return &orderedSet{
		seen:  make(map[string]struct{}, capacity),
		items: make([]string, 0, capacity),
	}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
