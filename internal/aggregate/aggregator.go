package aggregate

import (
	"strings"

	"github.com/nao1215/samradar/internal/model"
)

// RelevanceFilter decides whether a hit is about the screened entity.
// *relevance.Filter implements it.
type RelevanceFilter interface {
	Relevant(title, summary string) bool
}

// acceptAll keeps every hit. Used when no filter is given.
type acceptAll struct{}

func (acceptAll) Relevant(string, string) bool { return true }

// Aggregator accumulates results for one scan. It is not safe for
// concurrent use; the fan-out merges batches from a single goroutine.
type Aggregator struct {
	maxTotal int
	filter   RelevanceFilter
	seen     map[string]struct{}
	results  []model.Hit
}

// New creates an Aggregator with the given soft cap and filter.
// A nil filter keeps every hit.
func New(maxTotal int, filter RelevanceFilter) *Aggregator {
	if filter == nil {
		filter = acceptAll{}
	}
	return &Aggregator{
		maxTotal: maxTotal,
		filter:   filter,
		seen:     make(map[string]struct{}),
		results:  make([]model.Hit, 0),
	}
}

// Add merges one batch of hits from source and returns how many were kept.
// Title, summary and link are trimmed, and the hit's Source is set to source.
func (a *Aggregator) Add(source string, hits []model.Hit) int {
	added := 0
	for _, h := range hits {
		h = model.Hit{
			Source:  source,
			Title:   strings.TrimSpace(h.Title),
			Summary: strings.TrimSpace(h.Summary),
			Link:    strings.TrimSpace(h.Link),
		}
		if h.Link == "" {
			continue
		}
		key := model.LinkKey(h.Link)
		if _, ok := a.seen[key]; ok {
			continue
		}
		if !a.filter.Relevant(h.Title, h.Summary) {
			continue
		}
		a.seen[key] = struct{}{}
		a.results = append(a.results, h)
		added++
	}
	return added
}

// Full reports whether the soft cap has been reached.
func (a *Aggregator) Full() bool {
	return a.maxTotal > 0 && len(a.results) >= a.maxTotal
}

// Len returns the number of kept results.
func (a *Aggregator) Len() int {
	return len(a.results)
}

// Results returns a copy of the kept hits in insertion order.
func (a *Aggregator) Results() []model.Hit {
	out := make([]model.Hit, len(a.results))
	copy(out, a.results)
	return out
}
