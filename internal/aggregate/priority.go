package aggregate

import (
	"net/url"
	"slices"
	"strings"

	"github.com/nao1215/samradar/internal/model"
)

// DomainScore returns the sort key of link for a priority list: the first
// entry found as a substring of the link's hostname at index i scores
// -(len(priority) - i); links matching nothing, or that cannot be parsed,
// score 0. Lower scores sort first.
func DomainScore(link string, priority []string) int {
	if len(priority) == 0 {
		return 0
	}
	u, err := url.Parse(link)
	if err != nil {
		return 0
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return 0
	}
	for i, domain := range priority {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" && strings.Contains(host, domain) {
			return -(len(priority) - i)
		}
	}
	return 0
}

// SortByDomainPriority returns hits reordered so that links on
// higher-priority domains come first. The sort is stable, so hits with
// equal scores keep their relative order. An empty priority list returns
// the input order.
func SortByDomainPriority(hits []model.Hit, priority []string) []model.Hit {
	out := slices.Clone(hits)
	if len(priority) == 0 {
		return out
	}
	scores := make(map[string]int, len(out))
	for _, h := range out {
		scores[h.Link] = DomainScore(h.Link, priority)
	}
	slices.SortStableFunc(out, func(x, y model.Hit) int {
		return scores[x.Link] - scores[y.Link]
	})
	return out
}

// ParsePriorityList splits a comma-separated domain list, trimming blanks.
func ParsePriorityList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
