package source

import (
	"context"
	"net/url"
	"strings"
)

// DefaultWikipediaURL is the English Wikipedia API endpoint.
const DefaultWikipediaURL = "https://en.wikipedia.org/w/api.php"

// wikipediaSearchLimit is how many search results are considered.
const wikipediaSearchLimit = 5

// Wikipedia discovers aliases from Wikipedia search result titles.
// It implements alias.Discoverer.
type Wikipedia struct {
	base
}

// NewWikipedia creates a Wikipedia alias discoverer.
func NewWikipedia(fetcher Fetcher, opts ...Option) *Wikipedia {
	return &Wikipedia{base: newBase(NameWikipedia, DefaultWikipediaURL, fetcher, opts)}
}

type wikipediaResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// DiscoverAliases returns up to limit distinct titles from the first five
// search results for name.
func (w *Wikipedia) DiscoverAliases(ctx context.Context, name string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", name)
	params.Set("format", "json")

	var resp wikipediaResponse
	if err := w.getJSON(ctx, w.baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		w.logger.Debug("wikipedia search failed", "entity", name, "error", err)
		return nil, err
	}

	var titles []string
	seen := make(map[string]struct{})
	for _, r := range head(resp.Query.Search, wikipediaSearchLimit) {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}
	return head(titles, clampMax(limit)), nil
}
