package source

import (
	"context"
	"net/url"

	"github.com/nao1215/samradar/internal/model"
)

// DefaultDuckDuckGoURL is the DuckDuckGo instant-answer endpoint.
const DefaultDuckDuckGoURL = "https://api.duckduckgo.com/"

// DuckDuckGo queries the DuckDuckGo instant-answer API.
type DuckDuckGo struct {
	base
}

// NewDuckDuckGo creates a DuckDuckGo connector.
func NewDuckDuckGo(fetcher Fetcher, opts ...Option) *DuckDuckGo {
	return &DuckDuckGo{base: newBase(NameDuckDuckGo, DefaultDuckDuckGoURL, fetcher, opts)}
}

type ddgResponse struct {
	Heading       string     `json:"Heading"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	Results       []ddgTopic `json:"Results"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

// ddgTopic covers both plain topics and topic groups; groups have a Name
// and nested Topics but no FirstURL, so they are dropped.
type ddgTopic struct {
	Text     string `json:"Text"`
	Name     string `json:"Name"`
	FirstURL string `json:"FirstURL"`
}

// DDGQuery builds the query sent for an alias.
func DDGQuery(alias string) string {
	return alias + " sanctions OR fraud OR investigation"
}

// Fetch implements Connector. The abstract (if any) comes first, then
// direct results, then related topics; the list is deduplicated by link
// and title and capped at maxResults.
func (d *DuckDuckGo) Fetch(ctx context.Context, query string, maxResults int) Outcome {
	c := d.begin(query)

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	var resp ddgResponse
	if err := d.getJSON(ctx, d.baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		return c.fail(err)
	}

	maxResults = clampMax(maxResults)
	var candidates []model.Hit
	if resp.AbstractText != "" {
		candidates = append(candidates, model.Hit{
			Source:  NameDuckDuckGo,
			Title:   firstNonEmpty(resp.Heading, query),
			Summary: resp.AbstractText,
			Link:    resp.AbstractURL,
		})
	}
	for _, r := range head(resp.Results, maxResults) {
		candidates = append(candidates, model.Hit{Source: NameDuckDuckGo, Title: r.Text, Link: r.FirstURL})
	}
	for _, t := range head(resp.RelatedTopics, maxResults) {
		text := firstNonEmpty(t.Text, t.Name)
		if text == "" || t.FirstURL == "" {
			continue
		}
		candidates = append(candidates, model.Hit{Source: NameDuckDuckGo, Title: text, Link: t.FirstURL})
	}

	hits := make([]model.Hit, 0, maxResults)
	seen := make(map[string]struct{})
	for _, h := range candidates {
		if len(hits) >= maxResults {
			break
		}
		if h.Link == "" {
			continue
		}
		key := h.Link + "|" + h.Title
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		hits = append(hits, h)
	}
	return c.ok(hits)
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
