package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/mmcdole/gofeed"

	"github.com/nao1215/samradar/internal/model"
)

// DefaultGoogleNewsURL is the Google News RSS search endpoint.
const DefaultGoogleNewsURL = "https://news.google.com/rss/search"

// GoogleNews reads the Google News RSS search feed.
type GoogleNews struct {
	base
}

// NewGoogleNews creates a GoogleNews connector.
func NewGoogleNews(fetcher Fetcher, opts ...Option) *GoogleNews {
	return &GoogleNews{base: newBase(NameGoogleNews, DefaultGoogleNewsURL, fetcher, opts)}
}

// Fetch implements Connector. Item descriptions are HTML and are reduced
// to plain text.
func (g *GoogleNews) Fetch(ctx context.Context, query string, maxResults int) Outcome {
	c := g.begin(query)

	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	body, err := g.fetcher.Get(ctx, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return c.fail(err)
	}

	// A parser per call: gofeed.Parser is not documented as goroutine-safe.
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return c.fail(fmt.Errorf("failed to parse feed: %w", err))
	}

	items := head(feed.Items, clampMax(maxResults))
	hits := make([]model.Hit, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		hits = append(hits, model.Hit{
			Source:  NameGoogleNews,
			Title:   item.Title,
			Summary: htmlToText(firstNonEmpty(item.Description, item.Content)),
			Link:    item.Link,
		})
	}
	return c.ok(hits)
}
