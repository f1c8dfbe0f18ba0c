package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/samradar/internal/model"
)

// DefaultBingURL is the Bing web search page.
const DefaultBingURL = "https://www.bing.com/search"

// bingResultSelector matches one organic result block.
const bingResultSelector = "li.b_algo"

// Bing scrapes Bing's HTML result page. It depends on Bing's markup: when
// the structure changes the connector silently returns zero hits.
type Bing struct {
	base
}

// NewBing creates a Bing connector.
func NewBing(fetcher Fetcher, opts ...Option) *Bing {
	return &Bing{base: newBase(NameBing, DefaultBingURL, fetcher, opts)}
}

// Fetch implements Connector. Each of the first maxResults result blocks
// yields the h2 text as title, the h2 anchor href as link and the first
// paragraph as summary; blocks without a link are dropped.
func (b *Bing) Fetch(ctx context.Context, query string, maxResults int) Outcome {
	c := b.begin(query)

	params := url.Values{}
	params.Set("q", query)

	body, err := b.fetcher.Get(ctx, b.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return c.fail(err)
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return c.fail(fmt.Errorf("failed to parse Bing HTML: %w", err))
	}
	return c.ok(parseBingResults(goquery.NewDocumentFromNode(root), clampMax(maxResults)))
}

func parseBingResults(doc *goquery.Document, maxResults int) []model.Hit {
	hits := make([]model.Hit, 0, maxResults)
	doc.Find(bingResultSelector).EachWithBreak(func(i int, block *goquery.Selection) bool {
		if i >= maxResults {
			return false
		}
		h2 := block.Find("h2").First()
		link, _ := h2.Find("a").First().Attr("href")
		if link == "" {
			return true
		}
		hits = append(hits, model.Hit{
			Source:  NameBing,
			Title:   selectionText(h2),
			Summary: selectionText(block.Find("p").First()),
			Link:    link,
		})
		return true
	})
	return hits
}
