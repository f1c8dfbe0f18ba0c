package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/nao1215/samradar/internal/model"
)

// DefaultNewsDataURL is the NewsData latest-news endpoint.
const DefaultNewsDataURL = "https://newsdata.io/api/1/news"

// NewsData queries the NewsData news API. Without an API key every call
// is skipped.
type NewsData struct {
	base
	apiKey string
}

// NewNewsData creates a NewsData connector.
func NewNewsData(fetcher Fetcher, apiKey string, opts ...Option) *NewsData {
	return &NewsData{
		base:   newBase(NameNewsData, DefaultNewsDataURL, fetcher, opts),
		apiKey: apiKey,
	}
}

// Enabled reports whether an API key is configured.
func (n *NewsData) Enabled() bool {
	return n.apiKey != ""
}

type newsDataResponse struct {
	Status  string          `json:"status"`
	Results json.RawMessage `json:"results"`
}

type newsDataArticle struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     flexString `json:"content"`
	Link        string     `json:"link"`
}

type newsDataError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Fetch implements Connector.
func (n *NewsData) Fetch(ctx context.Context, query string, maxResults int) Outcome {
	c := n.begin(query)
	if !n.Enabled() {
		return c.skip("NEWSDATA_KEY not set")
	}

	params := url.Values{}
	params.Set("apikey", n.apiKey)
	params.Set("q", query)
	params.Set("language", "en")

	var resp newsDataResponse
	if err := n.getJSON(ctx, n.baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		return c.fail(err)
	}

	if resp.Status == "error" {
		var apiErr newsDataError
		_ = json.Unmarshal(resp.Results, &apiErr) //nolint:errcheck // best-effort message
		return c.fail(fmt.Errorf("newsdata error %s: %s", apiErr.Code, apiErr.Message))
	}

	var articles []newsDataArticle
	if len(resp.Results) > 0 {
		if err := json.Unmarshal(resp.Results, &articles); err != nil {
			return c.fail(errors.New("malformed newsdata results"))
		}
	}

	maxResults = clampMax(maxResults)
	if len(articles) > maxResults {
		articles = articles[:maxResults]
	}
	hits := make([]model.Hit, 0, len(articles))
	for _, a := range articles {
		hits = append(hits, model.Hit{
			Source:  NameNewsData,
			Title:   a.Title,
			Summary: firstNonEmpty(a.Description, a.Content.String()),
			Link:    a.Link,
		})
	}
	return c.ok(hits)
}
