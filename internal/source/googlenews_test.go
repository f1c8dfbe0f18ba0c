package source

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/nao1215/samradar/internal/model"
)

const googleNewsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>"acme fraud" - Google News</title>
<item>
  <title>Acme charged with fraud - Reuters</title>
  <link>https://news.google.com/rss/articles/abc</link>
  <description>&lt;a href="https://reuters.com/x"&gt;Acme charged with fraud&lt;/a&gt;&amp;nbsp;&lt;font color="#6f6f6f"&gt;Reuters&lt;/font&gt;</description>
</item>
<item>
  <title>Second</title>
  <link>https://news.google.com/rss/articles/def</link>
  <description>plain</description>
</item>
</channel></rss>`

func TestGoogleNewsFetch(t *testing.T) {
	t.Parallel()

	t.Run("maps feed items", func(t *testing.T) {
		t.Parallel()

		server, lastURL := newTestServer(t, http.StatusOK, "application/rss+xml", googleNewsFeed)
		out := NewGoogleNews(newTestFetcher(t), WithBaseURL(server.URL)).Fetch(context.Background(), "acme fraud", 1)

		if out.Status != model.OutcomeOK {
			t.Fatalf("expected ok, got %s (%s)", out.Status, out.Reason)
		}
		if len(out.Hits) != 1 {
			t.Fatalf("expected 1 hit, got %d", len(out.Hits))
		}
		h := out.Hits[0]
		if h.Title != "Acme charged with fraud - Reuters" || h.Link != "https://news.google.com/rss/articles/abc" {
			t.Errorf("unexpected hit %+v", h)
		}
		if strings.Contains(h.Summary, "<") || !strings.Contains(h.Summary, "Acme charged with fraud") {
			t.Errorf("expected plain text summary, got %q", h.Summary)
		}
		if !strings.Contains(lastURL.Value(), "ceid=US%3Aen") {
			t.Errorf("expected locale parameters in %q", lastURL.Value())
		}
	})

	t.Run("invalid feed fails", func(t *testing.T) {
		t.Parallel()

		server, _ := newTestServer(t, http.StatusOK, "text/plain", "not a feed")
		out := NewGoogleNews(newTestFetcher(t), WithBaseURL(server.URL)).Fetch(context.Background(), "acme", 6)
		if out.Status != model.OutcomeFailed {
			t.Errorf("expected failed, got %s", out.Status)
		}
	})
}
