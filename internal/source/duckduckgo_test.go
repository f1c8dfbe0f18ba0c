package source

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/nao1215/samradar/internal/model"
)

func TestDuckDuckGoFetch(t *testing.T) {
	t.Parallel()

	body := `{
		"Heading": "Lukoil",
		"AbstractText": "Lukoil is a Russian oil company.",
		"AbstractURL": "https://en.wikipedia.org/wiki/Lukoil",
		"Results": [
			{"Text": "Official site", "FirstURL": "https://lukoil.com"},
			{"Text": "No link", "FirstURL": ""}
		],
		"RelatedTopics": [
			{"Text": "Litasco", "FirstURL": "https://duckduckgo.com/Litasco"},
			{"Name": "Category", "Topics": [{"Text": "nested", "FirstURL": "https://duckduckgo.com/nested"}]},
			{"Text": "Official site", "FirstURL": "https://lukoil.com"},
			{"Text": "Lukoil sanctions", "FirstURL": "https://duckduckgo.com/Lukoil_sanctions"}
		]
	}`

	t.Run("maps abstract, results and topics in order", func(t *testing.T) {
		t.Parallel()

		server, lastURL := newTestServer(t, http.StatusOK, "application/x-javascript", body)
		d := NewDuckDuckGo(newTestFetcher(t), WithBaseURL(server.URL))

		out := d.Fetch(context.Background(), DDGQuery("Lukoil"), 6)
		if out.Status != model.OutcomeOK {
			t.Fatalf("expected ok, got %s (%s)", out.Status, out.Reason)
		}

		var titles []string
		for _, h := range out.Hits {
			titles = append(titles, h.Title)
		}
		expected := []string{"Lukoil", "Official site", "Litasco", "Lukoil sanctions"}
		if strings.Join(titles, "|") != strings.Join(expected, "|") {
			t.Errorf("got %q, expected %q", titles, expected)
		}
		if out.Hits[0].Summary != "Lukoil is a Russian oil company." {
			t.Errorf("unexpected abstract summary %q", out.Hits[0].Summary)
		}
		for _, want := range []string{"format=json", "no_html=1", "skip_disambig=1", "q=Lukoil+sanctions+OR+fraud+OR+investigation"} {
			if !strings.Contains(lastURL.Value(), want) {
				t.Errorf("expected request URL %q to contain %q", lastURL.Value(), want)
			}
		}
	})

	t.Run("caps at max results", func(t *testing.T) {
		t.Parallel()

		server, _ := newTestServer(t, http.StatusOK, "application/json", body)
		out := NewDuckDuckGo(newTestFetcher(t), WithBaseURL(server.URL)).Fetch(context.Background(), "Lukoil", 2)
		if len(out.Hits) != 2 {
			t.Errorf("expected 2 hits, got %d", len(out.Hits))
		}
	})

	t.Run("heading falls back to the query", func(t *testing.T) {
		t.Parallel()

		server, _ := newTestServer(t, http.StatusOK, "application/json",
			`{"AbstractText":"text","AbstractURL":"https://x.test/a"}`)
		out := NewDuckDuckGo(newTestFetcher(t), WithBaseURL(server.URL)).Fetch(context.Background(), "acme", 6)
		if len(out.Hits) != 1 || out.Hits[0].Title != "acme" {
			t.Errorf("expected query as title, got %+v", out.Hits)
		}
	})

	t.Run("malformed body fails", func(t *testing.T) {
		t.Parallel()

		server, _ := newTestServer(t, http.StatusOK, "text/html", `<html>rate limited</html>`)
		out := NewDuckDuckGo(newTestFetcher(t), WithBaseURL(server.URL)).Fetch(context.Background(), "acme", 6)
		if out.Status != model.OutcomeFailed {
			t.Errorf("expected failed, got %s", out.Status)
		}
	})
}
