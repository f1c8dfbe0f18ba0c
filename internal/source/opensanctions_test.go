package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nao1215/samradar/internal/model"
)

func TestOpenSanctionsCheck(t *testing.T) {
	t.Parallel()

	t.Run("maps results with field fallbacks", func(t *testing.T) {
		t.Parallel()

		body := `{"results":[
			{"name":"LUKOIL","schema":"Company","sources":["us_ofac_sdn","eu_fsf"],"notes":"Sectoral sanctions"},
			{"label":"Litasco SA","type":"Organization","source":"gb_hmt","summary":"Trading arm"}
		]}`
		server, lastURL := newTestServer(t, http.StatusOK, "application/json", body)

		out := NewOpenSanctions(newTestFetcher(t), "", WithBaseURL(server.URL)).Check(context.Background(), "Lukoil")
		if out.Status != model.OutcomeOK {
			t.Fatalf("expected ok, got %s (%s)", out.Status, out.Reason)
		}
		expected := []model.SanctionHit{
			{Name: "LUKOIL", Type: "Company", Source: "us_ofac_sdn, eu_fsf", Note: "Sectoral sanctions"},
			{Name: "Litasco SA", Type: "Organization", Source: "gb_hmt", Note: "Trading arm"},
		}
		if fmt.Sprint(out.Hits) != fmt.Sprint(expected) {
			t.Errorf("got %+v, expected %+v", out.Hits, expected)
		}
		if out.SourceOutcome.Hits != 2 {
			t.Errorf("expected hit count 2, got %d", out.SourceOutcome.Hits)
		}
		if !strings.Contains(lastURL.Value(), "q=Lukoil") {
			t.Errorf("unexpected request URL %q", lastURL.Value())
		}
	})

	t.Run("data list is used when results is empty and capped at eight", func(t *testing.T) {
		t.Parallel()

		var records []string
		for i := range 10 {
			records = append(records, fmt.Sprintf(`{"name":"E%d"}`, i))
		}
		server, _ := newTestServer(t, http.StatusOK, "application/json", `{"data":[`+strings.Join(records, ",")+`]}`)

		out := NewOpenSanctions(newTestFetcher(t), "", WithBaseURL(server.URL)).Check(context.Background(), "E")
		if len(out.Hits) != 8 {
			t.Errorf("expected 8 hits, got %d", len(out.Hits))
		}
	})

	t.Run("api key is sent as authorization header", func(t *testing.T) {
		t.Parallel()

		auth := &requestLog{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth.set(r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"results":[]}`))
		}))
		defer server.Close()

		out := NewOpenSanctions(newTestFetcher(t), "os-key", WithBaseURL(server.URL)).Check(context.Background(), "Acme")
		if out.Status != model.OutcomeOK || len(out.Hits) != 0 {
			t.Errorf("expected ok with no hits, got %+v", out)
		}
		if got := auth.Value(); got != "ApiKey os-key" {
			t.Errorf("expected ApiKey header, got %q", got)
		}
	})

	t.Run("failure yields empty failed outcome", func(t *testing.T) {
		t.Parallel()

		server, _ := newTestServer(t, http.StatusUnauthorized, "application/json", `{}`)
		out := NewOpenSanctions(newTestFetcher(t), "", WithBaseURL(server.URL)).Check(context.Background(), "Acme")
		if out.Status != model.OutcomeFailed || out.Hits == nil || len(out.Hits) != 0 {
			t.Errorf("expected failed outcome with empty list, got %+v", out)
		}
	})
}
