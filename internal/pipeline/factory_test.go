package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/samradar/internal/config"
	"github.com/nao1215/samradar/internal/model"
	"github.com/nao1215/samradar/internal/source"
	"github.com/nao1215/samradar/internal/transport"
)

func fetchStepOf(t *testing.T, p *Pipeline) *FetchStep {
	t.Helper()

	for _, s := range p.steps {
		if fs, ok := s.(*FetchStep); ok {
			return fs
		}
	}
	t.Fatal("fetch step not found")
	return nil
}

func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("steps run in screening order", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(config.NewConfig(), nil, nil)
		expected := []string{StepSanctions, StepAliases, StepQueries, StepFetch, StepDomainPriority, StepRiskScoring}
		if !reflect.DeepEqual(p.StepNames(), expected) {
			t.Errorf("got %v, expected %v", p.StepNames(), expected)
		}
	})

	t.Run("connector priority follows the configuration", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			modify   func(*config.Config)
			expected []string
		}{
			{
				name:     "defaults include newsdata",
				modify:   func(*config.Config) {},
				expected: []string{source.NameNewsData, source.NameDuckDuckGo, source.NameBing},
			},
			{
				name:     "newsdata disabled",
				modify:   func(c *config.Config) { c.UseNewsData = false },
				expected: []string{source.NameDuckDuckGo, source.NameBing},
			},
			{
				name:     "google news enabled",
				modify:   func(c *config.Config) { c.UseGoogleNews = true },
				expected: []string{source.NameNewsData, source.NameDuckDuckGo, source.NameBing, source.NameGoogleNews},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				cfg := config.NewConfig()
				tt.modify(cfg)
				got := fetchStepOf(t, DefaultPipeline(cfg, nil, nil)).ConnectorNames()
				if !reflect.DeepEqual(got, tt.expected) {
					t.Errorf("got %v, expected %v", got, tt.expected)
				}
			})
		}
	})
}

// TestDefaultPipelineRun screens an entity end to end against local
// servers standing in for every connector.
func TestDefaultPipelineRun(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/sanctions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"name":"LUKOIL","schema":"Company","datasets":["x"],"sources":["us_ofac_sdn"]}]}`))
	})
	mux.HandleFunc("/ddg", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Heading":"Lukoil","AbstractText":"Lukoil is an oil company.","AbstractURL":"https://en.wikipedia.org/wiki/Lukoil"}`))
	})
	mux.HandleFunc("/bing", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if !strings.Contains(q, "fraud") {
			_, _ = w.Write([]byte(`<html><body></body></html>`))
			return
		}
		_, _ = w.Write([]byte(`<html><body><ol>
<li class="b_algo"><h2><a href="https://www.reuters.com/lukoil-fraud?utm=1">Lukoil fraud charges</a></h2><p>Prosecutors charged Lukoil.</p></li>
<li class="b_algo"><h2><a href="https://www.reuters.com/lukoil-fraud/">Lukoil fraud charges (dup)</a></h2></li>
<li class="b_algo"><h2><a href="https://weather.test/today">Sunny weekend</a></h2><p>Nice weather.</p></li>
</ol></body></html>`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := transport.NewClient()
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	cfg := config.NewConfig()
	cfg.UseNewsData = false
	cfg.DomainPriority = []string{"wikipedia.org"}

	p := DefaultPipeline(cfg, client, nil, WithPipelineEndpoints(map[string]string{
		source.NameOpenSanctions: server.URL + "/sanctions",
		source.NameDuckDuckGo:    server.URL + "/ddg",
		source.NameBing:          server.URL + "/bing",
	}))

	report, err := p.Run(context.Background(), " Lukoil ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Sanctions) != 1 || report.Sanctions[0].Source != "us_ofac_sdn" {
		t.Errorf("unexpected sanctions %+v", report.Sanctions)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(report.Results), report.Results)
	}
	if report.Results[0].Source != source.NameDuckDuckGo {
		t.Errorf("expected prioritized wikipedia link first, got %+v", report.Results[0])
	}
	if report.Results[1].RiskLevel != model.RiskHigh {
		t.Errorf("expected fraud hit to be high risk, got %s", report.Results[1].RiskLevel)
	}
	if report.OutcomeCounts()[model.OutcomeFailed] != 0 {
		t.Errorf("unexpected failed outcomes %+v", report.Outcomes)
	}
	if len(report.PerformedSteps) != 6 {
		t.Errorf("expected 6 performed steps, got %v", report.PerformedSteps)
	}
}
