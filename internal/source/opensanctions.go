package source

import (
	"context"
	"net/url"

	"github.com/nao1215/samradar/internal/model"
)

// DefaultOpenSanctionsURL is the OpenSanctions search endpoint.
const DefaultOpenSanctionsURL = "https://api.opensanctions.org/search"

// maxSanctionHits is the number of records kept from one lookup.
const maxSanctionHits = 8

// OpenSanctions looks up an entity name in the OpenSanctions watchlists.
// Its records are displayed separately from adverse-media hits.
type OpenSanctions struct {
	base
	apiKey string
}

// NewOpenSanctions creates an OpenSanctions lookup. apiKey may be empty.
func NewOpenSanctions(fetcher Fetcher, apiKey string, opts ...Option) *OpenSanctions {
	return &OpenSanctions{
		base:   newBase(NameOpenSanctions, DefaultOpenSanctionsURL, fetcher, opts),
		apiKey: apiKey,
	}
}

// SanctionsOutcome is the result of one sanctions lookup.
type SanctionsOutcome struct {
	model.SourceOutcome
	Hits []model.SanctionHit
}

// The service has used both "results" and "data" for the list, and
// different field names for the same values.
type openSanctionsResponse struct {
	Results []openSanctionsRecord `json:"results"`
	Data    []openSanctionsRecord `json:"data"`
}

type openSanctionsRecord struct {
	Name    flexString `json:"name"`
	Label   flexString `json:"label"`
	Schema  flexString `json:"schema"`
	Type    flexString `json:"type"`
	Sources flexString `json:"sources"`
	Source  flexString `json:"source"`
	Notes   flexString `json:"notes"`
	Summary flexString `json:"summary"`
}

// Check looks up name and returns at most eight records. Like the hit
// connectors it never fails; errors yield an empty, failed outcome.
func (o *OpenSanctions) Check(ctx context.Context, name string) SanctionsOutcome {
	c := o.begin(name)
	if name == "" {
		return toSanctions(c.skip("empty entity name"), nil)
	}

	params := url.Values{}
	params.Set("q", name)

	var headers map[string]string
	if o.apiKey != "" {
		headers = map[string]string{"Authorization": "ApiKey " + o.apiKey}
	}

	var resp openSanctionsResponse
	if err := o.getJSON(ctx, o.baseURL+"?"+params.Encode(), headers, &resp); err != nil {
		return toSanctions(c.fail(err), nil)
	}

	records := resp.Results
	if len(records) == 0 {
		records = resp.Data
	}
	records = head(records, maxSanctionHits)

	hits := make([]model.SanctionHit, 0, len(records))
	for _, r := range records {
		hits = append(hits, model.SanctionHit{
			Name:   firstNonEmpty(r.Name.String(), r.Label.String()),
			Type:   firstNonEmpty(r.Schema.String(), r.Type.String()),
			Source: firstNonEmpty(r.Sources.String(), r.Source.String()),
			Note:   firstNonEmpty(r.Notes.String(), r.Summary.String()),
		})
	}

	out := c.ok(nil)
	out.SourceOutcome.Hits = len(hits)
	return toSanctions(out, hits)
}

func toSanctions(o Outcome, hits []model.SanctionHit) SanctionsOutcome {
	if hits == nil {
		hits = []model.SanctionHit{}
	}
	return SanctionsOutcome{SourceOutcome: o.SourceOutcome, Hits: hits}
}
