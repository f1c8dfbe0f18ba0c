package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	samlog "github.com/nao1215/samradar/internal/log"
	"github.com/nao1215/samradar/internal/model"
)

// Connector names, used as the Source of every hit they return.
const (
	NameNewsData      = "NewsData"
	NameDuckDuckGo    = "DuckDuckGo"
	NameBing          = "Bing"
	NameGoogleNews    = "GoogleNews"
	NameOpenSanctions = "OpenSanctions"
	NameWikipedia     = "Wikipedia"
)

// Fetcher performs an HTTP GET and returns the response body.
// *transport.Client implements it, as does the Redis-backed cache.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error)
}

// Connector maps one query to raw hits.
type Connector interface {
	// Name returns the connector name.
	Name() string

	// Fetch returns at most maxResults hits for query. It never fails;
	// problems are reported through the Outcome status.
	Fetch(ctx context.Context, query string, maxResults int) Outcome
}

// Outcome is the result of one connector call: the hits plus the
// diagnostic record stored in the scan report.
type Outcome struct {
	model.SourceOutcome
	Hits []model.Hit
}

// Option configures a connector.
type Option func(*base)

// WithBaseURL overrides the service endpoint. Tests point it at an
// httptest server.
func WithBaseURL(u string) Option {
	return func(b *base) {
		if u != "" {
			b.baseURL = u
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// base holds what every connector shares.
type base struct {
	name    string
	fetcher Fetcher
	baseURL string
	logger  *slog.Logger
}

func newBase(name, defaultURL string, fetcher Fetcher, opts []Option) base {
	b := base{
		name:    name,
		fetcher: fetcher,
		baseURL: defaultURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Name returns the connector name.
func (b *base) Name() string {
	return b.name
}

// getJSON fetches rawURL and decodes the body into v.
func (b *base) getJSON(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	body, err := b.fetcher.Get(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("malformed %s response: %w", b.name, err)
	}
	return nil
}

// call tracks one connector call from start to outcome.
type call struct {
	b     *base
	query string
	start time.Time
}

func (b *base) begin(query string) *call {
	return &call{b: b, query: query, start: time.Now()}
}

func (c *call) outcome(status model.OutcomeStatus, reason string, hits []model.Hit) Outcome {
	if hits == nil {
		hits = []model.Hit{}
	}
	return Outcome{
		SourceOutcome: model.SourceOutcome{
			Connector: c.b.name,
			Query:     c.query,
			Status:    status,
			Reason:    reason,
			Hits:      len(hits),
			Elapsed:   time.Since(c.start),
		},
		Hits: hits,
	}
}

// ok records a successful call.
func (c *call) ok(hits []model.Hit) Outcome {
	c.b.logger.Debug("connector call finished", "connector", c.b.name, "query", c.query, "hits", len(hits))
	return c.outcome(model.OutcomeOK, "", hits)
}

// fail records a failed call. The reason is stripped of credentials
// because it ends up in stored reports.
func (c *call) fail(err error) Outcome {
	reason := samlog.MaskURLCredentials(err.Error())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.b.logger.Debug("connector call cancelled", "connector", c.b.name, "query", c.query, "error", err)
	} else {
		c.b.logger.Warn("connector call failed", "connector", c.b.name, "query", c.query, "error", err)
	}
	return c.outcome(model.OutcomeFailed, reason, nil)
}

// skip records a call that was not issued.
func (c *call) skip(reason string) Outcome {
	c.b.logger.Debug("connector call skipped", "connector", c.b.name, "query", c.query, "reason", reason)
	return c.outcome(model.OutcomeSkipped, reason, nil)
}

// SkippedOutcome builds the record for a call the pipeline decided not to
// issue (for example because the result cap was reached).
func SkippedOutcome(connector, query, reason string) Outcome {
	return Outcome{
		SourceOutcome: model.SourceOutcome{
			Connector: connector,
			Query:     query,
			Status:    model.OutcomeSkipped,
			Reason:    reason,
		},
		Hits: []model.Hit{},
	}
}
