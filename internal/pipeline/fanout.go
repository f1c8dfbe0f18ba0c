package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/samradar/internal/aggregate"
	"github.com/nao1215/samradar/internal/config"
	"github.com/nao1215/samradar/internal/model"
	"github.com/nao1215/samradar/internal/relevance"
	"github.com/nao1215/samradar/internal/source"
)

// Reasons recorded on skipped outcomes.
const (
	ReasonCapReached    = "result cap reached"
	ReasonNotConfigured = "connector not configured"
)

// Stage is one connector in the fan-out together with the queries it is
// sent.
type Stage struct {
	Connector source.Connector

	// Queries selects the queries for this stage from the report.
	Queries func(report *model.ScanReport) []string
}

// QueryBankStage sends the first n queries of the query bank.
func QueryBankStage(c source.Connector, n int) Stage {
	return Stage{
		Connector: c,
		Queries: func(report *model.ScanReport) []string {
			return head(report.QueryBank, n)
		},
	}
}

// AliasStage sends one query per alias for the first n aliases, built
// with build.
func AliasStage(c source.Connector, n int, build func(alias string) string) Stage {
	return Stage{
		Connector: c,
		Queries: func(report *model.ScanReport) []string {
			aliases := head(report.Aliases, n)
			queries := make([]string, 0, len(aliases))
			for _, a := range aliases {
				queries = append(queries, build(a))
			}
			return queries
		},
	}
}

// FilterFactory builds the relevance filter for an alias set.
type FilterFactory func(aliases []string) aggregate.RelevanceFilter

// defaultFilterFactory uses the relevance package with its defaults.
func defaultFilterFactory(aliases []string) aggregate.RelevanceFilter {
	return relevance.NewFilter(aliases)
}

// enabler is implemented by connectors that can be unconfigured.
type enabler interface {
	Enabled() bool
}

// FetchStep fans the queries out to the connectors in priority order and
// aggregates the relevant, deduplicated hits into report.Hits.
//
// Design decision: Calls of one stage run concurrently in windows of
// `workers` queries, but their outcomes are merged in query order from a
// single goroutine. The result is therefore identical to issuing the calls
// one after another, while latency is bounded by the slowest call of each
// window instead of the sum of all calls.
type FetchStep struct {
	stages         []Stage
	perSourceLimit int
	maxTotal       int
	workers        int
	filterFactory  FilterFactory
	logger         *slog.Logger
}

// FetchOption configures a FetchStep.
type FetchOption func(*FetchStep)

// WithPerSourceLimit sets the maximum hits requested per connector call.
func WithPerSourceLimit(n int) FetchOption {
	return func(s *FetchStep) {
		if n > 0 {
			s.perSourceLimit = n
		}
	}
}

// WithMaxTotal sets the soft cap on aggregated hits.
func WithMaxTotal(n int) FetchOption {
	return func(s *FetchStep) {
		if n > 0 {
			s.maxTotal = n
		}
	}
}

// WithWorkers sets how many connector calls run at once.
func WithWorkers(n int) FetchOption {
	return func(s *FetchStep) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithFilterFactory replaces the relevance filter. A factory returning
// nil keeps every hit.
func WithFilterFactory(f FilterFactory) FetchOption {
	return func(s *FetchStep) {
		if f != nil {
			s.filterFactory = f
		}
	}
}

// WithFetchLogger sets the logger.
func WithFetchLogger(logger *slog.Logger) FetchOption {
	return func(s *FetchStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFetchStep creates a FetchStep over stages, in priority order.
func NewFetchStep(stages []Stage, opts ...FetchOption) *FetchStep {
	s := &FetchStep{
		stages:         stages,
		perSourceLimit: config.DefaultPerSourceLimit,
		maxTotal:       config.DefaultMaxTotal,
		workers:        config.DefaultWorkers,
		filterFactory:  defaultFilterFactory,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return StepFetch
}

// ConnectorNames returns the connector names in priority order.
func (s *FetchStep) ConnectorNames() []string {
	names := make([]string, len(s.stages))
	for i, st := range s.stages {
		names[i] = st.Connector.Name()
	}
	return names
}

// Do executes the step.
func (s *FetchStep) Do(ctx context.Context, report *model.ScanReport) error {
	agg := aggregate.New(s.maxTotal, s.filterFactory(report.Aliases))

	for _, st := range s.stages {
		name := st.Connector.Name()
		if e, ok := st.Connector.(enabler); ok && !e.Enabled() {
			report.AddOutcome(source.SkippedOutcome(name, "", ReasonNotConfigured).SourceOutcome)
			continue
		}
		s.runStage(ctx, report, agg, st.Connector, st.Queries(report))
	}

	report.Hits = agg.Results()
	s.logger.Debug("fan-out finished",
		"entity", report.Entity,
		"hits", len(report.Hits),
		"calls", len(report.Outcomes),
	)
	return nil
}

// runStage sends queries to c. The cap is checked after every merged
// call; once reached, the rest of the stage is recorded as skipped. A
// stage that starts with the cap already reached issues a single call.
func (s *FetchStep) runStage(ctx context.Context, report *model.ScanReport, agg *aggregate.Aggregator, c source.Connector, queries []string) {
	name := c.Name()

	for start := 0; start < len(queries); {
		window := s.workers
		if agg.Full() {
			window = 1
		}
		end := min(start+window, len(queries))
		batch := queries[start:end]

		outcomes := make([]source.Outcome, len(batch))
		var g errgroup.Group
		g.SetLimit(s.workers)
		for i, q := range batch {
			g.Go(func() error {
				outcomes[i] = c.Fetch(ctx, q, s.perSourceLimit)
				return nil
			})
		}
		_ = g.Wait() //nolint:errcheck // workers never return errors

		for i, out := range outcomes {
			agg.Add(name, out.Hits)
			report.AddOutcome(out.SourceOutcome)
			if agg.Full() {
				skipAll(report, name, batch[i+1:])
				skipAll(report, name, queries[end:])
				return
			}
		}
		start = end
	}
}

func skipAll(report *model.ScanReport, connector string, queries []string) {
	for _, q := range queries {
		report.AddOutcome(source.SkippedOutcome(connector, q, ReasonCapReached).SourceOutcome)
	}
}

func head(items []string, n int) []string {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
