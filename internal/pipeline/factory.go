package pipeline

import (
	"github.com/nao1215/samradar/internal/alias"
	"github.com/nao1215/samradar/internal/config"
	"github.com/nao1215/samradar/internal/query"
	"github.com/nao1215/samradar/internal/risk"
	"github.com/nao1215/samradar/internal/source"
)

// Query budgets per connector stage.
const (
	NewsDataQueries   = 12
	DuckDuckGoAliases = 4
	BingQueries       = 24
	GoogleNewsQueries = 12
)

// DefaultPipelineConfig holds settings of the default pipeline that do
// not come from config.Config.
type DefaultPipelineConfig struct {
	// Endpoints overrides connector base URLs, keyed by connector name.
	// Tests point connectors at local servers with it.
	Endpoints map[string]string
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineEndpoints overrides connector base URLs.
func WithPipelineEndpoints(endpoints map[string]string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Endpoints = endpoints
	}
}

// DefaultPipeline creates the standard screening pipeline for cfg. All
// connectors share fetcher.
//
// Connector priority: NewsData (only when enabled), DuckDuckGo, Bing, then
// Google News (only when enabled). A NewsData stage without a key records a
// single skipped outcome.
func DefaultPipeline(cfg *config.Config, fetcher source.Fetcher, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)
	logger := p.Logger()

	pc := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(pc)
	}
	connectorOpts := func(name string) []source.Option {
		return []source.Option{
			source.WithLogger(logger),
			source.WithBaseURL(pc.Endpoints[name]),
		}
	}

	resolver := alias.NewResolver(
		alias.WithOverrides(cfg.AliasOverrides()),
		alias.WithDiscoverer(source.NewWikipedia(fetcher, connectorOpts(source.NameWikipedia)...)),
		alias.WithLogger(logger),
	)

	var stages []Stage
	if cfg.UseNewsData {
		stages = append(stages, QueryBankStage(
			source.NewNewsData(fetcher, cfg.NewsDataKey, connectorOpts(source.NameNewsData)...),
			NewsDataQueries,
		))
	}
	stages = append(stages,
		AliasStage(
			source.NewDuckDuckGo(fetcher, connectorOpts(source.NameDuckDuckGo)...),
			DuckDuckGoAliases,
			source.DDGQuery,
		),
		QueryBankStage(source.NewBing(fetcher, connectorOpts(source.NameBing)...), BingQueries),
	)
	if cfg.UseGoogleNews {
		stages = append(stages, QueryBankStage(
			source.NewGoogleNews(fetcher, connectorOpts(source.NameGoogleNews)...),
			GoogleNewsQueries,
		))
	}

	p.AddSteps(
		NewSanctionsStep(source.NewOpenSanctions(fetcher, cfg.OpenSanctionsKey, connectorOpts(source.NameOpenSanctions)...)),
		NewAliasStep(resolver, cfg.UseAliasDiscovery),
		NewQueryStep(query.NewGenerator()),
		NewFetchStep(stages,
			WithPerSourceLimit(cfg.PerSourceLimit),
			WithMaxTotal(cfg.MaxTotal),
			WithWorkers(cfg.Workers),
			WithFetchLogger(logger),
		),
		NewDomainPriorityStep(cfg.DomainPriority, logger),
		NewRiskStep(risk.NewScorer()),
	)
	return p
}
