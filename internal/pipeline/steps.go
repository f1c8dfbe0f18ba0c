package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/samradar/internal/aggregate"
	"github.com/nao1215/samradar/internal/model"
	"github.com/nao1215/samradar/internal/source"
)

// Step names, recorded in ScanReport.PerformedSteps.
const (
	StepSanctions      = "sanctions_check"
	StepAliases        = "alias_resolution"
	StepQueries        = "query_generation"
	StepFetch          = "source_fetch"
	StepDomainPriority = "domain_priority"
	StepRiskScoring    = "risk_scoring"
)

// SanctionsChecker looks an entity up in sanctions lists.
// *source.OpenSanctions implements it.
type SanctionsChecker interface {
	Check(ctx context.Context, name string) source.SanctionsOutcome
}

// AliasResolver expands an entity name into its alias set.
// *alias.Resolver implements it.
type AliasResolver interface {
	Resolve(ctx context.Context, name string, discover bool) ([]string, error)
}

// QueryBuilder builds the query bank from an alias set.
// *query.Generator implements it.
type QueryBuilder interface {
	BuildBank(aliases []string) []string
}

// HitScorer assigns a risk level to a hit.
// *risk.Scorer implements it.
type HitScorer interface {
	ScoreHit(h model.Hit) model.Result
}

// SanctionsStep records sanctions list matches for the entity name.
// The lookup never fails the scan; a failed lookup leaves the list empty
// and is visible as a failed outcome.
type SanctionsStep struct {
	checker SanctionsChecker
}

// NewSanctionsStep creates a SanctionsStep.
func NewSanctionsStep(checker SanctionsChecker) *SanctionsStep {
	return &SanctionsStep{checker: checker}
}

// Name returns the step name.
func (s *SanctionsStep) Name() string {
	return StepSanctions
}

// Do executes the step.
func (s *SanctionsStep) Do(ctx context.Context, report *model.ScanReport) error {
	out := s.checker.Check(ctx, report.Entity)
	report.Sanctions = append(report.Sanctions, out.Hits...)
	report.AddOutcome(out.SourceOutcome)
	return nil
}

// AliasStep resolves the alias set of the entity.
type AliasStep struct {
	resolver AliasResolver
	discover bool
}

// NewAliasStep creates an AliasStep. discover enables online alias
// discovery.
func NewAliasStep(resolver AliasResolver, discover bool) *AliasStep {
	return &AliasStep{resolver: resolver, discover: discover}
}

// Name returns the step name.
func (s *AliasStep) Name() string {
	return StepAliases
}

// Do executes the step.
func (s *AliasStep) Do(ctx context.Context, report *model.ScanReport) error {
	aliases, err := s.resolver.Resolve(ctx, report.Entity, s.discover)
	if err != nil {
		return err
	}
	report.Aliases = aliases
	return nil
}

// QueryStep expands the alias set into the query bank.
type QueryStep struct {
	builder QueryBuilder
}

// NewQueryStep creates a QueryStep.
func NewQueryStep(builder QueryBuilder) *QueryStep {
	return &QueryStep{builder: builder}
}

// Name returns the step name.
func (s *QueryStep) Name() string {
	return StepQueries
}

// Do executes the step.
func (s *QueryStep) Do(_ context.Context, report *model.ScanReport) error {
	report.QueryBank = s.builder.BuildBank(report.Aliases)
	report.QueryBankSize = len(report.QueryBank)
	return nil
}

// DomainPriorityStep reorders the aggregated hits so that links on
// preferred domains come first. With an empty list it keeps the order.
type DomainPriorityStep struct {
	priority []string
	logger   *slog.Logger
}

// NewDomainPriorityStep creates a DomainPriorityStep.
func NewDomainPriorityStep(priority []string, logger *slog.Logger) *DomainPriorityStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &DomainPriorityStep{priority: priority, logger: logger}
}

// Name returns the step name.
func (s *DomainPriorityStep) Name() string {
	return StepDomainPriority
}

// Do executes the step.
func (s *DomainPriorityStep) Do(_ context.Context, report *model.ScanReport) error {
	if len(s.priority) == 0 {
		return nil
	}
	report.Hits = aggregate.SortByDomainPriority(report.Hits, s.priority)
	s.logger.Debug("sorted by domain priority", "domains", len(s.priority))
	return nil
}

// RiskStep scores the aggregated hits and stores them as the report's
// results, keeping their order.
type RiskStep struct {
	scorer HitScorer
}

// NewRiskStep creates a RiskStep.
func NewRiskStep(scorer HitScorer) *RiskStep {
	return &RiskStep{scorer: scorer}
}

// Name returns the step name.
func (s *RiskStep) Name() string {
	return StepRiskScoring
}

// Do executes the step.
func (s *RiskStep) Do(_ context.Context, report *model.ScanReport) error {
	results := make([]model.Result, 0, len(report.Hits))
	for _, h := range report.Hits {
		results = append(results, s.scorer.ScoreHit(h))
	}
	report.Results = results
	return nil
}
