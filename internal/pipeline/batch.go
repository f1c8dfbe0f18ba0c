package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/samradar/internal/model"
)

// DefaultConcurrency is the number of entities screened at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// BatchProcessor screens multiple entities concurrently.
//
// Design decision: Batch handling lives outside Pipeline so that a
// pipeline only ever deals with one entity. The factory gives every
// entity fresh steps, which keeps per-scan state such as the aggregator
// from leaking between scans.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch screens entities concurrently and returns one report per
// entity, in input order. Individual scan failures are recorded in their
// reports; the error is non-nil only when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, entities []string) ([]*model.ScanReport, error) {
	bp.logger.Info("starting batch",
		"entities", len(entities),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.ScanReport, len(entities))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, entity := range entities {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				report := model.NewScanReport(entity)
				report.TimedOut = true
				results[i] = report
				return ctx.Err()
			default:
			}

			bp.logger.Info("screening entity",
				"entity", entity,
				"index", i+1,
				"total", len(entities),
			)

			report, err := bp.pipelineFactory().Run(ctx, entity)
			results[i] = report
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				bp.logger.Warn("scan failed", "entity", entity, "error", err)
				return nil
			}

			bp.logger.Info("scan completed",
				"entity", report.Entity,
				"results", len(report.Results),
				"sanctions", len(report.Sanctions),
				"elapsed", report.Elapsed,
			)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch complete",
		"entities", len(entities),
		"elapsed", time.Since(startTime),
	)
	return results, err
}
