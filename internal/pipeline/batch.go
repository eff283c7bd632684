package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/tagcheck/internal/model"
)

// DefaultConcurrency is the number of documents checked at once when
// WithConcurrency is not given.
const DefaultConcurrency = 10

// BatchProcessor checks many documents concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each document.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent checks.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent checks.
// Non-positive values keep the default.
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

// ProcessBatch checks every source and returns one report per source, in
// input order. Failed checks are recorded in their report and do not stop
// the batch. Sources not started before ctx is cancelled get a report
// carrying the cancellation error, and the cancellation error is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*model.CheckReport, error) {
	bp.logger.Debug("starting batch processing",
		"total_documents", len(sources),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.CheckReport, len(sources))

	err := bp.run(ctx, sources, func(report *model.CheckReport, index int) {
		results[index] = report
	})

	bp.logger.Debug("batch processing complete",
		"total_documents", len(sources),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

// ProcessBatchWithCallback checks every source and calls callback with each
// report as soon as it is done. callback runs on the worker goroutine and
// must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(report *model.CheckReport, index int),
) error {
	bp.logger.Debug("starting batch processing with callback",
		"total_documents", len(sources),
		"concurrency", bp.concurrency,
	)

	return bp.run(ctx, sources, callback)
}

// run is the errgroup loop shared by both entry points.
func (bp *BatchProcessor) run(
	ctx context.Context,
	sources []string,
	done func(report *model.CheckReport, index int),
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			report := model.NewCheckReport(source)

			select {
			case <-gctx.Done():
				report.SetError(gctx.Err())
				done(report, i)
				return gctx.Err()
			default:
			}

			if err := bp.pipelineFactory().Execute(gctx, report); err != nil {
				bp.logger.Debug("check failed",
					"source", source,
					"error", err,
				)
			}

			done(report, i)
			return nil
		})
	}

	return g.Wait()
}
