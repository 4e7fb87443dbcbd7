package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BCJonkhout/nlp-project/internal/config"
)

// BatchProcessor handles concurrent crawling of multiple domains. It
// uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-run execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each run.
	// We use a factory to ensure each run gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent domain crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed runs. Access is synchronized via mutex.
	results []*Run
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent domain crawls.
// Default is 2; each crawl already runs its own worker pool, so domain
// level parallelism multiplies the outbound request rate.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each run to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak
// between runs and allows for per-run customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     2,
		results:         make([]*Run, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// Process crawls every configuration concurrently, one pipeline per
// domain. Per-domain failures are recorded on the corresponding Run;
// the returned error is non-nil only when the context was cancelled.
func (b *BatchProcessor) Process(ctx context.Context, configs []*config.Config) ([]*Run, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for _, cfg := range configs {
		cfg := cfg
		g.Go(func() error {
			run := &Run{
				Config:     cfg,
				BaseDomain: cfg.BaseDomain(),
			}

			start := time.Now()
			b.logger.Info("batch run started", "domain", run.BaseDomain)

			p := b.pipelineFactory()
			if err := p.Execute(ctx, run); err != nil {
				run.Err = err
				b.logger.Error("batch run failed",
					"domain", run.BaseDomain,
					"error", err,
					"elapsed", time.Since(start),
				)
			} else {
				b.logger.Info("batch run finished",
					"domain", run.BaseDomain,
					"elapsed", time.Since(start),
				)
			}

			b.mu.Lock()
			b.results = append(b.results, run)
			b.mu.Unlock()

			// Cancellation is the only batch-fatal condition; everything
			// else stays on the run.
			return ctx.Err()
		})
	}

	err := g.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results, err
}

// Results returns the runs completed so far.
func (b *BatchProcessor) Results() []*Run {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Run, len(b.results))
	copy(out, b.results)
	return out
}
