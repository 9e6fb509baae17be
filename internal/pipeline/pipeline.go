package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/ili-nowcast-eval/internal/analysis"
	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/observability"
)

const (
	defaultBackoff     = 200 * time.Millisecond
	maxBackoff         = 5 * time.Second
	defaultMaxAttempts = 5
)

// RecordLoader writes nowcast records to storage, replacing any record with
// the same (epiweek, location).
type RecordLoader interface {
	LoadBatch(ctx context.Context, records []domain.NowcastRecord) error
}

// Options controls a publication run.
type Options struct {
	BatchSize int
	Window    Window

	// DryRun logs records instead of writing them.
	DryRun bool

	// MaxAttempts bounds writes per batch; zero means 5.
	MaxAttempts int
	// RetryBackoff is the first retry delay, doubled per attempt up to 5s;
	// zero means 200ms.
	RetryBackoff time.Duration
}

// Result summarizes a publication run.
type Result struct {
	Published int
	Skipped   int
	Batches   int
	Sentinel  domain.NowcastRecord
}

// Publisher writes a model's nowcasts followed by the last-update sentinel.
type Publisher struct {
	loader  RecordLoader
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	opts    Options
}

// New creates a Publisher. The clock stamps the update sentinel.
func New(l RecordLoader, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Publisher {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultBackoff
	}
	return &Publisher{
		loader:  l,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}
}

// Publish upserts rows in batches and then writes the update sentinel. The
// sentinel is written only after every batch has succeeded.
func (p *Publisher) Publish(ctx context.Context, rows []domain.NowcastObservation) (Result, error) {
	if err := p.opts.Window.Validate(); err != nil {
		return Result{}, err
	}

	p.metrics.PublishRunning.Set(1)
	defer p.metrics.PublishRunning.Set(0)

	records, skipped := Prepare(rows, p.opts.Window, p.logger)
	p.metrics.RecordsSkipped.Add(float64(skipped))
	res := Result{Skipped: skipped}

	p.logger.Info("publish started",
		"records", len(records),
		"skipped", skipped,
		"batch_size", p.opts.BatchSize,
		"dry_run", p.opts.DryRun,
	)

	for start := 0; start < len(records); start += p.opts.BatchSize {
		batch := records[start:min(start+p.opts.BatchSize, len(records))]
		if err := p.publishBatch(ctx, batch); err != nil {
			return res, fmt.Errorf("publish batch at %s: %w", batch[0].Week, err)
		}
		res.Published += len(batch)
		res.Batches++
	}

	res.Sentinel = domain.UpdateSentinel(p.clock.Now())
	if err := p.publishBatch(ctx, []domain.NowcastRecord{res.Sentinel}); err != nil {
		return res, fmt.Errorf("publish update sentinel: %w", err)
	}
	updated, _ := domain.DecodeUpdateSentinel(res.Sentinel)
	if !p.opts.DryRun {
		p.metrics.LastUpdateSentinelUnix.Set(float64(updated.Unix()))
	}

	p.logger.Info("publish complete",
		"published", res.Published,
		"batches", res.Batches,
		"updated", updated.Format(time.RFC3339),
	)
	return res, nil
}

func (p *Publisher) publishBatch(ctx context.Context, batch []domain.NowcastRecord) error {
	if p.opts.DryRun {
		for _, rec := range batch {
			level := slog.LevelDebug
			if rec.Location == analysis.NationalLocation || rec.IsUpdateSentinel() {
				level = slog.LevelInfo
			}
			p.logger.Log(ctx, level, "dry run record",
				"epiweek", rec.Week.String(), "location", rec.Location,
				"value", rec.Value, "std", rec.StdDev)
		}
		return nil
	}

	start := time.Now()
	if err := p.loadWithRetry(ctx, batch); err != nil {
		return err
	}
	p.metrics.BatchSize.Observe(float64(len(batch)))
	p.metrics.BatchPublishDuration.Observe(time.Since(start).Seconds())
	p.metrics.RecordsPublished.Add(float64(len(batch)))
	return nil
}

// loadWithRetry retries a failed batch with exponential backoff until it
// succeeds, the attempts run out or ctx is cancelled.
func (p *Publisher) loadWithRetry(ctx context.Context, batch []domain.NowcastRecord) error {
	backoff := p.opts.RetryBackoff
	var err error
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		if err = p.loader.LoadBatch(ctx, batch); err == nil {
			return nil
		}
		p.metrics.PublishErrors.Inc()
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "attempt", attempt)

		if attempt == p.opts.MaxAttempts || ctx.Err() != nil {
			break
		}
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(err, ctxErr)
	}
	return err
}
