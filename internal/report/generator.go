// Package report turns comparison rows into publication tables.
package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/ili-nowcast-eval/internal/analysis"
	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/observability"
)

// Policy decides what happens when a location cannot be scored.
type Policy int

const (
	// SkipFailed logs the failure and leaves the location out of the table.
	SkipFailed Policy = iota
	// AbortOnFailure stops at the first failing location.
	AbortOnFailure
)

// Comparer scores the estimators at one location.
type Comparer interface {
	Compare(location string) (analysis.ComparisonRow, error)
}

// Skip records a location left out of a table.
type Skip struct {
	Location string
	Reason   string
	Err      error
}

// Table is a comparison table in location order.
type Table struct {
	Rows    []analysis.ComparisonRow
	Skipped []Skip
}

// Generator builds comparison tables across locations.
type Generator struct {
	comparer Comparer
	policy   Policy
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewGenerator creates a Generator applying policy to failing locations.
func NewGenerator(c Comparer, policy Policy, logger *slog.Logger, metrics *observability.Metrics) *Generator {
	return &Generator{comparer: c, policy: policy, logger: logger, metrics: metrics}
}

// Table scores each location in turn.
func (g *Generator) Table(ctx context.Context, locations []string) (*Table, error) {
	start := time.Now()
	defer func() { g.metrics.EvaluationDuration.Observe(time.Since(start).Seconds()) }()

	t := &Table{Rows: make([]analysis.ComparisonRow, 0, len(locations))}
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := g.comparer.Compare(loc)
		if err != nil {
			if g.policy == AbortOnFailure {
				return nil, err
			}
			reason := Reason(err)
			g.logger.Warn("skipping location", "location", loc, "reason", reason, "error", err)
			g.metrics.LocationsSkipped.WithLabelValues(reason).Inc()
			t.Skipped = append(t.Skipped, Skip{Location: loc, Reason: reason, Err: err})
			continue
		}
		g.metrics.LocationsEvaluated.Inc()
		t.Rows = append(t.Rows, row)
	}

	g.logger.Info("comparison table built", "rows", len(t.Rows), "skipped", len(t.Skipped))
	return t, nil
}

// Reason classifies an analysis failure for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingDataset):
		return "missing_dataset"
	case errors.Is(err, domain.ErrEmptyIntersection):
		return "empty_intersection"
	case errors.Is(err, domain.ErrDegenerateBaseline):
		return "degenerate_baseline"
	default:
		return "other"
	}
}
