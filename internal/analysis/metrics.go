package analysis

import (
	"fmt"
	"math"

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
)

// Metrics summarizes an estimate's error against truth.
type Metrics struct {
	N    int     `json:"n"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`

	// Skill is set only by CompareToBaseline.
	Skill *Skill `json:"skill,omitempty"`
}

// Skill holds errors normalized by a baseline's error; below 1 beats the baseline.
type Skill struct {
	MASE  float64 `json:"mase"`
	RMSSE float64 `json:"rmsse"`
}

// Compute scores estimate against truth over the epiweeks both cover. Errors
// are estimate minus truth, accumulated in epiweek order.
func Compute(truth, estimate domain.TimeSeries) (Metrics, error) {
	weeks := truth.SharedWeeks(estimate)
	if len(weeks) == 0 {
		return Metrics{}, &domain.EmptyIntersectionError{TruthWeeks: len(truth), EstimateWeeks: len(estimate)}
	}

	var sumSq, sumAbs float64
	for _, w := range weeks {
		e := estimate[w] - truth[w]
		sumSq += e * e
		sumAbs += math.Abs(e)
	}
	n := float64(len(weeks))
	return Metrics{
		N:    len(weeks),
		RMSE: math.Sqrt(sumSq / n),
		MAE:  sumAbs / n,
	}, nil
}

// CompareToBaseline scores estimate like Compute and adds skill scores
// relative to baseline.
//
// The baseline is first cut down to the weeks the estimate covers and only then
// scored against truth. Its error is therefore measured where the estimate
// itself has coverage, not on the three-way intersection computed up front;
// the two differ when truth and baseline share weeks the estimate lacks.
func CompareToBaseline(truth, estimate, baseline domain.TimeSeries) (Metrics, error) {
	m, err := Compute(truth, estimate)
	if err != nil {
		return Metrics{}, err
	}

	trimmed := baseline.Restrict(estimate.SharedWeeks(baseline))
	base, err := Compute(truth, trimmed)
	if err != nil {
		return Metrics{}, fmt.Errorf("baseline: %w", err)
	}
	if base.MAE == 0 || base.RMSE == 0 {
		return Metrics{}, &domain.DegenerateBaselineError{MAE: base.MAE, RMSE: base.RMSE, N: base.N}
	}

	m.Skill = &Skill{
		MASE:  m.MAE / base.MAE,
		RMSSE: m.RMSE / base.RMSE,
	}
	return m, nil
}
