package domain

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrMissingDataset     = errors.New("missing dataset")
	ErrEmptyIntersection  = errors.New("empty intersection")
	ErrDegenerateBaseline = errors.New("degenerate baseline")
	ErrMalformedRow       = errors.New("malformed row")
	ErrInvalidLag         = errors.New("invalid lag")
)

// MissingDatasetError reports a dataset, model or sensor that was never loaded.
// Key is empty when the whole dataset is absent.
type MissingDatasetError struct {
	Dataset string
	Key     string
}

func (e *MissingDatasetError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("dataset %q not loaded", e.Dataset)
	}
	return fmt.Sprintf("%q not found in dataset %q", e.Key, e.Dataset)
}

func (e *MissingDatasetError) Unwrap() error { return ErrMissingDataset }

// EmptyIntersectionError reports two series with no epiweek in common.
type EmptyIntersectionError struct {
	TruthWeeks    int
	EstimateWeeks int
}

func (e *EmptyIntersectionError) Error() string {
	return fmt.Sprintf("no common epiweeks between truth (%d weeks) and estimate (%d weeks)",
		e.TruthWeeks, e.EstimateWeeks)
}

func (e *EmptyIntersectionError) Unwrap() error { return ErrEmptyIntersection }

// DegenerateBaselineError reports a baseline whose own error is exactly zero,
// which leaves skill scores undefined.
type DegenerateBaselineError struct {
	MAE  float64
	RMSE float64
	N    int
}

func (e *DegenerateBaselineError) Error() string {
	return fmt.Sprintf("baseline error is zero over %d weeks (mae=%g, rmse=%g)", e.N, e.MAE, e.RMSE)
}

func (e *DegenerateBaselineError) Unwrap() error { return ErrDegenerateBaseline }

// MalformedRowError reports a required column that failed to parse.
type MalformedRowError struct {
	Dataset string
	Line    int
	Column  int
	Value   string
	Err     error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s line %d column %d: cannot parse %q: %v", e.Dataset, e.Line, e.Column, e.Value, e.Err)
}

func (e *MalformedRowError) Unwrap() []error { return []error{ErrMalformedRow, e.Err} }

// InvalidLagError rejects a naive-baseline lag that is not a positive week count.
func InvalidLagError(lag int) error {
	return fmt.Errorf("%w: %d weeks (must be positive)", ErrInvalidLag, lag)
}
