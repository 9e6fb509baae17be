package analysis

import (
	"fmt"
	"slices"
)

// ComparisonColumns is the fixed column order of a comparison table row.
var ComparisonColumns = []string{
	"location",
	"mae_model", "mae_ensemble", "mae_naive",
	"mase_model", "mase_ensemble",
	"rmse_model", "rmse_ensemble", "rmse_naive",
	"rmsse_model", "rmsse_ensemble",
}

// ComparisonRow scores the model, ensemble and naive nowcasts at one location,
// each normalized by the naive nowcast.
type ComparisonRow struct {
	Location string  `json:"location"`
	Model    Metrics `json:"model"`
	Ensemble Metrics `json:"ensemble"`
	Naive    Metrics `json:"naive"`
}

// Values returns the row's numbers in ComparisonColumns order (minus location).
func (r ComparisonRow) Values() []float64 {
	return []float64{
		r.Model.MAE, r.Ensemble.MAE, r.Naive.MAE,
		r.Model.Skill.MASE, r.Ensemble.Skill.MASE,
		r.Model.RMSE, r.Ensemble.RMSE, r.Naive.RMSE,
		r.Model.Skill.RMSSE, r.Ensemble.Skill.RMSSE,
	}
}

// Analyzer ties the extractor and synthesizer to one model and naive lag.
type Analyzer struct {
	extractor   *Extractor
	synthesizer *Synthesizer
	sensors     []string
	model       string
	lag         int
}

// NewAnalyzer creates an Analyzer scoring model against a naive baseline of
// the given lag, with the ensemble built from sensors.
func NewAnalyzer(e *Extractor, sensors []string, model string, lag int) *Analyzer {
	return &Analyzer{
		extractor:   e,
		synthesizer: NewSynthesizer(e, sensors),
		sensors:     slices.Clone(sensors),
		model:       model,
		lag:         lag,
	}
}

// Model returns the name of the model being evaluated.
func (a *Analyzer) Model() string { return a.model }

// Compare builds the comparison row for a location.
func (a *Analyzer) Compare(location string) (ComparisonRow, error) {
	truth, err := a.extractor.Truth(location)
	if err != nil {
		return ComparisonRow{}, err
	}
	model, err := a.extractor.Experiment(a.model, location)
	if err != nil {
		return ComparisonRow{}, err
	}
	ensemble, err := a.synthesizer.EnsembleMedian(location)
	if err != nil {
		return ComparisonRow{}, err
	}
	naive, err := a.synthesizer.Naive(location, a.lag)
	if err != nil {
		return ComparisonRow{}, err
	}

	row := ComparisonRow{Location: location}
	if row.Model, err = CompareToBaseline(truth, model, naive); err != nil {
		return ComparisonRow{}, fmt.Errorf("%s model: %w", location, err)
	}
	if row.Ensemble, err = CompareToBaseline(truth, ensemble, naive); err != nil {
		return ComparisonRow{}, fmt.Errorf("%s ensemble: %w", location, err)
	}
	if row.Naive, err = CompareToBaseline(truth, naive, naive); err != nil {
		return ComparisonRow{}, fmt.Errorf("%s naive: %w", location, err)
	}
	return row, nil
}
