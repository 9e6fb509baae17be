package analysis

import (
	"fmt"

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/store"
)

// Extractor filters stored rows into week-to-value series.
type Extractor struct {
	store      *store.Store
	exclusions domain.ExclusionRules
}

// NewExtractor creates an Extractor consulting rules for nowcast exclusions.
func NewExtractor(s *store.Store, rules domain.ExclusionRules) *Extractor {
	return &Extractor{store: s, exclusions: rules}
}

// Truth returns finalized wILI for a location.
func (e *Extractor) Truth(location string) (domain.TimeSeries, error) {
	return e.observations(store.TruthDataset, location)
}

// PreliminaryTruth returns national wILI as first reported lag weeks after the
// fact. The preliminary table stores each lag under the pseudo-location nat_<lag>.
func (e *Extractor) PreliminaryTruth(lag int) (domain.TimeSeries, error) {
	return e.observations(store.PreliminaryDataset, fmt.Sprintf("nat_%d", lag))
}

// Sensor returns one sensor's readings for a location.
func (e *Extractor) Sensor(name, location string) (domain.TimeSeries, error) {
	rows, err := e.store.SensorObservations(store.SensorDataset)
	if err != nil {
		return nil, err
	}
	if !e.store.HasSensor(name) {
		return nil, &domain.MissingDatasetError{Dataset: store.SensorDataset, Key: name}
	}

	series := make(domain.TimeSeries)
	for _, r := range rows {
		if r.Sensor == name && r.Location == location {
			series[r.Week] = r.Value
		}
	}
	return series, nil
}

// Experiment returns a model's nowcasts for a location, minus the weeks the
// exclusion table drops.
func (e *Extractor) Experiment(model, location string) (domain.TimeSeries, error) {
	rows, err := e.store.Nowcasts(store.NowcastDataset(model))
	if err != nil {
		return nil, err
	}

	series := make(domain.TimeSeries)
	for _, r := range rows {
		if r.Location != location || e.exclusions.Excludes(location, r.Week) {
			continue
		}
		series[r.Week] = r.Value
	}
	return series, nil
}

func (e *Extractor) observations(dataset, location string) (domain.TimeSeries, error) {
	rows, err := e.store.Observations(dataset)
	if err != nil {
		return nil, err
	}

	series := make(domain.TimeSeries)
	for _, r := range rows {
		if r.Location == location {
			series[r.Week] = r.Value
		}
	}
	return series, nil
}
