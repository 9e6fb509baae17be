package analysis

import (
	"errors"
	"slices"

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
)

// Synthesizer derives the baseline nowcasts from extracted series.
type Synthesizer struct {
	extractor *Extractor
	sensors   []string
}

// NewSynthesizer creates a Synthesizer whose ensemble draws on the given sensors.
func NewSynthesizer(e *Extractor, sensors []string) *Synthesizer {
	return &Synthesizer{extractor: e, sensors: slices.Clone(sensors)}
}

// Naive returns truth shifted forward by lag epiweeks: naive[w] = truth[w-lag]
// for every w where both weeks have truth. See the package documentation for
// the usual choices of lag.
func (s *Synthesizer) Naive(location string, lag int) (domain.TimeSeries, error) {
	if lag <= 0 {
		return nil, domain.InvalidLagError(lag)
	}
	truth, err := s.extractor.Truth(location)
	if err != nil {
		return nil, err
	}

	naive := make(domain.TimeSeries, len(truth))
	for w := range truth {
		if v, ok := truth[w.Add(-lag)]; ok {
			naive[w] = v
		}
	}
	return naive, nil
}

// EnsembleMedian returns, for every week with truth, the median of the
// readings of all configured sensors that cover that week. Weeks no sensor
// covers are omitted. Configured sensors that were never loaded contribute
// nothing.
func (s *Synthesizer) EnsembleMedian(location string) (domain.TimeSeries, error) {
	truth, err := s.extractor.Truth(location)
	if err != nil {
		return nil, err
	}

	readings := make([]domain.TimeSeries, 0, len(s.sensors))
	for _, name := range s.sensors {
		series, err := s.extractor.Sensor(name, location)
		var missing *domain.MissingDatasetError
		if errors.As(err, &missing) && missing.Key != "" {
			continue
		}
		if err != nil {
			return nil, err
		}
		readings = append(readings, series)
	}

	ensemble := make(domain.TimeSeries, len(truth))
	values := make([]float64, 0, len(readings))
	for _, w := range truth.Weeks() {
		values = values[:0]
		for _, series := range readings {
			if v, ok := series[w]; ok {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			ensemble[w] = median(values)
		}
	}
	return ensemble, nil
}

// median sorts values in place. Even counts average the two middle values.
func median(values []float64) float64 {
	slices.Sort(values)
	n := len(values)
	if n%2 == 0 {
		return (values[n/2-1] + values[n/2]) / 2
	}
	return values[n/2]
}
