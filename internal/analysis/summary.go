package analysis

import (
	"errors"

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
)

// NationalLocation is the location code of the United States as a whole.
const NationalLocation = "nat"

// NowcastSummary describes the evaluated model's nowcast coverage.
type NowcastSummary struct {
	Model         string          `json:"model"`
	NationalCount int             `json:"national_count"`
	First         epiweek.Epiweek `json:"first_week"`
	Last          epiweek.Epiweek `json:"last_week"`
	Total         int             `json:"total"`
	Locations     int             `json:"locations"`
}

// SensorSummary describes one sensor's coverage.
type SensorSummary struct {
	Sensor        string          `json:"sensor"`
	NationalCount int             `json:"national_count"`
	First         epiweek.Epiweek `json:"first_week"`
	Last          epiweek.Epiweek `json:"last_week"`
	Locations     int             `json:"locations"`
	Readings      int             `json:"readings"`
}

// NowcastSummary counts the model's nowcasts nationally and across locations.
// First and Last are zero when there is no national nowcast.
func (a *Analyzer) NowcastSummary(locations []string) (NowcastSummary, error) {
	national, err := a.extractor.Experiment(a.model, NationalLocation)
	if err != nil {
		return NowcastSummary{}, err
	}
	summary := NowcastSummary{
		Model:         a.model,
		NationalCount: len(national),
		Locations:     len(locations),
	}
	summary.First, summary.Last, _ = national.Bounds()

	for _, loc := range locations {
		series, err := a.extractor.Experiment(a.model, loc)
		if err != nil {
			return NowcastSummary{}, err
		}
		summary.Total += len(series)
	}
	return summary, nil
}

// SensorSummaries describes each configured sensor's coverage over locations.
// Sensors that were never loaded are reported with zero counts.
func (a *Analyzer) SensorSummaries(locations []string) ([]SensorSummary, error) {
	summaries := make([]SensorSummary, 0, len(a.sensors))
	for _, name := range a.sensors {
		s, err := a.sensorSummary(name, locations)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (a *Analyzer) sensorSummary(name string, locations []string) (SensorSummary, error) {
	summary := SensorSummary{Sensor: name}

	national, err := a.extractor.Sensor(name, NationalLocation)
	var missing *domain.MissingDatasetError
	if errors.As(err, &missing) && missing.Key != "" {
		return summary, nil
	}
	if err != nil {
		return SensorSummary{}, err
	}
	summary.NationalCount = len(national)
	summary.First, summary.Last, _ = national.Bounds()

	for _, loc := range locations {
		series, err := a.extractor.Sensor(name, loc)
		if err != nil {
			return SensorSummary{}, err
		}
		if len(series) > 0 {
			summary.Locations++
		}
		summary.Readings += len(series)
	}
	return summary, nil
}
