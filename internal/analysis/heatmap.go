package analysis

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
)

// MissingValue marks heatmap cells with no reading. wILI is never negative,
// so no separate mask is needed.
const MissingValue = -1.0

// ErrNoSensorData is returned when none of the requested sensors has a reading
// at the location, leaving the week axis undefined.
var ErrNoSensorData = errors.New("no sensor data")

// Heatmap is a sensors-by-weeks matrix of readings.
type Heatmap struct {
	Sensors []string
	Weeks   []epiweek.Epiweek
	Values  *mat.Dense
}

// At returns the reading of sensor i in week j, or MissingValue.
func (h *Heatmap) At(i, j int) float64 { return h.Values.At(i, j) }

// Row returns a copy of sensor i's readings across all weeks.
func (h *Heatmap) Row(i int) []float64 {
	return mat.Row(nil, i, h.Values)
}

// HeatmapBuilder aligns sensor series on a common epiweek axis.
type HeatmapBuilder struct {
	extractor *Extractor
	sensors   []string
}

// NewHeatmapBuilder creates a builder defaulting to the given sensors.
func NewHeatmapBuilder(e *Extractor, sensors []string) *HeatmapBuilder {
	return &HeatmapBuilder{extractor: e, sensors: slices.Clone(sensors)}
}

// Build lays out sensorNames (the builder's sensors when nil) at location.
// The week axis spans from the earliest to the latest reading of any sensor,
// including weeks no sensor covers. Sensors without data keep an all-missing
// row. Explicitly named sensors must exist in the sensor table; the builder's
// own sensors need not.
func (b *HeatmapBuilder) Build(sensorNames []string, location string) (*Heatmap, error) {
	explicit := sensorNames != nil
	if !explicit {
		sensorNames = b.sensors
	}

	var (
		first, last epiweek.Epiweek
		found       bool
	)
	rows := make([]domain.TimeSeries, len(sensorNames))
	for i, name := range sensorNames {
		series, err := b.extractor.Sensor(name, location)
		var missing *domain.MissingDatasetError
		if !explicit && errors.As(err, &missing) && missing.Key != "" {
			series, err = domain.TimeSeries{}, nil
		}
		if err != nil {
			return nil, err
		}
		rows[i] = series

		lo, hi, ok := series.Bounds()
		if !ok {
			continue
		}
		if !found || lo < first {
			first = lo
		}
		if !found || hi > last {
			last = hi
		}
		found = true
	}
	if !found {
		return nil, fmt.Errorf("%w at %q", ErrNoSensorData, location)
	}

	weeks := epiweek.Range(first, last)
	values := mat.NewDense(len(sensorNames), len(weeks), nil)
	for i, series := range rows {
		for j, w := range weeks {
			v, ok := series[w]
			if !ok {
				v = MissingValue
			}
			values.Set(i, j, v)
		}
	}

	return &Heatmap{
		Sensors: slices.Clone(sensorNames),
		Weeks:   weeks,
		Values:  values,
	}, nil
}
