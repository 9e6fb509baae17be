package domain

import "github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"

// Observation is a single ground-truth (or preliminary) wILI value.
type Observation struct {
	Week     epiweek.Epiweek
	Location string
	Value    float64
}

// SensorObservation is one sensor's wILI estimate for a location and week.
type SensorObservation struct {
	Week     epiweek.Epiweek
	Sensor   string
	Location string
	Value    float64
}

// NowcastObservation is a fused-model nowcast. The standard deviation column
// is optional in the source tables and may hold non-numeric text.
type NowcastObservation struct {
	Week     epiweek.Epiweek
	Location string
	Value    float64
	StdDev   Field
}
