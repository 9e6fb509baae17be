package analysis

import (
	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
	"github.com/couchcryptid/ili-nowcast-eval/internal/store"
)

var testSensors = []string{"gft", "wiki", "twtr"}

// fixtureStore holds national truth for 2014w51-2015w02 with three sensors
// and a "vanilla" model, plus territory rows that hit the exclusion rules.
func fixtureStore() *store.Store {
	s := store.New()
	s.AddObservations(store.TruthDataset, []domain.Observation{
		{Week: 201451, Location: "nat", Value: 1.0},
		{Week: 201452, Location: "nat", Value: 2.0},
		{Week: 201453, Location: "nat", Value: 3.0},
		{Week: 201501, Location: "nat", Value: 2.0},
		{Week: 201502, Location: "nat", Value: 4.0},
		{Week: 201501, Location: "hhs1", Value: 1.1},
	})
	s.AddObservations(store.PreliminaryDataset, []domain.Observation{
		{Week: 201501, Location: "nat_1", Value: 1.8},
		{Week: 201502, Location: "nat_1", Value: 3.7},
		{Week: 201501, Location: "nat_2", Value: 1.9},
	})
	s.AddSensorObservations(store.SensorDataset, []domain.SensorObservation{
		{Week: 201451, Sensor: "gft", Location: "nat", Value: 1.5},
		{Week: 201452, Sensor: "gft", Location: "nat", Value: 2.5},
		{Week: 201453, Sensor: "gft", Location: "nat", Value: 2.5},
		{Week: 201501, Sensor: "gft", Location: "nat", Value: 2.0},
		{Week: 201452, Sensor: "wiki", Location: "nat", Value: 1.5},
		{Week: 201453, Sensor: "wiki", Location: "nat", Value: 3.5},
		{Week: 201502, Sensor: "wiki", Location: "nat", Value: 3.0},
		{Week: 201450, Sensor: "twtr", Location: "nat", Value: 9.0},
		{Week: 201453, Sensor: "twtr", Location: "nat", Value: 3.0},
		{Week: 201501, Sensor: "gft", Location: "hhs1", Value: 1.0},
	})
	s.AddNowcasts(store.NowcastDataset("vanilla"), []domain.NowcastObservation{
		{Week: 201451, Location: "nat", Value: 1.2, StdDev: domain.Numeric(0.1)},
		{Week: 201452, Location: "nat", Value: 2.2, StdDev: domain.Numeric(0.1)},
		{Week: 201453, Location: "nat", Value: 2.8, StdDev: domain.Numeric(0.1)},
		{Week: 201501, Location: "nat", Value: 2.0, StdDev: domain.Numeric(0.1)},
		{Week: 201502, Location: "nat", Value: 3.6, StdDev: domain.Raw("pending")},
		{Week: 201326, Location: "vi", Value: 0.5},
		{Week: 201327, Location: "vi", Value: 0.6},
		{Week: 201330, Location: "vi", Value: 0.7},
		{Week: 201452, Location: "pr", Value: 4.0},
		{Week: 201453, Location: "pr", Value: 4.1},
		{Week: 201501, Location: "pr", Value: 4.2},
	})
	return s
}

func fixtureExtractor() *Extractor {
	return NewExtractor(fixtureStore(), domain.DefaultExclusionRules())
}

func epiweekAt(i int) epiweek.Epiweek {
	return epiweek.Epiweek(201001).Add(i)
}
