// Package store holds loaded surveillance tables in memory, indexed by dataset
// name. Tables are immutable once added; accessors hand out copies.
package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
)

// Dataset names used by the analysis.
const (
	TruthDataset       = "fluview"
	PreliminaryDataset = "fluview_prelim"
	SensorDataset      = "sensors"
	NowcastPrefix      = "nc_"
)

// NowcastDataset returns the dataset name holding a model's nowcasts.
func NowcastDataset(model string) string { return NowcastPrefix + model }

// Store indexes typed rows by dataset name.
type Store struct {
	observations map[string][]domain.Observation
	sensors      map[string][]domain.SensorObservation
	nowcasts     map[string][]domain.NowcastObservation
	sensorNames  map[string]bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		observations: make(map[string][]domain.Observation),
		sensors:      make(map[string][]domain.SensorObservation),
		nowcasts:     make(map[string][]domain.NowcastObservation),
		sensorNames:  make(map[string]bool),
	}
}

// AddObservations registers a truth-style table, replacing any table of the same name.
func (s *Store) AddObservations(dataset string, rows []domain.Observation) {
	s.observations[dataset] = slices.Clone(rows)
}

// AddSensorObservations registers a sensor table and records the sensor names it holds.
func (s *Store) AddSensorObservations(dataset string, rows []domain.SensorObservation) {
	s.sensors[dataset] = slices.Clone(rows)
	for _, r := range rows {
		s.sensorNames[r.Sensor] = true
	}
}

// AddNowcasts registers a model's nowcast table.
func (s *Store) AddNowcasts(dataset string, rows []domain.NowcastObservation) {
	s.nowcasts[dataset] = slices.Clone(rows)
}

// Observations returns a copy of a truth-style table.
func (s *Store) Observations(dataset string) ([]domain.Observation, error) {
	rows, ok := s.observations[dataset]
	if !ok {
		return nil, &domain.MissingDatasetError{Dataset: dataset}
	}
	return slices.Clone(rows), nil
}

// SensorObservations returns a copy of a sensor table.
func (s *Store) SensorObservations(dataset string) ([]domain.SensorObservation, error) {
	rows, ok := s.sensors[dataset]
	if !ok {
		return nil, &domain.MissingDatasetError{Dataset: dataset}
	}
	return slices.Clone(rows), nil
}

// Nowcasts returns a copy of a nowcast table.
func (s *Store) Nowcasts(dataset string) ([]domain.NowcastObservation, error) {
	rows, ok := s.nowcasts[dataset]
	if !ok {
		return nil, &domain.MissingDatasetError{Dataset: dataset}
	}
	return slices.Clone(rows), nil
}

// HasSensor reports whether any loaded sensor table has readings from name.
func (s *Store) HasSensor(name string) bool { return s.sensorNames[name] }

// Sensors lists the sensor names seen in loaded tables, sorted.
func (s *Store) Sensors() []string {
	names := make([]string, 0, len(s.sensorNames))
	for n := range s.sensorNames {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Models lists the models that have a nowcast table, sorted.
func (s *Store) Models() []string {
	models := make([]string, 0, len(s.nowcasts))
	for name := range s.nowcasts {
		models = append(models, strings.TrimPrefix(name, NowcastPrefix))
	}
	slices.Sort(models)
	return models
}

// Datasets lists every loaded dataset name, sorted.
func (s *Store) Datasets() []string {
	names := make([]string, 0, len(s.observations)+len(s.sensors)+len(s.nowcasts))
	for n := range s.observations {
		names = append(names, n)
	}
	for n := range s.sensors {
		names = append(names, n)
	}
	for n := range s.nowcasts {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// RowCount returns the number of rows in dataset, zero when it is not loaded.
func (s *Store) RowCount(dataset string) int {
	switch {
	case s.observations[dataset] != nil:
		return len(s.observations[dataset])
	case s.sensors[dataset] != nil:
		return len(s.sensors[dataset])
	default:
		return len(s.nowcasts[dataset])
	}
}

// CheckReadiness returns an error until ground truth has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if _, ok := s.observations[TruthDataset]; !ok {
		return errors.New("ground truth dataset not loaded")
	}
	return nil
}
