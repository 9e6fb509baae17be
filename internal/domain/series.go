package domain

import (
	"slices"

	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
)

// TimeSeries maps epiweeks to values. Map order carries no meaning; callers
// that need an order use Weeks.
type TimeSeries map[epiweek.Epiweek]float64

// Weeks returns the series' epiweeks in ascending order.
func (s TimeSeries) Weeks() []epiweek.Epiweek {
	weeks := make([]epiweek.Epiweek, 0, len(s))
	for w := range s {
		weeks = append(weeks, w)
	}
	slices.Sort(weeks)
	return weeks
}

// Has reports whether the series has a value at w.
func (s TimeSeries) Has(w epiweek.Epiweek) bool {
	_, ok := s[w]
	return ok
}

// Bounds returns the first and last epiweek. ok is false for an empty series.
func (s TimeSeries) Bounds() (first, last epiweek.Epiweek, ok bool) {
	for w := range s {
		if !ok || w < first {
			first = w
		}
		if !ok || w > last {
			last = w
		}
		ok = true
	}
	return first, last, ok
}

// SharedWeeks returns the sorted intersection of both series' epiweeks.
func (s TimeSeries) SharedWeeks(other TimeSeries) []epiweek.Epiweek {
	weeks := make([]epiweek.Epiweek, 0, min(len(s), len(other)))
	for w := range s {
		if other.Has(w) {
			weeks = append(weeks, w)
		}
	}
	slices.Sort(weeks)
	return weeks
}

// Restrict returns a new series holding only the given epiweeks that s has.
func (s TimeSeries) Restrict(weeks []epiweek.Epiweek) TimeSeries {
	out := make(TimeSeries, len(weeks))
	for _, w := range weeks {
		if v, ok := s[w]; ok {
			out[w] = v
		}
	}
	return out
}
