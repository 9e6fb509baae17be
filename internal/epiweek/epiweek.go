// Package epiweek implements MMWR epidemiological weeks encoded as year*100+week.
//
// Weeks start on Sunday. Week 1 of a year is the week containing January 4th,
// so a year has either 52 or 53 weeks. All arithmetic goes through the calendar
// date of the week's first day, which keeps year rollover (including week 53)
// in one place.
package epiweek

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid is returned when a value does not encode a real epiweek.
var ErrInvalid = errors.New("invalid epiweek")

const day = 24 * time.Hour

// Epiweek is an epidemiological week encoded as year*100+week, e.g. 201501.
type Epiweek int

// New builds an epiweek from its year and week, validating the week number.
func New(year, week int) (Epiweek, error) {
	if week < 1 || week > WeeksInYear(year) {
		return 0, fmt.Errorf("%w: year %d has no week %d", ErrInvalid, year, week)
	}
	return Epiweek(year*100 + week), nil
}

// Parse reads a YYYYWW string.
func Parse(s string) (Epiweek, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return New(n/100, n%100)
}

// FromTime returns the epiweek containing t (date portion, UTC).
func FromTime(t time.Time) Epiweek {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	year := d.Year()
	switch {
	case d.Before(yearStart(year)):
		year--
	case !d.Before(yearStart(year + 1)):
		year++
	}
	week := int(d.Sub(yearStart(year))/day)/7 + 1
	return Epiweek(year*100 + week)
}

// WeeksInYear reports whether the MMWR year has 52 or 53 weeks.
func WeeksInYear(year int) int {
	return int(yearStart(year+1).Sub(yearStart(year))/day) / 7
}

// yearStart is the Sunday that begins week 1 of the year.
func yearStart(year int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	return jan4.AddDate(0, 0, -int(jan4.Weekday()))
}

// Year returns the year component.
func (e Epiweek) Year() int { return int(e) / 100 }

// Week returns the week-of-year component.
func (e Epiweek) Week() int { return int(e) % 100 }

// Valid reports whether the week number exists in its year.
func (e Epiweek) Valid() bool {
	return e.Week() >= 1 && e.Week() <= WeeksInYear(e.Year())
}

// StartDate returns the Sunday the week begins on.
func (e Epiweek) StartDate() time.Time {
	return yearStart(e.Year()).AddDate(0, 0, 7*(e.Week()-1))
}

// Add offsets the epiweek by n weeks (n may be negative).
func (e Epiweek) Add(n int) Epiweek {
	if n == 0 {
		return e
	}
	return FromTime(e.StartDate().AddDate(0, 0, 7*n))
}

// Sub returns the number of weeks from other to e.
func (e Epiweek) Sub(other Epiweek) int {
	return int(e.StartDate().Sub(other.StartDate())/day) / 7
}

// Compare returns -1, 0 or +1 as e is before, equal to or after other.
func (e Epiweek) Compare(other Epiweek) int {
	switch {
	case e < other:
		return -1
	case e > other:
		return 1
	default:
		return 0
	}
}

// Before reports whether e precedes other.
func (e Epiweek) Before(other Epiweek) bool { return e < other }

// After reports whether e follows other.
func (e Epiweek) After(other Epiweek) bool { return e > other }

func (e Epiweek) String() string {
	return fmt.Sprintf("%04d%02d", e.Year(), e.Week())
}

// Range enumerates every epiweek from first to last inclusive. It returns nil
// when first is after last.
func Range(first, last Epiweek) []Epiweek {
	if first > last {
		return nil
	}
	weeks := make([]Epiweek, 0, last.Sub(first)+1)
	for w := first; w <= last; w = w.Add(1) {
		weeks = append(weeks, w)
	}
	return weeks
}
