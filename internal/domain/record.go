package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
)

const (
	// UpdateSentinelWeek and UpdateSentinelLocation form the reserved key of
	// the last-update timestamp record.
	UpdateSentinelWeek     epiweek.Epiweek = 0
	UpdateSentinelLocation                 = "updated"

	// The nowcast columns are single-precision floats, so the timestamp is
	// split into a high part and a five-digit low part.
	sentinelSplit = 100000
)

// NowcastRecord is the unit written to nowcast storage, upserted on (Week, Location).
type NowcastRecord struct {
	Week     epiweek.Epiweek `json:"epiweek"`
	Location string          `json:"location"`
	Value    float64         `json:"value"`
	StdDev   float64         `json:"std"`
}

// Key identifies the record for upserts.
func (r NowcastRecord) Key() string {
	return fmt.Sprintf("%d|%s", int(r.Week), r.Location)
}

// IsUpdateSentinel reports whether the record is the last-update marker.
func (r NowcastRecord) IsUpdateSentinel() bool {
	return r.Week == UpdateSentinelWeek && r.Location == UpdateSentinelLocation
}

// UpdateSentinel encodes t (rounded to the second) as the last-update record:
// value = floor(unix / 100000), std = unix mod 100000.
func UpdateSentinel(t time.Time) NowcastRecord {
	unix := t.Round(time.Second).Unix()
	return NowcastRecord{
		Week:     UpdateSentinelWeek,
		Location: UpdateSentinelLocation,
		Value:    float64(unix / sentinelSplit),
		StdDev:   float64(unix % sentinelSplit),
	}
}

// DecodeUpdateSentinel recovers the timestamp stored by UpdateSentinel.
func DecodeUpdateSentinel(r NowcastRecord) (time.Time, bool) {
	if !r.IsUpdateSentinel() {
		return time.Time{}, false
	}
	unix := int64(math.Round(r.Value))*sentinelSplit + int64(math.Round(r.StdDev))
	return time.Unix(unix, 0).UTC(), true
}

// RecordFromNowcast converts a nowcast observation into a storage record. The
// standard deviation must be numeric; storage has no place for raw text.
func RecordFromNowcast(n NowcastObservation) (NowcastRecord, error) {
	std, ok := n.StdDev.Float()
	if !ok {
		return NowcastRecord{}, fmt.Errorf("nowcast %s/%s: standard deviation %s is not numeric", n.Week, n.Location, n.StdDev)
	}
	return NowcastRecord{Week: n.Week, Location: n.Location, Value: n.Value, StdDev: std}, nil
}
