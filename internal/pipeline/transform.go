package pipeline

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
)

// Window limits publication to the epiweeks First through Last inclusive.
// The zero Window places no limit.
type Window struct {
	First epiweek.Epiweek
	Last  epiweek.Epiweek
}

// Validate checks that both bounds are set together and in order.
func (w Window) Validate() error {
	if (w.First == 0) != (w.Last == 0) {
		return errors.New("window needs both first and last epiweek")
	}
	if w.First > w.Last {
		return fmt.Errorf("window first %s is after last %s", w.First, w.Last)
	}
	return nil
}

// Contains reports whether week falls inside the window.
func (w Window) Contains(week epiweek.Epiweek) bool {
	if w.First == 0 {
		return true
	}
	return week >= w.First && week <= w.Last
}

// Prepare converts nowcast rows into storage records. Rows outside the window
// are dropped. Rows whose standard deviation is not numeric are logged and
// counted in skipped. A later row for the same (epiweek, location) replaces an
// earlier one. Records come back ordered by epiweek, then location.
func Prepare(rows []domain.NowcastObservation, window Window, logger *slog.Logger) (records []domain.NowcastRecord, skipped int) {
	byKey := make(map[string]domain.NowcastRecord, len(rows))
	for _, row := range rows {
		if !window.Contains(row.Week) {
			continue
		}
		rec, err := domain.RecordFromNowcast(row)
		if err != nil {
			logger.Warn("skipping nowcast row", "error", err, "epiweek", row.Week.String(), "location", row.Location)
			skipped++
			continue
		}
		byKey[rec.Key()] = rec
	}

	records = make([]domain.NowcastRecord, 0, len(byKey))
	for _, rec := range byKey {
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b domain.NowcastRecord) int {
		if c := cmp.Compare(a.Week, b.Week); c != 0 {
			return c
		}
		return cmp.Compare(a.Location, b.Location)
	})
	return records, skipped
}
