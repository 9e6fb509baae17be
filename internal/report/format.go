package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/ili-nowcast-eval/internal/analysis"
)

// latexRow is one table row: the location followed by the ten metric columns.
var latexRow = "%s" + strings.Repeat(" & %.3f", 10) + ` \\ \hline` + "\n"

// WriteLaTeX writes rows as LaTeX table rows in analysis.ComparisonColumns order.
func WriteLaTeX(w io.Writer, rows []analysis.ComparisonRow) error {
	for _, row := range rows {
		args := []any{row.Location}
		for _, v := range row.Values() {
			args = append(args, v)
		}
		if _, err := fmt.Fprintf(w, latexRow, args...); err != nil {
			return fmt.Errorf("write latex row %s: %w", row.Location, err)
		}
	}
	return nil
}

// WriteCSV writes rows under a header of analysis.ComparisonColumns.
func WriteCSV(w io.Writer, rows []analysis.ComparisonRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(analysis.ComparisonColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.Location}
		for _, v := range row.Values() {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.Location, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHeatmapCSV writes one row per sensor with a leading header of epiweeks.
func WriteHeatmapCSV(w io.Writer, h *analysis.Heatmap) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(h.Weeks)+1)
	header = append(header, "sensor")
	for _, wk := range h.Weeks {
		header = append(header, wk.String())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write heatmap header: %w", err)
	}
	for i, name := range h.Sensors {
		record := make([]string, 0, len(h.Weeks)+1)
		record = append(record, name)
		for _, v := range h.Row(i) {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write heatmap row %s: %w", name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNowcastSummary prints the model's nowcast coverage.
func WriteNowcastSummary(w io.Writer, s analysis.NowcastSummary) error {
	_, err := fmt.Fprintf(w,
		"model: %s\nnum national nowcasts: %d\nfirst week: %s\nlast week: %s\ntotal num nowcasts: %d\nnum locations: %d\n",
		s.Model, s.NationalCount, s.First, s.Last, s.Total, s.Locations)
	return err
}

// WriteSensorSummaries prints each sensor's coverage followed by the grand
// total of readings.
func WriteSensorSummaries(w io.Writer, summaries []analysis.SensorSummary) error {
	total := 0
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w,
			"%s:\n  num national: %d\n  first week: %s\n  last week: %s\n  num locations: %d\n",
			s.Sensor, s.NationalCount, s.First, s.Last, s.Locations); err != nil {
			return err
		}
		total += s.Readings
	}
	_, err := fmt.Fprintf(w, "total num readings: %d\n", total)
	return err
}
