package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
)

var errColumnCount = errors.New("unexpected number of columns")

// Layout identifies the column structure of a dataset file.
type Layout int

const (
	ObservationLayout Layout = iota // epiweek, location, value
	SensorLayout                    // epiweek, sensor, location, value
	NowcastLayout                   // epiweek, location, value[, std]
)

// LayoutFor picks the column layout from the dataset name.
func LayoutFor(dataset string) Layout {
	switch {
	case dataset == SensorDataset:
		return SensorLayout
	case strings.HasPrefix(dataset, NowcastPrefix):
		return NowcastLayout
	default:
		return ObservationLayout
	}
}

// LoadDir reads every *.csv file in dir into a new store. Each file's base
// name (without extension) becomes its dataset name.
func LoadDir(dir string, logger *slog.Logger) (*Store, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	sort.Strings(paths)

	s := New()
	for _, path := range paths {
		n, err := s.LoadFile(path)
		if err != nil {
			return nil, err
		}
		logger.Info("dataset loaded", "path", path, "rows", n)
	}
	return s, nil
}

// LoadFile parses one CSV file into the store and returns the row count.
func (s *Store) LoadFile(path string) (int, error) {
	dataset := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open dataset %s: %w", dataset, err)
	}
	defer f.Close()

	return s.Load(dataset, f)
}

// Load parses headerless CSV rows for dataset using the layout its name implies.
func (s *Store) Load(dataset string, r io.Reader) (int, error) {
	switch LayoutFor(dataset) {
	case SensorLayout:
		rows, err := ParseSensorObservations(dataset, r)
		if err != nil {
			return 0, err
		}
		s.AddSensorObservations(dataset, rows)
		return len(rows), nil
	case NowcastLayout:
		rows, err := ParseNowcasts(dataset, r)
		if err != nil {
			return 0, err
		}
		s.AddNowcasts(dataset, rows)
		return len(rows), nil
	default:
		rows, err := ParseObservations(dataset, r)
		if err != nil {
			return 0, err
		}
		s.AddObservations(dataset, rows)
		return len(rows), nil
	}
}

// ParseObservations reads epiweek,location,value rows.
func ParseObservations(dataset string, r io.Reader) ([]domain.Observation, error) {
	var rows []domain.Observation
	err := readRows(dataset, r, func(p *rowParser) error {
		if err := p.columns(3, 3); err != nil {
			return err
		}
		week, err := p.week(0)
		if err != nil {
			return err
		}
		value, err := p.float(2)
		if err != nil {
			return err
		}
		rows = append(rows, domain.Observation{Week: week, Location: p.text(1), Value: value})
		return nil
	})
	return rows, err
}

// ParseSensorObservations reads epiweek,sensor,location,value rows.
func ParseSensorObservations(dataset string, r io.Reader) ([]domain.SensorObservation, error) {
	var rows []domain.SensorObservation
	err := readRows(dataset, r, func(p *rowParser) error {
		if err := p.columns(4, 4); err != nil {
			return err
		}
		week, err := p.week(0)
		if err != nil {
			return err
		}
		value, err := p.float(3)
		if err != nil {
			return err
		}
		rows = append(rows, domain.SensorObservation{
			Week:     week,
			Sensor:   p.text(1),
			Location: p.text(2),
			Value:    value,
		})
		return nil
	})
	return rows, err
}

// ParseNowcasts reads epiweek,location,value[,std] rows. The trailing standard
// deviation is optional and kept as raw text when it is not numeric.
func ParseNowcasts(dataset string, r io.Reader) ([]domain.NowcastObservation, error) {
	var rows []domain.NowcastObservation
	err := readRows(dataset, r, func(p *rowParser) error {
		if err := p.columns(3, 4); err != nil {
			return err
		}
		week, err := p.week(0)
		if err != nil {
			return err
		}
		value, err := p.float(2)
		if err != nil {
			return err
		}
		var std domain.Field
		if len(p.record) == 4 {
			std = domain.ParseField(p.record[3])
		}
		rows = append(rows, domain.NowcastObservation{
			Week:     week,
			Location: p.text(1),
			Value:    value,
			StdDev:   std,
		})
		return nil
	})
	return rows, err
}

// rowParser converts the columns of one record, producing MalformedRowErrors
// that point at the offending line and column.
type rowParser struct {
	dataset string
	line    int
	record  []string
}

func (p *rowParser) fail(col int, err error) error {
	value := ""
	if col < len(p.record) {
		value = p.record[col]
	}
	return &domain.MalformedRowError{Dataset: p.dataset, Line: p.line, Column: col + 1, Value: value, Err: err}
}

func (p *rowParser) columns(minCols, maxCols int) error {
	if n := len(p.record); n < minCols || n > maxCols {
		return p.fail(n-1, fmt.Errorf("%w: got %d, want %d-%d", errColumnCount, n, minCols, maxCols))
	}
	return nil
}

func (p *rowParser) week(col int) (epiweek.Epiweek, error) {
	w, err := epiweek.Parse(p.record[col])
	if err != nil {
		return 0, p.fail(col, err)
	}
	return w, nil
}

func (p *rowParser) float(col int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.record[col]), 64)
	if err != nil {
		return 0, p.fail(col, err)
	}
	return v, nil
}

func (p *rowParser) text(col int) string {
	return strings.TrimSpace(p.record[col])
}

func readRows(dataset string, r io.Reader, parse func(*rowParser) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read dataset %s: %w", dataset, err)
		}
		line, _ := reader.FieldPos(0)
		if err := parse(&rowParser{dataset: dataset, line: line, record: record}); err != nil {
			return err
		}
	}
}
