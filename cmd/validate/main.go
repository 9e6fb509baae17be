// Command validate performs integrity checks on an evaluation data directory
// before any analysis runs. Every dataset is parsed on its own so that one
// malformed file does not hide problems in the others.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data -sensors gft,ght,twtr,wiki
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/ili-nowcast-eval/internal/config"
	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/store"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "", "directory containing the evaluation CSV datasets")
	sensors := flag.String("sensors", strings.Join(config.DefaultSensors, ","), "comma-separated list of registered sensors")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataDir, strings.Split(*sensors, ",")); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string, registered []string) int {
	fmt.Println("=== Nowcast Data Integrity Validation ===")
	fmt.Println()

	paths, err := filepath.Glob(filepath.Join(dataDir, "*.csv"))
	if err != nil || len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no CSV datasets in %s\n", dataDir)
		return 1
	}
	sort.Strings(paths)

	s := store.New()
	phases := []*phase{
		validateParsing(s, paths),
		validateRequiredDatasets(s),
		validateDuplicateKeys(s),
		validateSensorRegistry(s, registered),
		validateNowcastStdDev(s),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	total := 0
	for _, name := range s.Datasets() {
		total += s.RowCount(name)
	}
	fmt.Printf("Datasets: %d loaded, %d rows\n", len(s.Datasets()), total)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Parsing ──

func validateParsing(s *store.Store, paths []string) *phase {
	p := &phase{name: "Phase 1: Parsing (rows and epiweeks)"}
	for _, path := range paths {
		n, err := s.LoadFile(path)
		var malformed *domain.MalformedRowError
		switch {
		case errors.As(err, &malformed):
			p.errorf("%s line %d column %d: %q: %v", malformed.Dataset, malformed.Line, malformed.Column, malformed.Value, malformed.Err)
		case err != nil:
			p.errorf("%s: %v", filepath.Base(path), err)
		default:
			fmt.Printf("  loaded %-28s %6d rows\n", filepath.Base(path), n)
		}
	}
	return p
}

// ── Phase 2: Required datasets ──

func validateRequiredDatasets(s *store.Store) *phase {
	p := &phase{name: "Phase 2: Required datasets"}
	for _, name := range []string{store.TruthDataset, store.SensorDataset} {
		if s.RowCount(name) == 0 {
			p.errorf("dataset %q is missing or empty", name)
		}
	}
	if len(s.Models()) == 0 {
		p.errorf("no nowcast dataset (%s<model>.csv) found", store.NowcastPrefix)
	}
	return p
}

// ── Phase 3: Duplicate keys ──

func validateDuplicateKeys(s *store.Store) *phase {
	p := &phase{name: "Phase 3: Duplicate keys"}
	for _, name := range s.Datasets() {
		seen := make(map[string]int)
		switch store.LayoutFor(name) {
		case store.SensorLayout:
			rows, _ := s.SensorObservations(name)
			for _, r := range rows {
				seen[fmt.Sprintf("%s|%s|%s", r.Week, r.Sensor, r.Location)]++
			}
		case store.NowcastLayout:
			rows, _ := s.Nowcasts(name)
			for _, r := range rows {
				seen[fmt.Sprintf("%s|%s", r.Week, r.Location)]++
			}
		default:
			rows, _ := s.Observations(name)
			for _, r := range rows {
				seen[fmt.Sprintf("%s|%s", r.Week, r.Location)]++
			}
		}
		for _, key := range sortedKeys(seen) {
			if seen[key] > 1 {
				p.errorf("%s: key %s appears %d times", name, key, seen[key])
			}
		}
	}
	return p
}

// ── Phase 4: Sensor registry ──

func validateSensorRegistry(s *store.Store, registered []string) *phase {
	p := &phase{name: "Phase 4: Sensor registry"}
	known := make(map[string]bool, len(registered))
	for _, name := range registered {
		known[strings.TrimSpace(name)] = true
	}
	for _, name := range s.Sensors() {
		if !known[name] {
			p.errorf("sensor %q is not registered", name)
		}
	}
	for _, name := range registered {
		if !s.HasSensor(strings.TrimSpace(name)) {
			fmt.Printf("  Note: registered sensor %q has no readings\n", name)
		}
	}
	return p
}

// ── Phase 5: Nowcast standard deviations ──

func validateNowcastStdDev(s *store.Store) *phase {
	p := &phase{name: "Phase 5: Nowcast standard deviations"}
	for _, model := range s.Models() {
		rows, _ := s.Nowcasts(store.NowcastDataset(model))
		missing := 0
		for _, r := range rows {
			switch r.StdDev.Kind() {
			case domain.FieldRaw:
				p.errorf("%s %s/%s: std %q is not numeric", model, r.Week, r.Location, r.StdDev.Text())
			case domain.FieldMissing:
				missing++
			}
		}
		if missing > 0 {
			fmt.Printf("  Note: %s has %d nowcast(s) without std; they cannot be published\n", model, missing)
		}
	}
	return p
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
