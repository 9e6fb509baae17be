// Command genmock writes a synthetic evaluation data directory: finalized and
// preliminary wILI, sensor readings and one model's nowcasts. Output is
// deterministic for a given seed so fixtures can be regenerated and diffed.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -first 201340 -last 201620
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"maps"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
	"github.com/couchcryptid/ili-nowcast-eval/internal/store"
)

// sensorNoise is the reading noise per sensor, relative to the wILI level.
var sensorNoise = map[string]float64{
	"gft": 0.15, "ght": 0.25, "twtr": 0.3, "wiki": 0.2,
	"cdc": 0.35, "epic": 0.1, "sar3": 0.12, "arch": 0.18,
}

// sensorStart delays some sensors so the heatmap shows staggered coverage.
var sensorStart = map[string]int{"twtr": 12, "ght": 30, "epic": 52}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the generated datasets")
	first := flag.String("first", "201340", "first epiweek")
	last := flag.String("last", "201620", "last epiweek")
	locations := flag.String("locations", "nat,hhs1,hhs2,hhs3,hhs4,hhs5,hhs6,hhs7,hhs8,hhs9,hhs10,pr,vi", "comma-separated locations")
	model := flag.String("model", "vanilla", "model name for the nowcast dataset")
	seed := flag.Uint64("seed", 20160314, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	firstWeek, err := epiweek.Parse(*first)
	if err != nil {
		return fmt.Errorf("-first: %w", err)
	}
	lastWeek, err := epiweek.Parse(*last)
	if err != nil {
		return fmt.Errorf("-last: %w", err)
	}
	weeks := epiweek.Range(firstWeek, lastWeek)
	if len(weeks) == 0 {
		return fmt.Errorf("-first %s is after -last %s", firstWeek, lastWeek)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	g := &generator{
		rng:       rand.New(rand.NewPCG(*seed, *seed>>1)),
		weeks:     weeks,
		locations: strings.Split(*locations, ","),
	}
	g.buildTruth()

	files := []struct {
		name string
		rows [][]string
	}{
		{store.TruthDataset, g.truthRows()},
		{store.PreliminaryDataset, g.preliminaryRows()},
		{store.SensorDataset, g.sensorRows()},
		{store.NowcastDataset(*model), g.nowcastRows()},
	}
	for _, f := range files {
		path := filepath.Join(*out, f.name+".csv")
		if err := writeCSV(path, f.rows); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("%s: %d rows", path, len(f.rows))
	}
	return nil
}

type generator struct {
	rng       *rand.Rand
	weeks     []epiweek.Epiweek
	locations []string
	truth     map[string][]float64
}

// buildTruth draws a seasonal curve per location peaking around week 6.
func (g *generator) buildTruth() {
	g.truth = make(map[string][]float64, len(g.locations))
	for i, loc := range g.locations {
		scale := 1 + 0.1*float64(i%5)
		values := make([]float64, len(g.weeks))
		for j, w := range g.weeks {
			phase := 2 * math.Pi * float64(w.Week()-6) / float64(epiweek.WeeksInYear(w.Year()))
			base := 1.2 + 2.3*math.Pow((1+math.Cos(phase))/2, 3)
			values[j] = round3(scale * base * (1 + 0.05*g.rng.NormFloat64()))
		}
		g.truth[loc] = values
	}
}

func (g *generator) truthRows() [][]string {
	var rows [][]string
	for _, loc := range g.locations {
		for j, w := range g.weeks {
			rows = append(rows, []string{w.String(), loc, formatFloat(g.truth[loc][j])})
		}
	}
	return rows
}

// preliminaryRows reports national wILI as first issued 1 to 4 weeks later,
// biased low the way early reports are.
func (g *generator) preliminaryRows() [][]string {
	var rows [][]string
	national, ok := g.truth["nat"]
	if !ok {
		return rows
	}
	for lag := 1; lag <= 4; lag++ {
		loc := "nat_" + strconv.Itoa(lag)
		for j, w := range g.weeks {
			v := national[j] * (1 - 0.08/float64(lag)) * (1 + 0.02*g.rng.NormFloat64())
			rows = append(rows, []string{w.String(), loc, formatFloat(round3(v))})
		}
	}
	return rows
}

func (g *generator) sensorRows() [][]string {
	names := slices.Sorted(maps.Keys(sensorNoise))

	var rows [][]string
	for _, name := range names {
		for _, loc := range g.locations {
			for j := min(sensorStart[name], len(g.weeks)); j < len(g.weeks); j++ {
				v := g.truth[loc][j] * (1 + sensorNoise[name]*g.rng.NormFloat64())
				rows = append(rows, []string{g.weeks[j].String(), name, loc, formatFloat(round3(math.Max(v, 0)))})
			}
		}
	}
	return rows
}

func (g *generator) nowcastRows() [][]string {
	var rows [][]string
	for _, loc := range g.locations {
		for j, w := range g.weeks {
			std := 0.05 + 0.1*g.rng.Float64()
			v := g.truth[loc][j] + std*g.rng.NormFloat64()
			rows = append(rows, []string{w.String(), loc, formatFloat(round3(v)), formatFloat(round3(std))})
		}
	}
	return rows
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
