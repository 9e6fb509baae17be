package analysis

import (
	"math"
	"testing"

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzer_Compare(t *testing.T) {
	a := NewAnalyzer(fixtureExtractor(), testSensors, "vanilla", 1)

	row, err := a.Compare("nat")
	require.NoError(t, err)
	assert.Equal(t, "nat", row.Location)

	// Naive errors over 2014w52-2015w02 are -1, -1, +1, -2.
	assert.Equal(t, 4, row.Naive.N)
	assert.InDelta(t, 1.25, row.Naive.MAE, 1e-12)
	assert.InDelta(t, math.Sqrt(1.75), row.Naive.RMSE, 1e-12)
	assert.InDelta(t, 1.0, row.Naive.Skill.MASE, 1e-12)
	assert.InDelta(t, 1.0, row.Naive.Skill.RMSSE, 1e-12)

	// Ensemble errors are +0.5, 0, 0, 0, -1.
	assert.Equal(t, 5, row.Ensemble.N)
	assert.InDelta(t, 0.3, row.Ensemble.MAE, 1e-12)
	assert.InDelta(t, 0.5, row.Ensemble.RMSE, 1e-12)
	assert.InDelta(t, 0.24, row.Ensemble.Skill.MASE, 1e-12)
	assert.InDelta(t, 0.5/math.Sqrt(1.75), row.Ensemble.Skill.RMSSE, 1e-12)

	// Model errors are +0.2, +0.2, -0.2, 0, -0.4.
	assert.Equal(t, 5, row.Model.N)
	assert.InDelta(t, 0.2, row.Model.MAE, 1e-12)
	assert.InDelta(t, 0.16, row.Model.Skill.MASE, 1e-12)

	values := row.Values()
	require.Len(t, values, len(ComparisonColumns)-1)
	assert.InDelta(t, row.Model.MAE, values[0], 0)
	assert.InDelta(t, row.Naive.MAE, values[2], 0)
	assert.InDelta(t, row.Ensemble.Skill.MASE, values[4], 0)
	assert.InDelta(t, row.Naive.RMSE, values[7], 0)
	assert.InDelta(t, row.Ensemble.Skill.RMSSE, values[9], 0)
}

func TestAnalyzer_CompareIsRepeatable(t *testing.T) {
	a := NewAnalyzer(fixtureExtractor(), testSensors, "vanilla", 1)

	first, err := a.Compare("nat")
	require.NoError(t, err)
	second, err := a.Compare("nat")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyzer_CompareFailures(t *testing.T) {
	a := NewAnalyzer(fixtureExtractor(), testSensors, "vanilla", 1)

	// hhs1 has a single truth week, so the naive nowcast is empty.
	_, err := a.Compare("hhs1")
	require.ErrorIs(t, err, domain.ErrEmptyIntersection)

	missing := NewAnalyzer(fixtureExtractor(), testSensors, "ablation", 1)
	_, err = missing.Compare("nat")
	require.ErrorIs(t, err, domain.ErrMissingDataset)

	badLag := NewAnalyzer(fixtureExtractor(), testSensors, "vanilla", 0)
	_, err = badLag.Compare("nat")
	require.ErrorIs(t, err, domain.ErrInvalidLag)
}

func TestAnalyzer_NowcastSummary(t *testing.T) {
	a := NewAnalyzer(fixtureExtractor(), testSensors, "vanilla", 1)

	summary, err := a.NowcastSummary([]string{"nat", "vi", "pr", "hhs1"})
	require.NoError(t, err)
	assert.Equal(t, NowcastSummary{
		Model:         "vanilla",
		NationalCount: 5,
		First:         201451,
		Last:          201502,
		Total:         9,
		Locations:     4,
	}, summary)
}

func TestAnalyzer_SensorSummaries(t *testing.T) {
	a := NewAnalyzer(fixtureExtractor(), []string{"gft", "twtr", "epic"}, "vanilla", 1)

	summaries, err := a.SensorSummaries([]string{"nat", "hhs1", "vi"})
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, SensorSummary{
		Sensor: "gft", NationalCount: 4, First: 201451, Last: 201501, Locations: 2, Readings: 5,
	}, summaries[0])
	assert.Equal(t, epiweek.Epiweek(201450), summaries[1].First)
	assert.Equal(t, 1, summaries[1].Locations)
	assert.Equal(t, SensorSummary{Sensor: "epic"}, summaries[2])
}
