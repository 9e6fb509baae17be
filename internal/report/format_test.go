package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/ili-nowcast-eval/internal/analysis"
	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
)

func TestWriteLaTeX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLaTeX(&buf, []analysis.ComparisonRow{sampleRow("nat"), sampleRow("hhs1")}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		`nat & 0.200 & 0.300 & 1.250 & 0.160 & 0.240 & 0.250 & 0.500 & 1.323 & 0.189 & 0.378 \\ \hline`,
		lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "hhs1 & "))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []analysis.ComparisonRow{sampleRow("nat")}))

	assert.Equal(t,
		"location,mae_model,mae_ensemble,mae_naive,mase_model,mase_ensemble,rmse_model,rmse_ensemble,rmse_naive,rmsse_model,rmsse_ensemble\n"+
			"nat,0.2,0.3,1.25,0.16,0.24,0.25,0.5,1.32288,0.18898,0.37796\n",
		buf.String())
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestWriteHeatmapCSV(t *testing.T) {
	h := &analysis.Heatmap{
		Sensors: []string{"a", "b"},
		Weeks:   []epiweek.Epiweek{201452, 201453, 201501},
		Values:  mat.NewDense(2, 3, []float64{1.5, 2, -1, -1, 0.25, 3}),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHeatmapCSV(&buf, h))
	assert.Equal(t, "sensor,201452,201453,201501\na,1.5,2,-1\nb,-1,0.25,3\n", buf.String())
}

func TestWriteSummaries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNowcastSummary(&buf, analysis.NowcastSummary{
		Model: "vanilla", NationalCount: 5, First: 201451, Last: 201502, Total: 9, Locations: 4,
	}))
	assert.Contains(t, buf.String(), "num national nowcasts: 5\n")
	assert.Contains(t, buf.String(), "first week: 201451\n")
	assert.Contains(t, buf.String(), "num locations: 4\n")

	buf.Reset()
	require.NoError(t, WriteSensorSummaries(&buf, []analysis.SensorSummary{
		{Sensor: "gft", NationalCount: 4, First: 201451, Last: 201501, Locations: 2, Readings: 5},
		{Sensor: "twtr", NationalCount: 2, First: 201450, Last: 201453, Locations: 1, Readings: 2},
	}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "gft:\n  num national: 4\n"))
	assert.Contains(t, out, "twtr:\n")
	assert.True(t, strings.HasSuffix(out, "total num readings: 7\n"))
}
