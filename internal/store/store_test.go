package store

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadDir(t *testing.T) {
	s, err := LoadDir("testdata/data", discardLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"fluview", "fluview_prelim", "nc_vanilla", "sensors"}, s.Datasets())
	assert.Equal(t, []string{"gft", "wiki"}, s.Sensors())
	assert.Equal(t, []string{"vanilla"}, s.Models())
	assert.True(t, s.HasSensor("gft"))
	assert.False(t, s.HasSensor("twtr"))
	require.NoError(t, s.CheckReadiness(context.Background()))

	truth, err := s.Observations(TruthDataset)
	require.NoError(t, err)
	require.Len(t, truth, 6)
	assert.Equal(t, domain.Observation{Week: 201452, Location: "nat", Value: 2.0}, truth[0])

	nowcasts, err := s.Nowcasts(NowcastDataset("vanilla"))
	require.NoError(t, err)
	require.Len(t, nowcasts, 6)

	std, ok := nowcasts[0].StdDev.Float()
	assert.True(t, ok)
	assert.InDelta(t, 0.2, std, 1e-12)

	assert.Equal(t, domain.FieldRaw, nowcasts[3].StdDev.Kind())
	assert.Equal(t, "pending", nowcasts[3].StdDev.Text())
	assert.True(t, nowcasts[5].StdDev.IsMissing())

	assert.Equal(t, 6, s.RowCount(TruthDataset))
	assert.Equal(t, 7, s.RowCount(SensorDataset))
	assert.Equal(t, 6, s.RowCount(NowcastDataset("vanilla")))
	assert.Zero(t, s.RowCount("nc_ablation"))
}

func TestStore_MissingDataset(t *testing.T) {
	s := New()

	_, err := s.Observations(TruthDataset)
	require.ErrorIs(t, err, domain.ErrMissingDataset)

	_, err = s.SensorObservations(SensorDataset)
	require.ErrorIs(t, err, domain.ErrMissingDataset)

	_, err = s.Nowcasts(NowcastDataset("vanilla"))
	require.ErrorIs(t, err, domain.ErrMissingDataset)
	assert.Contains(t, err.Error(), "nc_vanilla")

	assert.Error(t, s.CheckReadiness(context.Background()))
}

func TestStore_AccessorsReturnCopies(t *testing.T) {
	s := New()
	s.AddObservations(TruthDataset, []domain.Observation{{Week: 201501, Location: "nat", Value: 1}})

	rows, err := s.Observations(TruthDataset)
	require.NoError(t, err)
	rows[0].Value = 99

	again, err := s.Observations(TruthDataset)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, again[0].Value, 0)
}

func TestLoadFile_Malformed(t *testing.T) {
	s := New()
	_, err := s.LoadFile("testdata/malformed.csv")
	require.ErrorIs(t, err, domain.ErrMalformedRow)

	var malformed *domain.MalformedRowError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "malformed", malformed.Dataset)
	assert.Equal(t, 2, malformed.Line)
	assert.Equal(t, 3, malformed.Column)
	assert.Equal(t, "oops", malformed.Value)
}

func TestParse_ColumnCounts(t *testing.T) {
	_, err := ParseObservations("fluview", strings.NewReader("201501,nat\n"))
	require.ErrorIs(t, err, domain.ErrMalformedRow)

	_, err = ParseSensorObservations("sensors", strings.NewReader("201501,gft,nat,1.0,extra\n"))
	require.ErrorIs(t, err, domain.ErrMalformedRow)

	rows, err := ParseNowcasts("nc_x", strings.NewReader("201501,nat,1.0\n201502,nat,1.1,0.5\n"))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParse_BadEpiweek(t *testing.T) {
	_, err := ParseSensorObservations("sensors", strings.NewReader("w1,gft,nat,1.0\n"))
	var malformed *domain.MalformedRowError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.Column)
	assert.Equal(t, 1, malformed.Line)
}

func TestParse_InvalidEpiweek(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"week past year end", "201360,nat,1.0\n201407,nat,2.0\n", 1},
		{"week 53 in 52 week year", "201501,nat,1.0\n201553,nat,2.0\n", 2},
		{"week zero", "201400,nat,1.0\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_, err := s.Load("fluview", strings.NewReader(tt.input))
			require.ErrorIs(t, err, domain.ErrMalformedRow)
			require.ErrorIs(t, err, epiweek.ErrInvalid)

			var malformed *domain.MalformedRowError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, 1, malformed.Column)
			assert.Equal(t, tt.line, malformed.Line)

			_, err = s.Observations("fluview")
			require.ErrorIs(t, err, domain.ErrMissingDataset)
		})
	}
}

func TestLayoutFor(t *testing.T) {
	assert.Equal(t, SensorLayout, LayoutFor("sensors"))
	assert.Equal(t, NowcastLayout, LayoutFor("nc_vanilla"))
	assert.Equal(t, ObservationLayout, LayoutFor("fluview"))
	assert.Equal(t, ObservationLayout, LayoutFor("fluview_prelim"))
}
