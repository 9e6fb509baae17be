package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/ili-nowcast-eval/internal/adapter/http"
	"github.com/couchcryptid/ili-nowcast-eval/internal/analysis"
	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/observability"
	"github.com/couchcryptid/ili-nowcast-eval/internal/store"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockComparer struct {
	row analysis.ComparisonRow
	err error
}

func (m *mockComparer) Compare(location string) (analysis.ComparisonRow, error) {
	if m.err != nil {
		return analysis.ComparisonRow{}, m.err
	}
	row := m.row
	row.Location = location
	return row, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sensorStore() *store.Store {
	s := store.New()
	s.AddSensorObservations(store.SensorDataset, []domain.SensorObservation{
		{Week: 201501, Sensor: "gft", Location: "nat", Value: 2.0},
		{Week: 201503, Sensor: "gft", Location: "nat", Value: 2.4},
		{Week: 201502, Sensor: "wiki", Location: "nat", Value: 2.2},
	})
	return s
}

func newTestServer(readyErr error, comparer httpadapter.Comparer, metrics *observability.Metrics) *httpadapter.Server {
	extractor := analysis.NewExtractor(sensorStore(), nil)
	heatmaps := analysis.NewHeatmapBuilder(extractor, []string{"gft", "wiki"})
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, comparer, heatmaps, metrics, discardLogger())
}

func get(srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil, &mockComparer{}, observability.NewMetricsForTesting())
	assert.Equal(t, http.StatusOK, get(srv, "/healthz").Code)
}

func TestReadyz(t *testing.T) {
	ready := newTestServer(nil, &mockComparer{}, observability.NewMetricsForTesting())
	assert.Equal(t, http.StatusOK, get(ready, "/readyz").Code)

	notReady := newTestServer(fmt.Errorf("ground truth dataset not loaded"), &mockComparer{}, observability.NewMetricsForTesting())
	assert.Equal(t, http.StatusServiceUnavailable, get(notReady, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil, &mockComparer{}, observability.NewMetricsForTesting())
	rec := get(srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestComparison(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	comparer := &mockComparer{row: analysis.ComparisonRow{
		Model:    analysis.Metrics{N: 5, MAE: 0.2, RMSE: 0.25, Skill: &analysis.Skill{MASE: 0.16, RMSSE: 0.2}},
		Ensemble: analysis.Metrics{N: 5, MAE: 0.3, RMSE: 0.5, Skill: &analysis.Skill{MASE: 0.24, RMSSE: 0.4}},
		Naive:    analysis.Metrics{N: 4, MAE: 1.25, RMSE: 1.3, Skill: &analysis.Skill{MASE: 1, RMSSE: 1}},
	}}
	srv := newTestServer(nil, comparer, metrics)

	rec := get(srv, "/v1/comparison?location=hhs3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var row analysis.ComparisonRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.Equal(t, "hhs3", row.Location)
	assert.InDelta(t, 0.16, row.Model.Skill.MASE, 1e-12)
	assert.Equal(t, 4, row.Naive.N)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("comparison", "200")), 0)
}

func TestComparison_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing model", &domain.MissingDatasetError{Dataset: "nc_vanilla"}, http.StatusNotFound},
		{"no overlap", fmt.Errorf("pr model: %w", &domain.EmptyIntersectionError{}), http.StatusUnprocessableEntity},
		{"flat baseline", &domain.DegenerateBaselineError{N: 3}, http.StatusUnprocessableEntity},
		{"bad lag", domain.InvalidLagError(0), http.StatusUnprocessableEntity},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(nil, &mockComparer{err: tt.err}, observability.NewMetricsForTesting())
			rec := get(srv, "/v1/comparison?location=nat")
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestComparison_RequiresLocation(t *testing.T) {
	srv := newTestServer(nil, &mockComparer{}, observability.NewMetricsForTesting())
	assert.Equal(t, http.StatusBadRequest, get(srv, "/v1/comparison").Code)
	assert.Equal(t, http.StatusBadRequest, get(srv, "/v1/heatmap").Code)
}

func TestHeatmap(t *testing.T) {
	srv := newTestServer(nil, &mockComparer{}, observability.NewMetricsForTesting())

	rec := get(srv, "/v1/heatmap?location=nat")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Sensors []string    `json:"sensors"`
		Weeks   []int       `json:"weeks"`
		Values  [][]float64 `json:"values"`
		Missing float64     `json:"missing_value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"gft", "wiki"}, body.Sensors)
	assert.Equal(t, []int{201501, 201502, 201503}, body.Weeks)
	assert.Equal(t, [][]float64{{2.0, -1, 2.4}, {-1, 2.2, -1}}, body.Values)
	assert.InDelta(t, -1.0, body.Missing, 0)
}

func TestHeatmap_SensorSubsetAndErrors(t *testing.T) {
	srv := newTestServer(nil, &mockComparer{}, observability.NewMetricsForTesting())

	rec := get(srv, "/v1/heatmap?location=nat&sensors=wiki")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"weeks":[201502]`)

	assert.Equal(t, http.StatusNotFound, get(srv, "/v1/heatmap?location=hhs9").Code)
	assert.Equal(t, http.StatusNotFound, get(srv, "/v1/heatmap?location=nat&sensors=sar3").Code)
}
