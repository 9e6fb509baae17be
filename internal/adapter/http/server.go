package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/ili-nowcast-eval/internal/analysis"
	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
	"github.com/couchcryptid/ili-nowcast-eval/internal/observability"
)

// Comparer scores the estimators at one location.
type Comparer interface {
	Compare(location string) (analysis.ComparisonRow, error)
}

// HeatmapBuilder lays out sensor readings at one location.
type HeatmapBuilder interface {
	Build(sensorNames []string, location string) (*analysis.Heatmap, error)
}

// Server exposes health, readiness, metrics, and read-only analysis endpoints.
type Server struct {
	httpServer *http.Server
	comparer   Comparer
	heatmaps   HeatmapBuilder
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /v1/comparison and /v1/heatmap routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, comparer Comparer, heatmaps HeatmapBuilder, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		comparer: comparer,
		heatmaps: heatmaps,
		metrics:  metrics,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/comparison", s.handleComparison)
	mux.HandleFunc("GET /v1/heatmap", s.handleHeatmap)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	const endpoint = "comparison"

	location := r.URL.Query().Get("location")
	if location == "" {
		s.writeError(w, endpoint, http.StatusBadRequest, errors.New("location is required"))
		return
	}

	row, err := s.comparer.Compare(location)
	if err != nil {
		s.writeError(w, endpoint, statusFor(err), err)
		return
	}
	s.writeJSON(w, endpoint, http.StatusOK, row)
}

// heatmapResponse is the JSON form of a heatmap; Values[i][j] is sensor i in week j.
type heatmapResponse struct {
	Location string            `json:"location"`
	Sensors  []string          `json:"sensors"`
	Weeks    []epiweek.Epiweek `json:"weeks"`
	Values   [][]float64       `json:"values"`
	Missing  float64           `json:"missing_value"`
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	const endpoint = "heatmap"

	q := r.URL.Query()
	location := q.Get("location")
	if location == "" {
		s.writeError(w, endpoint, http.StatusBadRequest, errors.New("location is required"))
		return
	}
	var sensors []string
	if v := q.Get("sensors"); v != "" {
		sensors = strings.Split(v, ",")
	}

	h, err := s.heatmaps.Build(sensors, location)
	if err != nil {
		s.writeError(w, endpoint, statusFor(err), err)
		return
	}

	resp := heatmapResponse{
		Location: location,
		Sensors:  h.Sensors,
		Weeks:    h.Weeks,
		Values:   make([][]float64, len(h.Sensors)),
		Missing:  analysis.MissingValue,
	}
	for i := range h.Sensors {
		resp.Values[i] = h.Row(i)
	}
	s.writeJSON(w, endpoint, http.StatusOK, resp)
}

// statusFor maps analysis failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingDataset), errors.Is(err, analysis.ErrNoSensorData):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyIntersection),
		errors.Is(err, domain.ErrDegenerateBaseline),
		errors.Is(err, domain.ErrInvalidLag):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("analysis request failed", "endpoint", endpoint, "error", err)
	}
	s.writeJSON(w, endpoint, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, endpoint string, status int, v any) {
	s.metrics.HTTPRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	sharedobs.WriteJSON(w, status, v)
}
