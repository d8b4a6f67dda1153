package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/server/middleware"
)

const (
	defaultMetricsDays = 30
	maxDailyDays       = 7
)

// MetricsResponse is the body of GET /metrics.
type MetricsResponse struct {
	Summary   metrics.Summary     `json:"summary"`
	Daily     []metrics.DailyStat `json:"daily"`
	Timestamp string              `json:"timestamp"`
}

func (s *Server) metricsOn() bool {
	return s.cfg.MetricsEnabled && s.aggregator != nil
}

// metricsDays parses ?days=N, defaulting to 30.
func metricsDays(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return defaultMetricsDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return 0, &ErrValidation{Field: "days", Message: "must be a positive integer"}
	}
	return days, nil
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !s.metricsOn() {
		s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Metrics disabled"})
		return
	}

	days, err := metricsDays(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	summary, daily, err := s.loadMetrics(r, days)
	if err != nil {
		s.logger.Error("http.metrics.failed", zap.Error(err))
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{
			"error":     "Failed to retrieve metrics",
			"timestamp": s.timestamp(),
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, MetricsResponse{
		Summary:   summary,
		Daily:     daily,
		Timestamp: s.timestamp(),
	})
}

func (s *Server) handleMetricsExport(w http.ResponseWriter, r *http.Request) {
	if !s.metricsOn() {
		s.errorResponse(w, http.StatusNotFound, "Metrics disabled")
		return
	}

	days, err := metricsDays(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	summary, daily, err := s.loadMetrics(r, days)
	if err != nil {
		s.logger.Error("http.metrics.failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	var buf bytes.Buffer
	if err := metrics.WriteWorkbook(&buf, summary, daily); err != nil {
		s.logger.Error("http.metrics.export_failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to build workbook")
		return
	}

	filename := fmt.Sprintf("no-writer-metrics-%s.xlsx", s.now().UTC().Format("2006-01-02"))
	subject, _ := middleware.Subject(r.Context())
	s.logger.Info("http.metrics.exported", zap.String("subject", subject), zap.Int("days", days))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handlePrometheus(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.MetricsEnabled || s.collectors == nil {
		s.errorResponse(w, http.StatusNotFound, "Metrics disabled")
		return
	}
	s.collectors.Handler().ServeHTTP(w, r)
}

// loadMetrics returns the summary for days and the daily breakdown for at most 7 days.
func (s *Server) loadMetrics(r *http.Request, days int) (metrics.Summary, []metrics.DailyStat, error) {
	summary, err := s.aggregator.Summary(r.Context(), days)
	if err != nil {
		return metrics.Summary{}, nil, err
	}
	daily, err := s.aggregator.Daily(r.Context(), min(days, maxDailyDays))
	if err != nil {
		return metrics.Summary{}, nil, err
	}
	return summary, daily, nil
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
