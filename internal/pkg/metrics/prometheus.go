package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costpilot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "costpilot",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "costpilot",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Forecast metrics
	forecastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costpilot",
			Subsystem: "forecast",
			Name:      "generated_total",
			Help:      "Total number of forecasts generated",
		},
		[]string{"method"},
	)

	// Anomaly metrics
	anomaliesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costpilot",
			Subsystem: "trend",
			Name:      "anomalies_detected_total",
			Help:      "Total number of cost anomalies detected",
		},
		[]string{"severity"},
	)

	// Budget metrics
	budgetAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costpilot",
			Subsystem: "budget",
			Name:      "alerts_total",
			Help:      "Total number of budget alerts emitted",
		},
		[]string{"type", "severity"},
	)

	budgetUtilization = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "costpilot",
			Subsystem: "budget",
			Name:      "utilization_percent",
			Help:      "Current utilization percentage per budget",
		},
		[]string{"budget_id"},
	)

	// Scenario metrics
	scenarioRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costpilot",
			Subsystem: "scenario",
			Name:      "runs_total",
			Help:      "Total number of scenario runs by terminal status",
		},
		[]string{"type", "status"},
	)

	scenarioRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "costpilot",
			Subsystem: "scenario",
			Name:      "run_duration_seconds",
			Help:      "Duration of scenario runs in seconds",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		},
	)

	// Recommendation metrics
	recommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costpilot",
			Subsystem: "optimization",
			Name:      "recommendations_total",
			Help:      "Total number of optimization recommendations produced",
		},
		[]string{"type"},
	)
)

// RecordForecast increments the forecast counter for a method
func RecordForecast(method string) {
	forecastsTotal.WithLabelValues(method).Inc()
}

// RecordAnomaly increments the anomaly counter for a severity
func RecordAnomaly(severity string) {
	anomaliesDetected.WithLabelValues(severity).Inc()
}

// RecordBudgetAlert increments the budget alert counter
func RecordBudgetAlert(alertType, severity string) {
	budgetAlertsTotal.WithLabelValues(alertType, severity).Inc()
}

// SetBudgetUtilization records the current utilization for a budget
func SetBudgetUtilization(budgetID string, pct float64) {
	budgetUtilization.WithLabelValues(budgetID).Set(pct)
}

// RecordScenarioRun records a terminal scenario run
func RecordScenarioRun(scenarioType, status string, duration time.Duration) {
	scenarioRunsTotal.WithLabelValues(scenarioType, status).Inc()
	scenarioRunDuration.Observe(duration.Seconds())
}

// RecordRecommendation increments the recommendation counter for a type
func RecordRecommendation(recType string) {
	recommendationsTotal.WithLabelValues(recType).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments HTTP requests with request count, duration and
// in-flight gauges. Uses the chi route pattern as the path label to keep
// cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		status := strconv.Itoa(ww.status)
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
