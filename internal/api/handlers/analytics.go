package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/costpilot/internal/api/dto"
	"github.com/pratik-mahalle/costpilot/internal/domain/analytics"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/pkg/utils"
	"github.com/pratik-mahalle/costpilot/internal/pkg/validator"
	"github.com/pratik-mahalle/costpilot/internal/services"
)

// defaultConfidenceLevel is used when a forecast request omits one
const defaultConfidenceLevel = 0.95

// AnalyticsHandler serves forecasting and trend analysis
type AnalyticsHandler struct {
	store      usage.Store
	forecaster *services.Forecaster
	analyzer   *services.TrendAnalyzer
	logger     *logger.Logger
	validator  *validator.Validator
}

func NewAnalyticsHandler(store usage.Store, forecaster *services.Forecaster, analyzer *services.TrendAnalyzer, log *logger.Logger, val *validator.Validator) *AnalyticsHandler {
	return &AnalyticsHandler{
		store:      store,
		forecaster: forecaster,
		analyzer:   analyzer,
		logger:     log,
		validator:  val,
	}
}

// Forecast generates a cost projection for the requested scope and window
func (h *AnalyticsHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	var req dto.ForecastRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if errs := h.validator.Validate(req); errs != nil {
		utils.WriteError(w, errors.ValidationError("Invalid forecast request", errs))
		return
	}

	start, end, appErr := parseWindow(req.Start, req.End)
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	series, err := h.store.FetchUsage(r.Context(), toScope(req.Scope), start, end)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch usage")
		return
	}

	cl := req.ConfidenceLevel
	if cl == 0 {
		cl = defaultConfidenceLevel
	}

	result, err := h.forecaster.Forecast(series, analytics.ForecastMethod(req.Method), req.HorizonDays, cl)
	if err != nil {
		writeServiceError(w, err, "Failed to generate forecast")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewForecastResponse(result))
}

// Trend summarizes direction, growth and volatility for a window
func (h *AnalyticsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	var req dto.TrendRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if errs := h.validator.Validate(req); errs != nil {
		utils.WriteError(w, errors.ValidationError("Invalid trend request", errs))
		return
	}

	start, end, appErr := parseWindow(req.Start, req.End)
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	series, err := h.store.FetchUsage(r.Context(), toScope(req.Scope), start, end)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch usage")
		return
	}

	result, err := h.analyzer.Analyze(series, req.WindowSize, req.DetectAnomalies)
	if err != nil {
		writeServiceError(w, err, "Failed to analyze trend")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewTrendResponse(result))
}
