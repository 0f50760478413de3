package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/costpilot/internal/api/dto"
	"github.com/pratik-mahalle/costpilot/internal/domain/budget"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/pkg/utils"
	"github.com/pratik-mahalle/costpilot/internal/pkg/validator"
	"github.com/pratik-mahalle/costpilot/internal/services"
)

// BudgetHandler serves budget lifecycle and alert endpoints
type BudgetHandler struct {
	tracker *services.BudgetTracker
	// applied when a create request omits an alert threshold
	defaultThreshold float64
	logger           *logger.Logger
	validator        *validator.Validator
}

func NewBudgetHandler(tracker *services.BudgetTracker, defaultThreshold float64, log *logger.Logger, val *validator.Validator) *BudgetHandler {
	return &BudgetHandler{
		tracker:          tracker,
		defaultThreshold: defaultThreshold,
		logger:           log,
		validator:        val,
	}
}

// Create registers a new budget
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBudgetRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if errs := h.validator.Validate(req); errs != nil {
		utils.WriteError(w, errors.ValidationError("Invalid budget request", errs))
		return
	}

	periodStart, appErr := parseTimestamp("period_start", req.PeriodStart)
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	threshold := req.AlertThreshold
	if threshold == 0 {
		threshold = h.defaultThreshold
	}

	b := &budget.Budget{
		Name:           req.Name,
		Amount:         req.Amount,
		Period:         budget.Period(req.Period),
		Scope:          budget.ScopeKind(req.Scope),
		Target:         req.Target,
		AlertThreshold: threshold,
		PeriodStart:    periodStart,
	}

	created, err := h.tracker.Create(r.Context(), b)
	if err != nil {
		writeServiceError(w, err, "Failed to create budget")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.NewBudgetDTO(created))
}

// Get retrieves one budget
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, err := h.tracker.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get budget")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewBudgetDTO(b))
}

// List retrieves budgets, optionally filtered by scope, target or status
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := budget.Filter{
		Scope:  budget.ScopeKind(r.URL.Query().Get("scope")),
		Target: r.URL.Query().Get("target"),
		Status: r.URL.Query().Get("status"),
	}

	budgets, err := h.tracker.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, "Failed to list budgets")
		return
	}

	out := make([]dto.BudgetDTO, len(budgets))
	for i, b := range budgets {
		out[i] = dto.NewBudgetDTO(b)
	}

	utils.WriteSuccess(w, http.StatusOK, out)
}

// Recompute refreshes a budget's spend and utilization from stored usage
// and returns any alerts emitted by the refresh
func (h *BudgetHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, alerts, err := h.tracker.RecomputeFromStore(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to recompute budget")
		return
	}

	emitted := make([]dto.BudgetAlertDTO, len(alerts))
	for i, a := range alerts {
		emitted[i] = dto.NewBudgetAlertDTO(a)
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"budget": dto.NewBudgetDTO(b),
		"alerts": emitted,
	})
}

// ListAlerts retrieves alerts for a budget, optionally filtered by status
func (h *BudgetHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := r.URL.Query().Get("status")

	alerts, err := h.tracker.ListAlerts(r.Context(), id, status)
	if err != nil {
		writeServiceError(w, err, "Failed to list alerts")
		return
	}

	out := make([]dto.BudgetAlertDTO, len(alerts))
	for i, a := range alerts {
		out[i] = dto.NewBudgetAlertDTO(a)
	}

	utils.WriteSuccess(w, http.StatusOK, out)
}

// UpdateAlertStatus acknowledges or resolves an alert
func (h *BudgetHandler) UpdateAlertStatus(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertID")

	var req dto.UpdateAlertStatusRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if errs := h.validator.Validate(req); errs != nil {
		utils.WriteError(w, errors.ValidationError("Invalid alert status request", errs))
		return
	}

	a, err := h.tracker.UpdateAlertStatus(r.Context(), alertID, req.Status)
	if err != nil {
		writeServiceError(w, err, "Failed to update alert")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewBudgetAlertDTO(a))
}
