package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/costpilot/internal/api/dto"
	"github.com/pratik-mahalle/costpilot/internal/domain/scenario"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/pkg/utils"
	"github.com/pratik-mahalle/costpilot/internal/pkg/validator"
	"github.com/pratik-mahalle/costpilot/internal/services"
)

// ScenarioHandler serves what-if scenario runs and comparisons
type ScenarioHandler struct {
	store      usage.Store
	engine     *services.ScenarioEngine
	comparator *services.ScenarioComparator
	logger     *logger.Logger
	validator  *validator.Validator
}

func NewScenarioHandler(store usage.Store, engine *services.ScenarioEngine, comparator *services.ScenarioComparator, log *logger.Logger, val *validator.Validator) *ScenarioHandler {
	return &ScenarioHandler{
		store:      store,
		engine:     engine,
		comparator: comparator,
		logger:     log,
		validator:  val,
	}
}

// Run executes a scenario against a usage window. With async set the
// scenario is accepted and executed in the background.
func (h *ScenarioHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.RunScenarioRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if errs := h.validator.Validate(req); errs != nil {
		utils.WriteError(w, errors.ValidationError("Invalid scenario request", errs))
		return
	}

	params, err := req.DecodeParameters()
	if err != nil {
		writeServiceError(w, err, "Failed to decode scenario parameters")
		return
	}

	start, end, appErr := parseWindow(req.Start, req.End)
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	baseline, err := h.store.FetchUsage(r.Context(), toScope(req.Scope), start, end)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch usage")
		return
	}

	opts := services.RunOptions{HorizonDays: req.HorizonDays}

	if req.Async {
		s, err := h.engine.Submit(r.Context(), baseline, params, opts)
		if err != nil {
			writeServiceError(w, err, "Failed to submit scenario")
			return
		}
		utils.WriteSuccess(w, http.StatusAccepted, dto.NewScenarioDTO(s))
		return
	}

	s, err := h.engine.Run(r.Context(), baseline, params, opts)
	if err != nil {
		writeServiceError(w, err, "Failed to run scenario")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewScenarioDTO(s))
}

// Get retrieves one scenario run
func (h *ScenarioHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s, err := h.engine.Get(id)
	if err != nil {
		writeServiceError(w, err, "Failed to get scenario")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewScenarioDTO(s))
}

// List retrieves all scenario runs
func (h *ScenarioHandler) List(w http.ResponseWriter, r *http.Request) {
	scenarios := h.engine.List()

	out := make([]dto.ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		out[i] = dto.NewScenarioDTO(s)
	}

	utils.WriteSuccess(w, http.StatusOK, out)
}

// Cancel stops a running scenario
func (h *ScenarioHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.engine.Cancel(id); err != nil {
		writeServiceError(w, err, "Failed to cancel scenario")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": "cancelling",
	})
}

// Compare ranks a set of completed scenarios
func (h *ScenarioHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req dto.CompareScenariosRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if errs := h.validator.Validate(req); errs != nil {
		utils.WriteError(w, errors.ValidationError("Invalid comparison request", errs))
		return
	}

	scenarios := make([]*scenario.Scenario, 0, len(req.ScenarioIDs))
	for _, id := range req.ScenarioIDs {
		s, err := h.engine.Get(id)
		if err != nil {
			writeServiceError(w, err, "Failed to load scenario")
			return
		}
		scenarios = append(scenarios, s)
	}

	method := scenario.AnalysisMethod(req.AnalysisMethod)
	if req.AnalysisMethod == "" {
		method = scenario.MethodBalanced
	}

	comparison, err := h.comparator.Compare(scenarios, method)
	if err != nil {
		writeServiceError(w, err, "Failed to compare scenarios")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewComparisonResponse(comparison))
}
