package handlers

import (
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/costpilot/internal/api/dto"
	"github.com/pratik-mahalle/costpilot/internal/domain/recommendation"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/pkg/utils"
	"github.com/pratik-mahalle/costpilot/internal/pkg/validator"
	"github.com/pratik-mahalle/costpilot/internal/services"
)

// RecommendationHandler serves optimization recommendations. Generated
// recommendations are held in memory so their status lifecycle can be
// driven through the API; regenerating for the same window replaces
// nothing, each run produces fresh pending entries.
type RecommendationHandler struct {
	engine    *services.OptimizationEngine
	logger    *logger.Logger
	validator *validator.Validator

	mu      sync.RWMutex
	byID    map[string]recommendation.Recommendation
	changes []recommendation.StatusChange
}

func NewRecommendationHandler(engine *services.OptimizationEngine, log *logger.Logger, val *validator.Validator) *RecommendationHandler {
	return &RecommendationHandler{
		engine:    engine,
		logger:    log,
		validator: val,
		byID:      make(map[string]recommendation.Recommendation),
	}
}

// Generate runs the optimization engine over a usage window
func (h *RecommendationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateRecommendationsRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if errs := h.validator.Validate(req); errs != nil {
		utils.WriteError(w, errors.ValidationError("Invalid recommendations request", errs))
		return
	}

	start, end, appErr := parseWindow(req.Start, req.End)
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	filter := recommendation.Filter{
		MinImpact:          req.MinImpact,
		MaxRisk:            req.MaxRisk,
		MaxRecommendations: req.MaxRecommendations,
		AllowEmpty:         req.AllowEmpty,
	}

	recs, err := h.engine.Recommend(r.Context(), toScope(req.Scope), start, end, filter)
	if err != nil {
		writeServiceError(w, err, "Failed to generate recommendations")
		return
	}

	h.mu.Lock()
	for _, rec := range recs {
		h.byID[rec.ID] = rec
	}
	h.mu.Unlock()

	out := make([]dto.RecommendationDTO, len(recs))
	for i, rec := range recs {
		out[i] = dto.NewRecommendationDTO(rec)
	}

	utils.WriteSuccess(w, http.StatusOK, out)
}

// Get retrieves one recommendation
func (h *RecommendationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.mu.RLock()
	rec, ok := h.byID[id]
	h.mu.RUnlock()
	if !ok {
		utils.WriteError(w, errors.NotFound("recommendation"))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewRecommendationDTO(rec))
}

// List retrieves generated recommendations, optionally filtered by status,
// ordered by potential savings descending
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	h.mu.RLock()
	recs := make([]recommendation.Recommendation, 0, len(h.byID))
	for _, rec := range h.byID {
		if status != "" && rec.Status != status {
			continue
		}
		recs = append(recs, rec)
	}
	h.mu.RUnlock()

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].PotentialSavings != recs[j].PotentialSavings {
			return recs[i].PotentialSavings > recs[j].PotentialSavings
		}
		return recs[i].ID < recs[j].ID
	})

	out := make([]dto.RecommendationDTO, len(recs))
	for i, rec := range recs {
		out[i] = dto.NewRecommendationDTO(rec)
	}

	utils.WriteSuccess(w, http.StatusOK, out)
}

// Transition moves a recommendation through its status lifecycle
func (h *RecommendationHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.TransitionRecommendationRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if errs := h.validator.Validate(req); errs != nil {
		utils.WriteError(w, errors.ValidationError("Invalid transition request", errs))
		return
	}

	h.mu.Lock()
	rec, ok := h.byID[id]
	if !ok {
		h.mu.Unlock()
		utils.WriteError(w, errors.NotFound("recommendation"))
		return
	}
	updated, change, err := rec.Transition(req.Status, req.Actor, req.Notes)
	if err != nil {
		h.mu.Unlock()
		utils.WriteError(w, errors.Conflict(err.Error()))
		return
	}
	h.byID[id] = updated
	h.changes = append(h.changes, change)
	h.mu.Unlock()

	h.logger.WithFields(map[string]interface{}{
		"recommendation_id": id,
		"from":              change.From,
		"to":                change.To,
		"actor":             change.Actor,
	}).Info("Recommendation status changed")

	utils.WriteSuccess(w, http.StatusOK, dto.NewRecommendationDTO(updated))
}
