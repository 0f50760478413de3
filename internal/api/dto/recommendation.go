package dto

import (
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/recommendation"
)

// GenerateRecommendationsRequest runs the optimization engine over a window
type GenerateRecommendationsRequest struct {
	Scope              ScopeDTO `json:"scope"`
	Start              string   `json:"start" validate:"required"`
	End                string   `json:"end" validate:"required"`
	MinImpact          string   `json:"min_impact,omitempty" validate:"omitempty,oneof=high medium low"`
	MaxRisk            string   `json:"max_risk,omitempty" validate:"omitempty,oneof=low medium high"`
	MaxRecommendations int      `json:"max_recommendations,omitempty" validate:"omitempty,gte=1"`
	AllowEmpty         bool     `json:"allow_empty,omitempty"`
}

// RecommendationDTO represents a recommendation in API responses
type RecommendationDTO struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Impact           string    `json:"impact"`
	PotentialSavings float64   `json:"potential_savings"`
	Effort           string    `json:"effort"`
	RiskLevel        string    `json:"risk_level"`
	Resources        []string  `json:"resources,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewRecommendationDTO maps a recommendation into its API shape
func NewRecommendationDTO(r recommendation.Recommendation) RecommendationDTO {
	return RecommendationDTO{
		ID:               r.ID,
		Type:             r.Type,
		Title:            r.Title,
		Description:      r.Description,
		Impact:           r.Impact,
		PotentialSavings: r.PotentialSavings,
		Effort:           r.Effort,
		RiskLevel:        r.RiskLevel,
		Resources:        r.Resources,
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
	}
}

// TransitionRecommendationRequest moves a recommendation between statuses
type TransitionRecommendationRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected deferred implemented"`
	Actor  string `json:"actor" validate:"required"`
	Notes  string `json:"notes,omitempty"`
}
