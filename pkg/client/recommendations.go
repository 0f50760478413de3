package client

import (
	"context"
	"fmt"
	"net/url"
)

// RecommendationService handles recommendation-related API calls
type RecommendationService struct {
	client *Client
}

// TransitionRecommendationRequest moves a recommendation between statuses
type TransitionRecommendationRequest struct {
	Status string `json:"status"` // accepted, rejected, deferred, implemented
	Actor  string `json:"actor"`
	Notes  string `json:"notes,omitempty"`
}

// Generate runs the optimization engine over a usage window
func (s *RecommendationService) Generate(ctx context.Context, req GenerateRecommendationsRequest) ([]Recommendation, error) {
	var recommendations []Recommendation
	if err := s.client.doRequest(ctx, "POST", "/api/v1/recommendations/generate", req, &recommendations); err != nil {
		return nil, err
	}
	return recommendations, nil
}

// Get retrieves a single recommendation by ID
func (s *RecommendationService) Get(ctx context.Context, id string) (*Recommendation, error) {
	var recommendation Recommendation
	path := fmt.Sprintf("/api/v1/recommendations/%s", id)
	if err := s.client.doRequest(ctx, "GET", path, nil, &recommendation); err != nil {
		return nil, err
	}
	return &recommendation, nil
}

// List retrieves generated recommendations, optionally filtered by status
func (s *RecommendationService) List(ctx context.Context, status string) ([]Recommendation, error) {
	path := "/api/v1/recommendations"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var recommendations []Recommendation
	if err := s.client.doRequest(ctx, "GET", path, nil, &recommendations); err != nil {
		return nil, err
	}
	return recommendations, nil
}

// Transition moves a recommendation through its status lifecycle
func (s *RecommendationService) Transition(ctx context.Context, id string, req TransitionRecommendationRequest) (*Recommendation, error) {
	var recommendation Recommendation
	path := fmt.Sprintf("/api/v1/recommendations/%s/status", id)
	if err := s.client.doRequest(ctx, "PUT", path, req, &recommendation); err != nil {
		return nil, err
	}
	return &recommendation, nil
}

// Accept marks a recommendation as accepted
func (s *RecommendationService) Accept(ctx context.Context, id, actor string) (*Recommendation, error) {
	return s.Transition(ctx, id, TransitionRecommendationRequest{Status: "accepted", Actor: actor})
}

// Reject marks a recommendation as rejected
func (s *RecommendationService) Reject(ctx context.Context, id, actor string) (*Recommendation, error) {
	return s.Transition(ctx, id, TransitionRecommendationRequest{Status: "rejected", Actor: actor})
}
