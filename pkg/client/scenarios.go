package client

import (
	"context"
	"fmt"
)

// ScenarioService handles scenario-related API calls
type ScenarioService struct {
	client *Client
}

// Run executes a scenario. With Async set the server accepts the run and
// executes it in the background; poll Get for completion.
func (s *ScenarioService) Run(ctx context.Context, req RunScenarioRequest) (*Scenario, error) {
	var scenario Scenario
	if err := s.client.doRequest(ctx, "POST", "/api/v1/scenarios", req, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Get retrieves a single scenario run by ID
func (s *ScenarioService) Get(ctx context.Context, id string) (*Scenario, error) {
	var scenario Scenario
	path := fmt.Sprintf("/api/v1/scenarios/%s", id)
	if err := s.client.doRequest(ctx, "GET", path, nil, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// List retrieves all scenario runs
func (s *ScenarioService) List(ctx context.Context) ([]Scenario, error) {
	var scenarios []Scenario
	if err := s.client.doRequest(ctx, "GET", "/api/v1/scenarios", nil, &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

// Cancel stops a running scenario
func (s *ScenarioService) Cancel(ctx context.Context, id string) error {
	path := fmt.Sprintf("/api/v1/scenarios/%s/cancel", id)
	return s.client.doRequest(ctx, "POST", path, nil, nil)
}

// Compare ranks a set of completed scenarios
func (s *ScenarioService) Compare(ctx context.Context, req CompareScenariosRequest) (*Comparison, error) {
	var comparison Comparison
	if err := s.client.doRequest(ctx, "POST", "/api/v1/scenarios/compare", req, &comparison); err != nil {
		return nil, err
	}
	return &comparison, nil
}
