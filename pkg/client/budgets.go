package client

import (
	"context"
	"fmt"
	"net/url"
)

// BudgetService handles budget-related API calls
type BudgetService struct {
	client *Client
}

// BudgetListOptions narrows a budget listing
type BudgetListOptions struct {
	Scope  string // team, service, organization
	Target string
	Status string // active, exceeded
}

// Create registers a new budget
func (s *BudgetService) Create(ctx context.Context, req CreateBudgetRequest) (*Budget, error) {
	var budget Budget
	if err := s.client.doRequest(ctx, "POST", "/api/v1/budgets", req, &budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

// Get retrieves a single budget by ID
func (s *BudgetService) Get(ctx context.Context, id string) (*Budget, error) {
	var budget Budget
	path := fmt.Sprintf("/api/v1/budgets/%s", id)
	if err := s.client.doRequest(ctx, "GET", path, nil, &budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

// List retrieves budgets matching the options
func (s *BudgetService) List(ctx context.Context, opts *BudgetListOptions) ([]Budget, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Scope != "" {
			query.Set("scope", opts.Scope)
		}
		if opts.Target != "" {
			query.Set("target", opts.Target)
		}
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
	}

	path := "/api/v1/budgets"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var budgets []Budget
	if err := s.client.doRequest(ctx, "GET", path, nil, &budgets); err != nil {
		return nil, err
	}
	return budgets, nil
}

// Recompute refreshes a budget's spend from stored usage and returns the
// refreshed budget together with any alerts the refresh emitted
func (s *BudgetService) Recompute(ctx context.Context, id string) (*RecomputeResult, error) {
	var result RecomputeResult
	path := fmt.Sprintf("/api/v1/budgets/%s/recompute", id)
	if err := s.client.doRequest(ctx, "POST", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListAlerts retrieves alerts for a budget, optionally filtered by status
func (s *BudgetService) ListAlerts(ctx context.Context, budgetID, status string) ([]BudgetAlert, error) {
	path := fmt.Sprintf("/api/v1/budgets/%s/alerts", budgetID)
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var alerts []BudgetAlert
	if err := s.client.doRequest(ctx, "GET", path, nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// AcknowledgeAlert marks an alert as acknowledged
func (s *BudgetService) AcknowledgeAlert(ctx context.Context, alertID string) (*BudgetAlert, error) {
	return s.updateAlertStatus(ctx, alertID, "acknowledged")
}

// ResolveAlert marks an alert as resolved
func (s *BudgetService) ResolveAlert(ctx context.Context, alertID string) (*BudgetAlert, error) {
	return s.updateAlertStatus(ctx, alertID, "resolved")
}

func (s *BudgetService) updateAlertStatus(ctx context.Context, alertID, status string) (*BudgetAlert, error) {
	var alert BudgetAlert
	path := fmt.Sprintf("/api/v1/budgets/alerts/%s/status", alertID)
	body := map[string]string{"status": status}
	if err := s.client.doRequest(ctx, "PUT", path, body, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}
