package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/budget"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
)

// MockUsageStore is a mock implementation of usage.Store
type MockUsageStore struct {
	Series     map[string]*usage.Series
	Resources  map[string][]usage.ResourceUsage
	FetchError error
}

func NewMockUsageStore() *MockUsageStore {
	return &MockUsageStore{
		Series:    make(map[string]*usage.Series),
		Resources: make(map[string][]usage.ResourceUsage),
	}
}

// SetSeries registers the series returned for the scope
func (m *MockUsageStore) SetSeries(scope usage.Scope, s *usage.Series) {
	m.Series[scope.String()] = s
}

// SetResources registers the resource usage returned for the scope
func (m *MockUsageStore) SetResources(scope usage.Scope, resources []usage.ResourceUsage) {
	m.Resources[scope.String()] = resources
}

func (m *MockUsageStore) FetchUsage(ctx context.Context, scope usage.Scope, start, end time.Time) (*usage.Series, error) {
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	s, ok := m.Series[scope.String()]
	if !ok {
		return &usage.Series{Scope: scope, Points: []usage.CostPoint{}}, nil
	}
	filtered := &usage.Series{Scope: s.Scope}
	for _, p := range s.Points {
		if !p.Timestamp.Before(start) && p.Timestamp.Before(end) {
			filtered.Points = append(filtered.Points, p)
		}
	}
	return filtered, nil
}

func (m *MockUsageStore) FetchResourceUsage(ctx context.Context, scope usage.Scope, start, end time.Time) ([]usage.ResourceUsage, error) {
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return m.Resources[scope.String()], nil
}

// MockBudgetRepository is a mock implementation of budget.Repository
type MockBudgetRepository struct {
	Budgets     map[string]*budget.Budget
	Alerts      map[string]*budget.BudgetAlert
	CreateError error
	GetError    error
	UpdateError error
}

func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[string]*budget.Budget),
		Alerts:  make(map[string]*budget.BudgetAlert),
	}
}

func (m *MockBudgetRepository) CreateBudget(ctx context.Context, b *budget.Budget) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	cp := *b
	m.Budgets[b.ID] = &cp
	return nil
}

func (m *MockBudgetRepository) GetBudget(ctx context.Context, id string) (*budget.Budget, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	b, ok := m.Budgets[id]
	if !ok {
		return nil, fmt.Errorf("budget not found")
	}
	cp := *b
	return &cp, nil
}

func (m *MockBudgetRepository) ListBudgets(ctx context.Context, filter budget.Filter) ([]*budget.Budget, error) {
	var result []*budget.Budget
	for _, b := range m.Budgets {
		if filter.Scope != "" && b.Scope != filter.Scope {
			continue
		}
		if filter.Target != "" && b.Target != filter.Target {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		cp := *b
		result = append(result, &cp)
	}
	return result, nil
}

func (m *MockBudgetRepository) UpdateBudget(ctx context.Context, b *budget.Budget) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Budgets[b.ID]; !ok {
		return fmt.Errorf("budget not found")
	}
	cp := *b
	m.Budgets[b.ID] = &cp
	return nil
}

func (m *MockBudgetRepository) CreateAlert(ctx context.Context, a *budget.BudgetAlert) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	cp := *a
	m.Alerts[a.ID] = &cp
	return nil
}

func (m *MockBudgetRepository) GetAlert(ctx context.Context, id string) (*budget.BudgetAlert, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	a, ok := m.Alerts[id]
	if !ok {
		return nil, fmt.Errorf("alert not found")
	}
	cp := *a
	return &cp, nil
}

func (m *MockBudgetRepository) ListAlerts(ctx context.Context, budgetID string, status string) ([]*budget.BudgetAlert, error) {
	var result []*budget.BudgetAlert
	for _, a := range m.Alerts {
		if budgetID != "" && a.BudgetID != budgetID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		cp := *a
		result = append(result, &cp)
	}
	return result, nil
}

func (m *MockBudgetRepository) UpdateAlert(ctx context.Context, a *budget.BudgetAlert) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Alerts[a.ID]; !ok {
		return fmt.Errorf("alert not found")
	}
	cp := *a
	m.Alerts[a.ID] = &cp
	return nil
}
