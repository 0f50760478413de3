package budget

import "context"

// Repository persists budgets and their alerts
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id string) (*Budget, error)
	ListBudgets(ctx context.Context, filter Filter) ([]*Budget, error)
	UpdateBudget(ctx context.Context, b *Budget) error

	CreateAlert(ctx context.Context, a *BudgetAlert) error
	GetAlert(ctx context.Context, id string) (*BudgetAlert, error)
	ListAlerts(ctx context.Context, budgetID string, status string) ([]*BudgetAlert, error)
	UpdateAlert(ctx context.Context, a *BudgetAlert) error
}
