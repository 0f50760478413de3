package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/budget"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
)

type BudgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) budget.Repository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) CreateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (id, name, amount, period, scope, target, alert_threshold,
			current_spend, utilization, status, period_start, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.Name, b.Amount, b.Period, b.Scope, b.Target, b.AlertThreshold,
		b.CurrentSpend, b.Utilization, b.Status,
		b.PeriodStart.Format(time.RFC3339), b.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create budget", err)
	}
	return nil
}

func (r *BudgetRepository) GetBudget(ctx context.Context, id string) (*budget.Budget, error) {
	query := `
		SELECT id, name, amount, period, scope, target, alert_threshold,
			current_spend, utilization, status, period_start, created_at, updated_at
		FROM budgets WHERE id = ?
	`
	b, err := scanBudget(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Budget")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get budget", err)
	}
	return b, nil
}

func (r *BudgetRepository) ListBudgets(ctx context.Context, filter budget.Filter) ([]*budget.Budget, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Scope != "" {
		where = append(where, "scope = ?")
		args = append(args, filter.Scope)
	}
	if filter.Target != "" {
		where = append(where, "target = ?")
		args = append(args, filter.Target)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := fmt.Sprintf(`
		SELECT id, name, amount, period, scope, target, alert_threshold,
			current_spend, utilization, status, period_start, created_at, updated_at
		FROM budgets WHERE %s ORDER BY created_at DESC
	`, strings.Join(where, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list budgets", err)
	}
	defer rows.Close()

	budgets := make([]*budget.Budget, 0, 20)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan budget", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *BudgetRepository) UpdateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		UPDATE budgets SET name = ?, amount = ?, period = ?, scope = ?, target = ?,
			alert_threshold = ?, current_spend = ?, utilization = ?, status = ?,
			period_start = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		b.Name, b.Amount, b.Period, b.Scope, b.Target,
		b.AlertThreshold, b.CurrentSpend, b.Utilization, b.Status,
		b.PeriodStart.Format(time.RFC3339), b.UpdatedAt.Format(time.RFC3339),
		b.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update budget", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Budget")
	}
	return nil
}

func (r *BudgetRepository) CreateAlert(ctx context.Context, a *budget.BudgetAlert) error {
	query := `
		INSERT INTO budget_alerts (id, budget_id, type, severity, trigger_pct,
			trigger_amt, message, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.BudgetID, a.Type, a.Severity, a.TriggerPct,
		a.TriggerAmt, a.Message, a.Status, a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create budget alert", err)
	}
	return nil
}

func (r *BudgetRepository) GetAlert(ctx context.Context, id string) (*budget.BudgetAlert, error) {
	query := `
		SELECT id, budget_id, type, severity, trigger_pct, trigger_amt, message, status, created_at, updated_at
		FROM budget_alerts WHERE id = ?
	`
	a, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Alert")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get alert", err)
	}
	return a, nil
}

func (r *BudgetRepository) ListAlerts(ctx context.Context, budgetID string, status string) ([]*budget.BudgetAlert, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if budgetID != "" {
		where = append(where, "budget_id = ?")
		args = append(args, budgetID)
	}
	if status != "" {
		where = append(where, "status = ?")
		args = append(args, status)
	}

	query := fmt.Sprintf(`
		SELECT id, budget_id, type, severity, trigger_pct, trigger_amt, message, status, created_at, updated_at
		FROM budget_alerts WHERE %s ORDER BY created_at DESC
	`, strings.Join(where, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list alerts", err)
	}
	defer rows.Close()

	alerts := make([]*budget.BudgetAlert, 0, 20)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan alert", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *BudgetRepository) UpdateAlert(ctx context.Context, a *budget.BudgetAlert) error {
	query := `UPDATE budget_alerts SET severity = ?, message = ?, status = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		a.Severity, a.Message, a.Status, a.UpdatedAt.Format(time.RFC3339), a.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update alert", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Alert")
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBudget(s scanner) (*budget.Budget, error) {
	var b budget.Budget
	var periodStart, createdAt string
	var updatedAt sql.NullString

	err := s.Scan(&b.ID, &b.Name, &b.Amount, &b.Period, &b.Scope, &b.Target,
		&b.AlertThreshold, &b.CurrentSpend, &b.Utilization, &b.Status,
		&periodStart, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	b.PeriodStart, _ = time.Parse(time.RFC3339, periodStart)
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if updatedAt.Valid {
		b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt.String)
	}
	return &b, nil
}

func scanAlert(s scanner) (*budget.BudgetAlert, error) {
	var a budget.BudgetAlert
	var createdAt string
	var updatedAt sql.NullString

	err := s.Scan(&a.ID, &a.BudgetID, &a.Type, &a.Severity, &a.TriggerPct,
		&a.TriggerAmt, &a.Message, &a.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if updatedAt.Valid {
		a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt.String)
	}
	return &a, nil
}
