package dto

import (
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/budget"
)

// CreateBudgetRequest represents a budget creation request
type CreateBudgetRequest struct {
	Name           string  `json:"name" validate:"required"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Period         string  `json:"period" validate:"required,oneof=monthly quarterly yearly"`
	Scope          string  `json:"scope" validate:"required,oneof=team service organization"`
	Target         string  `json:"target,omitempty"`
	AlertThreshold float64 `json:"alert_threshold,omitempty" validate:"omitempty,gt=0,lte=100"`
	PeriodStart    string  `json:"period_start" validate:"required"`
}

// BudgetDTO represents a budget in API responses
type BudgetDTO struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Amount         float64   `json:"amount"`
	Period         string    `json:"period"`
	Scope          string    `json:"scope"`
	Target         string    `json:"target,omitempty"`
	AlertThreshold float64   `json:"alert_threshold"`
	CurrentSpend   float64   `json:"current_spend"`
	Utilization    float64   `json:"utilization_percentage"`
	Status         string    `json:"status"`
	PeriodStart    time.Time `json:"period_start"`
	DaysRemaining  int       `json:"days_remaining"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewBudgetDTO maps a budget into its API shape
func NewBudgetDTO(b *budget.Budget) BudgetDTO {
	return BudgetDTO{
		ID:             b.ID,
		Name:           b.Name,
		Amount:         b.Amount,
		Period:         string(b.Period),
		Scope:          string(b.Scope),
		Target:         b.Target,
		AlertThreshold: b.AlertThreshold,
		CurrentSpend:   b.CurrentSpend,
		Utilization:    b.Utilization,
		Status:         b.Status,
		PeriodStart:    b.PeriodStart,
		DaysRemaining:  b.DaysRemaining(time.Now().UTC()),
		CreatedAt:      b.CreatedAt,
	}
}

// BudgetAlertDTO represents a budget alert in API responses
type BudgetAlertDTO struct {
	ID         string    `json:"id"`
	BudgetID   string    `json:"budget_id"`
	Type       string    `json:"type"`
	Severity   string    `json:"severity"`
	TriggerPct float64   `json:"trigger_percentage"`
	TriggerAmt float64   `json:"trigger_amount"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewBudgetAlertDTO maps an alert into its API shape
func NewBudgetAlertDTO(a *budget.BudgetAlert) BudgetAlertDTO {
	return BudgetAlertDTO{
		ID:         a.ID,
		BudgetID:   a.BudgetID,
		Type:       a.Type,
		Severity:   a.Severity,
		TriggerPct: a.TriggerPct,
		TriggerAmt: a.TriggerAmt,
		Message:    a.Message,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
	}
}

// UpdateAlertStatusRequest advances an alert through its lifecycle
type UpdateAlertStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=acknowledged resolved"`
}
