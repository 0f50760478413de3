package worker

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/costpilot/internal/domain/budget"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/services"
)

// BudgetMonitor periodically recomputes every active budget from the
// usage store so alerts fire even when no API traffic touches a budget
type BudgetMonitor struct {
	tracker  *services.BudgetTracker
	schedule string
	cron     *cron.Cron
	logger   *logger.Logger
}

// NewBudgetMonitor creates a new budget monitor worker
func NewBudgetMonitor(tracker *services.BudgetTracker, schedule string, log *logger.Logger) *BudgetMonitor {
	return &BudgetMonitor{
		tracker:  tracker,
		schedule: schedule,
		cron:     cron.New(),
		logger:   log,
	}
}

// Start registers the cron schedule and runs an immediate first pass
func (m *BudgetMonitor) Start(ctx context.Context) error {
	m.logger.WithFields(map[string]interface{}{
		"schedule": m.schedule,
	}).Info("Starting budget monitor worker")

	if _, err := m.cron.AddFunc(m.schedule, func() {
		m.recomputeAll(ctx)
	}); err != nil {
		return err
	}

	m.recomputeAll(ctx)
	m.cron.Start()

	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	return nil
}

// Stop halts the schedule, waiting for an in-flight pass to finish
func (m *BudgetMonitor) Stop() {
	stopCtx := m.cron.Stop()
	<-stopCtx.Done()
	m.logger.Info("Budget monitor worker stopped")
}

// recomputeAll refreshes every active budget. One failing budget never
// blocks the rest of the pass.
func (m *BudgetMonitor) recomputeAll(ctx context.Context) {
	m.logger.Info("Starting budget recomputation pass")

	budgets, err := m.tracker.List(ctx, budget.Filter{})
	if err != nil {
		m.logger.ErrorWithErr(err, "Failed to list budgets for recomputation")
		return
	}

	recomputed := 0
	for _, b := range budgets {
		select {
		case <-ctx.Done():
			m.logger.Info("Budget recomputation pass cancelled")
			return
		default:
		}

		updated, alerts, err := m.tracker.RecomputeFromStore(ctx, b.ID)
		if err != nil {
			m.logger.WithFields(map[string]interface{}{
				"budget_id": b.ID,
			}).ErrorWithErr(err, "Failed to recompute budget")
			continue
		}
		recomputed++

		if len(alerts) > 0 {
			m.logger.WithFields(map[string]interface{}{
				"budget_id":   updated.ID,
				"utilization": updated.Utilization,
				"alerts":      len(alerts),
			}).Info("Budget pass raised alerts")
		}
	}

	m.logger.WithFields(map[string]interface{}{
		"budgets":    len(budgets),
		"recomputed": recomputed,
	}).Info("Completed budget recomputation pass")
}
