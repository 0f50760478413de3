package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pratik-mahalle/costpilot/internal/domain/recommendation"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/pkg/metrics"
)

// Utilization and coverage cutoffs for recommendation signals
const (
	idleUtilizationPct      = 10.0
	lowUtilizationPct       = 40.0
	reservedCoverageFrac    = 0.7
	rightsizeSavingsFrac    = 0.5
	reservedDiscountFrac    = 0.3
	spotDiscountFrac        = 0.6
	highImpactSavings       = 500.0
	mediumImpactSavings     = 100.0
)

// OptimizationEngine inspects per-resource usage over a window and emits
// pending recommendations. The engine is read-only over usage data; it
// never changes a recommendation's status after emitting it.
type OptimizationEngine struct {
	store  usage.Store
	logger *logger.Logger
}

// NewOptimizationEngine creates a new optimization engine
func NewOptimizationEngine(store usage.Store, log *logger.Logger) *OptimizationEngine {
	return &OptimizationEngine{
		store:  store,
		logger: log,
	}
}

// Recommend evaluates all resources in scope over [start, end) and returns
// recommendations ordered by potential savings descending, then impact,
// then type name. The filter narrows and truncates the ordered list.
func (e *OptimizationEngine) Recommend(ctx context.Context, scope usage.Scope, start, end time.Time, filter recommendation.Filter) ([]recommendation.Recommendation, error) {
	if !end.After(start) {
		return nil, errors.InvalidParameter("end", "after start", end.Format(time.RFC3339))
	}

	resources, err := e.store.FetchResourceUsage(ctx, scope, start, end)
	if err != nil {
		return nil, err
	}
	if len(resources) == 0 {
		if filter.AllowEmpty {
			return []recommendation.Recommendation{}, nil
		}
		return nil, errors.NoData("no resource usage in the requested window")
	}

	windowHours := end.Sub(start).Hours()

	recs := make([]recommendation.Recommendation, 0, len(resources))
	for _, r := range resources {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		recs = append(recs, e.evaluate(r, windowHours)...)
	}

	recs = applyFilter(recs, filter)

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].PotentialSavings != recs[j].PotentialSavings {
			return recs[i].PotentialSavings > recs[j].PotentialSavings
		}
		ri, rj := recommendation.ImpactRank(recs[i].Impact), recommendation.ImpactRank(recs[j].Impact)
		if ri != rj {
			return ri < rj
		}
		return recs[i].Type < recs[j].Type
	})

	if filter.MaxRecommendations > 0 && len(recs) > filter.MaxRecommendations {
		recs = recs[:filter.MaxRecommendations]
	}

	for _, r := range recs {
		metrics.RecordRecommendation(r.Type)
	}

	e.logger.WithFields(map[string]interface{}{
		"scope":           scope.String(),
		"resources":       len(resources),
		"recommendations": len(recs),
	}).Debug("Optimization recommendations generated")

	return recs, nil
}

// evaluate runs every signal against one resource. A resource can trigger
// more than one signal.
func (e *OptimizationEngine) evaluate(r usage.ResourceUsage, windowHours float64) []recommendation.Recommendation {
	var recs []recommendation.Recommendation
	windowCost := r.UsageHours * r.UnitCost

	switch {
	case r.AvgUtilization < idleUtilizationPct:
		recs = append(recs, e.newRecommendation(r,
			recommendation.TypeTerminateIdle,
			fmt.Sprintf("Terminate idle %s %s", r.ResourceType, r.ResourceID),
			fmt.Sprintf("Average utilization %.1f%% over the window; the resource appears idle and its full cost is recoverable", r.AvgUtilization),
			windowCost,
			recommendation.EffortLow,
			recommendation.RiskLow,
		))
	case r.AvgUtilization < lowUtilizationPct:
		recs = append(recs, e.newRecommendation(r,
			recommendation.TypeRightsize,
			fmt.Sprintf("Rightsize underutilized %s %s", r.ResourceType, r.ResourceID),
			fmt.Sprintf("Average utilization %.1f%%; a smaller size would cover the load", r.AvgUtilization),
			windowCost*rightsizeSavingsFrac,
			recommendation.EffortMedium,
			recommendation.RiskMedium,
		))
	}

	if !r.Reserved && windowHours > 0 && r.UsageHours >= reservedCoverageFrac*windowHours {
		recs = append(recs, e.newRecommendation(r,
			recommendation.TypeReservedCapacity,
			fmt.Sprintf("Reserve capacity for %s %s", r.ResourceType, r.ResourceID),
			fmt.Sprintf("Running %.0f of %.0f window hours on on-demand pricing; steady usage suits a reservation", r.UsageHours, windowHours),
			windowCost*reservedDiscountFrac,
			recommendation.EffortLow,
			recommendation.RiskLow,
		))
	}

	if r.Category == usage.CategoryAnalytics {
		recs = append(recs, e.newRecommendation(r,
			recommendation.TypeSpotMigration,
			fmt.Sprintf("Move %s %s to spot capacity", r.ResourceType, r.ResourceID),
			"Interruptible analytics workload suited to spot or preemptible instances",
			windowCost*spotDiscountFrac,
			recommendation.EffortHigh,
			recommendation.RiskHigh,
		))
	}

	return recs
}

func (e *OptimizationEngine) newRecommendation(r usage.ResourceUsage, recType, title, description string, savings float64, effort, risk string) recommendation.Recommendation {
	if savings < 0 {
		savings = 0
	}
	return recommendation.Recommendation{
		ID:               uuid.New().String(),
		Type:             recType,
		Title:            title,
		Description:      description,
		Impact:           impactFor(savings),
		PotentialSavings: savings,
		Effort:           effort,
		RiskLevel:        risk,
		Resources:        []string{r.ResourceID},
		Status:           recommendation.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}
}

func impactFor(savings float64) string {
	switch {
	case savings >= highImpactSavings:
		return recommendation.ImpactHigh
	case savings >= mediumImpactSavings:
		return recommendation.ImpactMedium
	default:
		return recommendation.ImpactLow
	}
}

// applyFilter drops recommendations below the minimum impact or above the
// maximum risk before ranking
func applyFilter(recs []recommendation.Recommendation, filter recommendation.Filter) []recommendation.Recommendation {
	out := recs[:0]
	for _, r := range recs {
		if filter.MinImpact != "" && recommendation.ImpactRank(r.Impact) > recommendation.ImpactRank(filter.MinImpact) {
			continue
		}
		if filter.MaxRisk != "" && recommendation.RiskRank(r.RiskLevel) > recommendation.RiskRank(filter.MaxRisk) {
			continue
		}
		out = append(out, r)
	}
	return out
}
