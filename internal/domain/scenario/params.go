package scenario

import (
	"fmt"

	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
)

// Type selects the what-if transform applied to the baseline
type Type string

const (
	TypeRightsizing      Type = "rightsizing"
	TypeMigration        Type = "migration"
	TypeReservation      Type = "reservation"
	TypeSpot             Type = "spot"
	TypeGrowthAdjustment Type = "growth_adjustment"
)

// Parameters is the tagged union of scenario-type-specific parameter sets.
// Each concrete set validates its own fields; the type tag selects the set,
// so there are no unchecked map lookups at run time.
type Parameters interface {
	ScenarioType() Type
	Validate() error
	// RiskWeight is the inherent risk of this parameter set in [0,1],
	// combined with impact magnitude when grading a run
	RiskWeight() float64
}

// RightsizingParams shrinks cost by a reduction factor, optionally only
// for the named services
type RightsizingParams struct {
	ReductionFactor float64  `json:"reduction_factor"` // [0,1], fraction removed
	TargetServices  []string `json:"target_services,omitempty"`
}

func (p RightsizingParams) ScenarioType() Type { return TypeRightsizing }

func (p RightsizingParams) Validate() error {
	if p.ReductionFactor < 0 || p.ReductionFactor > 1 {
		return errors.InvalidScenario("reduction_factor", "[0,1]", fmt.Sprintf("%g", p.ReductionFactor))
	}
	return nil
}

func (p RightsizingParams) RiskWeight() float64 { return 0.3 }

// MigrationParams shifts cost between providers/regions at a relative
// cost factor of the destination
type MigrationParams struct {
	FromRegion string  `json:"from_region"`
	ToRegion   string  `json:"to_region"`
	CostFactor float64 `json:"cost_factor"` // destination unit cost relative to source, (0,2]
}

func (p MigrationParams) ScenarioType() Type { return TypeMigration }

func (p MigrationParams) Validate() error {
	if p.FromRegion == "" {
		return errors.InvalidScenario("from_region", "non-empty", "")
	}
	if p.ToRegion == "" {
		return errors.InvalidScenario("to_region", "non-empty", "")
	}
	if p.CostFactor <= 0 || p.CostFactor > 2 {
		return errors.InvalidScenario("cost_factor", "(0,2]", fmt.Sprintf("%g", p.CostFactor))
	}
	return nil
}

func (p MigrationParams) RiskWeight() float64 { return 0.7 }

// ReservationParams applies a reservation discount to a covered fraction
// of spend
type ReservationParams struct {
	CoverageFraction float64 `json:"coverage_fraction"` // [0,1]
	DiscountRate     float64 `json:"discount_rate"`     // [0,1]
}

func (p ReservationParams) ScenarioType() Type { return TypeReservation }

func (p ReservationParams) Validate() error {
	if p.CoverageFraction < 0 || p.CoverageFraction > 1 {
		return errors.InvalidScenario("coverage_fraction", "[0,1]", fmt.Sprintf("%g", p.CoverageFraction))
	}
	if p.DiscountRate < 0 || p.DiscountRate > 1 {
		return errors.InvalidScenario("discount_rate", "[0,1]", fmt.Sprintf("%g", p.DiscountRate))
	}
	return nil
}

func (p ReservationParams) RiskWeight() float64 { return 0.2 }

// SpotParams moves a fraction of spend to spot/preemptible pricing
type SpotParams struct {
	SpotFraction float64 `json:"spot_fraction"` // [0,1]
	DiscountRate float64 `json:"discount_rate"` // [0,1]
}

func (p SpotParams) ScenarioType() Type { return TypeSpot }

func (p SpotParams) Validate() error {
	if p.SpotFraction < 0 || p.SpotFraction > 1 {
		return errors.InvalidScenario("spot_fraction", "[0,1]", fmt.Sprintf("%g", p.SpotFraction))
	}
	if p.DiscountRate < 0 || p.DiscountRate > 1 {
		return errors.InvalidScenario("discount_rate", "[0,1]", fmt.Sprintf("%g", p.DiscountRate))
	}
	return nil
}

func (p SpotParams) RiskWeight() float64 { return 0.6 }

// GrowthAdjustmentParams compounds an additional growth delta per point
type GrowthAdjustmentParams struct {
	GrowthDelta float64 `json:"growth_delta"` // [-1,1] per-period fractional change
}

func (p GrowthAdjustmentParams) ScenarioType() Type { return TypeGrowthAdjustment }

func (p GrowthAdjustmentParams) Validate() error {
	if p.GrowthDelta < -1 || p.GrowthDelta > 1 {
		return errors.InvalidScenario("growth_delta", "[-1,1]", fmt.Sprintf("%g", p.GrowthDelta))
	}
	return nil
}

func (p GrowthAdjustmentParams) RiskWeight() float64 { return 0.4 }

// implementation profile per scenario type, used for comparison scoring
type profile struct {
	Complexity        int // 1-5
	TimeToImplementDays int
}

var profiles = map[Type]profile{
	TypeRightsizing:      {Complexity: 2, TimeToImplementDays: 14},
	TypeMigration:        {Complexity: 5, TimeToImplementDays: 90},
	TypeReservation:      {Complexity: 1, TimeToImplementDays: 7},
	TypeSpot:             {Complexity: 3, TimeToImplementDays: 30},
	TypeGrowthAdjustment: {Complexity: 2, TimeToImplementDays: 21},
}

// Complexity returns the 1-5 implementation complexity for a scenario type
func (t Type) Complexity() int {
	if p, ok := profiles[t]; ok {
		return p.Complexity
	}
	return 3
}

// TimeToImplementDays returns the nominal implementation lead time
func (t Type) TimeToImplementDays() int {
	if p, ok := profiles[t]; ok {
		return p.TimeToImplementDays
	}
	return 30
}

// IsValid checks if the scenario type is known
func (t Type) IsValid() bool {
	_, ok := profiles[t]
	return ok
}
