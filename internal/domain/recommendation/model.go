package recommendation

import (
	"fmt"
	"time"
)

// Recommendation is a cost optimization opportunity produced by the
// optimization engine. The engine only ever emits pending recommendations;
// status changes are user decisions applied through Transition.
type Recommendation struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Impact           string    `json:"impact"`
	PotentialSavings float64   `json:"potential_savings"` // >= 0
	Effort           string    `json:"effort"`
	RiskLevel        string    `json:"risk_level"`
	Resources        []string  `json:"resources,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// Recommendation types
const (
	TypeRightsize        = "rightsize"
	TypeTerminateIdle    = "terminate_idle"
	TypeReservedCapacity = "reserved_capacity"
	TypeSpotMigration    = "spot_migration"
)

// Impact levels
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// Effort levels
const (
	EffortLow    = "low"
	EffortMedium = "medium"
	EffortHigh   = "high"
)

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Status values
const (
	StatusPending     = "pending"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
	StatusImplemented = "implemented"
	StatusDeferred    = "deferred"
)

// allowed status transitions; user-driven, engine never mutates
var transitions = map[string][]string{
	StatusPending:  {StatusAccepted, StatusRejected, StatusDeferred},
	StatusAccepted: {StatusImplemented, StatusRejected},
	StatusDeferred: {StatusAccepted, StatusRejected},
}

// StatusChange records who moved a recommendation and when. The caller
// appends these to its own mutation log.
type StatusChange struct {
	RecommendationID string    `json:"recommendation_id"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	Actor            string    `json:"actor"`
	Notes            string    `json:"notes,omitempty"`
	At               time.Time `json:"at"`
}

// Transition returns a copy of the recommendation in the new status and
// the change record, or an error if the move is not allowed.
func (r Recommendation) Transition(to, actor, notes string) (Recommendation, StatusChange, error) {
	allowed := transitions[r.Status]
	ok := false
	for _, s := range allowed {
		if s == to {
			ok = true
			break
		}
	}
	if !ok {
		return r, StatusChange{}, fmt.Errorf("recommendation status cannot move from %s to %s", r.Status, to)
	}

	change := StatusChange{
		RecommendationID: r.ID,
		From:             r.Status,
		To:               to,
		Actor:            actor,
		Notes:            notes,
		At:               time.Now().UTC(),
	}
	r.Status = to
	return r, change, nil
}

// impactRank orders impact levels for tie-breaking, high first
var impactRank = map[string]int{
	ImpactHigh:   0,
	ImpactMedium: 1,
	ImpactLow:    2,
}

// ImpactRank returns the sort rank for an impact level (lower sorts first)
func ImpactRank(impact string) int {
	if r, ok := impactRank[impact]; ok {
		return r
	}
	return len(impactRank)
}

var riskRank = map[string]int{
	RiskLow:    0,
	RiskMedium: 1,
	RiskHigh:   2,
}

// RiskRank returns the ordering rank for a risk level
func RiskRank(risk string) int {
	if r, ok := riskRank[risk]; ok {
		return r
	}
	return len(riskRank)
}

// Filter narrows and truncates engine output
type Filter struct {
	MinImpact          string // exclude recommendations below this impact
	MaxRisk            string // exclude recommendations above this risk
	MaxRecommendations int    // truncate the final ordered list, 0 = no limit
	AllowEmpty         bool   // return an empty list instead of NoData
}
