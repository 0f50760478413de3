package scenario

import (
	"fmt"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
)

// State is the scenario lifecycle state. Runs always pass through running:
// created -> running -> completed | failed.
type State string

const (
	StateCreated   State = "created"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

var stateTransitions = map[State][]State{
	StateCreated: {StateRunning},
	StateRunning: {StateCompleted, StateFailed},
}

// Transition advances the scenario state, rejecting skipped or reversed moves
func (s *Scenario) Transition(to State) error {
	for _, next := range stateTransitions[s.State] {
		if next == to {
			s.State = to
			return nil
		}
	}
	return fmt.Errorf("scenario state cannot move from %s to %s", s.State, to)
}

// Impact quantifies the cost effect of a scenario against its baseline
type Impact struct {
	TotalDifference float64            `json:"total_difference"` // sum(projected) - sum(baseline)
	PercentChange   float64            `json:"percent_change"`
	PerEntity       map[string]float64 `json:"per_entity,omitempty"`
}

// RiskAssessment grades a scenario's uncertainty
type RiskAssessment struct {
	Level           string  `json:"level"`
	ConfidenceScore float64 `json:"confidence_score"` // [0,1]
}

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Scenario is one what-if run. Impact and risk are computed once at
// completion; the value is immutable afterwards. Re-running the same
// parameters produces a new scenario.
type Scenario struct {
	ID          string         `json:"id"`
	Type        Type           `json:"type"`
	State       State          `json:"state"`
	Params      Parameters     `json:"-"`
	Baseline    *usage.Series  `json:"baseline,omitempty"`
	Projected   *usage.Series  `json:"projected,omitempty"`
	Impact      Impact         `json:"impact"`
	Risk        RiskAssessment `json:"risk"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// Savings returns the absolute saving when the scenario reduces cost, else 0
func (s *Scenario) Savings() float64 {
	if s.Impact.TotalDifference < 0 {
		return -s.Impact.TotalDifference
	}
	return 0
}
