package usage

import (
	"fmt"
	"time"
)

// CostPoint is a single immutable usage/cost observation for one entity.
// Points are produced by the usage store and never mutated by the core.
type CostPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
}

// Scope identifies the entity a series belongs to. Empty fields match all.
type Scope struct {
	TeamID      string `json:"team_id,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	Region      string `json:"region,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// String returns a stable key for the scope, used for per-entity breakdowns
func (s Scope) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", s.Provider, s.TeamID, s.ServiceName, s.Region)
}

// Series is an ordered sequence of cost points for one entity over a
// contiguous time range. Timestamps are strictly increasing; gaps are
// tolerated and skipped by consumers, never zero-filled.
type Series struct {
	Scope  Scope       `json:"scope"`
	Points []CostPoint `json:"points"`
}

// Len returns the number of points in the series
func (s *Series) Len() int {
	return len(s.Points)
}

// Amounts returns the point amounts in order
func (s *Series) Amounts() []float64 {
	amounts := make([]float64, len(s.Points))
	for i, p := range s.Points {
		amounts[i] = p.Amount
	}
	return amounts
}

// Total returns the sum of all point amounts
func (s *Series) Total() float64 {
	var sum float64
	for _, p := range s.Points {
		sum += p.Amount
	}
	return sum
}

// Validate checks the strictly-increasing timestamp invariant
func (s *Series) Validate() error {
	for i := 1; i < len(s.Points); i++ {
		if !s.Points[i].Timestamp.After(s.Points[i-1].Timestamp) {
			return fmt.Errorf("series timestamps not strictly increasing at index %d", i)
		}
	}
	return nil
}

// Interval returns the dominant spacing between consecutive points,
// defaulting to one day for series with fewer than two points.
func (s *Series) Interval() time.Duration {
	if len(s.Points) < 2 {
		return 24 * time.Hour
	}
	return s.Points[1].Timestamp.Sub(s.Points[0].Timestamp)
}

// ResourceUsage is an aggregated usage fact for one resource over the
// analysis window, used by the optimization engine.
type ResourceUsage struct {
	ResourceID     string  `json:"resource_id"`
	ResourceName   string  `json:"resource_name,omitempty"`
	ResourceType   string  `json:"resource_type"`
	Category       string  `json:"category"` // compute, storage, database, analytics
	Provider       string  `json:"provider"`
	Region         string  `json:"region,omitempty"`
	TeamID         string  `json:"team_id,omitempty"`
	ServiceName    string  `json:"service_name,omitempty"`
	UsageHours     float64 `json:"usage_hours"`
	AvgUtilization float64 `json:"avg_utilization"` // 0-100
	UnitCost       float64 `json:"unit_cost"`       // cost per usage hour
	Reserved       bool    `json:"reserved"`
}

// Resource categories
const (
	CategoryCompute   = "compute"
	CategoryStorage   = "storage"
	CategoryDatabase  = "database"
	CategoryAnalytics = "analytics"
)
