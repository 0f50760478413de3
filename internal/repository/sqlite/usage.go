package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
)

// UsageStore reads and writes usage facts. Ingestion happens outside the
// analytical core; the store only serves ordered reads to it.
type UsageStore struct {
	db *sql.DB
}

func NewUsageStore(db *sql.DB) *UsageStore {
	return &UsageStore{db: db}
}

// InsertPoints ingests cost points for a scope. Duplicate timestamps for
// the same scope replace the previous observation.
func (s *UsageStore) InsertPoints(ctx context.Context, scope usage.Scope, points []usage.CostPoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO cost_points (team_id, service_name, region, provider, timestamp, amount, currency)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, p := range points {
		if _, err := tx.ExecContext(ctx, query,
			scope.TeamID, scope.ServiceName, scope.Region, scope.Provider,
			p.Timestamp.UTC().Format(time.RFC3339), p.Amount, p.Currency,
		); err != nil {
			return errors.DatabaseError("Failed to insert cost point", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit cost points", err)
	}
	return nil
}

// FetchUsage returns the scope's points in [start, end) ordered by
// timestamp. Empty scope fields match any value.
func (s *UsageStore) FetchUsage(ctx context.Context, scope usage.Scope, start, end time.Time) (*usage.Series, error) {
	query := `
		SELECT timestamp, amount, currency FROM cost_points
		WHERE (? = '' OR team_id = ?)
		  AND (? = '' OR service_name = ?)
		  AND (? = '' OR region = ?)
		  AND (? = '' OR provider = ?)
		  AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query,
		scope.TeamID, scope.TeamID,
		scope.ServiceName, scope.ServiceName,
		scope.Region, scope.Region,
		scope.Provider, scope.Provider,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch usage", err)
	}
	defer rows.Close()

	series := &usage.Series{Scope: scope, Points: make([]usage.CostPoint, 0, 100)}
	for rows.Next() {
		var p usage.CostPoint
		var ts string
		if err := rows.Scan(&ts, &p.Amount, &p.Currency); err != nil {
			return nil, errors.DatabaseError("Failed to scan cost point", err)
		}
		p.Timestamp, _ = time.Parse(time.RFC3339, ts)
		series.Points = append(series.Points, p)
	}
	return series, rows.Err()
}

// InsertResourceUsage records aggregated per-resource facts for a window
func (s *UsageStore) InsertResourceUsage(ctx context.Context, windowStart, windowEnd time.Time, resources []usage.ResourceUsage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO resource_usage (resource_id, resource_name, resource_type, category,
			provider, region, team_id, service_name, window_start, window_end,
			usage_hours, avg_utilization, unit_cost, reserved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, r := range resources {
		if _, err := tx.ExecContext(ctx, query,
			r.ResourceID, r.ResourceName, r.ResourceType, r.Category,
			r.Provider, r.Region, r.TeamID, r.ServiceName,
			windowStart.UTC().Format(time.RFC3339), windowEnd.UTC().Format(time.RFC3339),
			r.UsageHours, r.AvgUtilization, r.UnitCost, r.Reserved,
		); err != nil {
			return errors.DatabaseError("Failed to insert resource usage", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit resource usage", err)
	}
	return nil
}

// FetchResourceUsage returns per-resource facts whose windows overlap
// [start, end)
func (s *UsageStore) FetchResourceUsage(ctx context.Context, scope usage.Scope, start, end time.Time) ([]usage.ResourceUsage, error) {
	query := `
		SELECT resource_id, resource_name, resource_type, category, provider,
			region, team_id, service_name, usage_hours, avg_utilization, unit_cost, reserved
		FROM resource_usage
		WHERE (? = '' OR team_id = ?)
		  AND (? = '' OR service_name = ?)
		  AND (? = '' OR region = ?)
		  AND (? = '' OR provider = ?)
		  AND window_start < ? AND window_end > ?
		ORDER BY resource_id ASC
	`
	rows, err := s.db.QueryContext(ctx, query,
		scope.TeamID, scope.TeamID,
		scope.ServiceName, scope.ServiceName,
		scope.Region, scope.Region,
		scope.Provider, scope.Provider,
		end.UTC().Format(time.RFC3339), start.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch resource usage", err)
	}
	defer rows.Close()

	resources := make([]usage.ResourceUsage, 0, 50)
	for rows.Next() {
		var r usage.ResourceUsage
		if err := rows.Scan(&r.ResourceID, &r.ResourceName, &r.ResourceType, &r.Category,
			&r.Provider, &r.Region, &r.TeamID, &r.ServiceName,
			&r.UsageHours, &r.AvgUtilization, &r.UnitCost, &r.Reserved,
		); err != nil {
			return nil, errors.DatabaseError("Failed to scan resource usage", err)
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}
