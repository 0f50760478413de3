package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/config"
	_ "modernc.org/sqlite"
)

// New opens the SQLite database and applies the schema
func New(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies the schema. All statements are idempotent.
func Migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS cost_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		team_id VARCHAR(255) NOT NULL DEFAULT '',
		service_name VARCHAR(255) NOT NULL DEFAULT '',
		region VARCHAR(100) NOT NULL DEFAULT '',
		provider VARCHAR(50) NOT NULL DEFAULT '',
		timestamp TIMESTAMP NOT NULL,
		amount DECIMAL(14, 4) NOT NULL,
		currency VARCHAR(10) NOT NULL DEFAULT 'USD',
		UNIQUE(team_id, service_name, region, provider, timestamp)
	);

	CREATE INDEX IF NOT EXISTS idx_cost_points_scope_ts
		ON cost_points(team_id, service_name, region, provider, timestamp);

	CREATE TABLE IF NOT EXISTS resource_usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		resource_id VARCHAR(255) NOT NULL,
		resource_name VARCHAR(255),
		resource_type VARCHAR(100) NOT NULL,
		category VARCHAR(50) NOT NULL,
		provider VARCHAR(50) NOT NULL DEFAULT '',
		region VARCHAR(100) NOT NULL DEFAULT '',
		team_id VARCHAR(255) NOT NULL DEFAULT '',
		service_name VARCHAR(255) NOT NULL DEFAULT '',
		window_start TIMESTAMP NOT NULL,
		window_end TIMESTAMP NOT NULL,
		usage_hours DECIMAL(12, 2) NOT NULL DEFAULT 0,
		avg_utilization DECIMAL(5, 2) NOT NULL DEFAULT 0,
		unit_cost DECIMAL(12, 6) NOT NULL DEFAULT 0,
		reserved BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_resource_usage_window
		ON resource_usage(team_id, window_start, window_end);

	CREATE TABLE IF NOT EXISTS budgets (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		amount DECIMAL(14, 4) NOT NULL,
		period VARCHAR(20) NOT NULL,
		scope VARCHAR(20) NOT NULL,
		target VARCHAR(255) NOT NULL DEFAULT '',
		alert_threshold DECIMAL(7, 4) NOT NULL,
		current_spend DECIMAL(14, 4) NOT NULL DEFAULT 0,
		utilization DECIMAL(10, 4) NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		period_start TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS budget_alerts (
		id VARCHAR(64) PRIMARY KEY,
		budget_id VARCHAR(64) NOT NULL,
		type VARCHAR(50) NOT NULL,
		severity VARCHAR(20) NOT NULL,
		trigger_pct DECIMAL(10, 4) NOT NULL,
		trigger_amt DECIMAL(14, 4) NOT NULL,
		message TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP,
		FOREIGN KEY (budget_id) REFERENCES budgets(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_budget_alerts_budget
		ON budget_alerts(budget_id, status);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
