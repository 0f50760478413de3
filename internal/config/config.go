package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Analytics AnalyticsConfig
	Worker    WorkerConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Path string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string
	Format     string // json or console
	OutputPath string
}

// AnalyticsConfig contains the tunable defaults of the analytical engines.
// These mirror the documented defaults; deployments may override them via
// environment without code changes.
type AnalyticsConfig struct {
	// Default alert threshold percentage for budgets without an explicit one
	DefaultAlertThreshold float64
	// Anomaly detection threshold in standard deviations
	AnomalyThreshold float64
	// Trend direction flat band as a fraction (0.05 = ±5%)
	TrendFlatBand float64
	// Window size in points for trend growth-rate computation
	TrendWindowSize int
	// Seasonal period in points for seasonal forecasting
	SeasonalPeriod int
	// Path to an optional YAML file overriding scenario comparison weights
	ComparisonWeightsPath string
}

// WorkerConfig contains background worker configuration
type WorkerConfig struct {
	// Cron schedule for the budget monitor
	BudgetMonitorSchedule string
	BudgetMonitorEnabled  bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./costpilot.db"),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Analytics: AnalyticsConfig{
			DefaultAlertThreshold: getEnvAsFloat("ANALYTICS_ALERT_THRESHOLD", 80),
			AnomalyThreshold:      getEnvAsFloat("ANALYTICS_ANOMALY_SIGMA", 2.0),
			TrendFlatBand:         getEnvAsFloat("ANALYTICS_TREND_FLAT_BAND", 0.05),
			TrendWindowSize:       getEnvAsInt("ANALYTICS_TREND_WINDOW", 7),
			SeasonalPeriod:        getEnvAsInt("ANALYTICS_SEASONAL_PERIOD", 7),
			ComparisonWeightsPath: getEnv("ANALYTICS_COMPARISON_WEIGHTS", ""),
		},
		Worker: WorkerConfig{
			BudgetMonitorSchedule: getEnv("BUDGET_MONITOR_SCHEDULE", "0 * * * *"),
			BudgetMonitorEnabled:  getEnvAsBool("BUDGET_MONITOR_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Analytics.DefaultAlertThreshold <= 0 || c.Analytics.DefaultAlertThreshold > 100 {
		return fmt.Errorf("alert threshold must be in (0,100], got %f", c.Analytics.DefaultAlertThreshold)
	}

	if c.Analytics.AnomalyThreshold <= 0 {
		return fmt.Errorf("anomaly threshold must be positive, got %f", c.Analytics.AnomalyThreshold)
	}

	if c.Analytics.SeasonalPeriod < 2 {
		return fmt.Errorf("seasonal period must be at least 2, got %d", c.Analytics.SeasonalPeriod)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
