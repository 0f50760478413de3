package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pratik-mahalle/costpilot/internal/api/handlers"
	"github.com/pratik-mahalle/costpilot/internal/api/router"
	"github.com/pratik-mahalle/costpilot/internal/config"
	"github.com/pratik-mahalle/costpilot/internal/domain/scenario"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/pkg/validator"
	"github.com/pratik-mahalle/costpilot/internal/repository/sqlite"
	"github.com/pratik-mahalle/costpilot/internal/services"
	"github.com/pratik-mahalle/costpilot/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})

	db, err := sqlite.New(cfg.Database)
	if err != nil {
		appLogger.ErrorWithErr(err, "Failed to open database")
		os.Exit(1)
	}
	defer db.Close()

	budgetRepo := sqlite.NewBudgetRepository(db)
	usageStore := sqlite.NewUsageStore(db)

	forecaster := services.NewForecaster(cfg.Analytics.SeasonalPeriod, appLogger)
	analyzer := services.NewTrendAnalyzer(cfg.Analytics.TrendFlatBand, cfg.Analytics.TrendWindowSize, cfg.Analytics.AnomalyThreshold, appLogger)
	tracker := services.NewBudgetTracker(budgetRepo, usageStore, forecaster, appLogger)
	optimizer := services.NewOptimizationEngine(usageStore, appLogger)
	scenarioEngine := services.NewScenarioEngine(forecaster, analyzer, appLogger)

	weights, err := scenario.LoadWeights(cfg.Analytics.ComparisonWeightsPath)
	if err != nil {
		appLogger.ErrorWithErr(err, "Failed to load comparison weights")
		os.Exit(1)
	}
	comparator := services.NewScenarioComparator(weights, appLogger)

	val := validator.New()

	h := &router.Handlers{
		Health:         handlers.NewHealthHandler(db, appLogger),
		Analytics:      handlers.NewAnalyticsHandler(usageStore, forecaster, analyzer, appLogger, val),
		Budget:         handlers.NewBudgetHandler(tracker, cfg.Analytics.DefaultAlertThreshold, appLogger, val),
		Recommendation: handlers.NewRecommendationHandler(optimizer, appLogger, val),
		Scenario:       handlers.NewScenarioHandler(usageStore, scenarioEngine, comparator, appLogger, val),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Worker.BudgetMonitorEnabled {
		monitor := worker.NewBudgetMonitor(tracker, cfg.Worker.BudgetMonitorSchedule, appLogger)
		if err := monitor.Start(ctx); err != nil {
			appLogger.ErrorWithErr(err, "Failed to start budget monitor")
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, appLogger, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.ErrorWithErr(err, "Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.ErrorWithErr(err, "Graceful shutdown failed")
		os.Exit(1)
	}

	appLogger.Info("Server stopped")
}
