package services

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pratik-mahalle/costpilot/internal/domain/analytics"
	"github.com/pratik-mahalle/costpilot/internal/domain/scenario"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/pkg/metrics"
)

// RunOptions tunes a scenario run beyond its typed parameters
type RunOptions struct {
	// HorizonDays extends the baseline with a linear forecast before the
	// transform is applied. 0 runs against the historical baseline only.
	HorizonDays int
}

// ScenarioEngine executes what-if transforms against a baseline cost
// series. Runs are tracked in an in-memory registry keyed by scenario id;
// a completed scenario is immutable.
type ScenarioEngine struct {
	forecaster *Forecaster
	analyzer   *TrendAnalyzer
	logger     *logger.Logger

	mu      sync.RWMutex
	runs    map[string]*scenario.Scenario
	cancels map[string]context.CancelFunc
}

// NewScenarioEngine creates a new scenario engine
func NewScenarioEngine(forecaster *Forecaster, analyzer *TrendAnalyzer, log *logger.Logger) *ScenarioEngine {
	return &ScenarioEngine{
		forecaster: forecaster,
		analyzer:   analyzer,
		logger:     log,
		runs:       make(map[string]*scenario.Scenario),
		cancels:    make(map[string]context.CancelFunc),
	}
}

// Run executes a scenario synchronously and returns it completed (or an
// error for invalid input). The returned scenario is registered and can be
// fetched again by id.
func (e *ScenarioEngine) Run(ctx context.Context, baseline *usage.Series, params scenario.Parameters, opts RunOptions) (*scenario.Scenario, error) {
	s, err := e.create(baseline, params, opts)
	if err != nil {
		return nil, err
	}
	e.execute(ctx, s, baseline, params, opts)

	done := e.snapshot(s.ID)
	if done.State == scenario.StateFailed {
		return done, errors.Internal("scenario run failed: "+done.Error, nil)
	}
	return done, nil
}

// Submit starts a scenario run in the background and returns it in the
// running state. Progress is observable through Get.
func (e *ScenarioEngine) Submit(ctx context.Context, baseline *usage.Series, params scenario.Parameters, opts RunOptions) (*scenario.Scenario, error) {
	s, err := e.create(baseline, params, opts)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.mu.Lock()
	e.cancels[s.ID] = cancel
	e.mu.Unlock()

	go func() {
		defer func() {
			e.mu.Lock()
			delete(e.cancels, s.ID)
			e.mu.Unlock()
			cancel()
		}()
		e.execute(runCtx, s, baseline, params, opts)
	}()

	return e.snapshot(s.ID), nil
}

// Get returns a copy of the scenario's current state
func (e *ScenarioEngine) Get(id string) (*scenario.Scenario, error) {
	s := e.snapshot(id)
	if s == nil {
		return nil, errors.NotFound("scenario")
	}
	return s, nil
}

// List returns copies of all tracked scenarios
func (e *ScenarioEngine) List() []*scenario.Scenario {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*scenario.Scenario, 0, len(e.runs))
	for id := range e.runs {
		out = append(out, e.copyLocked(id))
	}
	return out
}

// Cancel aborts a running scenario. Partial results are discarded and the
// scenario moves to failed.
func (e *ScenarioEngine) Cancel(id string) error {
	e.mu.Lock()
	cancel, ok := e.cancels[id]
	e.mu.Unlock()
	if !ok {
		s := e.snapshot(id)
		if s == nil {
			return errors.NotFound("scenario")
		}
		return errors.Conflict("scenario is not running")
	}
	cancel()
	return nil
}

// create validates input and registers the scenario in the created state
func (e *ScenarioEngine) create(baseline *usage.Series, params scenario.Parameters, opts RunOptions) (*scenario.Scenario, error) {
	if params == nil {
		return nil, errors.InvalidScenario("parameters", "non-nil", "")
	}
	if !params.ScenarioType().IsValid() {
		return nil, errors.InvalidScenario("type", "known scenario type", string(params.ScenarioType()))
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if opts.HorizonDays < 0 {
		return nil, errors.InvalidScenario("horizon_days", ">= 0", "")
	}
	if baseline == nil || baseline.Len() == 0 {
		return nil, errors.InsufficientData("scenario requires a non-empty baseline series")
	}
	if err := baseline.Validate(); err != nil {
		return nil, errors.InvalidParameter("baseline", "strictly increasing timestamps", err.Error())
	}

	s := &scenario.Scenario{
		ID:        uuid.New().String(),
		Type:      params.ScenarioType(),
		State:     scenario.StateCreated,
		Params:    params,
		Baseline:  baseline,
		CreatedAt: time.Now().UTC(),
	}

	e.mu.Lock()
	e.runs[s.ID] = s
	e.mu.Unlock()

	return s, nil
}

// execute runs the transform and records the terminal state. All mutation
// of the registered scenario happens under the engine lock.
func (e *ScenarioEngine) execute(ctx context.Context, s *scenario.Scenario, baseline *usage.Series, params scenario.Parameters, opts RunOptions) {
	started := time.Now().UTC()
	e.mutate(s.ID, func(sc *scenario.Scenario) {
		_ = sc.Transition(scenario.StateRunning)
		sc.StartedAt = &started
	})

	projected, err := e.project(ctx, baseline, params, opts)

	completed := time.Now().UTC()
	if err != nil {
		e.mutate(s.ID, func(sc *scenario.Scenario) {
			_ = sc.Transition(scenario.StateFailed)
			sc.Error = err.Error()
			sc.CompletedAt = &completed
		})
		metrics.RecordScenarioRun(string(s.Type), "failed", completed.Sub(started))
		e.logger.WithFields(map[string]interface{}{
			"scenario_id": s.ID,
			"type":        s.Type,
			"error":       err.Error(),
		}).Warn("Scenario run failed")
		return
	}

	impact := e.impact(baseline, projected)
	risk := e.assess(baseline, params, impact, opts)

	e.mutate(s.ID, func(sc *scenario.Scenario) {
		_ = sc.Transition(scenario.StateCompleted)
		sc.Projected = projected
		sc.Impact = impact
		sc.Risk = risk
		sc.CompletedAt = &completed
	})
	metrics.RecordScenarioRun(string(s.Type), "completed", completed.Sub(started))

	e.logger.WithFields(map[string]interface{}{
		"scenario_id":    s.ID,
		"type":           s.Type,
		"total_diff":     impact.TotalDifference,
		"percent_change": impact.PercentChange,
		"risk_level":     risk.Level,
	}).Info("Scenario run completed")
}

// project applies the type-specific transform, optionally over a baseline
// extended with a linear forecast. Cancellation is checked between points
// and discards all partial work.
func (e *ScenarioEngine) project(ctx context.Context, baseline *usage.Series, params scenario.Parameters, opts RunOptions) (*usage.Series, error) {
	source := baseline
	if opts.HorizonDays > 0 {
		extended, err := e.extend(baseline, opts.HorizonDays)
		if err != nil {
			return nil, err
		}
		source = extended
	}

	projected := &usage.Series{
		Scope:  source.Scope,
		Points: make([]usage.CostPoint, 0, source.Len()),
	}
	if m, ok := params.(scenario.MigrationParams); ok {
		projected.Scope.Region = m.ToRegion
	}

	for i, p := range source.Points {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		projected.Points = append(projected.Points, usage.CostPoint{
			Timestamp: p.Timestamp,
			Amount:    transformAmount(params, p.Amount, i),
			Currency:  p.Currency,
		})
	}
	return projected, nil
}

// transformAmount applies one scenario point transform. i is the point's
// ordinal, used by compounding transforms.
func transformAmount(params scenario.Parameters, amount float64, i int) float64 {
	switch p := params.(type) {
	case scenario.RightsizingParams:
		return amount * (1 - p.ReductionFactor)
	case scenario.MigrationParams:
		return amount * p.CostFactor
	case scenario.ReservationParams:
		return amount * (1 - p.CoverageFraction*p.DiscountRate)
	case scenario.SpotParams:
		return amount * (1 - p.SpotFraction*p.DiscountRate)
	case scenario.GrowthAdjustmentParams:
		return amount * math.Pow(1+p.GrowthDelta, float64(i))
	default:
		return amount
	}
}

// extend appends a linear forecast of horizonDays to the baseline
func (e *ScenarioEngine) extend(baseline *usage.Series, horizonDays int) (*usage.Series, error) {
	result, err := e.forecaster.Forecast(baseline, analytics.MethodLinear, horizonDays, 0.95)
	if err != nil {
		return nil, err
	}

	currency := ""
	if baseline.Len() > 0 {
		currency = baseline.Points[baseline.Len()-1].Currency
	}

	extended := &usage.Series{
		Scope:  baseline.Scope,
		Points: append([]usage.CostPoint{}, baseline.Points...),
	}
	for _, fp := range result.Points {
		extended.Points = append(extended.Points, usage.CostPoint{
			Timestamp: fp.Timestamp,
			Amount:    fp.Predicted,
			Currency:  currency,
		})
	}
	return extended, nil
}

// impact compares totals; percent change is zero when the baseline total is
func (e *ScenarioEngine) impact(baseline, projected *usage.Series) scenario.Impact {
	baseTotal := baseline.Total()
	projTotal := projected.Total()
	diff := projTotal - baseTotal

	var pct float64
	if baseTotal != 0 {
		pct = diff / baseTotal * 100
	}

	return scenario.Impact{
		TotalDifference: diff,
		PercentChange:   pct,
		PerEntity: map[string]float64{
			projected.Scope.String(): diff,
		},
	}
}

// assess combines the parameter set's inherent risk with the impact
// magnitude, and derives confidence from how much history backs the run
func (e *ScenarioEngine) assess(baseline *usage.Series, params scenario.Parameters, impact scenario.Impact, opts RunOptions) scenario.RiskAssessment {
	magnitude := math.Abs(impact.PercentChange) / 100
	if magnitude > 1 {
		magnitude = 1
	}
	score := 0.5*params.RiskWeight() + 0.5*magnitude

	level := scenario.RiskHigh
	switch {
	case score < 0.33:
		level = scenario.RiskLow
	case score < 0.66:
		level = scenario.RiskMedium
	}

	return scenario.RiskAssessment{
		Level:           level,
		ConfidenceScore: e.confidence(baseline, opts),
	}
}

// confidence grows with history length and shrinks with volatility and
// forecast horizon
func (e *ScenarioEngine) confidence(baseline *usage.Series, opts RunOptions) float64 {
	conf := math.Min(1, float64(baseline.Len())/90)

	if trend, err := e.analyzer.Analyze(baseline, 0, false); err == nil {
		conf /= 1 + trend.Volatility
	}
	if opts.HorizonDays > 0 {
		conf /= 1 + float64(opts.HorizonDays)/90
	}

	return math.Round(conf*100) / 100
}

func (e *ScenarioEngine) mutate(id string, fn func(*scenario.Scenario)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.runs[id]; ok {
		fn(s)
	}
}

func (e *ScenarioEngine) snapshot(id string) *scenario.Scenario {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.copyLocked(id)
}

func (e *ScenarioEngine) copyLocked(id string) *scenario.Scenario {
	s, ok := e.runs[id]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}
