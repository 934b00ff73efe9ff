package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/theirongolddev/finproj/internal/model"
)

var (
	// ErrInvalidConfig is returned by New when the config cannot be simulated.
	ErrInvalidConfig = errors.New("invalid projection config")
	// ErrSimulationComplete is returned when advancing past the configured horizon.
	ErrSimulationComplete = errors.New("simulation complete")
	// ErrUserOverflow is returned when a month's user count leaves the int64 range.
	ErrUserOverflow = errors.New("user count out of range")
	// ErrRevenueOverflow is returned when a month's revenue is not a finite number.
	ErrRevenueOverflow = errors.New("revenue out of range")
)

// Engine owns the record sequence of a single run. It is not safe for
// concurrent use; build one engine per run.
type Engine struct {
	cfg     model.ProjectionConfig
	arpu    float64
	records []model.ProjectionRecord
}

// New validates cfg, computes the blended ARPU once and seeds month 0.
func New(cfg model.ProjectionConfig) (*Engine, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	cfg = cfg.Clone()
	arpu := ComputeEffectiveArpu(cfg.Tiers)
	if math.IsNaN(arpu) || math.IsInf(arpu, 0) {
		return nil, fmt.Errorf("%w: blended ARPU is not a finite number", ErrInvalidConfig)
	}

	revenue := float64(cfg.StartingUsers) * arpu
	if math.IsInf(revenue, 0) {
		return nil, fmt.Errorf("%w: month 0", ErrRevenueOverflow)
	}

	records := make([]model.ProjectionRecord, 1, cfg.Months+1)
	records[0] = model.ProjectionRecord{
		Month:   0,
		Users:   cfg.StartingUsers,
		Revenue: revenue,
	}

	return &Engine{cfg: cfg, arpu: arpu, records: records}, nil
}

// Validate checks the config-level invariants. Tier problems are not config
// errors; bad tiers are dropped from the blend instead.
func Validate(cfg model.ProjectionConfig) error {
	if cfg.Months <= 0 {
		return fmt.Errorf("%w: months must be positive, got %d", ErrInvalidConfig, cfg.Months)
	}
	if cfg.StartingUsers < 0 {
		return fmt.Errorf("%w: starting users must be non-negative, got %d", ErrInvalidConfig, cfg.StartingUsers)
	}
	if err := validateRate("growth", cfg.Growth); err != nil {
		return err
	}
	return validateRate("churn", cfg.Churn)
}

func validateRate(name string, r model.RateSpec) error {
	if !r.Mode.Known() {
		return fmt.Errorf("%w: unknown %s mode %d", ErrInvalidConfig, name, int(r.Mode))
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return fmt.Errorf("%w: %s rate must be a finite number", ErrInvalidConfig, name)
	}
	if r.Mode == model.Absolute && math.Abs(r.Value) >= maxUsers {
		return fmt.Errorf("%w: absolute %s rate %g is out of range", ErrInvalidConfig, name, r.Value)
	}
	return nil
}

// EffectiveARPU returns the blended ARPU used for every month of the run.
func (e *Engine) EffectiveARPU() float64 {
	return e.arpu
}

// Config returns the engine's private copy of its config.
func (e *Engine) Config() model.ProjectionConfig {
	return e.cfg.Clone()
}

// Month returns the index of the most recent record.
func (e *Engine) Month() int {
	return len(e.records) - 1
}

// Done reports whether the configured horizon has been reached.
func (e *Engine) Done() bool {
	return e.Month() >= e.cfg.Months
}

// Advance simulates the next month, appends it and returns it.
func (e *Engine) Advance() (model.ProjectionRecord, error) {
	if e.Done() {
		return model.ProjectionRecord{}, fmt.Errorf("%w: horizon of %d months reached", ErrSimulationComplete, e.cfg.Months)
	}

	month := len(e.records)
	base := e.records[month-1].Users
	added, ok1 := checkedDelta(base, e.cfg.Growth)
	churned, ok2 := checkedDelta(base, e.cfg.Churn)

	// No floor at zero: negative counts keep compounding.
	next, ok3 := addUsers(base, added)
	if ok3 {
		next, ok3 = subUsers(next, churned)
	}
	if !ok1 || !ok2 || !ok3 {
		return model.ProjectionRecord{}, fmt.Errorf("%w: month %d", ErrUserOverflow, month)
	}

	revenue := float64(next) * e.arpu
	if math.IsNaN(revenue) || math.IsInf(revenue, 0) {
		return model.ProjectionRecord{}, fmt.Errorf("%w: month %d", ErrRevenueOverflow, month)
	}

	rec := model.ProjectionRecord{
		Month:   month,
		Users:   next,
		Revenue: revenue,
	}
	e.records = append(e.records, rec)
	return rec, nil
}

// Run advances through the remaining months and returns the full result.
// A fresh engine advances exactly cfg.Months times.
func (e *Engine) Run() (model.ProjectionResult, error) {
	if e.Done() {
		return model.ProjectionResult{}, fmt.Errorf("%w: nothing left to run", ErrSimulationComplete)
	}
	for !e.Done() {
		if _, err := e.Advance(); err != nil {
			return model.ProjectionResult{}, err
		}
	}
	return e.Result(), nil
}

// Result returns a copy of the records produced so far.
func (e *Engine) Result() model.ProjectionResult {
	records := make([]model.ProjectionRecord, len(e.records))
	copy(records, e.records)
	return model.ProjectionResult{
		EffectiveARPU: e.arpu,
		Records:       records,
	}
}

// Project runs cfg to completion on a fresh engine.
func Project(cfg model.ProjectionConfig) (model.ProjectionResult, error) {
	e, err := New(cfg)
	if err != nil {
		return model.ProjectionResult{}, err
	}
	return e.Run()
}
