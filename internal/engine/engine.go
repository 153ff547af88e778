// Package engine runs the structure pipeline over a daily close series.
//
// Analyze is a pure batch transform: it validates the input, runs the
// registered stages in order and returns one annotated row per input bar.
// It does no I/O, keeps no state between calls and is safe for concurrent use.
package engine

import (
	"math"

	"github.com/rxtech-lab/argo-structure/internal/indicator"
	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// SchemaVersion identifies the layout of Result for persisted copies.
const SchemaVersion = "1.2.0"

// Engine runs the configured pipeline.
type Engine struct {
	config indicator.Config
}

// New validates cfg and returns an engine.
func New(cfg indicator.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// configure once up front so configuration errors surface here
	if _, err := indicator.NewDefaultRegistry(cfg); err != nil {
		return nil, err
	}

	return &Engine{config: cfg}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() indicator.Config {
	return e.config
}

// Analyze validates bars and computes the annotated table.
func (e *Engine) Analyze(bars []types.Bar) (*Result, error) {
	if err := Validate(bars, e.config); err != nil {
		return nil, err
	}

	// stages hold configuration only, a fresh registry keeps calls independent
	registry, err := indicator.NewDefaultRegistry(e.config)
	if err != nil {
		return nil, err
	}

	table := indicator.NewTable(bars, e.config)
	for _, stage := range registry.Stages() {
		if err := stage.Apply(table); err != nil {
			if errors.IsInsufficientHistoryError(err) {
				return nil, err
			}

			return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "stage %s failed", stage.Name())
		}
	}

	return &Result{
		SchemaVersion:     SchemaVersion,
		Config:            e.config,
		Rows:              table.Rows,
		PriceExtrema:      table.PriceExtrema,
		OscillatorExtrema: table.OscillatorExtrema,
		Crosses:           table.Crosses,
		Divergences:       table.Divergences,
	}, nil
}

// Analyze is a convenience wrapper around New(cfg).Analyze(bars).
func Analyze(bars []types.Bar, cfg indicator.Config) (*Result, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}

	return e.Analyze(bars)
}

// Validate rejects inputs the pipeline cannot process. Dates must be strictly
// increasing and every bar needs a finite close. The whole input is rejected
// on the first offending row.
func Validate(bars []types.Bar, cfg indicator.Config) error {
	if len(bars) == 0 {
		return errors.NewDataUnavailableError("", "no bars to analyze")
	}

	for i, bar := range bars {
		if !bar.HasClose() {
			return errors.NewValidationError(errors.ErrCodeMissingClose, i, "close", "close is missing")
		}

		if c := bar.CloseFloat(); math.IsNaN(c) || math.IsInf(c, 0) {
			return errors.NewValidationError(errors.ErrCodeMissingClose, i, "close", "close is not finite")
		}

		if bar.Date.IsZero() {
			return errors.NewValidationError(errors.ErrCodeUnorderedDates, i, "date", "date is missing")
		}

		if i > 0 && !bar.Date.After(bars[i-1].Date) {
			reason := "dates must be strictly increasing"
			if bar.Date.Equal(bars[i-1].Date) {
				reason = "duplicate date " + bar.Date.Format("2006-01-02")
			}

			return errors.NewValidationError(errors.ErrCodeUnorderedDates, i, "date", reason)
		}
	}

	if len(bars) < cfg.SlowPeriod {
		return errors.NewInsufficientHistoryErrorf(cfg.SlowPeriod, len(bars), "",
			"insufficient history: required %d bars, got %d", cfg.SlowPeriod, len(bars))
	}

	return nil
}
