package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// MACD computes the fast and slow averages, the oscillator (DIF), its signal
// line (DEA) and the scaled histogram.
type MACD struct {
	fastPeriod     int
	slowPeriod     int
	signalPeriod   int
	histogramScale float64
}

// NewMACD creates a new MACD stage with default configuration.
func NewMACD() Stage {
	cfg := DefaultConfig()

	return &MACD{
		fastPeriod:     cfg.FastPeriod,
		slowPeriod:     cfg.SlowPeriod,
		signalPeriod:   cfg.SignalPeriod,
		histogramScale: cfg.HistogramScale,
	}
}

// Name returns the name of the stage.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Requires returns nil; MACD reads only the close column.
func (m *MACD) Requires() []types.IndicatorType {
	return nil
}

// Config configures the periods and the histogram scale.
func (m *MACD) Config(cfg Config) error {
	if cfg.FastPeriod <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod must be a positive integer, got %d", cfg.FastPeriod)
	}

	if cfg.SlowPeriod <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "slowPeriod must be a positive integer, got %d", cfg.SlowPeriod)
	}

	if cfg.SignalPeriod <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "signalPeriod must be a positive integer, got %d", cfg.SignalPeriod)
	}

	if cfg.HistogramScale <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "histogramScale must be positive, got %g", cfg.HistogramScale)
	}

	m.fastPeriod = cfg.FastPeriod
	m.slowPeriod = cfg.SlowPeriod
	m.signalPeriod = cfg.SignalPeriod
	m.histogramScale = cfg.HistogramScale

	return nil
}

// Apply fills FastAvg and SlowAvg on every row, Oscillator from row slow-1 and
// Signal/Histogram from row slow+signal-1. Rows before those boundaries are
// still fed through the recursions but left undefined.
func (m *MACD) Apply(table *Table) error {
	n := table.Len()
	if n < m.slowPeriod {
		return errors.NewInsufficientHistoryErrorf(m.slowPeriod, n, "",
			"insufficient history for MACD calculation: required %d, got %d", m.slowPeriod, n)
	}

	fast, err := EMASeries(table.Closes, m.fastPeriod)
	if err != nil {
		return err
	}

	slow, err := EMASeries(table.Closes, m.slowPeriod)
	if err != nil {
		return err
	}

	oscillator := make([]float64, n)
	for i := range oscillator {
		oscillator[i] = fast[i] - slow[i]
	}

	signal, err := EMASeries(oscillator, m.signalPeriod)
	if err != nil {
		return err
	}

	oscStart := m.slowPeriod - 1
	signalStart := m.slowPeriod + m.signalPeriod - 1

	for i := range table.Rows {
		row := &table.Rows[i].IndicatorRow
		row.FastAvg = fast[i]
		row.SlowAvg = slow[i]

		if i >= oscStart {
			row.Oscillator = optional.Some(oscillator[i])
		}

		if i >= signalStart {
			row.Signal = optional.Some(signal[i])
			row.Histogram = optional.Some(m.histogramScale * (oscillator[i] - signal[i]))
		}
	}

	return nil
}
