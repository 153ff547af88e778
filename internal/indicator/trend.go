package indicator

import (
	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// TrendClassifier marks main-rise runs and oscillator turns. A run starts on a
// BG row and lasts at most MainRiseMaxRun rows; it ends before the next TG row.
// A new BG restarts it. Turns are the oscillator extrema.
type TrendClassifier struct {
	maxRun int
}

// NewTrendClassifier creates a new classifier with default configuration.
func NewTrendClassifier() Stage {
	return &TrendClassifier{maxRun: DefaultConfig().MainRiseMaxRun}
}

// Name returns the name of the stage.
func (c *TrendClassifier) Name() types.IndicatorType {
	return types.IndicatorTypeTrend
}

// Requires returns the stages whose columns are read.
func (c *TrendClassifier) Requires() []types.IndicatorType {
	return []types.IndicatorType{types.IndicatorTypeExtremum, types.IndicatorTypeStructure}
}

// Config sets the run length cap.
func (c *TrendClassifier) Config(cfg Config) error {
	if cfg.MainRiseMaxRun <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "mainRiseMaxRun must be a positive integer, got %d", cfg.MainRiseMaxRun)
	}

	c.maxRun = cfg.MainRiseMaxRun

	return nil
}

// Apply sets the main-rise and oscillator turn flags.
func (c *TrendClassifier) Apply(table *Table) error {
	for _, ext := range table.OscillatorExtrema {
		switch ext.Shape {
		case types.ShapePeak:
			table.Rows[ext.Index].Trend.OscTopTurn = true
		case types.ShapeTrough:
			table.Rows[ext.Index].Trend.OscBottomTurn = true
		}
	}

	remaining := 0

	for i := range table.Rows {
		structure := table.Rows[i].Structure
		if structure.BG {
			remaining = c.maxRun
		}

		if structure.TG {
			remaining = 0
		}

		if remaining > 0 {
			table.Rows[i].Trend.MainRise = true
			remaining--
		}
	}

	return nil
}
