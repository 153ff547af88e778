package indicator

import (
	"time"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// ExtremumTracker finds local peaks and troughs of the close and oscillator
// columns over a symmetric window.
type ExtremumTracker struct {
	radius int
}

// NewExtremumTracker creates a new tracker with default configuration.
func NewExtremumTracker() Stage {
	return &ExtremumTracker{radius: DefaultConfig().ExtremumRadius}
}

// Name returns the name of the stage.
func (e *ExtremumTracker) Name() types.IndicatorType {
	return types.IndicatorTypeExtremum
}

// Requires returns the MACD stage.
func (e *ExtremumTracker) Requires() []types.IndicatorType {
	return []types.IndicatorType{types.IndicatorTypeMACD}
}

// Config sets the window radius.
func (e *ExtremumTracker) Config(cfg Config) error {
	if cfg.ExtremumRadius <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "extremumRadius must be a positive integer, got %d", cfg.ExtremumRadius)
	}

	e.radius = cfg.ExtremumRadius

	return nil
}

// Apply records price and oscillator extrema.
func (e *ExtremumTracker) Apply(table *Table) error {
	table.PriceExtrema = FindExtrema(table.Closes, 0, e.radius, types.SeriesKindPrice, table.Dates)

	start := firstDefinedOscillator(table)
	osc := make([]float64, table.Len())
	for i := start; i < table.Len(); i++ {
		osc[i], _ = table.Oscillator(i)
	}

	table.OscillatorExtrema = FindExtrema(osc, start, e.radius, types.SeriesKindOscillator, table.Dates)

	return nil
}

// FindExtrema scans values[start:] for points that dominate every neighbour
// within radius. Ties go to the earliest index: a point equal to an earlier
// neighbour is not an extremum. The whole window must lie in [start, len).
func FindExtrema(values []float64, start, radius int, series types.SeriesKind, dates []time.Time) []types.Extremum {
	var out []types.Extremum

	for i := start + radius; i < len(values)-radius; i++ {
		var shape types.Shape

		switch {
		case dominates(values, i, radius, func(a, b float64) bool { return a > b }):
			shape = types.ShapePeak
		case dominates(values, i, radius, func(a, b float64) bool { return a < b }):
			shape = types.ShapeTrough
		default:
			continue
		}

		ext := types.Extremum{
			Index:  i,
			Value:  values[i],
			Series: series,
			Shape:  shape,
		}
		if i < len(dates) {
			ext.Date = dates[i]
		}

		out = append(out, ext)
	}

	return out
}

// dominates reports whether no neighbour beats values[i] and no earlier
// neighbour equals it. beats(a, b) means a is strictly more extreme than b.
func dominates(values []float64, i, radius int, beats func(a, b float64) bool) bool {
	for j := i - radius; j <= i+radius; j++ {
		if j == i {
			continue
		}

		if beats(values[j], values[i]) {
			return false
		}

		if j < i && values[j] == values[i] {
			return false
		}
	}

	return true
}

// Peaks filters extrema by shape.
func Peaks(extrema []types.Extremum) []types.Extremum {
	return filterShape(extrema, types.ShapePeak)
}

// Troughs filters extrema by shape.
func Troughs(extrema []types.Extremum) []types.Extremum {
	return filterShape(extrema, types.ShapeTrough)
}

func filterShape(extrema []types.Extremum, shape types.Shape) []types.Extremum {
	out := make([]types.Extremum, 0, len(extrema))
	for _, ext := range extrema {
		if ext.Shape == shape {
			out = append(out, ext)
		}
	}

	return out
}

func firstDefinedOscillator(table *Table) int {
	for i := range table.Rows {
		if table.Rows[i].Oscillator.IsSome() {
			return i
		}
	}

	return table.Len()
}
