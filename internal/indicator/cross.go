package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// crossState is the position of the oscillator relative to its signal line.
type crossState int

const (
	stateUnknown crossState = iota
	stateAbove
	stateBelow
)

// CrossDetector classifies crossings of the oscillator and the signal line.
//
// An upward cross at or below LowZoneRatio*close opens a cycle and is a
// low-zone cross. Further upward crosses while the cycle is open and the
// oscillator is still at or below ZoneExitRatio*close are secondary crosses.
// The cycle closes on the first row whose oscillator exceeds ZoneExitRatio*close.
// Every downward cross is a bearish cross.
type CrossDetector struct {
	lowZoneRatio  float64
	zoneExitRatio float64
}

// NewCrossDetector creates a new detector with default configuration.
func NewCrossDetector() Stage {
	cfg := DefaultConfig()

	return &CrossDetector{
		lowZoneRatio:  cfg.LowZoneRatio,
		zoneExitRatio: cfg.ZoneExitRatio,
	}
}

// Name returns the name of the stage.
func (c *CrossDetector) Name() types.IndicatorType {
	return types.IndicatorTypeCross
}

// Requires returns the MACD stage.
func (c *CrossDetector) Requires() []types.IndicatorType {
	return []types.IndicatorType{types.IndicatorTypeMACD}
}

// Config sets the zone thresholds.
func (c *CrossDetector) Config(cfg Config) error {
	if cfg.LowZoneRatio > cfg.ZoneExitRatio {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"lowZoneRatio (%g) must not exceed zoneExitRatio (%g)", cfg.LowZoneRatio, cfg.ZoneExitRatio)
	}

	c.lowZoneRatio = cfg.LowZoneRatio
	c.zoneExitRatio = cfg.ZoneExitRatio

	return nil
}

// Apply walks the rows with a defined signal and records cross events.
func (c *CrossDetector) Apply(table *Table) error {
	state := stateUnknown
	cycleOpen := false

	for i := range table.Rows {
		row := table.Rows[i]
		if row.Signal.IsNone() || row.Oscillator.IsNone() {
			continue
		}

		osc := row.Oscillator.Unwrap()
		exitLevel := c.zoneExitRatio * table.Closes[i]

		if cycleOpen && osc > exitLevel {
			cycleOpen = false
		}

		next := stateBelow
		if osc > row.Signal.Unwrap() {
			next = stateAbove
		}

		if state == stateUnknown {
			state = next

			continue
		}

		var kind optional.Option[types.CrossKind]

		switch {
		case state == stateBelow && next == stateAbove:
			if !cycleOpen && osc <= c.lowZoneRatio*table.Closes[i] {
				kind = optional.Some(types.CrossKindLowZone)
				cycleOpen = true
			} else if cycleOpen && osc <= exitLevel {
				kind = optional.Some(types.CrossKindSecondary)
			}
		case state == stateAbove && next == stateBelow:
			kind = optional.Some(types.CrossKindBearish)
		}

		state = next

		if kind.IsNone() {
			continue
		}

		table.Rows[i].Cross = kind
		table.Crosses = append(table.Crosses, types.CrossEvent{
			Index: i,
			Date:  table.Dates[i],
			Kind:  kind.Unwrap(),
		})
	}

	return nil
}
