package indicator

import (
	"sort"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-structure/internal/types"
)

// DivergenceDetector compares each price extremum with the previous one of the
// same shape (direct) and, failing that, with the one before it (cross-peak).
// A top divergence is a price peak at or above the reference while the
// oscillator is strictly lower; bottoms mirror this.
type DivergenceDetector struct{}

// NewDivergenceDetector creates a new detector.
func NewDivergenceDetector() Stage {
	return &DivergenceDetector{}
}

// Name returns the name of the stage.
func (d *DivergenceDetector) Name() types.IndicatorType {
	return types.IndicatorTypeDivergence
}

// Requires returns the stages whose columns are read.
func (d *DivergenceDetector) Requires() []types.IndicatorType {
	return []types.IndicatorType{types.IndicatorTypeMACD, types.IndicatorTypeExtremum}
}

// Config is a no-op; the detector has no tunables.
func (d *DivergenceDetector) Config(Config) error {
	return nil
}

// Apply flags divergences on the row of the newer extremum.
func (d *DivergenceDetector) Apply(table *Table) error {
	var flags []types.DivergenceFlag

	flags = append(flags, d.scan(table, Peaks(table.PriceExtrema), true)...)
	flags = append(flags, d.scan(table, Troughs(table.PriceExtrema), false)...)

	sort.Slice(flags, func(i, j int) bool { return flags[i].Index < flags[j].Index })

	for _, flag := range flags {
		table.Rows[flag.Index].Divergence = optional.Some(flag)
	}

	table.Divergences = flags

	return nil
}

func (d *DivergenceDetector) scan(table *Table, extrema []types.Extremum, top bool) []types.DivergenceFlag {
	direct, crossPeak := types.DivergenceKindDirectBottom, types.DivergenceKindCrossPeakBottom
	if top {
		direct, crossPeak = types.DivergenceKindDirectTop, types.DivergenceKindCrossPeakTop
	}

	var flags []types.DivergenceFlag

	for k := 1; k < len(extrema); k++ {
		i := extrema[k].Index

		osc, ok := table.Oscillator(i)
		if !ok {
			continue
		}

		diverges := func(j int) bool {
			ref, ok := table.Oscillator(j)
			if !ok {
				return false
			}

			if top {
				return table.Closes[i] >= table.Closes[j] && osc < ref
			}

			return table.Closes[i] <= table.Closes[j] && osc > ref
		}

		flag := types.DivergenceFlag{Index: i, Date: table.Dates[i]}

		switch {
		case diverges(extrema[k-1].Index):
			flag.Kind = direct
			flag.ReferenceIndex = extrema[k-1].Index
		case k >= 2 && diverges(extrema[k-2].Index):
			flag.Kind = crossPeak
			flag.ReferenceIndex = extrema[k-2].Index
		default:
			continue
		}

		flags = append(flags, flag)
	}

	return flags
}
