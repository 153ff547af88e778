package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// IndicatorRow holds the oscillator columns of one row.
// Oscillator is present from the end of the slow warm-up; Signal and Histogram
// from the end of the signal warm-up.
type IndicatorRow struct {
	Date       time.Time                `json:"date"`
	Close      float64                  `json:"close"`
	FastAvg    float64                  `json:"fast_avg"`
	SlowAvg    float64                  `json:"slow_avg"`
	Oscillator optional.Option[float64] `json:"oscillator"`
	Signal     optional.Option[float64] `json:"signal"`
	Histogram  optional.Option[float64] `json:"histogram"`
}

// StructureValue is the structure verdict of a row.
type StructureValue struct {
	TG bool `json:"tg"`
	BG bool `json:"bg"`
	// ConfirmsIndex is the row of the divergence confirmed by TG or BG.
	ConfirmsIndex optional.Option[int] `json:"confirms_index"`
}

// TGCode is 1 on a top-structure row and 0 otherwise.
func (s StructureValue) TGCode() int {
	if s.TG {
		return 1
	}

	return 0
}

// BGCode is -1 on a bottom-structure row and 0 otherwise.
func (s StructureValue) BGCode() int {
	if s.BG {
		return -1
	}

	return 0
}

// TrendFlag carries the trend-state flags of a row.
type TrendFlag struct {
	MainRise      bool `json:"main_rise"`
	OscTopTurn    bool `json:"osc_top_turn"`
	OscBottomTurn bool `json:"osc_bottom_turn"`
}

// AnnotatedRow is one row of the analysis output, aligned with the input bar.
type AnnotatedRow struct {
	IndicatorRow
	Cross      optional.Option[CrossKind]      `json:"cross"`
	Divergence optional.Option[DivergenceFlag] `json:"divergence"`
	Structure  StructureValue                  `json:"structure"`
	Trend      TrendFlag                       `json:"trend"`
}

func (r AnnotatedRow) crossIs(kind CrossKind) bool {
	return r.Cross.IsSome() && r.Cross.Unwrap() == kind
}

func (r AnnotatedRow) divergenceIs(kind DivergenceKind) bool {
	return r.Divergence.IsSome() && r.Divergence.Unwrap().Kind == kind
}

// LowZoneCross reports a low-zone cross on this row.
func (r AnnotatedRow) LowZoneCross() bool {
	return r.crossIs(CrossKindLowZone)
}

// SecondaryCross reports a secondary cross on this row.
func (r AnnotatedRow) SecondaryCross() bool {
	return r.crossIs(CrossKindSecondary)
}

// BearishCross reports a downward cross on this row.
func (r AnnotatedRow) BearishCross() bool {
	return r.crossIs(CrossKindBearish)
}

// DirectTopDivergence reports a top divergence against the previous peak.
func (r AnnotatedRow) DirectTopDivergence() bool {
	return r.divergenceIs(DivergenceKindDirectTop)
}

// CrossPeakTopDivergence reports a top divergence against the peak before the previous one.
func (r AnnotatedRow) CrossPeakTopDivergence() bool {
	return r.divergenceIs(DivergenceKindCrossPeakTop)
}

// DirectBottomDivergence reports a bottom divergence against the previous trough.
func (r AnnotatedRow) DirectBottomDivergence() bool {
	return r.divergenceIs(DivergenceKindDirectBottom)
}

// CrossPeakBottomDivergence reports a bottom divergence against the trough before the previous one.
func (r AnnotatedRow) CrossPeakBottomDivergence() bool {
	return r.divergenceIs(DivergenceKindCrossPeakBottom)
}
