package engine

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-structure/internal/indicator"
	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/stretchr/testify/suite"
)

type leg struct {
	n    int
	step float64
}

var (
	topLegs          = []leg{{40, 0.2}, {12, 3.0}, {8, -2.0}, {14, 1.5}, {20, -2.0}}
	bottomLegs       = []leg{{40, -0.2}, {12, -3.0}, {8, 2.0}, {14, -1.5}, {20, 2.0}}
	crossPeakTopLegs = []leg{{40, 0.2}, {10, 3.0}, {6, -2.0}, {8, 3}, {6, -3.0}, {14, 1.0}, {20, -2.0}}
	crossPeakBotLegs = []leg{{40, -0.2}, {10, -3.0}, {6, 2.0}, {8, -3}, {6, 3.0}, {14, -1.0}, {20, 2.0}}
)

// buildSeries starts at start and appends each leg's steps in turn.
func buildSeries(start float64, legs []leg) []float64 {
	out := []float64{start}
	for _, l := range legs {
		for i := 0; i < l.n; i++ {
			out = append(out, out[len(out)-1]+l.step)
		}
	}

	return out
}

// ScenarioTestSuite runs the pipeline over shaped series with known outcomes.
type ScenarioTestSuite struct {
	suite.Suite
}

func TestScenarioSuite(t *testing.T) {
	suite.Run(t, new(ScenarioTestSuite))
}

func (suite *ScenarioTestSuite) analyze(closes []float64, cfg indicator.Config) *Result {
	result, err := Analyze(barsFrom(closes), cfg)
	suite.Require().NoError(err)

	return result
}

func rowsWhere(result *Result, pred func(types.AnnotatedRow) bool) []int {
	var out []int
	for i, row := range result.Rows {
		if pred(row) {
			out = append(out, i)
		}
	}

	return out
}

func extremaIndexes(extrema []types.Extremum, shape types.Shape) []int {
	var out []int
	for _, ext := range extrema {
		if ext.Shape == shape {
			out = append(out, ext.Index)
		}
	}

	return out
}

func (suite *ScenarioTestSuite) TestFlatSeries() {
	for _, level := range []float64{0.1, 100, 3000, 3123.45} {
		result := suite.analyze(flat(50, level), indicator.DefaultConfig())

		for i, row := range result.Rows {
			if row.Oscillator.IsSome() {
				suite.Equal(0.0, row.Oscillator.Unwrap(), "row %d", i)
			}

			suite.True(row.Cross.IsNone())
			suite.True(row.Divergence.IsNone())
			suite.False(row.Structure.TG)
			suite.False(row.Structure.BG)
			suite.False(row.Trend.MainRise)
			suite.False(row.Trend.OscTopTurn)
			suite.False(row.Trend.OscBottomTurn)
		}

		suite.Empty(result.PriceExtrema)
		suite.Empty(result.OscillatorExtrema)
	}
}

func (suite *ScenarioTestSuite) TestMonotonicRise() {
	linear := make([]float64, 60)
	compound := make([]float64, 60)
	for i := range linear {
		linear[i] = 100 + float64(i)
		compound[i] = 100 * math.Pow(1.01, float64(i))
	}

	for _, closes := range [][]float64{linear, compound} {
		result := suite.analyze(closes, indicator.DefaultConfig())

		suite.Empty(rowsWhere(result, types.AnnotatedRow.LowZoneCross))
		suite.Empty(rowsWhere(result, types.AnnotatedRow.SecondaryCross))
		suite.Empty(result.Divergences)
		suite.Empty(extremaIndexes(result.PriceExtrema, types.ShapeTrough))
	}
}

// vSeries falls by one for leg rows, then rises by one for leg rows.
func vSeries(start float64, leg int) []float64 {
	closes := make([]float64, 0, 2*leg)
	for i := 0; i < leg; i++ {
		closes = append(closes, start-float64(i))
	}

	bottom := start - float64(leg-1)
	for i := 1; i <= leg; i++ {
		closes = append(closes, bottom+float64(i))
	}

	return closes
}

// With the standard 12/26/9 periods the 30-row V turns before the signal line
// is published at row 34, so no cross is reported. Both troughs are still found.
func (suite *ScenarioTestSuite) TestVDipDefaultPeriods() {
	cfg := indicator.DefaultConfig()
	result := suite.analyze(vSeries(100, 30), cfg)

	suite.Equal([]int{29}, extremaIndexes(result.PriceExtrema, types.ShapeTrough))
	suite.Equal([]int{29}, extremaIndexes(result.OscillatorExtrema, types.ShapeTrough))
	suite.True(result.Rows[29].Trend.OscBottomTurn)
	suite.Less(29, cfg.SignalStart())
	suite.Empty(result.Crosses)
	suite.Empty(rowsWhere(result, types.AnnotatedRow.LowZoneCross))
}

func (suite *ScenarioTestSuite) TestVDipDefaultPeriodsLongLegs() {
	result := suite.analyze(vSeries(100, 60), indicator.DefaultConfig())

	suite.Equal([]int{59}, extremaIndexes(result.PriceExtrema, types.ShapeTrough))
	suite.Contains(extremaIndexes(result.OscillatorExtrema, types.ShapeTrough), 59)

	crosses := rowsWhere(result, types.AnnotatedRow.LowZoneCross)
	suite.Require().Len(crosses, 1)
	suite.GreaterOrEqual(crosses[0], 59)
	suite.LessOrEqual(crosses[0], 63)
	suite.Empty(rowsWhere(result, types.AnnotatedRow.SecondaryCross))
}

func (suite *ScenarioTestSuite) TestVDipShortPeriods() {
	cfg := indicator.DefaultConfig()
	cfg.FastPeriod, cfg.SlowPeriod, cfg.SignalPeriod = 6, 13, 5
	result := suite.analyze(vSeries(100, 30), cfg)

	suite.Equal([]int{29}, extremaIndexes(result.PriceExtrema, types.ShapeTrough))
	suite.Equal([]int{29}, extremaIndexes(result.OscillatorExtrema, types.ShapeTrough))
	suite.Equal([]int{30}, rowsWhere(result, types.AnnotatedRow.LowZoneCross))
	suite.True(result.Rows[29].Trend.OscBottomTurn)
}

func (suite *ScenarioTestSuite) TestDirectTopDivergence() {
	closes := buildSeries(100, topLegs)
	suite.Require().Len(closes, 95)

	result := suite.analyze(closes, indicator.DefaultConfig())

	suite.Equal([]int{52, 74}, extremaIndexes(result.PriceExtrema, types.ShapePeak))
	suite.Equal([]int{53, 74}, extremaIndexes(result.OscillatorExtrema, types.ShapePeak))
	suite.Equal([]types.DivergenceFlag{
		{Index: 74, Date: result.Rows[74].Date, Kind: types.DivergenceKindDirectTop, ReferenceIndex: 52},
	}, result.Divergences)

	suite.Greater(closes[74], closes[52])
	suite.Less(result.Rows[74].Oscillator.Unwrap(), result.Rows[52].Oscillator.Unwrap())

	suite.Equal([]int{58, 77}, rowsWhere(result, types.AnnotatedRow.BearishCross))
	suite.Equal([]int{77}, rowsWhere(result, func(r types.AnnotatedRow) bool { return r.Structure.TG }))
	suite.Equal(74, result.Rows[77].Structure.ConfirmsIndex.Unwrap())
	suite.Equal(1, result.Rows[77].Structure.TGCode())
	suite.Empty(rowsWhere(result, func(r types.AnnotatedRow) bool { return r.Structure.BG }))
	suite.Empty(rowsWhere(result, func(r types.AnnotatedRow) bool { return r.Trend.MainRise }))
}

func (suite *ScenarioTestSuite) TestDirectBottomDivergence() {
	result := suite.analyze(buildSeries(200, bottomLegs), indicator.DefaultConfig())

	suite.Equal([]int{52, 74}, extremaIndexes(result.PriceExtrema, types.ShapeTrough))
	suite.Require().Len(result.Divergences, 1)
	suite.Equal(types.DivergenceKindDirectBottom, result.Divergences[0].Kind)
	suite.Equal(74, result.Divergences[0].Index)
	suite.Equal(52, result.Divergences[0].ReferenceIndex)
	suite.True(result.Rows[74].DirectBottomDivergence())

	suite.Equal([]int{58}, rowsWhere(result, types.AnnotatedRow.LowZoneCross))
	suite.Equal([]int{77}, rowsWhere(result, types.AnnotatedRow.SecondaryCross))
	suite.Equal([]int{77}, rowsWhere(result, func(r types.AnnotatedRow) bool { return r.Structure.BG }))
	suite.Equal(-1, result.Rows[77].Structure.BGCode())
	suite.Empty(rowsWhere(result, func(r types.AnnotatedRow) bool { return r.Structure.TG }))

	rise := rowsWhere(result, func(r types.AnnotatedRow) bool { return r.Trend.MainRise })
	suite.Require().Len(rise, 18)
	suite.Equal(77, rise[0])
	suite.Equal(94, rise[len(rise)-1])
}

func (suite *ScenarioTestSuite) TestCrossPeakTopDivergence() {
	closes := buildSeries(100, crossPeakTopLegs)
	result := suite.analyze(closes, indicator.DefaultConfig())

	suite.Equal([]int{50, 64, 84}, extremaIndexes(result.PriceExtrema, types.ShapePeak))
	suite.Equal([]types.DivergenceFlag{
		{Index: 84, Date: result.Rows[84].Date, Kind: types.DivergenceKindCrossPeakTop, ReferenceIndex: 50},
	}, result.Divergences)
	suite.True(result.Rows[84].CrossPeakTopDivergence())
	suite.False(result.Rows[84].DirectTopDivergence())

	suite.Equal([]int{56, 68, 86}, rowsWhere(result, types.AnnotatedRow.BearishCross))
	suite.Equal([]int{86}, rowsWhere(result, func(r types.AnnotatedRow) bool { return r.Structure.TG }))
}

func (suite *ScenarioTestSuite) TestCrossPeakBottomDivergence() {
	result := suite.analyze(buildSeries(200, crossPeakBotLegs), indicator.DefaultConfig())

	suite.Equal([]int{50, 64, 84}, extremaIndexes(result.PriceExtrema, types.ShapeTrough))
	suite.Require().Len(result.Divergences, 1)
	suite.Equal(types.DivergenceKindCrossPeakBottom, result.Divergences[0].Kind)
	suite.Equal(50, result.Divergences[0].ReferenceIndex)

	suite.Equal([]int{56}, rowsWhere(result, types.AnnotatedRow.LowZoneCross))
	suite.Equal([]int{68, 86}, rowsWhere(result, types.AnnotatedRow.SecondaryCross))
	suite.Equal([]int{86}, rowsWhere(result, func(r types.AnnotatedRow) bool { return r.Structure.BG }))

	rise := rowsWhere(result, func(r types.AnnotatedRow) bool { return r.Trend.MainRise })
	suite.Require().Len(rise, 19)
	suite.Equal(86, rise[0])
}

func (suite *ScenarioTestSuite) TestFewerThanTwoPeaksHasNoTopFlags() {
	// a single hump has one price peak
	closes := buildSeries(100, []leg{{40, 0.5}, {30, -0.5}})
	result := suite.analyze(closes, indicator.DefaultConfig())

	suite.Len(extremaIndexes(result.PriceExtrema, types.ShapePeak), 1)
	suite.Empty(rowsWhere(result, types.AnnotatedRow.DirectTopDivergence))
	suite.Empty(rowsWhere(result, types.AnnotatedRow.CrossPeakTopDivergence))
}

func (suite *ScenarioTestSuite) TestBoundaryWarmup() {
	cfg := indicator.DefaultConfig()
	closes := buildSeries(3000, []leg{{cfg.SlowPeriod + cfg.SignalPeriod - 1, 1.5}})
	result := suite.analyze(closes, cfg)

	last := len(closes) - 1
	suite.True(result.Rows[last].Signal.IsSome())
	suite.True(result.Rows[last].Histogram.IsSome())
	for _, row := range result.Rows[:last] {
		suite.True(row.Signal.IsNone())
	}
}
