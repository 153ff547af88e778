package indicator

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/stretchr/testify/suite"
)

type ExtremumTestSuite struct {
	suite.Suite
}

func TestExtremumSuite(t *testing.T) {
	suite.Run(t, new(ExtremumTestSuite))
}

func extremumIndex(e types.Extremum) int { return e.Index }

func (suite *ExtremumTestSuite) TestFindExtremaSimple() {
	values := []float64{1, 2, 3, 5, 3, 2, 1, 0, -1, 0, 1, 2, 3}
	extrema := FindExtrema(values, 0, 3, types.SeriesKindPrice, nil)

	suite.Equal([]int{3}, indexes(Peaks(extrema), extremumIndex))
	suite.Equal([]int{8}, indexes(Troughs(extrema), extremumIndex))
	suite.Equal(5.0, Peaks(extrema)[0].Value)
	suite.Equal(types.SeriesKindPrice, extrema[0].Series)
}

func (suite *ExtremumTestSuite) TestTiesGoToEarliestIndex() {
	values := []float64{1, 2, 3, 5, 5, 5, 3, 2, 1, 0}
	extrema := FindExtrema(values, 0, 3, types.SeriesKindPrice, nil)
	suite.Equal([]int{3}, indexes(Peaks(extrema), extremumIndex))
}

func (suite *ExtremumTestSuite) TestWindowMustFitInRange() {
	// the maximum sits within radius of the start
	values := []float64{1, 9, 3, 2, 1, 0, 1, 2, 3}
	suite.Empty(Peaks(FindExtrema(values, 0, 3, types.SeriesKindPrice, nil)))

	// the minimum at 5 needs rows 2..8
	suite.Equal([]int{5}, indexes(Troughs(FindExtrema(values, 0, 3, types.SeriesKindPrice, nil)), extremumIndex))
	suite.Empty(FindExtrema(values, 3, 3, types.SeriesKindPrice, nil))
}

func (suite *ExtremumTestSuite) TestFlatSeriesHasNoExtrema() {
	suite.Empty(FindExtrema(constant(50, 100), 0, 3, types.SeriesKindPrice, nil))
}

func (suite *ExtremumTestSuite) TestMonotonicSeriesHasNoExtrema() {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100 + float64(i)
	}

	suite.Empty(FindExtrema(values, 0, 3, types.SeriesKindPrice, nil))
}

func (suite *ExtremumTestSuite) TestConsecutiveSameShape() {
	values := []float64{0, 1, 2, 6, 2, 1, 1.5, 1.2, 1.4, 7, 1, 0.5, 0, -1}
	extrema := FindExtrema(values, 0, 3, types.SeriesKindPrice, nil)
	suite.Equal([]int{3, 9}, indexes(Peaks(extrema), extremumIndex))
}

func (suite *ExtremumTestSuite) TestApplySetsOscillatorTurns() {
	n := 80
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 1000 + 40*math.Sin(float64(i)/6)
	}

	table := NewTable(barsFromCloses(closes), DefaultConfig())
	suite.Require().NoError(NewMACD().Apply(table))

	tracker := NewExtremumTracker()
	suite.Equal(types.IndicatorTypeExtremum, tracker.Name())
	suite.Require().NoError(tracker.Apply(table))

	suite.NotEmpty(table.PriceExtrema)
	suite.NotEmpty(table.OscillatorExtrema)

	for _, ext := range table.OscillatorExtrema {
		suite.GreaterOrEqual(ext.Index, DefaultConfig().OscillatorStart()+3)
		suite.Equal(types.SeriesKindOscillator, ext.Series)
		suite.Equal(table.Dates[ext.Index], ext.Date)
	}

	for i, row := range table.Rows {
		suite.Equal(types.TrendFlag{}, row.Trend, "row %d: turn flags belong to the trend stage", i)
	}
}

func (suite *ExtremumTestSuite) TestConfig() {
	tracker := NewExtremumTracker().(*ExtremumTracker)
	suite.Equal(3, tracker.radius)

	cfg := DefaultConfig()
	cfg.ExtremumRadius = 5
	suite.NoError(tracker.Config(cfg))
	suite.Equal(5, tracker.radius)

	cfg.ExtremumRadius = 0
	suite.Error(tracker.Config(cfg))
}
