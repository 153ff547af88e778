package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type TypesTestSuite struct {
	suite.Suite
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesTestSuite))
}

func (suite *TypesTestSuite) TestNewBar() {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bar := NewBar(date, 3123.45)
	suite.True(bar.HasClose())
	suite.Equal(3123.45, bar.CloseFloat())
	suite.Equal(date, bar.Date)

	suite.False(Bar{Date: date}.HasClose())
	suite.Equal(0.0, Bar{Date: date}.CloseFloat())
}

func (suite *TypesTestSuite) TestCloses() {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := []Bar{NewBar(date, 1), NewBar(date.AddDate(0, 0, 1), 2.5)}
	suite.Equal([]float64{1, 2.5}, Closes(bars))
}

func (suite *TypesTestSuite) TestEnumsValid() {
	suite.True(CrossKindLowZone.Valid())
	suite.True(CrossKindBearish.Valid())
	suite.False(CrossKind("golden").Valid())
	suite.True(DivergenceKindCrossPeakBottom.Valid())
	suite.False(DivergenceKind("").Valid())
	suite.True(SeriesKindOscillator.Valid())
	suite.False(SeriesKind("volume").Valid())
	suite.True(ShapeTrough.Valid())
	suite.False(Shape("flat").Valid())
}

func (suite *TypesTestSuite) TestKindDirections() {
	suite.True(CrossKindLowZone.Bullish())
	suite.True(CrossKindSecondary.Bullish())
	suite.False(CrossKindBearish.Bullish())
	suite.True(DivergenceKindDirectTop.Top())
	suite.True(DivergenceKindCrossPeakTop.Top())
	suite.False(DivergenceKindDirectBottom.Top())
}

func (suite *TypesTestSuite) TestStructureCodes() {
	suite.Equal(1, StructureValue{TG: true}.TGCode())
	suite.Equal(0, StructureValue{}.TGCode())
	suite.Equal(-1, StructureValue{BG: true}.BGCode())
	suite.Equal(0, StructureValue{}.BGCode())
}

func (suite *TypesTestSuite) TestAnnotatedRowAccessors() {
	row := AnnotatedRow{
		Cross:      optional.Some(CrossKindSecondary),
		Divergence: optional.Some(DivergenceFlag{Index: 9, Kind: DivergenceKindCrossPeakTop, ReferenceIndex: 2}),
	}
	suite.True(row.SecondaryCross())
	suite.False(row.LowZoneCross())
	suite.False(row.BearishCross())
	suite.True(row.CrossPeakTopDivergence())
	suite.False(row.DirectTopDivergence())
	suite.False(row.DirectBottomDivergence())
	suite.False(row.CrossPeakBottomDivergence())

	empty := AnnotatedRow{}
	suite.False(empty.LowZoneCross())
	suite.False(empty.DirectTopDivergence())
}

func (suite *TypesTestSuite) TestUndefinedOscillatorIsNull() {
	row := AnnotatedRow{IndicatorRow: IndicatorRow{Close: 100, FastAvg: 100, SlowAvg: 100}}
	data, err := json.Marshal(row)
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Nil(decoded["oscillator"])
	suite.Nil(decoded["signal"])
	suite.Nil(decoded["histogram"])
	suite.Equal(100.0, decoded["close"])
}
