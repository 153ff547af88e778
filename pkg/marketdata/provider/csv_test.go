package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	structerrors "github.com/rxtech-lab/argo-structure/pkg/errors"
)

type CSVProviderTestSuite struct {
	suite.Suite
	dir string
}

func TestCSVProviderSuite(t *testing.T) {
	suite.Run(t, new(CSVProviderTestSuite))
}

func (suite *CSVProviderTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *CSVProviderTestSuite) writeFile(ticker, content string) {
	err := os.WriteFile(filepath.Join(suite.dir, ticker+".csv"), []byte(content), 0o644)
	suite.Require().NoError(err)
}

func (suite *CSVProviderTestSuite) request(ticker string) FetchRequest {
	return FetchRequest{
		Ticker: ticker,
		Start:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *CSVProviderTestSuite) TestFetchDaily() {
	suite.writeFile("sh000300", "date,open,high,low,close,volume\n"+
		"2023-12-29,3400,3440,3390,3431.11,100\n"+
		"2024-01-02,3430,3435,3380,3386.35,120\n"+
		"2024/01/03,3380,3390,3360,3370.52,\n")

	p := NewCSVProvider(suite.dir)
	suite.Equal("csv", p.Name())

	bars, err := p.FetchDaily(context.Background(), suite.request("sh000300"))
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)
	suite.True(bars[0].Date.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	suite.Equal("3386.35", bars[0].Close.Decimal.String())
	suite.InDelta(120.0, bars[0].Volume, 1e-9)
	suite.InDelta(0.0, bars[1].Volume, 1e-9)
}

func (suite *CSVProviderTestSuite) TestCloseOnlyFile() {
	suite.writeFile("sz399001", "date,close\n2024-02-01,9000\n2024-02-02,\n2024-02-05,9100.5\n")

	bars, err := NewCSVProvider(suite.dir).FetchDaily(context.Background(), suite.request("sz399001"))
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)
	suite.True(bars[0].HasClose())
	suite.False(bars[1].HasClose())
	suite.InDelta(9100.5, bars[2].CloseFloat(), 1e-9)
}

func (suite *CSVProviderTestSuite) TestKeepsFileOrder() {
	suite.writeFile("sh000016", "date,close\n2024-02-05,1\n2024-02-01,2\n")

	bars, err := NewCSVProvider(suite.dir).FetchDaily(context.Background(), suite.request("sh000016"))
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)
	suite.True(bars[0].Date.After(bars[1].Date))
}

func (suite *CSVProviderTestSuite) TestMissingFile() {
	_, err := NewCSVProvider(suite.dir).FetchDaily(context.Background(), suite.request("nope"))
	suite.Require().Error(err)
	suite.True(structerrors.IsDataUnavailableError(err))
}

func (suite *CSVProviderTestSuite) TestInvalidDate() {
	suite.writeFile("bad", "date,close\nyesterday,1\n")

	_, err := NewCSVProvider(suite.dir).FetchDaily(context.Background(), suite.request("bad"))
	suite.Require().Error(err)
	suite.Equal(structerrors.ErrCodeMarketDataParseFailed, structerrors.GetCode(err))
}

func (suite *CSVProviderTestSuite) TestInvalidClose() {
	suite.writeFile("bad", "date,close\n2024-01-02,abc\n")

	_, err := NewCSVProvider(suite.dir).FetchDaily(context.Background(), suite.request("bad"))
	suite.Require().Error(err)
	suite.Contains(err.Error(), "invalid close")
}

func (suite *CSVProviderTestSuite) TestNoRowsInRange() {
	suite.writeFile("old", "date,close\n2001-01-02,1\n")

	_, err := NewCSVProvider(suite.dir).FetchDaily(context.Background(), suite.request("old"))
	suite.Require().Error(err)
	suite.True(structerrors.IsDataUnavailableError(err))
}

func (suite *CSVProviderTestSuite) TestCancelledContext() {
	suite.writeFile("sh000300", "date,close\n2024-01-02,1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVProvider(suite.dir).FetchDaily(ctx, suite.request("sh000300"))
	suite.ErrorIs(err, context.Canceled)
}

func (suite *CSVProviderTestSuite) TestBarsToRowsRoundTrip() {
	rows := []*CSVRow{
		{Date: "2024-01-02", Close: "3386.35", Open: "1", High: "2", Low: "0.5", Volume: "7"},
		{Date: "2024-01-03"},
	}

	bars, err := RowsToBars(rows)
	suite.Require().NoError(err)

	back := BarsToRows(bars)
	suite.Equal("3386.35", back[0].Close)
	suite.Equal("0.5", back[0].Low)
	suite.Equal("", back[1].Close)
}
