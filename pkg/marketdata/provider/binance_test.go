package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/suite"

	structerrors "github.com/rxtech-lab/argo-structure/pkg/errors"
)

// mockBinanceAPIClient implements BinanceAPIClient for testing.
type mockBinanceAPIClient struct {
	klines    []*binance.Kline
	klinesErr error
	// For pagination testing - returns different results on subsequent calls
	callCount     int
	klinesPerCall [][]*binance.Kline
	errorsPerCall []error
	starts        []int64
	lastService   *mockBinanceKlinesService
}

func (m *mockBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	m.lastService = &mockBinanceKlinesService{client: m}

	return m.lastService
}

type mockBinanceKlinesService struct {
	client   *mockBinanceAPIClient
	symbol   string
	interval string
	start    int64
	end      int64
}

func (m *mockBinanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	m.symbol = symbol
	return m
}

func (m *mockBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	m.interval = interval
	return m
}

func (m *mockBinanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	m.start = startTime
	return m
}

func (m *mockBinanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	m.end = endTime
	return m
}

func (m *mockBinanceKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	m.client.starts = append(m.client.starts, m.start)

	if len(m.client.klinesPerCall) > 0 {
		idx := m.client.callCount
		m.client.callCount++
		if idx < len(m.client.klinesPerCall) {
			var err error
			if idx < len(m.client.errorsPerCall) {
				err = m.client.errorsPerCall[idx]
			}
			return m.client.klinesPerCall[idx], err
		}
		return nil, nil
	}

	return m.client.klines, m.client.klinesErr
}

// dailyKlines builds n consecutive daily klines starting at start.
func dailyKlines(start time.Time, n int, firstClose float64) []*binance.Kline {
	klines := make([]*binance.Kline, n)
	for i := 0; i < n; i++ {
		open := start.AddDate(0, 0, i)
		klines[i] = &binance.Kline{
			OpenTime:  open.UnixMilli(),
			Open:      "1.0",
			High:      "2.0",
			Low:       "0.5",
			Close:     fmt.Sprintf("%.2f", firstClose+float64(i)),
			Volume:    "10",
			CloseTime: open.Add(24*time.Hour).UnixMilli() - 1,
		}
	}

	return klines
}

type BinanceClientTestSuite struct {
	suite.Suite
	start time.Time
	end   time.Time
}

func TestBinanceClientSuite(t *testing.T) {
	suite.Run(t, new(BinanceClientTestSuite))
}

func (suite *BinanceClientTestSuite) SetupTest() {
	suite.start = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
}

func (suite *BinanceClientTestSuite) TestNewBinanceClient() {
	client, err := NewBinanceClient()
	suite.NoError(err)
	suite.NotNil(client)

	binanceClient, ok := client.(*BinanceClient)
	suite.True(ok)
	suite.NotNil(binanceClient.apiClient)
	suite.Equal("binance", binanceClient.Name())
}

func (suite *BinanceClientTestSuite) TestNewBinanceClientWithAPI() {
	mockAPI := &mockBinanceAPIClient{}
	client := NewBinanceClientWithAPI(mockAPI)
	suite.NotNil(client)
	suite.Equal(mockAPI, client.apiClient)
}

func (suite *BinanceClientTestSuite) TestFetchDailySinglePage() {
	mockAPI := &mockBinanceAPIClient{klines: dailyKlines(suite.start, 3, 100)}
	client := NewBinanceClientWithAPI(mockAPI)

	var progressCalls int
	bars, err := client.FetchDaily(context.Background(), FetchRequest{
		Ticker:     "BTCUSDT",
		Start:      suite.start,
		End:        suite.end,
		OnProgress: func(current, total float64, message string) { progressCalls++ },
	})
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)

	suite.Equal("BTCUSDT", mockAPI.lastService.symbol)
	suite.Equal("1d", mockAPI.lastService.interval)
	suite.Equal(suite.start.UnixMilli(), mockAPI.lastService.start)
	suite.Equal(suite.end.Add(24*time.Hour).UnixMilli()-1, mockAPI.lastService.end)

	suite.True(bars[0].Date.Equal(suite.start))
	suite.InDelta(100.0, bars[0].CloseFloat(), 1e-9)
	suite.InDelta(102.0, bars[2].CloseFloat(), 1e-9)
	suite.InDelta(2.0, bars[1].High, 1e-9)
	suite.Equal(1, progressCalls)
}

func (suite *BinanceClientTestSuite) TestFetchDailyPagination() {
	first := dailyKlines(suite.start, binancePageSize, 1)
	secondStart := suite.start.AddDate(0, 0, binancePageSize)
	second := dailyKlines(secondStart, 20, 1000)

	mockAPI := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{first, second}}
	client := NewBinanceClientWithAPI(mockAPI)

	bars, err := client.FetchDaily(context.Background(), FetchRequest{Ticker: "ETHUSDT", Start: suite.start, End: suite.end})
	suite.Require().NoError(err)
	suite.Len(bars, binancePageSize+20)
	suite.Equal(2, mockAPI.callCount)
	suite.Require().Len(mockAPI.starts, 2)
	suite.Equal(first[len(first)-1].CloseTime+1, mockAPI.starts[1])
	suite.True(bars[binancePageSize].Date.Equal(secondStart))
}

func (suite *BinanceClientTestSuite) TestFetchDailyAPIError() {
	mockAPI := &mockBinanceAPIClient{klinesErr: errors.New("rate limited")}
	client := NewBinanceClientWithAPI(mockAPI)

	_, err := client.FetchDaily(context.Background(), FetchRequest{Ticker: "BTCUSDT", Start: suite.start, End: suite.end})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "rate limited")
	suite.Equal(structerrors.ErrCodeMarketDataFetchFailed, structerrors.GetCode(err))
}

func (suite *BinanceClientTestSuite) TestFetchDailyErrorOnSecondPage() {
	mockAPI := &mockBinanceAPIClient{
		klinesPerCall: [][]*binance.Kline{dailyKlines(suite.start, binancePageSize, 1), nil},
		errorsPerCall: []error{nil, errors.New("connection reset")},
	}
	client := NewBinanceClientWithAPI(mockAPI)

	_, err := client.FetchDaily(context.Background(), FetchRequest{Ticker: "BTCUSDT", Start: suite.start, End: suite.end})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "connection reset")
}

func (suite *BinanceClientTestSuite) TestFetchDailyInvalidClose() {
	klines := dailyKlines(suite.start, 2, 1)
	klines[1].Close = "n/a"

	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{klines: klines})

	_, err := client.FetchDaily(context.Background(), FetchRequest{Ticker: "BTCUSDT", Start: suite.start, End: suite.end})
	suite.Require().Error(err)
	suite.Equal(structerrors.ErrCodeMarketDataParseFailed, structerrors.GetCode(err))
}

func (suite *BinanceClientTestSuite) TestFetchDailyEmpty() {
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{})

	_, err := client.FetchDaily(context.Background(), FetchRequest{Ticker: "BTCUSDT", Start: suite.start, End: suite.end})
	suite.Require().Error(err)
	suite.True(structerrors.IsDataUnavailableError(err))
}

func (suite *BinanceClientTestSuite) TestFetchDailyInvalidRequest() {
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{})

	_, err := client.FetchDaily(context.Background(), FetchRequest{Ticker: "BTCUSDT", Start: suite.end, End: suite.start})
	suite.Require().Error(err)
	suite.Equal(structerrors.ErrCodeInvalidParameter, structerrors.GetCode(err))
}
