package provider

import (
	"context"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// binancePageSize is the default number of klines returned per request.
const binancePageSize = 500

// BinanceKlinesService abstracts the chainable klines request builder.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient abstracts the binance client so tests can replace it.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceClientWrapper struct {
	client *binance.Client
}

func (w *binanceClientWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service = w.service.Symbol(symbol)

	return w
}

func (w *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	w.service = w.service.Interval(interval)

	return w
}

func (w *binanceKlinesServiceWrapper) StartTime(startTime int64) BinanceKlinesService {
	w.service = w.service.StartTime(startTime)

	return w
}

func (w *binanceKlinesServiceWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service = w.service.EndTime(endTime)

	return w
}

func (w *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
}

func NewBinanceClient() (Provider, error) {
	return NewBinanceClientWithAPI(&binanceClientWrapper{client: binance.NewClient("", "")}), nil
}

// NewBinanceClientWithAPI builds a client over an existing API implementation.
func NewBinanceClientWithAPI(api BinanceAPIClient) *BinanceClient {
	return &BinanceClient{apiClient: api}
}

func (c *BinanceClient) Name() string {
	return string(ProviderBinance)
}

// FetchDaily downloads the daily klines of the symbol, paging through the
// 500-row limit of the klines endpoint.
func (c *BinanceClient) FetchDaily(ctx context.Context, req FetchRequest) ([]types.Bar, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startTimeMillis := dayOf(req.Start).UnixMilli()
	// End is inclusive, so include the whole last day.
	endTimeMillis := dayOf(req.End).Add(24*time.Hour).UnixMilli() - 1
	currentStartTime := startTimeMillis

	var bars []types.Bar

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(req.Ticker).
			Interval("1d").
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s", fmtRange(req))
		}

		page, err := klinesToBars(klines)
		if err != nil {
			return nil, err
		}

		bars = append(bars, page...)

		req.progress(float64(currentStartTime-startTimeMillis), float64(endTimeMillis-startTimeMillis), "Downloading "+req.Ticker+" klines from Binance")

		// A short page is the last page.
		if len(klines) < binancePageSize {
			break
		}

		// Next page starts right after the close of the last kline.
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	if len(bars) == 0 {
		return nil, errors.NewDataUnavailableError(req.Ticker, "binance returned no klines for "+fmtRange(req))
	}

	return bars, nil
}

// klinesToBars converts binance klines to bars dated by their open day.
func klinesToBars(klines []*binance.Kline) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, len(klines))

	for _, k := range klines {
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid close %q", k.Close)
		}

		bars = append(bars, types.Bar{
			Date:   dayOf(time.UnixMilli(k.OpenTime)),
			Open:   parseFloatOrZero(k.Open),
			High:   parseFloatOrZero(k.High),
			Low:    parseFloatOrZero(k.Low),
			Close:  decimal.NewNullDecimal(closePrice),
			Volume: parseFloatOrZero(k.Volume),
		})
	}

	return bars, nil
}

func parseFloatOrZero(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}

	return d.InexactFloat64()
}
