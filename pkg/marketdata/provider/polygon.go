package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// PolygonAggsIterator is the subset of the polygon aggregates iterator used here.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient abstracts the polygon REST client so tests can replace it.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonClientWrapper{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI builds a client over an existing API implementation.
func NewPolygonClientWithAPI(api PolygonAPIClient) *PolygonClient {
	return &PolygonClient{apiClient: api}
}

func (c *PolygonClient) Name() string {
	return string(ProviderPolygon)
}

// FetchDaily downloads daily aggregates. Aggregates are returned ascending by polygon.
func (c *PolygonClient) FetchDaily(ctx context.Context, req FetchRequest) ([]types.Bar, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	totalDays := float64(int(req.End.Sub(req.Start).Hours()/24) + 1)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     req.Ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(dayOf(req.Start)),
		To:         models.Millis(dayOf(req.End)),
	}.WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	var bars []types.Bar

	for iter.Next() {
		agg := iter.Item()
		date := dayOf(time.Time(agg.Timestamp))

		bars = append(bars, types.Bar{
			Date:   date,
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  decimal.NewNullDecimal(decimal.NewFromFloat(agg.Close)),
			Volume: agg.Volume,
		})

		req.progress(date.Sub(dayOf(req.Start)).Hours()/24, totalDays, "Downloading "+req.Ticker)
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "error iterating polygon aggregates for %s", fmtRange(req))
	}

	if len(bars) == 0 {
		return nil, errors.NewDataUnavailableError(req.Ticker, "polygon returned no aggregates for "+fmtRange(req))
	}

	return bars, nil
}
