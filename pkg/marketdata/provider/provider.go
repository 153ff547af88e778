package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderCSV     ProviderType = "csv"
	ProviderParquet ProviderType = "parquet"
)

type OnDownloadProgress = func(current float64, total float64, message string)

// FetchRequest describes a daily history request for one ticker.
// Start and End are inclusive calendar days.
type FetchRequest struct {
	Ticker     string             `validate:"required"`
	Start      time.Time          `validate:"required"`
	End        time.Time          `validate:"required,gtfield=Start"`
	OnProgress OnDownloadProgress `validate:"-"`
}

// Validate checks the request fields.
func (r FetchRequest) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid fetch request", err)
	}

	return nil
}

func (r FetchRequest) progress(current, total float64, message string) {
	if r.OnProgress != nil {
		r.OnProgress(current, total, message)
	}
}

type Provider interface {
	// Name returns the provider type name, e.g. "polygon".
	Name() string
	// FetchDaily returns the daily bars of the ticker in ascending date order.
	// The context can be used to cancel the request.
	FetchDaily(ctx context.Context, req FetchRequest) ([]types.Bar, error)
}

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Type          ProviderType `yaml:"type" json:"type" validate:"required,oneof=polygon binance csv parquet"`
	DataDir       string       `yaml:"data_dir" json:"data_dir" validate:"required_if=Type csv,required_if=Type parquet"`
	PolygonAPIKey string       `yaml:"polygon_api_key" json:"-" validate:"required_if=Type polygon"`
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(config ProviderConfig) (Provider, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProvider, "invalid provider configuration", err)
	}

	switch config.Type {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		return NewPolygonClient(config.PolygonAPIKey)
	case ProviderCSV:
		return NewCSVProvider(config.DataDir), nil
	case ProviderParquet:
		return NewParquetProvider(config.DataDir), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", config.Type)
	}
}

// dayOf truncates t to midnight UTC of its calendar day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// clipToRange keeps bars whose day lies in [start, end].
func clipToRange(bars []types.Bar, start, end time.Time) []types.Bar {
	from, to := dayOf(start), dayOf(end)
	out := bars[:0]

	for _, b := range bars {
		d := dayOf(b.Date)
		if d.Before(from) || d.After(to) {
			continue
		}

		out = append(out, b)
	}

	return out
}

func fmtRange(req FetchRequest) string {
	return fmt.Sprintf("%s [%s, %s]", req.Ticker, req.Start.Format(time.DateOnly), req.End.Format(time.DateOnly))
}
