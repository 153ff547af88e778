package marketdata

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/argo-structure/pkg/errors"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata/writer"
)

// WriterType defines the file format downloads are stored in.
type WriterType string

const (
	WriterCSV     WriterType = "csv"
	WriterParquet WriterType = "parquet"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	Provider   provider.ProviderConfig
	WriterType WriterType `validate:"required,oneof=csv parquet"`
	DataPath   string     `validate:"required"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

// Client downloads daily bars from a provider and stores them with a writer.
// The stored files are readable by the csv and parquet providers.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.Provider)
	if err != nil {
		return nil, err
	}

	return NewClientWithProvider(config, marketProvider, onProgress), nil
}

// NewClientWithProvider creates a client around an existing provider.
func NewClientWithProvider(config ClientConfig, p provider.Provider, onProgress provider.OnDownloadProgress) *Client {
	return &Client{
		provider:   p,
		config:     config,
		validate:   validator.New(),
		onProgress: onProgress,
	}
}

// Download fetches the bars for params and writes them to
// <DataPath>/<ticker>.<csv|parquet>. It returns the written path.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	bars, err := c.provider.FetchDaily(ctx, provider.FetchRequest{
		Ticker:     params.Ticker,
		Start:      params.StartDate,
		End:        params.EndDate,
		OnProgress: c.onProgress,
	})
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "download of %s from %s failed", params.Ticker, c.provider.Name())
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", err
	}

	defer marketWriter.Close()

	for _, bar := range bars {
		if err := marketWriter.Write(bar); err != nil {
			return "", err
		}
	}

	return marketWriter.Finalize()
}

// OutputPath returns where Download stores the ticker.
func (c *Client) OutputPath(ticker string) string {
	return filepath.Join(c.config.DataPath, ticker+"."+string(c.config.WriterType))
}

func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	if err := os.MkdirAll(c.config.DataPath, 0o755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create %s", c.config.DataPath)
	}

	outputPath := c.OutputPath(params.Ticker)

	var marketWriter writer.MarketDataWriter

	switch c.config.WriterType {
	case WriterParquet:
		marketWriter = writer.NewDuckDBWriter(outputPath, params.Ticker)
	case WriterCSV:
		marketWriter = writer.NewCSVWriter(outputPath)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported writer type: %s", c.config.WriterType)
	}

	if err := marketWriter.Initialize(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to initialize writer at %s", outputPath)
	}

	return marketWriter, nil
}
