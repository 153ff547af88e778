package marketdata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/mocks"
	structerrors "github.com/rxtech-lab/argo-structure/pkg/errors"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata/provider"
)

// ClientTestSuite is a test suite for the Client implementation
type ClientTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *mocks.MockProvider
	tempDir      string
	start        time.Time
	end          time.Time
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (suite *ClientTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProvider = mocks.NewMockProvider(suite.ctrl)
	suite.tempDir = suite.T().TempDir()
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
}

func (suite *ClientTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ClientTestSuite) client(writerType WriterType) *Client {
	config := ClientConfig{
		Provider:   provider.ProviderConfig{Type: provider.ProviderBinance},
		WriterType: writerType,
		DataPath:   filepath.Join(suite.tempDir, "data"),
	}

	return NewClientWithProvider(config, suite.mockProvider, nil)
}

func (suite *ClientTestSuite) bars() []types.Bar {
	return []types.Bar{
		types.NewBar(suite.start.AddDate(0, 0, 1), 3386.35),
		types.NewBar(suite.start.AddDate(0, 0, 2), 3370.52),
	}
}

func (suite *ClientTestSuite) TestDownloadCSV() {
	suite.mockProvider.EXPECT().
		FetchDaily(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req provider.FetchRequest) ([]types.Bar, error) {
			suite.Equal("sh000300", req.Ticker)
			suite.True(req.Start.Equal(suite.start))
			suite.True(req.End.Equal(suite.end))

			return suite.bars(), nil
		})

	c := suite.client(WriterCSV)
	path, err := c.Download(context.Background(), DownloadParams{Ticker: "sh000300", StartDate: suite.start, EndDate: suite.end})
	suite.Require().NoError(err)
	suite.Equal(c.OutputPath("sh000300"), path)
	suite.Equal(filepath.Join(suite.tempDir, "data", "sh000300.csv"), path)

	content, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.Contains(string(content), "2024-01-02,0,0,0,3386.35,0")
}

func (suite *ClientTestSuite) TestDownloadParquet() {
	suite.mockProvider.EXPECT().FetchDaily(gomock.Any(), gomock.Any()).Return(suite.bars(), nil)

	c := suite.client(WriterParquet)
	path, err := c.Download(context.Background(), DownloadParams{Ticker: "sh000905", StartDate: suite.start, EndDate: suite.end})
	suite.Require().NoError(err)
	suite.FileExists(path)

	reader := provider.NewParquetProvider(filepath.Dir(path))
	got, err := reader.FetchDaily(context.Background(), provider.FetchRequest{Ticker: "sh000905", Start: suite.start, End: suite.end})
	suite.Require().NoError(err)
	suite.Len(got, 2)
}

func (suite *ClientTestSuite) TestDownloadProviderError() {
	suite.mockProvider.EXPECT().FetchDaily(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
	suite.mockProvider.EXPECT().Name().Return("binance")

	_, err := suite.client(WriterCSV).Download(context.Background(), DownloadParams{Ticker: "BTCUSDT", StartDate: suite.start, EndDate: suite.end})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "boom")
	suite.Equal(structerrors.ErrCodeMarketDataFetchFailed, structerrors.GetCode(err))
}

func (suite *ClientTestSuite) TestDownloadInvalidParams() {
	tests := []struct {
		name   string
		params DownloadParams
	}{
		{name: "missing ticker", params: DownloadParams{StartDate: suite.start, EndDate: suite.end}},
		{name: "end before start", params: DownloadParams{Ticker: "x", StartDate: suite.end, EndDate: suite.start}},
		{name: "missing start", params: DownloadParams{Ticker: "x", EndDate: suite.end}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := suite.client(WriterCSV).Download(context.Background(), tc.params)
			suite.Error(err)
			suite.Equal(structerrors.ErrCodeInvalidParameter, structerrors.GetCode(err))
		})
	}
}

func (suite *ClientTestSuite) TestNewClient() {
	c, err := NewClient(ClientConfig{
		Provider:   provider.ProviderConfig{Type: provider.ProviderCSV, DataDir: suite.tempDir},
		WriterType: WriterParquet,
		DataPath:   suite.tempDir,
	}, nil)
	suite.Require().NoError(err)
	suite.Equal("csv", c.provider.Name())

	_, err = NewClient(ClientConfig{
		Provider:   provider.ProviderConfig{Type: provider.ProviderCSV, DataDir: suite.tempDir},
		WriterType: "xlsx",
		DataPath:   suite.tempDir,
	}, nil)
	suite.Error(err)

	_, err = NewClient(ClientConfig{
		Provider:   provider.ProviderConfig{Type: provider.ProviderPolygon},
		WriterType: WriterCSV,
		DataPath:   suite.tempDir,
	}, nil)
	suite.Error(err)
}
