package provider

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// csvDateLayouts are the date layouts accepted in the date column.
var csvDateLayouts = []string{time.DateOnly, "2006/01/02", "20060102", time.RFC3339}

// CSVRow is one line of a daily history file.
// Numbers are kept as text so an empty close can be told apart from zero.
type CSVRow struct {
	Date   string `csv:"date"`
	Open   string `csv:"open"`
	High   string `csv:"high"`
	Low    string `csv:"low"`
	Close  string `csv:"close"`
	Volume string `csv:"volume"`
}

// CSVProvider reads <dir>/<ticker>.csv files.
type CSVProvider struct {
	dir string
}

func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

func (p *CSVProvider) Name() string {
	return string(ProviderCSV)
}

// Path returns the file the ticker is read from.
func (p *CSVProvider) Path(ticker string) string {
	return filepath.Join(p.dir, ticker+".csv")
}

// FetchDaily reads the ticker file and keeps the rows inside the requested range.
// Row order is preserved; ordering problems are left for the engine to report.
func (p *CSVProvider) FetchDaily(ctx context.Context, req FetchRequest) ([]types.Bar, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bars, err := ReadCSVFile(p.Path(req.Ticker))
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars = clipToRange(bars, req.Start, req.End)
	if len(bars) == 0 {
		return nil, errors.NewDataUnavailableError(req.Ticker, "no rows in "+fmtRange(req))
	}

	req.progress(float64(len(bars)), float64(len(bars)), "Loaded "+req.Ticker)

	return bars, nil
}

// ReadCSVFile parses a daily history file.
func ReadCSVFile(path string) ([]types.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewDataUnavailableError(strings.TrimSuffix(filepath.Base(path), ".csv"), "file not found: "+path)
		}

		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open %s", path)
	}
	defer file.Close()

	var rows []*CSVRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to parse %s", path)
	}

	return RowsToBars(rows)
}

// RowsToBars converts parsed rows to bars. A blank close yields a bar without a close.
func RowsToBars(rows []*CSVRow) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, len(rows))

	for i, row := range rows {
		date, err := parseCSVDate(row.Date)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "row %d: invalid date %q", i, row.Date)
		}

		bar := types.Bar{
			Date:   date,
			Open:   parseFloatOrZero(row.Open),
			High:   parseFloatOrZero(row.High),
			Low:    parseFloatOrZero(row.Low),
			Volume: parseFloatOrZero(row.Volume),
		}

		if c := strings.TrimSpace(row.Close); c != "" {
			closePrice, err := decimal.NewFromString(c)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "row %d: invalid close %q", i, row.Close)
			}

			bar.Close = decimal.NewNullDecimal(closePrice)
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

// BarsToRows is the inverse of RowsToBars.
func BarsToRows(bars []types.Bar) []*CSVRow {
	rows := make([]*CSVRow, len(bars))

	for i, b := range bars {
		row := &CSVRow{
			Date:   b.Date.Format(time.DateOnly),
			Open:   formatFloat(b.Open),
			High:   formatFloat(b.High),
			Low:    formatFloat(b.Low),
			Volume: formatFloat(b.Volume),
		}

		if b.Close.Valid {
			row.Close = b.Close.Decimal.String()
		}

		rows[i] = row
	}

	return rows
}

func formatFloat(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	var lastErr error

	for _, layout := range csvDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return dayOf(t), nil
		}

		lastErr = err
	}

	return time.Time{}, lastErr
}
