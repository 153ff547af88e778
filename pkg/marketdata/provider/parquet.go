package provider

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// ParquetProvider reads <dir>/<ticker>.parquet files through DuckDB.
// The files carry the columns written by writer.ParquetWriter:
// date, ticker, open, high, low, close, volume.
type ParquetProvider struct {
	dir string
	sq  squirrel.StatementBuilderType
}

func NewParquetProvider(dir string) *ParquetProvider {
	return &ParquetProvider{
		dir: dir,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *ParquetProvider) Name() string {
	return string(ProviderParquet)
}

// Path returns the file the ticker is read from.
func (p *ParquetProvider) Path(ticker string) string {
	return filepath.Join(p.dir, ticker+".parquet")
}

// FetchDaily selects the rows of the ticker file inside the requested range, ordered by date.
func (p *ParquetProvider) FetchDaily(ctx context.Context, req FetchRequest) ([]types.Bar, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	path := p.Path(req.Ticker)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewDataUnavailableError(req.Ticker, "file not found: "+path)
	}

	bars, err := p.query(ctx, path, dayOf(req.Start), dayOf(req.End).Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		return nil, errors.NewDataUnavailableError(req.Ticker, "no rows in "+fmtRange(req))
	}

	req.progress(float64(len(bars)), float64(len(bars)), "Loaded "+req.Ticker)

	return bars, nil
}

func (p *ParquetProvider) query(ctx context.Context, path string, from, to time.Time) ([]types.Bar, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	source := fmt.Sprintf("read_parquet('%s')", strings.ReplaceAll(path, "'", "''"))

	query, args, err := p.sq.
		Select("date", "open", "high", "low", "close", "volume").
		From(source).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s", path)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var date time.Time

		var open, high, low, closePrice, vol sql.NullFloat64

		if err := rows.Scan(&date, &open, &high, &low, &closePrice, &vol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		bar := types.Bar{
			Date:   dayOf(date),
			Open:   open.Float64,
			High:   high.Float64,
			Low:    low.Float64,
			Volume: vol.Float64,
		}

		if closePrice.Valid {
			bar.Close = decimal.NewNullDecimal(decimal.NewFromFloat(closePrice.Float64))
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate rows", err)
	}

	return bars, nil
}
