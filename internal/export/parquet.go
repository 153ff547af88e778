package export

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// ParquetExporter writes records to a Parquet file through an in-memory DuckDB table.
// Every row carries the run id of the export.
type ParquetExporter struct {
	outputPath string
	compact    bool
	runID      string
}

func NewParquetExporter(outputPath string, compact bool) *ParquetExporter {
	return &ParquetExporter{
		outputPath: outputPath,
		compact:    compact,
		runID:      uuid.New().String(),
	}
}

// RunID identifies the rows of this export.
func (e *ParquetExporter) RunID() string {
	return e.runID
}

func (e *ParquetExporter) createTable() string {
	flagType := "BOOLEAN"
	if e.compact {
		flagType = "INTEGER"
	}

	return fmt.Sprintf(`
		CREATE TABLE structure (
			run_id TEXT,
			date DATE,
			close DOUBLE,
			fast_avg DOUBLE,
			slow_avg DOUBLE,
			oscillator DOUBLE,
			signal DOUBLE,
			histogram DOUBLE,
			low_zone_cross BOOLEAN,
			secondary_cross BOOLEAN,
			bearish_cross BOOLEAN,
			"TG" %[1]s,
			"BG" %[1]s,
			"TG_code" INTEGER,
			"BG_code" INTEGER,
			direct_top_div BOOLEAN,
			cross_peak_top_div BOOLEAN,
			direct_bottom_div BOOLEAN,
			cross_peak_bottom_div BOOLEAN,
			main_rise BOOLEAN,
			osc_top_turn BOOLEAN,
			osc_bottom_turn BOOLEAN
		)
	`, flagType)
}

// Export writes records and returns when the file is complete.
func (e *ParquetExporter) Export(records []Record) (err error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "open duckdb", err)
	}
	defer db.Close()

	if _, err = db.Exec(e.createTable()); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "create table", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "begin transaction", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(Columns)+1), ", ")

	stmt, err := tx.Prepare("INSERT INTO structure VALUES (" + placeholders + ")")
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "prepare insert", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err = stmt.Exec(
			e.runID, r.Date, r.Close, r.FastAvg, r.SlowAvg,
			nullable(r.Oscillator), nullable(r.Signal), nullable(r.Histogram),
			r.LowZoneCross, r.SecondaryCross, r.BearishCross,
			r.TG.SQLValue(), r.BG.SQLValue(), r.TGCode, r.BGCode,
			r.DirectTopDiv, r.CrossPeakTopDiv, r.DirectBottomDiv, r.CrossPeakBottomDiv,
			r.MainRise, r.OscTopTurn, r.OscBottomTurn,
		)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeExportFailed, err, "insert %s", r.Date)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "commit", err)
	}

	_, err = db.Exec(fmt.Sprintf(`COPY structure TO '%s' (FORMAT PARQUET)`, strings.ReplaceAll(e.outputPath, "'", "''")))
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "export to parquet", err)
	}

	return nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}

	return *v
}
