package export

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-structure/internal/engine"
	"github.com/rxtech-lab/argo-structure/internal/indicator"
	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/mocks"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

type ExportTestSuite struct {
	suite.Suite
	result *engine.Result
}

func TestExportSuite(t *testing.T) {
	suite.Run(t, new(ExportTestSuite))
}

func (suite *ExportTestSuite) SetupTest() {
	cfg := mocks.DefaultConfig()
	cfg.Count = 80

	result, err := engine.Analyze(mocks.NewDataGenerator(3).Generate(cfg), indicator.DefaultConfig())
	suite.Require().NoError(err)
	suite.result = result
}

func structureRow(tg, bg bool) types.AnnotatedRow {
	return types.AnnotatedRow{
		IndicatorRow: types.IndicatorRow{
			Date:       time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
			Close:      3386.3451,
			FastAvg:    3380.12345,
			SlowAvg:    3370.98765,
			Oscillator: optional.Some(9.13579),
			Signal:     optional.Some(7.24681),
			Histogram:  optional.Some(3.77796),
		},
		Cross:     optional.Some(types.CrossKindSecondary),
		Structure: types.StructureValue{TG: tg, BG: bg},
		Trend:     types.TrendFlag{MainRise: bg},
	}
}

func (suite *ExportTestSuite) TestNewRecordRounding() {
	rec := NewRecord(structureRow(false, true), Options{Round: true})

	suite.Equal("2024-06-03", rec.Date)
	suite.InDelta(3386.35, rec.Close, 1e-9)
	suite.InDelta(3380.123, rec.FastAvg, 1e-9)
	suite.Require().NotNil(rec.Oscillator)
	suite.InDelta(9.136, *rec.Oscillator, 1e-9)
	suite.InDelta(7.247, *rec.Signal, 1e-9)
	suite.InDelta(3.778, *rec.Histogram, 1e-9)
	suite.True(rec.SecondaryCross)
	suite.False(rec.LowZoneCross)
	suite.Equal(-1, rec.BGCode)
	suite.Equal(0, rec.TGCode)
	suite.True(rec.MainRise)
}

func (suite *ExportTestSuite) TestNewRecordWithoutRounding() {
	rec := NewRecord(structureRow(false, false), Options{})
	suite.InDelta(3386.3451, rec.Close, 1e-12)
	suite.InDelta(9.13579, *rec.Oscillator, 1e-12)
}

func (suite *ExportTestSuite) TestStructureFlagEncoding() {
	plain := NewRecord(structureRow(true, false), Options{})
	compact := NewRecord(structureRow(false, true), Options{Compact: true})

	suite.Equal("true", plain.TG.String())
	suite.Equal("false", plain.BG.String())
	suite.Equal("0", compact.TG.String())
	suite.Equal("-1", compact.BG.String())

	data, err := json.Marshal(compact)
	suite.Require().NoError(err)
	suite.Contains(string(data), `"TG":0`)
	suite.Contains(string(data), `"BG":-1`)

	data, err = json.Marshal(plain)
	suite.Require().NoError(err)
	suite.Contains(string(data), `"TG":true`)
	suite.Contains(string(data), `"TG_code":1`)
}

func (suite *ExportTestSuite) TestRecordJSONRoundTrip() {
	for _, compact := range []bool{false, true} {
		records := []Record{
			NewRecord(structureRow(true, false), Options{Compact: compact, Round: true}),
			NewRecord(structureRow(false, true), Options{Compact: compact}),
		}
		records = append(records, NewRecords(suite.result.Rows, Options{Compact: compact})...)

		data, err := json.Marshal(records)
		suite.Require().NoError(err)

		var decoded []Record
		suite.Require().NoError(json.Unmarshal(data, &decoded), "compact=%v", compact)
		suite.Equal(records, decoded, "compact=%v", compact)
	}
}

func (suite *ExportTestSuite) TestStructureFlagRejectsText() {
	var flag StructureFlag
	suite.Error(json.Unmarshal([]byte(`"yes"`), &flag))

	suite.Require().NoError(json.Unmarshal([]byte(`-1`), &flag))
	suite.Equal(StructureFlag{Value: true, Code: -1, Compact: true}, flag)

	suite.Require().NoError(json.Unmarshal([]byte(`false`), &flag))
	suite.Equal(StructureFlag{}, flag)
}

func (suite *ExportTestSuite) TestWarmupCellsAreUndefined() {
	records := NewRecords(suite.result.Rows, Options{Round: true})
	suite.Require().Len(records, suite.result.Len())

	cfg := indicator.DefaultConfig()
	suite.Nil(records[0].Oscillator)
	suite.Nil(records[cfg.OscillatorStart()-1].Oscillator)
	suite.NotNil(records[cfg.OscillatorStart()].Oscillator)
	suite.Nil(records[cfg.SignalStart()-1].Signal)
	suite.NotNil(records[cfg.SignalStart()].Histogram)

	var buf bytes.Buffer
	suite.Require().NoError(WriteCSV(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	suite.Require().Len(lines, len(records)+1)
	suite.Equal(strings.Join(Columns, ","), lines[0])

	firstRow := strings.Split(lines[1], ",")
	suite.Require().Len(firstRow, len(Columns))
	suite.Equal("", firstRow[4])
	suite.Equal("", firstRow[5])
	suite.Equal("", firstRow[6])
	suite.Equal("false", firstRow[10])

	buf.Reset()
	suite.Require().NoError(WriteJSON(&buf, records[:1]))
	suite.Contains(buf.String(), `"oscillator": null`)
	suite.NotContains(buf.String(), `"oscillator": 0`)
}

func (suite *ExportTestSuite) TestCompactCSV() {
	records := NewRecords([]types.AnnotatedRow{structureRow(true, false), structureRow(false, true)}, Options{Compact: true})

	var buf bytes.Buffer
	suite.Require().NoError(WriteCSV(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	suite.Require().Len(lines, 3)
	suite.Equal("1", strings.Split(lines[1], ",")[10])
	suite.Equal("0", strings.Split(lines[1], ",")[11])
	suite.Equal("-1", strings.Split(lines[2], ",")[11])
}

func (suite *ExportTestSuite) TestWriteJSONEmpty() {
	var buf bytes.Buffer
	suite.Require().NoError(WriteJSON(&buf, nil))
	suite.Equal("[]\n", buf.String())
}

func (suite *ExportTestSuite) TestTable() {
	records := NewRecords(suite.result.Tail(5), Options{Round: true})

	var buf bytes.Buffer
	suite.Require().NoError(WriteTable(&buf, records))

	out := buf.String()
	suite.Contains(out, "DIF")
	suite.Contains(out, "DEA")
	suite.Contains(out, "MACD")
	suite.Contains(out, records[4].Date)
}

func (suite *ExportTestSuite) TestParquet() {
	path := filepath.Join(suite.T().TempDir(), "structure.parquet")
	records := NewRecords(suite.result.Rows, Options{Round: true, Compact: true})

	exporter := NewParquetExporter(path, true)
	suite.NotEmpty(exporter.RunID())
	suite.Require().NoError(exporter.Export(records))

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)

	defer db.Close()

	var count, nulls int
	var runIDs int
	row := db.QueryRow(`SELECT COUNT(*), COUNT(*) - COUNT(oscillator), COUNT(DISTINCT run_id) FROM read_parquet('` + path + `')`)
	suite.Require().NoError(row.Scan(&count, &nulls, &runIDs))
	suite.Equal(len(records), count)
	suite.Equal(indicator.DefaultConfig().OscillatorStart(), nulls)
	suite.Equal(1, runIDs)
}

func (suite *ExportTestSuite) TestWriteFile() {
	dir := suite.T().TempDir()
	records := NewRecords(suite.result.Tail(3), Options{})

	for _, name := range []string{"out.csv", "out.json", "out.table", "out.parquet"} {
		format, err := FormatFromPath(name)
		suite.Require().NoError(err)
		suite.NoError(WriteFile(filepath.Join(dir, name), format, records, false))
		suite.FileExists(filepath.Join(dir, name))
	}
}

func (suite *ExportTestSuite) TestParseFormat() {
	f, err := ParseFormat("JSON")
	suite.NoError(err)
	suite.Equal(FormatJSON, f)

	_, err = ParseFormat("xlsx")
	suite.Error(err)
	suite.Equal(errors.ErrCodeUnsupportedFormat, errors.GetCode(err))

	suite.Error(Write(&bytes.Buffer{}, FormatParquet, nil))
}
