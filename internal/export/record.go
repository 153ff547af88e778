// Package export flattens analysis results into records and writes them as
// CSV, JSON, Parquet or a console table.
package export

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/utils"
)

const (
	closePlaces     = 2
	indicatorPlaces = 3
)

// Options controls how rows are flattened.
type Options struct {
	// Compact writes TG as 1/0 and BG as -1/0 instead of booleans.
	Compact bool
	// Round rounds close to 2 places and the oscillator columns to 3.
	Round bool
}

// StructureFlag is a TG or BG cell. It renders as a boolean, or as its signed
// code in compact mode.
type StructureFlag struct {
	Value   bool
	Code    int
	Compact bool
}

func (f StructureFlag) String() string {
	if f.Compact {
		return strconv.Itoa(f.Code)
	}

	return strconv.FormatBool(f.Value)
}

func (f StructureFlag) MarshalCSV() (string, error) {
	return f.String(), nil
}

func (f StructureFlag) MarshalJSON() ([]byte, error) {
	if f.Compact {
		return json.Marshal(f.Code)
	}

	return json.Marshal(f.Value)
}

// UnmarshalJSON accepts a boolean, or a signed code as written in compact mode.
// A boolean leaves Code unset; Record.UnmarshalJSON restores it from the code columns.
func (f *StructureFlag) UnmarshalJSON(data []byte) error {
	var value bool
	if err := json.Unmarshal(data, &value); err == nil {
		*f = StructureFlag{Value: value}

		return nil
	}

	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}

	*f = StructureFlag{Value: code != 0, Code: code, Compact: true}

	return nil
}

// SQLValue is the value stored in a Parquet column.
func (f StructureFlag) SQLValue() any {
	if f.Compact {
		return f.Code
	}

	return f.Value
}

// Record is one flat output row. Oscillator columns are nil during warm-up.
type Record struct {
	Date               string        `csv:"date" json:"date"`
	Close              float64       `csv:"close" json:"close"`
	FastAvg            float64       `csv:"fast_avg" json:"fast_avg"`
	SlowAvg            float64       `csv:"slow_avg" json:"slow_avg"`
	Oscillator         *float64      `csv:"oscillator" json:"oscillator"`
	Signal             *float64      `csv:"signal" json:"signal"`
	Histogram          *float64      `csv:"histogram" json:"histogram"`
	LowZoneCross       bool          `csv:"low_zone_cross" json:"low_zone_cross"`
	SecondaryCross     bool          `csv:"secondary_cross" json:"secondary_cross"`
	BearishCross       bool          `csv:"bearish_cross" json:"bearish_cross"`
	TG                 StructureFlag `csv:"TG" json:"TG"`
	BG                 StructureFlag `csv:"BG" json:"BG"`
	TGCode             int           `csv:"TG_code" json:"TG_code"`
	BGCode             int           `csv:"BG_code" json:"BG_code"`
	DirectTopDiv       bool          `csv:"direct_top_div" json:"direct_top_div"`
	CrossPeakTopDiv    bool          `csv:"cross_peak_top_div" json:"cross_peak_top_div"`
	DirectBottomDiv    bool          `csv:"direct_bottom_div" json:"direct_bottom_div"`
	CrossPeakBottomDiv bool          `csv:"cross_peak_bottom_div" json:"cross_peak_bottom_div"`
	MainRise           bool          `csv:"main_rise" json:"main_rise"`
	OscTopTurn         bool          `csv:"osc_top_turn" json:"osc_top_turn"`
	OscBottomTurn      bool          `csv:"osc_bottom_turn" json:"osc_bottom_turn"`
}

// UnmarshalJSON decodes a record written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record

	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	if !decoded.TG.Compact {
		decoded.TG.Code = decoded.TGCode
	}

	if !decoded.BG.Compact {
		decoded.BG.Code = decoded.BGCode
	}

	*r = Record(decoded)

	return nil
}

// Columns lists the record columns in output order.
var Columns = []string{
	"date", "close", "fast_avg", "slow_avg", "oscillator", "signal", "histogram",
	"low_zone_cross", "secondary_cross", "bearish_cross", "TG", "BG", "TG_code", "BG_code",
	"direct_top_div", "cross_peak_top_div", "direct_bottom_div", "cross_peak_bottom_div",
	"main_rise", "osc_top_turn", "osc_bottom_turn",
}

// NewRecord flattens one annotated row.
func NewRecord(row types.AnnotatedRow, opts Options) Record {
	rec := Record{
		Date:               row.Date.Format(time.DateOnly),
		Close:              roundIf(row.Close, closePlaces, opts.Round),
		FastAvg:            roundIf(row.FastAvg, indicatorPlaces, opts.Round),
		SlowAvg:            roundIf(row.SlowAvg, indicatorPlaces, opts.Round),
		LowZoneCross:       row.LowZoneCross(),
		SecondaryCross:     row.SecondaryCross(),
		BearishCross:       row.BearishCross(),
		TG:                 StructureFlag{Value: row.Structure.TG, Code: row.Structure.TGCode(), Compact: opts.Compact},
		BG:                 StructureFlag{Value: row.Structure.BG, Code: row.Structure.BGCode(), Compact: opts.Compact},
		TGCode:             row.Structure.TGCode(),
		BGCode:             row.Structure.BGCode(),
		DirectTopDiv:       row.DirectTopDivergence(),
		CrossPeakTopDiv:    row.CrossPeakTopDivergence(),
		DirectBottomDiv:    row.DirectBottomDivergence(),
		CrossPeakBottomDiv: row.CrossPeakBottomDivergence(),
		MainRise:           row.Trend.MainRise,
		OscTopTurn:         row.Trend.OscTopTurn,
		OscBottomTurn:      row.Trend.OscBottomTurn,
	}

	rec.Oscillator = optionalValue(row.Oscillator.TakeOr(0), row.Oscillator.IsSome(), opts.Round)
	rec.Signal = optionalValue(row.Signal.TakeOr(0), row.Signal.IsSome(), opts.Round)
	rec.Histogram = optionalValue(row.Histogram.TakeOr(0), row.Histogram.IsSome(), opts.Round)

	return rec
}

// NewRecords flattens rows in order.
func NewRecords(rows []types.AnnotatedRow, opts Options) []Record {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = NewRecord(row, opts)
	}

	return records
}

func optionalValue(v float64, ok bool, round bool) *float64 {
	if !ok {
		return nil
	}

	v = roundIf(v, indicatorPlaces, round)

	return &v
}

func roundIf(v float64, places int32, round bool) float64 {
	if !round {
		return v
	}

	return utils.Round(v, places)
}
