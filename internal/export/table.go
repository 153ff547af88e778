package export

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteTable renders records as a console table using the dashboard headings.
func WriteTable(w io.Writer, records []Record) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Date", "Close", "DIF", "DEA", "MACD", "Low cross", "2nd cross", "TG", "BG", "Top div", "Bottom div", "Main rise"})

	for _, r := range records {
		t.AppendRow(table.Row{
			r.Date,
			strconv.FormatFloat(r.Close, 'f', closePlaces, 64),
			cell(r.Oscillator),
			cell(r.Signal),
			cell(r.Histogram),
			mark(r.LowZoneCross),
			mark(r.SecondaryCross),
			r.TG.String(),
			r.BG.String(),
			divergence(r.DirectTopDiv, r.CrossPeakTopDiv),
			divergence(r.DirectBottomDiv, r.CrossPeakBottomDiv),
			mark(r.MainRise),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	t.Render()

	return nil
}

func cell(v *float64) string {
	if v == nil {
		return "-"
	}

	return strconv.FormatFloat(*v, 'f', indicatorPlaces, 64)
}

func mark(b bool) string {
	if b {
		return "x"
	}

	return ""
}

func divergence(direct, crossPeak bool) string {
	switch {
	case direct:
		return "direct"
	case crossPeak:
		return "cross-peak"
	default:
		return ""
	}
}
