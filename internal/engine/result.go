package engine

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-structure/internal/indicator"
	"github.com/rxtech-lab/argo-structure/internal/types"
)

// Result is the output of one analysis. Rows align one-to-one with the input bars.
type Result struct {
	SchemaVersion     string                 `json:"schema_version"`
	Config            indicator.Config       `json:"config"`
	Rows              []types.AnnotatedRow   `json:"rows"`
	PriceExtrema      []types.Extremum       `json:"price_extrema"`
	OscillatorExtrema []types.Extremum       `json:"oscillator_extrema"`
	Crosses           []types.CrossEvent     `json:"crosses"`
	Divergences       []types.DivergenceFlag `json:"divergences"`
}

// Len returns the number of rows.
func (r *Result) Len() int {
	return len(r.Rows)
}

// Latest returns the last row.
func (r *Result) Latest() optional.Option[types.AnnotatedRow] {
	if len(r.Rows) == 0 {
		return optional.None[types.AnnotatedRow]()
	}

	return optional.Some(r.Rows[len(r.Rows)-1])
}

// Tail returns the last n rows; n <= 0 returns every row.
func (r *Result) Tail(n int) []types.AnnotatedRow {
	if n <= 0 || n >= len(r.Rows) {
		return r.Rows
	}

	return r.Rows[len(r.Rows)-n:]
}

// Summary counts the events of a window of rows.
type Summary struct {
	Rows              int `json:"rows"`
	LowZoneCrosses    int `json:"low_zone_crosses"`
	SecondaryCrosses  int `json:"secondary_crosses"`
	TopDivergences    int `json:"top_divergences"`
	BottomDivergences int `json:"bottom_divergences"`
	TG                int `json:"tg"`
	BG                int `json:"bg"`
	MainRise          int `json:"main_rise"`
}

// Summarize counts events over rows.
func Summarize(rows []types.AnnotatedRow) Summary {
	s := Summary{Rows: len(rows)}

	for _, row := range rows {
		if row.LowZoneCross() {
			s.LowZoneCrosses++
		}

		if row.SecondaryCross() {
			s.SecondaryCrosses++
		}

		if row.Divergence.IsSome() {
			if row.Divergence.Unwrap().Kind.Top() {
				s.TopDivergences++
			} else {
				s.BottomDivergences++
			}
		}

		if row.Structure.TG {
			s.TG++
		}

		if row.Structure.BG {
			s.BG++
		}

		if row.Trend.MainRise {
			s.MainRise++
		}
	}

	return s
}
