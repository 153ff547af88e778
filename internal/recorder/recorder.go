// Package recorder keeps a history of the latest structure row of each index.
package recorder

import (
	"context"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-structure/internal/types"
)

// Snapshot is the recorded state of one index on one trading day.
type Snapshot struct {
	Ticker     string                   `json:"ticker"`
	Date       time.Time                `json:"date"`
	Close      float64                  `json:"close"`
	Oscillator optional.Option[float64] `json:"oscillator"`
	Signal     optional.Option[float64] `json:"signal"`
	Histogram  optional.Option[float64] `json:"histogram"`
	Cross      string                   `json:"cross,omitempty"`
	Divergence string                   `json:"divergence,omitempty"`
	TG         bool                     `json:"tg"`
	BG         bool                     `json:"bg"`
	MainRise   bool                     `json:"main_rise"`
	RecordedAt time.Time                `json:"recorded_at"`
}

// NewSnapshot captures row for ticker.
func NewSnapshot(ticker string, row types.AnnotatedRow, at time.Time) Snapshot {
	s := Snapshot{
		Ticker:     ticker,
		Date:       row.Date,
		Close:      row.Close,
		Oscillator: row.Oscillator,
		Signal:     row.Signal,
		Histogram:  row.Histogram,
		TG:         row.Structure.TG,
		BG:         row.Structure.BG,
		MainRise:   row.Trend.MainRise,
		RecordedAt: at,
	}

	if row.Cross.IsSome() {
		s.Cross = string(row.Cross.Unwrap())
	}

	if row.Divergence.IsSome() {
		s.Divergence = string(row.Divergence.Unwrap().Kind)
	}

	return s
}

// HistoryQuery filters History.
type HistoryQuery struct {
	Ticker string
	// SignalsOnly keeps TG and BG rows.
	SignalsOnly bool
	// Limit caps the number of rows, newest first. Zero means no cap.
	Limit int
}

// Recorder persists snapshots. Recording the same ticker and date twice keeps the later one.
type Recorder interface {
	Record(ctx context.Context, snapshot Snapshot) error
	History(ctx context.Context, query HistoryQuery) ([]Snapshot, error)
	Close() error
}
