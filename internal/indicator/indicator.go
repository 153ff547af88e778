package indicator

import (
	"time"

	"github.com/rxtech-lab/argo-structure/internal/types"
)

// Table is the running analysis table. Each stage reads the columns written by
// earlier stages and appends its own; no stage rewrites another stage's columns.
type Table struct {
	Config Config
	Dates  []time.Time
	Closes []float64
	Rows   []types.AnnotatedRow

	PriceExtrema      []types.Extremum
	OscillatorExtrema []types.Extremum
	Crosses           []types.CrossEvent
	Divergences       []types.DivergenceFlag
}

// NewTable creates a table over validated bars.
func NewTable(bars []types.Bar, cfg Config) *Table {
	t := &Table{
		Config: cfg,
		Dates:  make([]time.Time, len(bars)),
		Closes: make([]float64, len(bars)),
		Rows:   make([]types.AnnotatedRow, len(bars)),
	}

	for i, bar := range bars {
		t.Dates[i] = bar.Date
		t.Closes[i] = bar.CloseFloat()
		t.Rows[i].Date = bar.Date
		t.Rows[i].Close = t.Closes[i]
	}

	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Oscillator returns the oscillator column; undefined rows are reported by ok=false.
func (t *Table) Oscillator(i int) (float64, bool) {
	osc := t.Rows[i].Oscillator
	if osc.IsNone() {
		return 0, false
	}

	return osc.Unwrap(), true
}

// Stage is one step of the structure pipeline.
type Stage interface {
	// Name returns the name of the stage
	Name() types.IndicatorType
	// Requires lists the stages whose columns this stage reads
	Requires() []types.IndicatorType
	// Config applies the pipeline configuration
	Config(cfg Config) error
	// Apply appends the stage's columns to the table
	Apply(table *Table) error
}
