package indicator

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-structure/internal/types"
)

var testStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func barsFromCloses(closes []float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.NewBar(testStart.AddDate(0, 0, i), c)
	}

	return bars
}

// tableWithColumns builds a table whose oscillator and signal columns are set
// directly. NaN marks an undefined value.
func tableWithColumns(closes, osc, signal []float64) *Table {
	table := NewTable(barsFromCloses(closes), DefaultConfig())

	for i := range table.Rows {
		if i < len(osc) && osc[i] == osc[i] {
			table.Rows[i].Oscillator = optional.Some(osc[i])
		}

		if i < len(signal) && signal[i] == signal[i] {
			table.Rows[i].Signal = optional.Some(signal[i])
		}
	}

	return table
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func indexes[T any](items []T, index func(T) int) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		out = append(out, index(item))
	}

	return out
}
