package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily observation of an index.
// Only Date and Close are read by the analysis engine; the other fields are
// carried through from providers and ignored.
type Bar struct {
	Date   time.Time           `json:"date"`
	Open   float64             `json:"open"`
	High   float64             `json:"high"`
	Low    float64             `json:"low"`
	Close  decimal.NullDecimal `json:"close"`
	Volume float64             `json:"volume"`
}

// NewBar builds a bar with a valid close and no OHLV data.
func NewBar(date time.Time, close float64) Bar {
	return Bar{
		Date:  date,
		Close: decimal.NewNullDecimal(decimal.NewFromFloat(close)),
	}
}

// HasClose reports whether the bar carries a close price.
func (b Bar) HasClose() bool {
	return b.Close.Valid
}

// CloseFloat returns the close as float64. It is zero when the close is missing.
func (b Bar) CloseFloat() float64 {
	if !b.Close.Valid {
		return 0
	}

	return b.Close.Decimal.InexactFloat64()
}

// Closes extracts the close column. Callers must have validated the bars.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.CloseFloat()
	}

	return closes
}
