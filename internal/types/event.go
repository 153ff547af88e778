package types

import "time"

// SeriesKind identifies the series an extremum was found on.
type SeriesKind string

const (
	SeriesKindPrice      SeriesKind = "price"
	SeriesKindOscillator SeriesKind = "oscillator"
)

// Valid reports whether the kind is a known value.
func (k SeriesKind) Valid() bool {
	switch k {
	case SeriesKindPrice, SeriesKindOscillator:
		return true
	default:
		return false
	}
}

// Shape is the shape of a local extremum.
type Shape string

const (
	ShapePeak   Shape = "peak"
	ShapeTrough Shape = "trough"
)

// Valid reports whether the shape is a known value.
func (s Shape) Valid() bool {
	switch s {
	case ShapePeak, ShapeTrough:
		return true
	default:
		return false
	}
}

// Extremum is a confirmed local peak or trough.
type Extremum struct {
	Index  int        `json:"index"`
	Date   time.Time  `json:"date"`
	Value  float64    `json:"value"`
	Series SeriesKind `json:"series"`
	Shape  Shape      `json:"shape"`
}

// CrossKind classifies a crossing of the oscillator and its signal line.
type CrossKind string

const (
	// CrossKindLowZone is an upward cross at or below the zero axis that opens a cycle.
	CrossKindLowZone CrossKind = "low_zone_cross"
	// CrossKindSecondary is a further upward cross before the cycle has left the low zone.
	CrossKindSecondary CrossKind = "secondary_cross"
	// CrossKindBearish is a downward cross of the oscillator through its signal line.
	CrossKindBearish CrossKind = "bearish_cross"
)

// Valid reports whether the kind is a known value.
func (k CrossKind) Valid() bool {
	switch k {
	case CrossKindLowZone, CrossKindSecondary, CrossKindBearish:
		return true
	default:
		return false
	}
}

// Bullish reports whether the cross is an upward one.
func (k CrossKind) Bullish() bool {
	switch k {
	case CrossKindLowZone, CrossKindSecondary:
		return true
	case CrossKindBearish:
		return false
	default:
		return false
	}
}

// CrossEvent is a classified cross on a given row.
type CrossEvent struct {
	Index int       `json:"index"`
	Date  time.Time `json:"date"`
	Kind  CrossKind `json:"kind"`
}

// DivergenceKind classifies a price/oscillator divergence.
type DivergenceKind string

const (
	DivergenceKindDirectTop       DivergenceKind = "direct_top"
	DivergenceKindCrossPeakTop    DivergenceKind = "cross_peak_top"
	DivergenceKindDirectBottom    DivergenceKind = "direct_bottom"
	DivergenceKindCrossPeakBottom DivergenceKind = "cross_peak_bottom"
)

// Valid reports whether the kind is a known value.
func (k DivergenceKind) Valid() bool {
	switch k {
	case DivergenceKindDirectTop, DivergenceKindCrossPeakTop,
		DivergenceKindDirectBottom, DivergenceKindCrossPeakBottom:
		return true
	default:
		return false
	}
}

// Top reports whether the divergence is a top (bearish) one.
func (k DivergenceKind) Top() bool {
	switch k {
	case DivergenceKindDirectTop, DivergenceKindCrossPeakTop:
		return true
	case DivergenceKindDirectBottom, DivergenceKindCrossPeakBottom:
		return false
	default:
		return false
	}
}

// DivergenceFlag is attached to the row of the newer extremum.
// ReferenceIndex points at the older extremum it was compared with.
type DivergenceFlag struct {
	Index          int            `json:"index"`
	Date           time.Time      `json:"date"`
	Kind           DivergenceKind `json:"kind"`
	ReferenceIndex int            `json:"reference_index"`
}
