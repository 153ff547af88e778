package types

// IndicatorType names a stage of the structure pipeline.
type IndicatorType string

const (
	IndicatorTypeMACD       IndicatorType = "macd"
	IndicatorTypeExtremum   IndicatorType = "extremum"
	IndicatorTypeCross      IndicatorType = "cross"
	IndicatorTypeDivergence IndicatorType = "divergence"
	IndicatorTypeStructure  IndicatorType = "structure"
	IndicatorTypeTrend      IndicatorType = "trend"
)
