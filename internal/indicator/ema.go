package indicator

import (
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// EMA is a streaming exponential moving average with alpha = 2/(period+1),
// seeded with the first observation (pandas ewm with adjust=False).
type EMA struct {
	period int
	alpha  float64
	value  float64
	seeded bool
}

// NewEMA creates a new EMA for the given period.
func NewEMA(period int) (*EMA, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
	}, nil
}

// Period returns the span of the average.
func (e *EMA) Period() int {
	return e.period
}

// Update feeds one observation and returns the new average.
func (e *EMA) Update(x float64) float64 {
	if !e.seeded {
		e.value = x
		e.seeded = true

		return e.value
	}

	// prev + alpha*(x-prev) keeps a constant series exactly constant
	e.value += e.alpha * (x - e.value)

	return e.value
}

// Value returns the current average.
func (e *EMA) Value() float64 {
	return e.value
}

// EMASeries computes the average for every element of values.
func EMASeries(values []float64, period int) ([]float64, error) {
	ema, err := NewEMA(period)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = ema.Update(v)
	}

	return out, nil
}
