package indicator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// Config holds every tunable of the structure pipeline.
type Config struct {
	FastPeriod   int `yaml:"fast_period" json:"fast_period" jsonschema:"title=Fast Period,description=Span of the fast exponential average,default=12,minimum=1" validate:"required,min=1,ltfield=SlowPeriod"`
	SlowPeriod   int `yaml:"slow_period" json:"slow_period" jsonschema:"title=Slow Period,description=Span of the slow exponential average,default=26,minimum=2" validate:"required,min=2"`
	SignalPeriod int `yaml:"signal_period" json:"signal_period" jsonschema:"title=Signal Period,description=Span of the signal line average,default=9,minimum=1" validate:"required,min=1"`
	// HistogramScale multiplies (oscillator - signal). The domain convention is 2.
	HistogramScale float64 `yaml:"histogram_scale" json:"histogram_scale" jsonschema:"title=Histogram Scale,default=2" validate:"gt=0"`
	// ExtremumRadius is the half-width of the window a peak or trough must dominate.
	ExtremumRadius int `yaml:"extremum_radius" json:"extremum_radius" jsonschema:"title=Extremum Radius,description=Rows on each side a local extremum must dominate,default=3,minimum=1" validate:"required,min=1"`
	// LowZoneRatio times close is the highest oscillator value at which an upward cross counts as a low-zone cross.
	LowZoneRatio float64 `yaml:"low_zone_ratio" json:"low_zone_ratio" jsonschema:"title=Low Zone Ratio,default=0" validate:"ltefield=ZoneExitRatio"`
	// ZoneExitRatio times close is the oscillator level that closes a cross cycle.
	ZoneExitRatio float64 `yaml:"zone_exit_ratio" json:"zone_exit_ratio" jsonschema:"title=Zone Exit Ratio,default=0.005" validate:"gte=0"`
	// ConfirmWindow is the number of rows after a divergence in which a cross may confirm it.
	ConfirmWindow int `yaml:"confirm_window" json:"confirm_window" jsonschema:"title=Confirm Window,default=10,minimum=0" validate:"gte=0"`
	// MainRiseMaxRun caps the length of a main-rise run.
	MainRiseMaxRun int `yaml:"main_rise_max_run" json:"main_rise_max_run" jsonschema:"title=Main Rise Max Run,default=20,minimum=1" validate:"required,min=1"`
}

// DefaultConfig returns the conventional 12/26/9 configuration.
func DefaultConfig() Config {
	return Config{
		FastPeriod:     12,
		SlowPeriod:     26,
		SignalPeriod:   9,
		HistogramScale: 2,
		ExtremumRadius: 3,
		LowZoneRatio:   0,
		ZoneExitRatio:  0.005,
		ConfirmWindow:  10,
		MainRiseMaxRun: 20,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid indicator configuration", err)
	}

	return nil
}

// OscillatorStart is the first row with a defined oscillator.
func (c Config) OscillatorStart() int {
	return c.SlowPeriod - 1
}

// SignalStart is the first row with a defined signal and histogram.
func (c Config) SignalStart() int {
	return c.SlowPeriod + c.SignalPeriod - 1
}

// Fingerprint identifies the configuration in cache keys.
func (c Config) Fingerprint() string {
	return fmt.Sprintf("f%d-s%d-g%d-h%g-r%d-lz%g-ze%g-cw%d-mr%d",
		c.FastPeriod, c.SlowPeriod, c.SignalPeriod, c.HistogramScale, c.ExtremumRadius,
		c.LowZoneRatio, c.ZoneExitRatio, c.ConfirmWindow, c.MainRiseMaxRun)
}
