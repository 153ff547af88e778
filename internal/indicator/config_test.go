package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-structure/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultConfig() {
	cfg := DefaultConfig()
	suite.Equal(12, cfg.FastPeriod)
	suite.Equal(26, cfg.SlowPeriod)
	suite.Equal(9, cfg.SignalPeriod)
	suite.Equal(2.0, cfg.HistogramScale)
	suite.Equal(3, cfg.ExtremumRadius)
	suite.Equal(0.0, cfg.LowZoneRatio)
	suite.Equal(0.005, cfg.ZoneExitRatio)
	suite.Equal(10, cfg.ConfirmWindow)
	suite.Equal(20, cfg.MainRiseMaxRun)
	suite.NoError(cfg.Validate())
}

func (suite *ConfigTestSuite) TestWarmupBoundaries() {
	cfg := DefaultConfig()
	suite.Equal(25, cfg.OscillatorStart())
	suite.Equal(34, cfg.SignalStart())
}

func (suite *ConfigTestSuite) TestValidate() {
	testCases := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{name: "fast equal to slow", mutate: func(c *Config) { c.FastPeriod = 26 }},
		{name: "zero signal", mutate: func(c *Config) { c.SignalPeriod = 0 }},
		{name: "negative scale", mutate: func(c *Config) { c.HistogramScale = -1 }},
		{name: "zero radius", mutate: func(c *Config) { c.ExtremumRadius = 0 }},
		{name: "low zone above exit", mutate: func(c *Config) { c.LowZoneRatio = 0.01 }},
		{name: "negative window", mutate: func(c *Config) { c.ConfirmWindow = -1 }},
		{name: "zero run", mutate: func(c *Config) { c.MainRiseMaxRun = 0 }},
		{name: "zero window", mutate: func(c *Config) { c.ConfirmWindow = 0 }, valid: true},
		{name: "short periods", mutate: func(c *Config) { c.FastPeriod, c.SlowPeriod, c.SignalPeriod = 6, 13, 5 }, valid: true},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.valid {
				suite.NoError(err)
				return
			}

			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
		})
	}
}

func (suite *ConfigTestSuite) TestFingerprint() {
	a := DefaultConfig()
	b := DefaultConfig()
	suite.Equal(a.Fingerprint(), b.Fingerprint())

	b.ConfirmWindow = 5
	suite.NotEqual(a.Fingerprint(), b.Fingerprint())
	suite.Equal("f12-s26-g9-h2-r3-lz0-ze0.005-cw10-mr20", a.Fingerprint())
}
