package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-structure/internal/indicator"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata/provider"
)

// CacheBackend selects where analysis results are memoized.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
	CacheNone   CacheBackend = "none"
)

// Index is one entry of the watchlist.
type Index struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	Ticker string `yaml:"ticker" json:"ticker" validate:"required"`
}

type ProviderSection struct {
	provider.ProviderConfig `yaml:",inline"`
	// LookbackDays is the calendar span fetched for each analysis.
	LookbackDays int `yaml:"lookback_days" validate:"min=1"`
}

type CacheSection struct {
	Backend   CacheBackend  `yaml:"backend" validate:"oneof=memory redis none"`
	TTL       time.Duration `yaml:"ttl" validate:"gte=0"`
	RedisAddr string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB   int           `yaml:"redis_db" validate:"gte=0"`
	KeyPrefix string        `yaml:"key_prefix"`
}

type ServerSection struct {
	Addr string `yaml:"addr" validate:"required"`
}

type ScheduleSection struct {
	Enabled bool `yaml:"enabled"`
	// Cron has a leading seconds field.
	Cron string `yaml:"cron" validate:"required_if=Enabled true"`
}

type RecorderSection struct {
	// SQLitePath enables recording when set.
	SQLitePath string `yaml:"sqlite_path"`
}

type LogSection struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Config is the application configuration.
type Config struct {
	Engine        indicator.Config `yaml:"engine"`
	Provider      ProviderSection  `yaml:"provider"`
	Watchlist     []Index          `yaml:"watchlist" validate:"required,min=1,dive"`
	DefaultTicker string           `yaml:"default_ticker" validate:"required"`
	Concurrency   int              `yaml:"concurrency" validate:"min=1"`
	Cache         CacheSection     `yaml:"cache"`
	Server        ServerSection    `yaml:"server"`
	Schedule      ScheduleSection  `yaml:"schedule"`
	Recorder      RecorderSection  `yaml:"recorder"`
	Log           LogSection       `yaml:"log"`
}

// DefaultWatchlist returns the broad A-share indices shown by default.
func DefaultWatchlist() []Index {
	return []Index{
		{Name: "SSE Composite (000001.SH)", Ticker: "sh000001"},
		{Name: "SZSE Component (399001.SZ)", Ticker: "sz399001"},
		{Name: "ChiNext (399006.SZ)", Ticker: "sz399006"},
		{Name: "CSI 300 (000300.SH)", Ticker: "sh000300"},
		{Name: "SSE 50 (000016.SH)", Ticker: "sh000016"},
		{Name: "CSI 500 (000905.SH)", Ticker: "sh000905"},
		{Name: "CSI 1000 (000852.SH)", Ticker: "sh000852"},
		{Name: "CSI 2000 ETF (159531.SZ)", Ticker: "sz159531"},
		{Name: "STAR Composite (000680.SH)", Ticker: "sh000688"},
	}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Engine: indicator.DefaultConfig(),
		Provider: ProviderSection{
			ProviderConfig: provider.ProviderConfig{Type: provider.ProviderCSV, DataDir: "data"},
			LookbackDays:   730,
		},
		Watchlist:     DefaultWatchlist(),
		DefaultTicker: "sh000300",
		Concurrency:   4,
		Cache: CacheSection{
			Backend:   CacheMemory,
			TTL:       time.Hour,
			KeyPrefix: "structure",
		},
		Server:   ServerSection{Addr: ":8080"},
		Schedule: ScheduleSection{Cron: "0 30 15 * * 1-5"},
		Log:      LogSection{Level: "info"},
	}
}

// Load reads config from a YAML file over the defaults, then applies environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	var data []byte

	if path != "" {
		var err error

		data, err = os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "read config %s", path)
		}
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and applies environment overrides.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "parse config", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("STRUCTURE_PROVIDER"); v != "" {
		c.Provider.Type = provider.ProviderType(v)
	}

	if v := os.Getenv("STRUCTURE_DATA_DIR"); v != "" {
		c.Provider.DataDir = v
	}

	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Provider.PolygonAPIKey = v
	}

	if v := os.Getenv("STRUCTURE_CACHE"); v != "" {
		c.Cache.Backend = CacheBackend(v)
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}

	if v := os.Getenv("STRUCTURE_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "STRUCTURE_CACHE_TTL=%q", v)
		}

		c.Cache.TTL = ttl
	}

	if v := os.Getenv("STRUCTURE_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv("STRUCTURE_CRON"); v != "" {
		c.Schedule.Cron = v
		c.Schedule.Enabled = true
	}

	if v := os.Getenv("STRUCTURE_SQLITE_PATH"); v != "" {
		c.Recorder.SQLitePath = v
	}

	if v := os.Getenv("STRUCTURE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if v := os.Getenv("STRUCTURE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "STRUCTURE_CONCURRENCY=%q", v)
		}

		c.Concurrency = n
	}

	return nil
}

// Validate checks every section, including the engine configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if err := c.Engine.Validate(); err != nil {
		return err
	}

	if _, ok := c.Lookup(c.DefaultTicker); !ok {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "default_ticker %s is not in the watchlist", c.DefaultTicker)
	}

	return nil
}

// Lookup finds a watchlist entry by ticker.
func (c *Config) Lookup(ticker string) (Index, bool) {
	for _, idx := range c.Watchlist {
		if idx.Ticker == ticker {
			return idx, true
		}
	}

	return Index{}, false
}
