package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/shopspring/decimal"
)

// DataGenerator generates realistic daily index bars for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how bars are generated.
type GeneratorConfig struct {
	// StartDate is the first trading day of the series
	StartDate time.Time
	// Count is the number of trading days to generate
	Count int
	// InitialPrice is the starting index level
	InitialPrice float64
	// Volatility controls price movement (0.012 = 1.2% typical daily volatility)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
	// SkipWeekends leaves Saturdays and Sundays out of the calendar
	SkipWeekends bool
}

// DefaultConfig returns a configuration resembling a broad A-share index.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartDate:      time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
		Count:          500,
		InitialPrice:   3000.0,
		Volatility:     0.012,
		Trend:          0.0,
		VolumeBase:     2.5e10,
		VolumeVariance: 0.3,
		SkipWeekends:   true,
	}
}

// Generate creates daily bars following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Bar {
	bars := make([]types.Bar, config.Count)
	currentPrice := config.InitialPrice
	currentDate := config.StartDate

	for i := 0; i < config.Count; i++ {
		if config.SkipWeekends {
			currentDate = nextWeekday(currentDate)
		}

		open := currentPrice

		// Box-Muller transform for a standard normal draw
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		close := open * (1 + config.Volatility*z + drift)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bars[i] = types.Bar{
			Date:   currentDate,
			Open:   roundToDecimals(open, 2),
			High:   roundToDecimals(high, 2),
			Low:    roundToDecimals(low, 2),
			Close:  decimal.NewNullDecimal(decimal.NewFromFloat(close).Round(2)),
			Volume: roundToDecimals(volume, 0),
		}

		currentPrice = close
		currentDate = currentDate.AddDate(0, 0, 1)
	}

	return bars
}

// GenerateCloses is a convenience wrapper returning only closes.
func (g *DataGenerator) GenerateCloses(config GeneratorConfig) []float64 {
	return types.Closes(g.Generate(config))
}

// Generate10Y generates roughly ten years of trading days with default settings.
func Generate10Y() []types.Bar {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 2500

	return gen.Generate(config)
}

// BarsFromCloses turns closes into consecutive daily bars starting at start.
func BarsFromCloses(start time.Time, closes []float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.NewBar(start.AddDate(0, 0, i), c)
	}

	return bars
}

func nextWeekday(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}

	return t
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
