// Package service ties market data, the structure engine, the cache and the
// recorder together.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rxtech-lab/argo-structure/internal/cache"
	"github.com/rxtech-lab/argo-structure/internal/config"
	"github.com/rxtech-lab/argo-structure/internal/engine"
	"github.com/rxtech-lab/argo-structure/internal/indicator"
	"github.com/rxtech-lab/argo-structure/internal/logger"
	"github.com/rxtech-lab/argo-structure/internal/metrics"
	"github.com/rxtech-lab/argo-structure/internal/recorder"
	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata/provider"
)

const defaultLookbackDays = 730

// Options carries the collaborators of an Analyzer. Nil fields fall back to
// no-op implementations.
type Options struct {
	Provider     provider.Provider
	Cache        cache.Cache
	Recorder     recorder.Recorder
	Metrics      *metrics.Metrics
	Logger       *logger.Logger
	LookbackDays int
	Concurrency  int
	Now          func() time.Time
}

// Analysis is the structure of one index.
type Analysis struct {
	Ticker string         `json:"ticker"`
	Result *engine.Result `json:"result"`
	Cached bool           `json:"cached"`
}

// Outcome is the per-ticker result of AnalyzeMany. Exactly one of Analysis and Err is set.
type Outcome struct {
	Ticker   string
	Analysis *Analysis
	Err      error
}

// RefreshReport summarizes a watchlist refresh.
type RefreshReport struct {
	Analyzed int
	Failed   int
	Recorded int
	Signals  []recorder.Snapshot
	Duration time.Duration
}

// Analyzer serves structure analyses for tickers and raw series.
type Analyzer struct {
	provider     provider.Provider
	cache        cache.Cache
	engine       *engine.Engine
	recorder     recorder.Recorder
	metrics      *metrics.Metrics
	log          *logger.Logger
	lookbackDays int
	concurrency  int
	now          func() time.Time
}

// NewAnalyzer validates cfg and wires the collaborators.
func NewAnalyzer(cfg indicator.Config, opts Options) (*Analyzer, error) {
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		provider:     opts.Provider,
		cache:        opts.Cache,
		engine:       eng,
		recorder:     opts.Recorder,
		metrics:      opts.Metrics,
		log:          opts.Logger.Named("analyzer"),
		lookbackDays: opts.LookbackDays,
		concurrency:  opts.Concurrency,
		now:          opts.Now,
	}

	if a.cache == nil {
		a.cache = cache.NewNoopCache()
	}

	if a.recorder == nil {
		a.recorder = recorder.NewNoopRecorder()
	}

	if a.lookbackDays <= 0 {
		a.lookbackDays = defaultLookbackDays
	}

	if a.concurrency <= 0 {
		a.concurrency = 1
	}

	if a.now == nil {
		a.now = time.Now
	}

	return a, nil
}

// Config returns the engine configuration.
func (a *Analyzer) Config() indicator.Config {
	return a.engine.Config()
}

// CacheStats reports the cache counters.
func (a *Analyzer) CacheStats() cache.Stats {
	return a.cache.Stats()
}

// AnalyzeTicker fetches the lookback window of ticker and analyzes it. Results
// are cached per last bar date, so a new trading day invalidates the entry.
func (a *Analyzer) AnalyzeTicker(ctx context.Context, ticker string) (*Analysis, error) {
	if a.provider == nil {
		return nil, errors.New(errors.ErrCodeDataSourceUnavailable, "no market data provider configured")
	}

	end := a.now()

	fetchStart := time.Now()
	bars, err := a.provider.FetchDaily(ctx, provider.FetchRequest{
		Ticker: ticker,
		Start:  end.AddDate(0, 0, -a.lookbackDays),
		End:    end,
	})
	a.metrics.ObserveFetch(a.provider.Name(), time.Since(fetchStart))

	if err != nil {
		a.countFailure(err)

		return nil, err
	}

	key := cache.Key{Series: tickerSeries(ticker, bars), Config: a.engine.Config().Fingerprint()}

	result, cached, err := a.analyze(ctx, ticker, key, bars, a.engine)
	if err != nil {
		return nil, err
	}

	return &Analysis{Ticker: ticker, Result: result, Cached: cached}, nil
}

// AnalyzeBars analyzes a caller-supplied series, cached by its content.
func (a *Analyzer) AnalyzeBars(ctx context.Context, bars []types.Bar) (*engine.Result, bool, error) {
	return a.analyze(ctx, "", cache.Key{Series: SeriesHash(bars), Config: a.engine.Config().Fingerprint()}, bars, a.engine)
}

// AnalyzeBarsWithConfig analyzes bars under cfg instead of the analyzer configuration.
func (a *Analyzer) AnalyzeBarsWithConfig(ctx context.Context, bars []types.Bar, cfg indicator.Config) (*engine.Result, bool, error) {
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, false, err
	}

	return a.analyze(ctx, "", cache.Key{Series: SeriesHash(bars), Config: cfg.Fingerprint()}, bars, eng)
}

func (a *Analyzer) analyze(ctx context.Context, ticker string, key cache.Key, bars []types.Bar, eng *engine.Engine) (*engine.Result, bool, error) {
	result, hit, err := a.cache.Get(ctx, key)
	if err != nil {
		a.log.Warn("cache read failed", zap.String("key", key.String()), zap.Error(err))
	}

	a.metrics.CountCache(hit)

	if hit {
		a.metrics.CountOutcome(metrics.OutcomeCached)

		return result, true, nil
	}

	started := time.Now()

	result, err = eng.Analyze(bars)
	if err != nil {
		a.countFailure(err)

		return nil, false, err
	}

	a.metrics.ObserveAnalysis(ticker, time.Since(started))
	a.metrics.CountOutcome(metrics.OutcomeOK)

	if err := a.cache.Set(ctx, key, result); err != nil {
		a.log.Warn("cache write failed", zap.String("key", key.String()), zap.Error(err))
	}

	return result, false, nil
}

func (a *Analyzer) countFailure(err error) {
	switch {
	case errors.IsDataUnavailableError(err):
		a.metrics.CountOutcome(metrics.OutcomeNoData)
	case errors.IsInsufficientHistoryError(err):
		a.metrics.CountOutcome(metrics.OutcomeShortData)
	default:
		a.metrics.CountOutcome(metrics.OutcomeError)
	}
}

// AnalyzeMany analyzes tickers concurrently, bounded by the configured
// concurrency. Per-ticker failures are reported in the outcomes; the returned
// error is only set when ctx is cancelled.
func (a *Analyzer) AnalyzeMany(ctx context.Context, tickers []string) ([]Outcome, error) {
	outcomes := make([]Outcome, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, ticker := range tickers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			analysis, err := a.AnalyzeTicker(gctx, ticker)
			outcomes[i] = Outcome{Ticker: ticker, Analysis: analysis, Err: err}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	return outcomes, ctx.Err()
}

// Refresh analyzes the watchlist and records the latest row of every index.
func (a *Analyzer) Refresh(ctx context.Context, watchlist []config.Index) (RefreshReport, error) {
	started := a.now()

	tickers := make([]string, len(watchlist))
	for i, idx := range watchlist {
		tickers[i] = idx.Ticker
	}

	outcomes, err := a.AnalyzeMany(ctx, tickers)
	if err != nil {
		a.metrics.CountRefresh(metrics.OutcomeError, a.now())

		return RefreshReport{}, err
	}

	var report RefreshReport

	for _, o := range outcomes {
		if o.Err != nil {
			report.Failed++
			a.log.Warn("refresh failed", zap.String("ticker", o.Ticker), zap.Error(o.Err))

			continue
		}

		report.Analyzed++

		latest := o.Analysis.Result.Latest()
		if latest.IsNone() {
			continue
		}

		snapshot := recorder.NewSnapshot(o.Ticker, latest.Unwrap(), a.now())
		if err := a.recorder.Record(ctx, snapshot); err != nil {
			a.log.Error("record snapshot failed", zap.String("ticker", o.Ticker), zap.Error(err))
		} else {
			report.Recorded++
		}

		if snapshot.TG {
			a.metrics.CountSignal(o.Ticker, "tg")
			report.Signals = append(report.Signals, snapshot)
		}

		if snapshot.BG {
			a.metrics.CountSignal(o.Ticker, "bg")
			report.Signals = append(report.Signals, snapshot)
		}
	}

	report.Duration = a.now().Sub(started)

	outcome := metrics.OutcomeOK
	if report.Analyzed == 0 && report.Failed > 0 {
		outcome = metrics.OutcomeError
	}

	a.metrics.CountRefresh(outcome, a.now())

	a.log.Info("watchlist refreshed",
		zap.Int("analyzed", report.Analyzed),
		zap.Int("failed", report.Failed),
		zap.Int("recorded", report.Recorded),
		zap.Int("signals", len(report.Signals)),
		zap.Duration("duration", report.Duration),
	)

	return report, nil
}

// History returns recorded snapshots.
func (a *Analyzer) History(ctx context.Context, q recorder.HistoryQuery) ([]recorder.Snapshot, error) {
	return a.recorder.History(ctx, q)
}

func tickerSeries(ticker string, bars []types.Bar) string {
	if len(bars) == 0 {
		return ticker
	}

	return ticker + "@" + bars[len(bars)-1].Date.Format(time.DateOnly) + "#" + strconv.Itoa(len(bars))
}

// SeriesHash identifies a series by its dates and closes.
func SeriesHash(bars []types.Bar) string {
	h := sha256.New()

	for _, b := range bars {
		h.Write([]byte(b.Date.Format(time.DateOnly)))
		h.Write([]byte{':'})

		if b.Close.Valid {
			h.Write([]byte(b.Close.Decimal.String()))
		}

		h.Write([]byte{';'})
	}

	return hex.EncodeToString(h.Sum(nil))
}
