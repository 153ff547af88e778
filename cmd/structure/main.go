package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-structure/internal/config"
	"github.com/rxtech-lab/argo-structure/internal/logger"
	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/internal/version"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata/provider"
)

func main() {
	cmd := &cli.Command{
		Name:    "structure",
		Usage:   "MACD top/bottom structure analysis for daily index data",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "structure.yaml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides the config file",
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			fetchCommand(),
			serveCommand(),
			chartCommand(),
			schemaCommand(),
			viewCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration named by the global flags.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.NewLoggerWithLevel(cfg.Log.Level)
}

// inputFlags select the series to analyze: a local file or a configured ticker.
func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Daily history file (`.csv` or `.parquet`)",
		},
		&cli.StringFlag{
			Name:    "ticker",
			Aliases: []string{"t"},
			Usage:   "Ticker fetched through the configured provider (defaults to default_ticker)",
		},
	}
}

// loadBars returns the series named by --input or --ticker and a label for it.
func loadBars(ctx context.Context, cmd *cli.Command, cfg *config.Config) ([]types.Bar, string, error) {
	if path := cmd.String("input"); path != "" {
		bars, err := readFile(ctx, path)

		return bars, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), err
	}

	ticker := cmd.String("ticker")
	if ticker == "" {
		ticker = cfg.DefaultTicker
	}

	p, err := provider.NewMarketDataProvider(cfg.Provider.ProviderConfig)
	if err != nil {
		return nil, "", err
	}

	end := time.Now()

	bars, err := p.FetchDaily(ctx, provider.FetchRequest{
		Ticker: ticker,
		Start:  end.AddDate(0, 0, -cfg.Provider.LookbackDays),
		End:    end,
	})

	return bars, ticker, err
}

func readFile(ctx context.Context, path string) ([]types.Bar, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return provider.ReadCSVFile(path)
	case ".parquet":
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		return provider.NewParquetProvider(filepath.Dir(path)).FetchDaily(ctx, provider.FetchRequest{
			Ticker: name,
			Start:  time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
			End:    time.Now(),
		})
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported input file %s", path)
	}
}
