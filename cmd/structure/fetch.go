package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-structure/pkg/errors"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata/provider"
)

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download daily history into the data directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Ticker to download",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format. Defaults to lookback_days before end.",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s); defaults to the configured provider", strings.Join(marketdata.GetSupportedProviders(), ", ")),
			},
			&cli.StringFlag{
				Name:    "writer",
				Aliases: []string{"w"},
				Usage:   fmt.Sprintf("Output format (%s, %s)", marketdata.WriterCSV, marketdata.WriterParquet),
				Value:   string(marketdata.WriterCSV),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Output directory; defaults to the configured data_dir",
			},
		},
		Action: fetchAction,
	}
}

func fetchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	providerConfig := cfg.Provider.ProviderConfig
	if p := cmd.String("provider"); p != "" {
		info, err := marketdata.GetProviderInfo(p)
		if err != nil {
			return err
		}

		if info.Local {
			return errors.Newf(errors.ErrCodeInvalidProvider, "%s reads local files and cannot be downloaded from", info.DisplayName)
		}

		providerConfig.Type = provider.ProviderType(p)
	}

	dataPath := cmd.String("data")
	if dataPath == "" {
		dataPath = cfg.Provider.DataDir
	}

	end := cmd.Timestamp("end")

	start := cmd.Timestamp("start")
	if start.IsZero() {
		start = end.AddDate(0, 0, -cfg.Provider.LookbackDays)
	}

	var bar *progressbar.ProgressBar

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		Provider:   providerConfig,
		WriterType: marketdata.WriterType(cmd.String("writer")),
		DataPath:   dataPath,
	}, func(current, total float64, message string) {
		if bar == nil {
			bar = progressbar.Default(int64(total), message)
		}

		_ = bar.Set64(int64(current))
	})
	if err != nil {
		return err
	}

	path, err := client.Download(ctx, marketdata.DownloadParams{
		Ticker:    cmd.String("ticker"),
		StartDate: start,
		EndDate:   end,
	})
	if bar != nil {
		_ = bar.Finish()
	}

	if err != nil {
		return err
	}

	fmt.Printf("Saved %s to %s\n", cmd.String("ticker"), path)

	return nil
}
