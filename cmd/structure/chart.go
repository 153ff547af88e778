package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-structure/internal/chart"
	"github.com/rxtech-lab/argo-structure/internal/engine"
	"github.com/rxtech-lab/argo-structure/internal/service"
)

func chartCommand() *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "Render the close, DIF/DEA/MACD and TG/BG marks as an HTML page",
		Flags: append(inputFlags(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "HTML file to write",
				Value:   "structure.html",
			},
			&cli.StringFlag{
				Name:    "period",
				Aliases: []string{"p"},
				Usage:   "Rows to plot: 30, 60, 90 or all",
				Value:   "all",
			},
		),
		Action: chartAction,
	}
}

func chartAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	period, err := service.ParsePeriod(cmd.String("period"))
	if err != nil {
		return err
	}

	bars, label, err := loadBars(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	result, err := engine.Analyze(bars, cfg.Engine)
	if err != nil {
		return err
	}

	opts := chart.Options{Ticker: label}
	if idx, ok := cfg.Lookup(label); ok {
		opts.Name = idx.Name
	}

	out := cmd.String("output")
	if err := chart.RenderFile(out, period.Apply(result.Rows), opts); err != nil {
		return err
	}

	fmt.Printf("Chart written to %s\n", out)

	return nil
}
