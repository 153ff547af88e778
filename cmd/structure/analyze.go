package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-structure/internal/engine"
	"github.com/rxtech-lab/argo-structure/internal/export"
	"github.com/rxtech-lab/argo-structure/internal/service"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Compute the structure table of a series",
		Flags: append(inputFlags(),
			&cli.StringFlag{
				Name:    "period",
				Aliases: []string{"p"},
				Usage:   "Rows to show: 30, 60, 90 or all",
				Value:   "60",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Write TG as 1/0 and BG as -1/0",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, csv, json or parquet (defaults to the output extension, or table)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file; stdout when empty",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Do not round close and oscillator values",
			},
		),
		Action: analyzeAction,
	}
}

func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	period, err := service.ParsePeriod(cmd.String("period"))
	if err != nil {
		return err
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	bars, _, err := loadBars(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	result, err := engine.Analyze(bars, cfg.Engine)
	if err != nil {
		return err
	}

	records := export.NewRecords(period.Apply(result.Rows), export.Options{
		Compact: cmd.Bool("compact"),
		Round:   !cmd.Bool("raw"),
	})

	if out := cmd.String("output"); out != "" {
		return export.WriteFile(out, format, records, cmd.Bool("compact"))
	}

	if format == export.FormatParquet {
		return errors.New(errors.ErrCodeMissingParameter, "parquet output needs --output")
	}

	return export.Write(os.Stdout, format, records)
}

func outputFormat(cmd *cli.Command) (export.Format, error) {
	if f := cmd.String("format"); f != "" {
		return export.ParseFormat(f)
	}

	if out := cmd.String("output"); out != "" {
		return export.FormatFromPath(out)
	}

	return export.FormatTable, nil
}
