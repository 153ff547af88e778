package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-structure/internal/indicator"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata"
	"github.com/rxtech-lab/argo-structure/pkg/utils"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the engine configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "provider",
				Usage: "Print the market data provider configuration schema instead",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the schema to a file",
			},
		},
		Action: schemaAction,
	}
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	var (
		schema string
		err    error
	)

	if cmd.Bool("provider") {
		schema, err = marketdata.GetProviderConfigSchema()
	} else {
		schema, err = utils.GetSchemaFromConfig(indicator.DefaultConfig())
	}

	if err != nil {
		return err
	}

	if out := cmd.String("output"); out != "" {
		return os.WriteFile(out, []byte(schema), 0o644)
	}

	fmt.Println(schema)

	return nil
}
