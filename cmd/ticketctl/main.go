package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"ticketera/internal/config"
)

var version = "dev"

func main() {
	cliApp := &cli.App{
		Name:        "ticketctl",
		Version:     version,
		Description: "Operations tool for the ticketera backend.",
		Usage:       "Run migrations, cleanup and order review from the command line.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Aliases:   []string{"c"},
				Usage:     "Path to the YAML config file.",
				TakesFile: true,
				Value:     config.DefaultPath,
				EnvVars:   []string{"TICKETERA_CONFIG"},
			},
		},
	}
	mountDBCommands(cliApp)
	mountOrderCommands(cliApp)
	mountAuthCommands(cliApp)

	cliApp.Setup()
	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	return config.Load(ctx.String("config"))
}
