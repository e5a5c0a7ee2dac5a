package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"ticketera/internal/db"
	"ticketera/internal/repositories"
	"ticketera/internal/services"
)

func mountDBCommands(cliApp *cli.App) {
	cliApp.Commands = append(cliApp.Commands,
		migrateCommand,
		sweepCommand,
	)
}

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply pending database migrations.",
	Action: func(ctx *cli.Context) error {
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		conn, err := db.Open(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := db.Migrate(ctx.Context, conn); err != nil {
			return err
		}
		fmt.Println("migrations applied")
		return nil
	},
}

var sweepCommand = &cli.Command{
	Name:  "sweep",
	Usage: "Delete expired unverified email codes once.",
	Action: func(ctx *cli.Context) error {
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		conn, err := db.Open(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer conn.Close()

		j := services.NewJanitor(repositories.NewEmailVerificationRepository(conn), nil, 0)
		rows, _, err := j.SweepOnce(ctx.Context)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d expired verification codes\n", rows)
		return nil
	},
}
