package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"ticketera/internal/app"
	"ticketera/internal/db"
	"ticketera/internal/models"
	"ticketera/internal/repositories"
	"ticketera/internal/services"
)

func mountOrderCommands(cliApp *cli.App) {
	cliApp.Commands = append(cliApp.Commands, &cli.Command{
		Name:  "orders",
		Usage: "Inspect and review orders.",
		Subcommands: []*cli.Command{
			listOrdersCommand,
			reviewOrderCommand,
		},
	})
}

func reviewService(ctx *cli.Context) (*services.ReviewService, func(), error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	_, mailer := app.Mailers(cfg)
	svc := services.NewReviewService(repositories.NewOrderRepository(conn), mailer)
	return svc, func() { conn.Close() }, nil
}

var listOrdersCommand = &cli.Command{
	Name:    "list",
	Aliases: []string{"ls"},
	Usage:   "List orders by validation status.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "status",
			Aliases: []string{"s"},
			Usage:   "pending, approved or rejected.",
			Value:   models.ValidationPending,
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum rows to print.",
			Value: 50,
		},
	},
	Action: func(ctx *cli.Context) error {
		svc, closeFn, err := reviewService(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		orders, err := svc.ListOrders(ctx.Context, ctx.String("status"), ctx.Int("limit"), 0)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tEMAIL\tDNI\tTICKETS\tTOTAL\tSTATUS")
		for _, o := range orders {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Email, o.DNI, o.TotalTickets, o.TotalAmount.StringFixed(2), o.ValidationStatus)
		}
		return w.Flush()
	},
}

var reviewOrderCommand = &cli.Command{
	Name:      "review",
	Usage:     "Approve or reject a pending order.",
	ArgsUsage: "<order-id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "action",
			Aliases:  []string{"a"},
			Usage:    "approve or reject.",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "reviewer",
			Usage: "Name stored as the reviewer.",
			Value: "ticketctl",
		},
	},
	Action: func(ctx *cli.Context) error {
		id := ctx.Args().First()
		if id == "" {
			return cli.Exit("order id is required", 2)
		}
		svc, closeFn, err := reviewService(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		o, err := svc.Review(ctx.Context, id, ctx.String("action"), ctx.String("reviewer"))
		if err != nil {
			return err
		}
		fmt.Printf("order %s is now %s\n", o.ID, o.ValidationStatus)
		return nil
	},
}
