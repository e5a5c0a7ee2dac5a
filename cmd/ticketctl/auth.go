package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"ticketera/internal/services"
)

func mountAuthCommands(cliApp *cli.App) {
	cliApp.Commands = append(cliApp.Commands, hashPasswordCommand)
}

// hash-password does not need a config, the hash goes into auth.admins.
var hashPasswordCommand = &cli.Command{
	Name:      "hash-password",
	Usage:     "Print a bcrypt hash for an admin password.",
	ArgsUsage: "<password>",
	Action: func(ctx *cli.Context) error {
		pw := ctx.Args().First()
		if pw == "" {
			return errors.New("password is required")
		}
		h, err := services.NewAuthService("", 0, nil).HashPassword(pw)
		if err != nil {
			return err
		}
		fmt.Println(h)
		return nil
	},
}
