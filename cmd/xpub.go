package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
)

// XPubCommand creates the xpub command.
func XPubCommand() *cli.Command {
	return &cli.Command{
		Name:  "xpub",
		Usage: "Query the extended public key for a derivation path",
		Flags: append(deviceFlags(),
			&cli.StringFlag{
				Name:     "path",
				Usage:    "BIP 32 derivation path",
				Required: true,
			},
		),
		Action: runXPubCommand,
	}
}

func runXPubCommand(ctx context.Context, cmd *cli.Command) error {
	app, closeConn, err := connect(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	xpub, err := app.GetWalletExtendedPublicKey(ctx, cmd.String("path"))
	if err != nil {
		return err
	}
	return printJSON(xpub)
}
