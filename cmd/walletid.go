package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
)

// WalletIDCommand creates the wallet-id command.
func WalletIDCommand() *cli.Command {
	return &cli.Command{
		Name:   "wallet-id",
		Usage:  "Query the 32-byte identifier of the wallet on the device",
		Flags:  deviceFlags(),
		Action: runWalletIDCommand,
	}
}

func runWalletIDCommand(ctx context.Context, cmd *cli.Command) error {
	app, closeConn, err := connect(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	id, err := app.GetWalletID(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"walletId": id})
}
