package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// AddressCommand creates the address command.
func AddressCommand() *cli.Command {
	return &cli.Command{
		Name:  "address",
		Usage: "Derive the public key and address for a derivation path",
		Flags: append(deviceFlags(),
			testnetFlag(),
			&cli.StringFlag{
				Name:  "path",
				Usage: "BIP 32 derivation path",
				Value: "44'/309'/0'/0/0",
			},
		),
		Action: runAddressCommand,
	}
}

func runAddressCommand(ctx context.Context, cmd *cli.Command) error {
	app, closeConn, err := connect(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	info, err := app.GetWalletPublicKey(ctx, cmd.String("path"), network(cmd))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "address for %s on %s\n", cmd.String("path"), network(cmd).Prefix())
	return printJSON(info)
}
