package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/linkdesu/hw-app-ckb/cmd"
)

func main() {
	app := &cli.Command{
		Name:  "hw-app-ckb",
		Usage: "Ledger Nervos CKB app client",
		Commands: []*cli.Command{
			cmd.VersionCommand(),
			cmd.WalletIDCommand(),
			cmd.AddressCommand(),
			cmd.XPubCommand(),
			cmd.SignCommand(),
			cmd.SignHashCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
