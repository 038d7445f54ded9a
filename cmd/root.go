// Package cmd implements the CLI subcommands of hw-app-ckb. Every command
// talks to a Ledger device (or the Speculos emulator) through the APDU-over-
// TCP transport, prints its result as JSON on stdout and keeps human-facing
// notes on stderr.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/linkdesu/hw-app-ckb/address"
	"github.com/linkdesu/hw-app-ckb/apdu"
	"github.com/linkdesu/hw-app-ckb/ckb"
	"github.com/linkdesu/hw-app-ckb/transport"
)

// deviceFlags are shared by every subcommand.
func deviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "device",
			Usage: "address of the APDU TCP proxy or Speculos emulator",
			Value: "127.0.0.1:9999",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "trace every APDU exchange on stderr",
		},
	}
}

// testnetFlag selects the address network for commands that derive one.
func testnetFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "testnet",
		Usage: "derive testnet (ckt) addresses instead of mainnet (ckb)",
	}
}

// connect dials the device and builds the app client, honoring --verbose.
// The returned closer shuts the connection down.
func connect(cmd *cli.Command) (*ckb.App, func() error, error) {
	tcp, err := transport.Dial(cmd.String("device"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reach device: %w", err)
	}

	var t apdu.Transport = tcp
	if cmd.Bool("verbose") {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		t = apdu.WithLogger(t, logger)
	}
	return ckb.New(t), tcp.Close, nil
}

func network(cmd *cli.Command) address.Network {
	if cmd.Bool("testnet") {
		return address.Testnet
	}
	return address.Mainnet
}

// printJSON writes the command result to stdout.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}
