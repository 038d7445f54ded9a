package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// SignCommand creates the sign command.
func SignCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign a message with the key at a derivation path",
		Flags: append(deviceFlags(),
			&cli.StringFlag{
				Name:     "path",
				Usage:    "BIP 32 derivation path",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "message-hex",
				Usage: "message to sign, hex encoded",
			},
			&cli.StringFlag{
				Name:  "message",
				Usage: "message to sign, plain text",
			},
			&cli.BoolFlag{
				Name:  "display-hex",
				Usage: "render the message as hex on the device screen",
			},
		),
		Action: runSignCommand,
	}
}

func runSignCommand(ctx context.Context, cmd *cli.Command) error {
	messageHex := cmd.String("message-hex")
	if text := cmd.String("message"); text != "" {
		if messageHex != "" {
			return fmt.Errorf("pass either --message or --message-hex, not both")
		}
		messageHex = hex.EncodeToString([]byte(text))
	}
	if messageHex == "" {
		return fmt.Errorf("one of --message or --message-hex is required")
	}

	app, closeConn, err := connect(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	fmt.Fprintln(os.Stderr, "confirm the message on the device...")
	signature, err := app.SignMessage(ctx, cmd.String("path"), messageHex, cmd.Bool("display-hex"))
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"signature": signature})
}

// SignHashCommand creates the sign-hash command.
func SignHashCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign-hash",
		Usage: "Sign a pre-hashed 32-byte digest with the key at a derivation path",
		Flags: append(deviceFlags(),
			&cli.StringFlag{
				Name:     "path",
				Usage:    "BIP 32 derivation path",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "hash",
				Usage:    "digest to sign, hex encoded",
				Required: true,
			},
		),
		Action: runSignHashCommand,
	}
}

func runSignHashCommand(ctx context.Context, cmd *cli.Command) error {
	app, closeConn, err := connect(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	fmt.Fprintln(os.Stderr, "confirm the digest on the device...")
	signature, err := app.SignMessageHash(ctx, cmd.String("path"), cmd.String("hash"))
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"signature": signature})
}
