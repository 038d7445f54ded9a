package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
)

// VersionCommand creates the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Query the CKB app version and build hash",
		Flags:  deviceFlags(),
		Action: runVersionCommand,
	}
}

func runVersionCommand(ctx context.Context, cmd *cli.Command) error {
	app, closeConn, err := connect(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	config, err := app.GetAppConfiguration(ctx)
	if err != nil {
		return err
	}
	return printJSON(config)
}
