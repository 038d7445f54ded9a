package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func flagNames(c *cli.Command) []string {
	names := make([]string, 0, len(c.Flags))
	for _, f := range c.Flags {
		names = append(names, f.Names()[0])
	}
	return names
}

func TestEveryCommandCarriesDeviceFlags(t *testing.T) {
	commands := []*cli.Command{
		VersionCommand(),
		WalletIDCommand(),
		AddressCommand(),
		XPubCommand(),
		SignCommand(),
		SignHashCommand(),
	}
	for _, c := range commands {
		t.Run(c.Name, func(t *testing.T) {
			names := flagNames(c)
			require.Contains(t, names, "device")
			require.Contains(t, names, "verbose")
		})
	}
}

func TestAddressCommandDefaults(t *testing.T) {
	c := AddressCommand()
	names := flagNames(c)
	require.Contains(t, names, "testnet")
	require.Contains(t, names, "path")
}

func TestSignCommandRequiresMessage(t *testing.T) {
	root := &cli.Command{Name: "hw-app-ckb", Commands: []*cli.Command{SignCommand()}}

	err := root.Run(context.Background(), []string{"hw-app-ckb", "sign", "--path", "44'/309'/0'/0/0"})
	require.ErrorContains(t, err, "--message")
}

func TestSignCommandRejectsBothMessageForms(t *testing.T) {
	root := &cli.Command{Name: "hw-app-ckb", Commands: []*cli.Command{SignCommand()}}

	err := root.Run(context.Background(), []string{
		"hw-app-ckb", "sign",
		"--path", "44'/309'/0'/0/0",
		"--message", "hello",
		"--message-hex", "68656c6c6f",
	})
	require.ErrorContains(t, err, "not both")
}
