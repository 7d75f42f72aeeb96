package main

import (
	"github.com/gingerrexayers/kpk-go/internal/kpk/commands"
	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	"github.com/spf13/cobra"
)

func NewVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <archive>",
		Short: "Decode every entry and check its CRC-32.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := commands.Verify(args[0], lib.Options{Out: cmd.OutOrStdout()})
			return err
		},
	}
	return cmd
}
