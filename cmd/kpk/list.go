package main

import (
	"github.com/gingerrexayers/kpk-go/internal/kpk/commands"
	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	"github.com/spf13/cobra"
)

// NewListCommand creates the 'list' command for the CLI.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <archive>",
		Short: "List the entries of an archive.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := commands.List(args[0], lib.Options{Out: cmd.OutOrStdout()})
			return err
		},
	}
	return cmd
}
