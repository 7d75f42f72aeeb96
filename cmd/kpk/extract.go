package main

import (
	"github.com/gingerrexayers/kpk-go/internal/kpk/commands"
	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	"github.com/spf13/cobra"
)

// NewExtractCommand creates the 'extract' command for the CLI.
func NewExtractCommand() *cobra.Command {
	var outputDir string
	var opts lib.Options

	cmd := &cobra.Command{
		Use:   "extract <archive>",
		Short: "Extract every entry of an archive to a directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Out = cmd.OutOrStdout()
			_, err := commands.Extract(args[0], outputDir, opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "extracted", "The directory to extract files to")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Verify the CRC-32 of every extracted entry")
	cmd.Flags().BoolVar(&opts.ContinueOnError, "keep-going", false, "Skip entries that fail to decode instead of aborting")

	return cmd
}
