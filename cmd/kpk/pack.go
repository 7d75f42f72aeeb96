package main

import (
	"github.com/gingerrexayers/kpk-go/internal/kpk/commands"
	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	"github.com/spf13/cobra"
)

// defaultFolders are the top-level asset folders of a game archive.
var defaultFolders = []string{"data", "font", "image", "movie", "script", "shader", "sound"}

// NewPackCommand creates the 'pack' command for the CLI.
func NewPackCommand() *cobra.Command {
	var outputPath string
	var folders []string
	var opts lib.Options

	cmd := &cobra.Command{
		Use:   "pack <source-directory>",
		Short: "Build a new archive from the top-level folders of a directory.",
		Long: `Builds a new archive from every file under the given top-level folders
of the source directory. Entries are written in sorted name order and any
existing file at the output path is replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Out = cmd.OutOrStdout()
			_, err := commands.Pack(cmd.Context(), args[0], folders, outputPath, opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "base_mod.kpk", "The archive to create")
	cmd.Flags().StringSliceVarP(&folders, "folders", "f", defaultFolders, "Top-level folders to include")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "j", 0, "Number of concurrent encoders (defaults to the CPU count)")
	cmd.Flags().StringVar(&opts.IgnoreFile, "ignore-file", lib.IgnoreFilename, `Ignore file in the source directory ("-" to disable)`)

	return cmd
}
