package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gingerrexayers/kpk-go/internal/kpk/commands"
	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	"github.com/gingerrexayers/kpk-go/internal/kpk/types"
	"github.com/spf13/cobra"
)

// promptConfirm asks the user to type "yes" before an in-place repack.
func promptConfirm(in io.Reader, out io.Writer) func(types.RepackPlan) (bool, error) {
	return func(plan types.RepackPlan) (bool, error) {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "⚠  WARNING: this modifies the archive in place!")
		fmt.Fprintln(out, "   If interrupted (power loss, forced termination) the file may be corrupted.")
		fmt.Fprintln(out, "   Back it up first, or pass --backup.")
		fmt.Fprintln(out)
		fmt.Fprint(out, "Proceed? Type yes: ")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		return strings.EqualFold(strings.TrimSpace(line), "yes"), nil
	}
}

// NewRepackCommand creates the 'repack' command for the CLI.
func NewRepackCommand() *cobra.Command {
	var patchDir string
	var folders []string
	var assumeYes bool
	var dryRun bool
	var opts lib.Options

	cmd := &cobra.Command{
		Use:   "repack <archive>",
		Short: "Replace the managed folders of an archive in place.",
		Long: `Replaces every archive entry under the managed folders with the files found
under the same folders of the patch directory. Entries outside the managed
folders are kept byte for byte. The archive is rewritten in place without a
second copy, so an interrupted repack can corrupt it.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: archiveCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Out = cmd.OutOrStdout()

			if dryRun {
				plan, err := commands.PlanRepack(args[0], patchDir, folders, opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(opts.Out, "%d modified, %d deleted, %d added (dry run)\n",
					len(plan.Modified), len(plan.Deleted), len(plan.Added))
				return nil
			}

			if !assumeYes {
				opts.Confirm = promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			_, err := commands.Repack(cmd.Context(), args[0], patchDir, folders, opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&patchDir, "directory", "d", ".", "The directory containing the patch folders")
	cmd.Flags().StringSliceVarP(&folders, "folders", "f", []string{"data", "font"}, "Top-level folders managed by this repack")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report the changes")
	cmd.Flags().BoolVar(&opts.Backup, "backup", false, "Copy the archive to <archive>.bak before modifying it")
	cmd.Flags().BoolVar(&opts.SkipUnchanged, "skip-unchanged", false, "Leave managed entries whose size and CRC-32 match the local file in place")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", lib.DefaultChunkSize, "Buffer size in bytes for moving entries")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "j", 0, "Number of concurrent encoders (defaults to the CPU count)")
	cmd.Flags().StringVar(&opts.IgnoreFile, "ignore-file", lib.IgnoreFilename, `Ignore file in the patch directory ("-" to disable)`)

	_ = cmd.RegisterFlagCompletionFunc("folders", folderCompletions)

	return cmd
}
