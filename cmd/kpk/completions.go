package main

import (
	"strings"

	"github.com/gingerrexayers/kpk-go/internal/kpk/commands"
	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	"github.com/spf13/cobra"
)

// archiveCompletions suggests .kpk files for the archive argument.
func archiveCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// This completion function is for the first argument only.
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"kpk"}, cobra.ShellCompDirectiveFilterFileExt
}

// folderCompletions provides dynamic tab completion for --folders. It
// suggests the top-level folders found in the archive being repacked.
func folderCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	index, err := lib.Scan(args[0])
	if err != nil {
		// Don't return an error, just fail to complete.
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	// --folders takes a comma separated list; complete its last element.
	done := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done = toComplete[:i+1]
	}

	var suggestions []string
	for _, folder := range commands.Summarize(index).Folders {
		suggestions = append(suggestions, done+folder)
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
