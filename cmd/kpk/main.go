package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	"github.com/rs/zerolog"
	log "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	var verbose bool

	var rootCmd = &cobra.Command{
		Use:           "kpk",
		Short:         "Extract, build and patch KPK game archives.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add commands
	rootCmd.AddCommand(NewExtractCommand())
	rootCmd.AddCommand(NewPackCommand())
	rootCmd.AddCommand(NewRepackCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewVerifyCommand())

	if err := rootCmd.Execute(); err != nil {
		// A repack with nothing to do or a declined confirmation is not a failure.
		if errors.Is(err, lib.ErrNoChange) || errors.Is(err, lib.ErrCancelled) {
			return
		}
		fmt.Println(err)
		os.Exit(1)
	}
}
