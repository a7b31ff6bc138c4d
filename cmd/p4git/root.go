package main

import (
	"github.com/spf13/cobra"

	"p4git/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "p4git",
		Short: "P4git synchronizes git commits with Perforce shelved changelists",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			warning, err := configureLoggerForCLI(effectiveFlagLevel(logLevel, verbose), cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				cmd.PrintErrln(warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.SilenceUsage = true
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")

	cmd.AddCommand(
		newShelveCmd(cfg, &jsonOutput),
		newSquashCmd(cfg, &jsonOutput),
		newJournalCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
	)

	return cmd
}
