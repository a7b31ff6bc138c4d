package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"p4git/internal/config"
	"p4git/internal/format"
	"p4git/internal/journal"
)

func newJournalCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the local log of executed shelve operations",
	}
	cmd.AddCommand(
		newJournalListCmd(cfg, jsonOutput),
		newJournalPruneCmd(cfg),
	)
	return cmd
}

func newJournalListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		limit      int
		formatName string
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List recorded shelve operations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJournal(cfg, func(store *journal.Store) error {
				entries, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if *jsonOutput || formatName != "" {
					return format.ByName(formatName).Write(os.Stdout, entries)
				}
				return writeJournalEntries(entries)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show (0 for all)")
	cmd.Flags().StringVar(&formatName, "format", "", "structured output format (json|yaml)")
	return cmd
}

func newJournalPruneCmd(cfg *config.Config) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJournal(cfg, func(store *journal.Store) error {
				removed, err := store.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				return writePlain("pruned %d entries\n", removed)
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 100, "entries to keep")
	return cmd
}

func withJournal(cfg *config.Config, fn func(*journal.Store) error) error {
	if cfg.JournalPath == "" {
		return errors.New("no journal configured; set journal_path or P4GIT_JOURNAL")
	}
	store, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
