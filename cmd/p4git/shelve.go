package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"p4git/internal/config"
	"p4git/internal/git"
	"p4git/internal/journal"
	"p4git/internal/models"
	"p4git/internal/p4"
	"p4git/internal/shell"
	"p4git/internal/shelve"
	"p4git/internal/squash"
)

type shelveCmdOptions struct {
	shelveNew      bool
	updateExisting bool
	updateOrShelve bool
	printOnly      bool
	squashBase     string
	client         string
	user           string
	dryRun         bool
}

func newShelveCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &shelveCmdOptions{}
	cmd := &cobra.Command{
		Use:   "shelve [commit|range|branch|ref=CL ...]",
		Short: "Shelve git commits to Perforce changelists",
		Long: `Shelve resolves the given commits, ranges, branches, and explicit
ref=CL mappings (default: every commit on the current branch that is not
on its upstream), matches each commit against the pending changelists by
description, and performs the selected action per commit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShelve(cmd, cfg, opts, jsonOutput, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.shelveNew, "shelve-new", "N", false, "create a new shelved changelist per commit")
	cmd.Flags().BoolVarP(&opts.updateExisting, "update-existing", "E", false, "update the matching shelved changelist per commit")
	cmd.Flags().BoolVarP(&opts.updateOrShelve, "update-or-shelve", "U", false, "update matched commits, shelve the rest")
	cmd.Flags().BoolVar(&opts.printOnly, "print", false, "print commit-to-changelist pairs without mutating")
	cmd.Flags().StringVarP(&opts.squashBase, "squash", "s", "", "squash the current branch against `base` first, then shelve the result")
	cmd.Flags().StringVarP(&opts.client, "client", "c", "", "Perforce client workspace")
	cmd.Flags().StringVarP(&opts.user, "user", "u", "", "Perforce user")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "print mutating commands instead of running them")
	return cmd
}

func (o *shelveCmdOptions) action() (models.Action, error) {
	var selected []models.Action
	if o.printOnly {
		selected = append(selected, models.ActionPrint)
	}
	if o.shelveNew {
		selected = append(selected, models.ActionShelveNew)
	}
	if o.updateExisting {
		selected = append(selected, models.ActionUpdateExisting)
	}
	if o.updateOrShelve {
		selected = append(selected, models.ActionUpdateOrShelve)
	}
	switch len(selected) {
	case 0:
		return models.ActionPrint, nil
	case 1:
		return selected[0], nil
	default:
		return "", errors.New("choose exactly one of --print, --shelve-new, --update-existing, --update-or-shelve")
	}
}

func runShelve(cmd *cobra.Command, cfg *config.Config, opts *shelveCmdOptions, jsonOutput *bool, args []string) error {
	ctx := cmd.Context()

	action, err := opts.action()
	if err != nil {
		return err
	}

	runner := &shell.ExecRunner{}
	gitClient := git.New(runner)
	client, user := resolveIdentity(ctx, cfg, gitClient, opts.client, opts.user)

	tokens := args
	if opts.squashBase != "" {
		if len(args) > 0 {
			return errors.New("--squash selects its own commits; drop the positional arguments")
		}
		result, err := squash.Run(ctx, gitClient, squash.Options{Base: opts.squashBase})
		if err != nil {
			return err
		}
		tokens = []string{opts.squashBase + ".." + result.Target}
	}

	p4Runner := shell.Runner(runner)
	if opts.dryRun {
		p4Runner = &shell.DryRunner{Real: runner, Out: os.Stdout}
	}
	p4Client := p4.New(p4Runner, client, user)

	resolver := &shelve.Resolver{Git: gitClient, UpstreamFallback: cfg.Upstream}
	mappings, err := resolver.Resolve(ctx, tokens)
	if err != nil {
		return err
	}

	dispatcher := &shelve.Dispatcher{
		Git: gitClient,
		P4:  p4Client,
		Out: os.Stdout,
	}
	if *jsonOutput && action == models.ActionPrint {
		dispatcher.Out = io.Discard
	}
	if store := openJournal(cfg, action, opts.dryRun); store != nil {
		defer store.Close()
		dispatcher.Record = journalRecorder(store, client, user)
	}

	final, err := dispatcher.Dispatch(ctx, action, mappings)
	if err != nil {
		return err
	}
	if *jsonOutput && action == models.ActionPrint {
		return writeJSON(final)
	}
	return nil
}

// openJournal opens the journal when this run will mutate for real.
// Journal trouble is never fatal to shelving.
func openJournal(cfg *config.Config, action models.Action, dryRun bool) *journal.Store {
	if cfg.JournalPath == "" || dryRun || !action.Mutates() {
		return nil
	}
	store, err := journal.Open(cfg.JournalPath)
	if err != nil {
		slog.Warn("journal unavailable", "path", cfg.JournalPath, "err", err)
		return nil
	}
	return store
}

func journalRecorder(store *journal.Store, client, user string) func(context.Context, string, models.Mapping) {
	return func(ctx context.Context, verb string, m models.Mapping) {
		err := store.Record(ctx, journal.Entry{
			Action:     verb,
			Commit:     m.Commit.SHA,
			Subject:    m.Commit.Subject,
			Changelist: m.Changelist,
			Client:     client,
			User:       user,
		})
		if err != nil {
			slog.Warn("journal write failed", "commit", m.Commit.SHA, "err", err)
		}
	}
}

// gitConfigReader is the slice of git behavior identity resolution needs.
type gitConfigReader interface {
	ConfigValue(ctx context.Context, key string) string
}

// resolveIdentity ranks the client/user sources: flag, then the P4CLIENT
// and P4USER environment, then git-p4's own git config keys, then the
// config file. The environment is read directly rather than through cfg
// because Load merges it over the file value, which would invert the
// git-config-vs-file ordering.
func resolveIdentity(ctx context.Context, cfg *config.Config, g gitConfigReader, flagClient, flagUser string) (string, string) {
	pick := func(flag, envKey, gitKey, fileValue string) string {
		if flag != "" {
			return flag
		}
		if env := strings.TrimSpace(os.Getenv(envKey)); env != "" {
			return env
		}
		if v := g.ConfigValue(ctx, gitKey); v != "" {
			return v
		}
		return fileValue
	}
	client := pick(flagClient, config.ClientEnvKey, "git-p4.client", cfg.Client)
	user := pick(flagUser, config.UserEnvKey, "git-p4.user", cfg.User)
	return client, user
}
