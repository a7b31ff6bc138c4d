package main

import (
	"github.com/spf13/cobra"

	"p4git/internal/config"
	"p4git/internal/git"
	"p4git/internal/shell"
	"p4git/internal/squash"
)

type squashCmdOptions struct {
	force       bool
	message     string
	messageFile string
	reword      bool
}

func newSquashCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &squashCmdOptions{}
	cmd := &cobra.Command{
		Use:   "squash <base> [<target>]",
		Short: "Collapse the current branch's commits since base into one commit",
		Long: `Squash collapses every commit on the current branch since its merge
base with <base> into a single commit on <target> (default:
squashed/<current-branch>), then returns to the original branch.
Rerunning replaces the previous squashed commit with the updated diff.`,
		Args: requireRangeArgs(1, 2, "base branch is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			squashOpts := squash.Options{
				Base:        args[0],
				Message:     opts.message,
				MessageFile: opts.messageFile,
				Force:       opts.force,
				Reword:      opts.reword,
			}
			if len(args) == 2 {
				squashOpts.Target = args[1]
			}

			gitClient := git.New(&shell.ExecRunner{})
			result, err := squash.Run(cmd.Context(), gitClient, squashOpts)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(result)
			}
			return writePlain("squashed %d commits from %s onto %s\n", result.Squashed, result.Source, result.Target)
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "recreate the target branch even if it exists")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "commit message for the squashed commit")
	cmd.Flags().StringVarP(&opts.messageFile, "file", "F", "", "read the commit message from a file")
	cmd.Flags().BoolVarP(&opts.reword, "reword", "r", false, "open the editor on the squashed commit afterwards")
	return cmd
}
