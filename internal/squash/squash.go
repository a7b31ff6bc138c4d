// Package squash collapses a branch's commits since a base branch into a
// single commit on a target branch, restoring the original checkout when
// it is done, whatever happened in between.
package squash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"p4git/internal/git"
)

// Git is the slice of git behavior the squasher needs.
type Git interface {
	CurrentBranch(ctx context.Context) (string, error)
	BranchExists(ctx context.Context, name string) bool
	MergeBase(ctx context.Context, a, b string) (string, error)
	AheadCount(ctx context.Context, base, tip string) (int, error)
	Subjects(ctx context.Context, spec string) ([]string, error)
	CommitMessage(ctx context.Context, ref string) (string, error)
	Checkout(ctx context.Context, branch string) error
	CheckoutAt(ctx context.Context, branch, start string, force bool) error
	ResetHard(ctx context.Context, ref string) error
	ResetSoft(ctx context.Context, ref string) error
	Commit(ctx context.Context, opts git.CommitOptions) error
	AmendEdit(ctx context.Context) error
}

// Options control one squash run.
type Options struct {
	// Base is the branch the squashed diff is taken against. Required.
	Base string
	// Target is the branch receiving the squashed commit.
	// Empty means "squashed/<current-branch>".
	Target string
	// Message and MessageFile override the squashed commit's message.
	Message     string
	MessageFile string
	// Force recreates the target branch even if it already exists.
	Force bool
	// Reword opens the editor on the squashed commit afterwards.
	Reword bool
}

// Result reports what a squash run produced.
type Result struct {
	Target   string `json:"target"`
	Source   string `json:"source"`
	Squashed int    `json:"squashed"`
}

// Run squashes every commit on the current branch since its merge base
// with opts.Base into one commit on the target branch. The originally
// checked-out branch is restored on every exit path; a failed restore
// joins the primary error so it cannot pass silently.
func Run(ctx context.Context, g Git, opts Options) (result Result, err error) {
	if opts.Base == "" {
		return Result{}, errors.New("base branch is required")
	}

	current, err := g.CurrentBranch(ctx)
	if err != nil {
		return Result{}, err
	}
	target := opts.Target
	if target == "" {
		target = "squashed/" + current
	}
	if target == current || target == opts.Base {
		return Result{}, fmt.Errorf("target branch %s collides with the working branches", target)
	}

	if !g.BranchExists(ctx, opts.Base) {
		return Result{}, fmt.Errorf("base branch %s does not exist", opts.Base)
	}
	mergeBase, err := g.MergeBase(ctx, opts.Base, current)
	if err != nil {
		return Result{}, err
	}
	ahead, err := g.AheadCount(ctx, mergeBase, current)
	if err != nil {
		return Result{}, err
	}
	if ahead == 0 {
		return Result{}, fmt.Errorf("branch %s has no commits beyond %s; nothing to squash", current, opts.Base)
	}

	targetExists := g.BranchExists(ctx, target) && !opts.Force
	if targetExists {
		// Replacing an earlier squash: anything other than exactly one
		// commit beyond the base means this branch is not ours to rewrite.
		n, err := g.AheadCount(ctx, opts.Base, target)
		if err != nil {
			return Result{}, err
		}
		switch {
		case n == 0:
			return Result{}, fmt.Errorf("branch %s has no commit beyond %s; delete it and rerun", target, opts.Base)
		case n > 1:
			return Result{}, fmt.Errorf("branch %s has %d commits beyond %s; expected exactly one squashed commit, refusing to guess", target, n, opts.Base)
		}
	}

	commitOpts, err := resolveMessage(ctx, g, opts, target, targetExists, current, mergeBase)
	if err != nil {
		return Result{}, err
	}

	// From here on the working tree is being mutated. Restore the original
	// branch no matter how the rest goes; ctx may already be dead by then.
	defer func() {
		restoreCtx := context.WithoutCancel(ctx)
		if rerr := g.Checkout(restoreCtx, current); rerr != nil {
			err = errors.Join(err, fmt.Errorf("restore branch %s: %w", current, rerr))
		}
	}()

	if err := g.CheckoutAt(ctx, target, mergeBase, true); err != nil {
		return Result{}, err
	}
	if err := g.ResetHard(ctx, current); err != nil {
		return Result{}, err
	}
	if err := g.ResetSoft(ctx, mergeBase); err != nil {
		return Result{}, err
	}
	if err := g.Commit(ctx, commitOpts); err != nil {
		return Result{}, err
	}
	if opts.Reword {
		if err := g.AmendEdit(ctx); err != nil {
			return Result{}, err
		}
	}

	slog.Debug("squashed", "source", current, "target", target, "commits", ahead)
	return Result{Target: target, Source: current, Squashed: ahead}, nil
}

// resolveMessage decides the squashed commit's message before any
// mutation happens, so precondition failures leave the repository alone.
func resolveMessage(ctx context.Context, g Git, opts Options, target string, targetExists bool, current, mergeBase string) (git.CommitOptions, error) {
	if opts.MessageFile != "" {
		return git.CommitOptions{MessageFile: opts.MessageFile}, nil
	}
	if opts.Message != "" {
		return git.CommitOptions{Message: opts.Message}, nil
	}

	if targetExists {
		// Carry the previous squashed commit's message forward.
		message, err := g.CommitMessage(ctx, target)
		if err != nil {
			return git.CommitOptions{}, err
		}
		return git.CommitOptions{Message: message}, nil
	}

	subjects, err := g.Subjects(ctx, mergeBase+".."+current)
	if err != nil {
		return git.CommitOptions{}, err
	}
	return git.CommitOptions{Message: joinSubjects(subjects)}, nil
}

// joinSubjects synthesizes a commit message from the squashed commits'
// subjects: first subject as the new subject, the rest as the body.
func joinSubjects(subjects []string) string {
	switch len(subjects) {
	case 0:
		return "squashed commit"
	case 1:
		return subjects[0]
	}
	return subjects[0] + "\n\n" + strings.Join(subjects[1:], "\n")
}
