// Package git wraps the git command line. Only the plumbing this tool
// needs is exposed; everything is parsed from line-oriented output.
package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"p4git/internal/shell"
)

// Client issues git commands through a shell.Runner.
type Client struct {
	run shell.Runner
}

// New returns a Client backed by the given runner.
func New(run shell.Runner) *Client {
	return &Client{run: run}
}

// CurrentBranch returns the checked-out branch name. A detached HEAD is
// an error: every operation here is defined in terms of branches.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.run.Output(ctx, "git", "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("not on a branch: %w", err)
	}
	return out, nil
}

// BranchExists reports whether name is a local branch.
func (c *Client) BranchExists(ctx context.Context, name string) bool {
	_, err := c.run.Output(ctx, "git", "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// ResolveCommit resolves ref to a full commit id.
func (c *Client) ResolveCommit(ctx context.Context, ref string) (string, error) {
	out, err := c.run.Output(ctx, "git", "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("cannot resolve %q to a commit: %w", ref, err)
	}
	return out, nil
}

// RevList returns the commits selected by spec (any rev-list range
// expression), oldest first.
func (c *Client) RevList(ctx context.Context, spec string) ([]string, error) {
	out, err := c.run.Output(ctx, "git", "rev-list", "--reverse", spec)
	if err != nil {
		return nil, fmt.Errorf("rev-list %s: %w", spec, err)
	}
	return splitLines(out), nil
}

// Upstream returns the upstream tracking ref of branch (e.g. "p4/master").
func (c *Client) Upstream(ctx context.Context, branch string) (string, error) {
	out, err := c.run.Output(ctx, "git", "rev-parse", "--abbrev-ref", branch+"@{upstream}")
	if err != nil {
		return "", fmt.Errorf("no upstream configured for %s: %w", branch, err)
	}
	return out, nil
}

// MergeBase returns the most recent common ancestor of a and b.
func (c *Client) MergeBase(ctx context.Context, a, b string) (string, error) {
	out, err := c.run.Output(ctx, "git", "merge-base", a, b)
	if err != nil {
		return "", fmt.Errorf("no merge base between %s and %s: %w", a, b, err)
	}
	return out, nil
}

// AheadCount returns the number of commits reachable from tip but not base.
func (c *Client) AheadCount(ctx context.Context, base, tip string) (int, error) {
	out, err := c.run.Output(ctx, "git", "rev-list", "--count", base+".."+tip)
	if err != nil {
		return 0, fmt.Errorf("count %s..%s: %w", base, tip, err)
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list --count output %q", out)
	}
	return n, nil
}

// CommitMessage returns the full commit message (subject and body) of ref,
// with trailing whitespace trimmed.
func (c *Client) CommitMessage(ctx context.Context, ref string) (string, error) {
	out, err := c.run.Output(ctx, "git", "show", "-s", "--format=%B", ref)
	if err != nil {
		return "", fmt.Errorf("read message of %s: %w", ref, err)
	}
	return out, nil
}

// Subject returns the one-line subject of ref.
func (c *Client) Subject(ctx context.Context, ref string) (string, error) {
	out, err := c.run.Output(ctx, "git", "show", "-s", "--format=%s", ref)
	if err != nil {
		return "", fmt.Errorf("read subject of %s: %w", ref, err)
	}
	return out, nil
}

// Subjects returns the subjects of all commits selected by spec, oldest first.
func (c *Client) Subjects(ctx context.Context, spec string) ([]string, error) {
	out, err := c.run.Output(ctx, "git", "log", "--reverse", "--format=%s", spec)
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", spec, err)
	}
	return splitLines(out), nil
}

// ConfigValue returns the value of a git config key, or "" if unset.
func (c *Client) ConfigValue(ctx context.Context, key string) string {
	out, err := c.run.Output(ctx, "git", "config", "--get", key)
	if err != nil {
		return ""
	}
	return out
}

// Checkout switches to an existing branch.
func (c *Client) Checkout(ctx context.Context, branch string) error {
	return c.run.Run(ctx, "git", "checkout", branch)
}

// CheckoutAt checks out branch pointed at start, creating it. With force
// an existing branch is reset to start (git checkout -B).
func (c *Client) CheckoutAt(ctx context.Context, branch, start string, force bool) error {
	flag := "-b"
	if force {
		flag = "-B"
	}
	return c.run.Run(ctx, "git", "checkout", flag, branch, start)
}

// ResetHard resets the current branch and working tree to ref.
func (c *Client) ResetHard(ctx context.Context, ref string) error {
	return c.run.Run(ctx, "git", "reset", "--hard", ref)
}

// ResetSoft moves the current branch to ref, leaving the index and
// working tree untouched.
func (c *Client) ResetSoft(ctx context.Context, ref string) error {
	return c.run.Run(ctx, "git", "reset", "--soft", ref)
}

// CommitOptions control commit creation. Exactly one of Message and
// MessageFile should be set.
type CommitOptions struct {
	Message     string
	MessageFile string
}

// Commit records the staged changes as a new commit.
func (c *Client) Commit(ctx context.Context, opts CommitOptions) error {
	if opts.MessageFile != "" {
		return c.run.Run(ctx, "git", "commit", "-F", opts.MessageFile)
	}
	return c.run.Run(ctx, "git", "commit", "-m", opts.Message)
}

// AmendEdit opens the last commit's message in the configured editor.
func (c *Client) AmendEdit(ctx context.Context) error {
	return c.run.Run(ctx, "git", "commit", "--amend")
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
