// Package p4 talks to Perforce. Listing and description reads go through
// the p4 client; shelve creation and update go through git-p4, which owns
// the commit-to-changelist file mechanics.
package p4

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"p4git/internal/models"
	"p4git/internal/shell"
)

// Client issues p4 and git-p4 commands through a shell.Runner.
// Client and User, when set, are passed to every invocation; otherwise
// the p4 defaults (P4CLIENT/P4USER, .p4config) apply.
type Client struct {
	run    shell.Runner
	client string
	user   string
}

// New returns a Client bound to the given workspace client and user.
// Either may be empty.
func New(run shell.Runner, client, user string) *Client {
	return &Client{run: run, client: client, user: user}
}

// changesLine matches one line of `p4 changes` output, e.g.
// Change 12345 on 2024/01/02 by alice@ws1 *pending* 'Fix the frobnicator '
var changesLine = regexp.MustCompile(`^Change (\d+) on \S+ by \S+(?: \*(\w+)\*)? '(.*)'$`)

// PendingChanges lists the pending changelists visible to the configured
// client and user, in p4's listing order. The summary is p4's truncated
// one-line description; ordering stability is whatever the server gives us.
func (c *Client) PendingChanges(ctx context.Context) ([]models.Changelist, error) {
	args := []string{"changes", "-s", "pending"}
	if c.client != "" {
		args = append(args, "-c", c.client)
	}
	if c.user != "" {
		args = append(args, "-u", c.user)
	}
	out, err := c.run.Output(ctx, "p4", args...)
	if err != nil {
		return nil, fmt.Errorf("list pending changelists: %w", err)
	}

	var changes []models.Changelist
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := changesLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		status := models.ChangelistStatus(m[2])
		if status == "" {
			status = models.ChangePending
		}
		changes = append(changes, models.Changelist{
			Number:  number,
			Summary: strings.TrimSpace(m[3]),
			Status:  status,
		})
	}
	return changes, nil
}

// Describe fetches the full description of a changelist, with p4's
// tab indentation stripped and trailing whitespace trimmed.
func (c *Client) Describe(ctx context.Context, number int) (string, error) {
	out, err := c.run.Output(ctx, "p4", "describe", "-s", strconv.Itoa(number))
	if err != nil {
		return "", fmt.Errorf("describe changelist %d: %w", number, err)
	}
	return parseDescription(out), nil
}

// Shelve creates a new shelved changelist holding one commit's diff.
func (c *Client) Shelve(ctx context.Context, commit string) error {
	return c.run.Run(ctx, "git", c.submitArgs("--shelve", commit)...)
}

// UpdateShelve replaces the shelved files of changelist number with the
// given commit's diff.
func (c *Client) UpdateShelve(ctx context.Context, number int, commit string) error {
	return c.run.Run(ctx, "git", c.submitArgs("--update-shelve", commit, strconv.Itoa(number))...)
}

// submitArgs builds a git-p4 submit invocation for exactly one commit.
// git-p4 cannot batch non-contiguous commits, so callers always submit
// commit by commit.
func (c *Client) submitArgs(mode, commit string, modeArg ...string) []string {
	var args []string
	if c.client != "" {
		args = append(args, "-c", "git-p4.client="+c.client)
	}
	if c.user != "" {
		args = append(args, "-c", "git-p4.user="+c.user)
	}
	args = append(args, "p4", "submit", mode)
	args = append(args, modeArg...)
	args = append(args, "--commit", commit)
	return args
}

// sections that end the description block in `p4 describe -s` output.
var describeFooters = []string{"Affected files", "Shelved files", "Jobs fixed"}

func parseDescription(out string) string {
	lines := strings.Split(out, "\n")
	var desc []string
	inBody := false
	for _, line := range lines {
		if !inBody {
			// The body starts after the "Change N by ..." header and
			// its following blank line.
			if strings.HasPrefix(line, "Change ") {
				continue
			}
			if strings.TrimSpace(line) == "" {
				inBody = true
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if footerLine(trimmed) {
			break
		}
		desc = append(desc, strings.TrimPrefix(line, "\t"))
	}
	return strings.TrimRight(strings.Join(desc, "\n"), " \t\n")
}

func footerLine(line string) bool {
	for _, footer := range describeFooters {
		if strings.HasPrefix(line, footer) {
			return true
		}
	}
	return false
}
