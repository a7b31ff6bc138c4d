// Package shelve reconciles git commits with pending Perforce changelists:
// resolve the commits to work on, match them against existing changelists
// by description, and dispatch the requested shelve action per commit.
package shelve

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"p4git/internal/models"
)

// ErrNoCommits is returned when token resolution yields nothing to work on.
var ErrNoCommits = errors.New("no commits resolved")

// Resolver turns CLI tokens into ordered commit mappings.
type Resolver struct {
	Git GitClient

	// UpstreamFallback is used when a branch has no configured upstream
	// tracking ref (typically "p4/master" in git-p4 checkouts).
	UpstreamFallback string
}

// Resolve expands tokens into (commit, changelist) mappings, oldest first.
// Token forms: a rev-list range ("a..b"), a local branch name, a bare
// commit ref, or an explicit "ref=CL" mapping. With no tokens, all commits
// on the current branch that are not on its upstream are selected.
func (r *Resolver) Resolve(ctx context.Context, tokens []string) ([]models.Mapping, error) {
	var mappings []models.Mapping

	if len(tokens) == 0 {
		shas, err := r.defaultRange(ctx)
		if err != nil {
			return nil, err
		}
		mappings, err = r.appendCommits(ctx, mappings, shas, 0)
		if err != nil {
			return nil, err
		}
	}

	for _, token := range tokens {
		var err error
		mappings, err = r.resolveToken(ctx, mappings, token)
		if err != nil {
			return nil, err
		}
	}

	if len(mappings) == 0 {
		return nil, ErrNoCommits
	}
	return mappings, nil
}

func (r *Resolver) resolveToken(ctx context.Context, mappings []models.Mapping, token string) ([]models.Mapping, error) {
	switch {
	case strings.Contains(token, ".."):
		shas, err := r.Git.RevList(ctx, token)
		if err != nil {
			return nil, err
		}
		return r.appendCommits(ctx, mappings, shas, 0)

	case strings.Contains(token, "="):
		ref, rawCL, _ := strings.Cut(token, "=")
		number, err := strconv.Atoi(rawCL)
		if err != nil || number <= 0 {
			return nil, fmt.Errorf("invalid changelist in %q: expected ref=CL with a positive changelist number", token)
		}
		sha, err := r.Git.ResolveCommit(ctx, ref)
		if err != nil {
			return nil, err
		}
		return r.appendCommit(ctx, mappings, sha, number, true)

	case r.Git.BranchExists(ctx, token):
		upstream, err := r.Git.Upstream(ctx, token)
		if err != nil {
			upstream = r.UpstreamFallback
		}
		shas, err := r.Git.RevList(ctx, upstream+".."+token)
		if err != nil {
			return nil, err
		}
		return r.appendCommits(ctx, mappings, shas, 0)

	default:
		sha, err := r.Git.ResolveCommit(ctx, token)
		if err != nil {
			return nil, err
		}
		return r.appendCommit(ctx, mappings, sha, 0, false)
	}
}

func (r *Resolver) defaultRange(ctx context.Context) ([]string, error) {
	branch, err := r.Git.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	upstream, err := r.Git.Upstream(ctx, branch)
	if err != nil {
		upstream = r.UpstreamFallback
	}
	return r.Git.RevList(ctx, upstream+".."+branch)
}

func (r *Resolver) appendCommits(ctx context.Context, mappings []models.Mapping, shas []string, changelist int) ([]models.Mapping, error) {
	for _, sha := range shas {
		var err error
		mappings, err = r.appendCommit(ctx, mappings, sha, changelist, false)
		if err != nil {
			return nil, err
		}
	}
	return mappings, nil
}

func (r *Resolver) appendCommit(ctx context.Context, mappings []models.Mapping, sha string, changelist int, explicit bool) ([]models.Mapping, error) {
	subject, err := r.Git.Subject(ctx, sha)
	if err != nil {
		return nil, err
	}
	return append(mappings, models.Mapping{
		Commit:     models.Commit{SHA: sha, Subject: subject},
		Changelist: changelist,
		Explicit:   explicit,
	}), nil
}
