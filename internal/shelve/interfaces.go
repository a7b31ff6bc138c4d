package shelve

import (
	"context"

	"p4git/internal/models"
)

// GitClient is the slice of git behavior the resolver needs.
type GitClient interface {
	CurrentBranch(ctx context.Context) (string, error)
	BranchExists(ctx context.Context, name string) bool
	ResolveCommit(ctx context.Context, ref string) (string, error)
	RevList(ctx context.Context, spec string) ([]string, error)
	Upstream(ctx context.Context, branch string) (string, error)
	CommitMessage(ctx context.Context, ref string) (string, error)
	Subject(ctx context.Context, ref string) (string, error)
}

// P4Client is the slice of Perforce behavior the matcher and dispatcher need.
type P4Client interface {
	PendingChanges(ctx context.Context) ([]models.Changelist, error)
	Describe(ctx context.Context, number int) (string, error)
	Shelve(ctx context.Context, commit string) error
	UpdateShelve(ctx context.Context, number int, commit string) error
}
