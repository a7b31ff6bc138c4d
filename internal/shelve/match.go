package shelve

import (
	"context"
	"log/slog"
	"strings"

	"p4git/internal/models"
)

// matchPrefixLen is how much of the commit message the prefilter uses.
// It must stay below p4's one-line summary truncation width, or the
// substring test could never succeed.
const matchPrefixLen = 25

// Matcher finds the pending changelist whose description equals a commit
// message. The pending listing is fetched once, lazily; full descriptions
// are fetched per candidate because each fetch is a server round trip,
// which is what the summary prefilter exists to limit.
type Matcher struct {
	P4 P4Client

	fetched bool
	changes []models.Changelist
}

// Match returns the number of the first pending changelist (in listing
// order) whose full description equals message, or 0 if none does.
// Listing order is not guaranteed stable by the server; ties between
// identical descriptions land on whichever the listing yields first.
func (m *Matcher) Match(ctx context.Context, message string) (int, error) {
	if err := m.fetch(ctx); err != nil {
		return 0, err
	}

	message = normalizeMessage(message)
	prefix, _, _ := strings.Cut(message, "\n")
	if len(prefix) > matchPrefixLen {
		prefix = prefix[:matchPrefixLen]
	}
	prefix = strings.TrimSpace(prefix)
	// A short or empty message degenerates to a prefilter that accepts
	// every changelist. Deliberate: the exact comparison below still
	// decides, it just costs more description fetches.

	for _, change := range m.changes {
		if !strings.Contains(change.Summary, prefix) {
			continue
		}
		desc, err := m.P4.Describe(ctx, change.Number)
		if err != nil {
			return 0, err
		}
		if normalizeMessage(desc) == message {
			return change.Number, nil
		}
		slog.Debug("prefilter hit without exact match", "changelist", change.Number)
	}
	return 0, nil
}

func (m *Matcher) fetch(ctx context.Context) error {
	if m.fetched {
		return nil
	}
	changes, err := m.P4.PendingChanges(ctx)
	if err != nil {
		return err
	}
	m.changes = changes
	m.fetched = true
	slog.Debug("fetched pending changelists", "count", len(changes))
	return nil
}

// normalizeMessage strips trailing whitespace, which differs between
// git log and p4 describe output for otherwise identical text.
func normalizeMessage(s string) string {
	return strings.TrimRight(s, " \t\n")
}
