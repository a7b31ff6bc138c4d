package shelve

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"p4git/internal/models"
)

// Dispatcher applies one action to a list of resolved mappings.
type Dispatcher struct {
	Git GitClient
	P4  P4Client

	// Out receives print-action lines. Dry-run command echoes are handled
	// below this layer, by the runner the P4 client was built on, so the
	// decision logic here is identical either way.
	Out io.Writer

	// Record, when non-nil, is called after every executed mutation.
	// Journal failures must not abort shelving, so it returns nothing.
	Record func(ctx context.Context, verb string, m models.Mapping)
}

// Dispatch matches commits without an explicit changelist, then performs
// the requested action. Matching happens up front for every action so a
// dry run takes exactly the decisions a real run would. The returned
// mappings carry the matched changelists.
func (d *Dispatcher) Dispatch(ctx context.Context, action models.Action, mappings []models.Mapping) ([]models.Mapping, error) {
	matcher := &Matcher{P4: d.P4}
	for i := range mappings {
		if mappings[i].HasChangelist() {
			continue
		}
		if err := d.matchOne(ctx, matcher, &mappings[i]); err != nil {
			return nil, err
		}
	}

	var err error
	switch action {
	case models.ActionPrint:
		err = d.print(mappings)
	case models.ActionShelveNew:
		err = d.shelveNew(ctx, mappings)
	case models.ActionUpdateExisting:
		err = d.updateExisting(ctx, mappings)
	case models.ActionUpdateOrShelve:
		err = d.updateOrShelve(ctx, mappings)
	default:
		err = fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

func (d *Dispatcher) matchOne(ctx context.Context, matcher *Matcher, m *models.Mapping) error {
	message, err := d.Git.CommitMessage(ctx, m.Commit.SHA)
	if err != nil {
		return err
	}
	m.Commit.Message = message
	number, err := matcher.Match(ctx, message)
	if err != nil {
		return err
	}
	m.Changelist = number
	return nil
}

func (d *Dispatcher) print(mappings []models.Mapping) error {
	for _, m := range mappings {
		cl := "-"
		if m.HasChangelist() {
			cl = fmt.Sprintf("%d", m.Changelist)
		}
		if _, err := fmt.Fprintf(d.Out, "%s %s %s\n", m.Commit.Short(), cl, m.Commit.Subject); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) shelveNew(ctx context.Context, mappings []models.Mapping) error {
	for _, m := range mappings {
		if m.Explicit {
			return fmt.Errorf("commit %s carries an explicit changelist %d; use an update action instead",
				m.Commit.Short(), m.Changelist)
		}
	}
	for _, m := range mappings {
		if m.HasChangelist() {
			slog.Warn("commit already shelved, skipping",
				"commit", m.Commit.Short(), "changelist", m.Changelist)
			continue
		}
		if err := d.P4.Shelve(ctx, m.Commit.SHA); err != nil {
			return err
		}
		d.record(ctx, "shelve", m)
	}
	return nil
}

func (d *Dispatcher) updateExisting(ctx context.Context, mappings []models.Mapping) error {
	// Validate everything before the first invocation: a commit without
	// a changelist must not leave earlier commits half-submitted.
	for _, m := range mappings {
		if !m.HasChangelist() {
			return fmt.Errorf("no pending changelist matches commit %s (%s); shelve it first or pass %s=CL",
				m.Commit.Short(), m.Commit.Subject, m.Commit.Short())
		}
	}
	for _, m := range mappings {
		if err := d.P4.UpdateShelve(ctx, m.Changelist, m.Commit.SHA); err != nil {
			return err
		}
		d.record(ctx, "update", m)
	}
	return nil
}

func (d *Dispatcher) updateOrShelve(ctx context.Context, mappings []models.Mapping) error {
	var updates, creates []models.Mapping
	for _, m := range mappings {
		if m.HasChangelist() {
			updates = append(updates, m)
		} else {
			creates = append(creates, m)
		}
	}
	if err := d.updateExisting(ctx, updates); err != nil {
		return err
	}
	return d.shelveNew(ctx, creates)
}

func (d *Dispatcher) record(ctx context.Context, verb string, m models.Mapping) {
	if d.Record != nil {
		d.Record(ctx, verb, m)
	}
}
