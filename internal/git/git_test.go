package git

import (
	"context"
	"errors"
	"testing"

	"p4git/internal/shell"
)

type fakeRunner struct {
	outputs map[string]string
	fail    map[string]string
	ran     []string
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	key := shell.CommandString(name, args)
	if msg, ok := f.fail[key]; ok {
		return "", errors.New(msg)
	}
	out, ok := f.outputs[key]
	if !ok {
		return "", errors.New("unexpected command: " + key)
	}
	return out, nil
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	key := shell.CommandString(name, args)
	if msg, ok := f.fail[key]; ok {
		return errors.New(msg)
	}
	f.ran = append(f.ran, key)
	return nil
}

func TestRevListOldestFirst(t *testing.T) {
	run := &fakeRunner{outputs: map[string]string{
		"git rev-list --reverse p4/master..work": "aaa\nbbb\nccc",
	}}
	c := New(run)

	shas, err := c.RevList(context.Background(), "p4/master..work")
	if err != nil {
		t.Fatalf("rev-list: %v", err)
	}
	want := []string{"aaa", "bbb", "ccc"}
	if len(shas) != len(want) {
		t.Fatalf("expected %d commits, got %v", len(want), shas)
	}
	for i := range want {
		if shas[i] != want[i] {
			t.Fatalf("commit %d: expected %s, got %s", i, want[i], shas[i])
		}
	}
}

func TestRevListEmpty(t *testing.T) {
	run := &fakeRunner{outputs: map[string]string{
		"git rev-list --reverse p4/master..work": "",
	}}
	shas, err := New(run).RevList(context.Background(), "p4/master..work")
	if err != nil {
		t.Fatalf("rev-list: %v", err)
	}
	if len(shas) != 0 {
		t.Fatalf("expected no commits, got %v", shas)
	}
}

func TestBranchExists(t *testing.T) {
	run := &fakeRunner{
		outputs: map[string]string{
			"git rev-parse --verify --quiet refs/heads/work": "abc",
		},
		fail: map[string]string{
			"git rev-parse --verify --quiet refs/heads/gone": "exit status 1",
		},
	}
	c := New(run)
	if !c.BranchExists(context.Background(), "work") {
		t.Fatal("expected branch work to exist")
	}
	if c.BranchExists(context.Background(), "gone") {
		t.Fatal("expected branch gone to be missing")
	}
}

func TestAheadCount(t *testing.T) {
	run := &fakeRunner{outputs: map[string]string{
		"git rev-list --count main..work": "3",
	}}
	n, err := New(run).AheadCount(context.Background(), "main", "work")
	if err != nil {
		t.Fatalf("ahead count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
}

func TestAheadCountBadOutput(t *testing.T) {
	run := &fakeRunner{outputs: map[string]string{
		"git rev-list --count main..work": "not-a-number",
	}}
	if _, err := New(run).AheadCount(context.Background(), "main", "work"); err == nil {
		t.Fatal("expected error for unparseable count")
	}
}

func TestCheckoutAt(t *testing.T) {
	run := &fakeRunner{}
	c := New(run)
	if err := c.CheckoutAt(context.Background(), "squashed/work", "abc", false); err != nil {
		t.Fatalf("checkout -b: %v", err)
	}
	if err := c.CheckoutAt(context.Background(), "squashed/work", "abc", true); err != nil {
		t.Fatalf("checkout -B: %v", err)
	}
	want := []string{
		"git checkout -b squashed/work abc",
		"git checkout -B squashed/work abc",
	}
	if len(run.ran) != len(want) {
		t.Fatalf("expected %d commands, got %v", len(want), run.ran)
	}
	for i := range want {
		if run.ran[i] != want[i] {
			t.Fatalf("command %d: expected %q, got %q", i, want[i], run.ran[i])
		}
	}
}

func TestCommitMessageVsFile(t *testing.T) {
	run := &fakeRunner{}
	c := New(run)
	if err := c.Commit(context.Background(), CommitOptions{Message: "squash it"}); err != nil {
		t.Fatalf("commit -m: %v", err)
	}
	if err := c.Commit(context.Background(), CommitOptions{MessageFile: "/tmp/msg"}); err != nil {
		t.Fatalf("commit -F: %v", err)
	}
	if run.ran[0] != "git commit -m 'squash it'" {
		t.Fatalf("unexpected commit command %q", run.ran[0])
	}
	if run.ran[1] != "git commit -F /tmp/msg" {
		t.Fatalf("unexpected commit command %q", run.ran[1])
	}
}

func TestConfigValueUnsetIsEmpty(t *testing.T) {
	run := &fakeRunner{fail: map[string]string{
		"git config --get git-p4.client": "exit status 1",
	}}
	if got := New(run).ConfigValue(context.Background(), "git-p4.client"); got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
}
