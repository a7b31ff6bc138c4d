package squash

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"p4git/internal/git"
)

// fakeGit records mutating calls and serves canned read results.
type fakeGit struct {
	current   string
	branches  map[string]bool
	mergeBase string
	ahead     map[string]int // "base..tip" -> count
	subjects  []string
	messages  map[string]string

	calls   []string
	failOn  string // command prefix that fails
	failErr error
}

func (g *fakeGit) CurrentBranch(context.Context) (string, error) {
	if g.current == "" {
		return "", errors.New("detached HEAD")
	}
	return g.current, nil
}

func (g *fakeGit) BranchExists(_ context.Context, name string) bool { return g.branches[name] }

func (g *fakeGit) MergeBase(_ context.Context, a, b string) (string, error) {
	if g.mergeBase == "" {
		return "", fmt.Errorf("no merge base between %s and %s", a, b)
	}
	return g.mergeBase, nil
}

func (g *fakeGit) AheadCount(_ context.Context, base, tip string) (int, error) {
	return g.ahead[base+".."+tip], nil
}

func (g *fakeGit) Subjects(_ context.Context, _ string) ([]string, error) {
	return g.subjects, nil
}

func (g *fakeGit) CommitMessage(_ context.Context, ref string) (string, error) {
	if msg, ok := g.messages[ref]; ok {
		return msg, nil
	}
	return "", fmt.Errorf("unknown ref %q", ref)
}

func (g *fakeGit) call(cmd string) error {
	if g.failOn != "" && strings.HasPrefix(cmd, g.failOn) {
		return g.failErr
	}
	g.calls = append(g.calls, cmd)
	return nil
}

func (g *fakeGit) Checkout(_ context.Context, branch string) error {
	return g.call("checkout " + branch)
}

func (g *fakeGit) CheckoutAt(_ context.Context, branch, start string, force bool) error {
	flag := "-b"
	if force {
		flag = "-B"
	}
	return g.call(fmt.Sprintf("checkout %s %s %s", flag, branch, start))
}

func (g *fakeGit) ResetHard(_ context.Context, ref string) error { return g.call("reset --hard " + ref) }
func (g *fakeGit) ResetSoft(_ context.Context, ref string) error { return g.call("reset --soft " + ref) }

func (g *fakeGit) Commit(_ context.Context, opts git.CommitOptions) error {
	if opts.MessageFile != "" {
		return g.call("commit -F " + opts.MessageFile)
	}
	return g.call("commit -m " + opts.Message)
}

func (g *fakeGit) AmendEdit(context.Context) error { return g.call("commit --amend") }

func newFakeGit() *fakeGit {
	return &fakeGit{
		current:   "work",
		branches:  map[string]bool{"work": true, "main": true},
		mergeBase: "mb0",
		ahead:     map[string]int{"mb0..work": 3},
		subjects:  []string{"First change", "Second change", "Third change"},
		messages:  map[string]string{},
	}
}

func TestRunNewTarget(t *testing.T) {
	g := newFakeGit()
	result, err := Run(context.Background(), g, Options{Base: "main"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Target != "squashed/work" || result.Squashed != 3 {
		t.Fatalf("unexpected result %+v", result)
	}

	want := []string{
		"checkout -B squashed/work mb0",
		"reset --hard work",
		"reset --soft mb0",
		"commit -m First change\n\nSecond change\nThird change",
		"checkout work",
	}
	if len(g.calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), g.calls)
	}
	for i := range want {
		if g.calls[i] != want[i] {
			t.Fatalf("call %d: expected %q, got %q", i, want[i], g.calls[i])
		}
	}
}

func TestRunExplicitMessage(t *testing.T) {
	g := newFakeGit()
	if _, err := Run(context.Background(), g, Options{Base: "main", Message: "all of it"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !contains(g.calls, "commit -m all of it") {
		t.Fatalf("expected explicit message commit, got %v", g.calls)
	}
}

func TestRunMessageFile(t *testing.T) {
	g := newFakeGit()
	if _, err := Run(context.Background(), g, Options{Base: "main", MessageFile: "/tmp/msg"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !contains(g.calls, "commit -F /tmp/msg") {
		t.Fatalf("expected -F commit, got %v", g.calls)
	}
}

func TestRunRewordAmends(t *testing.T) {
	g := newFakeGit()
	if _, err := Run(context.Background(), g, Options{Base: "main", Reword: true}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !contains(g.calls, "commit --amend") {
		t.Fatalf("expected amend after commit, got %v", g.calls)
	}
}

func TestRunMissingBase(t *testing.T) {
	g := newFakeGit()
	_, err := Run(context.Background(), g, Options{Base: "nope"})
	if err == nil {
		t.Fatal("expected missing-base error")
	}
	if len(g.calls) != 0 {
		t.Fatalf("precondition failure must not mutate, ran %v", g.calls)
	}
}

func TestRunNothingToSquash(t *testing.T) {
	g := newFakeGit()
	g.ahead["mb0..work"] = 0
	_, err := Run(context.Background(), g, Options{Base: "main"})
	if err == nil {
		t.Fatal("expected nothing-to-squash error")
	}
	if len(g.calls) != 0 {
		t.Fatalf("precondition failure must not mutate, ran %v", g.calls)
	}
}

func TestRunExistingTargetReusesMessage(t *testing.T) {
	g := newFakeGit()
	g.branches["squashed/work"] = true
	g.ahead["main..squashed/work"] = 1
	g.messages["squashed/work"] = "previous squash message"

	if _, err := Run(context.Background(), g, Options{Base: "main"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !contains(g.calls, "commit -m previous squash message") {
		t.Fatalf("expected reused message, got %v", g.calls)
	}
}

func TestRunExistingTargetZeroAhead(t *testing.T) {
	g := newFakeGit()
	g.branches["squashed/work"] = true
	g.ahead["main..squashed/work"] = 0

	_, err := Run(context.Background(), g, Options{Base: "main"})
	if err == nil || !strings.Contains(err.Error(), "delete it") {
		t.Fatalf("expected delete-it error, got %v", err)
	}
	if len(g.calls) != 0 {
		t.Fatalf("must not mutate, ran %v", g.calls)
	}
}

func TestRunExistingTargetAmbiguous(t *testing.T) {
	g := newFakeGit()
	g.branches["squashed/work"] = true
	g.ahead["main..squashed/work"] = 2

	_, err := Run(context.Background(), g, Options{Base: "main"})
	if err == nil || !strings.Contains(err.Error(), "refusing to guess") {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
	if len(g.calls) != 0 {
		t.Fatalf("must not mutate, ran %v", g.calls)
	}
}

func TestRunForceIgnoresExistingTarget(t *testing.T) {
	g := newFakeGit()
	g.branches["squashed/work"] = true
	g.ahead["main..squashed/work"] = 2 // would be ambiguous without force

	if _, err := Run(context.Background(), g, Options{Base: "main", Force: true}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !contains(g.calls, "checkout -B squashed/work mb0") {
		t.Fatalf("expected forced branch recreation, got %v", g.calls)
	}
}

func TestRunRestoresBranchOnFailure(t *testing.T) {
	g := newFakeGit()
	g.failOn = "reset --soft"
	g.failErr = errors.New("disk full")

	_, err := Run(context.Background(), g, Options{Base: "main"})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected propagated failure, got %v", err)
	}
	last := g.calls[len(g.calls)-1]
	if last != "checkout work" {
		t.Fatalf("original branch must be restored on failure, last call %q", last)
	}
}

func TestRunRestoreFailureIsReported(t *testing.T) {
	g := newFakeGit()
	g.failOn = "checkout work"
	g.failErr = errors.New("worktree dirty")

	_, err := Run(context.Background(), g, Options{Base: "main"})
	if err == nil || !strings.Contains(err.Error(), "restore branch work") {
		t.Fatalf("restore failure must surface, got %v", err)
	}
}

func TestRunTargetCollision(t *testing.T) {
	g := newFakeGit()
	_, err := Run(context.Background(), g, Options{Base: "main", Target: "work"})
	if err == nil {
		t.Fatal("expected collision error")
	}
}

func TestJoinSubjects(t *testing.T) {
	tests := []struct {
		name     string
		subjects []string
		want     string
	}{
		{name: "none", subjects: nil, want: "squashed commit"},
		{name: "one", subjects: []string{"only"}, want: "only"},
		{name: "many", subjects: []string{"a", "b", "c"}, want: "a\n\nb\nc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinSubjects(tt.subjects); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func contains(calls []string, want string) bool {
	for _, call := range calls {
		if call == want {
			return true
		}
	}
	return false
}
