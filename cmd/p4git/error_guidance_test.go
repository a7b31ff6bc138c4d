package main

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"p4git/internal/shell"
)

func TestFormatCLIErrorNil(t *testing.T) {
	if lines := formatCLIError(nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}

func TestFormatCLIErrorPlain(t *testing.T) {
	lines := formatCLIError(errors.New("boom"))
	if len(lines) != 1 || lines[0] != "boom" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestFormatCLIErrorMissingBinary(t *testing.T) {
	err := fmt.Errorf("resolve commits: %w", &shell.CommandError{
		Command: "p4 changes -s pending",
		Err:     exec.ErrNotFound,
	})
	lines := formatCLIError(err)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}
	if want := "hint: p4 is not installed or not on PATH."; lines[1] != want {
		t.Fatalf("got %q, want %q", lines[1], want)
	}
}

func TestFormatCLIErrorNotARepo(t *testing.T) {
	err := &shell.CommandError{
		Command: "git symbolic-ref --short HEAD",
		Stderr:  "fatal: not a git repository (or any of the parent directories): .git",
		Err:     errors.New("exit status 128"),
	}
	lines := formatCLIError(err)
	found := false
	for _, line := range lines {
		if strings.Contains(line, "inside a git checkout") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing repository hint in %v", lines)
	}
}

func TestFormatCLIErrorPerforceConnect(t *testing.T) {
	err := &shell.CommandError{
		Command: "p4 changes -s pending -c dev-ws",
		Stderr:  "Perforce client error:\n\tConnect to server failed; check $P4PORT.\n\tTCP connect to perforce:1666 failed.",
		Err:     errors.New("exit status 1"),
	}
	lines := formatCLIError(err)
	found := false
	for _, line := range lines {
		if strings.Contains(line, "P4PORT") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing P4PORT hint in %v", lines)
	}
}

func TestUniqueLinesDropsDuplicatesAndEmpties(t *testing.T) {
	got := uniqueLines([]string{"a", "", "b", "a", "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
}
