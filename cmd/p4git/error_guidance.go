package main

import (
	"errors"
	"os/exec"
	"strings"

	"p4git/internal/shell"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var cmdErr *shell.CommandError
	if errors.As(err, &cmdErr) {
		if errors.Is(cmdErr.Err, exec.ErrNotFound) {
			name, _, _ := strings.Cut(cmdErr.Command, " ")
			lines = append(lines, "hint: "+name+" is not installed or not on PATH.")
			return uniqueLines(lines)
		}
		combined := cmdErr.Command + " " + cmdErr.Stderr
		if strings.Contains(combined, "not a git repository") {
			lines = append(lines, "hint: run p4git inside a git checkout (a git-p4 clone).")
		}
		if strings.HasPrefix(cmdErr.Command, "p4 ") || strings.Contains(cmdErr.Command, " p4 ") {
			if strings.Contains(cmdErr.Stderr, "Connect to server failed") || strings.Contains(cmdErr.Stderr, "TCP connect") {
				lines = append(lines, "hint: check P4PORT and that the Perforce server is reachable.")
			}
			if strings.Contains(cmdErr.Stderr, "invalid or unset") || strings.Contains(cmdErr.Stderr, "Client '") {
				lines = append(lines, "hint: set a client with --client, P4CLIENT, or `p4git config set client <name>`.")
			}
		}
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
