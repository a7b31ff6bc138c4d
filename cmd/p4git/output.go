package main

import (
	"fmt"
	"os"
	"time"

	"p4git/internal/format"
	"p4git/internal/journal"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeJournalEntries(entries []journal.Entry) error {
	for _, e := range entries {
		cl := "-"
		if e.Changelist > 0 {
			cl = fmt.Sprintf("%d", e.Changelist)
		}
		if err := writePlain("%s %s %s %s %s\n", formatTime(e.Time), e.Action, shortSHA(e.Commit), cl, e.Subject); err != nil {
			return err
		}
	}
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
