package main

import (
	"testing"

	"p4git/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	return &cfg
}

func TestRootRegistersSubcommands(t *testing.T) {
	cmd := newRootCmd(testConfig())
	for _, name := range []string{"shelve", "squash", "journal", "config"} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("subcommand %q not registered", name)
		}
	}
}

func TestRootPersistentFlags(t *testing.T) {
	cmd := newRootCmd(testConfig())
	if cmd.PersistentFlags().Lookup("json") == nil {
		t.Fatal("persistent flag --json not registered")
	}
	if cmd.PersistentFlags().Lookup("log-level") == nil {
		t.Fatal("persistent flag --log-level not registered")
	}
	verbose := cmd.PersistentFlags().Lookup("verbose")
	if verbose == nil {
		t.Fatal("persistent flag --verbose not registered")
	}
	if verbose.Shorthand != "v" {
		t.Fatalf("flag --verbose: expected shorthand -v, got -%s", verbose.Shorthand)
	}
}
