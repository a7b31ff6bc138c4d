package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func requireRangeArgs(min, max int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < min || len(args) > max {
			return errors.New(message)
		}
		return nil
	}
}
